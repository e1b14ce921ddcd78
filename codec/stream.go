package codec

import (
	"bufio"
	"errors"
	"io"
)

// Encoder writes newline-terminated records to an io.Writer.
type Encoder struct {
	w   io.Writer
	buf []byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, buf: make([]byte, 0, 1024)}
}

// Encode writes the encoding of v followed by a newline.
func (e *Encoder) Encode(v Value) error {
	b, err := AppendEncode(e.buf[:0], v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	e.buf = b
	_, err = e.w.Write(b)
	return err
}

// Decoder reads consecutive records of one shape from an io.Reader.
// Records are found by bracket balance rather than by line, so strings
// may contain raw newlines.
type Decoder struct {
	r     *bufio.Reader
	shape Shape
	opts  DecodeOptions
	rec   []byte
	err   error // sticky read error seen by More
}

// NewDecoder returns a Decoder that decodes every record against shape.
func NewDecoder(r io.Reader, shape Shape) *Decoder {
	return &Decoder{
		r:     bufio.NewReader(r),
		shape: shape,
		rec:   make([]byte, 0, 1024),
	}
}

// SetOptions changes the options used for subsequent records.
func (d *Decoder) SetOptions(opts DecodeOptions) { d.opts = opts }

// Decode returns the next record. It returns io.EOF when the input ends
// between records and io.ErrUnexpectedEOF when it ends inside one.
func (d *Decoder) Decode() (Value, error) {
	rec, err := d.next()
	if err != nil {
		return Value{}, err
	}
	return DecodeWithOptions(string(rec), d.shape, d.opts)
}

// More reports whether another record may follow. It returns false only
// at a clean end of input; a read error makes it return true so that the
// next Decode reports the error.
func (d *Decoder) More() bool {
	if d.err != nil {
		return true
	}
	err := d.skipSpace()
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		return false
	}
	d.err = err
	return true
}

func (d *Decoder) skipSpace() error {
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		if !isSpace(c) {
			return d.r.UnreadByte()
		}
	}
}

func (d *Decoder) next() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	if err := d.skipSpace(); err != nil {
		return nil, err
	}
	d.rec = d.rec[:0]
	var stack [16]byte
	st := scanState{open: stack[:0]}
	for {
		c, err := d.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		d.rec = append(d.rec, c)
		if len(d.rec) == 1 && c != '{' && c != '[' {
			return nil, newError(ErrUnbalancedBrackets, "", 0, "record must start with '{' or '['")
		}
		if _, bad := st.step(c); bad {
			return nil, newError(ErrUnbalancedBrackets, "", len(d.rec)-1, "unexpected '"+string(c)+"'")
		}
		if len(st.open) == 0 && !st.inString && !st.escaped {
			return d.rec, nil
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}
