package codec

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// nestedValue builds an object tree depth levels deep with width children
// per level.
func nestedValue(depth, width int) Value {
	if depth <= 0 {
		return Obj(
			F("leaf_value", Str("data, \"quoted\"")),
			F("count", Int(int64(depth+width))),
			F("ratio", Float(0.5)),
			F("enabled", Bool(width%2 == 0)),
		)
	}
	fields := make([]Field, width)
	for i := range fields {
		fields[i] = F(fmt.Sprintf("nested_%d_%d", depth, i), nestedValue(depth-1, width))
	}
	return Obj(fields...)
}

// wideValue builds a single object with fieldCount mixed fields.
func wideValue(fieldCount int) Value {
	fields := make([]Field, fieldCount)
	for i := range fields {
		switch i % 5 {
		case 0:
			fields[i] = F(fmt.Sprintf("string_field_%d", i), Str(fmt.Sprintf("value_%d", i)))
		case 1:
			fields[i] = F(fmt.Sprintf("int_field_%d", i), Int(int64(i)))
		case 2:
			fields[i] = F(fmt.Sprintf("bool_field_%d", i), Bool(i%2 == 0))
		case 3:
			fields[i] = F(fmt.Sprintf("float_field_%d", i), Float(float64(i)+0.5))
		case 4:
			fields[i] = F(fmt.Sprintf("object_field_%d", i), Obj(
				F("id", Int(int64(i))),
				F("name", Str(fmt.Sprintf("Object %d", i))),
				F("tags", Arr(Str("a"), Str("b"))),
			))
		}
	}
	return Obj(fields...)
}

func benchmarkCodec(b *testing.B, v Value) {
	shape, err := ShapeOf(v)
	require.NoError(b, err)
	text, err := Encode(v)
	require.NoError(b, err)

	b.Run("Encode", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(text)))
		buf := make([]byte, 0, len(text))
		for i := 0; i < b.N; i++ {
			if _, err := AppendEncode(buf[:0], v); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Decode", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(text)))
		for i := 0; i < b.N; i++ {
			if _, err := Decode(text, shape); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkDeepNesting(b *testing.B) {
	depths := []struct {
		name  string
		depth int
		width int
	}{
		{"Depth3Width3", 3, 3},
		{"Depth5Width2", 5, 2},
		{"Depth2Width10", 2, 10},
	}

	for _, d := range depths {
		b.Run(d.name, func(b *testing.B) {
			benchmarkCodec(b, nestedValue(d.depth, d.width))
		})
	}
}

func BenchmarkWideStructures(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("Fields%d", n), func(b *testing.B) {
			benchmarkCodec(b, wideValue(n))
		})
	}
}

func BenchmarkStream(b *testing.B) {
	const records = 1000
	v := wideValue(20)
	shape, err := ShapeOf(v)
	require.NoError(b, err)

	var stream bytes.Buffer
	enc := NewEncoder(&stream)
	for i := 0; i < records; i++ {
		require.NoError(b, enc.Encode(v))
	}
	data := stream.Bytes()

	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec := NewDecoder(bytes.NewReader(data), shape)
		n := 0
		for {
			_, err := dec.Decode()
			if err == io.EOF {
				break
			}
			if err != nil {
				b.Fatal(err)
			}
			n++
		}
		if n != records {
			b.Fatalf("decoded %d records, want %d", n, records)
		}
	}
}
