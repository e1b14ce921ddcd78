package codec

// scanState tracks where the scanner is: inside a quoted string, right
// after an unconsumed backslash, and which brackets are open. A comma is a
// separator only when none of these are active.
type scanState struct {
	escaped  bool
	inString bool
	open     []byte
}

func (s *scanState) depthZero() bool {
	return !s.inString && len(s.open) == 0
}

// step advances the state over c. It reports a separator comma and a
// closing bracket that does not match the innermost open one.
func (s *scanState) step(c byte) (sep, bad bool) {
	if s.escaped {
		s.escaped = false
		return false, false
	}
	switch c {
	case '\\':
		s.escaped = true
	case '"':
		s.inString = !s.inString
	case '[', '{':
		if !s.inString {
			s.open = append(s.open, c)
		}
	case ']', '}':
		if s.inString {
			break
		}
		want := byte('[')
		if c == '}' {
			want = '{'
		}
		n := len(s.open)
		if n == 0 || s.open[n-1] != want {
			return false, true
		}
		s.open = s.open[:n-1]
	case ',':
		return s.depthZero(), false
	}
	return false, false
}

// splitTopLevel calls emit for every depth-zero slice of text, in order.
// base is the offset of text within the whole input and is only used for
// error reporting. The final slice is always emitted once the scan ends in
// a clean state, so a trailing element without a comma is never lost.
func splitTopLevel(text string, base int, path string, emit func(slice string, offset int) error) error {
	var stack [16]byte
	st := scanState{open: stack[:0]}
	start := 0
	for i := 0; i < len(text); i++ {
		sep, bad := st.step(text[i])
		if bad {
			return newError(ErrUnbalancedBrackets, path, base+i, "unexpected '"+string(text[i])+"'")
		}
		if sep {
			if err := emit(text[start:i], base+start); err != nil {
				return err
			}
			start = i + 1
		}
	}
	switch {
	case st.escaped:
		return newError(ErrUnterminatedString, path, base+len(text), "dangling escape")
	case st.inString:
		return newError(ErrUnterminatedString, path, base+len(text), "missing closing quote")
	case len(st.open) != 0:
		return newError(ErrUnbalancedBrackets, path, base+len(text), "missing closing bracket for '"+string(st.open[len(st.open)-1])+"'")
	}
	return emit(text[start:], base+start)
}

// unwrap checks that text is enclosed by open and close and returns the
// content between them.
func unwrap(text string, open, close byte, base int, path string) (string, error) {
	if len(text) < 2 || text[0] != open {
		return "", newError(ErrUnbalancedBrackets, path, base, "expected '"+string(open)+"'")
	}
	if text[len(text)-1] != close {
		return "", newError(ErrUnbalancedBrackets, path, base+len(text)-1, "expected closing '"+string(close)+"'")
	}
	return text[1 : len(text)-1], nil
}
