package normalize

import (
	"strings"
	"unicode/utf8"
)

// Unquote decodes every well-formed %XX escape in input. Malformed escapes
// are kept literally and '+' is left alone, so Unquote never fails.
func Unquote(input string) string {
	if strings.IndexByte(input, '%') < 0 {
		return input
	}

	out := make([]byte, 0, len(input))
	for i := 0; i < len(input); i++ {
		c := input[i]
		if c == '%' && i+2 < len(input) {
			hi, okHi := unhex(input[i+1])
			lo, okLo := unhex(input[i+2])
			if okHi && okLo {
				out = append(out, hi<<4|lo)
				i += 2
				continue
			}
		}
		out = append(out, c)
	}
	return string(out)
}

// DecodedLength is the number of characters in Unquote(input). Invalid
// UTF-8 counts one character per maximal invalid subpart, so a truncated
// multi-byte sequence counts once.
func DecodedLength(input string) int {
	s := Unquote(input)
	n := 0
	for i := 0; i < len(s); n++ {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			size = invalidPrefix(s[i:])
		}
		i += size
	}
	return n
}

// invalidPrefix returns the length of the maximal subpart at the start of s,
// which must not begin with a valid encoding. It is the longest prefix of a
// well-formed sequence, or 1 when the first byte cannot start one.
func invalidPrefix(s string) int {
	lo, hi := byte(0x80), byte(0xBF)
	var need int
	switch b := s[0]; {
	case b >= 0xC2 && b <= 0xDF:
		need = 1
	case b >= 0xE0 && b <= 0xEF:
		need = 2
		if b == 0xE0 {
			lo = 0xA0
		} else if b == 0xED {
			hi = 0x9F
		}
	case b >= 0xF0 && b <= 0xF4:
		need = 3
		if b == 0xF0 {
			lo = 0x90
		} else if b == 0xF4 {
			hi = 0x8F
		}
	default:
		return 1
	}

	n := 1
	for n <= need && n < len(s) {
		if c := s[n]; c < lo || c > hi {
			break
		}
		lo, hi = 0x80, 0xBF
		n++
	}
	return n
}

// HeaderName folds a header name for set lookups.
func HeaderName(name string) string {
	return strings.ToLower(name)
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
