package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnquote(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"plain":             "plain",
		"%61%62c":           "abc",
		"%2Fpath%2fx":       "/path/x",
		"a+b":               "a+b",
		"100%":              "100%",
		"%zz%41":            "%zzA",
		"%4":                "%4",
		"%%41":              "%A",
		"%E2%9C%93":         "✓",
		"%7B%22a%22%3A1%7D": `{"a":1}`,
	}

	for input, expected := range cases {
		assert.Equal(t, expected, Unquote(input), "Unquote(%q)", input)
	}
}

func TestDecodedLength(t *testing.T) {
	assert.Equal(t, 7, DecodedLength("%61%62%63%64%65%66%67"))
	assert.Equal(t, 8, DecodedLength("%61%62%63%64%65%66%67%68"))
	assert.Equal(t, 1, DecodedLength("%E2%9C%93"))
	assert.Equal(t, 3, DecodedLength("%G1"))
	// a lone continuation byte counts once
	assert.Equal(t, 2, DecodedLength("%80a"))
}

func TestDecodedLengthCollapsesTruncatedSequences(t *testing.T) {
	cases := map[string]int{
		"%F0%9F%98":        1,
		"%E2%9C":           1,
		"%E2%9Cx":          2,
		"%FF%FF":           2,
		"%ED%A0%80":        3,
		"%E0%80":           2,
		"%F0%9F%98%F0%9F":  2,
		"%F0%9F%98abcde":   6,
		"%F0%9F%98abcdefg": 8,
	}

	for input, expected := range cases {
		assert.Equal(t, expected, DecodedLength(input), "DecodedLength(%q)", input)
	}
}

func TestHeaderName(t *testing.T) {
	assert.Equal(t, "content-type", HeaderName("Content-Type"))
	assert.Equal(t, "x-trace", HeaderName("x-trace"))
}
