package standard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := "Content-Type\n\n  Accept-Language  \n# comment\nx-forwarded-for\n"
	set, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"accept-language", "content-type", "x-forwarded-for"}, set.Names())
	assert.True(t, set.Contains("CONTENT-TYPE"))
	assert.False(t, set.Contains("x-trace"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standard_headers.txt")
	require.NoError(t, os.WriteFile(path, []byte("Date\nVary\n"), 0o600))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, set, 2)

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	set := NewSet("content-type", "date")
	counts := map[string]int{}

	assert.Equal(t, Standard, Classify("Content-Type", set, counts))
	assert.Equal(t, Standard, Classify("content-type", set, counts))
	assert.Equal(t, Standard, Classify("Date", set, counts))
	assert.Equal(t, Custom, Classify("X-Trace", set, counts))

	assert.Equal(t, map[string]int{"content-type": 2, "date": 1}, counts)
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "standard", Standard.String())
	assert.Equal(t, "custom", Custom.String())
}
