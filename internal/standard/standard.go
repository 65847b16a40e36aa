// Package standard classifies header names against a baseline list of
// well-known HTTP headers.
package standard

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/hdrscope/hdrscope/internal/normalize"
)

type Class int

const (
	Custom Class = iota
	Standard
)

func (c Class) String() string {
	if c == Standard {
		return "standard"
	}
	return "custom"
}

type Set map[string]struct{}

func NewSet(names ...string) Set {
	set := make(Set, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		set[normalize.HeaderName(name)] = struct{}{}
	}
	return set
}

func (s Set) Contains(name string) bool {
	_, ok := s[normalize.HeaderName(name)]
	return ok
}

func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func Load(path string) (Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return Parse(file)
}

// Parse reads one header name per line. Blank lines and lines starting with
// '#' are skipped.
func Parse(r io.Reader) (Set, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewSet(names...), nil
}

// Classify reports whether name is a standard header. Standard names are
// tallied in counts under their lower-cased form; counts is left untouched
// for custom names.
func Classify(name string, set Set, counts map[string]int) Class {
	key := normalize.HeaderName(name)
	if _, ok := set[key]; !ok {
		return Custom
	}
	counts[key]++
	return Standard
}
