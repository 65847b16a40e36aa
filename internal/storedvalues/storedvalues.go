// Package storedvalues builds the set of strings a page kept in cookies,
// localStorage and sessionStorage during a visit.
package storedvalues

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hdrscope/hdrscope/internal/normalize"
	"github.com/tidwall/gjson"
)

// Set is matched exactly: no trimming, no case folding, no decoding.
type Set map[string]struct{}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	s.Add(values...)
	return s
}

func (s Set) Add(values ...string) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

func (s Set) Contains(value string) bool {
	_, ok := s[value]
	return ok
}

func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func LoadList(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: invalid json", path)
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%s: expected a json array", path)
	}

	set := NewSet()
	parsed.ForEach(func(_, item gjson.Result) bool {
		set.Add(scalarText(item))
		return true
	})
	return set, nil
}

// FromCookies extracts candidate values from a JSON array of cookie objects
// (the shape returned by CDP Network.getAllCookies or WebDriver).
func FromCookies(data []byte) ([]string, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("cookies: invalid json")
	}

	var out []string
	gjson.GetBytes(data, "#.value").ForEach(func(_, value gjson.Result) bool {
		out = append(out, CookieValues(value.String())...)
		return true
	})
	return out, nil
}

// CookieValues splits one cookie value into the values it carries.
// Colon-separated key=value lists yield each value; a (possibly
// percent-encoded) JSON object yields its leaves; anything else is kept
// whole.
func CookieValues(value string) []string {
	if strings.Contains(value, ":") && strings.Contains(value, "=") {
		var out []string
		for _, part := range strings.Split(value, ":") {
			if _, v, ok := strings.Cut(part, "="); ok {
				out = append(out, v)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	decoded := normalize.Unquote(value)
	if gjson.Valid(decoded) {
		if parsed := gjson.Parse(decoded); parsed.IsObject() {
			var out []string
			parsed.ForEach(func(_, v gjson.Result) bool {
				walk(v, func(s string) { out = append(out, s) })
				return true
			})
			return out
		}
	}

	return []string{value}
}

// FromStorage extracts leaf values from a localStorage or sessionStorage
// dump (a JSON object of key to string). String values holding JSON are
// unpacked recursively.
func FromStorage(data []byte) ([]string, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("storage: invalid json")
	}

	parsed := gjson.ParseBytes(data)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("storage: expected a json object")
	}

	var out []string
	parsed.ForEach(func(_, v gjson.Result) bool {
		walk(v, func(s string) { out = append(out, s) })
		return true
	})
	return out, nil
}

func Collect(cookies, local, session []byte) (Set, error) {
	set := NewSet()

	values, err := FromCookies(cookies)
	if err != nil {
		return nil, err
	}
	set.Add(values...)

	for _, src := range [][]byte{local, session} {
		values, err := FromStorage(src)
		if err != nil {
			return nil, err
		}
		set.Add(values...)
	}
	return set, nil
}

func walk(r gjson.Result, add func(string)) {
	switch {
	case r.IsObject(), r.IsArray():
		r.ForEach(func(_, v gjson.Result) bool {
			walk(v, add)
			return true
		})
	case r.Type == gjson.String:
		if nested, ok := nestedJSON(r.Str); ok {
			walk(nested, add)
			return
		}
		add(r.Str)
	case r.Type == gjson.Null:
	default:
		add(r.Raw)
	}
}

// nestedJSON reports whether s is itself a JSON object, array or string
// literal worth descending into.
func nestedJSON(s string) (gjson.Result, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || !gjson.Valid(trimmed) {
		return gjson.Result{}, false
	}
	parsed := gjson.Parse(trimmed)
	if parsed.IsObject() || parsed.IsArray() || parsed.Type == gjson.String {
		return parsed, true
	}
	return gjson.Result{}, false
}

func scalarText(r gjson.Result) string {
	if r.Type == gjson.String {
		return r.Str
	}
	return r.Raw
}
