package observation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// wireHeader distinguishes a missing key from an empty string.
type wireHeader struct {
	Method       *string `json:"method"`
	HeaderName   *string `json:"header_name"`
	HeaderValue  *string `json:"header_value"`
	HostDomain   *string `json:"host_domain"`
	MethodDomain *string `json:"method_domain"`
}

func Load(path string) ([]Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	headers, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return headers, nil
}

// Decode reads a JSON array of header records in document order. Records
// with missing keys are reported as a *ValidationError.
func Decode(r io.Reader) ([]Header, error) {
	var raw []wireHeader
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode headers: %w", err)
	}

	v := &ValidationError{}
	headers := make([]Header, 0, len(raw))
	for i, w := range raw {
		missing := false
		check := func(field string, p *string) string {
			if p == nil {
				v.Add("headers[%d].%s is missing", i, field)
				missing = true
				return ""
			}
			return *p
		}

		h := Header{
			Direction:       Direction(check("method", w.Method)),
			Name:            check("header_name", w.HeaderName),
			Value:           check("header_value", w.HeaderValue),
			RequesterDomain: check("host_domain", w.HostDomain),
			ObservedDomain:  check("method_domain", w.MethodDomain),
		}
		if !missing {
			validateOne(v, i, h)
		}
		headers = append(headers, h)
	}

	if len(v.Problems) > 0 {
		return nil, v
	}
	return headers, nil
}
