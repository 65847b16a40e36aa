package observation

import (
	"fmt"
	"strings"
)

type Direction string

const (
	DirectionRequest  Direction = "REQUEST"
	DirectionResponse Direction = "RESPONSE"
)

// InvalidDomain is recorded when a URL could not be resolved to a
// registrable domain. It compares equal to itself like any other domain.
const InvalidDomain = "invalid"

// Header is one captured header on one request or response.
type Header struct {
	Direction       Direction `json:"method"`
	Name            string    `json:"header_name"`
	Value           string    `json:"header_value"`
	RequesterDomain string    `json:"host_domain"`
	ObservedDomain  string    `json:"method_domain"`
}

func (h Header) ThirdParty() bool {
	return h.ObservedDomain != h.RequesterDomain
}

func (d Direction) Valid() bool {
	switch d {
	case DirectionRequest, DirectionResponse:
		return true
	default:
		return false
	}
}

type ValidationError struct {
	Problems []string
}

func (v *ValidationError) Add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%d invalid header observation(s)", len(v.Problems))
}

// Validate checks every record and reports all problems at once. Values may
// be empty; names, directions and both domains may not.
func Validate(headers []Header) error {
	v := &ValidationError{}
	for i, h := range headers {
		validateOne(v, i, h)
	}
	if len(v.Problems) > 0 {
		return v
	}
	return nil
}

func validateOne(v *ValidationError, i int, h Header) {
	if !h.Direction.Valid() {
		v.Add("headers[%d].method must be REQUEST|RESPONSE, got %q", i, h.Direction)
	}
	if strings.TrimSpace(h.Name) == "" {
		v.Add("headers[%d].header_name is required", i)
	}
	if h.RequesterDomain == "" {
		v.Add("headers[%d].host_domain is required", i)
	}
	if h.ObservedDomain == "" {
		v.Add("headers[%d].method_domain is required", i)
	}
}
