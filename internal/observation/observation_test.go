package observation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := Header{
		Direction:       DirectionRequest,
		Name:            "X-Trace",
		Value:           "",
		RequesterDomain: "example.com",
		ObservedDomain:  "cdn.example",
	}
	assert.NoError(t, Validate([]Header{valid}))

	bad := []Header{
		valid,
		{Direction: "GET", Name: " ", RequesterDomain: "", ObservedDomain: ""},
	}
	err := Validate(bad)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 4)
	for _, p := range verr.Problems {
		assert.True(t, strings.HasPrefix(p, "headers[1]."), p)
	}
}

func TestThirdPartyComparesLiterally(t *testing.T) {
	h := Header{RequesterDomain: InvalidDomain, ObservedDomain: InvalidDomain}
	assert.False(t, h.ThirdParty())

	h.ObservedDomain = "Example.com"
	h.RequesterDomain = "example.com"
	assert.True(t, h.ThirdParty())
}

func TestDecodePreservesOrder(t *testing.T) {
	input := `[
		{"method":"REQUEST","header_name":"X-A","header_value":"1","host_domain":"a.com","method_domain":"b.com"},
		{"method":"RESPONSE","header_name":"X-B","header_value":"","host_domain":"a.com","method_domain":"a.com"}
	]`
	headers, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, headers, 2)
	assert.Equal(t, "X-A", headers[0].Name)
	assert.Equal(t, DirectionResponse, headers[1].Direction)
	assert.Equal(t, "", headers[1].Value)
}

func TestDecodeReportsMissingKeys(t *testing.T) {
	input := `[{"method":"REQUEST","header_name":"X-A","host_domain":"a.com"}]`
	_, err := Decode(strings.NewReader(input))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{
		"headers[0].header_value is missing",
		"headers[0].method_domain is missing",
	}, verr.Problems)
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"not":"an array"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode headers")
}
