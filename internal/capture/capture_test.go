package capture

import (
	"fmt"
	"testing"

	"github.com/hdrscope/hdrscope/internal/domain"
	"github.com/hdrscope/hdrscope/internal/observation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEvents = `[
	{"method":"Network.requestWillBeSent","params":{"request":{
		"url":"https://cdn.tracker.net/p.gif",
		"headers":{"X-Zeta":"1","Accept":"*/*","X-Alpha":"abcdefgh"}
	}}},
	{"method":"Network.loadingFinished","params":{}},
	{"method":"Network.responseReceived","params":{"response":{
		"url":"https://www.example.com/",
		"headers":{"content-type":"text/html"}
	}}},
	{"method":"Network.requestWillBeSent","params":{"request":{"url":"https://x.example.com/"}}}
]`

func newResolver(t *testing.T) *domain.Resolver {
	t.Helper()
	r, err := domain.NewResolver(0)
	require.NoError(t, err)
	return r
}

func TestExtractHeadersKeepsCapturedOrder(t *testing.T) {
	events, err := ParseEvents([]byte(sampleEvents))
	require.NoError(t, err)
	require.Len(t, events, 3)

	headers := ExtractHeaders(events, "http://example.com", newResolver(t))
	require.Len(t, headers, 4)

	names := make([]string, len(headers))
	for i, h := range headers {
		names[i] = h.Name
	}
	assert.Equal(t, []string{"X-Zeta", "Accept", "X-Alpha", "content-type"}, names)

	assert.Equal(t, observation.Header{
		Direction:       observation.DirectionRequest,
		Name:            "X-Alpha",
		Value:           "abcdefgh",
		RequesterDomain: "example.com",
		ObservedDomain:  "tracker.net",
	}, headers[2])
	assert.Equal(t, observation.DirectionResponse, headers[3].Direction)
	assert.Equal(t, "example.com", headers[3].ObservedDomain)
}

func TestParseEventsUnwrapsPerformanceLog(t *testing.T) {
	inner := `{"message":{"method":"Network.responseReceived","params":{"response":{"url":"http://localhost/","headers":{"X-Id":"42"}}}}}`
	data := fmt.Sprintf(`[{"level":"INFO","message":%q},{"message":"not json"}]`, inner)

	events, err := ParseEvents([]byte(data))
	require.NoError(t, err)
	require.Len(t, events, 1)

	headers := ExtractHeaders(events, "http://localhost:3000", newResolver(t))
	require.Len(t, headers, 1)
	assert.Equal(t, observation.InvalidDomain, headers[0].RequesterDomain)
	assert.Equal(t, observation.InvalidDomain, headers[0].ObservedDomain)
	assert.False(t, headers[0].ThirdParty())
}

func TestParseEventsRejectsNonArray(t *testing.T) {
	_, err := ParseEvents([]byte(`{}`))
	assert.Error(t, err)
	_, err = ParseEvents([]byte(`[`))
	assert.Error(t, err)
}
