// Package capture turns Chrome DevTools network events into header
// observations.
package capture

import (
	"fmt"

	"github.com/hdrscope/hdrscope/internal/observation"
	"github.com/tidwall/gjson"
)

const (
	MethodRequestWillBeSent = "Network.requestWillBeSent"
	MethodResponseReceived  = "Network.responseReceived"
)

type Resolver interface {
	Registrable(rawURL string) string
}

type Event struct {
	Method string
	Params gjson.Result
}

// ParseEvents reads a JSON array of DevTools messages. Both bare messages
// ({"method":..., "params":...}) and performance log entries wrapping the
// message as a JSON string ({"message": "{\"message\":{...}}"}) are
// accepted. Entries that are neither, or carry other methods, are dropped.
func ParseEvents(data []byte) ([]Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("events: invalid json")
	}
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("events: expected a json array")
	}

	var events []Event
	parsed.ForEach(func(_, entry gjson.Result) bool {
		msg := entry
		if wrapped := entry.Get("message"); wrapped.Type == gjson.String {
			if !gjson.Valid(wrapped.Str) {
				return true
			}
			msg = gjson.Get(wrapped.Str, "message")
		}

		method := msg.Get("method").String()
		switch method {
		case MethodRequestWillBeSent, MethodResponseReceived:
			events = append(events, Event{Method: method, Params: msg.Get("params")})
		}
		return true
	})
	return events, nil
}

// ExtractHeaders flattens events into observations, keeping event order and
// the captured order of headers within each event.
func ExtractHeaders(events []Event, pageURL string, resolver Resolver) []observation.Header {
	requester := resolver.Registrable(pageURL)

	var out []observation.Header
	for _, ev := range events {
		var direction observation.Direction
		var target gjson.Result
		switch ev.Method {
		case MethodRequestWillBeSent:
			direction = observation.DirectionRequest
			target = ev.Params.Get("request")
		case MethodResponseReceived:
			direction = observation.DirectionResponse
			target = ev.Params.Get("response")
		default:
			continue
		}

		headers := target.Get("headers")
		if !headers.IsObject() {
			continue
		}
		observed := resolver.Registrable(target.Get("url").String())

		headers.ForEach(func(name, value gjson.Result) bool {
			out = append(out, observation.Header{
				Direction:       direction,
				Name:            name.String(),
				Value:           value.String(),
				RequesterDomain: requester,
				ObservedDomain:  observed,
			})
			return true
		})
	}
	return out
}
