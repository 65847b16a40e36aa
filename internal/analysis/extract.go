package analysis

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hdrscope/hdrscope/internal/capture"
	"github.com/hdrscope/hdrscope/internal/observation"
	"github.com/hdrscope/hdrscope/internal/report"
	"github.com/hdrscope/hdrscope/internal/storedvalues"
)

type ExtractResult struct {
	Site         string
	Events       int
	Headers      int
	StoredValues int
}

// Extract converts a site's raw capture files into all_headers.json and
// storage_values.json. network_events.json is required; the cookie and
// storage dumps are optional.
func Extract(resultsDir, rawURL string, resolver capture.Resolver) (*ExtractResult, error) {
	layout := SiteLayout(resultsDir, rawURL)

	data, err := os.ReadFile(layout.CapturePath(NetworkEventsFile))
	if err != nil {
		return nil, fmt.Errorf("read network events: %w", err)
	}
	events, err := capture.ParseEvents(data)
	if err != nil {
		return nil, err
	}

	headers := capture.ExtractHeaders(events, rawURL, resolver)
	if headers == nil {
		headers = []observation.Header{}
	}

	var sources [3][]byte
	for i, name := range []string{CookiesFile, LocalStorageFile, SessionStorageFile} {
		sources[i], err = readOptional(layout.CapturePath(name))
		if err != nil {
			return nil, err
		}
	}
	stored, err := storedvalues.Collect(sources[0], sources[1], sources[2])
	if err != nil {
		return nil, err
	}

	if err := report.SaveJSON(layout.CapturePath(AllHeadersFile), headers); err != nil {
		return nil, fmt.Errorf("save headers: %w", err)
	}
	if err := report.SaveJSON(layout.CapturePath(StorageValuesFile), stored.Values()); err != nil {
		return nil, fmt.Errorf("save stored values: %w", err)
	}

	return &ExtractResult{
		Site:         layout.Site,
		Events:       len(events),
		Headers:      len(headers),
		StoredValues: len(stored),
	}, nil
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
