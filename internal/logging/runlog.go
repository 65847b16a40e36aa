package logging

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxErrorLen = 256

type StageRemoval struct {
	Stage    string `json:"stage"`
	Entering int    `json:"entering"`
	Removed  int    `json:"removed"`
}

type RunRecord struct {
	Timestamp       time.Time      `json:"ts"`
	RunID           string         `json:"run_id"`
	Site            string         `json:"site"`
	URL             string         `json:"url"`
	TotalHeaders    int            `json:"total_headers"`
	StandardHeaders int            `json:"standard_headers"`
	CustomHeaders   int            `json:"custom_headers"`
	StoredValues    int            `json:"stored_values"`
	Stages          []StageRemoval `json:"stages"`
	DurationMS      int64          `json:"duration_ms"`
	Error           string         `json:"error,omitempty"`
}

type RunLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewRunLogger(w io.Writer) *RunLogger {
	return &RunLogger{w: w}
}

func OpenRunLog(path string) (*RunLogger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return NewRunLogger(file), file.Close, nil
}

func (l *RunLogger) Write(record RunRecord) error {
	if l == nil {
		return nil
	}
	if len(record.Error) > maxErrorLen {
		record.Error = record.Error[:maxErrorLen]
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = l.w.Write(append(data, '\n'))
	return err
}
