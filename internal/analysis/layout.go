package analysis

import (
	"path/filepath"
	"strconv"

	"github.com/hdrscope/hdrscope/internal/domain"
)

const (
	NetworkEventsFile  = "network_events.json"
	CookiesFile        = "cookies.json"
	LocalStorageFile   = "local_storage.json"
	SessionStorageFile = "session_storage.json"
	AllHeadersFile     = "all_headers.json"
	StorageValuesFile  = "storage_values.json"

	CustomHeadersFile    = "custom_headers.json"
	StandardHeadersFile  = "standard_headers.json"
	CompoundStatsFile    = "compound_filter_stats.json"
	IndependentStatsFile = "filter_stats.json"
	AllCustomHeadersFile = "all_custom_headers.json"
)

type Layout struct {
	Site     string
	Root     string
	Capture  string
	Pipeline string
	Stats    string
}

func SiteLayout(resultsDir, rawURL string) Layout {
	site := domain.SiteName(rawURL)
	root := filepath.Join(resultsDir, site)
	return Layout{
		Site:     site,
		Root:     root,
		Capture:  filepath.Join(root, "capture"),
		Pipeline: filepath.Join(root, "pipeline"),
		Stats:    filepath.Join(root, "stats"),
	}
}

func (l Layout) CapturePath(name string) string {
	return filepath.Join(l.Capture, name)
}

func (l Layout) PipelinePath(name string) string {
	return filepath.Join(l.Pipeline, name)
}

func (l Layout) StatsPath(name string) string {
	return filepath.Join(l.Stats, name)
}

func (l Layout) CombinationPath(n int) string {
	return filepath.Join(l.Stats, "filtering_combination"+strconv.Itoa(n)+".json")
}
