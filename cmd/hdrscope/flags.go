package main

import (
	"errors"
	"fmt"

	"github.com/hdrscope/hdrscope/internal/config"
	"github.com/hdrscope/hdrscope/internal/logging"
	"github.com/spf13/cobra"
)

// configFlags are the flags shared by commands that read a config. Flags
// that are set win over the file.
type configFlags struct {
	path      string
	results   string
	standard  string
	urls      []string
	workers   int
	minLength int
}

func (f *configFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "config", "c", "", "Path to config file (defaults apply when omitted)")
	cmd.Flags().StringVar(&f.results, "results", "", "Override results directory")
	cmd.Flags().StringVar(&f.standard, "standard-headers", "", "Override standard header list path")
	cmd.Flags().StringSliceVar(&f.urls, "url", nil, "Site URL to process (repeatable, replaces configured sites)")
}

func (f *configFlags) bindHeuristics(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Override concurrent combination runs")
	cmd.Flags().IntVar(&f.minLength, "min-length", 0, "Override minimum decoded value length")
}

// load reads the config (or defaults), applies overrides and validates.
func (f *configFlags) load() (*config.Config, error) {
	cfg := config.Default()
	if f.path != "" {
		loaded, err := config.Load(f.path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.results != "" {
		cfg.ResultsDir = f.results
	}
	if f.standard != "" {
		cfg.StandardHeaders = f.standard
	}
	if len(f.urls) > 0 {
		cfg.Sites = cfg.Sites[:0]
		for _, u := range f.urls {
			cfg.Sites = append(cfg.Sites, config.Site{URL: u})
		}
	}
	if f.workers != 0 {
		cfg.Heuristics.Workers = f.workers
	}
	if f.minLength != 0 {
		cfg.Heuristics.MinLength = f.minLength
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func checkFormat(format string) error {
	switch format {
	case "", "text", "md", "json":
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func siteURLs(cfg *config.Config) ([]string, error) {
	if len(cfg.Sites) == 0 {
		return nil, errors.New("no sites: configure sites or pass --url")
	}
	urls := make([]string, len(cfg.Sites))
	for i, s := range cfg.Sites {
		urls[i] = s.URL
	}
	return urls, nil
}

func setupLogging(cfg *config.Config) (func() error, error) {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.Format = cfg.Logging.Format
	lc.FilePath = cfg.ResolvePath(cfg.Logging.File)
	lc.MaxSizeMB = cfg.Logging.MaxSizeMB
	lc.MaxBackups = cfg.Logging.MaxBackups
	lc.MaxAgeDays = cfg.Logging.MaxAgeDays
	if cfg.Logging.Compress != nil {
		lc.Compress = *cfg.Logging.Compress
	}
	return logging.Setup(lc)
}
