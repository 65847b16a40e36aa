package config

import "github.com/hdrscope/hdrscope/internal/funnel"

type Config struct {
	ConfigVersion   int              `yaml:"configVersion"`
	ResultsDir      string           `yaml:"resultsDir"`
	StandardHeaders string           `yaml:"standardHeaders"`
	Sites           []Site           `yaml:"sites"`
	Heuristics      HeuristicsConfig `yaml:"heuristics"`
	Logging         LoggingConfig    `yaml:"logging"`
	Metrics         MetricsConfig    `yaml:"metrics"`

	baseDir string `yaml:"-"`
}

type Site struct {
	URL string `yaml:"url"`
}

type HeuristicsConfig struct {
	MinLength    int      `yaml:"minLength"`
	Pipeline     []string `yaml:"pipeline"`
	Combinations []string `yaml:"combinations"`
	Workers      int      `yaml:"workers"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   *bool  `yaml:"compress"`
	RunLog     string `yaml:"runLog"`
}

type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"`
}

const (
	DefaultResultsDir      = "results"
	DefaultStandardHeaders = "standard_headers.txt"
	DefaultWorkers         = 4
)

func Default() *Config {
	cfg := &Config{ConfigVersion: 1}
	cfg.ApplyDefaults()
	return cfg
}

func (c *Config) ApplyDefaults() {
	if c.ResultsDir == "" {
		c.ResultsDir = DefaultResultsDir
	}
	if c.StandardHeaders == "" {
		c.StandardHeaders = DefaultStandardHeaders
	}
	if c.Heuristics.MinLength == 0 {
		c.Heuristics.MinLength = funnel.DefaultMinLength
	}
	if len(c.Heuristics.Pipeline) == 0 {
		c.Heuristics.Pipeline = stageNames(funnel.ProductionStages())
	}
	if len(c.Heuristics.Combinations) == 0 {
		c.Heuristics.Combinations = stageNames(funnel.Heuristics())
	}
	if c.Heuristics.Workers == 0 {
		c.Heuristics.Workers = DefaultWorkers
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 100
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = 28
	}
	if c.Logging.Compress == nil {
		compress := true
		c.Logging.Compress = &compress
	}
}

// PipelineStages and CombinationStages assume Validate has passed.
func (c *Config) PipelineStages() []funnel.Stage {
	stages, _ := funnel.ParseStages(c.Heuristics.Pipeline)
	return stages
}

func (c *Config) CombinationStages() []funnel.Stage {
	stages, _ := funnel.ParseStages(c.Heuristics.Combinations)
	return stages
}

func (c *Config) BaseDir() string {
	return c.baseDir
}

func (c *Config) ResolvePath(path string) string {
	return c.resolvePath(path)
}

func stageNames(stages []funnel.Stage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = string(s)
	}
	return out
}
