package config

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/hdrscope/hdrscope/internal/funnel"
)

type ValidationError struct {
	Problems []string
}

func (v *ValidationError) Add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%d validation error(s)", len(v.Problems))
}

func (c *Config) Validate() error {
	v := &ValidationError{}

	if c.ConfigVersion != 1 {
		v.Add("configVersion must be 1")
	}

	if strings.TrimSpace(c.ResultsDir) == "" {
		v.Add("resultsDir is required")
	}

	if c.StandardHeaders == "" {
		v.Add("standardHeaders is required")
	} else if err := requireFile(c.resolvePath(c.StandardHeaders)); err != nil {
		v.Add("standardHeaders invalid: %v", err)
	}

	seen := map[string]struct{}{}
	for i, site := range c.Sites {
		if site.URL == "" {
			v.Add("sites[%d].url is required", i)
			continue
		}
		if err := validateURL(site.URL); err != nil {
			v.Add("sites[%d].url invalid: %v", i, err)
			continue
		}
		if _, dup := seen[site.URL]; dup {
			v.Add("sites[%d].url %q is duplicated", i, site.URL)
		}
		seen[site.URL] = struct{}{}
	}

	if c.Heuristics.MinLength <= 0 {
		v.Add("heuristics.minLength must be > 0")
	}
	if c.Heuristics.Workers <= 0 {
		v.Add("heuristics.workers must be > 0")
	}

	pipeline, err := funnel.ParseStages(c.Heuristics.Pipeline)
	if err != nil {
		v.Add("heuristics.pipeline invalid: %v", err)
	} else if pipeline[0] != funnel.StageStandard {
		v.Add("heuristics.pipeline must start with %s", funnel.StageStandard)
	} else if !inProductionOrder(pipeline) {
		v.Add("heuristics.pipeline must keep the order %s", strings.Join(stageNames(funnel.ProductionStages()), ", "))
	}

	combos, err := funnel.ParseStages(c.Heuristics.Combinations)
	if err != nil {
		v.Add("heuristics.combinations invalid: %v", err)
	} else {
		for _, s := range combos {
			if s == funnel.StageStandard {
				v.Add("heuristics.combinations must not include %s", funnel.StageStandard)
			}
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		v.Add("logging.format must be text|json")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		v.Add("logging.level must be debug|info|warn|error")
	}

	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		v.Add("metrics.textfile required when metrics.enabled is true")
	}

	if len(v.Problems) > 0 {
		sort.Strings(v.Problems)
		return v
	}
	return nil
}

// inProductionOrder reports whether stages is a subsequence of the
// production pipeline. Stages may be left out but not reordered.
func inProductionOrder(stages []funnel.Stage) bool {
	pos := map[funnel.Stage]int{}
	for i, s := range funnel.ProductionStages() {
		pos[s] = i
	}
	last := -1
	for _, s := range stages {
		if pos[s] <= last {
			return false
		}
		last = pos[s]
	}
	return true
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("must include scheme and host")
	}
	return nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
