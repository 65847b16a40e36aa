package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hdrscope/hdrscope/internal/funnel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "standard_headers.txt"), []byte("content-type\n"), 0o600))
	path := filepath.Join(dir, "hdrscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "configVersion: 1\nsites:\n  - url: http://wikipedia.org\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Dir(path), cfg.BaseDir())
	assert.Equal(t, filepath.Join(cfg.BaseDir(), "results"), cfg.ResolvePath(cfg.ResultsDir))
	assert.Equal(t, funnel.DefaultMinLength, cfg.Heuristics.MinLength)
	assert.Equal(t, funnel.ProductionStages(), cfg.PipelineStages())
	assert.Equal(t, funnel.Heuristics(), cfg.CombinationStages())
	assert.Equal(t, DefaultWorkers, cfg.Heuristics.Workers)
	require.NotNil(t, cfg.Logging.Compress)
	assert.True(t, *cfg.Logging.Compress)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `configVersion: 1
resultsDir: /tmp/out
heuristics:
  minLength: 12
  pipeline: [standard_headers, min_length, in_storage]
  combinations: [min_length, consistent]
  workers: 2
logging:
  compress: false
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/tmp/out", cfg.ResolvePath(cfg.ResultsDir))
	assert.Equal(t, 12, cfg.Heuristics.MinLength)
	assert.Equal(t, []funnel.Stage{funnel.StageStandard, funnel.StageMinLength, funnel.StageInStorage}, cfg.PipelineStages())
	assert.Len(t, cfg.CombinationStages(), 2)
	assert.False(t, *cfg.Logging.Compress)
}

func TestValidateCollectsProblems(t *testing.T) {
	path := writeConfig(t, `configVersion: 2
standardHeaders: missing.txt
sites:
  - url: ""
  - url: wikipedia.org
  - url: http://a.example
  - url: http://a.example
heuristics:
  minLength: -1
  pipeline: [third_party, min_length]
  combinations: [standard_headers, nope]
logging:
  format: xml
metrics:
  enabled: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	err = cfg.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	joined := map[string]bool{}
	for _, p := range verr.Problems {
		joined[p] = true
	}
	assert.True(t, joined["configVersion must be 1"])
	assert.True(t, joined["sites[0].url is required"])
	assert.True(t, joined[`sites[3].url "http://a.example" is duplicated`])
	assert.True(t, joined["heuristics.minLength must be > 0"])
	assert.True(t, joined["heuristics.pipeline must start with standard_headers"])
	assert.True(t, joined[`heuristics.combinations invalid: unknown stage "nope"`])
	assert.True(t, joined["logging.format must be text|json"])
	assert.True(t, joined["metrics.textfile required when metrics.enabled is true"])
	assert.Contains(t, verr.Error(), "validation error")
	assert.IsIncreasing(t, verr.Problems)
}

func TestValidatePipelineOrder(t *testing.T) {
	tests := []struct {
		pipeline string
		ok       bool
	}{
		{"[standard_headers, third_party, min_length, consistent, in_storage]", true},
		{"[standard_headers, third_party, in_storage]", true},
		{"[standard_headers]", true},
		{"[standard_headers, in_storage, third_party]", false},
		{"[standard_headers, consistent, min_length]", false},
	}

	for _, tt := range tests {
		path := writeConfig(t, "configVersion: 1\nheuristics:\n  pipeline: "+tt.pipeline+"\n")
		cfg, err := Load(path)
		require.NoError(t, err)

		err = cfg.Validate()
		if tt.ok {
			assert.NoError(t, err, tt.pipeline)
			continue
		}
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), tt.pipeline)
		assert.Equal(t, []string{"heuristics.pipeline must keep the order standard_headers, third_party, min_length, consistent, in_storage"}, verr.Problems)
	}
}

func TestDecode(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultResultsDir, cfg.ResultsDir)
	assert.Equal(t, "standard_headers.txt", cfg.ResolvePath(cfg.StandardHeaders))

	_, err = Decode(strings.NewReader("configVersion: 1\nresultDir: typo\n"))
	assert.ErrorContains(t, err, "parse config")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "read config")

	path := writeConfig(t, "configVersion: [\n")
	_, err = Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1, cfg.ConfigVersion)
	assert.Equal(t, DefaultResultsDir, cfg.ResultsDir)
	assert.Equal(t, "", cfg.ResolvePath(""))
}

func TestExampleConfigIsValid(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "hdrscope.example.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Sites, 2)
	assert.Equal(t, funnel.ProductionStages(), cfg.PipelineStages())
}
