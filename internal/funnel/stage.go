package funnel

import (
	"fmt"
	"strings"

	"github.com/hdrscope/hdrscope/internal/normalize"
	"github.com/hdrscope/hdrscope/internal/observation"
	"github.com/hdrscope/hdrscope/internal/standard"
	"github.com/hdrscope/hdrscope/internal/storedvalues"
)

// Stage identifies one filter of the funnel. The set is closed: every
// value is listed below and handled by Test.
type Stage string

const (
	StageStandard   Stage = "standard_headers"
	StageThirdParty Stage = "third_party"
	StageMinLength  Stage = "min_length"
	StageConsistent Stage = "consistent"
	// StageInStorage keeps headers whose value was found in cookies or
	// web storage.
	StageInStorage Stage = "in_storage"
)

const DefaultMinLength = 8

var allStages = []Stage{StageStandard, StageThirdParty, StageMinLength, StageConsistent, StageInStorage}

// Heuristics is the canonical heuristic order used for combinations.
func Heuristics() []Stage {
	return []Stage{StageThirdParty, StageMinLength, StageConsistent, StageInStorage}
}

// ProductionStages is the fixed order whose survivors are reported as
// custom headers.
func ProductionStages() []Stage {
	return append([]Stage{StageStandard}, Heuristics()...)
}

func (s Stage) Valid() bool {
	for _, known := range allStages {
		if s == known {
			return true
		}
	}
	return false
}

// Inputs are shared read-only by every run of an engine.
type Inputs struct {
	Standard  standard.Set
	Stored    storedvalues.Set
	MinLength int
}

func (in *Inputs) minLength() int {
	if in.MinLength <= 0 {
		return DefaultMinLength
	}
	return in.MinLength
}

// Test reports whether h survives stage s. Only StageStandard and
// StageConsistent touch st.
func (s Stage) Test(h observation.Header, st *State, in *Inputs) bool {
	switch s {
	case StageStandard:
		return standard.Classify(h.Name, in.Standard, st.StandardCounts) == standard.Custom
	case StageThirdParty:
		return h.ThirdParty()
	case StageMinLength:
		return normalize.DecodedLength(h.Value) >= in.minLength()
	case StageConsistent:
		return st.consistent(h)
	case StageInStorage:
		return in.Stored.Contains(h.Value)
	}
	panic(fmt.Sprintf("funnel: unknown stage %q", string(s)))
}

// ParseStages converts configured names into stages, rejecting unknown and
// repeated names.
func ParseStages(names []string) ([]Stage, error) {
	stages := make([]Stage, 0, len(names))
	for _, name := range names {
		stages = append(stages, Stage(strings.TrimSpace(name)))
	}
	if err := ValidateStages(stages); err != nil {
		return nil, err
	}
	return stages, nil
}

func ValidateStages(stages []Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("at least one stage is required")
	}
	seen := make(map[Stage]struct{}, len(stages))
	for _, s := range stages {
		if !s.Valid() {
			return fmt.Errorf("unknown stage %q", string(s))
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("stage %q listed twice", string(s))
		}
		seen[s] = struct{}{}
	}
	return nil
}

func joinStages(stages []Stage, sep string) string {
	parts := make([]string, len(stages))
	for i, s := range stages {
		parts[i] = string(s)
	}
	return strings.Join(parts, sep)
}
