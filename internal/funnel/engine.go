// Package funnel evaluates ordered header filters and reports how many
// headers each filter removes.
package funnel

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hdrscope/hdrscope/internal/observation"
)

type Mode string

const (
	// ModeCascading rejects a header at its first failing stage; later
	// stages never see it.
	ModeCascading Mode = "cascading"
	// ModeIndependent measures every stage alone against the full input.
	ModeIndependent Mode = "independent"
)

type StageStats struct {
	Stage    Stage `json:"stage"`
	Entering int   `json:"headers_entering"`
	Removed  int   `json:"headers_removed"`
}

type Report struct {
	Index    int          `json:"index,omitempty"`
	Label    string       `json:"label"`
	Mode     Mode         `json:"mode"`
	Total    int          `json:"total_headers"`
	Stages   []StageStats `json:"stages"`
	Survived int          `json:"survivors"`

	// PipelineOverlap is set on combination reports: how many of their
	// survivors the production pipeline also kept.
	PipelineOverlap *int `json:"pipeline_overlap,omitempty"`

	Survivors      []observation.Header `json:"-"`
	StandardCounts map[string]int       `json:"-"`

	survivors *roaring.Bitmap
}

// SurvivorIndices returns the input positions of the surviving headers in
// ascending order.
func (r *Report) SurvivorIndices() []uint32 {
	if r.survivors == nil {
		return nil
	}
	return r.survivors.ToArray()
}

// Overlap counts headers that survive in both reports. Both must come from
// the same input.
func (r *Report) Overlap(other *Report) int {
	if r.survivors == nil || other == nil || other.survivors == nil {
		return 0
	}
	return int(roaring.And(r.survivors, other.survivors).GetCardinality())
}

// ComparePipeline records the overlap of r with the production pipeline
// report of the same input.
func (r *Report) ComparePipeline(pipeline *Report) {
	n := r.Overlap(pipeline)
	r.PipelineOverlap = &n
}

// Engine runs funnels over a fixed set of inputs. It holds no per-run
// state, so one engine may serve concurrent runs.
type Engine struct {
	Inputs         Inputs
	PipelineStages []Stage
}

func NewEngine(in Inputs) *Engine {
	return &Engine{Inputs: in, PipelineStages: ProductionStages()}
}

// Run validates headers and stages, then evaluates stages in order over
// headers, which are processed strictly in input order.
func (e *Engine) Run(headers []observation.Header, stages []Stage, mode Mode) (*Report, error) {
	if err := ValidateStages(stages); err != nil {
		return nil, err
	}
	if err := observation.Validate(headers); err != nil {
		return nil, err
	}

	switch mode {
	case ModeCascading:
		return e.cascade(headers, stages), nil
	case ModeIndependent:
		return e.independent(headers, stages), nil
	default:
		return nil, fmt.Errorf("unknown funnel mode %q", mode)
	}
}

func (e *Engine) cascade(headers []observation.Header, stages []Stage) *Report {
	st := NewState()
	removed := make([]int, len(stages))
	passed := roaring.New()
	var survivors []observation.Header

	for i, h := range headers {
		rejected := -1
		for k, s := range stages {
			if !s.Test(h, st, &e.Inputs) {
				rejected = k
				break
			}
		}
		if rejected >= 0 {
			removed[rejected]++
			continue
		}
		passed.Add(uint32(i))
		survivors = append(survivors, h)
	}

	stats := make([]StageStats, len(stages))
	entering := len(headers)
	for k, s := range stages {
		stats[k] = StageStats{Stage: s, Entering: entering, Removed: removed[k]}
		entering -= removed[k]
	}

	return &Report{
		Label:          joinStages(stages, " + "),
		Mode:           ModeCascading,
		Total:          len(headers),
		Stages:         stats,
		Survived:       len(survivors),
		Survivors:      survivors,
		StandardCounts: st.StandardCounts,
		survivors:      passed,
	}
}

// independent gives every stage a fresh State and the whole input. The
// survivors are the headers every stage kept on its own, which can differ
// from the cascading survivors because consistent sees another population.
func (e *Engine) independent(headers []observation.Header, stages []Stage) *Report {
	total := len(headers)
	stats := make([]StageStats, len(stages))
	counts := map[string]int{}
	var all *roaring.Bitmap

	for k, s := range stages {
		st := NewState()
		passed := roaring.New()
		for i, h := range headers {
			if s.Test(h, st, &e.Inputs) {
				passed.Add(uint32(i))
			}
		}
		stats[k] = StageStats{Stage: s, Entering: total, Removed: total - int(passed.GetCardinality())}

		if s == StageStandard {
			counts = st.StandardCounts
		}
		if all == nil {
			all = passed
		} else {
			all.And(passed)
		}
	}

	var survivors []observation.Header
	for _, i := range all.ToArray() {
		survivors = append(survivors, headers[i])
	}

	return &Report{
		Label:          joinStages(stages, " + "),
		Mode:           ModeIndependent,
		Total:          total,
		Stages:         stats,
		Survived:       len(survivors),
		Survivors:      survivors,
		StandardCounts: counts,
		survivors:      all,
	}
}
