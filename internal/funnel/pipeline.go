package funnel

import "github.com/hdrscope/hdrscope/internal/observation"

const (
	PipelineLabel    = "Compound filtering statistics"
	IndependentLabel = "Independent filtering statistics"
)

type PipelineResult struct {
	Survivors      []observation.Header
	StandardCounts map[string]int
	Compound       *Report
}

// Pipeline runs the engine's production stages in cascading mode. Its
// survivors are the custom headers the tool reports.
func (e *Engine) Pipeline(headers []observation.Header) (*PipelineResult, error) {
	stages := e.PipelineStages
	if len(stages) == 0 {
		stages = ProductionStages()
	}

	report, err := e.Run(headers, stages, ModeCascading)
	if err != nil {
		return nil, err
	}
	report.Label = PipelineLabel

	return &PipelineResult{
		Survivors:      report.Survivors,
		StandardCounts: report.StandardCounts,
		Compound:       report,
	}, nil
}

// Independent measures each heuristic alone against the unfiltered input.
func (e *Engine) Independent(headers []observation.Header, heuristics []Stage) (*Report, error) {
	report, err := e.Run(headers, heuristics, ModeIndependent)
	if err != nil {
		return nil, err
	}
	report.Label = IndependentLabel
	return report, nil
}
