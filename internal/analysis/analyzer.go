// Package analysis runs the header funnel over captured sites and persists
// the results.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hdrscope/hdrscope/internal/config"
	"github.com/hdrscope/hdrscope/internal/funnel"
	"github.com/hdrscope/hdrscope/internal/logging"
	"github.com/hdrscope/hdrscope/internal/observability"
	"github.com/hdrscope/hdrscope/internal/observation"
	"github.com/hdrscope/hdrscope/internal/report"
	"github.com/hdrscope/hdrscope/internal/standard"
	"github.com/hdrscope/hdrscope/internal/storedvalues"
)

type Analyzer struct {
	resultsDir string
	standard   standard.Set
	minLength  int
	pipeline   []funnel.Stage
	heuristics []funnel.Stage
	workers    int

	runID   string
	runLog  *logging.RunLogger
	metrics *observability.Metrics
	now     func() time.Time
}

type SiteResult struct {
	Site         string
	URL          string
	Custom       []observation.Header
	Standard     map[string]int
	StoredValues int
	Pipeline     *funnel.Report
	Independent  *funnel.Report
	Combinations []*funnel.Report
}

type BatchResult struct {
	RunID  string
	Sites  []*SiteResult
	Failed map[string]error
}

func New(cfg *config.Config) (*Analyzer, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	set, err := standard.Load(cfg.ResolvePath(cfg.StandardHeaders))
	if err != nil {
		return nil, fmt.Errorf("load standard headers: %w", err)
	}

	return &Analyzer{
		resultsDir: cfg.ResolvePath(cfg.ResultsDir),
		standard:   set,
		minLength:  cfg.Heuristics.MinLength,
		pipeline:   cfg.PipelineStages(),
		heuristics: cfg.CombinationStages(),
		workers:    cfg.Heuristics.Workers,
		runID:      uuid.NewString(),
		now:        time.Now,
	}, nil
}

func (a *Analyzer) SetRunLogger(logger *logging.RunLogger) {
	a.runLog = logger
}

func (a *Analyzer) SetMetrics(metrics *observability.Metrics) {
	a.metrics = metrics
}

func (a *Analyzer) RunID() string {
	return a.runID
}

func (a *Analyzer) ResultsDir() string {
	return a.resultsDir
}

// AnalyzeAll analyzes every site in order. A failing site is logged and
// recorded in the result, and the batch moves on. all_custom_headers.json
// holds one list per site, empty for failed sites.
func (a *Analyzer) AnalyzeAll(ctx context.Context, urls []string) (*BatchResult, error) {
	batch := &BatchResult{RunID: a.runID, Failed: map[string]error{}}
	all := make([][]observation.Header, 0, len(urls))

	for _, rawURL := range urls {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		res, err := a.AnalyzeSite(ctx, rawURL)
		if err != nil {
			site := SiteLayout(a.resultsDir, rawURL).Site
			slog.Error("site analysis failed", "site", site, "url", rawURL, "err", err)
			batch.Failed[rawURL] = err
			all = append(all, []observation.Header{})
			continue
		}
		batch.Sites = append(batch.Sites, res)
		all = append(all, res.Custom)
	}

	if err := report.SaveJSON(filepath.Join(a.resultsDir, AllCustomHeadersFile), all); err != nil {
		return batch, fmt.Errorf("save custom headers: %w", err)
	}
	return batch, nil
}

// AnalyzeSite runs the production pipeline, the independent pass and every
// heuristic combination over one site's capture and writes the outputs.
func (a *Analyzer) AnalyzeSite(ctx context.Context, rawURL string) (res *SiteResult, err error) {
	start := a.now()
	layout := SiteLayout(a.resultsDir, rawURL)
	record := logging.RunRecord{
		Timestamp: start,
		RunID:     a.runID,
		Site:      layout.Site,
		URL:       rawURL,
	}
	defer func() {
		record.DurationMS = a.now().Sub(start).Milliseconds()
		survivors := 0
		if err != nil {
			record.Error = err.Error()
		} else {
			survivors = len(res.Custom)
		}
		a.metrics.ObserveSite(layout.Site, err, survivors)
		if werr := a.runLog.Write(record); werr != nil {
			slog.Warn("run log write failed", "site", layout.Site, "err", werr)
		}
	}()

	headers, err := observation.Load(layout.CapturePath(AllHeadersFile))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", layout.Site, err)
	}
	stored, err := storedvalues.LoadList(layout.CapturePath(StorageValuesFile))
	if err != nil {
		return nil, fmt.Errorf("%s: load stored values: %w", layout.Site, err)
	}

	engine := funnel.NewEngine(funnel.Inputs{
		Standard:  a.standard,
		Stored:    stored,
		MinLength: a.minLength,
	})
	if len(a.pipeline) > 0 {
		engine.PipelineStages = a.pipeline
	}

	res = &SiteResult{Site: layout.Site, URL: rawURL, StoredValues: len(stored)}
	record.StoredValues = len(stored)

	took := a.now()
	pipe, err := engine.Pipeline(headers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", layout.Site, err)
	}
	a.metrics.ObserveReport(observability.FunnelPipeline, pipe.Compound, a.now().Sub(took))

	res.Pipeline = pipe.Compound
	res.Custom = pipe.Survivors
	if res.Custom == nil {
		res.Custom = []observation.Header{}
	}
	res.Standard = pipe.StandardCounts

	record.TotalHeaders = pipe.Compound.Total
	record.CustomHeaders = len(res.Custom)
	for _, n := range pipe.StandardCounts {
		record.StandardHeaders += n
	}
	for _, s := range pipe.Compound.Stages {
		record.Stages = append(record.Stages, logging.StageRemoval{
			Stage:    string(s.Stage),
			Entering: s.Entering,
			Removed:  s.Removed,
		})
	}

	took = a.now()
	res.Independent, err = engine.Independent(headers, a.heuristics)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", layout.Site, err)
	}
	a.metrics.ObserveReport(observability.FunnelIndependent, res.Independent, a.now().Sub(took))

	took = a.now()
	res.Combinations, err = engine.RunCombinations(ctx, headers, a.heuristics, a.workers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", layout.Site, err)
	}
	per := a.now().Sub(took)
	if len(res.Combinations) > 0 {
		per /= time.Duration(len(res.Combinations))
	}
	for _, r := range res.Combinations {
		r.ComparePipeline(res.Pipeline)
		a.metrics.ObserveReport(observability.FunnelCombination, r, per)
	}

	if err := a.save(layout, res); err != nil {
		return nil, fmt.Errorf("%s: %w", layout.Site, err)
	}

	slog.Info("site analyzed",
		"site", layout.Site,
		"headers", record.TotalHeaders,
		"standard", record.StandardHeaders,
		"custom", record.CustomHeaders,
		"stored_values", record.StoredValues,
	)
	return res, nil
}

type output struct {
	path string
	v    any
}

func (a *Analyzer) save(layout Layout, res *SiteResult) error {
	outputs := []output{
		{layout.PipelinePath(CustomHeadersFile), res.Custom},
		{layout.PipelinePath(StandardHeadersFile), res.Standard},
		{layout.PipelinePath(CompoundStatsFile), res.Pipeline},
		{layout.StatsPath(IndependentStatsFile), res.Independent},
	}
	for _, r := range res.Combinations {
		outputs = append(outputs, output{layout.CombinationPath(r.Index), r})
	}

	for _, out := range outputs {
		if err := report.SaveJSON(out.path, out.v); err != nil {
			return fmt.Errorf("save %s: %w", filepath.Base(out.path), err)
		}
	}
	return nil
}
