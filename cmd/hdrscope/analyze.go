package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/hdrscope/hdrscope/internal/analysis"
	"github.com/hdrscope/hdrscope/internal/config"
	"github.com/hdrscope/hdrscope/internal/funnel"
	"github.com/hdrscope/hdrscope/internal/logging"
	"github.com/hdrscope/hdrscope/internal/observability"
	"github.com/hdrscope/hdrscope/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var flags configFlags
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the header funnel over captured sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			urls, err := siteURLs(cfg)
			if err != nil {
				return err
			}
			closeLog, err := setupLogging(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			batch, err := runAnalysis(cmd.Context(), cfg, urls)
			if err != nil {
				return err
			}

			content, err := renderBatch(batch, format)
			if err != nil {
				return err
			}
			if err := report.WriteOutput(cmd.OutOrStdout(), outPath, content); err != nil {
				return err
			}

			if len(batch.Failed) > 0 {
				return fmt.Errorf("%d of %d sites failed", len(batch.Failed), len(urls))
			}
			return nil
		},
	}

	flags.bind(cmd)
	flags.bindHeuristics(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|md|json")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file path (default stdout)")

	return cmd
}

func runAnalysis(ctx context.Context, cfg *config.Config, urls []string) (*analysis.BatchResult, error) {
	analyzer, err := analysis.New(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Logging.RunLog != "" {
		logger, closer, err := logging.OpenRunLog(cfg.ResolvePath(cfg.Logging.RunLog))
		if err != nil {
			return nil, err
		}
		defer func() { _ = closer() }()
		analyzer.SetRunLogger(logger)
	}

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		analyzer.SetMetrics(observability.NewMetrics(reg))
	}

	if ctx == nil {
		ctx = context.Background()
	}
	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("analysis started", "run_id", analyzer.RunID(), "sites", len(urls), "results", analyzer.ResultsDir())
	batch, err := analyzer.AnalyzeAll(signalCtx, urls)
	if err != nil {
		return nil, err
	}

	if reg != nil {
		if err := observability.WriteTextfile(cfg.ResolvePath(cfg.Metrics.Textfile), reg); err != nil {
			return nil, fmt.Errorf("write metrics: %w", err)
		}
	}
	return batch, nil
}

type siteOutput struct {
	Site        string         `json:"site"`
	URL         string         `json:"url"`
	Custom      int            `json:"custom_headers"`
	Pipeline    *funnel.Report `json:"pipeline"`
	Independent *funnel.Report `json:"independent"`
}

type batchOutput struct {
	RunID  string            `json:"run_id"`
	Sites  []siteOutput      `json:"sites"`
	Failed map[string]string `json:"failed,omitempty"`
}

func renderBatch(batch *analysis.BatchResult, format string) ([]byte, error) {
	switch format {
	case "", "text", "md":
		var b strings.Builder
		for i, res := range batch.Sites {
			if i > 0 {
				b.WriteString("\n")
			}
			writeSite(&b, res, format == "md")
		}
		failed := make([]string, 0, len(batch.Failed))
		for url := range batch.Failed {
			failed = append(failed, url)
		}
		sort.Strings(failed)
		for _, url := range failed {
			fmt.Fprintf(&b, "\nFAILED %s: %v\n", url, batch.Failed[url])
		}
		return []byte(b.String()), nil
	case "json":
		out := batchOutput{RunID: batch.RunID, Sites: []siteOutput{}}
		for _, res := range batch.Sites {
			out.Sites = append(out.Sites, siteOutput{
				Site:        res.Site,
				URL:         res.URL,
				Custom:      len(res.Custom),
				Pipeline:    res.Pipeline,
				Independent: res.Independent,
			})
		}
		if len(batch.Failed) > 0 {
			out.Failed = make(map[string]string, len(batch.Failed))
			for url, err := range batch.Failed {
				out.Failed[url] = err.Error()
			}
		}
		return json.MarshalIndent(out, "", "  ")
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func writeSite(w io.Writer, res *analysis.SiteResult, markdown bool) {
	if markdown {
		fmt.Fprintf(w, "# %s\n\n", res.Site)
		_, _ = io.WriteString(w, report.RenderFunnelMarkdown(res.Pipeline, res.Independent))
		return
	}
	fmt.Fprintf(w, "== %s (%d custom headers)\n", res.Site, len(res.Custom))
	_, _ = io.WriteString(w, report.RenderFunnelText(res.Pipeline, res.Independent))
}
