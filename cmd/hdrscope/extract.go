package main

import (
	"fmt"
	"log/slog"

	"github.com/hdrscope/hdrscope/internal/analysis"
	"github.com/hdrscope/hdrscope/internal/domain"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var flags configFlags
	var cacheSize int

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Convert raw capture files into header observations and stored values",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			resolver, err := domain.NewResolver(cacheSize)
			if err != nil {
				return err
			}

			resultsDir := cfg.ResolvePath(cfg.ResultsDir)
			failed := 0
			for _, rawURL := range urls {
				res, err := analysis.Extract(resultsDir, rawURL, resolver)
				if err != nil {
					failed++
					slog.Error("extract failed", "url", rawURL, "err", err)
					continue
				}
				slog.Info("site extracted", "site", res.Site, "events", res.Events, "headers", res.Headers, "stored_values", res.StoredValues)
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %d headers, %d stored values\n", res.Site, res.Headers, res.StoredValues); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d sites failed", failed, len(urls))
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().IntVar(&cacheSize, "domain-cache", domain.DefaultCacheSize, "Registrable domain cache size")

	return cmd
}
