package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/hdrscope/hdrscope/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var inputPath string
	var since string
	var site string
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize run logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return errors.New("input path is required")
			}
			if err := checkFormat(format); err != nil {
				return err
			}

			reader := report.Reader{Site: site}
			if since != "" {
				dur, err := time.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("invalid since duration: %w", err)
				}
				reader.Since = time.Now().Add(-dur)
			}

			records, err := reader.Read(inputPath)
			if err != nil {
				return err
			}

			summary := report.Summarize(records)
			out := cmd.OutOrStdout()
			switch format {
			case "md":
				return report.WriteOutput(out, outPath, []byte(report.RenderMarkdown(summary)))
			case "json":
				data, err := report.RenderJSON(summary)
				if err != nil {
					return err
				}
				return report.WriteOutput(out, outPath, data)
			default:
				return report.WriteOutput(out, outPath, []byte(report.RenderText(summary)))
			}
		},
	}

	cmd.Flags().StringVar(&inputPath, "in", "", "Path to run log JSONL")
	cmd.Flags().StringVar(&since, "since", "", "Only include entries newer than this duration (e.g. 24h)")
	cmd.Flags().StringVar(&site, "site", "", "Only include entries for this site folder name")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|md|json")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file path (default stdout)")

	return cmd
}
