package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hdrscope/hdrscope/internal/config"
	"github.com/hdrscope/hdrscope/internal/observation"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:          "hdrscope",
		Short:        "Find custom tracking headers in captured web traffic",
		SilenceUsage: true,
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		var cerr *config.ValidationError
		var oerr *observation.ValidationError
		switch {
		case errors.As(err, &cerr):
			for _, msg := range cerr.Problems {
				fmt.Fprintln(os.Stderr, msg)
			}
		case errors.As(err, &oerr):
			for _, msg := range oerr.Problems {
				fmt.Fprintln(os.Stderr, msg)
			}
		default:
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newValidateCmd() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an hdrscope configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.path == "" {
				return errors.New("config path is required")
			}
			if _, err := flags.load(); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "config ok"); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.path, "config", "c", "", "Path to config file")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "version=%s commit=%s buildDate=%s\n", version, commit, buildDate)
		},
	}
}
