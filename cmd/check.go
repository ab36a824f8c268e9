package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single monitoring check and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		m, cleanup, err := buildMonitor(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		report := m.Run(cmd.Context())
		if code := report.Outcome.ExitCode(); code != 0 {
			return &exitError{
				code: code,
				msg:  fmt.Sprintf("run finished with outcome %s: %s", report.Outcome, report.Error),
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
