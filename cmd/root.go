// Package cmd wires configuration, logging, and the monitoring pipeline
// behind the CLI.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhinayb/pubwatch/internal/config"
	"github.com/abhinayb/pubwatch/internal/logging"
	"github.com/abhinayb/pubwatch/internal/metrics"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "pubwatch",
	Short:         "Watch a proceedings page and alert once when a publication appears",
	Long:          "pubwatch polls a conference proceedings page, extracts entry records, and sends a one-time notification when the target year and keyword appear in the same entry.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a specific process exit status through cobra.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

// Execute runs the CLI and exits the process with the outcome's status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the configuration file (default: ./pubwatch.yaml)")
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, nil, err
	}
	metrics.Init()
	return cfg, logger, nil
}
