package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/deliverynote/internal/logging"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "deliverynote",
	Short: "deliverynote: reconcile test results against the test case list",
	Long: `deliverynote joins the declared test cases of a project (test_list.yaml)
with the outcomes recorded by its test executors and renders a delivery note:
a text report on stdout and a PDF document.

Executors write one JSON result store per kind of test: batch runners
(run gotest, run vitest) replace their store on every run, single-scenario
executors (record, scan axe) upsert one result at a time.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if !cmd.Flags().Changed("log-level") {
			if cfg, err := loadConfig(); err == nil {
				level = cfg.LogLevel
			}
		}
		_, err := logging.Setup(level, cmd.ErrOrStderr())
		if err != nil {
			return usageError(err)
		}
		return nil
	},
}

// Execute runs the root command, cancelling its context on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to deliverynote.yaml (default: search ./deliverynote.yaml, ~/.deliverynote/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}
