package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/deliverynote/internal/browser"
	"github.com/lucasnoah/deliverynote/internal/history"
	"github.com/lucasnoah/deliverynote/internal/kind"
)

var (
	scanLabel   string
	scanScript  string
	scanTimeout time.Duration
	scanHeadful bool
	scanBrowser string
)

// axeScanner is replaced in tests.
var axeScanner = func(opts browser.Options) scanner {
	return browser.NewScanner(opts)
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a browser-driven scan and upsert its outcome",
}

var scanAxeCmd = &cobra.Command{
	Use:   "axe <test-case-id> <url>",
	Short: "Run an axe-core accessibility scan of a page",
	Long: `Open the page in a headless Chromium, inject axe-core and run it. The raw
axe results are written to axe_<label>.json next to the result stores and the
outcome is upserted into the axe store: success with no violations, failure
with any, error when the page or the script could not be run.`,
	Example: `  deliverynote scan axe TC030 http://localhost:8000/ --script node_modules/axe-core/axe.min.js`,
	Args:    usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, url := args[0], args[1]
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts := browser.Options{
			Bin:        cfg.Axe.Bin,
			Headless:   cfg.Axe.IsHeadless() && !scanHeadful,
			Timeout:    cfg.Axe.TimeoutDuration(),
			ScriptPath: cfg.Axe.Script,
		}
		if scanScript != "" {
			opts.ScriptPath = scanScript
		}
		if scanTimeout > 0 {
			opts.Timeout = scanTimeout
		}
		if scanBrowser != "" {
			opts.Bin = scanBrowser
		}
		if opts.ScriptPath == "" {
			return usageError(fmt.Errorf("no axe-core script: set axe.script in the config or pass --script"))
		}

		scan, err := axeScanner(opts).Scan(cmd.Context(), url)
		if err != nil {
			return err
		}

		label := scanLabel
		if label == "" {
			label = id
		}
		if scan.Err == nil {
			path := browser.ReportPath(cfg.ResultsDir, label)
			if err := browser.WriteReport(path, scan.Raw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d violations, raw results in %s\n", scan.Violations, path)
		}

		store := openStore(cfg)
		rec := scan.Record(id)
		if err := store.WriteMerge(kind.AutoAxe, rec); err != nil {
			return err
		}
		logStoreWrite(cfg, kind.AutoAxe, history.ModeMerge, 1, "scan axe")
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", id, rec.Outcome)

		if scan.Err != nil {
			return fmt.Errorf("scan %s: %w", url, scan.Err)
		}
		return nil
	},
}

func init() {
	f := scanAxeCmd.Flags()
	f.StringVar(&scanLabel, "label", "", "name for the raw results file (default: the test case id)")
	f.StringVar(&scanScript, "script", "", "path to axe.min.js (default from config)")
	f.DurationVar(&scanTimeout, "timeout", 0, "page load and scan timeout (default from config)")
	f.BoolVar(&scanHeadful, "headful", false, "show the browser window")
	f.StringVar(&scanBrowser, "browser", "", "Chromium binary (default: rod's managed browser)")
	scanCmd.AddCommand(scanAxeCmd)
}
