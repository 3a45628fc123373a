package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/deliverynote/internal/config"
	"github.com/lucasnoah/deliverynote/internal/executor"
	"github.com/lucasnoah/deliverynote/internal/history"
	"github.com/lucasnoah/deliverynote/internal/kind"
)

type runOptions struct {
	input   string
	command string
	dir     string
	timeout time.Duration
	kind    string
}

var (
	goTestOpts runOptions
	vitestOpts runOptions
)

// newRunner is replaced in tests.
var newRunner = func() *executor.Runner {
	return executor.NewRunner(&executor.ExecRunner{})
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch test executor and replace its result store",
	Long: `Run a whole test suite, collect the outcome of every test observed in that
run and replace the result store of its kind with exactly those outcomes.
Cases that were not exercised in the latest run read back as "Not found".`,
}

var runGoTestCmd = &cobra.Command{
	Use:   "gotest [packages...]",
	Short: "Run go test -json and record every test outcome",
	Long: `Run go test -json (or parse a saved stream with --input) and record one
result per test. A test is attributed to a test case by logging
"test_case_id: TC022" (t.Log) or by a TC<digits> token in its name, such as
TestTC016_CRUD. Subtests inherit their parent's id. Tests still running when
their package fails are recorded as errors.`,
	Example: `  deliverynote run gotest ./internal/...
  go test -json ./... > out.json; deliverynote run gotest --input out.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts := goTestOpts.resolve(cfg.GoTest)
		if len(args) > 0 {
			opts.command = "go test -json " + strings.Join(args, " ")
		}
		return runBatch(cmd, cfg, "gotest", opts)
	},
}

var runVitestCmd = &cobra.Command{
	Use:   "vitest",
	Short: "Run vitest with the JSON reporter and record every assertion",
	Long: `Run vitest (or jest) with the JSON reporter, or parse a saved report with
--input, and record one result per assertion. An assertion is attributed to a
test case by a TC<digits> token in its name or in an enclosing describe.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runBatch(cmd, cfg, "vitest", vitestOpts.resolve(cfg.Vitest))
	},
}

func (o runOptions) resolve(b config.Batch) runOptions {
	if o.command == "" {
		o.command = b.Command
	}
	if o.dir == "" {
		o.dir = b.Dir
	}
	if o.timeout == 0 {
		o.timeout = b.TimeoutDuration()
	}
	return o
}

func runBatch(cmd *cobra.Command, cfg *config.Config, parser string, opts runOptions) error {
	k, err := kind.Parse(opts.kind)
	if err != nil {
		return usageError(err)
	}
	if !k.Automated() {
		return usageError(fmt.Errorf("%s tests have no result store", k))
	}

	runner := newRunner().WithLogger(slog.Default())
	var res *executor.BatchResult
	if opts.input != "" {
		data, err := readInput(cmd, opts.input)
		if err != nil {
			return err
		}
		res, err = runner.Parse(parser, string(data))
		if err != nil {
			return err
		}
	} else {
		res, err = runner.Run(cmd.Context(), executor.BatchConfig{
			Parser:  parser,
			Command: opts.command,
			Dir:     opts.dir,
			Timeout: opts.timeout,
		})
		if err != nil {
			return err
		}
	}

	store := openStore(cfg)
	recs := res.Acc.Records()
	if err := store.WriteReplace(k, recs); err != nil {
		return err
	}
	logStoreWrite(cfg, k, history.ModeReplace, len(recs), "run "+parser)

	path, _ := store.Path(k)
	counts := res.Acc.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "%d outcomes recorded (%d with a test case id) -> %s\n",
		len(recs), res.Acc.Attributed(), path)
	fmt.Fprintf(cmd.OutOrStdout(), "success: %d, failure: %d, error: %d, skipped: %d\n",
		counts["success"], counts["failure"], counts["error"], counts["skipped"])

	if res.TimedOut {
		return fmt.Errorf("%s run timed out; recorded the %d outcomes observed", parser, len(recs))
	}
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func addRunFlags(c *cobra.Command, o *runOptions) {
	c.Flags().StringVar(&o.input, "input", "", "parse saved output from this file (- for stdin) instead of running")
	c.Flags().StringVar(&o.command, "command", "", "command to run (default from config)")
	c.Flags().StringVar(&o.dir, "dir", "", "working directory for the command")
	c.Flags().DurationVar(&o.timeout, "timeout", 0, "abort the run after this long (default from config, else 10m)")
	c.Flags().StringVar(&o.kind, "kind", "auto", "result store to replace: auto, selenium or axe")
}

func init() {
	addRunFlags(runGoTestCmd, &goTestOpts)
	addRunFlags(runVitestCmd, &vitestOpts)
	runCmd.AddCommand(runGoTestCmd)
	runCmd.AddCommand(runVitestCmd)
}
