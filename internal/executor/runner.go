package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a batch run when the config leaves it unset.
const DefaultTimeout = 10 * time.Minute

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, dir string, command string) (stdout string, stderr string, exitCode int, err error)
}

// waitDelay bounds how long Run waits for output pipes after the command
// was killed; a grandchild can hold them open.
const waitDelay = 2 * time.Second

// ExecRunner implements CommandRunner by shelling out. On Unix the shell and
// everything it starts share one process group, killed as a whole when ctx
// ends.
type ExecRunner struct{}

func (e *ExecRunner) Run(ctx context.Context, dir string, command string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdoutBuf.String(), stderrBuf.String(), -1, ctxErr
	}
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return stdoutBuf.String(), stderrBuf.String(), -1, fmt.Errorf("exec: %w", err)
		}
	}
	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// BatchConfig describes one batch run.
type BatchConfig struct {
	Parser  string
	Command string
	Dir     string
	Timeout time.Duration
}

// BatchResult is what a batch run observed. Records are final once Run
// returns and are meant for a full-replace store write.
type BatchResult struct {
	Parser   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
	Summary  Summary
	Acc      *Accumulator
	Stderr   string
}

// Runner executes batch test commands and parses their output.
type Runner struct {
	cmd     CommandRunner
	parsers map[string]Parser
	log     *slog.Logger
}

// NewRunner creates a Runner with the given command runner.
func NewRunner(cmd CommandRunner) *Runner {
	r := &Runner{
		cmd:     cmd,
		parsers: make(map[string]Parser),
		log:     slog.Default(),
	}
	for _, p := range []Parser{&GoTestParser{}, &VitestParser{}} {
		r.parsers[p.Name()] = p
	}
	return r
}

// WithLogger sets the logger used for run diagnostics.
func (r *Runner) WithLogger(l *slog.Logger) *Runner {
	r.log = l
	return r
}

// Run executes cfg.Command and parses its stdout. A nonzero exit code is
// expected when tests fail and is not an error. On timeout the records
// observed so far are kept and TimedOut is set.
func (r *Runner) Run(ctx context.Context, cfg BatchConfig) (*BatchResult, error) {
	parser, ok := r.parsers[cfg.Parser]
	if !ok {
		return nil, fmt.Errorf("unknown parser %q", cfg.Parser)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, exitCode, err := r.cmd.Run(ctx, cfg.Dir, cfg.Command)
	res := &BatchResult{
		Parser:   cfg.Parser,
		ExitCode: exitCode,
		Duration: time.Since(start),
		Acc:      NewAccumulator(),
		Stderr:   stderr,
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		r.log.Warn("batch run timed out", "parser", cfg.Parser, "timeout", timeout)
	case err != nil:
		return nil, fmt.Errorf("run %s: %w", cfg.Parser, err)
	}

	sum, perr := parser.Parse(strings.NewReader(stdout), res.Acc)
	res.Summary = sum
	if perr != nil {
		return res, fmt.Errorf("parse %s output: %w", cfg.Parser, perr)
	}
	if sum.Malformed > 0 {
		r.log.Warn("skipped malformed output lines", "parser", cfg.Parser, "count", sum.Malformed)
	}
	r.log.Debug("batch run finished",
		"parser", cfg.Parser, "exit_code", exitCode,
		"observed", sum.Observed, "attributed", sum.Attributed,
		"duration", res.Duration)
	return res, nil
}

// Parse runs a named parser over already captured output.
func (r *Runner) Parse(name string, stdout string) (*BatchResult, error) {
	parser, ok := r.parsers[name]
	if !ok {
		return nil, fmt.Errorf("unknown parser %q", name)
	}
	res := &BatchResult{Parser: name, Acc: NewAccumulator()}
	sum, err := parser.Parse(strings.NewReader(stdout), res.Acc)
	res.Summary = sum
	if err != nil {
		return res, fmt.Errorf("parse %s output: %w", name, err)
	}
	return res, nil
}
