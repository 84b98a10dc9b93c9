// Package runner invokes the external load-testing engine for one synthesized
// script and maps its exit status to a result.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/loadsheet/loadsheet/internal/common"
)

// RunFailure reports a non-zero engine exit. This is a result, not a crash:
// the engine exits non-zero when a configured threshold is violated.
type RunFailure struct {
	ExitCode int
}

func (e *RunFailure) Error() string {
	return fmt.Sprintf("engine exited with code %d", e.ExitCode)
}

// DefaultEngine is the engine binary looked up on PATH when none is
// configured.
const DefaultEngine = "k6"

// Runner executes scripts through the engine binary. Stdout and Stderr
// default to the parent process's streams; output is piped through in real
// time, never buffered.
type Runner struct {
	Engine string
	Stdout io.Writer
	Stderr io.Writer
	Logger *common.Logger
}

// Run executes `<engine> run <script> [--summary-export=<path>]` and waits
// for completion. Context cancellation sends SIGTERM to the child and kills
// it after a grace period, so an operator interrupt never orphans the engine.
// The caller owns the script file; Run does not remove it.
func (r *Runner) Run(ctx context.Context, scriptPath, summaryPath string) error {
	engine := r.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	logger := r.Logger
	if logger == nil {
		logger = common.GetLogger()
	}
	log := logger.WithComponent("runner").WithEngine(engine)

	args := []string{"run", scriptPath}
	if summaryPath != "" {
		args = append(args, "--summary-export="+summaryPath)
	}

	cmd := exec.CommandContext(ctx, engine, args...)
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	// Prefer a clean shutdown so the engine can flush its end-of-test output.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = 5 * time.Second

	log.Debug("starting engine", "script", scriptPath, "summary", summaryPath)
	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Surface context cancellation as such rather than as a run failure.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RunFailure{ExitCode: exitErr.ExitCode()}
	}
	return fmt.Errorf("start engine %q: %w", engine, err)
}
