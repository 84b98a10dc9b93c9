// Package coordinator drives a full load run: one scenario at a time, one
// engine process at a time, temp scripts cleaned up on every exit path.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loadsheet/loadsheet/internal/common"
	"github.com/loadsheet/loadsheet/internal/runner"
	"github.com/loadsheet/loadsheet/internal/scenario"
	"github.com/loadsheet/loadsheet/internal/script"
	"github.com/loadsheet/loadsheet/internal/store"
	"github.com/loadsheet/loadsheet/internal/summary"
	"github.com/loadsheet/loadsheet/internal/vars"
)

// Status is the outcome of one scenario run.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// RunResult is the per-scenario outcome.
type RunResult struct {
	Scenario    string
	Status      Status
	ExitCode    int
	Duration    time.Duration
	SummaryPath string
	Summary     *summary.Summary
}

// Report aggregates a whole run.
type Report struct {
	Attempted int
	Passed    int
	Failed    int
	Results   []RunResult
}

// FailedScenarios lists the names of failing scenarios in run order.
func (r *Report) FailedScenarios() []string {
	var out []string
	for _, res := range r.Results {
		if res.Status == StatusFail {
			out = append(out, res.Scenario)
		}
	}
	return out
}

// AggregateError is returned when at least one scenario failed.
type AggregateError struct {
	Attempted int
	Failed    []string
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("%d of %d scenarios failed: %s",
		len(e.Failed), e.Attempted, strings.Join(e.Failed, ", "))
}

// Options configures a Coordinator.
type Options struct {
	Engine string
	// WorkDir holds the temporary scripts; defaults to os.TempDir().
	WorkDir string
	// ExportSummary requests --summary-export from the engine.
	ExportSummary bool
	// SummaryDir keeps summary files after parsing. When empty, summaries are
	// written next to the script and removed with it.
	SummaryDir string
	// FailFast stops after the first failing scenario instead of attempting
	// the rest.
	FailFast bool
	// InitialVars are seeded into every scenario's variable map (config env,
	// acquired auth values).
	InitialVars vars.Map
	Synth       *script.Synthesizer
	Runner      *runner.Runner
	// Store is optional run-history persistence; store errors are logged and
	// never fail the run.
	Store  *store.Store
	Logger *common.Logger
}

// Coordinator runs scenarios strictly sequentially. The engine binary is not
// considered safe to parallelize: overlapping runs would contend for ports
// and interleave output.
type Coordinator struct {
	opts   Options
	synth  *script.Synthesizer
	runner *runner.Runner
	logger *common.Logger
}

// New builds a Coordinator, filling unset options with defaults.
func New(opts Options) *Coordinator {
	synth := opts.Synth
	if synth == nil {
		synth = script.NewSynthesizer()
	}
	r := opts.Runner
	if r == nil {
		r = &runner.Runner{Engine: opts.Engine}
	}
	logger := opts.Logger
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Coordinator{
		opts:   opts,
		synth:  synth,
		runner: r,
		logger: logger.WithComponent("coordinator"),
	}
}

// Run executes all scenarios in order and returns the aggregate report. The
// returned error is an *AggregateError when one or more scenarios failed, or
// another error kind for fatal conditions (synthesis failure, cancellation).
// Temp scripts and unrequested summaries are removed whether or not their
// scenario passed, including on interrupt.
func (c *Coordinator) Run(ctx context.Context, scenarios []scenario.Scenario) (*Report, error) {
	report := &Report{}
	if len(scenarios) == 0 {
		c.logger.Warn("no scenarios to run")
		return report, nil
	}

	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res, err := c.runScenario(ctx, sc)
		if err != nil {
			// Synthesis and script-write failures recur or indicate a broken
			// environment; abort instead of burning the remaining scenarios.
			return report, err
		}

		report.Attempted++
		report.Results = append(report.Results, res)
		if res.Status == StatusPass {
			report.Passed++
		} else {
			report.Failed++
			if c.opts.FailFast {
				c.logger.Warn("fail-fast: stopping after first failure", "scenario", sc.Name)
				break
			}
		}
	}

	c.logger.Info("run complete",
		"attempted", report.Attempted, "passed", report.Passed, "failed", report.Failed)

	if report.Failed > 0 {
		return report, &AggregateError{Attempted: report.Attempted, Failed: report.FailedScenarios()}
	}
	return report, nil
}

func (c *Coordinator) runScenario(ctx context.Context, sc scenario.Scenario) (RunResult, error) {
	log := c.logger.WithScenario(sc.Name)
	res := RunResult{Scenario: sc.Name}

	text, err := c.synth.Render(sc, c.opts.InitialVars)
	if err != nil {
		return res, err
	}

	scriptPath, err := c.writeScript(sc.Name, text)
	if err != nil {
		return res, err
	}
	// Scoped acquisition: the temp script is removed on every exit path,
	// including engine crash and interrupt.
	defer c.removeBestEffort(log, scriptPath)

	summaryPath := ""
	keepSummary := false
	if c.opts.ExportSummary {
		if c.opts.SummaryDir != "" {
			summaryPath = filepath.Join(c.opts.SummaryDir, filepath.Base(scriptPath)+".summary.json")
			keepSummary = true
		} else {
			summaryPath = scriptPath + ".summary.json"
			defer c.removeBestEffort(log, summaryPath)
		}
	}

	log.Info("running scenario", "steps", len(sc.Steps), "script", scriptPath)
	start := time.Now()
	runErr := c.runner.Run(ctx, scriptPath, summaryPath)
	res.Duration = time.Since(start)

	switch {
	case runErr == nil:
		res.Status = StatusPass
	default:
		var rf *runner.RunFailure
		if !errors.As(runErr, &rf) {
			// Cancellation or a failure to launch the engine at all.
			return res, runErr
		}
		res.Status = StatusFail
		res.ExitCode = rf.ExitCode
		log.Warn("scenario failed", "exit_code", rf.ExitCode, "duration", res.Duration)
	}

	if summaryPath != "" {
		if sum, err := summary.ParseFile(summaryPath); err != nil {
			log.Warn("could not parse summary export", "path", summaryPath, "error", err)
		} else {
			res.Summary = sum
			if keepSummary {
				res.SummaryPath = summaryPath
			}
			log.Info("scenario metrics",
				"iterations", sum.Iterations,
				"checks_passed", sum.ChecksPassed,
				"checks_failed", sum.ChecksFailed,
				"http_req_failed_rate", sum.FailureRate,
				"p95_ms", sum.P95Ms)
		}
	}

	c.record(log, res)
	return res, nil
}

// writeScript stores the synthesized script under a name unique per scenario
// and instant, so concurrent runs on the same machine cannot collide.
func (c *Coordinator) writeScript(scenarioName, text string) (string, error) {
	dir := c.opts.WorkDir
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("%s-%d.js", script.ScenarioID(scenarioName), time.Now().UnixNano())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("write script for scenario %q: %w", scenarioName, err)
	}
	return path, nil
}

func (c *Coordinator) removeBestEffort(log *common.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("could not remove temporary file", "path", path, "error", err)
	}
}

func (c *Coordinator) record(log *common.Logger, res RunResult) {
	if c.opts.Store == nil {
		return
	}
	rec := store.Record{
		RunAt:      time.Now().UTC(),
		Scenario:   res.Scenario,
		Status:     string(res.Status),
		ExitCode:   res.ExitCode,
		DurationMs: res.Duration.Milliseconds(),
	}
	if res.Summary != nil {
		rec.Iterations = res.Summary.Iterations
		rec.ChecksPassed = res.Summary.ChecksPassed
		rec.ChecksFailed = res.Summary.ChecksFailed
		rec.FailureRate = res.Summary.FailureRate
	}
	if err := c.opts.Store.RecordRun(rec); err != nil {
		log.Warn("could not record run history", "error", err)
	}
}
