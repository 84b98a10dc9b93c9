// Package loadsheet compiles spreadsheet/CSV-defined HTTP load-test cases
// into k6 scripts and runs them sequentially through the engine binary,
// aggregating pass/fail per scenario.
package loadsheet

import (
	"context"

	"github.com/loadsheet/loadsheet/internal/auth"
	"github.com/loadsheet/loadsheet/internal/common"
	"github.com/loadsheet/loadsheet/internal/coordinator"
	"github.com/loadsheet/loadsheet/internal/scenario"
	"github.com/loadsheet/loadsheet/internal/script"
	"github.com/loadsheet/loadsheet/internal/source"
	"github.com/loadsheet/loadsheet/internal/store"
	"github.com/loadsheet/loadsheet/internal/testcase"
	"github.com/loadsheet/loadsheet/internal/vars"
)

// Re-export commonly used types for public API

// TestCase is one validated row of the data source.
type TestCase = testcase.TestCase

// ValidationError reports a row that fails schema checks.
type ValidationError = testcase.ValidationError

// Scenario is an ordered group of test cases executed sequentially by one
// simulated user.
type Scenario = scenario.Scenario

// RunResult is the per-scenario outcome of a run.
type RunResult = coordinator.RunResult

// Report aggregates a whole run.
type Report = coordinator.Report

// AggregateError is returned by Run when at least one scenario failed.
type AggregateError = coordinator.AggregateError

// Options configures Run.
type Options = coordinator.Options

// Vars is the variable map seeded into scenarios via Options.InitialVars.
type Vars = vars.Map

// ErrUnsupportedFormat is returned for data sources that are neither CSV nor
// XLSX.
var ErrUnsupportedFormat = source.ErrUnsupportedFormat

// ErrTemplate indicates a malformed script template.
var ErrTemplate = script.ErrTemplate

// LoadTestCases reads a data source and validates every row. The first
// invalid row fails the whole load; there is no partial-skip policy.
func LoadTestCases(path string) ([]TestCase, error) {
	rows, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	cases := make([]TestCase, 0, len(rows))
	for _, row := range rows {
		tc, err := testcase.FromRow(row)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// GroupScenarios partitions validated cases into scenarios in first-seen
// order.
func GroupScenarios(cases []TestCase) []Scenario {
	return scenario.Group(cases, common.GetLogger())
}

// Run executes scenarios sequentially and returns the aggregate report.
func Run(ctx context.Context, scenarios []Scenario, opts Options) (*Report, error) {
	return coordinator.New(opts).Run(ctx, scenarios)
}

// AuthMethod is the plugin-style credential provider interface.
type AuthMethod = auth.Method

// AuthFactory builds an AuthMethod from its provider-specific spec.
type AuthFactory = auth.Factory

// RegisterAuthProvider exposes custom auth provider registration for library
// users.
func RegisterAuthProvider(typ string, f AuthFactory) { auth.Register(typ, f) }

// Store is the run-history database.
type Store = store.Store

// StoreConfig selects and configures the history backend.
type StoreConfig = store.Config

// StoreDBFileName is the default sqlite filename used for run history.
const StoreDBFileName = store.DbFileName

// OpenStore opens (and initializes) the configured run-history store.
func OpenStore(cfg StoreConfig) (*Store, error) { return store.Open(cfg) }
