// Package summary reads the machine-readable summary the engine writes with
// --summary-export and extracts the handful of metrics loadsheet reports and
// stores.
package summary

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// Summary holds aggregated metrics of one scenario run.
type Summary struct {
	Iterations   float64
	ChecksPassed float64
	ChecksFailed float64
	FailureRate  float64
	P95Ms        float64
}

// Parse extracts metrics from summary-export JSON.
func Parse(data []byte) (*Summary, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("summary export is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	metrics := root.Get("metrics")
	if !metrics.Exists() {
		return nil, fmt.Errorf("summary export has no metrics object")
	}
	return &Summary{
		Iterations:   metrics.Get("iterations.count").Float(),
		ChecksPassed: metrics.Get("checks.passes").Float(),
		ChecksFailed: metrics.Get("checks.fails").Float(),
		FailureRate:  metrics.Get("http_req_failed.value").Float(),
		P95Ms:        metrics.Get(`http_req_duration.p\(95\)`).Float(),
	}, nil
}

// ParseFile reads and parses a summary-export file.
func ParseFile(path string) (*Summary, error) {
	clean := filepath.Clean(path)
	// #nosec G304 -- path is generated by the coordinator
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("read summary %s: %w", clean, err)
	}
	return Parse(data)
}
