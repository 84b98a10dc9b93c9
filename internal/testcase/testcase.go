package testcase

import "fmt"

// CheckType enumerates the supported response assertions.
type CheckType string

const (
	CheckStatusCode    CheckType = "statusCode"
	CheckBodyContains  CheckType = "bodyContains"
	CheckJSONPathValue CheckType = "jsonPathValue"
)

// Check is one assertion applied to a step's response. Path is required for
// jsonPathValue and ignored otherwise.
type Check struct {
	Type     CheckType   `json:"type"`
	Path     string      `json:"path,omitempty"`
	Expected interface{} `json:"expected"`
}

// ExtractRule captures a value from a JSON response body (dot-path) into a
// named variable visible to later steps of the same scenario.
type ExtractRule struct {
	Variable string `json:"variable"`
	Path     string `json:"path"`
}

// TestCase is one validated row of the data source.
type TestCase struct {
	Row      int
	Scenario string
	Name     string
	Method   string
	URL      string
	// Body keeps the explicit parse outcome: a JSON object/array cell becomes
	// structured data, anything else stays a raw string payload.
	Body     ParseOutcome
	Headers  map[string]string
	Tags     map[string]string
	Params   map[string]string
	Extract  []ExtractRule
	Checks   []Check
	// Thresholds and Executor are scenario-level settings; the grouper takes
	// them from the first step of each scenario only.
	Thresholds map[string][]string
	Executor   map[string]interface{}
}

// ValidationError reports a row that fails schema checks. Row is the 1-based
// data row index.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: field %q: %s", e.Row, e.Field, e.Reason)
}
