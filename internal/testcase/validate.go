package testcase

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/loadsheet/loadsheet/internal/source"
)

// Data source column names.
const (
	ColScenario   = "scenario"
	ColTestName   = "testName"
	ColMethod     = "method"
	ColURL        = "url"
	ColBody       = "body"
	ColHeaders    = "headers"
	ColTags       = "tags"
	ColParams     = "queryParams"
	ColExtract    = "extract"
	ColChecks     = "checks"
	ColThresholds = "thresholds"
	ColExecutor   = "executorOptions"
)

var allowedMethods = map[string]struct{}{
	"GET": {}, "POST": {}, "PUT": {}, "DELETE": {},
}

// FromRow validates and normalizes one raw row into a TestCase. It is a pure
// function: no I/O, deterministic for the same row.
func FromRow(row source.Row) (TestCase, error) {
	tc := TestCase{Row: row.Index, Scenario: row.Get(ColScenario)}

	tc.Name = row.Get(ColTestName)
	if tc.Name == "" {
		tc.Name = fmt.Sprintf("Test Case #%d", row.Index)
	}

	method := strings.ToUpper(row.Get(ColMethod))
	if method == "" {
		return tc, &ValidationError{Row: row.Index, Field: ColMethod, Reason: "required"}
	}
	if _, ok := allowedMethods[method]; !ok {
		return tc, &ValidationError{Row: row.Index, Field: ColMethod, Reason: fmt.Sprintf("unsupported method %q", method)}
	}
	tc.Method = method

	rawURL := row.Get(ColURL)
	if rawURL == "" {
		return tc, &ValidationError{Row: row.Index, Field: ColURL, Reason: "required"}
	}
	if u, err := url.Parse(rawURL); err != nil || !u.IsAbs() || u.Host == "" {
		return tc, &ValidationError{Row: row.Index, Field: ColURL, Reason: fmt.Sprintf("not an absolute URL: %q", rawURL)}
	}
	tc.URL = rawURL

	// Body is the one loose field: a JSON cell becomes structured data, any
	// other text is kept as the raw payload.
	tc.Body = ParseCell(row.Get(ColBody))

	var err error
	if tc.Headers, err = mappingField(row, ColHeaders); err != nil {
		return tc, err
	}
	if tc.Tags, err = mappingField(row, ColTags); err != nil {
		return tc, err
	}
	if tc.Params, err = mappingField(row, ColParams); err != nil {
		return tc, err
	}
	if tc.Extract, err = extractField(row); err != nil {
		return tc, err
	}
	if tc.Checks, err = checksField(row); err != nil {
		return tc, err
	}
	if tc.Thresholds, err = thresholdsField(row); err != nil {
		return tc, err
	}
	if tc.Executor, err = executorField(row); err != nil {
		return tc, err
	}
	return tc, nil
}

// mappingField handles headers/tags/queryParams: empty cells and plain text
// are treated as absent, malformed JSON is rejected so typos do not silently
// drop configuration.
func mappingField(row source.Row, field string) (map[string]string, error) {
	out := ParseCell(row.Get(field))
	switch out.Kind {
	case ParseEmpty:
		return nil, nil
	case ParseRaw:
		if looksLikeJSON(out.Raw) {
			return nil, &ValidationError{Row: row.Index, Field: field, Reason: "malformed JSON"}
		}
		return nil, nil
	default:
		m := out.StringMap()
		if m == nil {
			return nil, &ValidationError{Row: row.Index, Field: field, Reason: "expected a JSON object"}
		}
		return m, nil
	}
}

func extractField(row source.Row) ([]ExtractRule, error) {
	items, err := structuredArray(row, ColExtract)
	if err != nil || items == nil {
		return nil, err
	}
	rules := make([]ExtractRule, 0, len(items))
	for i, item := range items {
		var r ExtractRule
		if err := mapstructure.Decode(item, &r); err != nil {
			return nil, &ValidationError{Row: row.Index, Field: ColExtract, Reason: fmt.Sprintf("entry %d: %v", i, err)}
		}
		if strings.TrimSpace(r.Variable) == "" {
			return nil, &ValidationError{Row: row.Index, Field: ColExtract, Reason: fmt.Sprintf("entry %d: variable is required", i)}
		}
		if strings.TrimSpace(r.Path) == "" {
			return nil, &ValidationError{Row: row.Index, Field: ColExtract, Reason: fmt.Sprintf("entry %d: path is required", i)}
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func checksField(row source.Row) ([]Check, error) {
	items, err := structuredArray(row, ColChecks)
	if err != nil || items == nil {
		return nil, err
	}
	checks := make([]Check, 0, len(items))
	for i, item := range items {
		var c Check
		if err := mapstructure.Decode(item, &c); err != nil {
			return nil, &ValidationError{Row: row.Index, Field: ColChecks, Reason: fmt.Sprintf("entry %d: %v", i, err)}
		}
		switch c.Type {
		case CheckStatusCode, CheckBodyContains:
		case CheckJSONPathValue:
			if strings.TrimSpace(c.Path) == "" {
				return nil, &ValidationError{Row: row.Index, Field: ColChecks, Reason: fmt.Sprintf("entry %d: jsonPathValue check requires path", i)}
			}
		default:
			return nil, &ValidationError{Row: row.Index, Field: ColChecks, Reason: fmt.Sprintf("entry %d: unknown check type %q", i, c.Type)}
		}
		checks = append(checks, c)
	}
	return checks, nil
}

func thresholdsField(row source.Row) (map[string][]string, error) {
	out := ParseCell(row.Get(ColThresholds))
	switch out.Kind {
	case ParseEmpty:
		return nil, nil
	case ParseRaw:
		return nil, &ValidationError{Row: row.Index, Field: ColThresholds, Reason: "expected a JSON object"}
	}
	obj := out.Object()
	if obj == nil {
		return nil, &ValidationError{Row: row.Index, Field: ColThresholds, Reason: "expected a JSON object"}
	}
	th := make(map[string][]string, len(obj))
	for metric, v := range obj {
		switch val := v.(type) {
		case string:
			th[metric] = []string{val}
		case []interface{}:
			criteria := make([]string, 0, len(val))
			for _, c := range val {
				s, ok := c.(string)
				if !ok {
					return nil, &ValidationError{Row: row.Index, Field: ColThresholds, Reason: fmt.Sprintf("metric %q: criteria must be strings", metric)}
				}
				criteria = append(criteria, s)
			}
			th[metric] = criteria
		default:
			return nil, &ValidationError{Row: row.Index, Field: ColThresholds, Reason: fmt.Sprintf("metric %q: expected string or array of strings", metric)}
		}
	}
	return th, nil
}

func executorField(row source.Row) (map[string]interface{}, error) {
	out := ParseCell(row.Get(ColExecutor))
	switch out.Kind {
	case ParseEmpty:
		return nil, nil
	case ParseRaw:
		return nil, &ValidationError{Row: row.Index, Field: ColExecutor, Reason: "expected a JSON object"}
	}
	obj := out.Object()
	if obj == nil {
		return nil, &ValidationError{Row: row.Index, Field: ColExecutor, Reason: "expected a JSON object"}
	}
	return obj, nil
}

// structuredArray loads a strictly structured field (checks/extract): the cell
// must be empty or a JSON array.
func structuredArray(row source.Row, field string) ([]interface{}, error) {
	out := ParseCell(row.Get(field))
	switch out.Kind {
	case ParseEmpty:
		return nil, nil
	case ParseRaw:
		return nil, &ValidationError{Row: row.Index, Field: field, Reason: "expected a JSON array"}
	}
	arr := out.Array()
	if arr == nil {
		return nil, &ValidationError{Row: row.Index, Field: field, Reason: "expected a JSON array"}
	}
	return arr, nil
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
