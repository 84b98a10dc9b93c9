package testcase

import (
	"errors"
	"reflect"
	"testing"

	"github.com/loadsheet/loadsheet/internal/source"
)

func row(index int, cells map[string]string) source.Row {
	return source.Row{Index: index, Cells: cells}
}

func TestFromRowMinimalValid(t *testing.T) {
	tc, err := FromRow(row(1, map[string]string{
		"testName": "ping",
		"method":   "GET",
		"url":      "https://example.com/health",
	}))
	if err != nil {
		t.Fatalf("FromRow failed: %v", err)
	}
	if tc.Name != "ping" || tc.Method != "GET" || tc.URL != "https://example.com/health" {
		t.Fatalf("unexpected test case: %+v", tc)
	}
	if tc.Body.Kind != ParseEmpty {
		t.Fatalf("expected empty body, got %v", tc.Body.Kind)
	}
}

func TestFromRowDeterministic(t *testing.T) {
	cells := map[string]string{
		"testName": "t",
		"method":   "post",
		"url":      "https://example.com/a",
		"body":     `{"a":1}`,
		"headers":  `{"X-Token":"abc"}`,
		"checks":   `[{"type":"statusCode","expected":200}]`,
		"extract":  `[{"variable":"id","path":"data.id"}]`,
	}
	a, err := FromRow(row(3, cells))
	if err != nil {
		t.Fatalf("first FromRow failed: %v", err)
	}
	b, err := FromRow(row(3, cells))
	if err != nil {
		t.Fatalf("second FromRow failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("FromRow not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestFromRowBodyRoundTrip(t *testing.T) {
	tc, err := FromRow(row(1, map[string]string{
		"method": "POST",
		"url":    "https://example.com",
		"body":   `{"a":1}`,
	}))
	if err != nil {
		t.Fatalf("FromRow failed: %v", err)
	}
	if tc.Body.Kind != ParseParsed {
		t.Fatalf("expected structured body, got kind %v raw %q", tc.Body.Kind, tc.Body.Raw)
	}
	obj := tc.Body.Object()
	if obj["a"] != float64(1) {
		t.Fatalf("expected a=1, got %v", obj["a"])
	}
}

func TestFromRowMethodCaseNormalized(t *testing.T) {
	tc, err := FromRow(row(1, map[string]string{
		"method": "get",
		"url":    "https://example.com",
	}))
	if err != nil {
		t.Fatalf("FromRow failed: %v", err)
	}
	if tc.Method != "GET" {
		t.Fatalf("expected GET, got %q", tc.Method)
	}
}

func TestFromRowUnsupportedMethod(t *testing.T) {
	_, err := FromRow(row(1, map[string]string{
		"method": "PATCH",
		"url":    "https://example.com",
	}))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != ColMethod {
		t.Fatalf("expected method error, got %+v", verr)
	}
}

func TestFromRowRejectsRelativeURL(t *testing.T) {
	for _, u := range []string{"not a url", "/health", "example.com/x"} {
		_, err := FromRow(row(1, map[string]string{"method": "GET", "url": u}))
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != ColURL {
			t.Fatalf("url %q: expected url validation error, got %v", u, err)
		}
	}
}

func TestFromRowDefaultTestName(t *testing.T) {
	tc, err := FromRow(row(7, map[string]string{
		"method": "GET",
		"url":    "https://example.com",
	}))
	if err != nil {
		t.Fatalf("FromRow failed: %v", err)
	}
	if tc.Name != "Test Case #7" {
		t.Fatalf("expected default name, got %q", tc.Name)
	}
}

func TestFromRowJSONPathCheckRequiresPath(t *testing.T) {
	_, err := FromRow(row(2, map[string]string{
		"method": "GET",
		"url":    "https://example.com",
		"checks": `[{"type":"jsonPathValue","expected":"x"}]`,
	}))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != ColChecks || verr.Row != 2 {
		t.Fatalf("unexpected error: %+v", verr)
	}
}

func TestFromRowStatusCodeCheckWithoutPath(t *testing.T) {
	tc, err := FromRow(row(1, map[string]string{
		"method": "GET",
		"url":    "https://example.com",
		"checks": `[{"type":"statusCode","expected":200}]`,
	}))
	if err != nil {
		t.Fatalf("statusCode check without path must validate: %v", err)
	}
	if len(tc.Checks) != 1 || tc.Checks[0].Type != CheckStatusCode {
		t.Fatalf("unexpected checks: %+v", tc.Checks)
	}
}

func TestFromRowUnknownCheckType(t *testing.T) {
	_, err := FromRow(row(1, map[string]string{
		"method": "GET",
		"url":    "https://example.com",
		"checks": `[{"type":"regexMatch","expected":"x"}]`,
	}))
	if err == nil {
		t.Fatalf("expected error for unknown check type")
	}
}

func TestFromRowExtractRequiresVariableAndPath(t *testing.T) {
	_, err := FromRow(row(1, map[string]string{
		"method":  "GET",
		"url":     "https://example.com",
		"extract": `[{"path":"data.id"}]`,
	}))
	if err == nil {
		t.Fatalf("expected error for extract without variable")
	}
	_, err = FromRow(row(1, map[string]string{
		"method":  "GET",
		"url":     "https://example.com",
		"extract": `[{"variable":"id"}]`,
	}))
	if err == nil {
		t.Fatalf("expected error for extract without path")
	}
}

func TestFromRowThresholds(t *testing.T) {
	tc, err := FromRow(row(1, map[string]string{
		"method":     "GET",
		"url":        "https://example.com",
		"thresholds": `{"http_req_failed":["rate<0.01"],"checks":"rate==1"}`,
	}))
	if err != nil {
		t.Fatalf("FromRow failed: %v", err)
	}
	want := map[string][]string{
		"http_req_failed": {"rate<0.01"},
		"checks":          {"rate==1"},
	}
	if !reflect.DeepEqual(tc.Thresholds, want) {
		t.Fatalf("unexpected thresholds: %+v", tc.Thresholds)
	}
}

func TestFromRowThresholdsRejectPlainText(t *testing.T) {
	_, err := FromRow(row(1, map[string]string{
		"method":     "GET",
		"url":        "https://example.com",
		"thresholds": "fast please",
	}))
	if err == nil {
		t.Fatalf("expected error for unstructured thresholds")
	}
}

func TestFromRowHeadersMalformedJSON(t *testing.T) {
	_, err := FromRow(row(1, map[string]string{
		"method":  "GET",
		"url":     "https://example.com",
		"headers": `{"X-Token": `,
	}))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != ColHeaders {
		t.Fatalf("expected headers validation error, got %v", err)
	}
}

func TestFromRowHeadersPlainTextTreatedAsAbsent(t *testing.T) {
	tc, err := FromRow(row(1, map[string]string{
		"method":  "GET",
		"url":     "https://example.com",
		"headers": "n/a",
	}))
	if err != nil {
		t.Fatalf("FromRow failed: %v", err)
	}
	if tc.Headers != nil {
		t.Fatalf("expected absent headers, got %+v", tc.Headers)
	}
}
