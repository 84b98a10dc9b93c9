// Package smoke executes each scenario once in-process before the engine is
// launched: one request per step, checks applied, variables extracted and
// threaded into later steps. It catches broken test data without burning a
// full load run.
package smoke

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/loadsheet/loadsheet/internal/common"
	"github.com/loadsheet/loadsheet/internal/scenario"
	"github.com/loadsheet/loadsheet/internal/testcase"
	"github.com/loadsheet/loadsheet/internal/vars"
	"github.com/tidwall/gjson"
)

// CheckError reports a failed smoke check.
type CheckError struct {
	Scenario string
	Step     string
	Check    testcase.Check
	Detail   string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("smoke: scenario %q step %q: %s check failed: %s",
		e.Scenario, e.Step, e.Check.Type, e.Detail)
}

// Smoke runs scenario preflights over a shared resty client.
type Smoke struct {
	Client *resty.Client
	Logger *common.Logger
}

// RunScenario executes all steps of one scenario once, in order. initial
// seeds the variable map; extracted variables are visible to later steps
// exactly as in the generated script.
func (s *Smoke) RunScenario(ctx context.Context, sc scenario.Scenario, initial vars.Map) error {
	client := s.Client
	if client == nil {
		client = resty.New()
	}
	logger := s.Logger
	if logger == nil {
		logger = common.GetLogger()
	}
	log := logger.WithComponent("smoke").WithScenario(sc.Name)

	v := initial.Clone()
	for _, step := range sc.Steps {
		if err := s.runStep(ctx, client, log, sc.Name, step, v); err != nil {
			return err
		}
	}
	log.Info("smoke passed", "steps", len(sc.Steps))
	return nil
}

func (s *Smoke) runStep(ctx context.Context, client *resty.Client, log *common.Logger,
	scenarioName string, step testcase.TestCase, v vars.Map) error {
	req := client.R().SetContext(ctx)

	if headers := v.SubstituteMap(step.Headers); headers != nil {
		req.SetHeaders(headers)
	}
	if params := v.SubstituteMap(step.Params); params != nil {
		req.SetQueryParams(params)
	}
	if body, ok := stepBody(step, v); ok {
		if req.Header.Get("Content-Type") == "" {
			req.SetHeader("Content-Type", "application/json")
		}
		req.SetBody(body)
	}

	url := v.Substitute(step.URL)
	resp, err := req.Execute(step.Method, url)
	if err != nil {
		return fmt.Errorf("smoke: scenario %q step %q: %w", scenarioName, step.Name, err)
	}
	log.Debug("step executed", "step", step.Name, "status", resp.StatusCode())

	body := resp.Body()
	for _, c := range step.Checks {
		if err := applyCheck(scenarioName, step.Name, c, resp.StatusCode(), body, v); err != nil {
			return err
		}
	}

	parsed := gjson.ParseBytes(body)
	for _, rule := range step.Extract {
		res := parsed.Get(rule.Path)
		if !res.Exists() {
			log.Warn("extract path missing in response", "step", step.Name,
				"variable", rule.Variable, "path", rule.Path)
			v[rule.Variable] = ""
			continue
		}
		v[rule.Variable] = res.String()
	}
	return nil
}

func stepBody(step testcase.TestCase, v vars.Map) (string, bool) {
	switch step.Body.Kind {
	case testcase.ParseParsed:
		return v.Substitute(step.Body.Raw), true
	case testcase.ParseRaw:
		return v.Substitute(step.Body.Raw), true
	default:
		return "", false
	}
}

func applyCheck(scenarioName, stepName string, c testcase.Check, status int, body []byte, v vars.Map) error {
	expected := v.Substitute(anyString(c.Expected))
	switch c.Type {
	case testcase.CheckStatusCode:
		if fmt.Sprintf("%d", status) != expected {
			return &CheckError{Scenario: scenarioName, Step: stepName, Check: c,
				Detail: fmt.Sprintf("status %d, expected %s", status, expected)}
		}
	case testcase.CheckBodyContains:
		if !strings.Contains(string(body), expected) {
			return &CheckError{Scenario: scenarioName, Step: stepName, Check: c,
				Detail: fmt.Sprintf("body does not contain %q", expected)}
		}
	case testcase.CheckJSONPathValue:
		res := gjson.GetBytes(body, c.Path)
		if !res.Exists() {
			return &CheckError{Scenario: scenarioName, Step: stepName, Check: c,
				Detail: fmt.Sprintf("path %q not found in response body", c.Path)}
		}
		if res.String() != expected {
			return &CheckError{Scenario: scenarioName, Step: stepName, Check: c,
				Detail: fmt.Sprintf("path %q is %q, expected %q", c.Path, res.String(), expected)}
		}
	}
	return nil
}

func anyString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers arrive as float64; keep integral values clean.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
