package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/loadsheet/loadsheet/internal/scenario"
	"github.com/loadsheet/loadsheet/internal/testcase"
	"github.com/loadsheet/loadsheet/internal/vars"
)

// DefaultExecutor is used when a scenario's first step carries no executor
// options: one virtual user, one iteration.
func DefaultExecutor() map[string]interface{} {
	return map[string]interface{}{
		"executor":   "per-vu-iterations",
		"vus":        1,
		"iterations": 1,
	}
}

// Synthesizer renders self-contained load scripts from scenarios. Rendering
// is pure text substitution; nothing executes during synthesis.
type Synthesizer struct {
	tmpl *Template
}

// NewSynthesizer uses the built-in template.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{tmpl: Default()}
}

// NewSynthesizerWithTemplate uses a custom template.
func NewSynthesizerWithTemplate(t *Template) *Synthesizer {
	return &Synthesizer{tmpl: t}
}

type templateData struct {
	OptionsJSON string
	VarsJSON    string
	StepsJSON   string
}

type stepDef struct {
	Name    string                 `json:"name"`
	Method  string                 `json:"method"`
	URL     string                 `json:"url"`
	Params  map[string]string      `json:"params,omitempty"`
	Headers map[string]string      `json:"headers,omitempty"`
	Tags    map[string]string      `json:"tags,omitempty"`
	Body    interface{}            `json:"body,omitempty"`
	Checks  []testcase.Check       `json:"checks,omitempty"`
	Extract []testcase.ExtractRule `json:"extract,omitempty"`
}

// Render produces the script text for one scenario. initial holds variables
// (config env, acquired auth tokens) seeded into the script's variable map
// before the first step.
func (s *Synthesizer) Render(sc scenario.Scenario, initial vars.Map) (string, error) {
	if len(sc.Steps) == 0 {
		return "", fmt.Errorf("scenario %q has no steps", sc.Name)
	}

	options, err := marshalIndent(buildOptions(sc))
	if err != nil {
		return "", fmt.Errorf("scenario %q: marshal options: %w", sc.Name, err)
	}
	if initial == nil {
		initial = vars.Map{}
	}
	initialJSON, err := marshalIndent(initial)
	if err != nil {
		return "", fmt.Errorf("scenario %q: marshal vars: %w", sc.Name, err)
	}
	stepsJSON, err := marshalIndent(buildSteps(sc))
	if err != nil {
		return "", fmt.Errorf("scenario %q: marshal steps: %w", sc.Name, err)
	}

	var buf bytes.Buffer
	data := templateData{
		OptionsJSON: options,
		VarsJSON:    initialJSON,
		StepsJSON:   stepsJSON,
	}
	if err := s.tmpl.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: execute: %v", ErrTemplate, err)
	}
	return buf.String(), nil
}

func buildOptions(sc scenario.Scenario) map[string]interface{} {
	executor := DefaultExecutor()
	if sc.Executor != nil {
		executor = make(map[string]interface{}, len(sc.Executor)+1)
		for k, v := range sc.Executor {
			executor[k] = v
		}
		if _, ok := executor["executor"]; !ok {
			executor["executor"] = "per-vu-iterations"
		}
	}

	options := map[string]interface{}{
		"scenarios": map[string]interface{}{
			ScenarioID(sc.Name): executor,
		},
	}

	switch {
	case sc.Thresholds != nil:
		options["thresholds"] = sc.Thresholds
	case hasChecks(sc):
		// Without explicit thresholds a failed check would not move the
		// engine's exit code; require a perfect check rate instead.
		options["thresholds"] = map[string][]string{"checks": {"rate==1"}}
	}
	return options
}

func buildSteps(sc scenario.Scenario) []stepDef {
	steps := make([]stepDef, 0, len(sc.Steps))
	for _, tc := range sc.Steps {
		sd := stepDef{
			Name:    tc.Name,
			Method:  tc.Method,
			URL:     tc.URL,
			Params:  tc.Params,
			Headers: tc.Headers,
			Tags:    tc.Tags,
			Checks:  tc.Checks,
			Extract: tc.Extract,
		}
		switch tc.Body.Kind {
		case testcase.ParseParsed:
			sd.Body = tc.Body.Value
		case testcase.ParseRaw:
			sd.Body = tc.Body.Raw
		}
		steps = append(steps, sd)
	}
	return steps
}

func hasChecks(sc scenario.Scenario) bool {
	for _, tc := range sc.Steps {
		if len(tc.Checks) > 0 {
			return true
		}
	}
	return false
}

var scenarioIDRe = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// ScenarioID converts a scenario name into an identifier the engine accepts
// as a scenario key.
func ScenarioID(name string) string {
	id := scenarioIDRe.ReplaceAllString(strings.TrimSpace(name), "_")
	id = strings.Trim(id, "_")
	if id == "" {
		return "scenario"
	}
	return id
}

func marshalIndent(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
