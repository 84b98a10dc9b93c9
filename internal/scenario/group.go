package scenario

import (
	"reflect"
	"strconv"

	"github.com/loadsheet/loadsheet/internal/common"
	"github.com/loadsheet/loadsheet/internal/testcase"
)

// Scenario is an ordered, non-empty sequence of test cases executed
// sequentially by one simulated user. Thresholds and Executor come from the
// first step only.
type Scenario struct {
	Name       string
	Steps      []testcase.TestCase
	Thresholds map[string][]string
	Executor   map[string]interface{}
}

// Group partitions validated test cases into scenarios. Grouping is stable:
// scenarios appear in first-seen order and steps keep source row order. Cases
// without a scenario key become singleton scenarios named after the test name.
//
// Scenario-level configuration (thresholds, executor options) is taken from
// the first step; a later step carrying different configuration is ignored
// with a warning rather than silently dropped.
func Group(cases []testcase.TestCase, logger *common.Logger) []Scenario {
	if logger == nil {
		logger = common.GetLogger()
	}
	log := logger.WithComponent("scenario")

	var ordered []string
	byName := map[string]*Scenario{}

	for _, tc := range cases {
		key := tc.Scenario
		if key == "" {
			// Unscoped cases never merge, even if two share a test name.
			sc := Scenario{
				Name:       tc.Name,
				Steps:      []testcase.TestCase{tc},
				Thresholds: tc.Thresholds,
				Executor:   tc.Executor,
			}
			ordered = append(ordered, singletonKey(tc))
			byName[singletonKey(tc)] = &sc
			continue
		}

		sc, ok := byName[key]
		if !ok {
			byName[key] = &Scenario{
				Name:       key,
				Steps:      []testcase.TestCase{tc},
				Thresholds: tc.Thresholds,
				Executor:   tc.Executor,
			}
			ordered = append(ordered, key)
			continue
		}

		warnIgnoredConfig(log, sc, tc)
		sc.Steps = append(sc.Steps, tc)
	}

	out := make([]Scenario, 0, len(ordered))
	for _, key := range ordered {
		out = append(out, *byName[key])
	}
	return out
}

// warnIgnoredConfig surfaces the first-step-wins rule: conflicting thresholds
// or executor options on later steps are not applied.
func warnIgnoredConfig(log *common.Logger, sc *Scenario, tc testcase.TestCase) {
	if tc.Thresholds != nil && !reflect.DeepEqual(tc.Thresholds, sc.Thresholds) {
		log.Warn("ignoring thresholds on later scenario step; first step wins",
			"scenario", sc.Name, "step", tc.Name, "row", tc.Row)
	}
	if tc.Executor != nil && !reflect.DeepEqual(tc.Executor, sc.Executor) {
		log.Warn("ignoring executor options on later scenario step; first step wins",
			"scenario", sc.Name, "step", tc.Name, "row", tc.Row)
	}
}

// singletonKey keeps unscoped cases from colliding with named scenarios or
// with each other in the grouping index.
func singletonKey(tc testcase.TestCase) string {
	return "\x00singleton\x00" + tc.Name + "\x00" + strconv.Itoa(tc.Row)
}
