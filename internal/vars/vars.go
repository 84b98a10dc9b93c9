// Package vars implements the runtime placeholder syntax used in test-case
// cells: {{name}} substitutes a captured variable (empty string when unset)
// and {{$randomInt(min,max)}} substitutes a fresh random integer in
// [min,max]. The generated load script carries an equivalent implementation
// in JavaScript; this Go version backs the smoke preflight.
package vars

import (
	"math/rand/v2"
	"regexp"
	"strconv"
)

var (
	randomIntRe = regexp.MustCompile(`\{\{\$randomInt\((-?\d+),\s*(-?\d+)\)\}\}`)
	variableRe  = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)
)

// Map holds the variables captured so far in one scenario run.
type Map map[string]string

// Clone copies the map so per-scenario runs do not leak extracted values into
// each other.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Substitute resolves all placeholders in s. $randomInt is evaluated on every
// call, never cached. Unknown variables resolve to the empty string.
func (m Map) Substitute(s string) string {
	out := randomIntRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := randomIntRe.FindStringSubmatch(match)
		lo, err1 := strconv.Atoi(parts[1])
		hi, err2 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || hi < lo {
			return match
		}
		return strconv.Itoa(lo + rand.IntN(hi-lo+1))
	})
	return variableRe.ReplaceAllStringFunc(out, func(match string) string {
		name := variableRe.FindStringSubmatch(match)[1]
		return m[name]
	})
}

// SubstituteMap applies Substitute to every value of in, returning a new map.
func (m Map) SubstituteMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = m.Substitute(v)
	}
	return out
}
