package testcase

import (
	"encoding/json"
	"strings"
)

// ParseKind tags the outcome of parsing a JSON-in-string cell.
type ParseKind int

const (
	// ParseEmpty means the cell was empty or whitespace.
	ParseEmpty ParseKind = iota
	// ParseRaw means the cell held plain text (or text that failed JSON decoding).
	ParseRaw
	// ParseParsed means the cell held a JSON object or array that decoded cleanly.
	ParseParsed
)

// ParseOutcome is the explicit result of the two-stage cell parse. The data
// source encodes structured values as strings; rather than try/ignore, every
// cell that may carry JSON goes through this tagged value so failures stay
// visible and testable.
type ParseOutcome struct {
	Kind  ParseKind
	Raw   string
	Value interface{}
}

// ParseCell classifies a raw cell. Only values whose trimmed text starts with
// '{' or '[' are attempted as JSON; everything else stays Raw.
func ParseCell(cell string) ParseOutcome {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ParseOutcome{Kind: ParseEmpty}
	}
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return ParseOutcome{Kind: ParseRaw, Raw: s}
	}
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return ParseOutcome{Kind: ParseRaw, Raw: s}
	}
	return ParseOutcome{Kind: ParseParsed, Raw: s, Value: v}
}

// Object returns the decoded JSON object, or nil when the outcome is not a
// parsed object.
func (p ParseOutcome) Object() map[string]interface{} {
	if p.Kind != ParseParsed {
		return nil
	}
	m, _ := p.Value.(map[string]interface{})
	return m
}

// Array returns the decoded JSON array, or nil when the outcome is not a
// parsed array.
func (p ParseOutcome) Array() []interface{} {
	if p.Kind != ParseParsed {
		return nil
	}
	a, _ := p.Value.([]interface{})
	return a
}

// StringMap coerces a parsed object into string-valued entries. Non-string
// scalars are rendered through their JSON form.
func (p ParseOutcome) StringMap() map[string]string {
	obj := p.Object()
	if obj == nil {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		out[k] = anyToString(v)
	}
	return out
}

func anyToString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
