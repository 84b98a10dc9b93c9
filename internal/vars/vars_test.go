package vars

import (
	"strconv"
	"strings"
	"testing"
)

func TestSubstituteRandomIntDegenerateRange(t *testing.T) {
	m := Map{}
	for i := 0; i < 10; i++ {
		if got := m.Substitute("{{$randomInt(1,1)}}"); got != "1" {
			t.Fatalf("expected 1, got %q", got)
		}
	}
}

func TestSubstituteRandomIntWithinRange(t *testing.T) {
	m := Map{}
	for i := 0; i < 100; i++ {
		got := m.Substitute("{{$randomInt(5,10)}}")
		n, err := strconv.Atoi(got)
		if err != nil {
			t.Fatalf("not an integer: %q", got)
		}
		if n < 5 || n > 10 {
			t.Fatalf("out of range: %d", n)
		}
	}
}

func TestSubstituteUnknownVariableIsEmpty(t *testing.T) {
	m := Map{}
	if got := m.Substitute("token={{authToken}}!"); got != "token=!" {
		t.Fatalf("expected empty substitution, got %q", got)
	}
}

func TestSubstituteKnownVariable(t *testing.T) {
	m := Map{"authToken": "abc123"}
	if got := m.Substitute("Bearer {{authToken}}"); got != "Bearer abc123" {
		t.Fatalf("unexpected substitution: %q", got)
	}
}

func TestSubstituteMixed(t *testing.T) {
	m := Map{"user": "alice"}
	got := m.Substitute("/users/{{user}}/items/{{$randomInt(1,1)}}")
	if got != "/users/alice/items/1" {
		t.Fatalf("unexpected substitution: %q", got)
	}
}

func TestSubstituteInvalidRangeLeftAlone(t *testing.T) {
	m := Map{}
	got := m.Substitute("{{$randomInt(9,3)}}")
	if !strings.Contains(got, "randomInt") {
		t.Fatalf("inverted range should stay literal, got %q", got)
	}
}

func TestSubstituteMap(t *testing.T) {
	m := Map{"tok": "x"}
	in := map[string]string{"Authorization": "Bearer {{tok}}", "Accept": "application/json"}
	out := m.SubstituteMap(in)
	if out["Authorization"] != "Bearer x" {
		t.Fatalf("unexpected header: %q", out["Authorization"])
	}
	if out["Accept"] != "application/json" {
		t.Fatalf("untouched value changed: %q", out["Accept"])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := Map{"a": "1"}
	c := m.Clone()
	c["a"] = "2"
	if m["a"] != "1" {
		t.Fatalf("clone mutated the original")
	}
}
