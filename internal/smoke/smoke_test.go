package smoke

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/loadsheet/loadsheet/internal/scenario"
	"github.com/loadsheet/loadsheet/internal/testcase"
	"github.com/loadsheet/loadsheet/internal/vars"
)

// chainTarget is a two-endpoint server: POST /login yields a token, GET
// /profile requires it.
func chainTarget(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"user":"alice"}` {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"token":"abc"}}`))
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"alice","plan":"pro"}`))
	})
	return httptest.NewServer(mux)
}

func TestRunScenarioThreadsExtractedVariables(t *testing.T) {
	srv := chainTarget(t)
	defer srv.Close()

	sc := scenario.Scenario{
		Name: "login flow",
		Steps: []testcase.TestCase{
			{
				Row:     1,
				Name:    "login",
				Method:  "POST",
				URL:     srv.URL + "/login",
				Body:    testcase.ParseCell(`{"user":"alice"}`),
				Extract: []testcase.ExtractRule{{Variable: "token", Path: "data.token"}},
				Checks:  []testcase.Check{{Type: testcase.CheckStatusCode, Expected: float64(200)}},
			},
			{
				Row:     2,
				Name:    "profile",
				Method:  "GET",
				URL:     srv.URL + "/profile",
				Headers: map[string]string{"Authorization": "Bearer {{token}}"},
				Checks: []testcase.Check{
					{Type: testcase.CheckStatusCode, Expected: float64(200)},
					{Type: testcase.CheckBodyContains, Expected: "alice"},
					{Type: testcase.CheckJSONPathValue, Path: "plan", Expected: "pro"},
				},
			},
		},
	}

	s := &Smoke{}
	if err := s.RunScenario(context.Background(), sc, nil); err != nil {
		t.Fatalf("RunScenario failed: %v", err)
	}
}

func TestRunScenarioFailedCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sc := scenario.Scenario{
		Name: "broken",
		Steps: []testcase.TestCase{{
			Row:    1,
			Name:   "ping",
			Method: "GET",
			URL:    srv.URL,
			Checks: []testcase.Check{{Type: testcase.CheckStatusCode, Expected: float64(200)}},
		}},
	}

	err := (&Smoke{}).RunScenario(context.Background(), sc, nil)
	var cerr *CheckError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CheckError, got %v", err)
	}
	if cerr.Scenario != "broken" || cerr.Step != "ping" {
		t.Fatalf("unexpected check error: %+v", cerr)
	}
}

func TestRunScenarioUsesInitialVars(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sc := scenario.Scenario{
		Name: "seeded",
		Steps: []testcase.TestCase{{
			Row:     1,
			Name:    "call",
			Method:  "GET",
			URL:     srv.URL,
			Headers: map[string]string{"Authorization": "{{apiAuth}}"},
		}},
	}

	initial := vars.Map{"apiAuth": "Basic Zm9vOmJhcg=="}
	if err := (&Smoke{}).RunScenario(context.Background(), sc, initial); err != nil {
		t.Fatalf("RunScenario failed: %v", err)
	}
	if gotAuth != "Basic Zm9vOmJhcg==" {
		t.Fatalf("initial var not applied: %q", gotAuth)
	}
	if _, ok := initial["token"]; ok {
		t.Fatalf("initial map must not be mutated")
	}
}

func TestRunScenarioQueryParamsSubstituted(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("user")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sc := scenario.Scenario{
		Name: "params",
		Steps: []testcase.TestCase{{
			Row:    1,
			Name:   "list",
			Method: "GET",
			URL:    srv.URL,
			Params: map[string]string{"user": "{{who}}"},
		}},
	}

	if err := (&Smoke{}).RunScenario(context.Background(), sc, vars.Map{"who": "alice"}); err != nil {
		t.Fatalf("RunScenario failed: %v", err)
	}
	if gotQuery != "alice" {
		t.Fatalf("query param not substituted: %q", gotQuery)
	}
}

func TestRunScenarioMissingExtractPathContinues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	sc := scenario.Scenario{
		Name: "loose extract",
		Steps: []testcase.TestCase{{
			Row:     1,
			Name:    "first",
			Method:  "GET",
			URL:     srv.URL,
			Extract: []testcase.ExtractRule{{Variable: "id", Path: "data.id"}},
		}},
	}

	if err := (&Smoke{}).RunScenario(context.Background(), sc, nil); err != nil {
		t.Fatalf("missing extract path must not fail the smoke run: %v", err)
	}
}
