package mock

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewEngineRequiresRoutes(t *testing.T) {
	if _, err := NewEngine(Config{}, nil); err == nil {
		t.Fatalf("expected error for empty route list")
	}
}

func TestNewEngineRequiresPath(t *testing.T) {
	cfg := Config{Routes: []Route{{Method: "GET"}}}
	if _, err := NewEngine(cfg, nil); err == nil {
		t.Fatalf("expected error for route without path")
	}
}

func TestNewEngineRejectsBadDelay(t *testing.T) {
	cfg := Config{Routes: []Route{{Path: "/x", Delay: "soon"}}}
	if _, err := NewEngine(cfg, nil); err == nil {
		t.Fatalf("expected error for invalid delay")
	}
}

func TestEngineServesRoutes(t *testing.T) {
	cfg := Config{Routes: []Route{
		{Path: "/health", Body: "ok"},
		{Method: "post", Path: "/login", Status: 201, Body: `{"token":"abc"}`},
		{Path: "/teapot", Status: 418, Headers: map[string]string{"X-Pot": "short"}, Body: "steeping"},
	}}
	engine, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	srv := httptest.NewServer(engine)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected /health response: %d %q", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type: %q", ct)
	}

	resp, err = http.Post(srv.URL+"/login", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != 201 || string(body) != `{"token":"abc"}` {
		t.Fatalf("unexpected /login response: %d %q", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("JSON body should infer JSON content type, got %q", ct)
	}

	resp, err = http.Get(srv.URL + "/teapot")
	if err != nil {
		t.Fatalf("GET /teapot: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != 418 || resp.Header.Get("X-Pot") != "short" {
		t.Fatalf("unexpected /teapot response: %d %v", resp.StatusCode, resp.Header)
	}
}

func TestEngineMethodMismatch(t *testing.T) {
	cfg := Config{Routes: []Route{{Method: "POST", Path: "/only-post", Body: "x"}}}
	engine, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	srv := httptest.NewServer(engine)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/only-post")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("GET on a POST route must not succeed")
	}
}
