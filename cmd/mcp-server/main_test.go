package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	computor "github.com/njchilds90/computor"
)

func postTool(t *testing.T, srv *httptest.Server, body string) (int, computor.ToolResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/tool", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out computor.ToolResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, out
}

func TestServer_SharedSession(t *testing.T) {
	srv := httptest.NewServer(newServer(computor.NewSession()).routes())
	defer srv.Close()

	code, resp := postTool(t, srv, `{"tool":"exec","params":{"line":"a = 20 + 1"}}`)
	if code != http.StatusOK || resp.String != "21" {
		t.Fatalf("want 200 and 21, got %d %+v", code, resp)
	}
	_, resp = postTool(t, srv, `{"tool":"evaluate","params":{"expr":"a * 2"}}`)
	if resp.String != "42" {
		t.Errorf("want 42, got %+v", resp)
	}
}

func TestServer_BadRequests(t *testing.T) {
	srv := httptest.NewServer(newServer(computor.NewSession()).routes())
	defer srv.Close()

	if code, _ := postTool(t, srv, `{"tool":"evaluate","extra":1}`); code != http.StatusBadRequest {
		t.Errorf("want 400 for unknown field, got %d", code)
	}
	if code, _ := postTool(t, srv, `{"tool":"evaluate"} {}`); code != http.StatusBadRequest {
		t.Errorf("want 400 for trailing data, got %d", code)
	}
	resp, err := http.Get(srv.URL + "/tool")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("want 405, got %d", resp.StatusCode)
	}
}

func TestServer_Draining(t *testing.T) {
	s := newServer(computor.NewSession())
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	s.draining.Set()
	if code, _ := postTool(t, srv, `{"tool":"evaluate","params":{"expr":"1"}}`); code != http.StatusServiceUnavailable {
		t.Errorf("want 503 while draining, got %d", code)
	}
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("want 503 health while draining, got %d", resp.StatusCode)
	}
}

func TestServer_Schema(t *testing.T) {
	srv := httptest.NewServer(newServer(computor.NewSession()).routes())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/schema")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var spec map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&spec); err != nil {
		t.Fatal(err)
	}
	if _, ok := spec["tools"]; !ok {
		t.Errorf("want tools in schema")
	}
}
