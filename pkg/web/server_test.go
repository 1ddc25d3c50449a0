package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/pipeline"
)

func testServer() *Server {
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	return NewServer(runner, log.New(io.Discard))
}

func requestBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	b := graph.NewBuilder()
	b.AddNode(graph.NewNode("a", graph.NodeModule, "a", "a.go"))
	b.AddNode(graph.NewNode("b", graph.NodeModule, "b", "b.go"))
	b.AddEdge(graph.NewEdge("a", "b", graph.EdgeImports))
	payload := map[string]any{"graph": b.Build(), "options": map[string]any{}}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		t.Fatalf("encode request: %v", err)
	}
	return &buf
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", requestBody(t))
	testServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var report pipeline.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Statistics.NodeCount != 2 || report.Statistics.EdgeCount != 1 {
		t.Errorf("statistics = %+v", report.Statistics)
	}
	if report.Statistics.HasCycles {
		t.Error("acyclic graph reported as cyclic")
	}
}

func TestLayoutEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/layout", requestBody(t))
	testServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var g graph.Graph
	if err := json.NewDecoder(rec.Body).Decode(&g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, n := range g.Nodes {
		if n.Position == nil {
			t.Errorf("node %q missing position", n.ID)
		}
	}
}

func TestClusterEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cluster", requestBody(t))
	testServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
}

func TestPipelineEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline", requestBody(t))
	testServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var result struct {
		RunID string `json:"RunID"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.RunID == "" {
		t.Error("missing run ID in pipeline response")
	}
}

func TestInvalidBodyReturns400(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("{not json"))
	testServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "INVALID_INPUT" {
		t.Errorf("error code = %q, want INVALID_INPUT", resp.Error.Code)
	}
}

func TestInvalidOptionsReturn400(t *testing.T) {
	payload := `{"graph": {"nodes": [], "edges": []}, "options": {"cluster_algorithm": "voronoi"}}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cluster", strings.NewReader(payload))
	testServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "client-chosen")
	testServer().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-chosen" {
		t.Errorf("X-Request-ID = %q, want client-chosen", got)
	}
}
