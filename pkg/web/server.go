// Package web exposes the engine pipeline over a JSON HTTP API.
//
// # Endpoints
//
//   - GET  /healthz           liveness probe
//   - POST /api/v1/analyze    cycle detection, importance, statistics
//   - POST /api/v1/layout     node positions for a graph
//   - POST /api/v1/cluster    semantic clustering
//   - POST /api/v1/pipeline   all stages in one call
//
// Every POST endpoint accepts {"graph": ..., "options": ...} where options
// follow [pipeline.Options]. Responses carry the X-Request-ID header for
// correlation with server logs.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	apperrors "github.com/codeatlas/codeatlas/pkg/errors"
	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/pipeline"
)

// maxRequestBody caps request size at 32 MiB; graphs past that point
// should use the CLI.
const maxRequestBody = 32 << 20

// Server serves the engine API.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates the API server around a pipeline runner.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		router: chi.NewRouter(),
		runner: runner,
		logger: logger,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(requestID(s.logger))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/layout", s.handleLayout)
		r.Post("/cluster", s.handleCluster)
		r.Post("/pipeline", s.handlePipeline)
	})
}

// engineRequest is the shared body shape of all POST endpoints.
type engineRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	report, err := s.runner.Analyze(r.Context(), req.Graph, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	laidOut, err := s.runner.Layout(r.Context(), req.Graph, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, laidOut)
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	result, err := s.runner.Cluster(r.Context(), req.Graph, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	result, err := s.runner.Execute(r.Context(), req.Graph, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (engineRequest, bool) {
	var req engineRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body"))
		return engineRequest{}, false
	}
	if err := req.Options.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid options"))
		return engineRequest{}, false
	}
	return req, true
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: apperrors.UserMessage(err),
	}})
}

func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidGraph,
		apperrors.ErrCodeInvalidLayout, apperrors.ErrCodeInvalidAlgorithm,
		apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeNodeNotFound, apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encode failures here mean the connection is gone; nothing left to send.
	_ = json.NewEncoder(w).Encode(v)
}
