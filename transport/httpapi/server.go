// Package httpapi exposes the operation catalog over HTTP.
//
// Routes:
//
//	GET  /healthz          engine lifecycle state
//	GET  /v1/ops           catalog
//	GET  /v1/ops/{op}      one catalog entry
//	POST /v1/ops/{op}      {"params": [...], "flags": N} -> {"op", "family", "result"}
//	GET  /metrics          prometheus exposition, when a gatherer is configured
package httpapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	ephemeris "github.com/wippyai/ephemeris-bridge"
	"github.com/wippyai/ephemeris-bridge/engine"
	"github.com/wippyai/ephemeris-bridge/errors"
	"github.com/wippyai/ephemeris-bridge/metrics"
	"github.com/wippyai/ephemeris-bridge/schema"
)

const maxBodyBytes = 1 << 20

// Engine is what the server needs from the bridge.
type Engine interface {
	Call(ctx context.Context, req ephemeris.Request) (ephemeris.Result, error)
	State() engine.State
}

// Options configures a Server.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Collectors
	// Gatherer serves MetricsPath. Nil disables the endpoint.
	Gatherer    prometheus.Gatherer
	MetricsPath string
}

// Server handles catalog requests.
type Server struct {
	engine      Engine
	logger      *zap.Logger
	metrics     *metrics.Collectors
	gatherer    prometheus.Gatherer
	metricsPath string
}

// NewServer creates a server over eng.
func NewServer(eng Engine, opts Options) *Server {
	s := &Server{
		engine:      eng,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		gatherer:    opts.Gatherer,
		metricsPath: opts.MetricsPath,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metricsPath == "" {
		s.metricsPath = "/metrics"
	}
	return s
}

// Router returns the HTTP handler with middleware installed.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(s.metrics.Middleware())

	r.Get("/healthz", s.Health)
	r.Route("/v1/ops", func(r chi.Router) {
		r.Get("/", s.ListOps)
		r.Get("/{op}", s.DescribeOp)
		r.Post("/{op}", s.CallOp)
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, s.metricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	})
	return r
}

type healthResponse struct {
	Status string `json:"status"`
	Engine string `json:"engine"`
}

// Health handles GET /healthz. An idle engine is healthy: it initializes on
// the first call.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	state := s.engine.State()
	switch state {
	case engine.StateFailed, engine.StateClosed:
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Engine: state.String()})
	default:
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Engine: state.String()})
	}
}

// ListOps handles GET /v1/ops.
func (s *Server) ListOps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, schema.Catalog())
}

// DescribeOp handles GET /v1/ops/{op}.
func (s *Server) DescribeOp(w http.ResponseWriter, r *http.Request) {
	op := ephemeris.Op(chi.URLParam(r, "op"))
	spec, ok := schema.Lookup(op)
	if !ok {
		unknownOp(w, op)
		return
	}
	writeJSON(w, http.StatusOK, spec.Info())
}

type callRequest struct {
	Params []any  `json:"params"`
	Flags  *int32 `json:"flags,omitempty"`
}

type callResponse struct {
	Op     string           `json:"op"`
	Family ephemeris.Family `json:"family"`
	Result ephemeris.Result `json:"result"`
}

// CallOp handles POST /v1/ops/{op}.
func (s *Server) CallOp(w http.ResponseWriter, r *http.Request) {
	op := ephemeris.Op(chi.URLParam(r, "op"))
	spec, ok := schema.Lookup(op)
	if !ok {
		unknownOp(w, op)
		return
	}

	var body callRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil && !stderrors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	params, err := spec.Coerce(body.Params)
	if err != nil {
		s.handleError(w, err)
		return
	}
	req := ephemeris.NewRequest(op, params...)
	if body.Flags != nil {
		req = req.WithFlags(*body.Flags)
	}

	res, err := s.engine.Call(r.Context(), req)
	if err != nil {
		s.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, callResponse{Op: string(op), Family: res.Family(), Result: res})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Op      string `json:"op,omitempty"`
	Param   string `json:"param,omitempty"`
	Code    *int32 `json:"code,omitempty"`
}

func (s *Server) handleError(w http.ResponseWriter, err error) {
	e, ok := errors.As(err)
	if !ok {
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	resp := errorResponse{
		Error:   string(e.Kind),
		Message: e.Message(),
		Op:      e.Op,
		Param:   e.Param,
	}
	status := http.StatusInternalServerError
	switch e.Kind {
	case errors.KindInvalidArgument:
		status = http.StatusBadRequest
	case errors.KindOperation:
		status = http.StatusUnprocessableEntity
		code := e.Code
		resp.Code = &code
	case errors.KindNotInitialized, errors.KindInitialization, errors.KindProvisioning:
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn("engine unavailable", zap.Error(err))
	}
	writeJSON(w, status, resp)
}

func unknownOp(w http.ResponseWriter, op ephemeris.Op) {
	e := errors.UnknownOperation(string(op))
	writeJSON(w, http.StatusNotFound, errorResponse{Error: string(e.Kind), Message: e.Message(), Op: e.Op})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}
