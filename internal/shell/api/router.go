// Package api exposes the request pipeline over HTTP. Every route is a
// thin adapter: decode a registered request type, run it through the
// pipeline, and map the typed result onto a status code. No business
// logic lives here.
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"

	"github.com/artpar/relay/internal/core/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BindFunc builds a request from URL parameters and query string for
// routes whose payload does not arrive as a JSON body.
type BindFunc func(r *http.Request) (pipeline.Request, error)

// Route binds one HTTP endpoint to a registered request name. Exactly
// one of Request (decode the JSON body into a fresh instance) or Bind
// (construct from the URL) drives request construction; Bind wins when
// both are set.
type Route struct {
	Method  string
	Path    string
	Request string
	Summary string
	Bind    BindFunc
}

// Config holds the router dependencies.
type Config struct {
	Pipeline *pipeline.Pipeline
	Registry *pipeline.Registry
	Logger   *slog.Logger

	// Metrics, when non-nil, is mounted at /metrics.
	Metrics http.Handler

	Version string
}

// =============================================================================
// Router
// =============================================================================

// NewRouter builds the HTTP router. A route that names a request with
// no registration is a configuration error, reported here at startup.
func NewRouter(cfg Config, routes []Route) (http.Handler, error) {
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("api: pipeline is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("api: registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, rt := range routes {
		if _, ok := cfg.Registry.Lookup(rt.Request); !ok {
			return nil, fmt.Errorf("api: route %s %s names unregistered request %q", rt.Method, rt.Path, rt.Request)
		}
	}

	h := &handler{
		pipeline: cfg.Pipeline,
		registry: cfg.Registry,
		logger:   logger.With("component", "api"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/healthz", h.handleHealth(cfg.Version))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	spec, err := buildOpenAPI(cfg.Version, routes, cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("api: build openapi spec: %w", err)
	}
	r.Get("/openapi.json", h.handleSpec(spec))

	for _, rt := range routes {
		rt := rt
		r.Method(rt.Method, rt.Path, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			h.execute(w, req, rt)
		}))
	}

	return r, nil
}

// =============================================================================
// Handler
// =============================================================================

type handler struct {
	pipeline *pipeline.Pipeline
	registry *pipeline.Registry
	logger   *slog.Logger
}

// execute runs one HTTP request through the pipeline.
func (h *handler) execute(w http.ResponseWriter, r *http.Request, rt Route) {
	req, err := h.buildRequest(r, rt)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, pipeline.Invalid([]pipeline.Failure{{
			Field:   "body",
			Message: err.Error(),
			Rule:    "decode",
		}}))
		return
	}

	res := h.pipeline.Execute(r.Context(), req)
	h.writeResult(w, res)
}

func (h *handler) buildRequest(r *http.Request, rt Route) (pipeline.Request, error) {
	if rt.Bind != nil {
		return rt.Bind(r)
	}

	reg, _ := h.registry.Lookup(rt.Request)
	req := reg.New()
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	return req, nil
}

func (h *handler) writeResult(w http.ResponseWriter, res pipeline.Result) {
	if res.OK() {
		h.writeJSON(w, http.StatusOK, res)
		return
	}
	h.writeJSON(w, statusFor(res.Err.Kind), res)
}

func (h *handler) writeError(w http.ResponseWriter, status int, err *pipeline.Error) {
	h.writeJSON(w, status, pipeline.Failed(err))
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// statusFor maps the error taxonomy onto HTTP status codes. Dependency
// failures read as a bad gateway: the request was well formed but a
// collaborator behind this service failed.
func statusFor(kind pipeline.ErrorKind) int {
	switch kind {
	case pipeline.ValidationError:
		return http.StatusBadRequest
	case pipeline.NotFoundError:
		return http.StatusNotFound
	case pipeline.ConflictError:
		return http.StatusConflict
	case pipeline.DependencyError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// Infrastructure Endpoints
// =============================================================================

func (h *handler) handleHealth(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	}
}

func (h *handler) handleSpec(spec []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Write(spec)
	}
}
