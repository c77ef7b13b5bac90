package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sagarc03/docsgate"
	"github.com/sagarc03/docsgate/metrics"
)

// DefaultMetricsPath is where the metrics handler is mounted when
// HandlerConfig.MetricsPath is empty.
const DefaultMetricsPath = "/metrics"

// RouteResolver maps a request path and host to a response.
// *docsgate.Router implements it.
type RouteResolver interface {
	Route(ctx context.Context, path, host string) (docsgate.Response, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
	// Metrics records request metrics when set.
	Metrics *metrics.Metrics
	// MetricsHandler is mounted at MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
}

// Handler serves documentation requests through a RouteResolver.
type Handler struct {
	config HandlerConfig
	router RouteResolver
}

// NewHandler creates a new Handler with the given configuration and router.
func NewHandler(config *HandlerConfig, router RouteResolver) *Handler {
	return &Handler{
		config: *config,
		router: router,
	}
}

// Router returns an http.Handler with all routes and middleware configured.
// GET and HEAD on any path are resolved by the RouteResolver. /healthz and
// the metrics endpoint are mounted ahead of the catch-all.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(AccessLog)
	if h.config.Metrics != nil {
		r.Use(h.config.Metrics.Middleware)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", handleHealth)
	r.Head("/healthz", handleHealth)

	if h.config.MetricsHandler != nil {
		path := h.config.MetricsPath
		if path == "" {
			path = DefaultMetricsPath
		}
		r.Method(http.MethodGet, path, h.config.MetricsHandler)
		r.Method(http.MethodHead, path, h.config.MetricsHandler)
	}

	r.Get("/*", h.handleRoute)
	r.Head("/*", h.handleRoute)
	r.MethodNotAllowed(handleMethodNotAllowed)

	return r
}

func (h *Handler) handleRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The escaped form keeps an encoded slash inside its segment.
	resp, err := h.router.Route(ctx, r.URL.EscapedPath(), r.Host)
	if err != nil {
		metrics.SetRoute(ctx, "error")
		if errors.Is(err, context.Canceled) {
			slog.Debug("request canceled", "path", r.URL.Path, "request_id", RequestIDFromContext(ctx))
			return
		}
		slog.Error("route request", "path", r.URL.Path, "request_id", RequestIDFromContext(ctx), "err", err)
		WriteError(w, http.StatusBadGateway)
		return
	}

	metrics.SetRoute(ctx, resp.Kind.String())
	WriteResponse(w, r, resp)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", docsgate.CacheControlNoStore)
	_, _ = w.Write([]byte("ok"))
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", "GET, HEAD")
	WriteError(w, http.StatusMethodNotAllowed)
}
