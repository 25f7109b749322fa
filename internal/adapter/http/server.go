package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/dengue-dashboard/internal/dashboard"
	"github.com/couchcryptid/dengue-dashboard/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controller is the dashboard session the API drives.
type Controller interface {
	sharedobs.ReadinessChecker

	Load(ctx context.Context) error
	Status() dashboard.Status
	Choices() (dashboard.Choices, error)
	Selection() (domain.Selection, error)
	Update(u dashboard.SelectionUpdate) (domain.Selection, error)
	Reset() (domain.Selection, error)
	SelectFeature(props map[string]any) (domain.Selection, domain.FeatureMatch, error)
	Summary() (dashboard.SummaryView, error)
	Series() (domain.Series, error)
	Seasonality() (domain.Series, error)
	MapLayer(ctx context.Context) (*domain.Layer, error)
	Index(level domain.Level) (*domain.WideIndex, error)
	MinYear() int
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	ctrl       Controller
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api routes, /healthz, /readyz, and /metrics.
func NewServer(addr string, ctrl Controller, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ctrl:   ctrl,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ctrl))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/selection", s.handleSelection)
	mux.HandleFunc("POST /api/selection", s.handleUpdate)
	mux.HandleFunc("POST /api/selection/reset", s.handleReset)
	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("POST /api/map/select", s.handleMapSelect)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/series", s.handleSeries)
	mux.HandleFunc("GET /api/seasonality", s.handleSeasonality)
	mux.HandleFunc("GET /api/charts/series.svg", s.handleSeriesChart)
	mux.HandleFunc("GET /api/charts/seasonality.svg", s.handleSeasonalityChart)
	mux.HandleFunc("GET /api/export.xlsx", s.handleExport)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
