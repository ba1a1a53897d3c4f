package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/camuig/stock-quest/internal/logger"
	"github.com/camuig/stock-quest/internal/portfolio"
	"github.com/camuig/stock-quest/internal/tracker"
)

//go:embed templates/*.html
var templateFS embed.FS

// Source is the read side of the tracker plus the manual refresh action.
type Source interface {
	Status() tracker.Status
	Holdings() []portfolio.Holding
	Refresh(ctx context.Context) (tracker.RefreshResult, error)
}

type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	source     Source
	registry   *prometheus.Registry
	dashboard  *template.Template
	port       int
	logger     *logger.Logger
}

func NewServer(src Source, port int, log *logger.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		source:    src,
		registry:  newRegistry(src),
		dashboard: template.Must(template.New("dashboard.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/dashboard.html")),
		port:      port,
		logger:    log.With("component", "web"),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Get("/", s.handleDashboard)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/holdings", s.handleHoldings)
		r.Post("/refresh", s.handleRefresh)
	})
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String())
	})
}
