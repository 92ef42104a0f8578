// Package server exposes the dashboard over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/karad-smartcity/cityanalytics/internal/dashboard"
	"github.com/karad-smartcity/cityanalytics/internal/report"
	"github.com/karad-smartcity/cityanalytics/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	Report      report.Options
	Filename    string
	Insights    []string
	CORSOrigins []string
	RateLimit   float64 // requests per second; 0 disables limiting
	RateBurst   int
}

// Server holds the handlers' dependencies. It keeps no per-request state.
type Server struct {
	dash  *dashboard.Dashboard
	store store.Store
	opts  Options
	now   func() time.Time
}

// New returns a server over a loaded dashboard. A nil store records nothing.
func New(d *dashboard.Dashboard, st store.Store, opts Options) *Server {
	if st == nil {
		st = store.Noop{}
	}
	if opts.Filename == "" {
		opts.Filename = report.DefaultFilename
	}
	if len(opts.Insights) == 0 {
		opts.Insights = report.DefaultInsights()
	}
	return &Server{dash: d, store: st, opts: opts, now: time.Now}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	if s.opts.RateLimit > 0 {
		burst := s.opts.RateBurst
		if burst <= 0 {
			burst = int(s.opts.RateLimit) + 1
		}
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(s.opts.RateLimit), burst)))
	}

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/wards", s.handleWards)
		r.Get("/views", s.handleViews)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/kpis", s.handleKPIs)
		r.Get("/traffic/map", s.handleMap)
		r.Get("/simulate", s.handleSimulateQuery)
		r.Post("/simulate", s.handleSimulateJSON)
		r.Get("/report.pdf", s.handleReport)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Get("/export.xlsx", s.handleExport)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}
