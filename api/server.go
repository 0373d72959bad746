/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:      Unique ID per request for tracing
  2. Recoverer:      Panic recovery (500 instead of crash)
  3. RequestLogger:  Structured request logging (httplog over slog)
  4. CORS:           Cross-origin requests for the dashboard frontend

ROUTE GROUPS:
  /api/workitems/*     Work item schedule and snapshots
  /api/site/contract   Contract period
  /api/progress/*      Progress curve series
  /api/attendance/*    Sign-ins and rollups

SECURITY NOTE:
  No authentication middleware: authn/z belongs to the host application
  that embeds this service.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// RouterOptions configures the router's environment-dependent pieces.
type RouterOptions struct {
	AllowedOrigins []string
	LogLevel       slog.Level
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(true)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(slog.String("app", "site-analytics"))

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Heartbeat("/healthz"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/workitems", func(r chi.Router) {
			r.Get("/", h.ListWorkItems)
			r.Post("/", h.SaveWorkItem)
			r.Post("/{id}/snapshots", h.AddSnapshot)
		})

		r.Route("/site", func(r chi.Router) {
			r.Get("/contract", h.GetContractPeriod)
			r.Put("/contract", h.SetContractPeriod)
		})

		r.Route("/progress", func(r chi.Router) {
			r.Get("/series", h.GetProgressSeries)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/signatures", h.AppendSignatures)
			r.Get("/daily", h.GetDailyAttendance)
			r.Get("/raw", h.GetRawCounts)
			r.Get("/weekly", h.GetWeeklyAttendance)
			r.Get("/monthly", h.GetMonthlyAttendance)
		})
	})

	return r
}
