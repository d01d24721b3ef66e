package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crucial707/user-api/internal/config"
	"github.com/crucial707/user-api/internal/handlers"
	"github.com/crucial707/user-api/internal/metrics"
	"github.com/crucial707/user-api/internal/middleware"
	"github.com/crucial707/user-api/internal/repo"
)

func newRouter(db *sql.DB, cfg config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.RequestLog(logger))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// ==========================
	// Public pages / ops
	// ==========================
	r.Get("/", handlers.Home())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	// ==========================
	// Users
	// ==========================
	userHandler := handlers.NewUserHandler(repo.NewUserRepo(db), logger)
	limiter := middleware.PerMinute(cfg.WriteRateLimitPerMin, cfg.WriteRateLimitBurst)

	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.MaxBytes(cfg.MaxBodyBytes))
		r.Use(middleware.WritesOnly(limiter.Middleware))
		userHandler.Routes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}
