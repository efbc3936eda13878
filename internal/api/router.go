package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/Harshitk-cp/patron/internal/api/handlers"
	mw "github.com/Harshitk-cp/patron/internal/api/middleware"
	"github.com/Harshitk-cp/patron/internal/buildconfig"
	"github.com/Harshitk-cp/patron/internal/config"
	"github.com/Harshitk-cp/patron/internal/domain"
	"github.com/Harshitk-cp/patron/internal/service"
	"github.com/Harshitk-cp/patron/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and the services behind it.
type App struct {
	Router    *chi.Mux
	Customers *service.CustomerService
	startTime time.Time
	counters  mw.Counters
}

// Options tunes an App. Zero values fall back to config.
type Options struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	return New(store.NewCustomerStore(db), db, logger, Options{
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
	})
}

// New wires an App over any customer store. pinger backs /health.
func New(customers domain.CustomerStore, pinger domain.Pinger, logger *zap.Logger, opts Options) *App {
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = config.RateLimitRPS()
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = config.RateLimitBurst()
	}

	customerSvc := service.NewCustomerService(customers, logger)
	customerHandler := handlers.NewCustomerHandler(customerSvc)

	r := chi.NewRouter()
	app := &App{
		Router:    r,
		Customers: customerSvc,
		startTime: time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Metrics(&app.counters))
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))

	r.Get("/health", healthHandler(pinger, logger))
	r.Get("/metrics", app.metricsHandler())
	r.Get("/version", versionHandler)

	customerRoutes := func(r chi.Router) {
		r.Post("/", customerHandler.Create)
		r.Get("/", customerHandler.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", customerHandler.GetByID)
			r.Put("/", customerHandler.Update)
			r.Delete("/", customerHandler.Delete)
		})
	}
	r.Route("/customers", customerRoutes)
	r.Route("/v1/customers", customerRoutes)

	return app
}

// healthHandler reports database reachability. Ping errors are logged, not
// returned to the caller.
func healthHandler(db domain.Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			logger.Error("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildconfig.VersionInfo())
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		writeJSON(w, http.StatusOK, map[string]any{
			"uptime_seconds":     uptime.Seconds(),
			"uptime_human":       uptime.Round(time.Second).String(),
			"request_count":      app.counters.Requests.Load(),
			"client_error_count": app.counters.ClientErrors.Load(),
			"error_count":        app.counters.ServerErrors.Load(),
			"goroutines":         runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Ensure stores satisfy interfaces at compile time.
var (
	_ domain.CustomerStore = (*store.CustomerStore)(nil)
	_ domain.Pinger        = (*pgxpool.Pool)(nil)
)
