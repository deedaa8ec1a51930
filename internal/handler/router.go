package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ordersync/internal/mw"
)

type Deps struct {
	JWTSecret string
	Auth      TokenIssuer
	Syncer    Syncer
	Runs      RunLister
	Orders    OrderReader
	Stats     StatsReader
	DB        Pinger
	Metrics   http.Handler
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/healthz", HealthHandler(d.DB))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}
	r.Post("/api/token", TokenHandler(d.Auth))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(d.JWTSecret))

		r.Post("/api/sync", SyncHandler(d.Syncer))
		r.Get("/api/sync/runs", ListRunsHandler(d.Runs))

		r.Get("/api/orders", ListOrdersHandler(d.Orders))
		r.Get("/api/orders/{orderID}", GetOrderHandler(d.Orders))

		r.Get("/api/stats", StatsHandler(d.Stats))
	})

	return r
}
