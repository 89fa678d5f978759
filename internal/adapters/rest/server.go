package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"car-finder/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RouterConfig - все, что нужно роутеру: обработчики и настройки middleware
type RouterConfig struct {
	Listings      *ListingsHandler
	SavedSearches *SavedSearchesHandler
	Dealers       *DealersHandler
	Cron          *CronHandler

	Verifier           port.TokenVerifierPort
	CronSecret         string
	CorsAllowedOrigins []string
}

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter собирает chi-роутер с маршрутами /api/v1
func NewRouter(cfg RouterConfig, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CorsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300, // 5 минут
	}))

	authMiddleware := AuthMiddleware(cfg.Verifier)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", Healthz)

		// --- Публичные маршруты ---
		r.Get("/search", cfg.Listings.Search)
		r.Get("/listings/{listingID}", cfg.Listings.GetListing)
		r.Get("/listings/{listingID}/price-history", cfg.Listings.GetPriceHistory)
		r.Get("/vin/{vin}", cfg.Dealers.DecodeVIN)

		// --- Приватные маршруты ---
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Post("/dealers/{dealerID}/listings", cfg.Listings.IngestDealerListings)

			r.Get("/dealers", cfg.Dealers.List)
			r.Post("/dealers", cfg.Dealers.Invite)

			r.Get("/saved-searches", cfg.SavedSearches.List)
			r.Post("/saved-searches", cfg.SavedSearches.Create)
			r.Delete("/saved-searches/{searchID}", cfg.SavedSearches.Delete)
		})

		// --- Задачи по расписанию, GET для внешних планировщиков ---
		r.Route("/cron", func(r chi.Router) {
			r.Use(CronSecretMiddleware(cfg.CronSecret))

			r.Get("/price-history", cfg.Cron.PriceHistory)
			r.Post("/price-history", cfg.Cron.PriceHistory)
			r.Get("/saved-searches", cfg.Cron.SavedSearchAlerts)
			r.Post("/saved-searches", cfg.Cron.SavedSearchAlerts)
			r.Get("/feed-sync", cfg.Cron.FeedSync)
			r.Post("/feed-sync", cfg.Cron.FeedSync)
		})
	})

	return r
}

func NewServer(listenPort string, otelEnabled bool, serviceName string, cfg RouterConfig, baseLogger port.LoggerPort) *Server {
	handler := NewRouter(cfg, baseLogger)
	if otelEnabled {
		handler = otelhttp.NewHandler(handler, serviceName)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + listenPort,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// Start запускает HTTP-сервер
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
