package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	core_port "monitoring-service/internal/core/port"
)

// Server - наш REST API сервер для monitoring-service.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

func NewServer(port string, handlers *MonitorHandler, baseLogger core_port.LoggerPort) *Server {
	r := chi.NewRouter()

	// Общие middleware
	r.Use(LoggerMiddleware(baseLogger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		// Дашборд читает API с любого хоста, запись через HTTP не ходит
		AllowedOrigins: []string{"*"},

		// AllowedMethods - список разрешенных HTTP-методов.
		AllowedMethods: []string{"GET", "OPTIONS"},

		// AllowedHeaders - список разрешенных заголовков в запросе
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Trace-ID"},
	}))

	// Сервисные эндпоинты: их дергают балансировщик, пингер и оператор руками
	r.Get("/health", handlers.Health)
	r.Get("/status", handlers.GetStatus)
	r.Get("/run", handlers.TriggerRun)

	// Роутинг для API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", handlers.GetStatus)
		r.Get("/listings", handlers.GetListings)
		r.Get("/runs", handlers.GetRuns)
		r.Get("/runs/{runID}", handlers.GetRun)
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger,
	}
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
