package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cherry0021/ryot/internal/api/handlers"
	"github.com/cherry0021/ryot/internal/api/middleware"
	"github.com/cherry0021/ryot/internal/config"
	"github.com/cherry0021/ryot/internal/controllers"
	"github.com/cherry0021/ryot/internal/graph"
	"github.com/cherry0021/ryot/internal/models"
	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server       *http.Server
	db           *models.Database
	progressCtrl *controllers.ProgressController
	schema       graphql.Schema
	logger       *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, progressCtrl *controllers.ProgressController, resolver *graph.Resolver, logger *logrus.Logger) (*Server, error) {
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		return nil, fmt.Errorf("failed to build GraphQL schema: %w", err)
	}

	s := &Server{
		db:           db,
		progressCtrl: progressCtrl,
		schema:       schema,
		logger:       logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(s.db, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// GraphQL endpoint
	graphqlHandler := handlers.NewGraphQLHandler(s.schema, s.logger)
	mux.HandleFunc("/graphql", graphqlHandler.ServeHTTP)

	// Progress update page endpoint
	progressHandler := handlers.NewProgressHandler(s.progressCtrl, s.logger)
	mux.HandleFunc("/update-progress", progressHandler.ServeHTTP)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
