package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"github.com/liamcoop/rulepipeline/catalog"
	"github.com/liamcoop/rulepipeline/command"
	"github.com/liamcoop/rulepipeline/internal/logger"
	"github.com/liamcoop/rulepipeline/service"
)

type Server struct {
	db      *sql.DB
	store   string
	catalog *catalog.Service
	router  *chi.Mux
}

// NewServer connects to PostgreSQL when databaseURL is set and falls back
// to the in-memory store otherwise
func NewServer(store, databaseURL string) (*Server, error) {
	switch store {
	case "", "memory":
		return NewServerWithProxy(nil, catalog.NewMemoryProxy())
	case "postgres":
	default:
		return nil, fmt.Errorf("unknown store %q (use: memory, postgres)", store)
	}

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewServerWithProxy(db, catalog.NewPostgresProxy(db))
}

// NewServerWithProxy builds a server over an existing proxy. db may be nil.
func NewServerWithProxy(db *sql.DB, proxy service.DataProxy[*catalog.Product, string]) (*Server, error) {
	svc, err := catalog.NewService(proxy, catalog.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog service: %w", err)
	}

	s := &Server{
		db:      db,
		store:   "memory",
		catalog: svc,
	}
	if db != nil {
		s.store = "postgres"
	}

	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", s.handleListProducts)
		r.Post("/", s.handleCreateProduct)
		r.Post("/validate", s.handleValidateProduct)

		r.Route("/{productId}", func(r chi.Router) {
			r.Get("/", s.handleGetProduct)
			r.Put("/", s.handleUpdateProduct)
			r.Delete("/", s.handleDeleteProduct)
			r.Post("/ship", s.handleShipProduct)
			r.Post("/discontinue", s.handleDiscontinueProduct)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Store:    s.store,
		Counters: logger.Snapshot(),
	})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	result, err := s.catalog.GetAllCommand().Execute(r.Context())
	respondResult(w, result, err, http.StatusOK)
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := s.catalog.InsertCommand(req.toProduct("")).Execute(r.Context())
	respondResult(w, result, err, http.StatusCreated)
}

// handleValidateProduct runs the create rules without storing anything
func (s *Server) handleValidateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	pending, err := s.catalog.InsertCommand(req.toProduct("")).Validate(r.Context())
	if err != nil {
		logger.ErrorHttp5xx()
		logger.Error("Validation failed unexpectedly", "error", err)
		respondError(w, http.StatusInternalServerError, "validation failed", err)
		return
	}

	respondJSON(w, http.StatusOK, ValidationResponse{
		Valid:  pending.CanContinue(),
		Errors: pending.Errors,
	})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")
	result, err := s.catalog.GetByIDCommand(id).Execute(r.Context())
	respondResult(w, result, err, http.StatusOK)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := s.catalog.UpdateCommand(req.toProduct(id)).Execute(r.Context())
	respondResult(w, result, err, http.StatusOK)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")
	result, err := s.catalog.DeleteCommand(id).Execute(r.Context())
	if err == nil && result.Success {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondResult(w, result, err, http.StatusNoContent)
}

func (s *Server) handleShipProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")

	var req ShipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := s.catalog.ShipCommand(id, req.Quantity).Execute(r.Context())
	respondResult(w, result, err, http.StatusOK)
}

func (s *Server) handleDiscontinueProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")
	result, err := s.catalog.DiscontinueCommand(id).Execute(r.Context())
	respondResult(w, result, err, http.StatusOK)
}

// respondResult writes an ExecutionResult. Rule failures are 400, faults
// map by code and unexpected errors are 500.
func respondResult[T any](w http.ResponseWriter, result *command.ExecutionResult[T], err error, successStatus int) {
	if err != nil {
		logger.ErrorHttp5xx()
		logger.Error("Command failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	if result.Success {
		respondJSON(w, successStatus, result)
		return
	}

	status := statusForCode(result.Code)
	logger.WarnHttp4xx(status)
	respondJSON(w, status, result)
}

func statusForCode(code command.FaultCode) int {
	switch code {
	case command.CodeNotFound:
		return http.StatusNotFound
	case command.CodeConcurrency, command.CodeConflict:
		return http.StatusConflict
	case command.CodeBusinessRule:
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

func main() {
	ctx := context.Background()
	logger.Setup(ctx)
	defer logger.Shutdown(ctx)

	server, err := NewServer(os.Getenv("STORE"), os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to create server", "error", err)
	}
	if server.db != nil {
		defer server.db.Close()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("Server starting", "port", port, "store", server.store)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
