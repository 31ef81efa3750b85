package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/courtside/internal/service"
)

// Server represents the REST API server. It is a thin dispatch layer: every
// handler translates a core call into JSON and nothing more.
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, players *service.PlayerService) *Server {
	handler := NewHandler(players)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/api/health", handler.HealthCheck).Methods("GET")

	// Season resolution
	router.HandleFunc("/api/season", handler.GetSeason).Methods("GET")

	// Player rankings data
	router.HandleFunc("/api/players", handler.GetPlayers).Methods("GET")
	router.HandleFunc("/api/players/last-season", handler.GetLastSeasonPlayers).Methods("GET")
	router.HandleFunc("/api/players/{season}", handler.GetPlayersBySeason).Methods("GET")

	// Cache inspection and manual refresh triggers
	router.HandleFunc("/api/cache", handler.GetCacheInfo).Methods("GET")
	router.HandleFunc("/api/refresh/injuries", handler.RefreshInjuries).Methods("POST")
	router.HandleFunc("/api/refresh/bios", handler.RefreshBios).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
