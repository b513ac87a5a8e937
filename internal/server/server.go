package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"waterbarons/internal/catalog"
	"waterbarons/internal/config"
)

// DecisionTimeout bounds how long a table waits for one player decision.
const DecisionTimeout = 2 * time.Minute

// Server ties together HTTP serving and WebSocket handling.
type Server struct {
	handlers *Handlers
	port     int
}

// New builds a server. store may be nil, in which case nothing is saved.
func New(cfg config.Config, cat *catalog.Catalog, store Store) *Server {
	deps := TableDeps{
		Catalog:   cat,
		Store:     store,
		Seed:      cfg.Seed,
		MaxRounds: cfg.MaxRounds,
		Timeout:   DecisionTimeout,
	}
	return &Server{
		handlers: NewHandlers(cfg.MaxPlayers, deps),
		port:     cfg.Port,
	}
}

// Routes returns the HTTP routes.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/create", s.handlers.HandleCreateGame)
	mux.HandleFunc("/api/qr", s.handlers.HandleQR)
	mux.HandleFunc("/api/player-id", s.handlers.HandlePlayerID)
	mux.HandleFunc("/api/state", s.handlers.HandleState)
	mux.HandleFunc("/api/games", s.handlers.HandleGames)
	mux.HandleFunc("/api/history", s.handlers.HandleHistory)
	mux.HandleFunc("/api/resume", s.handlers.HandleResume)
	mux.HandleFunc("/ws", s.handlers.HandleWS)
	return mux
}

// Start serves until ctx is cancelled, then closes every table.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{Addr: addr, Handler: s.Routes()}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Water Barons server starting", "addr", "http://localhost"+addr)
		slog.Info("POST /api/create to open a new table")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.handlers.CloseAll()
		return err
	case <-ctx.Done():
	}

	s.handlers.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
