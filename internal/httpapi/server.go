package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/nguyentantai21042004/meeting-bot/internal/logger"
	"github.com/nguyentantai21042004/meeting-bot/internal/recorder"
)

const shutdownTimeout = 5 * time.Second

// SessionLister is the part of the recorder the ops endpoints read.
type SessionLister interface {
	Active() []recorder.SessionInfo
}

// Server exposes health and active-session endpoints.
type Server struct {
	addr     string
	sessions SessionLister
	logger   logger.Logger
	server   *http.Server
}

func New(addr string, sessions SessionLister, log logger.Logger) *Server {
	s := &Server{addr: addr, sessions: sessions, logger: log}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	router.HandleFunc("/sessions/{guildID}", s.handleGetSession).Methods(http.MethodGet)
	return router
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Ops HTTP listening on %s", s.addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, s.sessions.Active())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guildID"]
	for _, info := range s.sessions.Active() {
		if info.GuildID == guildID {
			s.writeJSON(r.Context(), w, info)
			return
		}
	}
	http.Error(w, "No active session", http.StatusNotFound)
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(ctx, "Failed to write response: %v", err)
	}
}
