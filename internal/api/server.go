// Package api provides the HTTP side of the gesture service: health and
// status endpoints plus a WebSocket gesture stream.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"trackpad/internal/protocol"
	"trackpad/internal/server"
)

// StatusFunc reports the live service state.
type StatusFunc func() protocol.Status

// Server provides the HTTP API
type Server struct {
	addr     string
	status   StatusFunc
	logger   *slog.Logger
	wsMgr    *WSManager
	mux      *http.ServeMux
	cooldown time.Duration

	mu       sync.Mutex
	listener net.Listener
}

// Option customizes a Server.
type Option func(*Server)

// WithCooldown sets the per-client gap between gestures on /ws.
func WithCooldown(d time.Duration) Option {
	return func(s *Server) { s.cooldown = d }
}

// WithLogger sets the API logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new API server. Gestures received on /ws go to d.
func NewServer(addr string, d server.Dispatcher, status StatusFunc, opts ...Option) *Server {
	s := &Server{
		addr:     addr,
		status:   status,
		logger:   slog.Default(),
		cooldown: server.DefaultCooldown,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "api")
	s.wsMgr = newWSManager(d, s.cooldown, s.logger)

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /ws", s.wsMgr.handleWebSocket)
	return s
}

// Handler returns the API handler with its middleware.
func (s *Server) Handler() http.Handler {
	return s.logMiddleware(s.recoverMiddleware(s.mux))
}

// Listen binds the API port. Failure at startup is fatal to the caller.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}

	// tcp4 avoids IPv6-only binding on Windows
	ln, err := net.Listen("tcp4", s.addr)
	if err != nil {
		return fmt.Errorf("api: listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.logger.Info("listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil when not listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// WebSocketClients returns the number of connected /ws clients.
func (s *Server) WebSocketClients() int {
	return s.wsMgr.count()
}

// Serve handles requests until ctx is done. WebSocket clients are
// disconnected on shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
		s.wsMgr.closeAll()
		s.forget(ln)
		return nil

	case err := <-errCh:
		s.wsMgr.closeAll()
		s.forget(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: serve: %w", err)
	}
}

func (s *Server) forget(ln net.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == ln {
		s.listener = nil
	}
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("handler_panic", "path", r.URL.Path, "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

// handleHealth handles GET /health (for monitoring)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var st protocol.Status
	if s.status != nil {
		st = s.status()
	}
	st.WebSocketClients = s.wsMgr.count()
	writeJSON(w, st)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
