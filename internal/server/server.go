// Package server accepts gesture clients over TCP and feeds their tokens to
// the dispatcher, one independent session per connection.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Defaults for a gesture server.
const (
	DefaultReadBufferSize = 1024
	DefaultCooldown       = 300 * time.Millisecond
)

// Server is the gesture TCP server.
type Server struct {
	addr        string
	dispatcher  Dispatcher
	cooldown    time.Duration
	idleTimeout time.Duration
	bufSize     int
	logger      *slog.Logger
	onChange    func(active int)

	mu       sync.Mutex
	listener net.Listener
	sessions map[*Session]struct{}
	wg       sync.WaitGroup
	active   atomic.Int64
	closed   atomic.Bool
}

// Option customizes a Server.
type Option func(*Server)

// WithCooldown sets the minimum gap between two gestures of one session.
func WithCooldown(d time.Duration) Option {
	return func(s *Server) { s.cooldown = d }
}

// WithIdleTimeout closes sessions that send nothing for d. Zero disables it.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) { s.idleTimeout = d }
}

// WithReadBufferSize bounds a single read.
func WithReadBufferSize(n int) Option {
	return func(s *Server) { s.bufSize = n }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithSessionHook registers fn to be called with the active session count
// whenever a session opens or closes.
func WithSessionHook(fn func(active int)) Option {
	return func(s *Server) { s.onChange = fn }
}

// New creates a server that will listen on addr.
func New(addr string, d Dispatcher, opts ...Option) *Server {
	s := &Server{
		addr:       addr,
		dispatcher: d,
		cooldown:   DefaultCooldown,
		bufSize:    DefaultReadBufferSize,
		logger:     slog.Default(),
		sessions:   make(map[*Session]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	return s
}

// Listen binds the TCP listener. A bind failure at startup is fatal to
// the caller.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return net.ErrClosed
	}
	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
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

// ActiveSessions returns the number of connected clients.
func (s *Server) ActiveSessions() int {
	return int(s.active.Load())
}

// Serve accepts connections until ctx is done, then closes every session.
// A listener failure is returned after the listener is dropped, so calling
// Serve again rebinds. Serve on a closed server returns nil at once.
func (s *Server) Serve(ctx context.Context) error {
	if s.closed.Load() {
		return nil
	}
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	var tempDelay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || s.closed.Load() {
				s.shutdown()
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				tempDelay = nextDelay(tempDelay)
				s.logger.Warn("accept_failed", "error", err, "retry_in", tempDelay)
				select {
				case <-time.After(tempDelay):
					continue
				case <-ctx.Done():
					continue
				}
			}
			s.dropListener(ln)
			return fmt.Errorf("accept: %w", err)
		}
		tempDelay = 0
		s.startSession(conn)
	}
}

func nextDelay(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}

func (s *Server) startSession(conn net.Conn) {
	stream := NewStream(s.dispatcher, s.cooldown, s.logger)
	sess := newSession(conn, stream, s.bufSize, s.idleTimeout)

	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
	s.changed(s.active.Add(1))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sess)
			s.mu.Unlock()
			s.changed(s.active.Add(-1))
		}()
		sess.run()
	}()
}

func (s *Server) changed(active int64) {
	if s.onChange != nil {
		s.onChange(int(active))
	}
}

func (s *Server) dropListener(ln net.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ln.Close()
	if s.listener == ln {
		s.listener = nil
	}
}

// shutdown closes the listener and all sessions, then waits for them.
func (s *Server) shutdown() {
	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
		s.listener = nil
	}
	for sess := range s.sessions {
		sess.conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Close stops accepting and ends every session.
func (s *Server) Close() error {
	s.closed.Store(true)
	s.shutdown()
	return nil
}
