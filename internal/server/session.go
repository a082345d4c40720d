package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// Session serves one TCP client for the lifetime of its connection.
type Session struct {
	conn        net.Conn
	stream      *Stream
	bufSize     int
	idleTimeout time.Duration
	opened      time.Time
}

func newSession(conn net.Conn, stream *Stream, bufSize int, idleTimeout time.Duration) *Session {
	return &Session{
		conn:        conn,
		stream:      stream,
		bufSize:     bufSize,
		idleTimeout: idleTimeout,
		opened:      time.Now(),
	}
}

// run reads until EOF, error or idle timeout. Each read is one gesture;
// tokens split across reads are not reassembled. A panic ends only this
// session.
func (s *Session) run() {
	logger := s.stream.Logger()
	logger.Info("session_opened", "remote_addr", s.conn.RemoteAddr().String())

	reason := "eof"
	defer func() {
		if r := recover(); r != nil {
			reason = fmt.Sprintf("panic: %v", r)
		}
		s.conn.Close()

		received, dispatched := s.stream.Counts()
		logger.Info("session_closed",
			"reason", reason,
			"received", received,
			"dispatched", dispatched,
			"duration", time.Since(s.opened).Round(time.Millisecond),
		)
	}()

	buf := make([]byte, s.bufSize)
	for {
		if s.idleTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}

		n, err := s.conn.Read(buf)
		if n > 0 {
			s.stream.Handle(buf[:n])
		}
		if err != nil {
			reason = closeReason(err)
			return
		}
		if n == 0 {
			return
		}
	}
}

func closeReason(err error) string {
	switch {
	case errors.Is(err, io.EOF):
		return "eof"
	case errors.Is(err, os.ErrDeadlineExceeded):
		return "idle_timeout"
	case errors.Is(err, net.ErrClosed):
		return "server_closed"
	default:
		return err.Error()
	}
}
