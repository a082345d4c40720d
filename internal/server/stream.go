package server

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"trackpad/internal/actions"
	"trackpad/internal/protocol"
)

// Dispatcher issues the action for a decoded gesture.
type Dispatcher interface {
	Dispatch(tok protocol.Token) actions.Action
}

// Outcome is what a Stream did with one message.
type Outcome int

const (
	// OutcomeIgnored means the message was not a known gesture.
	OutcomeIgnored Outcome = iota
	// OutcomeCoolingDown means a gesture arrived inside the cool-down window and was dropped.
	OutcomeCoolingDown
	// OutcomeDispatched means the gesture reached the dispatcher.
	OutcomeDispatched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeCoolingDown:
		return "cooling_down"
	case OutcomeDispatched:
		return "dispatched"
	default:
		return "unknown"
	}
}

// Stream is the per-client gesture pipeline: decode, cool-down gate,
// dispatch. TCP sessions and WebSocket clients each own one. A Stream is
// driven by a single reader goroutine so messages are handled in arrival
// order.
type Stream struct {
	id         string
	dispatcher Dispatcher
	limiter    *rate.Limiter // nil disables the cool-down
	logger     *slog.Logger

	received   atomic.Int64
	dispatched atomic.Int64
}

// NewStream creates a stream with a fresh session ID. A zero cooldown
// dispatches every gesture.
func NewStream(d Dispatcher, cooldown time.Duration, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()

	var limiter *rate.Limiter
	if cooldown > 0 {
		// one gesture, then nothing until the window has passed
		limiter = rate.NewLimiter(rate.Every(cooldown), 1)
	}

	return &Stream{
		id:         id,
		dispatcher: d,
		limiter:    limiter,
		logger:     logger.With("session_id", id),
	}
}

// ID returns the session ID used in logs.
func (s *Stream) ID() string {
	return s.id
}

// Logger returns the stream logger, tagged with the session ID.
func (s *Stream) Logger() *slog.Logger {
	return s.logger
}

// Handle decodes one message as a single gesture token and dispatches it.
// Unknown tokens are dropped silently and never consume the cool-down.
func (s *Stream) Handle(raw []byte) Outcome {
	s.received.Add(1)

	tok := protocol.DecodeToken(raw)
	if !tok.Valid() {
		s.logger.Debug("gesture_ignored", "bytes", len(raw))
		return OutcomeIgnored
	}

	if s.limiter != nil && !s.limiter.Allow() {
		s.logger.Debug("gesture_cooling_down", "gesture", tok.String())
		return OutcomeCoolingDown
	}

	s.dispatcher.Dispatch(tok)
	s.dispatched.Add(1)
	return OutcomeDispatched
}

// Counts returns how many messages were received and dispatched.
func (s *Stream) Counts() (received, dispatched int64) {
	return s.received.Load(), s.dispatched.Load()
}
