package server

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trackpad/internal/actions"
	"trackpad/internal/protocol"
)

type countingDispatcher struct {
	mu     sync.Mutex
	tokens []protocol.Token
}

func (d *countingDispatcher) Dispatch(tok protocol.Token) actions.Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens = append(d.tokens, tok)
	return actions.Action{}
}

func lit(tok protocol.Token) []byte {
	return protocol.EncodeToken(tok)
}

func TestStreamIgnoresUnknown(t *testing.T) {
	d := &countingDispatcher{}
	s := NewStream(d, 0, quietLogger())

	for _, raw := range []string{"", "   \r\n", "garbage", "\U0001f50d zoom+", "\U0001f50d Zoom+\n\U0001f50d Zoom+\n"} {
		assert.Equal(t, OutcomeIgnored, s.Handle([]byte(raw)), "%q", raw)
	}
	assert.Empty(t, d.tokens)

	received, dispatched := s.Counts()
	assert.Equal(t, int64(5), received)
	assert.Zero(t, dispatched)
}

func TestStreamTrimsSurroundingWhitespace(t *testing.T) {
	d := &countingDispatcher{}
	s := NewStream(d, 0, quietLogger())

	assert.Equal(t, OutcomeDispatched, s.Handle([]byte("  \u2b06\ufe0f Scroll V\r\n")))
	assert.Equal(t, []protocol.Token{protocol.TokenScrollUp}, d.tokens)
}

func TestStreamCooldown(t *testing.T) {
	d := &countingDispatcher{}
	s := NewStream(d, 40*time.Millisecond, quietLogger())

	assert.Equal(t, OutcomeDispatched, s.Handle(lit(protocol.TokenZoomIn)))
	assert.Equal(t, OutcomeCoolingDown, s.Handle(lit(protocol.TokenZoomIn)))
	assert.Equal(t, OutcomeCoolingDown, s.Handle(lit(protocol.TokenZoomOut)))

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, OutcomeDispatched, s.Handle(lit(protocol.TokenZoomOut)))

	assert.Equal(t, []protocol.Token{protocol.TokenZoomIn, protocol.TokenZoomOut}, d.tokens)
}

func TestStreamUnknownDoesNotConsumeCooldown(t *testing.T) {
	d := &countingDispatcher{}
	s := NewStream(d, time.Hour, quietLogger())

	assert.Equal(t, OutcomeIgnored, s.Handle([]byte("garbage")))
	assert.Equal(t, OutcomeDispatched, s.Handle(lit(protocol.TokenPinchOut)))
}

func TestStreamIDsAreUnique(t *testing.T) {
	d := &countingDispatcher{}
	a := NewStream(d, 0, quietLogger())
	b := NewStream(d, 0, quietLogger())

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ignored", OutcomeIgnored.String())
	assert.Equal(t, "cooling_down", OutcomeCoolingDown.String())
	assert.Equal(t, "dispatched", OutcomeDispatched.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
