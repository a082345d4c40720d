// Package protocol defines the wire formats exchanged with trackpad clients:
// gesture tokens on the TCP stream and discovery announcements over UDP.
package protocol

import (
	"bytes"
	"strings"
)

// Token is one discrete gesture sent by a client over the gesture stream.
// It carries no payload beyond its identity.
type Token uint8

// Gesture tokens. TokenUnknown is the zero value and is never dispatched.
const (
	TokenUnknown Token = iota
	TokenSwipeRight
	TokenSwipeLeft
	TokenScrollRight
	TokenScrollLeft
	TokenScrollDown
	TokenScrollUp
	TokenZoomIn
	TokenZoomOut
	TokenPinchOut
	TokenPinchIn

	// TokenCount is the size of the token space, TokenUnknown included.
	TokenCount
)

// Wire literals, matched byte for byte after trimming surrounding whitespace.
//
//	SwipeRight  "➡️ Cambio escritorio"
//	SwipeLeft   "⬅️ Cambio escritorio"
//	ScrollRight "➡️ Scroll H"
//	ScrollLeft  "⬅️ Scroll H"
//	ScrollDown  "⬇️ Scroll V"
//	ScrollUp    "⬆️ Scroll V"
//	ZoomIn      "🔍 Zoom+"
//	ZoomOut     "🔎 Zoom-"
//	PinchOut    "🖐️🔍 Pinch+ de 5"
//	PinchIn     "🖐️🔎 Pinch- de 5"
var literals = [TokenCount]string{
	TokenSwipeRight:  "\u27a1\ufe0f Cambio escritorio",
	TokenSwipeLeft:   "\u2b05\ufe0f Cambio escritorio",
	TokenScrollRight: "\u27a1\ufe0f Scroll H",
	TokenScrollLeft:  "\u2b05\ufe0f Scroll H",
	TokenScrollDown:  "\u2b07\ufe0f Scroll V",
	TokenScrollUp:    "\u2b06\ufe0f Scroll V",
	TokenZoomIn:      "\U0001f50d Zoom+",
	TokenZoomOut:     "\U0001f50e Zoom-",
	TokenPinchOut:    "\U0001f590\ufe0f\U0001f50d Pinch+ de 5",
	TokenPinchIn:     "\U0001f590\ufe0f\U0001f50e Pinch- de 5",
}

var names = [TokenCount]string{
	TokenUnknown:     "unknown",
	TokenSwipeRight:  "swipe_right",
	TokenSwipeLeft:   "swipe_left",
	TokenScrollRight: "scroll_right",
	TokenScrollLeft:  "scroll_left",
	TokenScrollDown:  "scroll_down",
	TokenScrollUp:    "scroll_up",
	TokenZoomIn:      "zoom_in",
	TokenZoomOut:     "zoom_out",
	TokenPinchOut:    "pinch_out",
	TokenPinchIn:     "pinch_in",
}

var byLiteral = func() map[string]Token {
	m := make(map[string]Token, TokenCount)
	for tok := TokenUnknown + 1; tok < TokenCount; tok++ {
		m[literals[tok]] = tok
	}
	return m
}()

// DecodeToken trims raw and matches it against the gesture vocabulary.
// Anything that is not an exact, case-sensitive match yields TokenUnknown.
func DecodeToken(raw []byte) Token {
	msg := bytes.TrimSpace(raw)
	if len(msg) == 0 {
		return TokenUnknown
	}
	if tok, ok := byLiteral[string(msg)]; ok {
		return tok
	}
	return TokenUnknown
}

// ParseToken is DecodeToken for strings.
func ParseToken(s string) Token {
	return DecodeToken([]byte(s))
}

// Literal returns the wire form of the token, or "" for TokenUnknown.
func (t Token) Literal() string {
	if t >= TokenCount {
		return ""
	}
	return literals[t]
}

// EncodeToken returns the newline-terminated wire form a client writes
// for a single gesture.
func EncodeToken(t Token) []byte {
	lit := t.Literal()
	if lit == "" {
		return nil
	}
	return []byte(lit + "\n")
}

func (t Token) String() string {
	if t >= TokenCount {
		return names[TokenUnknown]
	}
	return names[t]
}

// Valid reports whether t is one of the gesture tokens.
func (t Token) Valid() bool {
	return t > TokenUnknown && t < TokenCount
}

// Tokens returns every gesture token in declaration order.
func Tokens() []Token {
	out := make([]Token, 0, TokenCount-1)
	for tok := TokenUnknown + 1; tok < TokenCount; tok++ {
		out = append(out, tok)
	}
	return out
}

// TokenByName resolves a gesture by its String form ("zoom_in"). Dashes are
// accepted in place of underscores.
func TokenByName(name string) (Token, bool) {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")
	for tok := TokenUnknown + 1; tok < TokenCount; tok++ {
		if names[tok] == name {
			return tok, true
		}
	}
	return TokenUnknown, false
}
