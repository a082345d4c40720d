package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTokenVocabulary(t *testing.T) {
	tests := []struct {
		raw  string
		want Token
	}{
		{"➡️ Cambio escritorio", TokenSwipeRight},
		{"⬅️ Cambio escritorio", TokenSwipeLeft},
		{"➡️ Scroll H", TokenScrollRight},
		{"⬅️ Scroll H", TokenScrollLeft},
		{"⬇️ Scroll V", TokenScrollDown},
		{"⬆️ Scroll V", TokenScrollUp},
		{"🔍 Zoom+", TokenZoomIn},
		{"🔎 Zoom-", TokenZoomOut},
		{"🖐️🔍 Pinch+ de 5", TokenPinchOut},
		{"🖐️🔎 Pinch- de 5", TokenPinchIn},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeToken([]byte(tt.raw)))
			assert.Equal(t, tt.raw, tt.want.Literal())
		})
	}
}

func TestDecodeTokenTrimsSurroundingWhitespace(t *testing.T) {
	assert.Equal(t, TokenZoomIn, DecodeToken([]byte("🔍 Zoom+\n")))
	assert.Equal(t, TokenZoomIn, DecodeToken([]byte("🔍 Zoom+\r\n")))
	assert.Equal(t, TokenZoomOut, DecodeToken([]byte("  \t🔎 Zoom-  \n")))
}

func TestDecodeTokenUnknown(t *testing.T) {
	inputs := []string{
		"",
		"\n",
		"garbage",
		"Zoom+",
		"🔍 zoom+",
		"🔍  Zoom+",
		"➡ Cambio escritorio", // missing variation selector
		"🔍 Zoom+🔍 Zoom+",
		"🔍 Zoom+\n🔎 Zoom-\n",
		string([]byte{0xff, 0xfe, 0xfd}),
	}

	for _, in := range inputs {
		assert.Equal(t, TokenUnknown, DecodeToken([]byte(in)), "input %q", in)
	}
}

func TestTokensAreDistinctAndRoundTrip(t *testing.T) {
	toks := Tokens()
	require.Len(t, toks, int(TokenCount)-1)

	seen := make(map[string]Token)
	for _, tok := range toks {
		require.True(t, tok.Valid())
		lit := tok.Literal()
		require.NotEmpty(t, lit, "token %s has no literal", tok)
		_, dup := seen[lit]
		require.False(t, dup, "literal %q reused", lit)
		seen[lit] = tok

		assert.Equal(t, tok, DecodeToken(EncodeToken(tok)))
		assert.Equal(t, tok, ParseToken(lit))
	}
}

func TestUnknownTokenHasNoWireForm(t *testing.T) {
	assert.False(t, TokenUnknown.Valid())
	assert.Empty(t, TokenUnknown.Literal())
	assert.Nil(t, EncodeToken(TokenUnknown))
	assert.Equal(t, "unknown", TokenUnknown.String())
	assert.Equal(t, "unknown", Token(200).String())
	assert.Empty(t, Token(200).Literal())
}

func TestTokenByName(t *testing.T) {
	for _, tok := range Tokens() {
		got, ok := TokenByName(tok.String())
		require.True(t, ok, tok.String())
		assert.Equal(t, tok, got)
	}

	got, ok := TokenByName("Zoom-In")
	assert.True(t, ok)
	assert.Equal(t, TokenZoomIn, got)

	_, ok = TokenByName("unknown")
	assert.False(t, ok)
	_, ok = TokenByName("wave")
	assert.False(t, ok)
}
