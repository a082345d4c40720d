// Package actions maps gesture tokens onto platform input actions.
package actions

import (
	"fmt"

	"trackpad/internal/input"
	"trackpad/internal/protocol"
)

// Kind selects which capability primitive an Action uses.
type Kind uint8

const (
	KindNone Kind = iota
	KindKeyCombo
	KindScroll
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindKeyCombo:
		return "key_combo"
	case KindScroll:
		return "scroll"
	case KindScript:
		return "script"
	default:
		return "none"
	}
}

// Action is one primitive input action. Only the fields of its Kind are set.
type Action struct {
	Kind      Kind
	Mods      input.Modifier
	Key       input.Key
	Axis      input.Axis
	Direction int
	Script    string
}

func (a Action) String() string {
	switch a.Kind {
	case KindKeyCombo:
		if a.Mods == 0 {
			return fmt.Sprintf("key(%s)", a.Key)
		}
		return fmt.Sprintf("key(%s+%s)", a.Mods, a.Key)
	case KindScroll:
		return fmt.Sprintf("scroll(%s, %+d)", a.Axis, a.Direction)
	case KindScript:
		return fmt.Sprintf("script(%q)", a.Script)
	default:
		return "none"
	}
}

var noop = Action{Kind: KindNone}

func keyCombo(mods input.Modifier, key input.Key) Action {
	return Action{Kind: KindKeyCombo, Mods: mods, Key: key}
}

func scroll(axis input.Axis, direction int) Action {
	return Action{Kind: KindScroll, Axis: axis, Direction: direction}
}

func keyCodeScript(code int, mods input.Modifier) Action {
	return Action{Kind: KindScript, Script: input.AppleScriptKeyCode(code, mods)}
}

func keystrokeScript(ch string, mods input.Modifier) Action {
	return Action{Kind: KindScript, Script: input.AppleScriptKeystroke(ch, mods)}
}

// macOS key codes without a portable Key.
const (
	macKeyPinchOut = input.MacKeyF11
	macKeyPinchIn  = 130
)

// table holds one cell per (token, platform). On Windows desktop switching is
// inverted like a physical trackpad: a swipe right goes to the previous
// desktop (Left arrow). The macOS cells send the arrow matching the swipe.
var table = [protocol.TokenCount][input.PlatformCount]Action{
	protocol.TokenUnknown: {
		input.PlatformOther:   noop,
		input.PlatformWindows: noop,
		input.PlatformMacOS:   noop,
	},
	protocol.TokenSwipeRight: {
		input.PlatformOther:   noop,
		input.PlatformWindows: keyCombo(input.ModWin|input.ModControl, input.KeyLeft),
		input.PlatformMacOS:   keyCodeScript(input.MacKeyRightArrow, input.ModControl),
	},
	protocol.TokenSwipeLeft: {
		input.PlatformOther:   noop,
		input.PlatformWindows: keyCombo(input.ModWin|input.ModControl, input.KeyRight),
		input.PlatformMacOS:   keyCodeScript(input.MacKeyLeftArrow, input.ModControl),
	},
	protocol.TokenScrollRight: {
		input.PlatformOther:   noop,
		input.PlatformWindows: scroll(input.AxisHorizontal, +1),
		input.PlatformMacOS:   keyCodeScript(input.MacKeyRightArrow, 0),
	},
	protocol.TokenScrollLeft: {
		input.PlatformOther:   noop,
		input.PlatformWindows: scroll(input.AxisHorizontal, -1),
		input.PlatformMacOS:   keyCodeScript(input.MacKeyLeftArrow, 0),
	},
	protocol.TokenScrollDown: {
		input.PlatformOther:   noop,
		input.PlatformWindows: scroll(input.AxisVertical, -1),
		input.PlatformMacOS:   keyCodeScript(input.MacKeyDownArrow, 0),
	},
	protocol.TokenScrollUp: {
		input.PlatformOther:   noop,
		input.PlatformWindows: scroll(input.AxisVertical, +1),
		input.PlatformMacOS:   keyCodeScript(input.MacKeyUpArrow, 0),
	},
	protocol.TokenZoomIn: {
		input.PlatformOther:   noop,
		input.PlatformWindows: keyCombo(input.ModControl, input.KeyPlus),
		input.PlatformMacOS:   keystrokeScript("+", input.ModCommand),
	},
	protocol.TokenZoomOut: {
		input.PlatformOther:   noop,
		input.PlatformWindows: keyCombo(input.ModControl, input.KeyMinus),
		input.PlatformMacOS:   keystrokeScript("-", input.ModCommand),
	},
	protocol.TokenPinchOut: {
		input.PlatformOther:   noop,
		input.PlatformWindows: keyCombo(input.ModWin, input.KeyTab),
		input.PlatformMacOS:   keyCodeScript(macKeyPinchOut, 0),
	},
	protocol.TokenPinchIn: {
		input.PlatformOther:   noop,
		input.PlatformWindows: keyCombo(0, input.KeyEscape),
		input.PlatformMacOS:   keyCodeScript(macKeyPinchIn, 0),
	},
}

// Lookup returns the action for tok on platform p. Out-of-range values map
// to a no-op, so a lookup never fails.
func Lookup(tok protocol.Token, p input.Platform) Action {
	if tok >= protocol.TokenCount || p >= input.PlatformCount {
		return noop
	}
	return table[tok][p]
}
