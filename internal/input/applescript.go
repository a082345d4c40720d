package input

import (
	"fmt"
	"strconv"
	"strings"
)

// macOS virtual key codes (kVK_*) used by the AppleScript backend.
const (
	MacKeyTab        = 48
	MacKeyEscape     = 53
	MacKeyF11        = 103
	MacKeyLeftArrow  = 123
	MacKeyRightArrow = 124
	MacKeyDownArrow  = 125
	MacKeyUpArrow    = 126
)

var macKeyCodes = map[Key]int{
	KeyLeft:   MacKeyLeftArrow,
	KeyRight:  MacKeyRightArrow,
	KeyUp:     MacKeyUpArrow,
	KeyDown:   MacKeyDownArrow,
	KeyTab:    MacKeyTab,
	KeyEscape: MacKeyEscape,
}

// Keys that System Events types as characters rather than key codes.
var macKeystrokes = map[Key]string{
	KeyPlus:  "+",
	KeyMinus: "-",
}

const systemEvents = `tell application "System Events" to `

// AppleScriptKeyCode returns a script pressing the raw key code with mods held.
func AppleScriptKeyCode(code int, mods Modifier) string {
	return systemEvents + "key code " + strconv.Itoa(code) + usingClause(mods)
}

// AppleScriptKeystroke returns a script typing ch with mods held.
func AppleScriptKeystroke(ch string, mods Modifier) string {
	return systemEvents + "keystroke " + strconv.Quote(ch) + usingClause(mods)
}

func usingClause(mods Modifier) string {
	if mods == 0 {
		return ""
	}
	var held []string
	if mods.Has(ModCommand) || mods.Has(ModWin) {
		held = append(held, "command down")
	}
	if mods.Has(ModControl) {
		held = append(held, "control down")
	}
	if mods.Has(ModAlt) {
		held = append(held, "option down")
	}
	if mods.Has(ModShift) {
		held = append(held, "shift down")
	}
	return " using {" + strings.Join(held, ", ") + "}"
}

// keyComboScript translates a portable key combination into AppleScript.
func keyComboScript(mods Modifier, key Key) (string, error) {
	if code, ok := macKeyCodes[key]; ok {
		return AppleScriptKeyCode(code, mods), nil
	}
	if ch, ok := macKeystrokes[key]; ok {
		return AppleScriptKeystroke(ch, mods), nil
	}
	return "", fmt.Errorf("no macOS mapping for key %s", key)
}

// scrollScript emulates one scroll notch with the matching arrow key.
func scrollScript(axis Axis, direction int) (string, error) {
	if direction != 1 && direction != -1 {
		return "", ErrInvalidDirection
	}
	var code int
	switch {
	case axis == AxisHorizontal && direction > 0:
		code = MacKeyRightArrow
	case axis == AxisHorizontal:
		code = MacKeyLeftArrow
	case direction > 0:
		code = MacKeyUpArrow
	default:
		code = MacKeyDownArrow
	}
	return AppleScriptKeyCode(code, 0), nil
}
