// Package input provides the platform capability used to inject keyboard,
// scroll and automation actions into the local desktop session.
package input

import (
	"runtime"
	"strings"
)

// Platform identifies which injection mechanism is available.
type Platform uint8

const (
	PlatformOther Platform = iota
	PlatformWindows
	PlatformMacOS

	// PlatformCount is the number of platforms, PlatformOther included.
	PlatformCount
)

func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "windows"
	case PlatformMacOS:
		return "macos"
	default:
		return "other"
	}
}

// CurrentPlatform maps the running OS onto a Platform.
func CurrentPlatform() Platform {
	return platformFor(runtime.GOOS)
}

func platformFor(goos string) Platform {
	switch goos {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformMacOS
	default:
		return PlatformOther
	}
}

// Modifier is a bitmask of modifier keys held during a key combination.
type Modifier uint16

const (
	ModControl Modifier = 1 << iota
	ModShift
	ModAlt
	ModWin     // Windows logo key
	ModCommand // macOS command key
)

// Has reports whether all bits of m2 are set in m.
func (m Modifier) Has(m2 Modifier) bool {
	return m&m2 == m2
}

func (m Modifier) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, mod := range []struct {
		bit  Modifier
		name string
	}{
		{ModWin, "win"},
		{ModCommand, "cmd"},
		{ModControl, "ctrl"},
		{ModAlt, "alt"},
		{ModShift, "shift"},
	} {
		if m.Has(mod.bit) {
			parts = append(parts, mod.name)
		}
	}
	return strings.Join(parts, "+")
}

// Key is a platform-neutral key identifier.
type Key uint8

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyPlus
	KeyMinus
	KeyTab
	KeyEscape
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyPlus:
		return "+"
	case KeyMinus:
		return "-"
	case KeyTab:
		return "tab"
	case KeyEscape:
		return "escape"
	default:
		return "none"
	}
}

// Axis is the scroll direction axis.
type Axis uint8

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

func (a Axis) String() string {
	if a == AxisHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// Injector is the capability through which gestures reach the OS.
// Calls are fire-and-forget: a nil error means the action was issued.
type Injector interface {
	Platform() Platform
	// InjectKeyCombo presses mods, taps key, then releases everything.
	InjectKeyCombo(mods Modifier, key Key) error
	// InjectScroll scrolls one wheel notch; direction is +1 or -1.
	InjectScroll(axis Axis, direction int) error
	// InvokePlatformScript runs a one-line automation script (AppleScript on macOS).
	InvokePlatformScript(script string) error
}
