//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Windows implementation of input injection using SendInput

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	INPUT_MOUSE    = 0
	INPUT_KEYBOARD = 1

	KEYEVENTF_EXTENDEDKEY = 0x0001
	KEYEVENTF_KEYUP       = 0x0002

	MOUSEEVENTF_WHEEL  = 0x0800
	MOUSEEVENTF_HWHEEL = 0x1000

	WHEEL_DELTA = 120
)

// Virtual-key codes
const (
	VK_TAB       = 0x09
	VK_SHIFT     = 0x10
	VK_CONTROL   = 0x11
	VK_MENU      = 0x12
	VK_ESCAPE    = 0x1B
	VK_LEFT      = 0x25
	VK_UP        = 0x26
	VK_RIGHT     = 0x27
	VK_DOWN      = 0x28
	VK_LWIN      = 0x5B
	VK_OEM_PLUS  = 0xBB
	VK_OEM_MINUS = 0xBD
)

type MOUSEINPUT struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type KEYBDINPUT struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// mouseINPUT and keybdINPUT both match sizeof(INPUT): the union is sized by MOUSEINPUT.
type mouseINPUT struct {
	Type uint32
	Mi   MOUSEINPUT
}

type keybdINPUT struct {
	Type uint32
	Ki   KEYBDINPUT
	_    [8]byte
}

var virtualKeys = map[Key]uint16{
	KeyLeft:   VK_LEFT,
	KeyRight:  VK_RIGHT,
	KeyUp:     VK_UP,
	KeyDown:   VK_DOWN,
	KeyPlus:   VK_OEM_PLUS,
	KeyMinus:  VK_OEM_MINUS,
	KeyTab:    VK_TAB,
	KeyEscape: VK_ESCAPE,
}

// Modifiers are pressed in this order and released in reverse.
var modifierKeys = []struct {
	mod Modifier
	vk  uint16
}{
	{ModWin, VK_LWIN},
	{ModCommand, VK_LWIN},
	{ModControl, VK_CONTROL},
	{ModAlt, VK_MENU},
	{ModShift, VK_SHIFT},
}

func isExtended(vk uint16) bool {
	switch vk {
	case VK_LEFT, VK_UP, VK_RIGHT, VK_DOWN, VK_LWIN:
		return true
	}
	return false
}

func keyEvent(vk uint16, up bool) keybdINPUT {
	var flags uint32
	if isExtended(vk) {
		flags |= KEYEVENTF_EXTENDEDKEY
	}
	if up {
		flags |= KEYEVENTF_KEYUP
	}
	return keybdINPUT{Type: INPUT_KEYBOARD, Ki: KEYBDINPUT{WVk: vk, DwFlags: flags}}
}

// platformInjector represents a Windows input injector
type platformInjector struct{}

// NewInjector creates a new input injector for Windows
func NewInjector() Injector {
	return &platformInjector{}
}

// Platform reports PlatformWindows
func (i *platformInjector) Platform() Platform {
	return PlatformWindows
}

// InjectKeyCombo sends the whole press/release sequence in one SendInput call
func (i *platformInjector) InjectKeyCombo(mods Modifier, key Key) error {
	vk, ok := virtualKeys[key]
	if !ok {
		return fmt.Errorf("no virtual-key mapping for key %s", key)
	}

	var held []uint16
	for _, m := range modifierKeys {
		if mods.Has(m.mod) && !containsVK(held, m.vk) {
			held = append(held, m.vk)
		}
	}

	events := make([]keybdINPUT, 0, 2*len(held)+2)
	for _, mvk := range held {
		events = append(events, keyEvent(mvk, false))
	}
	events = append(events, keyEvent(vk, false), keyEvent(vk, true))
	for j := len(held) - 1; j >= 0; j-- {
		events = append(events, keyEvent(held[j], true))
	}

	return sendInput(unsafe.Pointer(&events[0]), len(events), unsafe.Sizeof(events[0]))
}

// InjectScroll sends one wheel notch on the given axis
func (i *platformInjector) InjectScroll(axis Axis, direction int) error {
	if direction != 1 && direction != -1 {
		return ErrInvalidDirection
	}

	flags := uint32(MOUSEEVENTF_WHEEL)
	if axis == AxisHorizontal {
		flags = MOUSEEVENTF_HWHEEL
	}
	delta := int32(direction * WHEEL_DELTA)

	event := mouseINPUT{
		Type: INPUT_MOUSE,
		Mi: MOUSEINPUT{
			MouseData: uint32(delta),
			DwFlags:   flags,
		},
	}
	return sendInput(unsafe.Pointer(&event), 1, unsafe.Sizeof(event))
}

// InvokePlatformScript is not used on Windows
func (i *platformInjector) InvokePlatformScript(script string) error {
	return ErrUnsupportedPlatform
}

func sendInput(events unsafe.Pointer, n int, size uintptr) error {
	sent, _, err := procSendInput.Call(uintptr(n), uintptr(events), size)
	if int(sent) != n {
		return fmt.Errorf("%w: SendInput inserted %d of %d events: %v", ErrInjectionFailed, sent, n, err)
	}
	return nil
}

func containsVK(vks []uint16, vk uint16) bool {
	for _, v := range vks {
		if v == vk {
			return true
		}
	}
	return false
}
