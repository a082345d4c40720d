// Package inputtest provides a recording input.Injector for tests.
package inputtest

import (
	"fmt"
	"sync"
	"time"

	"trackpad/internal/input"
)

// CallKind names the capability primitive that was invoked.
type CallKind string

const (
	CallKeyCombo CallKind = "key_combo"
	CallScroll   CallKind = "scroll"
	CallScript   CallKind = "script"
)

// Call is one recorded capability invocation.
type Call struct {
	Kind      CallKind
	Mods      input.Modifier
	Key       input.Key
	Axis      input.Axis
	Direction int
	Script    string
}

func (c Call) String() string {
	switch c.Kind {
	case CallKeyCombo:
		return fmt.Sprintf("key_combo(%s, %s)", c.Mods, c.Key)
	case CallScroll:
		return fmt.Sprintf("scroll(%s, %+d)", c.Axis, c.Direction)
	default:
		return fmt.Sprintf("script(%q)", c.Script)
	}
}

// KeyCombo builds the expected Call for a key combination.
func KeyCombo(mods input.Modifier, key input.Key) Call {
	return Call{Kind: CallKeyCombo, Mods: mods, Key: key}
}

// Scroll builds the expected Call for a scroll notch.
func Scroll(axis input.Axis, direction int) Call {
	return Call{Kind: CallScroll, Axis: axis, Direction: direction}
}

// Script builds the expected Call for a platform script.
func Script(script string) Call {
	return Call{Kind: CallScript, Script: script}
}

// Recorder records every call and can be told to fail.
type Recorder struct {
	platform input.Platform

	mu    sync.Mutex
	calls []Call
	err   error
	ch    chan Call
}

// NewRecorder returns a recorder reporting the given platform.
func NewRecorder(p input.Platform) *Recorder {
	return &Recorder{
		platform: p,
		ch:       make(chan Call, 256),
	}
}

// FailWith makes every subsequent call record itself and return err.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) Platform() input.Platform {
	return r.platform
}

func (r *Recorder) InjectKeyCombo(mods input.Modifier, key input.Key) error {
	return r.record(KeyCombo(mods, key))
}

func (r *Recorder) InjectScroll(axis input.Axis, direction int) error {
	return r.record(Scroll(axis, direction))
}

func (r *Recorder) InvokePlatformScript(script string) error {
	return r.record(Script(script))
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	err := r.err
	r.mu.Unlock()

	select {
	case r.ch <- c:
	default:
	}
	return err
}

// Calls returns a copy of every call so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Len returns the number of calls so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Next waits up to timeout for the next call.
func (r *Recorder) Next(timeout time.Duration) (Call, bool) {
	select {
	case c := <-r.ch:
		return c, true
	case <-time.After(timeout):
		return Call{}, false
	}
}
