package actions

import (
	"fmt"
	"log/slog"

	"trackpad/internal/input"
	"trackpad/internal/protocol"
)

// Dispatcher turns gesture tokens into capability calls for one platform.
// It holds no mutable state and is safe for concurrent use by all sessions.
type Dispatcher struct {
	injector input.Injector
	platform input.Platform
	logger   *slog.Logger
}

// NewDispatcher binds the dispatcher to inj; the platform is read once here.
func NewDispatcher(inj input.Injector, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		injector: inj,
		platform: inj.Platform(),
		logger:   logger.With("component", "dispatcher"),
	}
}

// Platform returns the platform actions are looked up for.
func (d *Dispatcher) Platform() input.Platform {
	return d.platform
}

// Dispatch issues the action mapped to tok and returns it. Capability
// failures are logged only; there is no channel back to the client.
func (d *Dispatcher) Dispatch(tok protocol.Token) Action {
	action := Lookup(tok, d.platform)
	if action.Kind == KindNone {
		return action
	}

	if err := d.invoke(action); err != nil {
		d.logger.Warn("action_failed",
			"gesture", tok.String(),
			"action", action.String(),
			"error", err,
		)
		return action
	}

	d.logger.Debug("action_dispatched",
		"gesture", tok.String(),
		"action", action.String(),
	)
	return action
}

func (d *Dispatcher) invoke(a Action) error {
	switch a.Kind {
	case KindKeyCombo:
		return d.injector.InjectKeyCombo(a.Mods, a.Key)
	case KindScroll:
		return d.injector.InjectScroll(a.Axis, a.Direction)
	case KindScript:
		return d.injector.InvokePlatformScript(a.Script)
	default:
		return fmt.Errorf("unknown action kind %d", a.Kind)
	}
}
