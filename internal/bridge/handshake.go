package bridge

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/componentbridge/internal/codec"
	"github.com/GriffinCanCode/componentbridge/internal/types"
)

// register captures the session from a component-registered message.
// Only the first registration requests permissions, drains the queue and
// fires OnReady; later ones just overwrite the session fields. A
// registration without a session key is ignored, so calls keep queuing.
func (b *Bridge) register(msg *codec.Message) {
	if msg.SessionKey == "" {
		b.logger.Warn("Registration without session key ignored")
		return
	}
	env, _ := msg.Object()["environment"].(string)
	selfUUID, _ := msg.Object()["uuid"].(string)

	data := make(map[string]any, len(msg.ComponentData))
	for k, v := range msg.ComponentData {
		data[k] = v
	}

	b.mu.Lock()
	if b.state == StateClosed {
		b.mu.Unlock()
		return
	}

	first := b.session == nil
	b.session = &types.Session{
		Key:           msg.SessionKey,
		ComponentData: data,
		Environment:   types.ParseEnvironment(env),
		SelfUUID:      selfUUID,
	}
	b.componentData = data

	if !first {
		b.mu.Unlock()
		b.logger.Debug("Component registered again, session fields replaced")
		return
	}

	b.state = StateActive
	if len(b.cfg.InitialPermissions) > 0 {
		perms := b.cfg.InitialPermissions
		if err := b.sendLocked(codec.ActionRequestPermissions, permissionsData(perms), nil); err != nil {
			b.logger.Warn("Initial permission request failed", zap.Error(err))
		}
	}

	queued := b.queue
	b.queue = nil
	for _, call := range queued {
		if err := b.sendLocked(call.action, call.data, call.callback); err != nil {
			b.logger.Warn("Queued call failed", zap.String("action", call.action), zap.Error(err))
		}
	}
	b.reportSizesLocked()
	onReady := b.cfg.OnReady
	b.mu.Unlock()

	b.metrics.IncSessionsReady()
	b.logger.Info("Component registered",
		zap.String("environment", b.Environment().String()),
		zap.String("self_uuid", selfUUID),
		zap.Int("flushed", len(queued)),
	)

	if onReady != nil {
		onReady()
	}
}

// SelfUUID returns the component's own identifier, or "" before the
// handshake.
func (b *Bridge) SelfUUID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return ""
	}
	return b.session.SelfUUID
}

// Environment returns the host environment. It is EnvironmentWeb before
// the handshake.
func (b *Bridge) Environment() types.Environment {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return types.EnvironmentWeb
	}
	return b.session.Environment
}

// IsRunningInDesktopApplication reports whether the host is the desktop app
func (b *Bridge) IsRunningInDesktopApplication() bool {
	return b.Environment() == types.EnvironmentDesktop
}

// SessionKey returns the key issued at handshake, or "".
func (b *Bridge) SessionKey() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return ""
	}
	return b.session.Key
}
