package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/componentbridge/internal/codec"
	"github.com/GriffinCanCode/componentbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/componentbridge/internal/shared/clock"
	"github.com/GriffinCanCode/componentbridge/internal/shared/id"
	"github.com/GriffinCanCode/componentbridge/internal/theme"
	"github.com/GriffinCanCode/componentbridge/internal/transport"
	"github.com/GriffinCanCode/componentbridge/internal/types"
)

// Defaults
const (
	DefaultSaveDelay     = 250 * time.Millisecond
	DefaultPendingMaxAge = 10 * time.Minute
	DefaultEventBuffer   = 64
)

// State is the bridge lifecycle state
type State int

const (
	StateCreated State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config configures a Bridge
type Config struct {
	// InitialPermissions are requested automatically on handshake.
	InitialPermissions []types.Permission
	// OnReady is invoked once, after the handshake has flushed the queue.
	OnReady func()

	CoalescedSaving bool
	SaveDelay       time.Duration
	AcceptsThemes   bool
	// PendingMaxAge bounds how long an unanswered call is remembered.
	// Zero keeps calls until answered.
	PendingMaxAge time.Duration
	LogMessages   bool
	EventBuffer   int

	// Capabilities. Nil values get real implementations.
	Clock       clock.Clock
	IDs         id.Source
	StyleSheets theme.StyleSheets
	Alerter     Alerter
	Logger      *zap.Logger
	Metrics     *monitoring.Metrics
}

// DefaultConfig returns the protocol defaults
func DefaultConfig() Config {
	return Config{
		CoalescedSaving: true,
		SaveDelay:       DefaultSaveDelay,
		AcceptsThemes:   true,
		PendingMaxAge:   DefaultPendingMaxAge,
		EventBuffer:     DefaultEventBuffer,
	}
}

type queuedCall struct {
	action   string
	data     any
	callback ReplyFunc
}

// Bridge is the protocol engine for one component
type Bridge struct {
	id      id.BridgeID
	cfg     Config
	parent  transport.Parent
	adapter *transport.Adapter
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu            sync.Mutex
	state         State
	session       *types.Session
	componentData map[string]any
	queue         []queuedCall
	pending       *correlationTable
	saveTimer     clock.Timer
	saveGen       uint64
	cancelRun     context.CancelFunc
}

// New creates a bridge that posts to parent
func New(parent transport.Parent, cfg Config) *Bridge {
	if cfg.SaveDelay <= 0 {
		cfg.SaveDelay = DefaultSaveDelay
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultEventBuffer
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.IDs == nil {
		cfg.IDs = id.UUID()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	bridgeID := id.NewBridgeID()
	logger := cfg.Logger.Named("bridge").With(zap.String("bridge_id", bridgeID.String()))
	if cfg.Alerter == nil {
		cfg.Alerter = logAlerter{logger: logger}
	}

	b := &Bridge{
		id:            bridgeID,
		cfg:           cfg,
		parent:        parent,
		logger:        logger,
		metrics:       cfg.Metrics,
		state:         StateCreated,
		componentData: make(map[string]any),
		pending:       newCorrelationTable(cfg.PendingMaxAge),
	}
	b.adapter = transport.NewAdapter(b, transport.AdapterConfig{
		Buffer:      cfg.EventBuffer,
		LogMessages: cfg.LogMessages,
		Logger:      logger,
		Metrics:     cfg.Metrics,
	})
	return b
}

// ID returns the bridge instance id
func (b *Bridge) ID() id.BridgeID { return b.id }

// State returns the lifecycle state
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Ready reports whether the handshake has completed
func (b *Bridge) Ready() bool {
	return b.State() == StateActive
}

// Run dispatches inbound events from sources until ctx is cancelled, a
// source fails, or the bridge is closed.
func (b *Bridge) Run(ctx context.Context, sources ...transport.EventSource) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b.mu.Lock()
	if b.state == StateClosed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.cancelRun = cancel
	b.mu.Unlock()

	b.logger.Info("Bridge running", zap.Int("sources", len(sources)))
	err := b.adapter.Run(ctx, sources...)
	if b.State() == StateClosed && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Receive handles one inbound event on the caller's goroutine. It is
// intended for hosts that drive the bridge without Run.
func (b *Bridge) Receive(in transport.Inbound) {
	b.adapter.Receive(in)
}

// Close cancels the pending save, discards queued and pending calls and
// stops Run. Later calls return ErrClosed.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.state == StateClosed {
		b.mu.Unlock()
		return nil
	}
	b.state = StateClosed
	b.cancelSaveLocked()
	dropped := len(b.queue) + b.pending.len()
	b.queue = nil
	b.pending.clear()
	cancel := b.cancelRun
	b.reportSizesLocked()
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	b.logger.Info("Bridge closed", zap.Int("discarded_calls", dropped))
	return nil
}

// Dispatch handles one decoded inbound message. It implements
// transport.Dispatcher.
func (b *Bridge) Dispatch(msg *codec.Message, text bool) {
	switch {
	case msg.Action == codec.ActionComponentRegistered:
		b.register(msg)
	case msg.Action == codec.ActionThemes:
		if b.cfg.AcceptsThemes {
			b.applyThemes(msg.Data)
		}
	case msg.IsReply():
		b.resolve(msg)
	default:
		b.logger.Debug("Ignoring inbound message", zap.String("action", msg.Action))
	}
}

// Call sends action with data. Before the handshake the call is queued.
// callback may be nil.
func (b *Bridge) Call(action string, data any, callback ReplyFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return ErrClosed
	}
	return b.callLocked(action, data, callback)
}

func (b *Bridge) callLocked(action string, data any, callback ReplyFunc) error {
	if b.session == nil {
		b.queue = append(b.queue, queuedCall{action: action, data: data, callback: callback})
		b.logger.Debug("Queued call until handshake",
			zap.String("action", action),
			zap.Int("queued", len(b.queue)),
		)
		b.reportSizesLocked()
		return nil
	}
	return b.sendLocked(action, data, callback)
}

// sendLocked stamps a fresh message id and the session key, records the
// pending call and posts the envelope to the locked origin.
func (b *Bridge) sendLocked(action string, data any, callback ReplyFunc) error {
	now := b.cfg.Clock.Now()
	if evicted := b.pending.evict(now); evicted > 0 {
		b.logger.Warn("Evicted unanswered calls", zap.Int("count", evicted))
		b.metrics.AddEvicted(evicted)
	}

	msgID := b.cfg.IDs.Next()
	if err := b.pending.add(msgID, pendingCall{action: action, callback: callback, sentAt: now}); err != nil {
		return fmt.Errorf("send %s: %w", action, err)
	}

	env := &codec.Envelope{
		Action:     action,
		Data:       data,
		MessageID:  msgID.String(),
		SessionKey: b.session.Key,
		API:        codec.API,
	}

	text := b.adapter.TextMode()
	wire, err := codec.Encode(env, text)
	if err != nil {
		b.pending.remove(msgID)
		return err
	}

	if b.cfg.LogMessages {
		b.logger.Debug("Posting message", zap.Any("envelope", env), zap.Bool("text", text))
	}

	if err := b.parent.PostMessage(wire, b.adapter.Origin()); err != nil {
		b.pending.remove(msgID)
		b.metrics.IncPostErrors()
		b.reportSizesLocked()
		return fmt.Errorf("post %s: %w", action, err)
	}

	b.metrics.RecordOutbound(channel(text), action)
	b.reportSizesLocked()
	return nil
}

// resolve hands a reply to the callback registered for its message id.
func (b *Bridge) resolve(msg *codec.Message) {
	msgID := id.MessageID(msg.Original.MessageID)

	b.mu.Lock()
	if b.state == StateClosed {
		b.mu.Unlock()
		return
	}
	call, ok := b.pending.take(msgID)
	b.reportSizesLocked()
	b.mu.Unlock()

	if !ok {
		b.metrics.IncLostReplies()
		b.cfg.Alerter.Alert(fmt.Errorf("%w: %s", ErrLostCorrelation, msgID))
		return
	}

	b.logger.Debug("Reply resolved", zap.String("action", call.action), zap.String("message_id", msgID.String()))
	if call.callback != nil {
		call.callback(msg.Data)
	}
}

func (b *Bridge) reportSizesLocked() {
	b.metrics.SetQueued(len(b.queue))
	b.metrics.SetPending(b.pending.len())
}

func channel(text bool) string {
	if text {
		return "text"
	}
	return "structured"
}
