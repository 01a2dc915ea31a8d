package transport

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/componentbridge/internal/codec"
	"github.com/GriffinCanCode/componentbridge/internal/infrastructure/monitoring"
)

// Dispatcher consumes decoded inbound messages.
type Dispatcher interface {
	Dispatch(msg *codec.Message, text bool)
}

// AdapterConfig configures an Adapter.
type AdapterConfig struct {
	// Buffer is the capacity of the merged event queue.
	Buffer int
	// LogMessages logs every inbound payload at debug level.
	LogMessages bool
	Logger      *zap.Logger
	Metrics     *monitoring.Metrics
}

// Adapter normalizes every attached source into one ordered stream.
type Adapter struct {
	dispatcher Dispatcher
	cfg        AdapterConfig
	logger     *zap.Logger

	mu     sync.RWMutex
	origin string
	locked bool
	text   bool
}

// NewAdapter creates an adapter dispatching to d.
func NewAdapter(d Dispatcher, cfg AdapterConfig) *Adapter {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		dispatcher: d,
		cfg:        cfg,
		logger:     logger.Named("transport"),
	}
}

// Run attaches sources and dispatches their events one at a time until
// ctx is cancelled or every source has finished. The first source error
// stops the others.
func (a *Adapter) Run(ctx context.Context, sources ...EventSource) error {
	if len(sources) == 0 {
		return fmt.Errorf("transport: no event sources")
	}

	group, gctx := errgroup.WithContext(ctx)
	events := make(chan Inbound, a.cfg.Buffer)

	for _, src := range sources {
		src := src
		group.Go(func() error {
			return src.Run(gctx, func(in Inbound) {
				select {
				case events <- in:
				case <-gctx.Done():
				}
			})
		})
	}

	finished := make(chan error, 1)
	go func() { finished <- group.Wait() }()

	for {
		select {
		case in := <-events:
			a.Receive(in)
		case err := <-finished:
			for {
				select {
				case in := <-events:
					a.Receive(in)
				default:
					return err
				}
			}
		}
	}
}

// Receive handles one inbound event synchronously.
func (a *Adapter) Receive(in Inbound) {
	a.mu.Lock()
	if !a.locked {
		a.origin = in.Origin
		a.locked = true
		a.logger.Debug("Origin locked", zap.String("origin", in.Origin))
	} else if in.Origin != a.origin {
		a.logger.Debug("Event from foreign origin",
			zap.String("origin", in.Origin),
			zap.String("locked_origin", a.origin),
		)
	}
	a.text = in.Text
	a.mu.Unlock()

	if a.cfg.LogMessages {
		a.logger.Debug("Message received", zap.Any("payload", in.Payload), zap.Bool("text", in.Text))
	}

	msg, err := a.decode(in)
	if err != nil {
		a.logger.Warn("Dropping undecodable message", zap.Error(err), zap.Bool("text", in.Text))
		a.cfg.Metrics.RecordDecodeError(channelName(in.Text))
		return
	}
	a.cfg.Metrics.RecordInbound(channelName(in.Text), msg.Action)
	a.dispatcher.Dispatch(msg, in.Text)
}

func (a *Adapter) decode(in Inbound) (*codec.Message, error) {
	if !in.Text {
		return codec.DecodeStructured(in.Payload)
	}
	switch raw := in.Payload.(type) {
	case string:
		return codec.DecodeText(raw)
	case []byte:
		return codec.DecodeText(string(raw))
	default:
		return nil, fmt.Errorf("%w: text channel delivered %T", codec.ErrMalformedPayload, in.Payload)
	}
}

// Origin returns the locked origin, or "" before the first event.
func (a *Adapter) Origin() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.origin
}

// TextMode reports whether the most recent event came from a text channel.
func (a *Adapter) TextMode() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.text
}

func channelName(text bool) string {
	if text {
		return "text"
	}
	return "structured"
}
