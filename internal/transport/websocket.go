package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/componentbridge/internal/codec"
)

// WebSocketOptions configures a WebSocket channel.
type WebSocketOptions struct {
	// Origin is sent as the Origin header when dialing.
	Origin         string
	OutboundBuffer int
	WriteTimeout   time.Duration
	MaxMessageSize int64
	Logger         *zap.Logger
}

func (o *WebSocketOptions) applyDefaults() {
	if o.OutboundBuffer <= 0 {
		o.OutboundBuffer = 64
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 1 << 20
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// WebSocket is a text channel to a host over a websocket connection.
// Every frame is JSON text.
type WebSocket struct {
	conn       *websocket.Conn
	hostOrigin string
	opts       WebSocketOptions
	logger     *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	writer    sync.WaitGroup
}

// Dial connects to a host websocket endpoint.
func Dial(ctx context.Context, url string, opts WebSocketOptions) (*WebSocket, error) {
	hostOrigin, err := OriginFromURL(url)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if opts.Origin != "" {
		header.Set("Origin", opts.Origin)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewWebSocket(conn, hostOrigin, opts), nil
}

// NewWebSocket wraps an established connection to a host at hostOrigin
// and starts its write pump.
func NewWebSocket(conn *websocket.Conn, hostOrigin string, opts WebSocketOptions) *WebSocket {
	opts.applyDefaults()
	conn.SetReadLimit(opts.MaxMessageSize)

	w := &WebSocket{
		conn:       conn,
		hostOrigin: hostOrigin,
		opts:       opts,
		logger:     opts.Logger.Named("websocket"),
		send:       make(chan []byte, opts.OutboundBuffer),
		done:       make(chan struct{}),
	}
	w.writer.Add(1)
	go w.writePump()
	return w
}

// Origin returns the host origin stamped on inbound events.
func (w *WebSocket) Origin() string { return w.hostOrigin }

// Run implements EventSource. It returns nil when the peer closes
// normally.
func (w *WebSocket) Run(ctx context.Context, deliver func(Inbound)) error {
	stop := context.AfterFunc(ctx, func() { w.Close() })
	defer stop()

	for {
		kind, data, err := w.conn.ReadMessage()
		if err != nil {
			select {
			case <-w.done:
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			default:
			}
			w.Close()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("websocket read: %w", err)
		}
		if kind != websocket.TextMessage {
			w.logger.Debug("Ignoring non-text frame", zap.Int("type", kind))
			continue
		}
		deliver(Inbound{Origin: w.hostOrigin, Payload: string(data), Text: true})
	}
}

// PostMessage implements Parent. Strings are sent verbatim; other values
// are serialized to JSON. It never blocks on the network.
func (w *WebSocket) PostMessage(message any, targetOrigin string) error {
	if !originMatches(w.hostOrigin, targetOrigin) {
		return ErrOriginMismatch
	}

	var frame []byte
	switch m := message.(type) {
	case string:
		frame = []byte(m)
	case []byte:
		frame = m
	default:
		text, err := codec.Marshal(m)
		if err != nil {
			return fmt.Errorf("websocket encode: %w", err)
		}
		frame = []byte(text)
	}

	select {
	case <-w.done:
		return ErrClosed
	default:
	}
	select {
	case w.send <- frame:
		return nil
	default:
		return ErrBufferFull
	}
}

func (w *WebSocket) writePump() {
	defer w.writer.Done()
	for {
		select {
		case <-w.done:
			w.flush()
			return
		case frame := <-w.send:
			if err := w.write(frame); err != nil {
				w.logger.Warn("WebSocket write failed", zap.Error(err))
				// Unblocks the reader, which then runs Close.
				w.conn.Close()
				return
			}
		}
	}
}

func (w *WebSocket) write(frame []byte) error {
	w.conn.SetWriteDeadline(time.Now().Add(w.opts.WriteTimeout))
	return w.conn.WriteMessage(websocket.TextMessage, frame)
}

// flush writes whatever was queued before Close.
func (w *WebSocket) flush() {
	for {
		select {
		case frame := <-w.send:
			if err := w.write(frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

// Close sends a close frame and tears down the connection. It is safe to
// call more than once.
func (w *WebSocket) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.writer.Wait()
		deadline := time.Now().Add(time.Second)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if werr := w.conn.WriteControl(websocket.CloseMessage, msg, deadline); werr != nil &&
			!errors.Is(werr, websocket.ErrCloseSent) {
			w.logger.Debug("Close frame not sent", zap.Error(werr))
		}
		err = w.conn.Close()
	})
	return err
}
