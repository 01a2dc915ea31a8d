package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/componentbridge/internal/codec"
	"github.com/GriffinCanCode/componentbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/componentbridge/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/componentbridge/internal/middleware"
	"github.com/GriffinCanCode/componentbridge/internal/shared/id"
	"github.com/GriffinCanCode/componentbridge/internal/types"
)

// Config configures the simulated host
type Config struct {
	// Environment is advertised at registration: web, desktop or mobile.
	Environment string
	// ComponentUUID is the self id given to components. Empty means a
	// fresh uuid per connection.
	ComponentUUID string
	// AllowedOrigins restricts the Origin header of upgrades. Empty
	// allows any origin.
	AllowedOrigins []string
	MaxMessageSize int64
	WriteTimeout   time.Duration
	SendBuffer     int
	// MessageRate limits inbound envelopes per connection.
	MessageRate middleware.RateLimitConfig
	// Tracer, when set, records a span per handled envelope.
	Tracer *tracing.Tracer
}

// DefaultConfig returns development defaults
func DefaultConfig() Config {
	return Config{
		Environment:    "web",
		MaxMessageSize: 1 << 20,
		WriteTimeout:   10 * time.Second,
		SendBuffer:     64,
		MessageRate:    middleware.RateLimitConfig{RequestsPerSecond: 50, Burst: 100},
	}
}

// Handler manages component WebSocket connections
type Handler struct {
	cfg      Config
	store    *Store
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[*conn]struct{}
}

// conn is one connected component
type conn struct {
	ws            *websocket.Conn
	sessionKey    id.SessionKey
	selfUUID      string
	limiter       *rate.Limiter
	send          chan []byte
	done          chan struct{}
	closeOnce     sync.Once
	componentData map[string]any
	permissions   []any
}

// NewHandler creates a new WebSocket handler
func NewHandler(cfg Config, store *Store, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		cfg:     cfg,
		store:   store,
		logger:  logger.Named("ws"),
		metrics: metrics,
		conns:   make(map[*conn]struct{}),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range h.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// HandleConnection upgrades the request, registers the component and
// answers its envelopes until it disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	wsConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	if h.cfg.MaxMessageSize > 0 {
		wsConn.SetReadLimit(h.cfg.MaxMessageSize)
	}

	selfUUID := h.cfg.ComponentUUID
	if selfUUID == "" {
		selfUUID = uuid.NewString()
	}
	cn := &conn{
		ws:            wsConn,
		sessionKey:    id.NewSessionKey(),
		selfUUID:      selfUUID,
		limiter:       middleware.NewLimiter(h.cfg.MessageRate),
		send:          make(chan []byte, h.cfg.SendBuffer),
		done:          make(chan struct{}),
		componentData: make(map[string]any),
	}

	h.add(cn)
	defer h.remove(cn)

	logger := h.logger.With(zap.String("session_key", cn.sessionKey.String()))
	logger.Info("Component connected", zap.String("remote", c.ClientIP()))

	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		h.writePump(cn, logger)
	}()
	defer writer.Wait()
	defer cn.close()

	h.send(cn, map[string]any{
		"action":        codec.ActionComponentRegistered,
		"sessionKey":    cn.sessionKey.String(),
		"componentData": map[string]any{},
		"data": map[string]any{
			"environment": h.cfg.Environment,
			"uuid":        cn.selfUUID,
		},
	})

	for {
		kind, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("WebSocket read error", zap.Error(err))
			}
			logger.Info("Component disconnected")
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if !cn.limiter.Allow() {
			h.metrics.IncWSRateLimited()
			logger.Warn("Dropping rate limited message")
			continue
		}

		env, err := codec.DecodeEnvelope(string(data))
		if err != nil {
			h.metrics.RecordWSMessage("in", "malformed")
			logger.Warn("Dropping malformed envelope", zap.Error(err))
			continue
		}
		h.metrics.RecordWSMessage("in", env.Action)

		if env.SessionKey != cn.sessionKey.String() {
			logger.Warn("Envelope with foreign session key",
				zap.String("action", env.Action),
				zap.String("message_id", env.MessageID),
			)
			continue
		}

		h.serve(c.Request.Context(), cn, env)
	}
}

// serve handles one envelope from cn and replies to it
func (h *Handler) serve(ctx context.Context, cn *conn, env *codec.Envelope) {
	if h.cfg.Tracer == nil {
		h.reply(cn, env, h.handle(cn, env))
		return
	}

	span, _ := h.cfg.Tracer.StartSpan(ctx, env.Action)
	span.SetTag("message_id", env.MessageID)
	span.SetTag("session_key", cn.sessionKey.String())
	h.reply(cn, env, h.handle(cn, env))
	span.Finish()
	h.cfg.Tracer.Submit(span)
}

func (h *Handler) reply(cn *conn, env *codec.Envelope, data map[string]any) {
	h.send(cn, map[string]any{
		"action": "reply",
		"original": map[string]any{
			"messageId": env.MessageID,
			"action":    env.Action,
		},
		"data": data,
	})
}

// send queues a message for cn. A full buffer drops the message.
func (h *Handler) send(cn *conn, msg map[string]any) bool {
	text, err := codec.Marshal(msg)
	if err != nil {
		h.logger.Error("Encoding host message failed", zap.Error(err))
		return false
	}
	select {
	case <-cn.done:
		return false
	case cn.send <- []byte(text):
		action, _ := msg["action"].(string)
		h.metrics.RecordWSMessage("out", action)
		return true
	default:
		h.logger.Warn("Send buffer full, dropping message", zap.String("session_key", cn.sessionKey.String()))
		return false
	}
}

func (h *Handler) writePump(cn *conn, logger *zap.Logger) {
	for {
		select {
		case <-cn.done:
			return
		case frame := <-cn.send:
			cn.ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := cn.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Warn("WebSocket write failed", zap.Error(err))
				cn.ws.Close()
				return
			}
		}
	}
}

func (cn *conn) close() {
	cn.closeOnce.Do(func() {
		close(cn.done)
		cn.ws.Close()
	})
}

func (h *Handler) add(cn *conn) {
	h.mu.Lock()
	h.conns[cn] = struct{}{}
	h.mu.Unlock()
	h.metrics.IncWSConnections()
}

func (h *Handler) remove(cn *conn) {
	h.mu.Lock()
	delete(h.conns, cn)
	h.mu.Unlock()
	h.metrics.DecWSConnections()
}

// Connections returns the number of connected components
func (h *Handler) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// BroadcastThemes sends a themes message to every connected component and
// returns how many accepted it.
func (h *Handler) BroadcastThemes(urls []string) int {
	list := make([]any, 0, len(urls))
	for _, u := range urls {
		list = append(list, u)
	}

	h.mu.RLock()
	targets := make([]*conn, 0, len(h.conns))
	for cn := range h.conns {
		targets = append(targets, cn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, cn := range targets {
		if h.send(cn, map[string]any{
			"action": codec.ActionThemes,
			"data":   map[string]any{"themes": list},
		}) {
			delivered++
		}
	}
	h.logger.Info("Themes broadcast", zap.Int("urls", len(urls)), zap.Int("delivered", delivered))
	return delivered
}

// ComponentData returns the data most recently mirrored by any component
// with the given self id.
func (h *Handler) ComponentData(selfUUID string) (map[string]any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for cn := range h.conns {
		if cn.selfUUID == selfUUID {
			out := make(map[string]any, len(cn.componentData))
			for k, v := range cn.componentData {
				out[k] = v
			}
			return out, true
		}
	}
	return nil, false
}

// records normalizes a decoded JSON list of items.
func records(v any) []types.Record {
	list, _ := v.([]any)
	out := make([]types.Record, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, types.Record(m))
		}
	}
	return out
}
