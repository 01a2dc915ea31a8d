package tracing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/componentbridge/internal/shared/id"
)

const (
	TracePrefix = "trc"
	SpanPrefix  = "spn"

	defaultBuffer = 1000
)

// TraceID represents a unique trace identifier
type TraceID string

// SpanID represents a unique span identifier
type SpanID string

// Span represents a single operation in a trace
type Span struct {
	TraceID    TraceID
	SpanID     SpanID
	ParentID   SpanID
	Name       string
	Service    string
	StartTime  time.Time
	Duration   time.Duration
	Tags       map[string]string
	Error      error
	StatusCode int
}

// Tracer collects finished spans and logs them
type Tracer struct {
	service string
	logger  *zap.Logger
	spans   chan *Span
	done    chan struct{}
	once    sync.Once
	onSpan  func(*Span)
}

// New creates a tracer and starts its collector. Close stops it.
func New(service string, logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		service: service,
		logger:  logger.Named("trace"),
		spans:   make(chan *Span, defaultBuffer),
		done:    make(chan struct{}),
	}
	go t.collectSpans()
	return t
}

// OnSpan registers fn to observe every collected span. Call it before
// submitting spans.
func (t *Tracer) OnSpan(fn func(*Span)) {
	t.onSpan = fn
}

// StartSpan creates a span, continuing the trace found in ctx if any
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = TraceID(id.Default().GenerateWithPrefix(TracePrefix))
	}

	span := &Span{
		TraceID:   traceID,
		SpanID:    SpanID(id.Default().GenerateWithPrefix(SpanPrefix)),
		ParentID:  GetSpanID(ctx),
		Name:      name,
		Service:   t.service,
		StartTime: time.Now(),
		Tags:      make(map[string]string),
	}

	ctx = context.WithValue(ctx, traceIDKey, traceID)
	ctx = context.WithValue(ctx, spanIDKey, span.SpanID)
	return span, ctx
}

// Finish marks the span as complete
func (s *Span) Finish() {
	s.Duration = time.Since(s.StartTime)
}

// SetTag adds a tag to the span
func (s *Span) SetTag(key, value string) {
	s.Tags[key] = value
}

// SetError records an error in the span
func (s *Span) SetError(err error) {
	s.Error = err
}

// SetStatus sets the HTTP status code
func (s *Span) SetStatus(code int) {
	s.StatusCode = code
}

func (t *Tracer) collectSpans() {
	for {
		select {
		case span := <-t.spans:
			t.processSpan(span)
		case <-t.done:
			return
		}
	}
}

func (t *Tracer) processSpan(span *Span) {
	fields := []zap.Field{
		zap.String("trace_id", string(span.TraceID)),
		zap.String("span_id", string(span.SpanID)),
		zap.String("operation", span.Name),
		zap.Duration("duration", span.Duration),
		zap.String("service", span.Service),
	}
	if span.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(span.ParentID)))
	}
	for k, v := range span.Tags {
		fields = append(fields, zap.String(k, v))
	}

	if span.Error != nil {
		fields = append(fields, zap.Error(span.Error))
		t.logger.Warn("span completed with error", fields...)
	} else {
		t.logger.Debug("span completed", fields...)
	}
	if t.onSpan != nil {
		t.onSpan(span)
	}
}

// Submit hands a finished span to the collector. A full buffer drops it.
func (t *Tracer) Submit(span *Span) {
	if t == nil || span == nil {
		return
	}
	select {
	case t.spans <- span:
	default:
		t.logger.Warn("span buffer full, dropping span",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("span_id", string(span.SpanID)),
		)
	}
}

// Close stops the collector. Spans submitted afterwards are dropped once
// the buffer fills.
func (t *Tracer) Close() {
	t.once.Do(func() { close(t.done) })
}

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	spanIDKey  contextKey = "span_id"
)

// WithTrace returns ctx carrying an incoming trace context
func WithTrace(ctx context.Context, traceID TraceID, parent SpanID) context.Context {
	if traceID != "" {
		ctx = context.WithValue(ctx, traceIDKey, traceID)
	}
	if parent != "" {
		ctx = context.WithValue(ctx, spanIDKey, parent)
	}
	return ctx
}

// GetTraceID retrieves the trace ID from context
func GetTraceID(ctx context.Context) TraceID {
	traceID, _ := ctx.Value(traceIDKey).(TraceID)
	return traceID
}

// GetSpanID retrieves the span ID from context
func GetSpanID(ctx context.Context) SpanID {
	spanID, _ := ctx.Value(spanIDKey).(SpanID)
	return spanID
}
