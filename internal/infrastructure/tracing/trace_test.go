package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type collected struct {
	mu    sync.Mutex
	spans []*Span
}

func (c *collected) add(s *Span) {
	c.mu.Lock()
	c.spans = append(c.spans, s)
	c.mu.Unlock()
}

func (c *collected) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.spans)
}

func (c *collected) get(i int) *Span {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spans[i]
}

func newTracer(t *testing.T) (*Tracer, *collected) {
	t.Helper()
	tr := New("test", zaptest.NewLogger(t))
	t.Cleanup(tr.Close)
	c := &collected{}
	tr.OnSpan(c.add)
	return tr, c
}

func TestStartSpanNewTrace(t *testing.T) {
	tr, _ := newTracer(t)

	span, ctx := tr.StartSpan(context.Background(), "op")

	assert.True(t, strings.HasPrefix(string(span.TraceID), TracePrefix+"_"))
	assert.True(t, strings.HasPrefix(string(span.SpanID), SpanPrefix+"_"))
	assert.Empty(t, span.ParentID)
	assert.Equal(t, span.TraceID, GetTraceID(ctx))
	assert.Equal(t, span.SpanID, GetSpanID(ctx))
}

func TestStartSpanChild(t *testing.T) {
	tr, _ := newTracer(t)

	parent, ctx := tr.StartSpan(context.Background(), "parent")
	child, _ := tr.StartSpan(ctx, "child")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
}

func TestSubmitCollects(t *testing.T) {
	tr, c := newTracer(t)

	span, _ := tr.StartSpan(context.Background(), "op")
	span.SetTag("k", "v")
	span.SetError(errors.New("boom"))
	span.Finish()
	tr.Submit(span)

	require.Eventually(t, func() bool { return c.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "v", c.get(0).Tags["k"])
	assert.EqualError(t, c.get(0).Error, "boom")
}

func TestSubmitNilTracer(t *testing.T) {
	var tr *Tracer
	assert.NotPanics(t, func() { tr.Submit(&Span{}) })
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tr, c := newTracer(t)

	router := gin.New()
	router.Use(HTTPMiddleware(tr))
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	t.Run("new trace", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/1", nil))

		assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
		assert.NotEmpty(t, w.Header().Get(HeaderSpanID))
	})

	t.Run("propagated trace", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items/2", nil)
		req.Header.Set(HeaderTraceID, "trc_upstream")
		req.Header.Set(HeaderSpanID, "spn_upstream")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "trc_upstream", w.Header().Get(HeaderTraceID))
	})

	require.Eventually(t, func() bool { return c.len() == 2 }, time.Second, 5*time.Millisecond)
	first := c.get(0)
	assert.Equal(t, "GET /items/:id", first.Name)
	assert.Equal(t, http.StatusNoContent, first.StatusCode)
	assert.Equal(t, "204", first.Tags["http.status"])
	assert.Equal(t, SpanID("spn_upstream"), c.get(1).ParentID)
}
