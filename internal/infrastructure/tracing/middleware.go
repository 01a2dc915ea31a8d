package tracing

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Propagation headers
const (
	HeaderTraceID = "X-Trace-ID"
	HeaderSpanID  = "X-Span-ID"
)

// HTTPMiddleware creates Gin middleware that opens a span per request and
// echoes the trace context in response headers.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithTrace(c.Request.Context(),
			TraceID(c.GetHeader(HeaderTraceID)),
			SpanID(c.GetHeader(HeaderSpanID)),
		)

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+name)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.path", c.Request.URL.Path)

		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTraceID, string(span.TraceID))
		c.Header(HeaderSpanID, string(span.SpanID))

		c.Next()

		span.SetStatus(c.Writer.Status())
		span.SetTag("http.status", strconv.Itoa(c.Writer.Status()))
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}
		span.Finish()
		tracer.Submit(span)
	}
}
