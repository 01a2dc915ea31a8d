/*
Package tracing provides lightweight request tracing for the host simulator.

Every HTTP request and every envelope a component sends gets a span. Spans
are collected on a buffered channel and logged at Debug level (Warn when
they carry an error), so a single component session can be followed
through the logs by trace id.

# Usage

	tracer := tracing.New("host-simulator", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "save-items")
	span.SetTag("message_id", id)
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

# Propagation

Incoming requests may carry X-Trace-ID and X-Span-ID; the span continues
that trace and the response echoes the new span's ids.
*/
package tracing
