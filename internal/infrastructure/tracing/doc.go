/*
Package tracing provides lightweight request tracing.

# Overview

Every inbound HTTP request gets a span. The trace id is taken from the
X-Trace-ID header when the caller sent a well-formed one, otherwise a new
one is generated. The outbound client forwards the same headers to the
analysis backend so a single upload can be followed across both services.

# Usage

	tracer := tracing.New("dwpnxt-backend", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// Inside a handler
	log := tracing.Logger(c.Request.Context(), logger)

# Trace Format

- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation

Completed spans are buffered (1000) and logged by a single collector
goroutine, so logging never blocks a request.
*/
package tracing
