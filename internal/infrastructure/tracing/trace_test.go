package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedTracer() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return New("test", zap.New(core)), logs
}

func TestStartSpanPropagates(t *testing.T) {
	tracer, _ := newObservedTracer()
	defer tracer.Close()

	parent, ctx := tracer.StartSpan(context.Background(), "parent")
	child, ctx := tracer.StartSpan(ctx, "child")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(ctx))
	assert.True(t, strings.HasPrefix(string(parent.TraceID), "req_"))
	assert.True(t, strings.HasPrefix(string(child.SpanID), "span_"))

	headers := map[string]string{}
	InjectTraceContext(ctx, headers)
	assert.Equal(t, string(parent.TraceID), headers[HeaderTraceID])
}

func TestExtractTraceContextRejectsGarbage(t *testing.T) {
	traceID, spanID := ExtractTraceContext(map[string]string{
		HeaderTraceID: "abc\nINFO forged line",
		HeaderSpanID:  strings.Repeat("x", 65),
	})
	assert.Empty(t, traceID)
	assert.Empty(t, spanID)

	traceID, _ = ExtractTraceContext(map[string]string{HeaderTraceID: "req_01HZX"})
	assert.Equal(t, TraceID("req_01HZX"), traceID)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObservedTracer()

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/health", func(c *gin.Context) {
		assert.Equal(t, TraceID("req_incoming"), GetTraceID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderTraceID, "req_incoming")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req_incoming", w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))

	tracer.Close()
	entries := logs.FilterMessage("span completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET /health", fields["operation"])
	assert.Equal(t, "200", fields["http.status"])
}

func TestSubmitAfterCloseIsDropped(t *testing.T) {
	tracer, logs := newObservedTracer()
	tracer.Close()
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	span.Finish()
	tracer.Submit(span)

	assert.Equal(t, 0, logs.Len())
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	tracer, _ := newObservedTracer()
	defer tracer.Close()
	_, ctx := tracer.StartSpan(context.Background(), "op")

	Logger(ctx, base).Info("hello")
	Logger(context.Background(), base).Info("plain")

	all := logs.All()
	require.Len(t, all, 2)
	assert.Equal(t, string(GetTraceID(ctx)), all[0].ContextMap()["trace_id"])
	assert.NotContains(t, all[1].ContextMap(), "trace_id")
}
