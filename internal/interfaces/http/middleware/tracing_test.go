package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newSpanRecorder installs a recording tracer provider for the test's lifetime
func newSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func tracedRouter(status int, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	router.GET("/estimates/:id", func(c *gin.Context) {
		c.JSON(status, gin.H{"status": status})
	})
	return router
}

func doTracedRequest(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/estimates/42", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestDefaultTracingConfig(t *testing.T) {
	cfg := DefaultTracingConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "machshop-backend", cfg.ServiceName)
}

func TestTracingWithConfig(t *testing.T) {
	t.Run("disabled passes requests through without spans", func(t *testing.T) {
		sr := newSpanRecorder(t)
		router := tracedRouter(http.StatusOK, TracingWithConfig(TracingConfig{Enabled: false}))

		w := doTracedRequest(router, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, sr.Ended())
	})

	t.Run("enabled records a span per request", func(t *testing.T) {
		sr := newSpanRecorder(t)
		router := tracedRouter(http.StatusOK,
			TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"}))

		w := doTracedRequest(router, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Contains(t, spans[0].Name(), "/estimates/:id")
	})

	t.Run("request id header becomes a span attribute", func(t *testing.T) {
		sr := newSpanRecorder(t)
		router := tracedRouter(http.StatusOK,
			TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"}),
			TracingAttributeInjector())

		doTracedRequest(router, map[string]string{"X-Request-ID": "req-123"})

		spans := sr.Ended()
		require.Len(t, spans, 1)
		var found bool
		for _, attr := range spans[0].Attributes() {
			if string(attr.Key) == "request_id" {
				found = true
				assert.Equal(t, "req-123", attr.Value.AsString())
			}
		}
		assert.True(t, found, "expected request_id attribute on span")
	})

	t.Run("oversized request id header is truncated", func(t *testing.T) {
		sr := newSpanRecorder(t)
		router := tracedRouter(http.StatusOK,
			TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"}),
			TracingAttributeInjector())

		doTracedRequest(router, map[string]string{
			"X-Request-ID": strings.Repeat("x", MaxRequestIDLength*2),
		})

		spans := sr.Ended()
		require.Len(t, spans, 1)
		for _, attr := range spans[0].Attributes() {
			if string(attr.Key) == "request_id" {
				assert.Len(t, attr.Value.AsString(), MaxRequestIDLength)
			}
		}
	})
}

func TestSpanErrorMarker(t *testing.T) {
	statusTests := []struct {
		name       string
		status     int
		wantErr    bool
		wantReason string
	}{
		{"200 leaves the span unset", http.StatusOK, false, ""},
		{"400 marks client error", http.StatusBadRequest, true, "Client Error"},
		{"404 marks not found", http.StatusNotFound, true, "Not Found"},
		{"422 marks client error", http.StatusUnprocessableEntity, true, "Client Error"},
		{"500 marks server error", http.StatusInternalServerError, true, "Internal Server Error"},
	}

	for _, tt := range statusTests {
		t.Run(tt.name, func(t *testing.T) {
			sr := newSpanRecorder(t)
			router := tracedRouter(tt.status,
				TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "test-service"}),
				SpanErrorMarker())

			doTracedRequest(router, nil)

			spans := sr.Ended()
			require.Len(t, spans, 1)
			if tt.wantErr {
				assert.Equal(t, codes.Error, spans[0].Status().Code)
				assert.Equal(t, tt.wantReason, spans[0].Status().Description)
			} else {
				assert.NotEqual(t, codes.Error, spans[0].Status().Code)
			}
		})
	}

	t.Run("no-op without a recording span", func(t *testing.T) {
		router := tracedRouter(http.StatusInternalServerError, SpanErrorMarker())
		w := doTracedRequest(router, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("prefers the context value", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("X-Request-ID", "from-header")
		c.Set("request_id", "from-context")

		assert.Equal(t, "from-context", getRequestID(c))
	})

	t.Run("falls back to the header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("X-Request-ID", "from-header")

		assert.Equal(t, "from-header", getRequestID(c))
	})
}
