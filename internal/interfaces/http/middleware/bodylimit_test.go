package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newBodyLimitRouter(maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodyLimit(maxBytes))
	router.POST("/api/v1/estimates", func(c *gin.Context) {
		c.String(http.StatusOK, "created")
	})
	router.GET("/api/v1/estimates", func(c *gin.Context) {
		c.String(http.StatusOK, "listed")
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	t.Run("passes a body within the limit", func(t *testing.T) {
		router := newBodyLimitRouter(1024)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates",
			strings.NewReader(`{"customer_id":"c-1"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects an oversized declared Content-Length", func(t *testing.T) {
		router := newBodyLimitRouter(64)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates",
			strings.NewReader(strings.Repeat("x", 256)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
	})

	t.Run("ignores requests without a body", func(t *testing.T) {
		router := newBodyLimitRouter(8)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/estimates", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("caps streaming bodies with no declared length", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(BodyLimit(32))
		router.POST("/api/v1/estimates/import", func(c *gin.Context) {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				c.String(http.StatusRequestEntityTooLarge, "body too large")
				return
			}
			c.String(http.StatusOK, "imported")
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates/import",
			strings.NewReader(strings.Repeat("x", 128)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
