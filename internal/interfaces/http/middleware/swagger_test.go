package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg SwaggerConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "swagger"})
	})
	return router
}

func swaggerRequest(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled answers 404", func(t *testing.T) {
		w := swaggerRequest(swaggerRouter(SwaggerConfig{Enabled: false}), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not_found")
	})

	t.Run("enabled with empty allowlist serves everyone", func(t *testing.T) {
		w := swaggerRequest(swaggerRouter(SwaggerConfig{Enabled: true}), "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("allowlisted IP is served", func(t *testing.T) {
		cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1"}}
		w := swaggerRequest(swaggerRouter(cfg), "127.0.0.1:12345")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unlisted IP is rejected", func(t *testing.T) {
		cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}
		w := swaggerRequest(swaggerRouter(cfg), "192.168.1.1:12345")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "forbidden")
	})

	t.Run("CIDR range admits members and rejects outsiders", func(t *testing.T) {
		cfg := SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}
		router := swaggerRouter(cfg)

		assert.Equal(t, http.StatusOK, swaggerRequest(router, "10.50.100.200:12345").Code)
		assert.Equal(t, http.StatusForbidden, swaggerRequest(router, "192.168.1.1:12345").Code)
	})
}

func TestIPAllowlist(t *testing.T) {
	allowTests := []struct {
		name    string
		entries []string
		ip      string
		want    bool
	}{
		{"exact IP match", []string{"192.168.1.1"}, "192.168.1.1", true},
		{"no match", []string{"192.168.1.1"}, "192.168.1.2", false},
		{"CIDR member", []string{"10.0.0.0/8"}, "10.0.0.5", true},
		{"CIDR outsider", []string{"10.0.0.0/8"}, "11.0.0.5", false},
		{"IPv6 loopback", []string{"::1"}, "::1", true},
		{"mixed entries", []string{"127.0.0.1", "10.0.0.0/8"}, "10.1.2.3", true},
		{"garbage entries are skipped", []string{"not-an-ip", "300.0.0.0/8"}, "127.0.0.1", false},
	}

	for _, tt := range allowTests {
		t.Run(tt.name, func(t *testing.T) {
			al := newIPAllowlist(tt.entries)
			assert.Equal(t, tt.want, al.contains(net.ParseIP(tt.ip)))
		})
	}

	t.Run("nil IP never matches", func(t *testing.T) {
		al := newIPAllowlist([]string{"127.0.0.1"})
		assert.False(t, al.contains(nil))
	})
}
