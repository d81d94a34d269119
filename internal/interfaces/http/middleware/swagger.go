package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SwaggerConfig controls access to the API documentation endpoints.
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // plain IPs or CIDR ranges, empty allows all
}

// ipAllowlist matches client IPs against configured addresses and ranges.
type ipAllowlist struct {
	ips  []net.IP
	nets []*net.IPNet
}

func newIPAllowlist(entries []string) *ipAllowlist {
	al := &ipAllowlist{}
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				al.nets = append(al.nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			al.ips = append(al.ips, ip)
		}
	}
	return al
}

func (al *ipAllowlist) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range al.ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range al.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// SwaggerProtection guards documentation routes. Disabled configs answer 404
// so the endpoint's existence is not revealed; a non-empty allowlist restricts
// access to the listed IPs and CIDR ranges.
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	allowlist := newIPAllowlist(cfg.AllowedIPs)
	restrict := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "API documentation is not available",
			})
			return
		}

		if restrict && !allowlist.contains(clientIP(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Access to API documentation is restricted",
			})
			return
		}

		c.Next()
	}
}

// clientIP resolves the caller address, falling back to RemoteAddr when gin's
// trusted-proxy resolution yields nothing parseable.
func clientIP(c *gin.Context) net.IP {
	if ip := net.ParseIP(c.ClientIP()); ip != nil {
		return ip
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}
