package server

import (
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gamatrix/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every request with an id, honoring one supplied by the
// caller so ids survive proxies.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			logging.String("request_id", c.GetString("request_id")),
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.String("client", c.ClientIP()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("duration", time.Since(start)))
	}
}

// allowedNetworks rejects callers outside the configured CIDR allow-list.
// An empty list allows everyone.
func (s *Server) allowedNetworks() gin.HandlerFunc {
	return func(c *gin.Context) {
		networks := s.cfg.Server.AllowedNetworks
		if len(networks) == 0 {
			c.Next()
			return
		}

		ip := net.ParseIP(c.ClientIP())
		if ip == nil || !ipInNetworks(ip, networks) {
			s.logger.Warn("rejected client outside allowed networks",
				logging.String("client", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func ipInNetworks(ip net.IP, networks []*net.IPNet) bool {
	for _, n := range networks {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
