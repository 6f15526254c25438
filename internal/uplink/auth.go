package uplink

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "X-API-Key"

// RequireAPIKey rejects requests whose X-API-Key header does not match the
// configured credential. The comparison is constant-time: the credential
// must not be recoverable by timing probes.
//
// An empty configured key means open (dev) mode: every request is
// accepted. That posture is deliberate and is announced at startup and via
// the open-mode metric so it cannot be mistaken for a production setup.
func RequireAPIKey(key string) gin.HandlerFunc {
	if key == "" {
		return func(c *gin.Context) { c.Next() }
	}
	want := []byte(key)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(apiKeyHeader))
		if subtle.ConstantTimeCompare(want, got) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid API key"})
			return
		}
		c.Next()
	}
}
