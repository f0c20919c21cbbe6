package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// IdentityHeader carries the opaque caller identity. Verifying it is the
	// job of the gateway in front of this service; the engine only threads
	// it through for ownership filtering and audit attribution.
	IdentityHeader = "X-User-ID"

	// ActorKey is the gin context key holding the caller identity.
	ActorKey = "actorID"
)

// IdentityMiddleware extracts the caller identity and rejects requests
// without one.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(IdentityHeader)
		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + IdentityHeader + " header"})
			return
		}
		c.Set(ActorKey, actorID)
		c.Next()
	}
}

// ActorID returns the caller identity stored by IdentityMiddleware.
func ActorID(c *gin.Context) string {
	return c.GetString(ActorKey)
}
