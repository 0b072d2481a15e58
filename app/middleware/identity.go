package middleware

import (
	"net/http"

	"swasthyaflow/pkg/auth"
	"swasthyaflow/pkg/logger"

	"github.com/gin-gonic/gin"
)

const ownerIDKey = "ownerID"

// Identity rejects requests without a resolvable owner and stores the owner id for handlers.
func Identity(resolver auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := resolver.Resolve(c.Request)
		if !ok {
			logger.WarnCtx(c.Request.Context(), "unauthorized request: %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ownerIDKey, ownerID)
		c.Next()
	}
}

// OwnerID returns the owner stored by Identity, or "" outside it.
func OwnerID(c *gin.Context) string {
	return c.GetString(ownerIDKey)
}
