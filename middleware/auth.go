package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"skillswap/logger"
	"skillswap/tools/security"
)

const (
	ctxUserID = "userId"
	ctxRole   = "role"
)

var jwtOpts security.Options

// ConfigAuth sets the verification options used by the Auth middleware.
// Call once from main() before mounting routes.
func ConfigAuth(opts security.Options) { jwtOpts = opts }

// Auth validates the Authorization bearer token and stores the caller
// identity on the context.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token"})
			return
		}
		token := header
		if strings.HasPrefix(header, "Bearer ") {
			token = header[len("Bearer "):]
		}
		claims, err := security.Verify(jwtOpts, token)
		if err != nil {
			// log the hash, never the token itself
			logger.Infof("[auth] rejected token %s: %v", security.HashToken(token), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Invalid token"})
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// CurrentUserID returns the authenticated caller's object id.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return primitive.NilObjectID, false
	}
	s, _ := v.(string)
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// CurrentRole returns the caller's role claim, empty when unauthenticated.
func CurrentRole(c *gin.Context) string {
	v, _ := c.Get(ctxRole)
	s, _ := v.(string)
	return s
}
