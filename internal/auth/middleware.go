package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/construmarket/internal/apperr"
	"github.com/MikeMC777/construmarket/internal/httpx"
	"github.com/MikeMC777/construmarket/internal/user"
)

const identityKey = "identity"

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(g *Gateway, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := g.Identify(c.Request.Context(), bearer(c))
		if err != nil {
			httpx.Fail(c, log, err)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// OptionalAuth attaches an identity when the token checks out and otherwise
// continues anonymously.
func OptionalAuth(g *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := bearer(c); tok != "" {
			if id, err := g.Identify(c.Request.Context(), tok); err == nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// RequireRoles must run after RequireAuth.
func RequireRoles(log *logrus.Logger, roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := FromContext(c)
		if !ok {
			httpx.Fail(c, log, apperr.Unauthenticated("Authentication required"))
			return
		}
		if !id.HasRole(roles...) {
			httpx.Fail(c, log, apperr.Forbidden("Insufficient permissions"))
			return
		}
		c.Next()
	}
}

func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// MustIdentity is for handlers mounted behind RequireAuth.
func MustIdentity(c *gin.Context) Identity {
	id, _ := FromContext(c)
	return id
}
