package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/insomnia-fuel/cafe-api/pkg/auth"
)

// principalKey is the gin context key holding the decoded principal. It is
// set exactly once, at the trust boundary, by the auth middleware.
const principalKey = "principal"

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing token"})
			return
		}

		principal, err := s.deps.Verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// optionalAuth attaches a principal when a valid token is present but lets
// anonymous requests through. Used by the public contact form.
func (s *Server) optionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if principal, err := s.deps.Verifier.Verify(c.Request.Context(), token); err == nil {
				c.Set(principalKey, principal)
			}
		}
		c.Next()
	}
}

func (s *Server) adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := principalFrom(c)
		if principal == nil || !s.config.Auth.IsAdminEmail(principal.Email) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admins only"})
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) *auth.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, _ := v.(*auth.Principal)
	return principal
}
