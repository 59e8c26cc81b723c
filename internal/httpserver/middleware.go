package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"nexuscart/internal/domain"
	authsvc "nexuscart/internal/service/auth"
	"github.com/gin-gonic/gin"
)

const (
	sessionUserKey  = "sessionUser"
	sessionTokenKey = "sessionToken"
)

// sessionMiddleware classifies every request as anonymous, user, or
// admin. A missing or invalid bearer token leaves the request anonymous;
// only backend failures abort.
func sessionMiddleware(auth AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}
		u, err := auth.LookupByToken(c.Request.Context(), token)
		if err != nil {
			if isInvalidToken(err) {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Set(sessionUserKey, u)
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// requireUser admits signed-in accounts of either role.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// requireAdmin admits only admin accounts. A signed-in non-admin gets
// 403, an anonymous request 401.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(sessionUserKey)
	if !ok {
		return nil
	}
	u, ok := v.(*domain.User)
	if !ok {
		return nil
	}
	return u
}

func currentToken(c *gin.Context) string {
	v, ok := c.Get(sessionTokenKey)
	if !ok {
		return ""
	}
	t, _ := v.(string)
	return t
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func isInvalidToken(err error) bool {
	return errors.Is(err, authsvc.ErrInvalidToken) || errors.Is(err, domain.ErrNotFound)
}
