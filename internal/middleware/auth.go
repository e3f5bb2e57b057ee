package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dentaheal/dentaheal-api/internal/models"
	"github.com/dentaheal/dentaheal-api/internal/services"
)

// SessionCookie is the cookie the login handler sets. The Authorization
// header is accepted as well for non-browser clients.
const SessionCookie = "session"

const accountKey = "account"

// TokenFromRequest pulls the session token from the cookie or, failing
// that, a Bearer Authorization header.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// RequireAuth resolves the request's session token to an account and
// stores it in the context for handlers to use.
func RequireAuth(accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := accounts.Resolve(c.Request.Context(), TokenFromRequest(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		c.Set(accountKey, account)

		c.Next()
	}
}

// AccountFromContext returns the account RequireAuth stored, or nil when
// the route is not behind RequireAuth.
func AccountFromContext(c *gin.Context) *models.Account {
	value, exists := c.Get(accountKey)
	if !exists {
		return nil
	}
	account, _ := value.(*models.Account)
	return account
}
