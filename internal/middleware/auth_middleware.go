package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserIDKey is the gin context key holding the authenticated uuid.UUID.
const UserIDKey = "userID"

// SessionCookie is set at sign-in and accepted when no Authorization header is sent.
const SessionCookie = "token"

// TokenParser returns the user id carried by a valid session token.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

func JWTAuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			return
		}

		// Проверяем подпись и срок действия
		subject, err := tokens.ParseToken(tokenString)
		if err != nil {
			abort(c, "Invalid or expired token")
			return
		}

		userID, err := uuid.Parse(subject)
		if err != nil {
			abort(c, "Invalid user ID in token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// extractToken reads the bearer token, falling back to the session cookie.
func extractToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
			return cookie, true
		}
		abort(c, "Authorization header is required")
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		abort(c, "Authorization header format must be Bearer {token}")
		return "", false
	}
	return parts[1], true
}

func abort(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
}
