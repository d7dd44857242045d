package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/workforce-api/internal/usecase"
)

// BearerToken extracts the bearer credential from the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// RequireAuth validates the access token and stores the authenticated
// principal in the request context.
func RequireAuth(auth *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing Authorization Header"})
			return
		}

		actor, err := auth.ParseAccessToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrExpiredToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token has expired"})
			case errors.Is(err, usecase.ErrTokenRevoked):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token has been revoked"})
			case errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrInactiveAccount):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Authentication failed"})
			}
			return
		}

		c.Set(ActorKey, *actor)

		c.Next()
	}
}

// RequireRole admits the request when the authenticated principal carries any
// of the named roles. It must run after RequireAuth and before request-body
// validation, so unauthorized callers see 403 rather than a validation error.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing Authorization Header"})
			return
		}

		for _, role := range roles {
			if actor.HasRole(role) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
	}
}
