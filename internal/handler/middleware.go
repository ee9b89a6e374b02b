package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/easyped-service/internal/domain"
	"github.com/prperemyshlev/easyped-service/internal/dto"
)

const (
	contextKeyUserID = "user_id"
	contextKeyClaims = "claims"
)

// TokenValidator verifies a bearer token
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// AuthMiddleware validates JWT token and adds user info to context
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "No token, authorization denied")
			return
		}

		// Extract token from "Bearer <token>"
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" {
			abortUnauthorized(c, "Token is not valid")
			return
		}

		token = strings.TrimSpace(token)
		if token == "" {
			abortUnauthorized(c, "No token, authorization denied")
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "Token is not valid")
			return
		}

		c.Set(contextKeyUserID, claims.UserID)
		c.Set(contextKeyClaims, claims)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error:   "Unauthorized",
		Message: message,
	})
}

// currentUserID returns the authenticated user id set by AuthMiddleware
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(contextKeyUserID)
	return userID, userID != ""
}
