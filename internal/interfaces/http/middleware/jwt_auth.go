package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/embedpro/pids-licensing/internal/application/dto"
	appservice "github.com/embedpro/pids-licensing/internal/application/service"
	"github.com/embedpro/pids-licensing/pkg/constants"
	apperrors "github.com/embedpro/pids-licensing/pkg/errors"
)

// Gin context keys set by the auth middleware.
const (
	ContextKeyClaims      = "auth_claims"
	ContextKeyBearerToken = "auth_bearer"
)

// BearerToken extracts the Authorization header value, accepting both
// "Bearer <token>" and a bare token.
func BearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return header
}

// JWTAuth guards a route with access-token verification. Verified claims and
// the raw token are placed on the gin context; the username also lands in
// the request context for log correlation.
func JWTAuth(auth *appservice.AuthAppService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abortWithError(c, apperrors.ErrUnauthorized("Authorization token required"))
			return
		}
		claims, err := auth.VerifyAccess(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, apperrors.Normalize(err))
			return
		}
		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyBearerToken, token)
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyUsername, claims.Username)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, dto.Fail(appErr))
}
