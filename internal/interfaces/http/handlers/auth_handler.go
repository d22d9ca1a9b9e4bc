// Package handlers maps the HTTP surface onto the application services.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/embedpro/pids-licensing/internal/application/dto"
	appservice "github.com/embedpro/pids-licensing/internal/application/service"
	"github.com/embedpro/pids-licensing/internal/interfaces/http/middleware"
	apperrors "github.com/embedpro/pids-licensing/pkg/errors"
)

// AuthHandler serves the session endpoints.
type AuthHandler struct {
	auth *appservice.AuthAppService
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(auth *appservice.AuthAppService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignIn handles POST /signin.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ErrValidation("Invalid request body").WithError(err))
		return
	}
	result, err := h.auth.SignIn(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Signed in", result))
}

// Renew handles POST /renewToken. The refresh token rides in the
// Authorization header.
func (h *AuthHandler) Renew(c *gin.Context) {
	result, err := h.auth.Renew(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Token renewed", result))
}

// Logout handles POST /logout. The access token comes from the Authorization
// header; the body may carry the refresh token to revoke with it.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	// Body is optional.
	_ = c.ShouldBindJSON(&req)

	if err := h.auth.Logout(c.Request.Context(), middleware.BearerToken(c), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Logged out", nil))
}

// ChangePassword handles PUT /changePassword.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ErrValidation("Invalid request body").WithError(err))
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("Password changed", nil))
}

// respondError normalizes any error into the envelope with its HTTP status.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.Normalize(err)
	c.JSON(appErr.HTTPStatus, dto.Fail(appErr))
}
