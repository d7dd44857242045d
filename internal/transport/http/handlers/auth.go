package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/workforce-api/internal/transport/http/middleware"
	"github.com/arklim/workforce-api/internal/usecase"
)

// AuthHandler exposes login, logout, refresh, and password-reset endpoints.
type AuthHandler struct {
	auth  *usecase.AuthService
	reset *usecase.PasswordResetService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, reset *usecase.PasswordResetService) *AuthHandler {
	return &AuthHandler{auth: auth, reset: reset}
}

// RegisterRoutes binds authentication routes. The extra middlewares guard the
// abuse-prone endpoints (login, reset request) with rate limits.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares, resetMiddlewares []gin.HandlerFunc) {
	r.POST("/login", append(append([]gin.HandlerFunc{}, loginMiddlewares...), h.login)...)
	r.POST("/logout", h.logout)
	r.POST("/refresh", h.refresh)

	r.POST("/reset_password", append(append([]gin.HandlerFunc{}, resetMiddlewares...), h.resetRequest)...)
	r.GET("/reset_password/:token", h.resetValidate)
	r.POST("/reset_password/:token", h.resetConfirm)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, _, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondMappedError(c, err,
			ErrorCase{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid credentials"},
			ErrorCase{Err: usecase.ErrInactiveAccount, Status: http.StatusForbidden, Message: "Account is not active"},
		)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Missing Authorization Header"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (h *AuthHandler) refresh(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Missing Authorization Header"})
		return
	}

	access, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{AccessToken: access})
}

// respondAuthError maps token-validation failures. All of them are 401: the
// caller learns the credential is unusable, not why.
func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Token has expired"})
	case errors.Is(err, usecase.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Token has been revoked"})
	case errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrInactiveAccount):
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Invalid token"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
	}
}

func (h *AuthHandler) resetRequest(c *gin.Context) {
	var req ResetRequest
	if !bindJSON(c, &req) {
		return
	}

	// Always accepted: the response must not reveal whether the address
	// maps to an account.
	if err := h.reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
		return
	}

	c.JSON(http.StatusAccepted, MessageResponse{Message: "If the account exists, a reset link has been sent"})
}

func (h *AuthHandler) resetValidate(c *gin.Context) {
	if _, err := h.reset.ValidateToken(c.Request.Context(), c.Param("token")); err != nil {
		respondResetTokenError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (h *AuthHandler) resetConfirm(c *gin.Context) {
	var req ResetConfirmRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Password != req.ConfirmPassword {
		respondFieldError(c, "confirm_password", "Passwords do not match.")
		return
	}

	access, err := h.reset.ConfirmReset(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrWeakPassword) {
			respondFieldError(c, "password", err.Error())
			return
		}
		respondResetTokenError(c, err)
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{AccessToken: access})
}

func respondResetTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrResetTokenExpired):
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "Reset token has expired"})
	case errors.Is(err, usecase.ErrResetTokenInvalid):
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid reset token"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Internal server error"})
	}
}
