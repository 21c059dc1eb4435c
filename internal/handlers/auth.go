package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vikram-2101/Advance-Task-Manager-App/internal/apperr"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/auth"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/dto"
	"github.com/vikram-2101/Advance-Task-Manager-App/internal/service"
)

// AuthHandler handles register, login, refresh and profile.
type AuthHandler struct {
	svc        *service.AuthService
	log        *logrus.Entry
	showDetail bool
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, log *logrus.Entry, showDetail bool) *AuthHandler {
	return &AuthHandler{svc: svc, log: log, showDetail: showDetail}
}

// Register godoc
// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "Registration"
// @Success      201   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if fields := req.Validate(); len(fields) > 0 {
		respondError(c, h.log, h.showDetail, apperr.Validation("Validation error", fields...))
		return
	}
	user, pair, err := h.svc.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	respond(c, http.StatusCreated, "User registered successfully", dto.AuthResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	})
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      423   {object}  Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", dto.AuthResponse{
		User:         dto.NewUserResponse(user),
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	})
}

// Refresh godoc
// @Summary      Rotate refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RefreshRequest  true  "Refresh token"
// @Success      200   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	respond(c, http.StatusOK, "Token refreshed successfully", dto.TokenResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	})
}

// Profile godoc
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Router       /auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.svc.Profile(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, h.log, h.showDetail, err)
		return
	}
	respond(c, http.StatusOK, "Profile retrieved successfully", gin.H{"user": dto.NewUserResponse(user)})
}
