package controllers

import (
	"net/http"
	"time"

	"signage_server/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthController handles authentication related HTTP requests
type AuthController struct {
	identity *services.IdentityService
	logger   *zap.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(identity *services.IdentityService, logger *zap.Logger) *AuthController {
	return &AuthController{identity: identity, logger: logger}
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message"`
	Token     string                 `json:"token,omitempty"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
	User      map[string]interface{} `json:"user,omitempty"`
}

// Register creates a new operator account and returns its token
func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.identity.Register(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Success:   true,
		Message:   "Registration successful",
		Token:     user.Token,
		ExpiresAt: user.TokenExp,
		User:      user.ToSafeUser(),
	})
}

// Login authenticates an operator and returns a fresh token
func (ac *AuthController) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.identity.Login(c.Request.Context(), &req)
	if err != nil {
		ac.logger.Debug("login failed", zap.String("username", req.Username), zap.Error(err))
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     user.Token,
		ExpiresAt: user.TokenExp,
		User:      user.ToSafeUser(),
	})
}

// Logout revokes the caller's token
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.identity.Logout(c.Request.Context(), currentUser(c)); err != nil {
		RespondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Logout successful", nil, 0)
}

// Me returns the caller's profile
func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Message: "User retrieved successfully",
		User:    currentUser(c).ToSafeUser(),
	})
}
