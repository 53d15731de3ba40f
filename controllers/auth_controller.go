package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Bishal-code0731/ecom/services"
)

type AuthController struct {
	authService *services.AuthService
	logger      *zap.Logger
}

func NewAuthController(authService *services.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

func (ac *AuthController) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := ac.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondCreated(c, result)
}

func (ac *AuthController) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := ac.authService.Login(c.Request.Context(), &req)
	if err != nil {
		// Invalid credentials surface as 401 rather than the generic mapping.
		var unauthorized *services.UnauthorizedError
		if errors.As(err, &unauthorized) {
			c.JSON(http.StatusUnauthorized, Response{Success: false, Message: unauthorized.Error()})
			return
		}
		respondError(c, ac.logger, err)
		return
	}
	respondOK(c, result)
}

func (ac *AuthController) Logout(c *gin.Context) {
	tokenID := c.GetString("token_id")
	if tokenID == "" {
		respondBadRequest(c, "missing session token")
		return
	}

	if err := ac.authService.Logout(c.Request.Context(), tokenID); err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondMessage(c, "logged out")
}

func (ac *AuthController) Me(c *gin.Context) {
	userID, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "unauthenticated"})
		return
	}

	user, err := ac.authService.GetUser(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondOK(c, user)
}
