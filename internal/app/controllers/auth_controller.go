package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models/dto"
	"github.com/RUFFNER25/sistema-de-certificados/internal/app/services"
	"github.com/RUFFNER25/sistema-de-certificados/internal/middleware"
)

// AuthController handles authentication endpoints
type AuthController struct {
	authService services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Login handles POST /api/login and returns a signed token on success.
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "username and password are required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	token, expiresIn, err := c.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.LoginResponse{
		Token:     token,
		Username:  req.Username,
		ExpiresIn: expiresIn,
	})
}
