package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medicare-backend/services"
	"medicare-backend/shared/security"
)

type AuthController struct {
	auth *services.Auth
}

func NewAuthController(auth *services.Auth) *AuthController {
	return &AuthController{auth: auth}
}

// LoginInput accepts the identifier under any of its historical keys.
type LoginInput struct {
	Username        string `json:"username"`
	UsernameOrEmail string `json:"username_or_email"`
	Email           string `json:"email"`
	Password        string `json:"password" binding:"required"`
}

func (in LoginInput) identifier() string {
	for _, v := range []string{in.UsernameOrEmail, in.Username, in.Email} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (ctl *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendBindingError(c, err)
		return
	}
	identifier := input.identifier()
	if identifier == "" {
		security.SendValidationError(c, "Invalid input data", gin.H{"username": "This field is required."})
		return
	}

	pair, err := ctl.auth.Login(c.Request.Context(), identifier, input.Password)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

type RefreshInput struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (ctl *AuthController) Refresh(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendBindingError(c, err)
		return
	}

	access, err := ctl.auth.Refresh(c.Request.Context(), input.Refresh)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}
