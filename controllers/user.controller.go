package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medicare-backend/services"
	"medicare-backend/shared/security"
)

type UserController struct {
	accounts *services.Accounts
}

func NewUserController(accounts *services.Accounts) *UserController {
	return &UserController{accounts: accounts}
}

// Register creates an account. No token is issued; clients log in next.
func (ctl *UserController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendBindingError(c, err)
		return
	}

	user, err := ctl.accounts.Register(c.Request.Context(), input)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (ctl *UserController) GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile serves both PATCH and PUT; either way only the supplied
// fields change.
func (ctl *UserController) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendBindingError(c, err)
		return
	}

	updated, err := ctl.accounts.UpdateProfile(c.Request.Context(), user, input)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (ctl *UserController) ListDoctors(c *gin.Context) {
	doctors, err := ctl.accounts.ListDoctors(c.Request.Context())
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}
