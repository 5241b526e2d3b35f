package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medicare-backend/services"
	"medicare-backend/shared/security"
)

type MedicalProfileController struct {
	profiles *services.PatientProfiles
}

func NewMedicalProfileController(profiles *services.PatientProfiles) *MedicalProfileController {
	return &MedicalProfileController{profiles: profiles}
}

func (ctl *MedicalProfileController) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := ctl.profiles.GetOrCreate(c.Request.Context(), user)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (ctl *MedicalProfileController) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.PatientProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendBindingError(c, err)
		return
	}

	profile, err := ctl.profiles.Update(c.Request.Context(), user, input)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
