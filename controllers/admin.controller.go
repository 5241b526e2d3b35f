package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medicare-backend/models"
	"medicare-backend/services"
	"medicare-backend/shared/security"
)

// AdminController exposes the administrative console. Every route requires
// the admin role.
type AdminController struct {
	admin *services.Admin
}

func NewAdminController(admin *services.Admin) *AdminController {
	return &AdminController{admin: admin}
}

func (ctl *AdminController) ListUsers(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	filter := models.UserFilter{
		Search: c.Query("search"),
		Role:   models.Role(c.Query("role")),
		Limit:  limit,
		Offset: offset,
	}
	if v := c.Query("verified"); v != "" {
		verified, err := strconv.ParseBool(v)
		if err != nil {
			security.SendValidationError(c, "Invalid query parameters", gin.H{"verified": "Must be true or false."})
			return
		}
		filter.Verified = &verified
	}

	users, err := ctl.admin.ListUsers(c.Request.Context(), filter)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (ctl *AdminController) GetUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	user, err := ctl.admin.GetUser(c.Request.Context(), id)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ctl *AdminController) UpdateUser(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendBindingError(c, err)
		return
	}

	user, err := ctl.admin.UpdateUser(c.Request.Context(), admin, id, input)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ctl *AdminController) DeleteUser(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "user")
	if !ok {
		return
	}

	if err := ctl.admin.DeleteUser(c.Request.Context(), admin, id); err != nil {
		security.SendAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ctl *AdminController) ListAppointments(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	filter := models.AppointmentFilter{
		Status: models.AppointmentStatus(c.Query("status")),
		Date:   c.Query("date"),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	}

	appointments, err := ctl.admin.ListAppointments(c.Request.Context(), filter)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (ctl *AdminController) ListPatientProfiles(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	filter := models.PatientProfileFilter{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	}

	profiles, err := ctl.admin.ListPatientProfiles(c.Request.Context(), filter)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}
