package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medicare-backend/models"
	"medicare-backend/services"
	"medicare-backend/shared/security"
)

type AppointmentController struct {
	appointments *services.Appointments
}

func NewAppointmentController(appointments *services.Appointments) *AppointmentController {
	return &AppointmentController{appointments: appointments}
}

// List returns the caller's appointments, optionally narrowed by ?status and
// ?date.
func (ctl *AppointmentController) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	filter := models.AppointmentFilter{
		Status: models.AppointmentStatus(c.Query("status")),
		Date:   c.Query("date"),
	}

	appointments, err := ctl.appointments.List(c.Request.Context(), user, filter)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

// Create books an appointment with the caller as patient.
func (ctl *AppointmentController) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var input services.AppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendBindingError(c, err)
		return
	}

	appointment, err := ctl.appointments.Create(c.Request.Context(), user, input)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appointment)
}

func (ctl *AppointmentController) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "appointment")
	if !ok {
		return
	}

	appointment, err := ctl.appointments.Get(c.Request.Context(), user, id)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

// Update handles PATCH (partial) and PUT (doctor, date and time required).
func (ctl *AppointmentController) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "appointment")
	if !ok {
		return
	}
	var input services.AppointmentUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		security.SendBindingError(c, err)
		return
	}

	partial := c.Request.Method == http.MethodPatch
	appointment, err := ctl.appointments.Update(c.Request.Context(), user, id, input, partial)
	if err != nil {
		security.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, appointment)
}

func (ctl *AppointmentController) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "appointment")
	if !ok {
		return
	}

	if err := ctl.appointments.Delete(c.Request.Context(), user, id); err != nil {
		security.SendAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
