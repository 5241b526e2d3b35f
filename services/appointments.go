package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

// AppointmentInput books an appointment. Any patient value in the request is
// ignored; the caller is always the patient.
type AppointmentInput struct {
	Doctor          int64    `json:"doctor" validate:"required"`
	Date            string   `json:"date" validate:"required"`
	Time            string   `json:"time" validate:"required"`
	Notes           *string  `json:"notes"`
	ConsultationFee *float64 `json:"consultation_fee" validate:"omitempty,min=0"`
}

type AppointmentUpdateInput struct {
	Doctor          *int64                    `json:"doctor"`
	Date            *string                   `json:"date"`
	Time            *string                   `json:"time"`
	Status          *models.AppointmentStatus `json:"status" validate:"omitempty,oneof=pending approved rejected completed cancelled"`
	Notes           *string                   `json:"notes"`
	ConsultationFee *float64                  `json:"consultation_fee" validate:"omitempty,min=0"`
}

type Appointments struct {
	appointments AppointmentStore
	users        UserStore
	log          zerolog.Logger
}

func NewAppointments(appointments AppointmentStore, users UserStore, logger zerolog.Logger) *Appointments {
	return &Appointments{appointments: appointments, users: users, log: logger}
}

// scope restricts f to what caller may see: doctors their own bookings,
// patients their own, admins everything.
func scope(caller *models.User, f models.AppointmentFilter) models.AppointmentFilter {
	f.PatientID, f.DoctorID = nil, nil
	switch caller.Role {
	case models.RoleDoctor:
		id := caller.ID
		f.DoctorID = &id
	case models.RolePatient:
		id := caller.ID
		f.PatientID = &id
	}
	return f
}

func visible(caller *models.User, a *models.Appointment) bool {
	switch caller.Role {
	case models.RoleDoctor:
		return a.DoctorID == caller.ID
	case models.RolePatient:
		return a.PatientID == caller.ID
	}
	return caller.IsAdmin()
}

func (s *Appointments) lookupDoctor(ctx context.Context, id int64) (*models.User, error) {
	doctor, err := s.users.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.FieldError("doctor", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
	}
	return doctor, err
}

// Create books an appointment for caller. The fee defaults to the doctor's
// current fee and is never recomputed afterwards.
func (s *Appointments) Create(ctx context.Context, caller *models.User, in AppointmentInput) (*models.Appointment, error) {
	extra := map[string]string{}
	date, ok := parseDate(in.Date)
	if in.Date != "" && !ok {
		extra["date"] = "Date has wrong format. Use YYYY-MM-DD."
	}
	clock, ok := parseClock(in.Time)
	if in.Time != "" && !ok {
		extra["time"] = "Time has wrong format. Use hh:mm or hh:mm:ss."
	}
	if err := validateInput(in, extra); err != nil {
		return nil, err
	}

	doctor, err := s.lookupDoctor(ctx, in.Doctor)
	if err != nil {
		return nil, err
	}

	a := &models.Appointment{
		PatientID: caller.ID,
		DoctorID:  doctor.ID,
		Date:      date,
		Time:      clock,
		Status:    models.StatusPending,
		Notes:     in.Notes,
	}
	switch {
	case in.ConsultationFee != nil:
		a.ConsultationFee = *in.ConsultationFee
	case doctor.DoctorDetails != nil:
		a.ConsultationFee = doctor.DoctorDetails.ConsultationFee
	}

	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().
		Int64("appointment_id", a.ID).
		Int64("patient_id", a.PatientID).
		Int64("doctor_id", a.DoctorID).
		Str("date", a.Date).
		Str("time", a.Time).
		Msg("appointment created")
	return a, nil
}

// List returns the appointments visible to caller, newest slot first.
func (s *Appointments) List(ctx context.Context, caller *models.User, f models.AppointmentFilter) ([]*models.Appointment, error) {
	f, err := checkFilter(f)
	if err != nil {
		return nil, err
	}
	return s.appointments.List(ctx, scope(caller, f))
}

// checkFilter validates and normalizes the status and date of a listing.
func checkFilter(f models.AppointmentFilter) (models.AppointmentFilter, error) {
	if f.Status != "" && !f.Status.Valid() {
		return f, apperr.FieldError("status", "Must be one of: pending, approved, rejected, completed, cancelled.")
	}
	if f.Date != "" {
		date, ok := parseDate(f.Date)
		if !ok {
			return f, apperr.FieldError("date", "Date has wrong format. Use YYYY-MM-DD.")
		}
		f.Date = date
	}
	return f, nil
}

// Get returns one appointment. Appointments outside the caller's scope are
// reported as not found.
func (s *Appointments) Get(ctx context.Context, caller *models.User, id int64) (*models.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(caller, a) {
		return nil, apperr.NotFound("appointment")
	}
	return a, nil
}

// Update patches an appointment. With partial false, doctor, date and time
// must all be present. Status transitions are not restricted.
func (s *Appointments) Update(ctx context.Context, caller *models.User, id int64, in AppointmentUpdateInput, partial bool) (*models.Appointment, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}

	extra := map[string]string{}
	if !partial {
		if in.Doctor == nil {
			extra["doctor"] = "This field is required."
		}
		if in.Date == nil {
			extra["date"] = "This field is required."
		}
		if in.Time == nil {
			extra["time"] = "This field is required."
		}
	}
	upd := models.AppointmentUpdate{
		DoctorID:        in.Doctor,
		Status:          in.Status,
		Notes:           in.Notes,
		ConsultationFee: in.ConsultationFee,
	}
	if in.Date != nil {
		date, ok := parseDate(*in.Date)
		if !ok {
			extra["date"] = "Date has wrong format. Use YYYY-MM-DD."
		}
		upd.Date = &date
	}
	if in.Time != nil {
		clock, ok := parseClock(*in.Time)
		if !ok {
			extra["time"] = "Time has wrong format. Use hh:mm or hh:mm:ss."
		}
		upd.Time = &clock
	}
	if err := validateInput(in, extra); err != nil {
		return nil, err
	}
	if in.Doctor != nil {
		if _, err := s.lookupDoctor(ctx, *in.Doctor); err != nil {
			return nil, err
		}
	}

	updated, err := s.appointments.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("appointment_id", id).Str("status", string(updated.Status)).Msg("appointment updated")
	return updated, nil
}

func (s *Appointments) Delete(ctx context.Context, caller *models.User, id int64) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("appointment_id", id).Int64("deleted_by", caller.ID).Msg("appointment deleted")
	return nil
}
