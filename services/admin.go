package services

import (
	"context"

	"github.com/rs/zerolog"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

// Admin backs the administrative console: browsing and editing every record.
type Admin struct {
	accounts     *Accounts
	users        UserStore
	profiles     PatientProfileStore
	appointments AppointmentStore
	log          zerolog.Logger
}

func NewAdmin(accounts *Accounts, users UserStore, profiles PatientProfileStore, appointments AppointmentStore, logger zerolog.Logger) *Admin {
	return &Admin{
		accounts:     accounts,
		users:        users,
		profiles:     profiles,
		appointments: appointments,
		log:          logger,
	}
}

func (s *Admin) ListUsers(ctx context.Context, f models.UserFilter) ([]*models.User, error) {
	if f.Role != "" && !f.Role.Valid() {
		return nil, apperr.FieldError("role", "Must be one of: admin, doctor, patient.")
	}
	return s.users.List(ctx, f)
}

func (s *Admin) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateUser applies in with privileged fields (is_verified, rating) allowed.
func (s *Admin) UpdateUser(ctx context.Context, admin *models.User, id int64, in ProfileInput) (*models.User, error) {
	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	upd, err := s.accounts.buildUpdate(target, in, true)
	if err != nil {
		return nil, err
	}
	updated, err := s.users.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", id).Int64("admin_id", admin.ID).Msg("user updated by admin")
	return updated, nil
}

// DeleteUser removes a user with its profile and appointments. Admins cannot
// delete their own account.
func (s *Admin) DeleteUser(ctx context.Context, admin *models.User, id int64) error {
	if admin.ID == id {
		return apperr.Forbidden("Administrators cannot delete their own account.")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", id).Int64("admin_id", admin.ID).Msg("user deleted by admin")
	return nil
}

func (s *Admin) ListAppointments(ctx context.Context, f models.AppointmentFilter) ([]*models.Appointment, error) {
	f, err := checkFilter(f)
	if err != nil {
		return nil, err
	}
	return s.appointments.List(ctx, f)
}

func (s *Admin) ListPatientProfiles(ctx context.Context, f models.PatientProfileFilter) ([]*models.PatientProfile, error) {
	return s.profiles.List(ctx, f)
}
