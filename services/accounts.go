package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

type RegisterInput struct {
	Email           string      `json:"email" validate:"required,email,max=254"`
	Password        string      `json:"password" validate:"required"`
	FirstName       string      `json:"first_name" validate:"required,max=150"`
	LastName        string      `json:"last_name" validate:"required,max=150"`
	Role            models.Role `json:"role" validate:"omitempty,oneof=patient doctor"`
	Specialization  *string     `json:"specialization" validate:"omitempty,max=100"`
	Experience      *int        `json:"experience" validate:"omitempty,min=0"`
	ConsultationFee *float64    `json:"consultation_fee" validate:"omitempty,min=0"`
	BloodGroup      *string     `json:"blood_group" validate:"omitempty,max=5"`
	Address         *string     `json:"address"`
	Phone           *string     `json:"phone" validate:"omitempty,max=15"`
	Bio             *string     `json:"bio"`
	Age             *int        `json:"age" validate:"omitempty,min=0"`
}

// ProfileInput is a partial update of a user. Role, IsVerified and Rating
// are privileged and only honoured through the admin console.
type ProfileInput struct {
	FirstName       *string  `json:"first_name" validate:"omitempty,max=150"`
	LastName        *string  `json:"last_name" validate:"omitempty,max=150"`
	Email           *string  `json:"email" validate:"omitempty,email,max=254"`
	Password        *string  `json:"password"`
	Phone           *string  `json:"phone" validate:"omitempty,max=15"`
	Bio             *string  `json:"bio"`
	Age             *int     `json:"age" validate:"omitempty,min=0"`
	Address         *string  `json:"address"`
	Specialization  *string  `json:"specialization" validate:"omitempty,max=100"`
	Experience      *int     `json:"experience" validate:"omitempty,min=0"`
	ConsultationFee *float64 `json:"consultation_fee" validate:"omitempty,min=0"`
	BloodGroup      *string  `json:"blood_group" validate:"omitempty,max=5"`

	Role       *models.Role `json:"role"`
	IsVerified *bool        `json:"is_verified"`
	Rating     *float64     `json:"rating" validate:"omitempty,min=0,max=5"`
}

type Accounts struct {
	users     UserStore
	passwords Passwords
	log       zerolog.Logger
}

func NewAccounts(users UserStore, passwords Passwords, logger zerolog.Logger) *Accounts {
	return &Accounts{users: users, passwords: passwords, log: logger}
}

// Register creates a patient or doctor account. The username is the email.
func (s *Accounts) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	extra := map[string]string{}
	if in.Password != "" && len(in.Password) < minPasswordLength {
		extra["password"] = passwordTooShort
	}
	if err := validateInput(in, extra); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = models.RolePatient
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("email", "user with this email already exists.")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	identity := models.Identity{
		Username:     in.Email,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         in.Role,
		Age:          in.Age,
		Address:      in.Address,
	}
	if in.Phone != nil {
		identity.Phone = *in.Phone
	}
	if in.Bio != nil {
		identity.Bio = *in.Bio
	}

	// Payload fields of the other role are ignored here; registration forms
	// send every field.
	user := models.NewUser(identity)
	switch in.Role {
	case models.RoleDoctor:
		if in.Specialization != nil {
			user.Specialization = *in.Specialization
		}
		if in.Experience != nil {
			user.Experience = *in.Experience
		}
		if in.ConsultationFee != nil {
			user.DoctorDetails.ConsultationFee = *in.ConsultationFee
		}
	case models.RolePatient:
		if in.BloodGroup != nil {
			user.PatientDetails.BloodGroup = *in.BloodGroup
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

func (s *Accounts) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile merges in into the caller's own record.
func (s *Accounts) UpdateProfile(ctx context.Context, current *models.User, in ProfileInput) (*models.User, error) {
	upd, err := s.buildUpdate(current, in, false)
	if err != nil {
		return nil, err
	}
	updated, err := s.users.Update(ctx, current.ID, upd)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int64("user_id", updated.ID).Msg("profile updated")
	return updated, nil
}

// ListDoctors returns verified doctors ordered by id.
func (s *Accounts) ListDoctors(ctx context.Context) ([]*models.User, error) {
	return s.users.ListVerifiedDoctors(ctx)
}

// buildUpdate validates in against target and converts it. Fields of another
// role are rejected unless they carry the zero value, as do privileged fields
// that would change when privileged is false.
func (s *Accounts) buildUpdate(target *models.User, in ProfileInput, privileged bool) (models.UserUpdate, error) {
	extra := map[string]string{}
	if in.Password != nil && len(*in.Password) < minPasswordLength {
		extra["password"] = passwordTooShort
	}
	if in.Role != nil && *in.Role != target.Role {
		extra["role"] = "Role cannot be changed."
	}
	if !privileged {
		if in.IsVerified != nil && *in.IsVerified != target.IsVerified {
			extra["is_verified"] = "This field can only be changed by an administrator."
		}
		if in.Rating != nil && (target.DoctorDetails == nil || *in.Rating != target.Rating) {
			extra["rating"] = "This field can only be changed by an administrator."
		}
	}

	notForRole := "This field does not apply to " + string(target.Role) + " accounts."
	if target.DoctorDetails == nil {
		if in.Specialization != nil && *in.Specialization != "" {
			extra["specialization"] = notForRole
		}
		if in.Experience != nil && *in.Experience != 0 {
			extra["experience"] = notForRole
		}
		if in.ConsultationFee != nil && *in.ConsultationFee != 0 {
			extra["consultation_fee"] = notForRole
		}
		if privileged && in.Rating != nil && *in.Rating != 0 {
			extra["rating"] = notForRole
		}
	}
	if target.PatientDetails == nil && in.BloodGroup != nil && *in.BloodGroup != "" {
		extra["blood_group"] = notForRole
	}
	if err := validateInput(in, extra); err != nil {
		return models.UserUpdate{}, err
	}

	upd := models.UserUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Bio:       in.Bio,
		Age:       in.Age,
		Address:   in.Address,
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		upd.Email = &email
	}
	if in.Password != nil {
		hash, err := s.passwords.Hash(*in.Password)
		if err != nil {
			return models.UserUpdate{}, err
		}
		upd.PasswordHash = &hash
	}
	if target.DoctorDetails != nil {
		upd.Specialization = in.Specialization
		upd.Experience = in.Experience
		upd.ConsultationFee = in.ConsultationFee
		if privileged {
			upd.Rating = in.Rating
		}
	}
	if target.PatientDetails != nil {
		upd.BloodGroup = in.BloodGroup
	}
	if privileged {
		upd.IsVerified = in.IsVerified
	}
	return upd, nil
}
