package services

import (
	"context"

	"github.com/rs/zerolog"

	"medicare-backend/models"
)

type PatientProfileInput struct {
	DateOfBirth    *string `json:"date_of_birth"`
	BloodGroup     *string `json:"blood_group" validate:"omitempty,max=5"`
	Address        *string `json:"address"`
	Allergies      *string `json:"allergies"`
	MedicalHistory *string `json:"medical_history"`
}

type PatientProfiles struct {
	profiles PatientProfileStore
	log      zerolog.Logger
}

func NewPatientProfiles(profiles PatientProfileStore, logger zerolog.Logger) *PatientProfiles {
	return &PatientProfiles{profiles: profiles, log: logger}
}

// GetOrCreate returns the caller's profile, creating an empty one on first
// access.
func (s *PatientProfiles) GetOrCreate(ctx context.Context, user *models.User) (*models.PatientProfile, error) {
	return s.profiles.GetOrCreate(ctx, user.ID)
}

func (s *PatientProfiles) Update(ctx context.Context, user *models.User, in PatientProfileInput) (*models.PatientProfile, error) {
	extra := map[string]string{}
	upd := models.PatientProfileUpdate{
		BloodGroup:     in.BloodGroup,
		Address:        in.Address,
		Allergies:      in.Allergies,
		MedicalHistory: in.MedicalHistory,
	}
	if in.DateOfBirth != nil {
		dob, ok := parseDate(*in.DateOfBirth)
		if !ok {
			extra["date_of_birth"] = "Date has wrong format. Use YYYY-MM-DD."
		}
		upd.DateOfBirth = &dob
	}
	if err := validateInput(in, extra); err != nil {
		return nil, err
	}

	if _, err := s.profiles.GetOrCreate(ctx, user.ID); err != nil {
		return nil, err
	}
	profile, err := s.profiles.Update(ctx, user.ID, upd)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int64("user_id", user.ID).Msg("patient profile updated")
	return profile, nil
}
