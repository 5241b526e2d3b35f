package models

// PatientProfile is the clinical extension of a user, one per user.
// BloodGroup is kept apart from the user's own blood group on purpose; the
// two are not reconciled.
type PatientProfile struct {
	ID             int64   `json:"id" db:"id"`
	UserID         int64   `json:"user" db:"user_id"`
	DateOfBirth    *string `json:"date_of_birth" db:"date_of_birth"`
	BloodGroup     *string `json:"blood_group" db:"blood_group"`
	Address        *string `json:"address" db:"address"`
	Allergies      *string `json:"allergies" db:"allergies"`
	MedicalHistory *string `json:"medical_history" db:"medical_history"`

	Username string `json:"username,omitempty" db:"-"`
}

type PatientProfileUpdate struct {
	DateOfBirth    *string
	BloodGroup     *string
	Address        *string
	Allergies      *string
	MedicalHistory *string
}

func (u PatientProfileUpdate) Empty() bool {
	return u.DateOfBirth == nil && u.BloodGroup == nil && u.Address == nil &&
		u.Allergies == nil && u.MedicalHistory == nil
}

type PatientProfileFilter struct {
	Search string
	Limit  uint64
	Offset uint64
}
