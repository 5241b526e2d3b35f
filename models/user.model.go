package models

import (
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// Identity is the part of a user shared by every role.
type Identity struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	Phone        string    `json:"phone" db:"phone"`
	Bio          string    `json:"bio" db:"bio"`
	Age          *int      `json:"age" db:"age"`
	Address      *string   `json:"address" db:"address"`
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	DateJoined   time.Time `json:"date_joined" db:"date_joined"`
}

type DoctorDetails struct {
	Specialization  string  `json:"specialization" db:"specialization"`
	Experience      int     `json:"experience" db:"experience"`
	ConsultationFee float64 `json:"consultation_fee" db:"consultation_fee"`
	Rating          float64 `json:"rating" db:"rating"`
}

type PatientDetails struct {
	BloodGroup string `json:"blood_group" db:"blood_group"`
}

// AdminDetails carries no attributes; it marks the admin variant.
type AdminDetails struct{}

// User is an Identity plus exactly one role payload, the one matching Role.
// The payload pointers are embedded so JSON output stays flat and only the
// fields of the user's own role appear.
type User struct {
	Identity
	*DoctorDetails
	*PatientDetails
	*AdminDetails
}

// NewUser builds a user whose payload matches identity.Role, with zero-value
// role attributes.
func NewUser(identity Identity) *User {
	u := &User{Identity: identity}
	u.Normalize()
	return u
}

// Normalize makes the payload agree with Role: the matching payload is
// allocated when missing and the others are dropped.
func (u *User) Normalize() {
	switch u.Role {
	case RoleDoctor:
		if u.DoctorDetails == nil {
			u.DoctorDetails = &DoctorDetails{}
		}
		u.PatientDetails, u.AdminDetails = nil, nil
	case RolePatient:
		if u.PatientDetails == nil {
			u.PatientDetails = &PatientDetails{}
		}
		u.DoctorDetails, u.AdminDetails = nil, nil
	case RoleAdmin:
		if u.AdminDetails == nil {
			u.AdminDetails = &AdminDetails{}
		}
		u.DoctorDetails, u.PatientDetails = nil, nil
	}
}

func (u *User) IsDoctor() bool  { return u.Role == RoleDoctor }
func (u *User) IsPatient() bool { return u.Role == RolePatient }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }

// Summary is the short form embedded in appointment responses.
func (u *User) Summary() *UserSummary {
	s := &UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
	if u.DoctorDetails != nil {
		s.Specialization = u.Specialization
	}
	return s
}

type UserSummary struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Role           Role   `json:"role"`
	Specialization string `json:"specialization,omitempty"`
}

// UserUpdate is a partial update; nil fields are left untouched. Role
// payload fields are only valid for users of that role.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PasswordHash *string
	Phone        *string
	Bio          *string
	Age          *int
	Address      *string
	IsVerified   *bool

	Specialization  *string
	Experience      *int
	ConsultationFee *float64
	Rating          *float64

	BloodGroup *string
}

func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.PasswordHash == nil &&
		u.Phone == nil && u.Bio == nil && u.Age == nil && u.Address == nil && u.IsVerified == nil &&
		u.Specialization == nil && u.Experience == nil && u.ConsultationFee == nil && u.Rating == nil &&
		u.BloodGroup == nil
}

func (u UserUpdate) HasDoctorFields() bool {
	return u.Specialization != nil || u.Experience != nil || u.ConsultationFee != nil || u.Rating != nil
}

func (u UserUpdate) HasPatientFields() bool {
	return u.BloodGroup != nil
}

type UserFilter struct {
	Search   string
	Role     Role
	Verified *bool
	Limit    uint64
	Offset   uint64
}
