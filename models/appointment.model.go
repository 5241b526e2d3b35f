package models

import (
	"time"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusRejected  AppointmentStatus = "rejected"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Active statuses hold their (doctor, date, time) slot.
func (s AppointmentStatus) Active() bool {
	return s == StatusPending || s == StatusApproved
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	ID              int64             `json:"id" db:"id"`
	PatientID       int64             `json:"patient" db:"patient_id"`
	DoctorID        int64             `json:"doctor" db:"doctor_id"`
	Date            string            `json:"date" db:"date"`
	Time            string            `json:"time" db:"time"`
	Status          AppointmentStatus `json:"status" db:"status"`
	Notes           *string           `json:"notes" db:"notes"`
	ConsultationFee float64           `json:"consultation_fee" db:"consultation_fee"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`

	Patient *UserSummary `json:"patient_details,omitempty" db:"-"`
	Doctor  *UserSummary `json:"doctor_details,omitempty" db:"-"`
}

type AppointmentUpdate struct {
	DoctorID        *int64
	Date            *string
	Time            *string
	Status          *AppointmentStatus
	Notes           *string
	ConsultationFee *float64
}

func (u AppointmentUpdate) Empty() bool {
	return u.DoctorID == nil && u.Date == nil && u.Time == nil && u.Status == nil &&
		u.Notes == nil && u.ConsultationFee == nil
}

// AppointmentFilter narrows a listing. PatientID and DoctorID are exact
// matches; Search matches patient or doctor username.
type AppointmentFilter struct {
	PatientID *int64
	DoctorID  *int64
	Status    AppointmentStatus
	Date      string
	Search    string
	Limit     uint64
	Offset    uint64
}
