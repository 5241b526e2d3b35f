package memstore

import (
	"context"
	"sort"
	"time"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

type AppointmentStore struct {
	db *DB
}

// viewLocked copies a and attaches the patient and doctor summaries.
func (s *AppointmentStore) viewLocked(a *models.Appointment) *models.Appointment {
	c := *a
	if a.Notes != nil {
		n := *a.Notes
		c.Notes = &n
	}
	if u, ok := s.db.users[a.PatientID]; ok {
		c.Patient = u.Summary()
	}
	if u, ok := s.db.users[a.DoctorID]; ok {
		c.Doctor = u.Summary()
	}
	return &c
}

// checkLocked enforces the foreign keys and the active slot uniqueness.
func (s *AppointmentStore) checkLocked(a *models.Appointment) error {
	if _, ok := s.db.users[a.PatientID]; !ok {
		return apperr.FieldError("patient", "referenced user does not exist")
	}
	if _, ok := s.db.users[a.DoctorID]; !ok {
		return apperr.FieldError("doctor", "referenced user does not exist")
	}
	if !a.Status.Active() {
		return nil
	}
	for _, other := range s.db.appointments {
		if other.ID == a.ID || !other.Status.Active() {
			continue
		}
		if other.DoctorID == a.DoctorID && other.Date == a.Date && other.Time == a.Time {
			return apperr.Conflict("time", "the doctor already has an active appointment at this date and time")
		}
	}
	return nil
}

func (s *AppointmentStore) Create(ctx context.Context, a *models.Appointment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if a.Status == "" {
		a.Status = models.StatusPending
	}
	if err := s.checkLocked(a); err != nil {
		return err
	}
	s.db.nextAppointmentID++
	a.ID = s.db.nextAppointmentID
	a.CreatedAt = time.Now().UTC()

	stored := *a
	stored.Patient, stored.Doctor = nil, nil
	s.db.appointments[a.ID] = &stored
	*a = *s.viewLocked(&stored)
	return nil
}

func (s *AppointmentStore) GetByID(ctx context.Context, id int64) (*models.Appointment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	a, ok := s.db.appointments[id]
	if !ok {
		return nil, apperr.NotFound("appointment")
	}
	return s.viewLocked(a), nil
}

func (s *AppointmentStore) List(ctx context.Context, f models.AppointmentFilter) ([]*models.Appointment, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	out := []*models.Appointment{}
	for _, stored := range s.db.appointments {
		if f.PatientID != nil && stored.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && stored.DoctorID != *f.DoctorID {
			continue
		}
		if f.Status != "" && stored.Status != f.Status {
			continue
		}
		if f.Date != "" && stored.Date != f.Date {
			continue
		}
		a := s.viewLocked(stored)
		if f.Search != "" && !matchesParty(a, f.Search) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time > out[j].Time
		}
		return out[i].ID > out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func matchesParty(a *models.Appointment, search string) bool {
	return (a.Patient != nil && contains(a.Patient.Username, search)) ||
		(a.Doctor != nil && contains(a.Doctor.Username, search))
}

func (s *AppointmentStore) Update(ctx context.Context, id int64, upd models.AppointmentUpdate) (*models.Appointment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, ok := s.db.appointments[id]
	if !ok {
		return nil, apperr.NotFound("appointment")
	}
	a := *stored
	if upd.DoctorID != nil {
		a.DoctorID = *upd.DoctorID
	}
	if upd.Date != nil {
		a.Date = *upd.Date
	}
	if upd.Time != nil {
		a.Time = *upd.Time
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.Notes != nil {
		n := *upd.Notes
		a.Notes = &n
	}
	if upd.ConsultationFee != nil {
		a.ConsultationFee = *upd.ConsultationFee
	}
	if err := s.checkLocked(&a); err != nil {
		return nil, err
	}
	s.db.appointments[id] = &a
	return s.viewLocked(&a), nil
}

func (s *AppointmentStore) Delete(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.appointments[id]; !ok {
		return apperr.NotFound("appointment")
	}
	delete(s.db.appointments, id)
	return nil
}
