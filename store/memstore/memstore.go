// Package memstore keeps users, patient profiles and appointments in memory.
// It enforces the same constraints as the SQL schema and backs the service
// and HTTP tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

type DB struct {
	mu           sync.RWMutex
	users        map[int64]*models.User
	profiles     map[int64]*models.PatientProfile // keyed by user id
	appointments map[int64]*models.Appointment

	nextUserID        int64
	nextProfileID     int64
	nextAppointmentID int64
}

func New() *DB {
	return &DB{
		users:        map[int64]*models.User{},
		profiles:     map[int64]*models.PatientProfile{},
		appointments: map[int64]*models.Appointment{},
	}
}

func (db *DB) Users() *UserStore               { return &UserStore{db: db} }
func (db *DB) Profiles() *PatientProfileStore  { return &PatientProfileStore{db: db} }
func (db *DB) Appointments() *AppointmentStore { return &AppointmentStore{db: db} }

// Ping always succeeds.
func (db *DB) PingContext(ctx context.Context) error { return ctx.Err() }

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func page[T any](items []T, limit, offset uint64) []T {
	if offset >= uint64(len(items)) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < uint64(len(items)) {
		items = items[:limit]
	}
	return items
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.Age != nil {
		age := *u.Age
		c.Age = &age
	}
	if u.Address != nil {
		addr := *u.Address
		c.Address = &addr
	}
	if u.DoctorDetails != nil {
		d := *u.DoctorDetails
		c.DoctorDetails = &d
	}
	if u.PatientDetails != nil {
		p := *u.PatientDetails
		c.PatientDetails = &p
	}
	if u.AdminDetails != nil {
		c.AdminDetails = &models.AdminDetails{}
	}
	return &c
}

type UserStore struct {
	db *DB
}

// uniqueLocked reports the first unique field that another user already
// holds. Callers hold db.mu.
func (s *UserStore) uniqueLocked(id int64, username, email string) error {
	for _, other := range s.db.users {
		if other.ID == id {
			continue
		}
		if username != "" && other.Username == username {
			return apperr.Conflict("username", "a user with this username already exists")
		}
		if email != "" && other.Email == email {
			return apperr.Conflict("email", "a user with this email already exists")
		}
	}
	return nil
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := s.uniqueLocked(0, u.Username, u.Email); err != nil {
		return err
	}
	u.Normalize()
	s.db.nextUserID++
	u.ID = s.db.nextUserID
	u.DateJoined = time.Now().UTC()
	s.db.users[u.ID] = cloneUser(u)
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return cloneUser(u), nil
}

func (s *UserStore) find(match func(*models.User) bool) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, u := range s.db.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Username == username })
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Email == email })
}

func (s *UserStore) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, ok := s.db.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	u := cloneUser(stored)
	if upd.Email != nil {
		if err := s.uniqueLocked(id, "", *upd.Email); err != nil {
			return nil, err
		}
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Age != nil {
		age := *upd.Age
		u.Age = &age
	}
	if upd.Address != nil {
		addr := *upd.Address
		u.Address = &addr
	}
	if upd.IsVerified != nil {
		u.IsVerified = *upd.IsVerified
	}
	if d := u.DoctorDetails; d != nil {
		if upd.Specialization != nil {
			d.Specialization = *upd.Specialization
		}
		if upd.Experience != nil {
			d.Experience = *upd.Experience
		}
		if upd.ConsultationFee != nil {
			d.ConsultationFee = *upd.ConsultationFee
		}
		if upd.Rating != nil {
			d.Rating = *upd.Rating
		}
	}
	if p := u.PatientDetails; p != nil && upd.BloodGroup != nil {
		p.BloodGroup = *upd.BloodGroup
	}

	s.db.users[id] = u
	return cloneUser(u), nil
}

func (s *UserStore) ListVerifiedDoctors(ctx context.Context) ([]*models.User, error) {
	verified := true
	return s.List(ctx, models.UserFilter{Role: models.RoleDoctor, Verified: &verified})
}

func (s *UserStore) List(ctx context.Context, f models.UserFilter) ([]*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := []*models.User{}
	for _, u := range s.db.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Verified != nil && u.IsVerified != *f.Verified {
			continue
		}
		if f.Search != "" && !contains(u.Username, f.Search) && !contains(u.Email, f.Search) &&
			!contains(u.FirstName, f.Search) && !contains(u.LastName, f.Search) {
			continue
		}
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return page(users, f.Limit, f.Offset), nil
}

// Delete removes the user together with its profile and appointments.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[id]; !ok {
		return apperr.NotFound("user")
	}
	delete(s.db.users, id)
	delete(s.db.profiles, id)
	for aid, a := range s.db.appointments {
		if a.PatientID == id || a.DoctorID == id {
			delete(s.db.appointments, aid)
		}
	}
	return nil
}
