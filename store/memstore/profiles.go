package memstore

import (
	"context"
	"sort"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

type PatientProfileStore struct {
	db *DB
}

func cloneProfile(p *models.PatientProfile) *models.PatientProfile {
	c := *p
	for _, f := range []**string{&c.DateOfBirth, &c.BloodGroup, &c.Address, &c.Allergies, &c.MedicalHistory} {
		if *f != nil {
			v := **f
			*f = &v
		}
	}
	return &c
}

// withUsernameLocked copies p and attaches the owner's username.
func (s *PatientProfileStore) withUsernameLocked(p *models.PatientProfile) *models.PatientProfile {
	c := cloneProfile(p)
	if u, ok := s.db.users[p.UserID]; ok {
		c.Username = u.Username
	}
	return c
}

func (s *PatientProfileStore) GetOrCreate(ctx context.Context, userID int64) (*models.PatientProfile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if p, ok := s.db.profiles[userID]; ok {
		return s.withUsernameLocked(p), nil
	}
	if _, ok := s.db.users[userID]; !ok {
		return nil, apperr.FieldError("user", "referenced user does not exist")
	}
	s.db.nextProfileID++
	p := &models.PatientProfile{ID: s.db.nextProfileID, UserID: userID}
	s.db.profiles[userID] = p
	return s.withUsernameLocked(p), nil
}

func (s *PatientProfileStore) Update(ctx context.Context, userID int64, upd models.PatientProfileUpdate) (*models.PatientProfile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored, ok := s.db.profiles[userID]
	if !ok {
		return nil, apperr.NotFound("patient profile")
	}
	p := cloneProfile(stored)
	set := func(dst **string, v *string) {
		if v != nil {
			val := *v
			*dst = &val
		}
	}
	set(&p.DateOfBirth, upd.DateOfBirth)
	set(&p.BloodGroup, upd.BloodGroup)
	set(&p.Address, upd.Address)
	set(&p.Allergies, upd.Allergies)
	set(&p.MedicalHistory, upd.MedicalHistory)

	s.db.profiles[userID] = p
	return s.withUsernameLocked(p), nil
}

func (s *PatientProfileStore) List(ctx context.Context, f models.PatientProfileFilter) ([]*models.PatientProfile, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	profiles := []*models.PatientProfile{}
	for _, p := range s.db.profiles {
		c := s.withUsernameLocked(p)
		if f.Search != "" && !contains(c.Username, f.Search) {
			continue
		}
		profiles = append(profiles, c)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return page(profiles, f.Limit, f.Offset), nil
}
