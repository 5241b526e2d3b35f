package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"medicare-backend/models"
)

var profileColumns = []string{
	"pp.id", "pp.user_id", "to_char(pp.date_of_birth, 'YYYY-MM-DD')", "pp.blood_group",
	"pp.address", "pp.allergies", "pp.medical_history", "u.username",
}

type PatientProfileStore struct {
	db DB
}

func NewPatientProfileStore(db DB) *PatientProfileStore {
	return &PatientProfileStore{db: db}
}

func scanProfile(row scanner) (*models.PatientProfile, error) {
	p := &models.PatientProfile{}
	err := row.Scan(&p.ID, &p.UserID, &p.DateOfBirth, &p.BloodGroup, &p.Address,
		&p.Allergies, &p.MedicalHistory, &p.Username)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func profileSelect() sq.SelectBuilder {
	return psql.Select(profileColumns...).
		From("patient_profiles pp").
		Join("users u ON u.id = pp.user_id")
}

func (s *PatientProfileStore) GetByUserID(ctx context.Context, userID int64) (*models.PatientProfile, error) {
	query, args, err := profileSelect().Where(sq.Eq{"pp.user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile query: %w", err)
	}
	p, err := scanProfile(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "patient profile")
	}
	return p, nil
}

// GetOrCreate returns the user's profile, inserting an empty one first when
// none exists. Concurrent first calls converge on the same row.
func (s *PatientProfileStore) GetOrCreate(ctx context.Context, userID int64) (*models.PatientProfile, error) {
	query, args, err := psql.Insert("patient_profiles").
		Columns("user_id").
		Values(userID).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, mapError(err, "patient profile")
	}
	return s.GetByUserID(ctx, userID)
}

func (s *PatientProfileStore) Update(ctx context.Context, userID int64, upd models.PatientProfileUpdate) (*models.PatientProfile, error) {
	if upd.Empty() {
		return s.GetByUserID(ctx, userID)
	}

	set := map[string]interface{}{}
	if upd.DateOfBirth != nil {
		set["date_of_birth"] = *upd.DateOfBirth
	}
	if upd.BloodGroup != nil {
		set["blood_group"] = *upd.BloodGroup
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.Allergies != nil {
		set["allergies"] = *upd.Allergies
	}
	if upd.MedicalHistory != nil {
		set["medical_history"] = *upd.MedicalHistory
	}

	b := psql.Update("patient_profiles").SetMap(set).Where(sq.Eq{"user_id": userID})
	if err := execAffecting(ctx, s.db, b, "patient profile"); err != nil {
		return nil, err
	}
	return s.GetByUserID(ctx, userID)
}

func (s *PatientProfileStore) List(ctx context.Context, f models.PatientProfileFilter) ([]*models.PatientProfile, error) {
	b := profileSelect().OrderBy("pp.id ASC")
	if f.Search != "" {
		b = b.Where(sq.ILike{"u.username": likePattern(f.Search)})
	}
	b = paginate(b, f.Limit, f.Offset)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile list: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "patient profile")
	}
	defer rows.Close()

	profiles := []*models.PatientProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patient profiles: %w", err)
	}
	return profiles, nil
}
