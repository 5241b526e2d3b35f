package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"medicare-backend/models"
)

var userColumns = []string{
	"id", "username", "email", "first_name", "last_name", "password_hash", "role",
	"phone", "bio", "age", "address", "specialization", "experience",
	"consultation_fee", "rating", "is_verified", "blood_group", "date_joined",
}

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

// scanUser reads the wide users row and keeps only the payload of the
// user's role.
func scanUser(row scanner) (*models.User, error) {
	var (
		id             models.Identity
		specialization string
		experience     int
		fee, rating    float64
		bloodGroup     string
	)
	err := row.Scan(
		&id.ID, &id.Username, &id.Email, &id.FirstName, &id.LastName, &id.PasswordHash, &id.Role,
		&id.Phone, &id.Bio, &id.Age, &id.Address, &specialization, &experience,
		&fee, &rating, &id.IsVerified, &bloodGroup, &id.DateJoined,
	)
	if err != nil {
		return nil, err
	}

	u := &models.User{Identity: id}
	switch id.Role {
	case models.RoleDoctor:
		u.DoctorDetails = &models.DoctorDetails{
			Specialization:  specialization,
			Experience:      experience,
			ConsultationFee: fee,
			Rating:          rating,
		}
	case models.RolePatient:
		u.PatientDetails = &models.PatientDetails{BloodGroup: bloodGroup}
	case models.RoleAdmin:
		u.AdminDetails = &models.AdminDetails{}
	}
	return u, nil
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	u.Normalize()

	values := map[string]interface{}{
		"username":         u.Username,
		"email":            u.Email,
		"first_name":       u.FirstName,
		"last_name":        u.LastName,
		"password_hash":    u.PasswordHash,
		"role":             string(u.Role),
		"phone":            u.Phone,
		"bio":              u.Bio,
		"age":              u.Age,
		"address":          u.Address,
		"is_verified":      u.IsVerified,
		"specialization":   "",
		"experience":       0,
		"consultation_fee": 0.0,
		"rating":           0.0,
		"blood_group":      "",
	}
	if d := u.DoctorDetails; d != nil {
		values["specialization"] = d.Specialization
		values["experience"] = d.Experience
		values["consultation_fee"] = d.ConsultationFee
		values["rating"] = d.Rating
	}
	if p := u.PatientDetails; p != nil {
		values["blood_group"] = p.BloodGroup
	}

	query, args, err := psql.Insert("users").SetMap(values).Suffix("RETURNING id, date_joined").ToSql()
	if err != nil {
		return fmt.Errorf("build user insert: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.DateJoined); err != nil {
		return mapError(err, "user")
	}
	return nil
}

func (s *UserStore) getOne(ctx context.Context, where sq.Sqlizer) (*models.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "user")
	}
	return u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getOne(ctx, sq.Eq{"id": id})
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getOne(ctx, sq.Eq{"username": username})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, sq.Eq{"email": email})
}

func (s *UserStore) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	if upd.Empty() {
		return s.GetByID(ctx, id)
	}

	set := map[string]interface{}{}
	if upd.FirstName != nil {
		set["first_name"] = *upd.FirstName
	}
	if upd.LastName != nil {
		set["last_name"] = *upd.LastName
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.Age != nil {
		set["age"] = *upd.Age
	}
	if upd.Address != nil {
		set["address"] = *upd.Address
	}
	if upd.IsVerified != nil {
		set["is_verified"] = *upd.IsVerified
	}
	if upd.Specialization != nil {
		set["specialization"] = *upd.Specialization
	}
	if upd.Experience != nil {
		set["experience"] = *upd.Experience
	}
	if upd.ConsultationFee != nil {
		set["consultation_fee"] = *upd.ConsultationFee
	}
	if upd.Rating != nil {
		set["rating"] = *upd.Rating
	}
	if upd.BloodGroup != nil {
		set["blood_group"] = *upd.BloodGroup
	}

	if err := execAffecting(ctx, s.db, psql.Update("users").SetMap(set).Where(sq.Eq{"id": id}), "user"); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// ListVerifiedDoctors returns verified doctors ordered by id.
func (s *UserStore) ListVerifiedDoctors(ctx context.Context) ([]*models.User, error) {
	return s.List(ctx, models.UserFilter{Role: models.RoleDoctor, Verified: boolPtr(true)})
}

func (s *UserStore) List(ctx context.Context, f models.UserFilter) ([]*models.User, error) {
	b := psql.Select(userColumns...).From("users").OrderBy("id ASC")
	if f.Role != "" {
		b = b.Where(sq.Eq{"role": string(f.Role)})
	}
	if f.Verified != nil {
		b = b.Where(sq.Eq{"is_verified": *f.Verified})
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		b = b.Where(sq.Or{
			sq.ILike{"username": p},
			sq.ILike{"email": p},
			sq.ILike{"first_name": p},
			sq.ILike{"last_name": p},
		})
	}
	b = paginate(b, f.Limit, f.Offset)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user list: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "user")
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Delete removes the user; profiles and appointments cascade.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, s.db, psql.Delete("users").Where(sq.Eq{"id": id}), "user")
}

func boolPtr(b bool) *bool { return &b }
