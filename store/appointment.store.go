package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"medicare-backend/models"
)

var appointmentColumns = []string{
	"a.id", "a.patient_id", "a.doctor_id",
	"to_char(a.date, 'YYYY-MM-DD')", "to_char(a.time, 'HH24:MI')",
	"a.status", "a.notes", "a.consultation_fee", "a.created_at",
	"p.username", "p.email", "p.first_name", "p.last_name", "p.role",
	"d.username", "d.email", "d.first_name", "d.last_name", "d.role", "d.specialization",
}

type AppointmentStore struct {
	db DB
}

func NewAppointmentStore(db DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

func scanAppointment(row scanner) (*models.Appointment, error) {
	a := &models.Appointment{
		Patient: &models.UserSummary{},
		Doctor:  &models.UserSummary{},
	}
	var specialization string
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time,
		&a.Status, &a.Notes, &a.ConsultationFee, &a.CreatedAt,
		&a.Patient.Username, &a.Patient.Email, &a.Patient.FirstName, &a.Patient.LastName, &a.Patient.Role,
		&a.Doctor.Username, &a.Doctor.Email, &a.Doctor.FirstName, &a.Doctor.LastName, &a.Doctor.Role, &specialization,
	)
	if err != nil {
		return nil, err
	}
	a.Patient.ID = a.PatientID
	a.Doctor.ID = a.DoctorID
	if a.Doctor.Role == models.RoleDoctor {
		a.Doctor.Specialization = specialization
	}
	return a, nil
}

func appointmentSelect() sq.SelectBuilder {
	return psql.Select(appointmentColumns...).
		From("appointments a").
		Join("users p ON p.id = a.patient_id").
		Join("users d ON d.id = a.doctor_id")
}

// Create inserts a and fills in its id, creation time and party summaries.
func (s *AppointmentStore) Create(ctx context.Context, a *models.Appointment) error {
	if a.Status == "" {
		a.Status = models.StatusPending
	}
	query, args, err := psql.Insert("appointments").
		Columns("patient_id", "doctor_id", "date", "time", "status", "notes", "consultation_fee").
		Values(a.PatientID, a.DoctorID, a.Date, a.Time, string(a.Status), a.Notes, a.ConsultationFee).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build appointment insert: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&a.ID); err != nil {
		return mapError(err, "appointment")
	}

	created, err := s.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	*a = *created
	return nil
}

func (s *AppointmentStore) GetByID(ctx context.Context, id int64) (*models.Appointment, error) {
	query, args, err := appointmentSelect().Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build appointment query: %w", err)
	}
	a, err := scanAppointment(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "appointment")
	}
	return a, nil
}

// List returns appointments matching f, newest slot first.
func (s *AppointmentStore) List(ctx context.Context, f models.AppointmentFilter) ([]*models.Appointment, error) {
	b := appointmentSelect().OrderBy("a.date DESC", "a.time DESC", "a.id DESC")
	if f.PatientID != nil {
		b = b.Where(sq.Eq{"a.patient_id": *f.PatientID})
	}
	if f.DoctorID != nil {
		b = b.Where(sq.Eq{"a.doctor_id": *f.DoctorID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"a.status": string(f.Status)})
	}
	if f.Date != "" {
		b = b.Where(sq.Eq{"a.date": f.Date})
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		b = b.Where(sq.Or{sq.ILike{"p.username": p}, sq.ILike{"d.username": p}})
	}
	b = paginate(b, f.Limit, f.Offset)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build appointment list: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "appointment")
	}
	defer rows.Close()

	appointments := []*models.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return appointments, nil
}

func (s *AppointmentStore) Update(ctx context.Context, id int64, upd models.AppointmentUpdate) (*models.Appointment, error) {
	if upd.Empty() {
		return s.GetByID(ctx, id)
	}

	set := map[string]interface{}{}
	if upd.DoctorID != nil {
		set["doctor_id"] = *upd.DoctorID
	}
	if upd.Date != nil {
		set["date"] = *upd.Date
	}
	if upd.Time != nil {
		set["time"] = *upd.Time
	}
	if upd.Status != nil {
		set["status"] = string(*upd.Status)
	}
	if upd.Notes != nil {
		set["notes"] = *upd.Notes
	}
	if upd.ConsultationFee != nil {
		set["consultation_fee"] = *upd.ConsultationFee
	}

	b := psql.Update("appointments").SetMap(set).Where(sq.Eq{"id": id})
	if err := execAffecting(ctx, s.db, b, "appointment"); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *AppointmentStore) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, s.db, psql.Delete("appointments").Where(sq.Eq{"id": id}), "appointment")
}
