package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

func TestMapError(t *testing.T) {
	t.Run("no rows is not found", func(t *testing.T) {
		err := mapError(sql.ErrNoRows, "appointment")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Equal(t, "appointment not found", err.Error())
	})

	t.Run("duplicate email is a conflict on email", func(t *testing.T) {
		err := mapError(&pq.Error{Code: "23505", Constraint: "users_email_key"}, "user")
		var appErr *apperr.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperr.KindConflict, appErr.Kind)
		assert.Contains(t, appErr.Fields, "email")
	})

	t.Run("active slot clash is a conflict on time", func(t *testing.T) {
		err := mapError(&pq.Error{Code: "23505", Constraint: "appointments_active_slot_key"}, "appointment")
		var appErr *apperr.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperr.KindConflict, appErr.Kind)
		assert.Contains(t, appErr.Fields, "time")
	})

	t.Run("missing doctor is a validation error on doctor", func(t *testing.T) {
		err := mapError(fmt.Errorf("insert: %w", &pq.Error{Code: "23503", Constraint: "appointments_doctor_id_fkey"}), "appointment")
		var appErr *apperr.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
		assert.Contains(t, appErr.Fields, "doctor")
	})

	t.Run("other errors are wrapped as internal", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := mapError(cause, "user")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, mapError(nil, "user"))
	})
}

func TestAppointmentListQuery(t *testing.T) {
	patient := int64(7)
	b := appointmentSelect().
		Where(sq.Eq{"a.patient_id": patient}).
		OrderBy("a.date DESC", "a.time DESC", "a.id DESC")
	b = paginate(b, 10, 20)

	query, args, err := b.ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "JOIN users d ON d.id = a.doctor_id")
	assert.Contains(t, query, "WHERE a.patient_id = $1")
	assert.Contains(t, query, "ORDER BY a.date DESC, a.time DESC, a.id DESC")
	assert.Contains(t, query, "LIMIT 10 OFFSET 20")
	assert.Equal(t, []interface{}{patient}, args)
}

func TestUserListQueryFilters(t *testing.T) {
	verified := true
	b := psql.Select("id").From("users").
		Where(sq.Eq{"role": string(models.RoleDoctor)}).
		Where(sq.Eq{"is_verified": verified})

	query, args, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE role = $1 AND is_verified = $2", query)
	assert.Equal(t, []interface{}{"doctor", true}, args)
}

type fakeRow struct {
	values []interface{}
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: got %d destinations, want %d", len(dest), len(r.values))
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *int:
			*d = v.(int)
		case *string:
			*d = v.(string)
		case *float64:
			*d = v.(float64)
		case *bool:
			*d = v.(bool)
		case *models.Role:
			*d = models.Role(v.(string))
		default:
			// pointer-to-pointer and time destinations stay zero
		}
	}
	return nil
}

func TestScanUserBuildsRoleVariant(t *testing.T) {
	row := func(role string) fakeRow {
		return fakeRow{values: []interface{}{
			int64(5), "dr.sarah", "sarah@medicare.com", "Sarah", "Johnson", "hash", role,
			"", "", nil, nil, "Cardiologist", 12,
			150.0, 4.5, true, "O+", nil,
		}}
	}

	doctor, err := scanUser(row("doctor"))
	require.NoError(t, err)
	require.NotNil(t, doctor.DoctorDetails)
	assert.Nil(t, doctor.PatientDetails)
	assert.Equal(t, "Cardiologist", doctor.Specialization)
	assert.Equal(t, 150.0, doctor.ConsultationFee)

	patient, err := scanUser(row("patient"))
	require.NoError(t, err)
	require.NotNil(t, patient.PatientDetails)
	assert.Nil(t, patient.DoctorDetails)
	assert.Equal(t, "O+", patient.BloodGroup)

	admin, err := scanUser(row("admin"))
	require.NoError(t, err)
	assert.NotNil(t, admin.AdminDetails)
	assert.Nil(t, admin.DoctorDetails)
	assert.Nil(t, admin.PatientDetails)
}
