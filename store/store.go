// Package store persists users, patient profiles and appointments in
// PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"medicare-backend/shared/apperr"
)

// DB is satisfied by both *sql.DB and *sql.Tx.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type scanner interface {
	Scan(dest ...interface{}) error
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Postgres error codes the stores translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidDatetime     = "22007"
	codeDatetimeOverflow    = "22008"
)

// constraintFields names the API field behind each constraint the schema
// declares.
var constraintFields = map[string]string{
	"users_username_key":            "username",
	"users_email_key":               "email",
	"patient_profiles_user_id_key":  "user",
	"patient_profiles_user_id_fkey": "user",
	"appointments_active_slot_key":  "time",
	"appointments_patient_id_fkey":  "patient",
	"appointments_doctor_id_fkey":   "doctor",
}

func fieldFor(constraint string) string {
	if f, ok := constraintFields[constraint]; ok {
		return f
	}
	return "non_field_errors"
}

// mapError classifies driver errors. resource names the record for not-found
// messages and wrapping.
func mapError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			field := fieldFor(pqErr.Constraint)
			if pqErr.Constraint == "appointments_active_slot_key" {
				return apperr.Conflict(field, "the doctor already has an active appointment at this date and time")
			}
			return apperr.Conflict(field, fmt.Sprintf("a %s with this %s already exists", resource, field))
		case codeForeignKeyViolation:
			return apperr.FieldError(fieldFor(pqErr.Constraint), "referenced user does not exist")
		case codeCheckViolation:
			return apperr.FieldError(fieldFor(pqErr.Constraint), "value is not allowed")
		case codeInvalidDatetime, codeDatetimeOverflow:
			return apperr.FieldError("non_field_errors", "invalid date or time")
		}
	}
	return fmt.Errorf("%s: %w", resource, err)
}

func execAffecting(ctx context.Context, db DB, b sq.Sqlizer, resource string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s statement: %w", resource, err)
	}
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, resource)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", resource, err)
	}
	if n == 0 {
		return apperr.NotFound(resource)
	}
	return nil
}

func likePattern(s string) string {
	return "%" + s + "%"
}

func paginate(b sq.SelectBuilder, limit, offset uint64) sq.SelectBuilder {
	if limit > 0 {
		b = b.Limit(limit)
	}
	if offset > 0 {
		b = b.Offset(offset)
	}
	return b
}
