// Package services holds one explicit function per domain operation. Inputs
// are validated here, stores do the persistence.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
	"medicare-backend/shared/security"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	ListVerifiedDoctors(ctx context.Context) ([]*models.User, error)
	List(ctx context.Context, f models.UserFilter) ([]*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type PatientProfileStore interface {
	GetOrCreate(ctx context.Context, userID int64) (*models.PatientProfile, error)
	Update(ctx context.Context, userID int64, upd models.PatientProfileUpdate) (*models.PatientProfile, error)
	List(ctx context.Context, f models.PatientProfileFilter) ([]*models.PatientProfile, error)
}

type AppointmentStore interface {
	Create(ctx context.Context, a *models.Appointment) error
	GetByID(ctx context.Context, id int64) (*models.Appointment, error)
	List(ctx context.Context, f models.AppointmentFilter) ([]*models.Appointment, error)
	Update(ctx context.Context, id int64, upd models.AppointmentUpdate) (*models.Appointment, error)
	Delete(ctx context.Context, id int64) error
}

// TokenIssuer is implemented by *security.TokenManager.
type TokenIssuer interface {
	IssueTokens(u *models.User) (security.TokenPair, error)
	RefreshAccess(refreshToken string) (string, error)
}

var validate = apperr.NewValidator()

// validateInput runs the struct tags of in and merges extra field errors.
func validateInput(in interface{}, extra map[string]string) error {
	fields := map[string]string{}
	if err := validate.Struct(in); err != nil {
		fields = apperr.FromValidator(err).Fields
	}
	for k, v := range extra {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

const minPasswordLength = 8

const passwordTooShort = "Password must be at least 8 characters long."

// Passwords hashes with bcrypt. A zero Cost means bcrypt.DefaultCost.
type Passwords struct {
	Cost int
}

func (p Passwords) Hash(plain string) (string, error) {
	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (p Passwords) Matches(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// parseDate checks a YYYY-MM-DD date.
func parseDate(s string) (string, bool) {
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return d.Format(models.DateLayout), true
}

// parseClock accepts HH:MM or HH:MM:SS and returns HH:MM.
func parseClock(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{models.TimeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(models.TimeLayout), true
		}
	}
	return "", false
}
