package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"medicare-backend/models"
	"medicare-backend/shared/security"
	"medicare-backend/store/memstore"
)

type fixture struct {
	db           *memstore.DB
	tokens       *security.TokenManager
	accounts     *Accounts
	auth         *Auth
	profiles     *PatientProfiles
	appointments *Appointments
	admin        *Admin
	seeder       *Seeder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memstore.New()
	users := db.Users()
	passwords := Passwords{Cost: bcrypt.MinCost}
	logger := zerolog.Nop()
	tokens := security.NewTokenManager("test-secret", 24*time.Hour, 7*24*time.Hour)

	accounts := NewAccounts(users, passwords, logger)
	return &fixture{
		db:           db,
		tokens:       tokens,
		accounts:     accounts,
		auth:         NewAuth(users, tokens, passwords, logger),
		profiles:     NewPatientProfiles(db.Profiles(), logger),
		appointments: NewAppointments(db.Appointments(), users, logger),
		admin:        NewAdmin(accounts, users, db.Profiles(), db.Appointments(), logger),
		seeder:       NewSeeder(users, passwords, logger),
	}
}

// seeded returns a fixture with the demo accounts: admin is id 1, dr.sarah
// to dr.james are ids 2 to 5, the patients ids 6 to 9.
func seeded(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	_, err := f.seeder.Seed(context.Background())
	require.NoError(t, err)
	return f
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := f.db.Users().GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return u
}

func (f *fixture) register(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u, err := f.accounts.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "password123",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) book(t *testing.T, patient *models.User, doctorID int64, date, clock string) *models.Appointment {
	t.Helper()
	a, err := f.appointments.Create(context.Background(), patient, AppointmentInput{
		Doctor: doctorID,
		Date:   date,
		Time:   clock,
	})
	require.NoError(t, err)
	return a
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool { return &b }
func int64Ptr(i int64) *int64 { return &i }
func statusPtr(s models.AppointmentStatus) *models.AppointmentStatus { return &s }
