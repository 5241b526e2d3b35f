package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

type seedAccount struct {
	identity models.Identity
	password string
	doctor   *models.DoctorDetails
	patient  *models.PatientDetails
}

func seedDoctor(username, email, first, last, specialization string, experience int, fee float64) seedAccount {
	return seedAccount{
		identity: models.Identity{
			Username: username, Email: email, FirstName: first, LastName: last,
			Role: models.RoleDoctor, Phone: "+1 234 567 8901", IsVerified: true,
		},
		password: "Doctor@123",
		doctor: &models.DoctorDetails{
			Specialization: specialization, Experience: experience, ConsultationFee: fee, Rating: 4.5,
		},
	}
}

func seedPatient(username, email, first, last, bloodGroup string) seedAccount {
	return seedAccount{
		identity: models.Identity{
			Username: username, Email: email, FirstName: first, LastName: last,
			Role: models.RolePatient, Phone: "+1 234 567 8910", IsVerified: true,
		},
		password: "Patient@123",
		patient:  &models.PatientDetails{BloodGroup: bloodGroup},
	}
}

// demoAccounts is created in order, so a fresh database gives the admin id 1
// and the doctors ids 2 to 5.
var demoAccounts = []seedAccount{
	{
		identity: models.Identity{
			Username: "admin", Email: "admin@medicare.com", FirstName: "System", LastName: "Administrator",
			Role: models.RoleAdmin, Phone: "+1 234 567 8900", IsVerified: true,
			Bio: "System administrator with full control over MediCare platform.",
		},
		password: "Admin@123",
	},
	seedDoctor("dr.sarah", "sarah.johnson@medicare.com", "Sarah", "Johnson", "Cardiologist", 12, 150),
	seedDoctor("dr.michael", "michael.chen@medicare.com", "Michael", "Chen", "Dermatologist", 8, 120),
	seedDoctor("dr.emily", "emily.rodriguez@medicare.com", "Emily", "Rodriguez", "Pediatrician", 15, 100),
	seedDoctor("dr.james", "james.wilson@medicare.com", "James", "Wilson", "Orthopedic", 20, 200),
	seedPatient("john.smith", "john.smith@email.com", "John", "Smith", "A+"),
	seedPatient("emma.davis", "emma.davis@email.com", "Emma", "Davis", "O+"),
	seedPatient("david.brown", "david.brown@email.com", "David", "Brown", "B-"),
	seedPatient("sophia.wilson", "sophia.wilson@email.com", "Sophia", "Wilson", "AB+"),
}

type SeedReport struct {
	Created []string
	Skipped []string
}

type Seeder struct {
	users     UserStore
	passwords Passwords
	log       zerolog.Logger
}

func NewSeeder(users UserStore, passwords Passwords, logger zerolog.Logger) *Seeder {
	return &Seeder{users: users, passwords: passwords, log: logger}
}

// Seed creates the demo accounts that do not exist yet. Running it twice is
// harmless.
func (s *Seeder) Seed(ctx context.Context) (SeedReport, error) {
	var report SeedReport
	for _, acct := range demoAccounts {
		_, err := s.users.GetByUsername(ctx, acct.identity.Username)
		if err == nil {
			report.Skipped = append(report.Skipped, acct.identity.Username)
			continue
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return report, err
		}

		hash, err := s.passwords.Hash(acct.password)
		if err != nil {
			return report, err
		}
		identity := acct.identity
		identity.PasswordHash = hash
		user := &models.User{Identity: identity}
		if acct.doctor != nil {
			d := *acct.doctor
			user.DoctorDetails = &d
		}
		if acct.patient != nil {
			p := *acct.patient
			user.PatientDetails = &p
		}
		user.Normalize()

		if err := s.users.Create(ctx, user); err != nil {
			return report, err
		}
		report.Created = append(report.Created, user.Username)
		s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Str("role", string(user.Role)).Msg("seeded account")
	}
	return report, nil
}
