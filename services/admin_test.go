package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicare-backend/models"
	"medicare-backend/shared/apperr"
)

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Len(t, report.Created, 9)
	assert.Empty(t, report.Skipped)

	report, err = f.seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Created)
	assert.Len(t, report.Skipped, 9)

	assert.Equal(t, int64(1), f.user(t, "admin").ID)
	james := f.user(t, "dr.james")
	assert.Equal(t, int64(5), james.ID)
	assert.Equal(t, 200.0, james.DoctorDetails.ConsultationFee)
	assert.Equal(t, 4.5, james.Rating)
	assert.Equal(t, "AB+", f.user(t, "sophia.wilson").BloodGroup)

	_, err = f.auth.Login(ctx, "admin@medicare.com", "Admin@123")
	assert.NoError(t, err)
}

func TestAdminListUsers(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()
	f.register(t, "pending.doc@example.com", models.RoleDoctor)

	unverified, err := f.admin.ListUsers(ctx, models.UserFilter{Role: models.RoleDoctor, Verified: boolPtr(false)})
	require.NoError(t, err)
	require.Len(t, unverified, 1)
	assert.Equal(t, "pending.doc@example.com", unverified[0].Username)

	found, err := f.admin.ListUsers(ctx, models.UserFilter{Search: "WILSON"})
	require.NoError(t, err)
	require.Len(t, found, 2)

	paged, err := f.admin.ListUsers(ctx, models.UserFilter{Limit: 3, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 3)
	assert.Equal(t, int64(2), paged[0].ID)

	_, err = f.admin.ListUsers(ctx, models.UserFilter{Role: "nurse"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAdminVerifiesDoctor(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()
	admin := f.user(t, "admin")
	doc := f.register(t, "pending.doc@example.com", models.RoleDoctor)

	updated, err := f.admin.UpdateUser(ctx, admin, doc.ID, ProfileInput{IsVerified: boolPtr(true), Rating: floatPtr(4.8)})
	require.NoError(t, err)
	assert.True(t, updated.IsVerified)
	assert.Equal(t, 4.8, updated.Rating)

	doctors, err := f.accounts.ListDoctors(ctx)
	require.NoError(t, err)
	assert.Len(t, doctors, 5)

	patient := f.user(t, "john.smith")
	_, err = f.admin.UpdateUser(ctx, admin, patient.ID, ProfileInput{Rating: floatPtr(3)})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, fieldsOf(t, err), "rating")

	_, err = f.admin.UpdateUser(ctx, admin, 999, ProfileInput{IsVerified: boolPtr(true)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAdminDeleteUserCascades(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()
	admin := f.user(t, "admin")
	john := f.user(t, "john.smith")
	sarah := f.user(t, "dr.sarah")

	f.book(t, john, sarah.ID, "2024-06-01", "09:00")
	_, err := f.profiles.GetOrCreate(ctx, john)
	require.NoError(t, err)

	require.NoError(t, f.admin.DeleteUser(ctx, admin, john.ID))

	appointments, err := f.admin.ListAppointments(ctx, models.AppointmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, appointments)

	profiles, err := f.admin.ListPatientProfiles(ctx, models.PatientProfileFilter{})
	require.NoError(t, err)
	assert.Empty(t, profiles)

	assert.ErrorIs(t, f.admin.DeleteUser(ctx, admin, admin.ID), apperr.ErrAuthorization)
	assert.ErrorIs(t, f.admin.DeleteUser(ctx, admin, john.ID), apperr.ErrNotFound)
}

func TestAdminListAppointmentsFilters(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()
	john := f.user(t, "john.smith")
	emma := f.user(t, "emma.davis")
	sarah := f.user(t, "dr.sarah")
	james := f.user(t, "dr.james")

	f.book(t, john, sarah.ID, "2024-06-01", "09:00")
	f.book(t, emma, james.ID, "2024-06-01", "10:00")
	cancelled := f.book(t, emma, sarah.ID, "2024-06-02", "10:00")
	_, err := f.appointments.Update(ctx, emma, cancelled.ID, AppointmentUpdateInput{Status: statusPtr(models.StatusCancelled)}, true)
	require.NoError(t, err)

	bySearch, err := f.admin.ListAppointments(ctx, models.AppointmentFilter{Search: "emma"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)

	byDoctorName, err := f.admin.ListAppointments(ctx, models.AppointmentFilter{Search: "dr.sarah"})
	require.NoError(t, err)
	assert.Len(t, byDoctorName, 2)

	byStatus, err := f.admin.ListAppointments(ctx, models.AppointmentFilter{Status: models.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, cancelled.ID, byStatus[0].ID)

	byDate, err := f.admin.ListAppointments(ctx, models.AppointmentFilter{Date: "2024-06-01"})
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	_, err = f.admin.ListAppointments(ctx, models.AppointmentFilter{Status: "archived"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.admin.ListAppointments(ctx, models.AppointmentFilter{Date: "June"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAdminListPatientProfiles(t *testing.T) {
	f := seeded(t)
	ctx := context.Background()
	for _, name := range []string{"john.smith", "emma.davis"} {
		_, err := f.profiles.GetOrCreate(ctx, f.user(t, name))
		require.NoError(t, err)
	}

	profiles, err := f.admin.ListPatientProfiles(ctx, models.PatientProfileFilter{Search: "emma"})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "emma.davis", profiles[0].Username)
}
