package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dentaheal/dentaheal-api/internal/models"
	"github.com/dentaheal/dentaheal-api/internal/stores"
)

func newAppointmentEnv(t *testing.T) (*AppointmentQueryService, *stores.MemoryAppointmentStore, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	appointments := stores.NewMemoryAppointmentStore()
	svc := NewAppointmentQueryService(appointments, env.accounts, env.exts, env.svc)
	return svc, appointments, env
}

func TestAppointmentsRequireDentist(t *testing.T) {
	svc, _, env := newAppointmentEnv(t)
	ctx := context.Background()
	patient := seedPatient(t, env, "alice@example.com", "Alice Martin", "0611111111")

	_, err := svc.ListForDentist(ctx, patient, "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.StatusSummary(ctx, patient)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListForDentistFiltersAndSorts(t *testing.T) {
	svc, appointments, env := newAppointmentEnv(t)
	ctx := context.Background()
	dentist := seedDentist(t, env)
	alice := seedPatient(t, env, "alice@example.com", "Alice Martin", "0611111111")

	appointments.Add(models.Appointment{
		ID: primitive.NewObjectID(), PatientID: alice.ID, DentistID: dentist.ID,
		Date: "2025-01-15", Time: "14:00", Duration: 45, Service: "Cleaning", Status: models.StatusConfirmed,
	})
	appointments.Add(models.Appointment{
		ID: primitive.NewObjectID(), PatientID: alice.ID, DentistID: dentist.ID,
		Date: "2025-01-15", Time: "09:00",
	})
	appointments.Add(models.Appointment{
		ID: primitive.NewObjectID(), PatientID: alice.ID, DentistID: dentist.ID,
		Date: "2025-01-16", Time: "10:00",
	})
	// Another dentist's appointment never shows up.
	appointments.Add(models.Appointment{
		ID: primitive.NewObjectID(), PatientID: alice.ID, DentistID: primitive.NewObjectID(),
		Date: "2025-01-15", Time: "11:00",
	})

	views, err := svc.ListForDentist(ctx, dentist, "2025-01-15")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "09:00", views[0].Time)
	assert.Equal(t, "14:00", views[1].Time)

	all, err := svc.ListForDentist(ctx, dentist, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.ListForDentist(ctx, dentist, "15/01/2025")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestListForDentistAppliesReadDefaults(t *testing.T) {
	svc, appointments, env := newAppointmentEnv(t)
	ctx := context.Background()
	dentist := seedDentist(t, env)
	alice := seedPatient(t, env, "alice@example.com", "Alice Martin", "0611111111")

	appointments.Add(models.Appointment{
		ID: primitive.NewObjectID(), PatientID: alice.ID, DentistID: dentist.ID,
		Date: "2025-01-15", Time: "09:00",
	})

	views, err := svc.ListForDentist(ctx, dentist, "")
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, 30, view.Duration)
	assert.Equal(t, "Consultation", view.Service)
	assert.Equal(t, models.StatusPending, view.Status)
	assert.Equal(t, "", view.Notes)
	assert.Equal(t, "Alice Martin", view.Patient)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.Equal(t, "0611111111", view.Phone)
}

func TestListForDentistDegradesMissingJoins(t *testing.T) {
	svc, appointments, env := newAppointmentEnv(t)
	ctx := context.Background()
	dentist := seedDentist(t, env)

	// Appointment referencing a patient that no longer resolves.
	appointments.Add(models.Appointment{
		ID: primitive.NewObjectID(), PatientID: primitive.NewObjectID(), DentistID: dentist.ID,
		Date: "2025-01-15", Time: "09:00",
	})

	views, err := svc.ListForDentist(ctx, dentist, "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Unknown", views[0].Patient)
	assert.Equal(t, "", views[0].Email)
	assert.Equal(t, "", views[0].Phone)
}

func TestStatusSummary(t *testing.T) {
	svc, appointments, env := newAppointmentEnv(t)
	ctx := context.Background()
	dentist := seedDentist(t, env)
	alice := seedPatient(t, env, "alice@example.com", "Alice Martin", "0611111111")

	add := func(status string) {
		appointments.Add(models.Appointment{
			ID: primitive.NewObjectID(), PatientID: alice.ID, DentistID: dentist.ID,
			Date: "2025-01-15", Time: "09:00", Status: status,
		})
	}
	add(models.StatusConfirmed)
	add(models.StatusConfirmed)
	add(models.StatusCompleted)
	add(models.StatusCancelled)
	add(models.StatusNoShow)
	add("") // unset status counts as pending

	summary, err := svc.StatusSummary(ctx, dentist)
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 2, summary.Confirmed)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 1, summary.Cancelled)
	assert.Equal(t, 1, summary.NoShow)
}
