package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeanscarter/clinidesk/internal/model"
)

func savedAppointment(t *testing.T, store *Store, patientID int64, fecha string, estado model.AppointmentStatus) *model.Appointment {
	t.Helper()
	appointment := &model.Appointment{
		PatientID: patientID,
		Fecha:     fecha,
		Hora:      "10:00",
		Motivo:    "consulta general",
		Estado:    estado,
	}
	require.NoError(t, store.Appointments.Save(context.Background(), appointment))
	return appointment
}

func TestAppointmentSaveDefaultsToPending(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	patient := savedPatient(t, store, "V-50000001")
	appointment := &model.Appointment{PatientID: patient.ID, Fecha: "2026-09-01", Hora: "09:30"}
	require.NoError(t, store.Appointments.Save(ctx, appointment))
	require.Positive(t, appointment.ID)

	got, err := store.Appointments.FindByID(ctx, appointment.ID)
	require.NoError(t, err)
	require.Equal(t, model.AppointmentPending, got.Estado)
	require.Nil(t, got.DoctorID)
}

func TestAppointmentSaveRequiresExistingPatient(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	appointment := &model.Appointment{PatientID: 7777, Fecha: "2026-09-01", Hora: "09:30"}
	err := store.Appointments.Save(context.Background(), appointment)
	require.True(t, model.IsNotFound(err))
}

func TestAppointmentDoctorReference(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	patient := savedPatient(t, store, "V-50000002")
	doctor := testAccount("doctor1")
	require.NoError(t, store.Accounts.Save(ctx, doctor))

	appointment := &model.Appointment{
		PatientID: patient.ID,
		DoctorID:  &doctor.ID,
		Fecha:     "2026-09-02",
		Hora:      "11:00",
	}
	require.NoError(t, store.Appointments.Save(ctx, appointment))

	got, err := store.Appointments.FindByID(ctx, appointment.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DoctorID)
	require.Equal(t, doctor.ID, *got.DoctorID)
}

func TestAppointmentListByStatus(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	patient := savedPatient(t, store, "V-50000003")
	savedAppointment(t, store, patient.ID, "2026-09-01", model.AppointmentPending)
	savedAppointment(t, store, patient.ID, "2026-09-02", model.AppointmentCompleted)
	savedAppointment(t, store, patient.ID, "2026-09-03", model.AppointmentPending)

	pending, err := store.Appointments.ListByStatus(ctx, model.AppointmentPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	completed, err := store.Appointments.ListByStatus(ctx, model.AppointmentCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	require.Equal(t, "2026-09-02", completed[0].Fecha)
}

func TestAppointmentListByDateRangeAndPatient(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	patient := savedPatient(t, store, "V-50000004")
	other := savedPatient(t, store, "V-50000005")
	savedAppointment(t, store, patient.ID, "2026-09-01", model.AppointmentPending)
	savedAppointment(t, store, patient.ID, "2026-09-15", model.AppointmentPending)
	savedAppointment(t, store, other.ID, "2026-10-01", model.AppointmentPending)

	got, err := store.Appointments.ListByDateRange(ctx, "2026-09-01", "2026-09-30")
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = store.Appointments.ListByPatient(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "2026-10-01", got[0].Fecha)
}

func TestAppointmentUpdateStatus(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	patient := savedPatient(t, store, "V-50000006")
	appointment := savedAppointment(t, store, patient.ID, "2026-09-01", model.AppointmentPending)

	appointment.Estado = model.AppointmentInProgress
	require.NoError(t, store.Appointments.Update(ctx, appointment))

	got, err := store.Appointments.FindByID(ctx, appointment.ID)
	require.NoError(t, err)
	require.Equal(t, model.AppointmentInProgress, got.Estado)

	ghost := &model.Appointment{PatientID: patient.ID, Fecha: "2026-09-09", Hora: "08:00", Estado: model.AppointmentPending}
	require.True(t, model.IsNotFound(store.Appointments.Update(ctx, ghost)))
}

func TestAppointmentDeletedWithPatient(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	patient := savedPatient(t, store, "V-50000007")
	savedAppointment(t, store, patient.ID, "2026-09-01", model.AppointmentPending)

	require.NoError(t, store.Patients.Delete(ctx, patient.ID))

	got, err := store.Appointments.ListByPatient(ctx, patient.ID)
	require.NoError(t, err)
	require.Empty(t, got)
}
