package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeanscarter/clinidesk/internal/model"
)

func TestHistorySaveRequiresExistingPatient(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	history := &model.ClinicalHistory{
		PatientID:      9999,
		FechaConsulta:  time.Now().UTC(),
		MotivoConsulta: "control",
	}
	err := store.Histories.Save(ctx, history)
	require.True(t, model.IsNotFound(err))
}

func TestHistorySaveWithAttachmentsIsAtomic(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	patient := savedPatient(t, store, "V-40000001")
	history := &model.ClinicalHistory{
		PatientID:      patient.ID,
		FechaConsulta:  time.Now().UTC(),
		MotivoConsulta: "dolor abdominal",
		Diagnostico:    "gastritis",
		Medico:         "Dra. Blanco",
	}
	attachments := []*model.Attachment{
		{Nombre: "eco.pdf", RutaArchivo: "/tmp/eco.pdf", Tipo: "application/pdf", TamanoBytes: 4096},
		{Nombre: "lab.pdf", RutaArchivo: "/tmp/lab.pdf", Tipo: "application/pdf", TamanoBytes: 1024},
	}
	require.NoError(t, store.Histories.SaveWithAttachments(ctx, history, attachments))
	require.Positive(t, history.ID)
	for _, attachment := range attachments {
		require.Positive(t, attachment.ID)
		require.Equal(t, history.ID, attachment.ClinicalHistoryID)
	}

	got, err := store.Attachments.ListByHistory(ctx, history.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestHistoryListByPatientOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	patient := savedPatient(t, store, "V-40000002")
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		history := &model.ClinicalHistory{
			PatientID:      patient.ID,
			FechaConsulta:  base.AddDate(0, 0, i),
			MotivoConsulta: "control",
		}
		require.NoError(t, store.Histories.Save(ctx, history))
	}

	histories, err := store.Histories.ListByPatient(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, histories, 3)
	require.True(t, histories[0].FechaConsulta.After(histories[1].FechaConsulta))
	require.True(t, histories[1].FechaConsulta.After(histories[2].FechaConsulta))
}

func TestHistoryListByDateRange(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	patient := savedPatient(t, store, "V-40000003")
	days := []time.Time{
		time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		history := &model.ClinicalHistory{PatientID: patient.ID, FechaConsulta: day, MotivoConsulta: "control"}
		require.NoError(t, store.Histories.Save(ctx, history))
	}

	got, err := store.Histories.ListByDateRange(ctx,
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, days[1], got[0].FechaConsulta)
}

func TestHistoryUpdateAndDelete(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	patient := savedPatient(t, store, "V-40000004")
	history := savedHistory(t, store, patient.ID)

	history.Diagnostico = "faringitis"
	require.NoError(t, store.Histories.Update(ctx, history))

	got, err := store.Histories.FindByID(ctx, history.ID)
	require.NoError(t, err)
	require.Equal(t, "faringitis", got.Diagnostico)

	require.NoError(t, store.Histories.Delete(ctx, history.ID))
	_, err = store.Histories.FindByID(ctx, history.ID)
	require.True(t, model.IsNotFound(err))

	require.True(t, model.IsNotFound(store.Histories.Delete(ctx, history.ID)))

	ghost := &model.ClinicalHistory{PatientID: patient.ID, FechaConsulta: time.Now().UTC(), MotivoConsulta: "x"}
	require.True(t, model.IsNotFound(store.Histories.Update(ctx, ghost)))
}

func TestHistoryDeleteCascadesAttachments(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	patient := savedPatient(t, store, "V-40000005")
	history := &model.ClinicalHistory{PatientID: patient.ID, FechaConsulta: time.Now().UTC(), MotivoConsulta: "control"}
	require.NoError(t, store.Histories.SaveWithAttachments(ctx, history, []*model.Attachment{
		{Nombre: "rx.png", RutaArchivo: "/tmp/rx.png"},
	}))

	require.NoError(t, store.Histories.Delete(ctx, history.ID))

	attachments, err := store.Attachments.ListByHistory(ctx, history.ID)
	require.NoError(t, err)
	require.Empty(t, attachments)
}
