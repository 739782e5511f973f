package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jeanscarter/clinidesk/internal/model"
)

type historyRepository struct {
	provider *Provider
}

const historyColumns = `id, patient_id, fecha_consulta, motivo_consulta, antecedentes, examen_fisico, diagnostico, conducta, observaciones, medico`

func (r *historyRepository) Save(ctx context.Context, history *model.ClinicalHistory) error {
	return r.SaveWithAttachments(ctx, history, nil)
}

// SaveWithAttachments inserts the history and its attachments inside one
// transaction so a partial write is never observable.
func (r *historyRepository) SaveWithAttachments(ctx context.Context, history *model.ClinicalHistory, attachments []*model.Attachment) error {
	if history == nil {
		return fmt.Errorf("save history: history is nil")
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	if history.FechaConsulta.IsZero() {
		history.FechaConsulta = nowUTC()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.NewStorage("clinical_histories", fmt.Errorf("begin: %w", err))
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO clinical_histories(patient_id, fecha_consulta, motivo_consulta, antecedentes, examen_fisico, diagnostico, conducta, observaciones, medico)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, history.PatientID, fmtTime(history.FechaConsulta), history.MotivoConsulta,
		nullableString(history.Antecedentes), nullableString(history.ExamenFisico), nullableString(history.Diagnostico),
		nullableString(history.Conducta), nullableString(history.Observaciones), nullableString(history.Medico))
	if err != nil {
		_ = tx.Rollback()
		if isForeignKeyViolation(err) {
			return model.NewNotFound("patients", history.PatientID)
		}
		return model.NewStorage("clinical_histories", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return model.NewStorage("clinical_histories", fmt.Errorf("last insert id: %w", err))
	}
	history.ID = id

	for _, attachment := range attachments {
		attachment.ClinicalHistoryID = id
		if attachment.FechaCreacion.IsZero() {
			attachment.FechaCreacion = nowUTC()
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO attachments(clinical_history_id, nombre, ruta_archivo, tipo, tamano_bytes, fecha_creacion)
			VALUES(?, ?, ?, ?, ?, ?)
		`, attachment.ClinicalHistoryID, attachment.Nombre, attachment.RutaArchivo,
			nullableString(attachment.Tipo), attachment.TamanoBytes, fmtTime(attachment.FechaCreacion))
		if err != nil {
			_ = tx.Rollback()
			return model.NewStorage("attachments", err)
		}
		attachmentID, err := res.LastInsertId()
		if err != nil {
			_ = tx.Rollback()
			return model.NewStorage("attachments", fmt.Errorf("last insert id: %w", err))
		}
		attachment.ID = attachmentID
	}

	if err := tx.Commit(); err != nil {
		return model.NewStorage("clinical_histories", fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (r *historyRepository) FindByID(ctx context.Context, id int64) (*model.ClinicalHistory, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM clinical_histories WHERE id = ?`, id)
	history, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("clinical_histories", id)
		}
		return nil, model.NewStorage("clinical_histories", err)
	}
	return history, nil
}

func (r *historyRepository) ListByPatient(ctx context.Context, patientID int64) ([]model.ClinicalHistory, error) {
	return r.queryHistories(ctx, `
		SELECT `+historyColumns+` FROM clinical_histories
		WHERE patient_id = ?
		ORDER BY fecha_consulta DESC, id DESC
	`, patientID)
}

func (r *historyRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.ClinicalHistory, error) {
	return r.queryHistories(ctx, `
		SELECT `+historyColumns+` FROM clinical_histories
		WHERE fecha_consulta >= ? AND fecha_consulta <= ?
		ORDER BY fecha_consulta, id
	`, fmtTime(from), fmtTime(to))
}

func (r *historyRepository) Update(ctx context.Context, history *model.ClinicalHistory) error {
	if history == nil {
		return fmt.Errorf("update history: history is nil")
	}
	if history.ID <= 0 {
		return model.NewNotFound("clinical_histories", history.ID)
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE clinical_histories
		SET patient_id = ?, fecha_consulta = ?, motivo_consulta = ?, antecedentes = ?, examen_fisico = ?, diagnostico = ?, conducta = ?, observaciones = ?, medico = ?
		WHERE id = ?
	`, history.PatientID, fmtTime(history.FechaConsulta), history.MotivoConsulta,
		nullableString(history.Antecedentes), nullableString(history.ExamenFisico), nullableString(history.Diagnostico),
		nullableString(history.Conducta), nullableString(history.Observaciones), nullableString(history.Medico), history.ID)
	if err != nil {
		return model.NewStorage("clinical_histories", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return model.NewStorage("clinical_histories", fmt.Errorf("rows affected: %w", err))
	}
	if count == 0 {
		return model.NewNotFound("clinical_histories", history.ID)
	}
	return nil
}

func (r *historyRepository) Delete(ctx context.Context, id int64) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM clinical_histories WHERE id = ?`, id)
	if err != nil {
		return model.NewStorage("clinical_histories", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return model.NewStorage("clinical_histories", fmt.Errorf("rows affected: %w", err))
	}
	if count == 0 {
		return model.NewNotFound("clinical_histories", id)
	}
	return nil
}

func (r *historyRepository) queryHistories(ctx context.Context, query string, args ...any) ([]model.ClinicalHistory, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, model.NewStorage("clinical_histories", err)
	}
	defer rows.Close()

	var out []model.ClinicalHistory
	for rows.Next() {
		history, err := scanHistory(rows)
		if err != nil {
			return nil, model.NewStorage("clinical_histories", err)
		}
		out = append(out, *history)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorage("clinical_histories", fmt.Errorf("iterate: %w", err))
	}
	return out, nil
}

func scanHistory(scanner rowScanner) (*model.ClinicalHistory, error) {
	var (
		history       model.ClinicalHistory
		fechaConsulta string
		antecedentes  sql.NullString
		examenFisico  sql.NullString
		diagnostico   sql.NullString
		conducta      sql.NullString
		observaciones sql.NullString
		medico        sql.NullString
	)
	if err := scanner.Scan(&history.ID, &history.PatientID, &fechaConsulta, &history.MotivoConsulta,
		&antecedentes, &examenFisico, &diagnostico, &conducta, &observaciones, &medico); err != nil {
		return nil, err
	}

	consulted, err := parseTime(fechaConsulta)
	if err != nil {
		return nil, err
	}
	history.FechaConsulta = consulted
	history.Antecedentes = antecedentes.String
	history.ExamenFisico = examenFisico.String
	history.Diagnostico = diagnostico.String
	history.Conducta = conducta.String
	history.Observaciones = observaciones.String
	history.Medico = medico.String
	return &history, nil
}
