package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jeanscarter/clinidesk/internal/model"
)

type attachmentRepository struct {
	provider *Provider
}

const attachmentColumns = `id, clinical_history_id, nombre, ruta_archivo, tipo, tamano_bytes, fecha_creacion`

func (r *attachmentRepository) Save(ctx context.Context, attachment *model.Attachment) error {
	if attachment == nil {
		return fmt.Errorf("save attachment: attachment is nil")
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	if attachment.FechaCreacion.IsZero() {
		attachment.FechaCreacion = nowUTC()
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO attachments(clinical_history_id, nombre, ruta_archivo, tipo, tamano_bytes, fecha_creacion)
		VALUES(?, ?, ?, ?, ?, ?)
	`, attachment.ClinicalHistoryID, attachment.Nombre, attachment.RutaArchivo,
		nullableString(attachment.Tipo), attachment.TamanoBytes, fmtTime(attachment.FechaCreacion))
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.NewNotFound("clinical_histories", attachment.ClinicalHistoryID)
		}
		return model.NewStorage("attachments", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.NewStorage("attachments", fmt.Errorf("last insert id: %w", err))
	}
	attachment.ID = id
	return nil
}

func (r *attachmentRepository) FindByID(ctx context.Context, id int64) (*model.Attachment, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+attachmentColumns+` FROM attachments WHERE id = ?`, id)
	attachment, err := scanAttachment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("attachments", id)
		}
		return nil, model.NewStorage("attachments", err)
	}
	return attachment, nil
}

func (r *attachmentRepository) ListByHistory(ctx context.Context, historyID int64) ([]model.Attachment, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+attachmentColumns+` FROM attachments
		WHERE clinical_history_id = ?
		ORDER BY fecha_creacion, id
	`, historyID)
	if err != nil {
		return nil, model.NewStorage("attachments", err)
	}
	defer rows.Close()

	var out []model.Attachment
	for rows.Next() {
		attachment, err := scanAttachment(rows)
		if err != nil {
			return nil, model.NewStorage("attachments", err)
		}
		out = append(out, *attachment)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorage("attachments", fmt.Errorf("iterate: %w", err))
	}
	return out, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id int64) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id)
	if err != nil {
		return model.NewStorage("attachments", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return model.NewStorage("attachments", fmt.Errorf("rows affected: %w", err))
	}
	if count == 0 {
		return model.NewNotFound("attachments", id)
	}
	return nil
}

func scanAttachment(scanner rowScanner) (*model.Attachment, error) {
	var (
		attachment    model.Attachment
		tipo          sql.NullString
		tamanoBytes   sql.NullInt64
		fechaCreacion string
	)
	if err := scanner.Scan(&attachment.ID, &attachment.ClinicalHistoryID, &attachment.Nombre,
		&attachment.RutaArchivo, &tipo, &tamanoBytes, &fechaCreacion); err != nil {
		return nil, err
	}

	created, err := parseTime(fechaCreacion)
	if err != nil {
		return nil, err
	}
	attachment.FechaCreacion = created
	attachment.Tipo = tipo.String
	attachment.TamanoBytes = tamanoBytes.Int64
	return &attachment, nil
}
