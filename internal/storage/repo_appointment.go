package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jeanscarter/clinidesk/internal/model"
)

type appointmentRepository struct {
	provider *Provider
}

const appointmentColumns = `id, patient_id, doctor_id, fecha, hora, motivo, estado, created_at`

func (r *appointmentRepository) Save(ctx context.Context, appointment *model.Appointment) error {
	if appointment == nil {
		return fmt.Errorf("save appointment: appointment is nil")
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = nowUTC()
	}
	if appointment.Estado == "" {
		appointment.Estado = model.AppointmentPending
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO appointments(patient_id, doctor_id, fecha, hora, motivo, estado, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`, appointment.PatientID, nullableInt64(appointment.DoctorID), appointment.Fecha, appointment.Hora,
		nullableString(appointment.Motivo), string(appointment.Estado), fmtTime(appointment.CreatedAt))
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.NewNotFound("patients", appointment.PatientID)
		}
		return model.NewStorage("appointments", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.NewStorage("appointments", fmt.Errorf("last insert id: %w", err))
	}
	appointment.ID = id
	return nil
}

func (r *appointmentRepository) FindByID(ctx context.Context, id int64) (*model.Appointment, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id)
	appointment, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("appointments", id)
		}
		return nil, model.NewStorage("appointments", err)
	}
	return appointment, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context) ([]model.Appointment, error) {
	return r.queryAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY fecha, hora, id`)
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]model.Appointment, error) {
	return r.queryAppointments(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE patient_id = ?
		ORDER BY fecha, hora, id
	`, patientID)
}

func (r *appointmentRepository) ListByStatus(ctx context.Context, status model.AppointmentStatus) ([]model.Appointment, error) {
	return r.queryAppointments(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE estado = ?
		ORDER BY fecha, hora, id
	`, string(status))
}

func (r *appointmentRepository) ListByDateRange(ctx context.Context, from, to string) ([]model.Appointment, error) {
	return r.queryAppointments(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE fecha >= ? AND fecha <= ?
		ORDER BY fecha, hora, id
	`, from, to)
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	if appointment == nil {
		return fmt.Errorf("update appointment: appointment is nil")
	}
	if appointment.ID <= 0 {
		return model.NewNotFound("appointments", appointment.ID)
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE appointments
		SET patient_id = ?, doctor_id = ?, fecha = ?, hora = ?, motivo = ?, estado = ?, created_at = ?
		WHERE id = ?
	`, appointment.PatientID, nullableInt64(appointment.DoctorID), appointment.Fecha, appointment.Hora,
		nullableString(appointment.Motivo), string(appointment.Estado), fmtTime(appointment.CreatedAt), appointment.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.NewNotFound("patients", appointment.PatientID)
		}
		return model.NewStorage("appointments", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return model.NewStorage("appointments", fmt.Errorf("rows affected: %w", err))
	}
	if count == 0 {
		return model.NewNotFound("appointments", appointment.ID)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id int64) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return model.NewStorage("appointments", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return model.NewStorage("appointments", fmt.Errorf("rows affected: %w", err))
	}
	if count == 0 {
		return model.NewNotFound("appointments", id)
	}
	return nil
}

func (r *appointmentRepository) queryAppointments(ctx context.Context, query string, args ...any) ([]model.Appointment, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, model.NewStorage("appointments", err)
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, model.NewStorage("appointments", err)
		}
		out = append(out, *appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorage("appointments", fmt.Errorf("iterate: %w", err))
	}
	return out, nil
}

func scanAppointment(scanner rowScanner) (*model.Appointment, error) {
	var (
		appointment model.Appointment
		doctorID    sql.NullInt64
		motivo      sql.NullString
		estado      string
		createdAt   string
	)
	if err := scanner.Scan(&appointment.ID, &appointment.PatientID, &doctorID, &appointment.Fecha,
		&appointment.Hora, &motivo, &estado, &createdAt); err != nil {
		return nil, err
	}

	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	appointment.CreatedAt = created
	appointment.Estado = model.AppointmentStatus(estado)
	appointment.Motivo = motivo.String
	if doctorID.Valid {
		appointment.DoctorID = &doctorID.Int64
	}
	return &appointment, nil
}
