package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jeanscarter/clinidesk/internal/model"
)

type patientRepository struct {
	provider *Provider
}

const patientColumns = `id, cedula, nombre, apellido, fecha_nacimiento, sexo, direccion, telefono, email, fecha_registro`

func (r *patientRepository) Save(ctx context.Context, patient *model.Patient) error {
	if patient == nil {
		return fmt.Errorf("save patient: patient is nil")
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	if patient.FechaRegistro.IsZero() {
		patient.FechaRegistro = nowUTC()
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO patients(cedula, nombre, apellido, fecha_nacimiento, sexo, direccion, telefono, email, fecha_registro)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, patient.Cedula, patient.Nombre, nullableString(patient.Apellido), nullableString(patient.FechaNacimiento),
		nullableString(patient.Sexo), nullableString(patient.Direccion), nullableString(patient.Telefono),
		nullableString(patient.Email), fmtTime(patient.FechaRegistro))
	if err != nil {
		return translateConstraint("patients", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.NewStorage("patients", fmt.Errorf("last insert id: %w", err))
	}
	patient.ID = id
	return nil
}

func (r *patientRepository) FindByID(ctx context.Context, id int64) (*model.Patient, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = ?`, id)
	patient, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("patients", id)
		}
		return nil, model.NewStorage("patients", err)
	}
	return patient, nil
}

func (r *patientRepository) FindByCedula(ctx context.Context, cedula string) (*model.Patient, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE cedula = ?`, cedula)
	patient, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &model.Error{Kind: model.KindNotFound, Entity: "patients", Field: "cedula"}
		}
		return nil, model.NewStorage("patients", err)
	}
	return patient, nil
}

func (r *patientRepository) FindAll(ctx context.Context) ([]model.Patient, error) {
	return r.queryPatients(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY apellido, nombre, id`)
}

func (r *patientRepository) SearchByName(ctx context.Context, term string) ([]model.Patient, error) {
	pattern := "%" + term + "%"
	return r.queryPatients(ctx, `
		SELECT `+patientColumns+` FROM patients
		WHERE nombre LIKE ? OR apellido LIKE ?
		ORDER BY apellido, nombre, id
	`, pattern, pattern)
}

func (r *patientRepository) ListPage(ctx context.Context, req PageRequest) ([]model.Patient, Page, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, Page{}, err
	}
	if req.Size <= 0 {
		return nil, Page{}, model.NewStorage("patients", fmt.Errorf("page size must be positive, got %d", req.Size))
	}
	if req.Index < 0 {
		req.Index = 0
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, Page{}, model.NewStorage("patients", err)
	}

	patients, err := r.queryPatients(ctx, `
		SELECT `+patientColumns+` FROM patients
		ORDER BY apellido, nombre, id
		LIMIT ? OFFSET ?
	`, req.Size, req.Index*req.Size)
	if err != nil {
		return nil, Page{}, err
	}

	return patients, newPage(total, req), nil
}

func newPage(totalRows int, req PageRequest) Page {
	page := Page{TotalRows: totalRows}
	page.TotalPages = (totalRows + req.Size - 1) / req.Size
	if totalRows == 0 {
		return page
	}
	page.RangeStart = req.Index*req.Size + 1
	page.RangeEnd = (req.Index + 1) * req.Size
	if page.RangeEnd > totalRows {
		page.RangeEnd = totalRows
	}
	if page.RangeStart > totalRows {
		page.RangeStart = 0
		page.RangeEnd = 0
	}
	return page
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	if patient == nil {
		return fmt.Errorf("update patient: patient is nil")
	}
	if patient.ID <= 0 {
		return model.NewNotFound("patients", patient.ID)
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE patients
		SET cedula = ?, nombre = ?, apellido = ?, fecha_nacimiento = ?, sexo = ?, direccion = ?, telefono = ?, email = ?, fecha_registro = ?
		WHERE id = ?
	`, patient.Cedula, patient.Nombre, nullableString(patient.Apellido), nullableString(patient.FechaNacimiento),
		nullableString(patient.Sexo), nullableString(patient.Direccion), nullableString(patient.Telefono),
		nullableString(patient.Email), fmtTime(patient.FechaRegistro), patient.ID)
	if err != nil {
		return translateConstraint("patients", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return model.NewStorage("patients", fmt.Errorf("rows affected: %w", err))
	}
	if count == 0 {
		return model.NewNotFound("patients", patient.ID)
	}
	return nil
}

// Delete removes the patient row; the schema's ON DELETE CASCADE removes the
// patient's clinical histories and, transitively, their attachments.
func (r *patientRepository) Delete(ctx context.Context, id int64) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return model.NewStorage("patients", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return model.NewStorage("patients", fmt.Errorf("rows affected: %w", err))
	}
	if count == 0 {
		return model.NewNotFound("patients", id)
	}
	return nil
}

func (r *patientRepository) queryPatients(ctx context.Context, query string, args ...any) ([]model.Patient, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, model.NewStorage("patients", err)
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, model.NewStorage("patients", err)
		}
		out = append(out, *patient)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorage("patients", fmt.Errorf("iterate: %w", err))
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(scanner rowScanner) (*model.Patient, error) {
	var (
		patient         model.Patient
		apellido        sql.NullString
		fechaNacimiento sql.NullString
		sexo            sql.NullString
		direccion       sql.NullString
		telefono        sql.NullString
		email           sql.NullString
		fechaRegistro   string
	)
	if err := scanner.Scan(&patient.ID, &patient.Cedula, &patient.Nombre, &apellido, &fechaNacimiento,
		&sexo, &direccion, &telefono, &email, &fechaRegistro); err != nil {
		return nil, err
	}

	registered, err := parseTime(fechaRegistro)
	if err != nil {
		return nil, err
	}
	patient.FechaRegistro = registered
	patient.Apellido = apellido.String
	patient.FechaNacimiento = fechaNacimiento.String
	patient.Sexo = sexo.String
	patient.Direccion = direccion.String
	patient.Telefono = telefono.String
	patient.Email = email.String
	return &patient, nil
}
