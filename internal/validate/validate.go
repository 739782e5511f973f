// Package validate holds the pure field-level rules applied to an entity
// before it reaches storage. Rules never touch the database and return the
// full ordered list of violations; an empty list means valid.
package validate

import (
	"regexp"
	"strings"

	"github.com/jeanscarter/clinidesk/internal/model"
)

var (
	cedulaPattern = regexp.MustCompile(`^[A-Za-z]?[-. ]?[0-9]{5,10}$`)
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
	phonePattern  = regexp.MustCompile(`^[0-9+\-() ]{7,20}$`)
)

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func Patient(p *model.Patient) []string {
	var violations []string
	if blank(p.Cedula) {
		violations = append(violations, "cedula is required")
	} else if !cedulaPattern.MatchString(strings.TrimSpace(p.Cedula)) {
		violations = append(violations, "cedula has an invalid format")
	}
	if blank(p.Nombre) {
		violations = append(violations, "nombre is required")
	}
	if !blank(p.Email) && !emailPattern.MatchString(strings.TrimSpace(p.Email)) {
		violations = append(violations, "email has an invalid format")
	}
	if !blank(p.Telefono) && !phonePattern.MatchString(strings.TrimSpace(p.Telefono)) {
		violations = append(violations, "telefono has an invalid format")
	}
	return violations
}

func PatientForUpdate(p *model.Patient) []string {
	violations := requireID(p.ID)
	return append(violations, Patient(p)...)
}

func History(h *model.ClinicalHistory) []string {
	var violations []string
	if h.PatientID <= 0 {
		violations = append(violations, "patient id is required")
	}
	if h.FechaConsulta.IsZero() {
		violations = append(violations, "fecha de consulta is required")
	}
	if blank(h.MotivoConsulta) {
		violations = append(violations, "motivo de consulta is required")
	}
	return violations
}

func HistoryForUpdate(h *model.ClinicalHistory) []string {
	violations := requireID(h.ID)
	return append(violations, History(h)...)
}

func Attachment(a *model.Attachment) []string {
	var violations []string
	if a.ClinicalHistoryID <= 0 {
		violations = append(violations, "clinical history id is required")
	}
	if blank(a.Nombre) {
		violations = append(violations, "nombre is required")
	}
	if blank(a.RutaArchivo) {
		violations = append(violations, "ruta de archivo is required")
	}
	return violations
}

func Account(a *model.Account) []string {
	var violations []string
	if blank(a.Username) {
		violations = append(violations, "username is required")
	}
	if blank(a.PasswordHash) {
		violations = append(violations, "password hash is required")
	}
	if blank(a.Salt) {
		violations = append(violations, "salt is required")
	}
	if !a.Role.Valid() {
		violations = append(violations, "role is invalid")
	}
	if blank(a.FullName) {
		violations = append(violations, "full name is required")
	}
	return violations
}

func AccountForUpdate(a *model.Account) []string {
	violations := requireID(a.ID)
	return append(violations, Account(a)...)
}

func Appointment(a *model.Appointment) []string {
	var violations []string
	if a.PatientID <= 0 {
		violations = append(violations, "patient id is required")
	}
	if blank(a.Fecha) {
		violations = append(violations, "fecha is required")
	}
	if blank(a.Hora) {
		violations = append(violations, "hora is required")
	}
	if !a.Estado.Valid() {
		violations = append(violations, "estado is invalid")
	}
	return violations
}

func AppointmentForUpdate(a *model.Appointment) []string {
	violations := requireID(a.ID)
	return append(violations, Appointment(a)...)
}

func requireID(id int64) []string {
	if id <= 0 {
		return []string{"id is required for update"}
	}
	return nil
}
