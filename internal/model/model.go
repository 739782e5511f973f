// Package model holds the clinic's domain entities and the error taxonomy
// shared by the validation, storage, and auth layers.
package model

import "time"

type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleDoctor       Role = "Doctor"
	RoleReceptionist Role = "Receptionist"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist:
		return true
	}
	return false
}

type AppointmentStatus string

const (
	AppointmentPending    AppointmentStatus = "Pending"
	AppointmentInProgress AppointmentStatus = "InProgress"
	AppointmentCompleted  AppointmentStatus = "Completed"
	AppointmentCancelled  AppointmentStatus = "Cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentInProgress, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// Patient is the clinic's registry entry. Cedula is the natural key; the
// numeric ID is assigned by storage on first save.
type Patient struct {
	ID              int64
	Cedula          string
	Nombre          string
	Apellido        string
	FechaNacimiento string
	Sexo            string
	Direccion       string
	Telefono        string
	Email           string
	FechaRegistro   time.Time
}

// ClinicalHistory records one consultation. It references its Patient by id
// only; the patient's histories are a lookup by foreign key, never a stored
// back-pointer.
type ClinicalHistory struct {
	ID             int64
	PatientID      int64
	FechaConsulta  time.Time
	MotivoConsulta string
	Antecedentes   string
	ExamenFisico   string
	Diagnostico    string
	Conducta       string
	Observaciones  string
	Medico         string
}

type Attachment struct {
	ID                int64
	ClinicalHistoryID int64
	Nombre            string
	RutaArchivo       string
	Tipo              string
	TamanoBytes       int64
	FechaCreacion     time.Time
}

type Account struct {
	ID             int64
	Username       string
	PasswordHash   string
	Salt           string
	Role           Role
	FullName       string
	Active         bool
	CreatedAt      time.Time
	LastLogin      *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
}

// Locked reports whether the account is inside an active lockout window.
func (a *Account) Locked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

type Appointment struct {
	ID        int64
	PatientID int64
	DoctorID  *int64
	Fecha     string
	Hora      string
	Motivo    string
	Estado    AppointmentStatus
	CreatedAt time.Time
}
