package storage

import (
	"context"
	"time"

	"github.com/jeanscarter/clinidesk/internal/model"
)

// PageRequest selects one zero-based page of a listing.
type PageRequest struct {
	Index int
	Size  int
}

// Page describes the position of a returned page within the full listing.
// RangeStart and RangeEnd are one-based row numbers for display.
type Page struct {
	TotalRows  int
	TotalPages int
	RangeStart int
	RangeEnd   int
}

type PatientRepository interface {
	Save(ctx context.Context, patient *model.Patient) error
	FindByID(ctx context.Context, id int64) (*model.Patient, error)
	FindByCedula(ctx context.Context, cedula string) (*model.Patient, error)
	FindAll(ctx context.Context) ([]model.Patient, error)
	SearchByName(ctx context.Context, term string) ([]model.Patient, error)
	ListPage(ctx context.Context, req PageRequest) ([]model.Patient, Page, error)
	Update(ctx context.Context, patient *model.Patient) error
	Delete(ctx context.Context, id int64) error
}

type HistoryRepository interface {
	Save(ctx context.Context, history *model.ClinicalHistory) error
	SaveWithAttachments(ctx context.Context, history *model.ClinicalHistory, attachments []*model.Attachment) error
	FindByID(ctx context.Context, id int64) (*model.ClinicalHistory, error)
	ListByPatient(ctx context.Context, patientID int64) ([]model.ClinicalHistory, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]model.ClinicalHistory, error)
	Update(ctx context.Context, history *model.ClinicalHistory) error
	Delete(ctx context.Context, id int64) error
}

type AttachmentRepository interface {
	Save(ctx context.Context, attachment *model.Attachment) error
	FindByID(ctx context.Context, id int64) (*model.Attachment, error)
	ListByHistory(ctx context.Context, historyID int64) ([]model.Attachment, error)
	Delete(ctx context.Context, id int64) error
}

type AccountRepository interface {
	Save(ctx context.Context, account *model.Account) error
	FindByID(ctx context.Context, id int64) (*model.Account, error)
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindAll(ctx context.Context) ([]model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	Delete(ctx context.Context, id int64) error
}

type AppointmentRepository interface {
	Save(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id int64) (*model.Appointment, error)
	FindAll(ctx context.Context) ([]model.Appointment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]model.Appointment, error)
	ListByStatus(ctx context.Context, status model.AppointmentStatus) ([]model.Appointment, error)
	ListByDateRange(ctx context.Context, from, to string) ([]model.Appointment, error)
	Update(ctx context.Context, appointment *model.Appointment) error
	Delete(ctx context.Context, id int64) error
}
