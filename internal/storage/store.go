package storage

import (
	"context"
)

// Store bundles the connection provider and the per-entity repositories. Open
// runs pending migrations before any repository is usable.
type Store struct {
	provider *Provider

	Patients     PatientRepository
	Histories    HistoryRepository
	Attachments  AttachmentRepository
	Accounts     AccountRepository
	Appointments AppointmentRepository
}

func Open(ctx context.Context, path string) (*Store, error) {
	provider := NewProvider(path)

	db, err := provider.DB(ctx)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db, Catalog(), EmbeddedScripts()); err != nil {
		_ = provider.Close()
		return nil, err
	}

	return &Store{
		provider:     provider,
		Patients:     &patientRepository{provider: provider},
		Histories:    &historyRepository{provider: provider},
		Attachments:  &attachmentRepository{provider: provider},
		Accounts:     &accountRepository{provider: provider},
		Appointments: &appointmentRepository{provider: provider},
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.provider == nil {
		return nil
	}
	return s.provider.Close()
}

// Ledger returns the migration ledger rows for display.
func (s *Store) Ledger(ctx context.Context) ([]LedgerEntry, error) {
	db, err := s.provider.DB(ctx)
	if err != nil {
		return nil, err
	}
	return NewVersionTracker(db).Entries()
}
