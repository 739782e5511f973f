// Package app holds the services the UI layer calls; today that is the
// attachment blob store, which pairs attachment rows with files under the
// configured attachments directory.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jeanscarter/clinidesk/internal/model"
	"github.com/jeanscarter/clinidesk/internal/storage"
	"github.com/jeanscarter/clinidesk/internal/validate"
)

type AttachmentService struct {
	histories   storage.HistoryRepository
	attachments storage.AttachmentRepository
	dir         string
}

func NewAttachmentService(histories storage.HistoryRepository, attachments storage.AttachmentRepository, dir string) *AttachmentService {
	return &AttachmentService{
		histories:   histories,
		attachments: attachments,
		dir:         dir,
	}
}

// Import copies the source file into the attachments directory under a
// generated name and records the attachment against the history. The copied
// blob is removed again if the row cannot be saved.
func (s *AttachmentService) Import(ctx context.Context, historyID int64, srcPath string) (*model.Attachment, error) {
	if _, err := s.histories.FindByID(ctx, historyID); err != nil {
		return nil, err
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return nil, fmt.Errorf("stat attachment source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attachment source %q is a directory", srcPath)
	}

	ext := filepath.Ext(srcPath)
	destPath := filepath.Join(s.dir, uuid.NewString()+strings.ToLower(ext))
	if err := copyFile(srcPath, destPath); err != nil {
		return nil, err
	}

	attachment := &model.Attachment{
		ClinicalHistoryID: historyID,
		Nombre:            filepath.Base(srcPath),
		RutaArchivo:       destPath,
		Tipo:              mime.TypeByExtension(ext),
		TamanoBytes:       info.Size(),
	}
	if violations := validate.Attachment(attachment); len(violations) > 0 {
		_ = os.Remove(destPath)
		return nil, model.NewValidation("attachments", violations)
	}
	if err := s.attachments.Save(ctx, attachment); err != nil {
		_ = os.Remove(destPath)
		return nil, err
	}
	return attachment, nil
}

// Remove deletes the attachment row and its blob. A blob already missing
// from disk is not an error.
func (s *AttachmentService) Remove(ctx context.Context, id int64) error {
	attachment, err := s.attachments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.attachments.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(attachment.RutaArchivo); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove attachment blob: %w", err)
	}
	return nil
}

func (s *AttachmentService) List(ctx context.Context, historyID int64) ([]model.Attachment, error) {
	return s.attachments.ListByHistory(ctx, historyID)
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return fmt.Errorf("create attachments dir: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open attachment source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create attachment blob: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("copy attachment blob: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("close attachment blob: %w", err)
	}
	return nil
}
