package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jeanscarter/clinidesk/internal/model"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

func fmtNullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmtTime(*t), Valid: true}
}

func parseNullableTime(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	t, err := parseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// translateConstraint maps the driver's UNIQUE violation onto the domain
// duplicate-key error carrying the offending column; everything else stays a
// storage error.
func translateConstraint(entity string, err error) error {
	msg := err.Error()
	marker := "UNIQUE constraint failed:"
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return model.NewStorage(entity, err)
	}
	target := strings.TrimSpace(msg[idx+len(marker):])
	// target looks like "patients.cedula"; keep the column part.
	if dot := strings.LastIndex(target, "."); dot >= 0 {
		target = target[dot+1:]
	}
	if end := strings.IndexAny(target, " ,;("); end >= 0 {
		target = target[:end]
	}
	return model.NewDuplicateKey(entity, target)
}
