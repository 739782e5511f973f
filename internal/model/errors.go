package model

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error. The set is closed: every failure surfaced by the
// persistence core is exactly one of these.
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindMigration
	KindValidation
	KindNotFound
	KindDuplicateKey
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindMigration:
		return "migration"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindDuplicateKey:
		return "duplicate key"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Error is the tagged error type carried across the storage boundary. Only
// the payload fields relevant to its Kind are set.
type Error struct {
	Kind       Kind
	Entity     string
	ID         int64
	Field      string
	Version    string
	Violations []string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConfiguration:
		return fmt.Sprintf("configuration: %v", e.Err)
	case KindMigration:
		return fmt.Sprintf("migration %s: %v", e.Version, e.Err)
	case KindValidation:
		return fmt.Sprintf("%s: invalid: %s", e.Entity, strings.Join(e.Violations, "; "))
	case KindNotFound:
		return fmt.Sprintf("%s: not found: id=%d", e.Entity, e.ID)
	case KindDuplicateKey:
		return fmt.Sprintf("%s: duplicate value for %s", e.Entity, e.Field)
	case KindStorage:
		return fmt.Sprintf("%s: storage: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("unknown error kind %d", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewConfiguration(err error) *Error {
	return &Error{Kind: KindConfiguration, Err: err}
}

func NewMigration(version string, err error) *Error {
	return &Error{Kind: KindMigration, Version: version, Err: err}
}

func NewValidation(entity string, violations []string) *Error {
	return &Error{Kind: KindValidation, Entity: entity, Violations: violations}
}

func NewNotFound(entity string, id int64) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

func NewDuplicateKey(entity, field string) *Error {
	return &Error{Kind: KindDuplicateKey, Entity: entity, Field: field}
}

func NewStorage(entity string, err error) *Error {
	return &Error{Kind: KindStorage, Entity: entity, Err: err}
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, else 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsNotFound(err error) bool     { return KindOf(err) == KindNotFound }
func IsDuplicateKey(err error) bool { return KindOf(err) == KindDuplicateKey }
func IsValidation(err error) bool   { return KindOf(err) == KindValidation }
func IsMigration(err error) bool    { return KindOf(err) == KindMigration }
