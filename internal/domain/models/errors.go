package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that no record matches the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrUnauthenticated indicates missing or invalid credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrConflict indicates a uniqueness clash outside the ledger, e.g. a taken username.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports a rejected submission field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DuplicateLotError reports that a generated lot code is already taken in the collection.
type DuplicateLotError struct {
	Lot        string
	ConflictID int
}

func (e *DuplicateLotError) Error() string {
	return fmt.Sprintf("lot %s already used by entry %d", e.Lot, e.ConflictID)
}

// ReferentialGapError reports a reference to a registry entity that does not exist.
type ReferentialGapError struct {
	Kind EntityKind
	ID   int
}

func (e *ReferentialGapError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Kind, e.ID)
}

// InUseError reports that a registry entity cannot be removed while ledger entries reference it.
type InUseError struct {
	Kind       EntityKind
	ID         int
	References []string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("%s %d is referenced by %d ledger entries", e.Kind, e.ID, len(e.References))
}

// PersistenceError reports a failed collection write. The in-memory mutation
// that preceded it has already been applied.
type PersistenceError struct {
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AuthorizationError reports that the acting role lacks the capability for an action.
type AuthorizationError struct {
	Action string
	Role   Role
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q may not %s", e.Role, e.Action)
}
