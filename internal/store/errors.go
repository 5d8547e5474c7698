package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"gestorbanco/internal/db"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrConflictingUpdate = errors.New("record was modified by another request")
	ErrDuplicate         = errors.New("duplicate value")
)

// StorageError wraps a failure of the database itself.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Retryable() bool {
	return db.IsRetryable(e.Err) || errors.Is(e.Err, driver.ErrBadConn)
}

// DuplicateError reports a unique constraint violation.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return "duplicate value for " + e.Constraint
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// Field guesses the column from postgres' default "<table>_<column>_key" name.
func (e *DuplicateError) Field() string {
	name := strings.TrimSuffix(e.Constraint, "_key")
	if i := strings.Index(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &DuplicateError{Constraint: pqErr.Constraint}
	}
	return &StorageError{Op: op, Err: err}
}

func requireRows(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &StorageError{Op: "rows affected", Err: err}
	}
	if n == 0 {
		return missing
	}
	return nil
}
