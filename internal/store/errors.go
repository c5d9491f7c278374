package store

import (
	"fmt"

	"github.com/pkg/errors"
)

// DBErrorKind tells a failure to reach the storage backend apart from a
// failure of the statement itself.
type DBErrorKind int

const (
	// ConnectionError means no connection could be checked out of the pool.
	ConnectionError DBErrorKind = iota + 1
	// QueryError means the backend rejected or failed the statement.
	QueryError
)

func (k DBErrorKind) String() string {
	switch k {
	case ConnectionError:
		return "connection error"
	case QueryError:
		return "query error"
	default:
		return "unknown db error"
	}
}

// DBError wraps a driver level failure.  Op names the repository operation
// that failed; Err keeps the driver's message for diagnostics.
type DBError struct {
	Kind DBErrorKind
	Op   string
	Err  error
}

func (e *DBError) Error() string {
	switch e.Kind {
	case ConnectionError:
		return fmt.Sprintf("%s: failed to get a connection from the pool: %v", e.Op, e.Err)
	case QueryError:
		return fmt.Sprintf("%s: failed to run query: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *DBError) Unwrap() error { return e.Err }

// Cause lets errors.Cause reach the driver error.
func (e *DBError) Cause() error { return e.Err }

// RepoErrorKind classifies repository failures.
type RepoErrorKind int

const (
	// RepoDB wraps a *DBError.
	RepoDB RepoErrorKind = iota + 1
	// RepoUnknown is anything the engine could not classify.
	RepoUnknown
)

// RepoError is the only error type returned by Repository methods.
type RepoError struct {
	Kind RepoErrorKind
	Err  error
}

func (e *RepoError) Error() string {
	if e.Kind == RepoDB {
		return fmt.Sprintf("database error: %v", e.Err)
	}
	return fmt.Sprintf("unknown error: %v", e.Err)
}

func (e *RepoError) Unwrap() error { return e.Err }

func (e *RepoError) Cause() error { return e.Err }

// MigrationError is returned when the schema could not be brought up to date.
type MigrationError struct {
	Err error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("failed to run migrations: %v", e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

func connectionError(op string, err error) error {
	return &RepoError{Kind: RepoDB, Err: &DBError{Kind: ConnectionError, Op: op, Err: errors.WithStack(err)}}
}

func queryError(op string, err error) error {
	return &RepoError{Kind: RepoDB, Err: &DBError{Kind: QueryError, Op: op, Err: errors.WithStack(err)}}
}

func unknownError(op string, err error) error {
	return &RepoError{Kind: RepoUnknown, Err: errors.Wrap(err, op)}
}

// IsDBError reports whether err carries a *DBError of the given kind.
func IsDBError(err error, kind DBErrorKind) bool {
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Kind == kind
	}
	return false
}
