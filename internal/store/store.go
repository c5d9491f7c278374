package store

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the operations every storage engine supports.
//
// Implementations may use different backends (in‑memory for tests and
// development, a relational database or Redis for production).  The
// service layer depends on this abstraction rather than a concrete engine,
// so engines are interchangeable and selected at construction time.
//
// All methods accept a context for cancellation and deadlines.  Absence of
// a record is never an error: lookups report it through a nil *User or a
// false "found" flag.  Every returned error is a *RepoError.
//
// Repository does not enforce name or id uniqueness; that policy lives in
// the service layer.
type Repository interface {
	// AddUser stores u.  An existing record with the same id is replaced.
	AddUser(ctx context.Context, u User) error
	// GetUser returns the user identified by id, or nil if it does not
	// exist.
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	// GetUserID reports whether a user with id exists and returns the id
	// back when it does.
	GetUserID(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error)
	// GetUserIDByName looks up the id of the user called name.
	GetUserIDByName(ctx context.Context, name string) (uuid.UUID, bool, error)
	// GetAllUsers returns every stored user in no particular order.
	GetAllUsers(ctx context.Context) ([]User, error)
	// UpdateUserByID replaces the name and email of the user identified by
	// id.  It returns false if no such user exists.
	UpdateUserByID(ctx context.Context, id uuid.UUID, u User) (bool, error)
	// UpdateUserByName resolves name to an id and updates that user.  It
	// returns false if no user has that name.
	UpdateUserByName(ctx context.Context, name string, u User) (bool, error)
}

// ConditionalAdder is implemented by engines that can insert a user only if
// its id is not taken yet, as a single atomic step.  It returns false when
// a user with the same id already exists.
type ConditionalAdder interface {
	AddUserIfAbsent(ctx context.Context, u User) (bool, error)
}
