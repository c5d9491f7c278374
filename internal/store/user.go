package store

import "github.com/google/uuid"

// User is a single directory entry.  ID is the identity and never changes
// after creation; Name and Email may be replaced through the update
// operations.
type User struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Email string    `db:"email" json:"email"`
}
