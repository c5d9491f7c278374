package service

import (
	"github.com/pkg/errors"

	"github.com/afoley587/coding-challenges-2025/user-directory/internal/store"
)

// Code classifies a failure returned by the service.  It is independent of
// any transport; internal/server maps it onto gRPC status codes.
type Code int

const (
	InvalidArgument Code = iota + 1
	NotFound
	AlreadyExists
	Internal
	Unknown
)

func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "invalid argument"
	case NotFound:
		return "not found"
	case AlreadyExists:
		return "already exists"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the only error type the service returns.  Message is safe to
// show to callers: it never carries storage or driver details.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Code.String() + ": " + e.Message
}

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

var (
	errInvalidUUID       = newError(InvalidArgument, "Invalid UUID")
	errEmptyName         = newError(InvalidArgument, "User name cannot be empty")
	errEmptyEmail        = newError(InvalidArgument, "User email cannot be empty")
	errInvalidEmail      = newError(InvalidArgument, "Invalid email format")
	errEmptyLookupName   = newError(InvalidArgument, "user_name cannot be empty")
	errUserNotFound      = newError(NotFound, "User not found")
	errIDAlreadyExists   = newError(AlreadyExists, "User with this UUID already exists")
	errNameAlreadyExists = newError(AlreadyExists, "User with this name already exists")
)

// FromRepoError maps a repository failure onto the service taxonomy.  It is
// a pure function: storage failures become Internal, everything else
// Unknown.  It returns nil for a nil error.
func FromRepoError(err error) *Error {
	if err == nil {
		return nil
	}
	var repoErr *store.RepoError
	if errors.As(err, &repoErr) && repoErr.Kind == store.RepoDB {
		return newError(Internal, "Internal storage error")
	}
	return newError(Unknown, "Unknown error")
}
