// Package mocks provides testify mocks for the storage contract.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/afoley587/coding-challenges-2025/user-directory/internal/store"
)

// Repository is a mock store.Repository.  It deliberately does not
// implement store.ConditionalAdder, so the service falls back to AddUser.
type Repository struct {
	mock.Mock
}

var _ store.Repository = (*Repository)(nil)

func (m *Repository) AddUser(ctx context.Context, u store.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *Repository) GetUser(ctx context.Context, id uuid.UUID) (*store.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*store.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Repository) GetUserID(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *Repository) GetUserIDByName(ctx context.Context, name string) (uuid.UUID, bool, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *Repository) GetAllUsers(ctx context.Context) ([]store.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]store.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Repository) UpdateUserByID(ctx context.Context, id uuid.UUID, u store.User) (bool, error) {
	args := m.Called(ctx, id, u)
	return args.Bool(0), args.Error(1)
}

func (m *Repository) UpdateUserByName(ctx context.Context, name string, u store.User) (bool, error) {
	args := m.Called(ctx, name, u)
	return args.Bool(0), args.Error(1)
}
