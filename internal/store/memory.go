package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

var (
	_ Repository       = (*MemoryStore)(nil)
	_ ConditionalAdder = (*MemoryStore)(nil)
)

// MemoryStore is an implementation of Repository backed by a map keyed by
// user id.  It is safe for concurrent use and intended for unit tests and
// development.  Data stored here does not outlive the process.
//
// Lookups by name scan every entry.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

// NewMemoryStore constructs an empty in‑memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[uuid.UUID]User),
	}
}

// AddUser inserts u, replacing any user with the same id.
func (s *MemoryStore) AddUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

// AddUserIfAbsent inserts u unless its id is already taken.
func (s *MemoryStore) AddUserIfAbsent(_ context.Context, u User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return false, nil
	}
	s.users[u.ID] = u
	return true, nil
}

// GetUser returns a copy of the user, or (nil, nil) if it does not exist.
func (s *MemoryStore) GetUser(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *MemoryStore) GetUserID(_ context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[id]; ok {
		return id, true, nil
	}
	return uuid.Nil, false, nil
}

func (s *MemoryStore) GetUserIDByName(_ context.Context, name string) (uuid.UUID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, u := range s.users {
		if u.Name == name {
			return id, true, nil
		}
	}
	return uuid.Nil, false, nil
}

// GetAllUsers copies every user into a new slice.  Map iteration order is
// random, so the result is unordered.
func (s *MemoryStore) GetAllUsers(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

// UpdateUserByID replaces name and email.  The existence check and the
// write happen under one lock.
func (s *MemoryStore) UpdateUserByID(_ context.Context, id uuid.UUID, u User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[id]
	if !ok {
		return false, nil
	}
	cur.Name = u.Name
	cur.Email = u.Email
	s.users[id] = cur
	return true, nil
}

// UpdateUserByName resolves the id first and then delegates to
// UpdateUserByID.  The two steps are not atomic: a concurrent rename of the
// target between them makes this update land on the renamed record.
func (s *MemoryStore) UpdateUserByName(ctx context.Context, name string, u User) (bool, error) {
	id, ok, err := s.GetUserIDByName(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	return s.UpdateUserByID(ctx, id, u)
}
