// Package service holds the user-directory business rules: request
// validation, id and name uniqueness, and translation of storage failures
// into caller-facing errors.  It works against any store.Repository.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/afoley587/coding-challenges-2025/user-directory/internal/store"
)

// Service orchestrates one repository for its whole lifetime.
type Service struct {
	repo   store.Repository
	logger *slog.Logger
}

// New returns a Service backed by repo.
func New(repo store.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// PutUserRequest carries the fields of a new user.  UUID is supplied by the
// caller.
type PutUserRequest struct {
	UUID  string
	Name  string
	Email string
}

// UpdateUserRequest replaces Name and/or Email of the user with the given
// UUID.  Empty fields are left unchanged.
type UpdateUserRequest struct {
	UUID  string
	Name  string
	Email string
}

// UpdateUserByNameRequest is UpdateUserRequest addressed by the user's
// current name.
type UpdateUserByNameRequest struct {
	CurrentName string
	Name        string
	Email       string
}

// UserData is the public view of a single user.
type UserData struct {
	Name  string
	Email string
}

// UserRecord is one entry of the full listing.
type UserRecord struct {
	UUID  string
	Name  string
	Email string
}

// UpdateResult reports the outcome of an update.  Changed is false when the
// request matched the stored values and nothing was written.
type UpdateResult struct {
	Message string
	Changed bool
}

// Create adds a new user.  The id and the name must both be unused.
//
// The existence probes and the insert are separate calls.  When the engine
// implements store.ConditionalAdder the insert itself is conditional, so
// two concurrent creates with the same id cannot both succeed; otherwise
// that race is left open.  Name uniqueness is probe-only on every engine.
func (s *Service) Create(ctx context.Context, req PutUserRequest) (string, error) {
	log := s.logger.With("op", "create", "uuid", req.UUID)
	log.Debug("received create request")

	id, err := parseUUID(req.UUID)
	if err != nil {
		log.Warn("invalid uuid")
		return "", err
	}
	if err := validateName(req.Name); err != nil {
		log.Warn("invalid name")
		return "", err
	}
	if err := validateEmail(req.Email); err != nil {
		log.Warn("invalid email")
		return "", err
	}

	_, found, err := s.repo.GetUserID(ctx, id)
	if err != nil {
		return "", s.repoFailure(log, err)
	}
	if found {
		log.Warn("user already exists")
		return "", errIDAlreadyExists
	}

	_, found, err = s.repo.GetUserIDByName(ctx, req.Name)
	if err != nil {
		return "", s.repoFailure(log, err)
	}
	if found {
		log.Warn("user name already taken")
		return "", errNameAlreadyExists
	}

	u := store.User{ID: id, Name: req.Name, Email: req.Email}
	if adder, ok := s.repo.(store.ConditionalAdder); ok {
		added, err := adder.AddUserIfAbsent(ctx, u)
		if err != nil {
			return "", s.repoFailure(log, err)
		}
		if !added {
			log.Warn("user created concurrently")
			return "", errIDAlreadyExists
		}
	} else if err := s.repo.AddUser(ctx, u); err != nil {
		return "", s.repoFailure(log, err)
	}

	log.Info("user added")
	return fmt.Sprintf("User %s added successfully", id), nil
}

// GetByID returns the name and email of the user with the given id.
func (s *Service) GetByID(ctx context.Context, rawID string) (UserData, error) {
	log := s.logger.With("op", "get_by_id", "uuid", rawID)

	id, err := parseUUID(rawID)
	if err != nil {
		log.Warn("invalid uuid")
		return UserData{}, err
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return UserData{}, s.repoFailure(log, err)
	}
	if u == nil {
		log.Warn("user not found")
		return UserData{}, errUserNotFound
	}
	log.Debug("user data retrieved")
	return UserData{Name: u.Name, Email: u.Email}, nil
}

// GetIDByName returns the id of the user called name.
func (s *Service) GetIDByName(ctx context.Context, name string) (string, error) {
	log := s.logger.With("op", "get_id_by_name", "name", name)

	if name == "" {
		log.Warn("empty name")
		return "", errEmptyLookupName
	}
	id, found, err := s.repo.GetUserIDByName(ctx, name)
	if err != nil {
		return "", s.repoFailure(log, err)
	}
	if !found {
		log.Warn("user not found")
		return "", errUserNotFound
	}
	return id.String(), nil
}

// Update applies a partial update to the user with the given id.
func (s *Service) Update(ctx context.Context, req UpdateUserRequest) (UpdateResult, error) {
	log := s.logger.With("op", "update", "uuid", req.UUID)
	log.Debug("received update request")

	id, err := parseUUID(req.UUID)
	if err != nil {
		log.Warn("invalid uuid")
		return UpdateResult{}, err
	}
	if err := validateChanges(req.Name, req.Email); err != nil {
		log.Warn("invalid update", "error", err)
		return UpdateResult{}, err
	}

	cur, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return UpdateResult{}, s.repoFailure(log, err)
	}
	if cur == nil {
		log.Warn("user not found")
		return UpdateResult{}, errUserNotFound
	}

	next, err := s.merge(ctx, log, *cur, req.Name, req.Email)
	if err != nil {
		return UpdateResult{}, err
	}
	if next == *cur {
		log.Info("no changes")
		return noChanges(id), nil
	}

	ok, err := s.repo.UpdateUserByID(ctx, id, next)
	if err != nil {
		return UpdateResult{}, s.repoFailure(log, err)
	}
	if !ok {
		log.Warn("user disappeared before update")
		return UpdateResult{}, errUserNotFound
	}

	log.Info("user updated")
	return updated(id), nil
}

// UpdateByName applies a partial update to the user currently called
// req.CurrentName.
func (s *Service) UpdateByName(ctx context.Context, req UpdateUserByNameRequest) (UpdateResult, error) {
	log := s.logger.With("op", "update_by_name", "name", req.CurrentName)
	log.Debug("received update request")

	if req.CurrentName == "" {
		log.Warn("empty name")
		return UpdateResult{}, errEmptyLookupName
	}
	if err := validateChanges(req.Name, req.Email); err != nil {
		log.Warn("invalid update", "error", err)
		return UpdateResult{}, err
	}

	id, found, err := s.repo.GetUserIDByName(ctx, req.CurrentName)
	if err != nil {
		return UpdateResult{}, s.repoFailure(log, err)
	}
	if !found {
		log.Warn("user not found")
		return UpdateResult{}, errUserNotFound
	}
	cur, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return UpdateResult{}, s.repoFailure(log, err)
	}
	if cur == nil {
		log.Warn("user not found")
		return UpdateResult{}, errUserNotFound
	}

	next, err := s.merge(ctx, log, *cur, req.Name, req.Email)
	if err != nil {
		return UpdateResult{}, err
	}
	if next == *cur {
		log.Info("no changes")
		return noChanges(id), nil
	}

	// Persist by the resolved id so only the record read above is written.
	ok, err := s.repo.UpdateUserByID(ctx, id, next)
	if err != nil {
		return UpdateResult{}, s.repoFailure(log, err)
	}
	if !ok {
		log.Warn("user disappeared before update")
		return UpdateResult{}, errUserNotFound
	}

	log.Info("user updated", "uuid", id)
	return updated(id), nil
}

// ListAll returns every user.
func (s *Service) ListAll(ctx context.Context) ([]UserRecord, error) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, s.repoFailure(s.logger.With("op", "list_all"), err)
	}
	records := make([]UserRecord, 0, len(users))
	for _, u := range users {
		records = append(records, UserRecord{UUID: u.ID.String(), Name: u.Name, Email: u.Email})
	}
	return records, nil
}

// validateChanges checks only the fields that are set.
func validateChanges(name, email string) error {
	if name != "" {
		if err := validateName(name); err != nil {
			return err
		}
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	return nil
}

// merge overlays the non-empty fields onto cur.  A new name must not belong
// to another user.
func (s *Service) merge(ctx context.Context, log *slog.Logger, cur store.User, name, email string) (store.User, error) {
	next := cur
	if name != "" && name != cur.Name {
		owner, found, err := s.repo.GetUserIDByName(ctx, name)
		if err != nil {
			return store.User{}, s.repoFailure(log, err)
		}
		if found && owner != cur.ID {
			log.Warn("user name already taken", "new_name", name)
			return store.User{}, errNameAlreadyExists
		}
		next.Name = name
	}
	if email != "" {
		next.Email = email
	}
	return next, nil
}

func (s *Service) repoFailure(log *slog.Logger, err error) error {
	log.Error("repository call failed", "error", err)
	return FromRepoError(err)
}

func noChanges(id uuid.UUID) UpdateResult {
	return UpdateResult{Message: fmt.Sprintf("No changes for user %s", id)}
}

func updated(id uuid.UUID) UpdateResult {
	return UpdateResult{Message: fmt.Sprintf("User %s updated successfully", id), Changed: true}
}
