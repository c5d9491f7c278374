package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/afoley587/coding-challenges-2025/user-directory/internal/mocks"
	"github.com/afoley587/coding-challenges-2025/user-directory/internal/service"
	"github.com/afoley587/coding-challenges-2025/user-directory/internal/store"
)

const testUserID = "0189a30a-60c7-7135-b683-7d7f3783d4b7"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMemoryService() *service.Service {
	return service.New(store.NewMemoryStore(), discardLogger())
}

func requireCode(t *testing.T, err error, code service.Code) *service.Error {
	t.Helper()
	require.Error(t, err)
	var svcErr *service.Error
	require.True(t, errors.As(err, &svcErr), "expected *service.Error, got %T", err)
	assert.Equal(t, code, svcErr.Code, "message: %s", svcErr.Message)
	return svcErr
}

func storageFailure() error {
	return &store.RepoError{Kind: store.RepoDB, Err: &store.DBError{
		Kind: store.ConnectionError,
		Op:   "get_user",
		Err:  errors.New("pq: password authentication failed for user \"app\""),
	}}
}

func TestUserLifecycle(t *testing.T) {
	svc := newMemoryService()
	ctx := context.Background()

	msg, err := svc.Create(ctx, service.PutUserRequest{UUID: testUserID, Name: "testuser", Email: "testuser@test.com"})
	require.NoError(t, err)
	assert.Equal(t, "User "+testUserID+" added successfully", msg)

	data, err := svc.GetByID(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, service.UserData{Name: "testuser", Email: "testuser@test.com"}, data)

	res, err := svc.Update(ctx, service.UpdateUserRequest{UUID: testUserID, Name: "updateduser"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "User "+testUserID+" updated successfully", res.Message)

	data, err = svc.GetByID(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, service.UserData{Name: "updateduser", Email: "testuser@test.com"}, data)

	_, err = svc.GetIDByName(ctx, "testuser")
	requireCode(t, err, service.NotFound)

	id, err := svc.GetIDByName(ctx, "updateduser")
	require.NoError(t, err)
	assert.Equal(t, testUserID, id)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  service.PutUserRequest
		msg  string
	}{
		{"invalid uuid", service.PutUserRequest{UUID: "invalid-uuid", Name: "a", Email: "a@test.com"}, "Invalid UUID"},
		{"empty name", service.PutUserRequest{UUID: testUserID, Email: "a@test.com"}, "User name cannot be empty"},
		{"empty email", service.PutUserRequest{UUID: testUserID, Name: "a"}, "User email cannot be empty"},
		{"no at sign", service.PutUserRequest{UUID: testUserID, Name: "a", Email: "a.test.com"}, "Invalid email format"},
		{"no tld", service.PutUserRequest{UUID: testUserID, Name: "a", Email: "a@localhost"}, "Invalid email format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Validation must fail before the repository is touched.
			repo := new(mocks.Repository)
			svc := service.New(repo, discardLogger())

			_, err := svc.Create(context.Background(), tt.req)
			svcErr := requireCode(t, err, service.InvalidArgument)
			assert.Equal(t, tt.msg, svcErr.Message)
			repo.AssertNotCalled(t, "GetUserID", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "AddUser", mock.Anything, mock.Anything)
		})
	}
}

func TestInvalidUUIDIsInvalidArgument(t *testing.T) {
	svc := newMemoryService()
	ctx := context.Background()

	_, err := svc.GetByID(ctx, "invalid-uuid")
	requireCode(t, err, service.InvalidArgument)

	_, err = svc.Update(ctx, service.UpdateUserRequest{UUID: "invalid-uuid", Name: "x"})
	requireCode(t, err, service.InvalidArgument)

	_, err = svc.Create(ctx, service.PutUserRequest{UUID: "", Name: "x", Email: "x@test.com"})
	requireCode(t, err, service.InvalidArgument)
}

func TestCreateDuplicates(t *testing.T) {
	svc := newMemoryService()
	ctx := context.Background()

	_, err := svc.Create(ctx, service.PutUserRequest{UUID: testUserID, Name: "bob", Email: "bob@test.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, service.PutUserRequest{UUID: testUserID, Name: "other", Email: "other@test.com"})
	svcErr := requireCode(t, err, service.AlreadyExists)
	assert.Equal(t, "User with this UUID already exists", svcErr.Message)

	_, err = svc.Create(ctx, service.PutUserRequest{UUID: uuid.NewString(), Name: "bob", Email: "bob2@test.com"})
	svcErr = requireCode(t, err, service.AlreadyExists)
	assert.Equal(t, "User with this name already exists", svcErr.Message)
}

func TestConcurrentCreatesOfSameIDOneWins(t *testing.T) {
	svc := newMemoryService()
	ctx := context.Background()

	const workers = 16
	var (
		wg      sync.WaitGroup
		created atomic.Int32
		dupes   atomic.Int32
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("user-%d", i)
			_, err := svc.Create(ctx, service.PutUserRequest{UUID: testUserID, Name: name, Email: name + "@test.com"})
			var svcErr *service.Error
			switch {
			case err == nil:
				created.Add(1)
			case errors.As(err, &svcErr) && svcErr.Code == service.AlreadyExists:
				dupes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(workers-1), dupes.Load())
}

func TestGetByIDMissing(t *testing.T) {
	svc := newMemoryService()
	_, err := svc.GetByID(context.Background(), uuid.NewString())
	svcErr := requireCode(t, err, service.NotFound)
	assert.Equal(t, "User not found", svcErr.Message)
}

func TestGetIDByNameEmpty(t *testing.T) {
	svc := newMemoryService()
	_, err := svc.GetIDByName(context.Background(), "")
	svcErr := requireCode(t, err, service.InvalidArgument)
	assert.Equal(t, "user_name cannot be empty", svcErr.Message)
}

func TestUpdatePartialFields(t *testing.T) {
	svc := newMemoryService()
	ctx := context.Background()
	_, err := svc.Create(ctx, service.PutUserRequest{UUID: testUserID, Name: "carol", Email: "carol@test.com"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, service.UpdateUserRequest{UUID: testUserID, Email: "carol@new.com"})
	require.NoError(t, err)

	data, err := svc.GetByID(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, service.UserData{Name: "carol", Email: "carol@new.com"}, data)

	_, err = svc.Update(ctx, service.UpdateUserRequest{UUID: testUserID, Email: "broken"})
	svcErr := requireCode(t, err, service.InvalidArgument)
	assert.Equal(t, "Invalid email format", svcErr.Message)
}

func TestUpdateWithoutChangesDoesNotWrite(t *testing.T) {
	id := uuid.MustParse(testUserID)
	repo := new(mocks.Repository)
	repo.On("GetUser", mock.Anything, id).
		Return(&store.User{ID: id, Name: "dave", Email: "dave@test.com"}, nil)
	svc := service.New(repo, discardLogger())

	for _, req := range []service.UpdateUserRequest{
		{UUID: testUserID},
		{UUID: testUserID, Name: "dave", Email: "dave@test.com"},
	} {
		res, err := svc.Update(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Equal(t, "No changes for user "+testUserID, res.Message)
	}
	repo.AssertNotCalled(t, "UpdateUserByID", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestUpdateMissingUser(t *testing.T) {
	svc := newMemoryService()
	_, err := svc.Update(context.Background(), service.UpdateUserRequest{UUID: testUserID, Name: "ghost"})
	requireCode(t, err, service.NotFound)
}

func TestUpdateRenameToTakenName(t *testing.T) {
	svc := newMemoryService()
	ctx := context.Background()
	other := uuid.NewString()
	_, err := svc.Create(ctx, service.PutUserRequest{UUID: testUserID, Name: "erin", Email: "erin@test.com"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, service.PutUserRequest{UUID: other, Name: "frank", Email: "frank@test.com"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, service.UpdateUserRequest{UUID: testUserID, Name: "frank"})
	requireCode(t, err, service.AlreadyExists)

	_, err = svc.UpdateByName(ctx, service.UpdateUserByNameRequest{CurrentName: "frank", Name: "erin"})
	requireCode(t, err, service.AlreadyExists)
}

func TestUpdateVanishedUserIsNotFound(t *testing.T) {
	id := uuid.MustParse(testUserID)
	repo := new(mocks.Repository)
	repo.On("GetUser", mock.Anything, id).Return(&store.User{ID: id, Name: "gina", Email: "gina@test.com"}, nil)
	repo.On("UpdateUserByID", mock.Anything, id, mock.AnythingOfType("store.User")).Return(false, nil)
	svc := service.New(repo, discardLogger())

	_, err := svc.Update(context.Background(), service.UpdateUserRequest{UUID: testUserID, Email: "gina@new.com"})
	requireCode(t, err, service.NotFound)
	repo.AssertExpectations(t)
}

func TestUpdateByNameReachesSameRecord(t *testing.T) {
	svc := newMemoryService()
	ctx := context.Background()
	_, err := svc.Create(ctx, service.PutUserRequest{UUID: testUserID, Name: "hank", Email: "hank@test.com"})
	require.NoError(t, err)

	res, err := svc.UpdateByName(ctx, service.UpdateUserByNameRequest{CurrentName: "hank", Email: "hank@new.com"})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	data, err := svc.GetByID(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, "hank@new.com", data.Email)

	res, err = svc.UpdateByName(ctx, service.UpdateUserByNameRequest{CurrentName: "hank", Name: "henry"})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	id, err := svc.GetIDByName(ctx, "henry")
	require.NoError(t, err)
	assert.Equal(t, testUserID, id)

	_, err = svc.UpdateByName(ctx, service.UpdateUserByNameRequest{CurrentName: "hank", Name: "x"})
	requireCode(t, err, service.NotFound)

	_, err = svc.UpdateByName(ctx, service.UpdateUserByNameRequest{Name: "x"})
	requireCode(t, err, service.InvalidArgument)
}

func TestListAll(t *testing.T) {
	svc := newMemoryService()
	ctx := context.Background()

	users, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	want := map[string]service.UserRecord{}
	for i := range 5 {
		r := service.UserRecord{UUID: uuid.NewString(), Name: fmt.Sprintf("user%d", i), Email: fmt.Sprintf("user%d@test.com", i)}
		want[r.UUID] = r
		_, err := svc.Create(ctx, service.PutUserRequest{UUID: r.UUID, Name: r.Name, Email: r.Email})
		require.NoError(t, err)
	}

	users, err = svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, len(want))
	for _, u := range users {
		assert.Equal(t, want[u.UUID], u)
	}
}

func TestCreateFallsBackToAddUser(t *testing.T) {
	id := uuid.MustParse(testUserID)
	u := store.User{ID: id, Name: "ivy", Email: "ivy@test.com"}
	repo := new(mocks.Repository)
	repo.On("GetUserID", mock.Anything, id).Return(uuid.Nil, false, nil)
	repo.On("GetUserIDByName", mock.Anything, "ivy").Return(uuid.Nil, false, nil)
	repo.On("AddUser", mock.Anything, u).Return(nil)
	svc := service.New(repo, discardLogger())

	_, err := svc.Create(context.Background(), service.PutUserRequest{UUID: testUserID, Name: u.Name, Email: u.Email})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestStorageFailureIsInternalAndOpaque(t *testing.T) {
	id := uuid.MustParse(testUserID)
	repo := new(mocks.Repository)
	repo.On("GetUser", mock.Anything, id).Return(nil, storageFailure())
	repo.On("GetUserID", mock.Anything, id).Return(uuid.Nil, false, storageFailure())
	repo.On("GetAllUsers", mock.Anything).Return(nil, storageFailure())
	svc := service.New(repo, discardLogger())
	ctx := context.Background()

	_, err := svc.GetByID(ctx, testUserID)
	svcErr := requireCode(t, err, service.Internal)
	assert.Equal(t, "Internal storage error", svcErr.Message)
	assert.NotContains(t, svcErr.Error(), "password")

	_, err = svc.Create(ctx, service.PutUserRequest{UUID: testUserID, Name: "jo", Email: "jo@test.com"})
	requireCode(t, err, service.Internal)

	_, err = svc.ListAll(ctx)
	requireCode(t, err, service.Internal)
}

func TestUpdateByNameWritesOnlyTheResolvedRecord(t *testing.T) {
	id := uuid.MustParse(testUserID)
	cur := store.User{ID: id, Name: "kim", Email: "kim@test.com"}
	next := store.User{ID: id, Name: "kim", Email: "kim@new.com"}

	repo := new(mocks.Repository)
	repo.On("GetUserIDByName", mock.Anything, "kim").Return(id, true, nil)
	repo.On("GetUser", mock.Anything, id).Return(&cur, nil)
	repo.On("UpdateUserByID", mock.Anything, id, next).Return(true, nil)
	svc := service.New(repo, discardLogger())

	res, err := svc.UpdateByName(context.Background(), service.UpdateUserByNameRequest{CurrentName: "kim", Email: "kim@new.com"})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "UpdateUserByName", mock.Anything, mock.Anything, mock.Anything)
}
