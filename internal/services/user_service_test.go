package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/m0nesy/f1kz-be/internal/database"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateAndAuthenticateUser(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	created, err := svc.CreateUser("alice", "a@x.com", "secret1", nil, nil)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "alice", created.Username)
	require.Empty(t, created.PasswordHash)
	require.NotNil(t, created.FavoriteDriverIDs)

	// By username and by email.
	byName, err := svc.AuthenticateUser("alice", "secret1")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	byEmail, err := svc.AuthenticateUser("a@x.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)
}

func TestAuthenticateUser_FailuresAreIndistinguishable(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.CreateUser("alice", "a@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	_, wrongPassword := svc.AuthenticateUser("alice", "wrong")
	_, unknownUser := svc.AuthenticateUser("nobody", "secret1")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.CreateUser("alice", "a@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	_, err = svc.CreateUser("alice", "other@x.com", "secret1", nil, nil)
	require.Error(t, err)
}

func TestUpdateUser_FavoritesRoundTrip(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	created, err := svc.CreateUser("alice", "a@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	drivers := []string{"max_verstappen", "leclerc"}
	updated, err := svc.UpdateUser(created.ID, UserUpdate{FavoriteDriverIDs: &drivers})
	require.NoError(t, err)
	require.Equal(t, drivers, updated.FavoriteDriverIDs)

	// Untouched fields survive.
	require.Equal(t, "alice", updated.Username)
	require.Equal(t, "a@x.com", updated.Email)

	fetched, err := svc.GetUserByID(created.ID)
	require.NoError(t, err)
	require.Equal(t, drivers, fetched.FavoriteDriverIDs)
	require.Empty(t, fetched.FavoriteTeamIDs)
}

func TestUpdateUser_PasswordChange(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	created, err := svc.CreateUser("alice", "a@x.com", "secret1", nil, nil)
	require.NoError(t, err)

	newPassword := "secret2"
	_, err = svc.UpdateUser(created.ID, UserUpdate{Password: &newPassword})
	require.NoError(t, err)

	_, err = svc.AuthenticateUser("alice", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AuthenticateUser("alice", "secret2")
	require.NoError(t, err)
}

func TestGetUserByID_NotFound(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.GetUserByID(999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidateRegistration(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateRegistration("alice", "a@x.com", "secret1"))
	require.Error(t, ValidateRegistration("", "a@x.com", "secret1"))
	require.Error(t, ValidateRegistration("alice", "not-an-email", "secret1"))
	require.Error(t, ValidateRegistration("alice", "a@x.com", "short"))
}
