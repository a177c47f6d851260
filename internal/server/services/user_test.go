package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pdfdesk/internal/common"
	"github.com/dmitrijs2005/pdfdesk/internal/logging"
	"github.com/dmitrijs2005/pdfdesk/internal/server/auth"
	"github.com/dmitrijs2005/pdfdesk/internal/server/config"
	"github.com/dmitrijs2005/pdfdesk/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newUserService(t *testing.T) (*UserService, *memUsers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	cfg := &config.Config{
		SecretKey:             testSecret,
		TokenValidityDuration: time.Hour,
	}
	users := newMemUsers()
	return NewUserService(db, &fakeRepoManager{u: users, d: newMemDocs()}, cfg, logging.Discard()), users, mock
}

func register(t *testing.T, s *UserService, name, email, password string) *models.PublicUser {
	t.Helper()
	u, err := s.Register(context.Background(), name, email, password)
	require.NoError(t, err)
	return u
}

func TestRegister_ReturnsPublicStudent(t *testing.T) {
	s, users, _ := newUserService(t)

	u := register(t, s, "Alice", "alice@x.com", "secret123")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@x.com", u.Email)
	assert.Equal(t, models.RoleStudent, u.Role)

	stored, err := users.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	ok, err := auth.CheckPassword(stored.PasswordHash, "secret123")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = auth.CheckPassword(stored.PasswordHash, "secret124")
	assert.False(t, ok)
}

func TestRegister_MissingFieldsRejectedBeforeStore(t *testing.T) {
	tests := []struct {
		name, uname, email, password string
		want                         []string
	}{
		{"all", "", "", "", []string{"name", "email", "password"}},
		{"name", "", "a@x.com", "pw", []string{"name"}},
		{"email", "A", "", "pw", []string{"email"}},
		{"password", "A", "a@x.com", "", []string{"password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, users, _ := newUserService(t)

			_, err := s.Register(context.Background(), tt.uname, tt.email, tt.password)

			require.ErrorIs(t, err, common.ErrorValidation)
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Fields)
			assert.Zero(t, users.createCalls)
		})
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	s, users, _ := newUserService(t)
	register(t, s, "Alice", "alice@x.com", "secret123")

	_, err := s.Register(context.Background(), "Other", "alice@x.com", "completely-different")

	require.ErrorIs(t, err, common.ErrorConflict)
	assert.Equal(t, 1, users.createCalls)
}

func TestRegister_StoreUniqueViolationIsConflict(t *testing.T) {
	s, users, _ := newUserService(t)
	users.createErr = common.ErrorConflict

	_, err := s.Register(context.Background(), "Bob", "bob@x.com", "pw")
	require.ErrorIs(t, err, common.ErrorConflict)
}

func TestRegister_StoreErrorIsWrapped(t *testing.T) {
	s, users, _ := newUserService(t)
	users.getErr = errors.New("db down")

	_, err := s.Register(context.Background(), "Bob", "bob@x.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorConflict)
	assert.Contains(t, err.Error(), "db down")
}

func TestLogin_IssuesTokenForRegisteredUser(t *testing.T) {
	s, _, _ := newUserService(t)
	u := register(t, s, "Alice", "alice@x.com", "secret123")

	res, err := s.Login(context.Background(), "alice@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u, res.User)

	claims, err := auth.ParseToken(res.Token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestLogin_Failures(t *testing.T) {
	s, users, _ := newUserService(t)
	u := register(t, s, "Alice", "alice@x.com", "secret123")

	_, err := s.Login(context.Background(), "alice@x.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Login(context.Background(), "nobody@x.com", "secret123")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = users.Deactivate(context.Background(), u.ID)
	require.NoError(t, err)
	_, err = s.Login(context.Background(), "alice@x.com", "secret123")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestGetByID(t *testing.T) {
	s, _, _ := newUserService(t)
	u := register(t, s, "Alice", "alice@x.com", "secret123")

	got, err := s.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", got.Email)
	assert.NotEmpty(t, got.PasswordHash)

	_, err = s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateProfile_AppliesAllowListedFields(t *testing.T) {
	s, _, _ := newUserService(t)
	u := register(t, s, "Alice", "alice@x.com", "secret123")

	got, err := s.UpdateProfile(context.Background(), u.ID, map[string]any{
		"name":     "Alicia",
		"password": "new-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.Name)
	assert.Equal(t, "alice@x.com", got.Email)

	_, err = s.Login(context.Background(), "alice@x.com", "secret123")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = s.Login(context.Background(), "alice@x.com", "new-secret")
	assert.NoError(t, err)
}

func TestUpdateProfile_Rejections(t *testing.T) {
	s, _, _ := newUserService(t)
	u := register(t, s, "Alice", "alice@x.com", "secret123")
	register(t, s, "Bob", "bob@x.com", "pw")

	tests := []struct {
		name    string
		id      string
		updates map[string]any
		wantErr error
		fields  []string
	}{
		{"empty", u.ID, map[string]any{}, common.ErrorValidation, nil},
		{"role not allowed", u.ID, map[string]any{"role": "admin", "name": "x"}, common.ErrorValidation, []string{"role"}},
		{"active not allowed", u.ID, map[string]any{"active": false}, common.ErrorValidation, []string{"active"}},
		{"non-string", u.ID, map[string]any{"name": 42}, common.ErrorValidation, []string{"name"}},
		{"empty string", u.ID, map[string]any{"email": ""}, common.ErrorValidation, []string{"email"}},
		{"email taken", u.ID, map[string]any{"email": "bob@x.com"}, common.ErrorConflict, nil},
		{"unknown user", "missing", map[string]any{"name": "x"}, common.ErrorNotFound, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateProfile(context.Background(), tt.id, tt.updates)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.fields != nil {
				var verr *common.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.fields, verr.Fields)
			}
		})
	}

	got, err := s.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, models.RoleStudent, got.Role)
}

func TestUpdateProfile_KeepingOwnEmailIsAllowed(t *testing.T) {
	s, _, _ := newUserService(t)
	u := register(t, s, "Alice", "alice@x.com", "secret123")

	got, err := s.UpdateProfile(context.Background(), u.ID, map[string]any{"email": "alice@x.com", "name": "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestPasswordOverBcryptLimitIsValidationError(t *testing.T) {
	long := strings.Repeat("a", auth.MaxPasswordBytes+1)

	s, users, _ := newUserService(t)
	_, err := s.Register(context.Background(), "Bob", "bob@x.com", long)
	require.ErrorIs(t, err, common.ErrorValidation)
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"password"}, verr.Fields)
	assert.Zero(t, users.createCalls)

	u := register(t, s, "Alice", "alice@x.com", strings.Repeat("a", auth.MaxPasswordBytes))
	_, err = s.UpdateProfile(context.Background(), u.ID, map[string]any{"password": long})
	require.ErrorIs(t, err, common.ErrorValidation)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"password"}, verr.Fields)

	_, err = s.Login(context.Background(), "alice@x.com", strings.Repeat("a", auth.MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestUpdateProfile_DeactivatedAccountRefused(t *testing.T) {
	s, users, mock := newUserService(t)
	u := register(t, s, "Alice", "alice@x.com", "secret123")

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := s.Deactivate(context.Background(), u.ID)
	require.NoError(t, err)

	_, err = s.UpdateProfile(context.Background(), u.ID, map[string]any{"name": "Eve"})
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	stored, _ := users.GetUserByID(context.Background(), u.ID)
	assert.Equal(t, "Alice", stored.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivate_OnceThenAlreadyInactive(t *testing.T) {
	s, users, mock := newUserService(t)
	u := register(t, s, "Alice", "alice@x.com", "secret123")

	mock.ExpectBegin()
	mock.ExpectCommit()
	msg, err := s.Deactivate(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "User deactivated successfully", msg)

	stored, _ := users.GetUserByID(context.Background(), u.ID)
	assert.False(t, stored.Active)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = s.Deactivate(context.Background(), u.ID)
	require.ErrorIs(t, err, common.ErrUserAlreadyInactive)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivate_UnknownUser(t *testing.T) {
	s, _, mock := newUserService(t)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := s.Deactivate(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.NotErrorIs(t, err, common.ErrUserAlreadyInactive)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivate_BeginError(t *testing.T) {
	s, _, mock := newUserService(t)

	mock.ExpectBegin().WillReturnError(errors.New("begin failed"))
	_, err := s.Deactivate(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin failed")
}

func TestChangeRole(t *testing.T) {
	s, _, _ := newUserService(t)
	u := register(t, s, "Alice", "alice@x.com", "secret123")

	res, err := s.ChangeRole(context.Background(), u.ID, models.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, "User role updated", res.Message)
	assert.Equal(t, models.RoleTeacher, res.User.Role)

	_, err = s.ChangeRole(context.Background(), u.ID, models.Role("superuser"))
	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"role"}, verr.Fields)

	_, err = s.ChangeRole(context.Background(), u.ID, "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.ChangeRole(context.Background(), "missing", models.RoleAdmin)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRegisterLoginExample(t *testing.T) {
	s, _, _ := newUserService(t)

	u := register(t, s, "Alice", "alice@x.com", "secret123")
	assert.Equal(t, &models.PublicUser{ID: u.ID, Name: "Alice", Email: "alice@x.com", Role: models.RoleStudent}, u)

	_, err := s.Login(context.Background(), "alice@x.com", "secret123")
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "alice@x.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
