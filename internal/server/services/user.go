// Package services contains server-side business logic. This file implements
// UserService: registration, login with signed session tokens, and account
// mutations (profile, role, deactivation).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/pdfdesk/internal/common"
	"github.com/dmitrijs2005/pdfdesk/internal/dbx"
	"github.com/dmitrijs2005/pdfdesk/internal/logging"
	"github.com/dmitrijs2005/pdfdesk/internal/server/auth"
	"github.com/dmitrijs2005/pdfdesk/internal/server/config"
	"github.com/dmitrijs2005/pdfdesk/internal/server/models"
	"github.com/dmitrijs2005/pdfdesk/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

const (
	MessageUserDeactivated = "User deactivated successfully"
	MessageRoleUpdated     = "User role updated"
)

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string             `json:"token"`
	User  *models.PublicUser `json:"user"`
}

// RoleChangeResult is returned by ChangeRole.
type RoleChangeResult struct {
	Message string             `json:"message"`
	User    *models.PublicUser `json:"user"`
}

type registerInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type roleInput struct {
	Role string `json:"role" validate:"required,oneof=student teacher admin"`
}

// UserService provides authentication-related operations:
// - Register: create student accounts
// - Login: verify credentials and mint a session token
// - GetByID, UpdateProfile, Deactivate, ChangeRole: account maintenance
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
	validate      *validator.Validate
	log           logging.Logger
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		validate:      newValidator(),
		log:           log.With("module", "users"),
	}
}

// Register creates a student account. Every missing field is reported before
// the store is touched; an email already on file yields common.ErrorConflict.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.PublicUser, error) {
	if err := validateInput(s.validate, registerInput{Name: name, Email: email, Password: password}); err != nil {
		return nil, err
	}
	if err := checkPasswordLength(password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorConflict
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleStudent,
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u.Public(), nil
}

// Login verifies credentials and issues a session token.
//
// An unknown email yields common.ErrorNotFound, a wrong password or a
// deactivated account common.ErrorUnauthorized. Both paths cost one bcrypt
// comparison.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := validateInput(s.validate, loginInput{Email: email, Password: password}); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.SpendComparison(password)
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("error checking password: %w", err)
	}
	if !ok || !user.Active {
		return nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &LoginResult{Token: token, User: user.Public()}, nil
}

// GetByID returns the full stored record; callers filter what they expose.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetUserByID(ctx, id)
}

// UpdateProfile applies the allow-listed fields name, email and password.
// A deactivated account gets common.ErrorUnauthorized, as it does at login.
func (s *UserService) UpdateProfile(ctx context.Context, id string, updates map[string]any) (*models.User, error) {
	upd, err := s.buildProfileUpdate(updates)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	current, err := repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Active {
		return nil, common.ErrorUnauthorized
	}

	if upd.Email != nil {
		other, err := repo.GetUserByEmail(ctx, *upd.Email)
		switch {
		case err == nil && other.ID != id:
			return nil, common.ErrorConflict
		case err != nil && !errors.Is(err, common.ErrorNotFound):
			return nil, fmt.Errorf("error searching user: %w", err)
		}
	}

	u, err := repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) buildProfileUpdate(updates map[string]any) (models.UserUpdate, error) {
	var upd models.UserUpdate
	if len(updates) == 0 {
		return upd, common.NewValidationError("no fields to update")
	}

	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var unknown, invalid []string
	values := make(map[string]string, len(updates))
	for _, k := range keys {
		switch k {
		case "name", "email", "password":
		default:
			unknown = append(unknown, k)
			continue
		}
		v, ok := updates[k].(string)
		if !ok || v == "" {
			invalid = append(invalid, k)
			continue
		}
		values[k] = v
	}
	if len(unknown) > 0 {
		return upd, common.NewValidationError("fields cannot be updated", unknown...)
	}
	if len(invalid) > 0 {
		return upd, common.NewValidationError("must be a non-empty string", invalid...)
	}

	if v, ok := values["name"]; ok {
		upd.Name = &v
	}
	if v, ok := values["email"]; ok {
		upd.Email = &v
	}
	if v, ok := values["password"]; ok {
		if err := checkPasswordLength(v); err != nil {
			return upd, err
		}
		hash, err := auth.HashPassword(v)
		if err != nil {
			return upd, fmt.Errorf("error hashing password: %w", err)
		}
		upd.PasswordHash = &hash
	}
	return upd, nil
}

// bcrypt ignores everything past MaxPasswordBytes and refuses to hash it.
func checkPasswordLength(password string) error {
	if len(password) > auth.MaxPasswordBytes {
		return common.NewValidationError(fmt.Sprintf("password exceeds %d bytes", auth.MaxPasswordBytes), "password")
	}
	return nil
}

// Deactivate clears the active flag. Deactivating an inactive account returns
// common.ErrUserAlreadyInactive, an unknown id common.ErrorNotFound.
func (s *UserService) Deactivate(ctx context.Context, id string) (string, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		_, err := repo.Deactivate(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("error deactivating user: %w", err)
		}
		if _, err := repo.GetUserByID(ctx, id); err != nil {
			return err
		}
		return common.ErrUserAlreadyInactive
	})
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "user deactivated", "user_id", id)
	return MessageUserDeactivated, nil
}

// ChangeRole sets the account role to one of student, teacher or admin.
func (s *UserService) ChangeRole(ctx context.Context, id string, role models.Role) (*RoleChangeResult, error) {
	if err := validateInput(s.validate, roleInput{Role: string(role)}); err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).Update(ctx, id, models.UserUpdate{Role: &role})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user role changed", "user_id", id, "role", role)
	return &RoleChangeResult{Message: MessageRoleUpdated, User: u.Public()}, nil
}
