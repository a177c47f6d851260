// Package users declares the credential store contract and its PostgreSQL
// implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/pdfdesk/internal/server/models"
)

// Repository persists User records keyed by email.
//
// Lookups return common.ErrorNotFound when no row matches; writes that hit
// the email unique index return common.ErrorConflict.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error)

	// Deactivate clears the active flag. It returns common.ErrorNotFound when
	// no active user with id exists.
	Deactivate(ctx context.Context, id string) (*models.User, error)
}
