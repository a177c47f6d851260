// Package services contains application services for the pdfdesk CLI.
// This file defines the authentication service: register, login with a
// persisted session token, logout and profile housekeeping.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pdfdesk/internal/client/client"
	"github.com/dmitrijs2005/pdfdesk/internal/client/models"
	"github.com/dmitrijs2005/pdfdesk/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Restore: pick up a token saved by an earlier run, if still accepted.
//   - Login: authenticate and persist the issued token.
//   - Logout: forget the token locally (the server keeps no sessions).
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Restore(ctx context.Context) (*models.User, error)
	Register(ctx context.Context, name, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	WhoAmI(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, updates map[string]string) (*models.User, error)
	Deactivate(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	tokens TokenStore
	log    logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and
// token store.
func NewAuthService(c client.Client, tokens TokenStore, log logging.Logger) AuthService {
	return &authService{client: c, tokens: tokens, log: log.With("module", "auth")}
}

// Restore loads the saved token and checks it with the server. An expired
// or rejected token is removed and (nil, nil) is returned.
func (a *authService) Restore(ctx context.Context) (*models.User, error) {
	token, err := a.tokens.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	a.client.SetToken(token)
	u, err := a.client.Me(ctx)
	if err == nil {
		return u, nil
	}

	if errors.Is(err, client.ErrUnauthorized) {
		a.log.Debug(ctx, "saved token rejected, discarding")
		a.client.SetToken("")
		return nil, a.tokens.Clear()
	}
	return nil, err
}

func (a *authService) Register(ctx context.Context, name, email string, password []byte) (*models.User, error) {
	return a.client.Register(ctx, name, email, string(password))
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	u, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if err := a.tokens.Save(a.client.Token()); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}
	return u, nil
}

func (a *authService) WhoAmI(ctx context.Context) (*models.User, error) {
	return a.client.Me(ctx)
}

func (a *authService) UpdateProfile(ctx context.Context, updates map[string]string) (*models.User, error) {
	return a.client.UpdateProfile(ctx, updates)
}

// Deactivate disables the account and logs out locally.
func (a *authService) Deactivate(ctx context.Context) (string, error) {
	msg, err := a.client.Deactivate(ctx)
	if err != nil {
		return "", err
	}
	return msg, a.Logout(ctx)
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetToken("")
	return a.tokens.Clear()
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
