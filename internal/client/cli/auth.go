package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pdfdesk/internal/client/client"
)

// getSimpleText, getPassword and confirm are swapped out in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

// Register prompts for name, email and password and creates an account.
// The password slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	u, err := a.authService.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s, you can log in now\n", u)
	return nil
}

// Login prompts for credentials; on success the token is saved for the
// next run.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	u, err := a.authService.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errors.New("invalid credentials")
		}
		return err
	}

	a.user = u
	fmt.Fprintf(a.out, "Logged in as %s\n", u)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.authService.WhoAmI(ctx)
	if err != nil {
		return err
	}
	a.user = u
	fmt.Fprintln(a.out, u)
	return nil
}

// Profile asks for a new name and email; empty answers keep the old value.
func (a *App) Profile(ctx context.Context) error {
	updates := make(map[string]string)

	name, err := getSimpleText(a.reader, "New name (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if name != "" {
		updates["name"] = name
	}

	email, err := getSimpleText(a.reader, "New email (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if email != "" {
		updates["email"] = email
	}

	if len(updates) == 0 {
		fmt.Fprintln(a.out, "Nothing to change")
		return nil
	}
	return a.updateProfile(ctx, updates)
}

func (a *App) Passwd(ctx context.Context) error {
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	return a.updateProfile(ctx, map[string]string{"password": string(password)})
}

func (a *App) updateProfile(ctx context.Context, updates map[string]string) error {
	u, err := a.authService.UpdateProfile(ctx, updates)
	if err != nil {
		return err
	}
	a.user = u
	fmt.Fprintf(a.out, "Profile updated: %s\n", u)
	return nil
}

// Deactivate disables the account after confirmation and logs out.
func (a *App) Deactivate(ctx context.Context) error {
	ok, err := confirm(a.reader, "Deactivate your account? You will not be able to log in again", a.out)
	if err != nil || !ok {
		return err
	}

	msg, err := a.authService.Deactivate(ctx)
	if err != nil {
		return err
	}
	a.user = nil
	fmt.Fprintln(a.out, msg)
	return nil
}

// Logout forgets the saved token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.user = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
