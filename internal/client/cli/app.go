package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/pdfdesk/internal/client/client"
	"github.com/dmitrijs2005/pdfdesk/internal/client/config"
	"github.com/dmitrijs2005/pdfdesk/internal/client/models"
	"github.com/dmitrijs2005/pdfdesk/internal/client/services"
	"github.com/dmitrijs2005/pdfdesk/internal/logging"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	docService  services.DocumentService
	user        *models.User
	reader      *bufio.Reader
	out         io.Writer
	log         logging.Logger
}

// NewApp wires the API client and the token file described by c.
func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	tokens, err := services.NewFileTokenStore(c.TokenDir, config.TokenFileName)
	if err != nil {
		return nil, err
	}

	return &App{
		config:      c,
		authService: services.NewAuthService(apiClient, tokens, log),
		docService:  services.NewDocumentService(apiClient, log),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		log:         log,
	}, nil
}

// Run restores a saved session, if any, and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	a.restore(ctx)
	a.Root(ctx)
}

func (a *App) restore(ctx context.Context) {
	u, err := a.authService.Restore(ctx)
	if err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
		return
	}
	if u != nil {
		a.user = u
		fmt.Fprintf(a.out, "Welcome back, %s\n", u.Name)
	}
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}

func (a *App) getStatus() string {
	if a.user == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", a.user.Email)
}
