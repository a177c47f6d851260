package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/pdfdesk/internal/client/models"
)

// Client is the API surface the CLI needs.
type Client interface {
	SetToken(token string)
	Token() string
	Ping(ctx context.Context) error
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, updates map[string]string) (*models.User, error)
	Deactivate(ctx context.Context) (string, error)
	ListDocuments(ctx context.Context) ([]*models.Document, error)
	UploadDocument(ctx context.Context, fileName string, body io.Reader) (*models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, string, error)
	DeleteDocument(ctx context.Context, id string) error
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}
