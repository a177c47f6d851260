package services

import (
	"context"
	"io"
	"strings"

	"github.com/dmitrijs2005/pdfdesk/internal/client/client"
	"github.com/dmitrijs2005/pdfdesk/internal/client/models"
)

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	token string

	user      *models.User
	meErr     error
	loginErr  error
	regErr    error
	deactErr  error
	updateErr error
	updates   map[string]string

	docs      []*models.Document
	uploaded  string
	uploadErr error
	getErr    error
	doc       *models.Document
	blob      string
	dlErr     error
	deleted   []string
	pingErr   error
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) SetToken(token string)          { f.token = token }
func (f *fakeClient) Token() string                  { return f.token }
func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.User{ID: "u1", Name: name, Email: email, Role: "student"}, nil
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.token = "tok-" + email
	return f.user, nil
}

func (f *fakeClient) Me(ctx context.Context) (*models.User, error) {
	if f.token == "" {
		return nil, client.ErrNotLoggedIn
	}
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.user, nil
}

func (f *fakeClient) UpdateProfile(ctx context.Context, updates map[string]string) (*models.User, error) {
	f.updates = updates
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.user, nil
}

func (f *fakeClient) Deactivate(ctx context.Context) (string, error) {
	if f.deactErr != nil {
		return "", f.deactErr
	}
	return "User deactivated successfully", nil
}

func (f *fakeClient) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	return f.docs, nil
}

func (f *fakeClient) UploadDocument(ctx context.Context, fileName string, body io.Reader) (*models.Document, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.uploaded = string(b)
	return &models.Document{ID: "d1", FileName: fileName, SizeBytes: int64(len(b))}, nil
}

func (f *fakeClient) GetDocument(ctx context.Context, id string) (*models.Document, string, error) {
	if f.getErr != nil {
		return nil, "", f.getErr
	}
	return f.doc, "https://s3.test/" + id, nil
}

func (f *fakeClient) DeleteDocument(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	n, err := io.Copy(w, strings.NewReader(f.blob))
	if err != nil {
		return n, err
	}
	return n, f.dlErr
}

// memTokens is an in-memory TokenStore.
type memTokens struct {
	token   string
	saveErr error
	cleared bool
}

func (m *memTokens) Load() (string, error) { return m.token, nil }

func (m *memTokens) Save(token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *memTokens) Clear() error {
	m.token = ""
	m.cleared = true
	return nil
}
