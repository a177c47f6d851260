package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/pdfdesk/internal/client/models"
	"github.com/dmitrijs2005/pdfdesk/internal/common"
	"github.com/dmitrijs2005/pdfdesk/internal/netx"
)

// UploadFieldName is the multipart field the server reads the PDF from.
const UploadFieldName = "pdf"

// HTTPClient implements Client over the JSON API. It is not safe to change
// the token concurrently with in-flight requests.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	token   string
}

type errorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type documentResponse struct {
	Document *models.Document `json:"document"`
	URL      string           `json:"url"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// NewHTTPClient creates a client for the API rooted at serverURL.
func NewHTTPClient(serverURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	return &HTTPClient{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

func (c *HTTPClient) SetToken(token string) { c.token = token }

func (c *HTTPClient) Token() string { return c.token }

func (c *HTTPClient) endpoint(p string) string {
	return c.baseURL.String() + p
}

// do sends one request and decodes a JSON answer into out (if non-nil).
func (c *HTTPClient) do(ctx context.Context, method, p, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p), body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb); err == nil {
			apiErr.Message = eb.Error
			apiErr.Fields = eb.Fields
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, p string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, p, contentType, body, out)
}

func (c *HTTPClient) requireToken() error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// Ping checks the liveness endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	in := map[string]string{"name": name, "email": email, "password": password}
	var u models.User
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/signup", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates and keeps the issued token for later calls.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	in := map[string]string{"email": email, "password": password}
	var res loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/users/login", in, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, errors.New("login response carries no token")
	}
	c.token = res.Token
	return res.User, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, updates map[string]string) (*models.User, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var u models.User
	if err := c.doJSON(ctx, http.MethodPatch, "/api/users/me", updates, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Deactivate disables the current account and returns the server message.
func (c *HTTPClient) Deactivate(ctx context.Context) (string, error) {
	if err := c.requireToken(); err != nil {
		return "", err
	}
	var res messageResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/users/me", nil, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *HTTPClient) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	docs := make([]*models.Document, 0)
	if err := c.doJSON(ctx, http.MethodGet, "/api/docs/mine", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UploadDocument streams body as a multipart form without buffering it.
func (c *HTTPClient) UploadDocument(ctx context.Context, fileName string, body io.Reader) (*models.Document, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, UploadFieldName, fileName))
		h.Set("Content-Type", "application/pdf")

		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, body)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	var doc models.Document
	err := c.do(ctx, http.MethodPost, "/api/docs/upload", mw.FormDataContentType(), pr, &doc)
	// Unblocks the writer if the transport stopped reading early.
	pr.Close()
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocument returns the metadata and a short-lived download URL.
func (c *HTTPClient) GetDocument(ctx context.Context, id string) (*models.Document, string, error) {
	if err := c.requireToken(); err != nil {
		return nil, "", err
	}
	var res documentResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/docs/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, "", err
	}
	return res.Document, res.URL, nil
}

func (c *HTTPClient) DeleteDocument(ctx context.Context, id string) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, "/api/docs/"+url.PathEscape(id), nil, nil)
}

// Download fetches a presigned URL without the session token.
func (c *HTTPClient) Download(ctx context.Context, u string, w io.Writer) (int64, error) {
	return netx.DownloadPresignedURL(ctx, c.http, u, w)
}
