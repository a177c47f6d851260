// Package httpapi exposes the user and document services as a JSON API.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/pdfdesk/internal/common"
	"github.com/dmitrijs2005/pdfdesk/internal/logging"
	"github.com/dmitrijs2005/pdfdesk/internal/server/metrics"
	"github.com/dmitrijs2005/pdfdesk/internal/server/models"
	"github.com/dmitrijs2005/pdfdesk/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	maxJSONBody = 1 << 20

	// UploadFieldName is the multipart field holding the PDF.
	UploadFieldName = "pdf"
)

// UserService is the account surface the handlers need.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.PublicUser, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, updates map[string]any) (*models.User, error)
	Deactivate(ctx context.Context, id string) (string, error)
	ChangeRole(ctx context.Context, id string, role models.Role) (*services.RoleChangeResult, error)
}

// DocumentService is the document surface the handlers need.
type DocumentService interface {
	Upload(ctx context.Context, ownerID, fileName string, size int64, body io.Reader) (*models.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Document, error)
	Get(ctx context.Context, ownerID, id string) (*models.Document, string, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Handler serves the /api routes.
type Handler struct {
	users          UserService
	documents      DocumentService
	metrics        *metrics.Collector
	log            logging.Logger
	maxUploadBytes int64
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type roleRequest struct {
	Role models.Role `json:"role"`
}

// DocumentResponse pairs a document with a short-lived download URL.
type DocumentResponse struct {
	Document *models.Document `json:"document"`
	URL      string           `json:"url"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	u, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	h.metrics.RecordSignup()
	writeJSON(w, http.StatusCreated, u)
}

// login collapses unknown-email and wrong-password into one response.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.metrics.RecordLogin(metrics.LoginRejected)
		respondError(r.Context(), h.log, w, err)
		return
	}

	res, err := h.users.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		h.metrics.RecordLogin(metrics.LoginSuccess)
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorUnauthorized):
		h.metrics.RecordLogin(metrics.LoginFailure)
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, common.ErrorValidation):
		h.metrics.RecordLogin(metrics.LoginRejected)
		respondError(r.Context(), h.log, w, err)
	default:
		respondError(r.Context(), h.log, w, err)
	}
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	u, err := h.users.GetByID(r.Context(), id.UserID)
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	var updates map[string]any
	if err := decodeJSON(w, r, &updates); err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	id, _ := IdentityFrom(r.Context())
	u, err := h.users.UpdateProfile(r.Context(), id.UserID, updates)
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, u.Public())
}

func (h *Handler) deactivateMe(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	msg, err := h.users.Deactivate(r.Context(), id.UserID)
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageBody{Message: msg})
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	res, err := h.users.ChangeRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	docs, err := h.documents.ListByOwner(r.Context(), id.UserID)
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// uploadDocument streams the "pdf" multipart part straight into the service.
func (h *Handler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+maxJSONBody)

	mr, err := r.MultipartReader()
	if err != nil {
		respondError(r.Context(), h.log, w, common.NewValidationError("expected multipart/form-data", UploadFieldName))
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			respondError(r.Context(), h.log, w, common.NewValidationError("missing required fields", UploadFieldName))
			return
		}
		if err != nil {
			respondError(r.Context(), h.log, w, err)
			return
		}
		if part.FormName() != UploadFieldName {
			part.Close()
			continue
		}

		id, _ := IdentityFrom(r.Context())
		doc, err := h.documents.Upload(r.Context(), id.UserID, part.FileName(), -1, part)
		part.Close()
		if err != nil {
			if errors.Is(err, common.ErrQuotaExceeded) {
				h.metrics.RecordQuotaRejection()
			}
			respondError(r.Context(), h.log, w, err)
			return
		}

		h.metrics.RecordUpload()
		writeJSON(w, http.StatusCreated, doc)
		return
	}
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	doc, url, err := h.documents.Get(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Document: doc, URL: url})
}

func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	if err := h.documents.Delete(r.Context(), id.UserID, chi.URLParam(r, "id")); err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}
	h.metrics.RecordDelete()
	w.WriteHeader(http.StatusNoContent)
}
