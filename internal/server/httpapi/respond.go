package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/pdfdesk/internal/common"
	"github.com/dmitrijs2005/pdfdesk/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponseBody is the JSON shape of every error response.
type ErrorResponseBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// MessageBody carries a plain confirmation message.
type MessageBody struct {
	Message string `json:"message"`
}

const (
	msgInvalidCredentials = "invalid credentials"
	msgInternal           = "internal server error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, fields ...string) {
	writeJSON(w, status, ErrorResponseBody{Error: msg, Fields: fields})
}

// respondError maps service errors to status codes. Unexpected errors are
// logged with the request id and reported as a bare 500.
func respondError(ctx context.Context, log logging.Logger, w http.ResponseWriter, err error) {
	var verr *common.ValidationError
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error(), verr.Fields...)
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorForbidden):
		writeError(w, http.StatusForbidden, common.ErrorForbidden.Error())
	case errors.Is(err, common.ErrUserAlreadyInactive):
		writeError(w, http.StatusNotFound, "user not found or already deactivated")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, common.ErrorNotFound.Error())
	case errors.Is(err, common.ErrQuotaExceeded):
		writeError(w, http.StatusConflict, common.ErrQuotaExceeded.Error())
	case errors.Is(err, common.ErrorConflict):
		writeError(w, http.StatusConflict, "user already exists")
	default:
		log.Error(ctx, "request failed", "request_id", middleware.GetReqID(ctx), "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return common.NewValidationError("malformed JSON body")
	}
	return nil
}
