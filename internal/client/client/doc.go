// Package client talks to the pdfdesk HTTP API.
//
// Client is the transport-agnostic contract used by the CLI services;
// HTTPClient implements it over JSON/HTTP with a bearer session token.
//
// # Error Handling
//
// Transport failures match ErrUnavailable. Non-2xx responses come back as
// *APIError, which also matches the corresponding sentinel from
// internal/common (ErrorValidation, ErrorNotFound, ErrorConflict,
// ErrorForbidden) or ErrUnauthorized via errors.Is.
package client
