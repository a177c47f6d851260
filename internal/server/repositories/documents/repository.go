// Package documents declares the server-side repository contract for PDF
// document metadata.
package documents

import (
	"context"

	"github.com/dmitrijs2005/pdfdesk/internal/server/models"
)

// Repository stores Document metadata rows.
type Repository interface {
	// Create inserts doc and fills in its ID and CreatedAt.
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)

	// ListByOwner returns the owner's documents, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Document, error)

	// CountByOwner returns how many documents the owner has.
	CountByOwner(ctx context.Context, ownerID string) (int, error)

	// GetByID returns common.ErrorNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// Delete removes the row; common.ErrorNotFound when nothing was deleted.
	Delete(ctx context.Context, id string) error
}
