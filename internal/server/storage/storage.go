// Package storage keeps uploaded PDF bytes in S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ObjectStorage is the blob store behind DocumentService.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// StorageKey returns a fresh object key of the form
// users/<owner>/<yyyy>/<mm>/<dd>/<uuid>.pdf.
func StorageKey(ownerID string, now time.Time) string {
	return fmt.Sprintf("users/%s/%04d/%02d/%02d/%v.pdf", ownerID, now.Year(), int(now.Month()), now.Day(), uuid.New())
}
