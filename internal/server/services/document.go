package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/pdfdesk/internal/common"
	"github.com/dmitrijs2005/pdfdesk/internal/logging"
	"github.com/dmitrijs2005/pdfdesk/internal/server/config"
	"github.com/dmitrijs2005/pdfdesk/internal/server/models"
	"github.com/dmitrijs2005/pdfdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pdfdesk/internal/server/storage"
)

const (
	pdfContentType = "application/pdf"

	// DownloadURLValidity bounds presigned download links.
	DownloadURLValidity = 15 * time.Minute
)

var pdfMagic = []byte("%PDF-")

// DocumentService manages the PDFs a user uploads: bytes go to object
// storage, metadata to the documents table.
type DocumentService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	store        storage.ObjectStorage
	maxBytes     int64
	maxDocuments int
	log          logging.Logger
	now          func() time.Time
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStorage, cfg *config.Config, log logging.Logger) *DocumentService {
	return &DocumentService{
		db:           db,
		repomanager:  m,
		store:        store,
		maxBytes:     cfg.MaxUploadBytes,
		maxDocuments: cfg.MaxDocuments,
		log:          log.With("module", "documents"),
		now:          time.Now,
	}
}

// Upload stores a PDF for ownerID. size is the client-declared length, or
// negative when unknown, and only rejects oversized uploads early; the stored
// size is what was read.
func (s *DocumentService) Upload(ctx context.Context, ownerID, fileName string, size int64, body io.Reader) (*models.Document, error) {
	fileName = cleanFileName(fileName)
	if fileName == "" {
		return nil, common.NewValidationError("missing required fields", "file")
	}
	if size > s.maxBytes {
		return nil, s.tooLarge()
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("error reading upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, s.tooLarge()
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, common.NewValidationError("only PDF files are accepted", "file")
	}

	repo := s.repomanager.Documents(s.db)

	n, err := repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error counting documents: %w", err)
	}
	if s.maxDocuments > 0 && n >= s.maxDocuments {
		return nil, common.ErrQuotaExceeded
	}

	key := storage.StorageKey(ownerID, s.now())
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), pdfContentType); err != nil {
		return nil, fmt.Errorf("error storing document: %w", err)
	}

	doc, err := repo.Create(ctx, &models.Document{
		OwnerID:    ownerID,
		FileName:   fileName,
		SizeBytes:  int64(len(data)),
		StorageKey: key,
	})
	if err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.log.Error(ctx, "orphaned object after failed insert", "key", key, "error", derr)
		}
		return nil, fmt.Errorf("error creating document: %w", err)
	}

	s.log.Info(ctx, "document uploaded", "owner_id", ownerID, "document_id", doc.ID, "size", doc.SizeBytes)
	return doc, nil
}

// ListByOwner returns the owner's documents, newest first.
func (s *DocumentService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Document, error) {
	docs, err := s.repomanager.Documents(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	return docs, nil
}

// Get returns the document together with a presigned download URL.
// Documents owned by someone else are reported as common.ErrorNotFound.
func (s *DocumentService) Get(ctx context.Context, ownerID, id string) (*models.Document, string, error) {
	doc, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, "", err
	}

	url, err := s.store.PresignGet(ctx, doc.StorageKey, DownloadURLValidity)
	if err != nil {
		return nil, "", fmt.Errorf("error presigning download: %w", err)
	}
	return doc, url, nil
}

// Delete removes the metadata row, then the object. A failed object delete
// is logged only.
func (s *DocumentService) Delete(ctx context.Context, ownerID, id string) error {
	doc, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repomanager.Documents(s.db).Delete(ctx, doc.ID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		s.log.Warn(ctx, "object delete failed", "key", doc.StorageKey, "error", err)
	}

	s.log.Info(ctx, "document deleted", "owner_id", ownerID, "document_id", doc.ID)
	return nil
}

func (s *DocumentService) owned(ctx context.Context, ownerID, id string) (*models.Document, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return doc, nil
}

func (s *DocumentService) tooLarge() error {
	return common.NewValidationError(fmt.Sprintf("file exceeds %d bytes", s.maxBytes), "file")
}

// cleanFileName keeps only the base name a browser would show.
func cleanFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}
