package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/pdfdesk/internal/client/client"
	"github.com/dmitrijs2005/pdfdesk/internal/client/models"
	"github.com/dmitrijs2005/pdfdesk/internal/logging"
)

var ErrNotAFile = errors.New("not a regular file")

// DocumentService moves PDFs between the local disk and the server.
type DocumentService interface {
	List(ctx context.Context) ([]*models.Document, error)
	Upload(ctx context.Context, path string) (*models.Document, error)
	Download(ctx context.Context, id, destDir string) (string, error)
	Delete(ctx context.Context, id string) error
}

type documentService struct {
	client client.Client
	log    logging.Logger
}

func NewDocumentService(c client.Client, log logging.Logger) DocumentService {
	return &documentService{client: c, log: log.With("module", "documents")}
}

func (s *documentService) List(ctx context.Context) ([]*models.Document, error) {
	return s.client.ListDocuments(ctx)
}

// Upload sends the file at path; the server decides whether it is a PDF.
func (s *documentService) Upload(ctx context.Context, path string) (*models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotAFile)
	}

	doc, err := s.client.UploadDocument(ctx, filepath.Base(path), f)
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "uploaded", "id", doc.ID, "bytes", fi.Size())
	return doc, nil
}

// Download saves document id into destDir under its original name and
// returns the written path. A partial file is removed on failure.
func (s *documentService) Download(ctx context.Context, id, destDir string) (string, error) {
	doc, url, err := s.client.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}

	name := filepath.Base(doc.FileName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = doc.ID + ".pdf"
	}
	dest := filepath.Join(destDir, name)

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}

	_, err = s.client.Download(ctx, url, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return "", err
	}
	return dest, nil
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	return s.client.DeleteDocument(ctx, id)
}
