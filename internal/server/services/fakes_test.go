package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pdfdesk/internal/common"
	"github.com/dmitrijs2005/pdfdesk/internal/dbx"
	"github.com/dmitrijs2005/pdfdesk/internal/server/models"
	"github.com/dmitrijs2005/pdfdesk/internal/server/repositories/documents"
	usersrepo "github.com/dmitrijs2005/pdfdesk/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memUsers is an in-memory users.Repository with the same error contract as
// the PostgreSQL implementation.
type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	nextID int

	createCalls int
	createErr   error
	getErr      error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*models.User{}} }

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, x := range m.byID {
		if x.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	m.nextID++
	cp := *u
	cp.ID = fmt.Sprintf("u%d", m.nextID)
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, x := range m.byID {
		if x.Email == email {
			out := *x
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *x
	return &out, nil
}

func (m *memUsers) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Email != nil {
		for _, o := range m.byID {
			if o.ID != id && o.Email == *upd.Email {
				return nil, common.ErrorConflict
			}
		}
		x.Email = *upd.Email
	}
	if upd.Name != nil {
		x.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		x.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		x.Role = *upd.Role
	}
	out := *x
	return &out, nil
}

func (m *memUsers) Deactivate(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, ok := m.byID[id]
	if !ok || !x.Active {
		return nil, common.ErrorNotFound
	}
	x.Active = false
	out := *x
	return &out, nil
}

type memDocs struct {
	mu     sync.Mutex
	byID   map[string]*models.Document
	nextID int
	clock  time.Time

	createErr error
	countErr  error
}

func newMemDocs() *memDocs {
	return &memDocs{byID: map[string]*models.Document{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memDocs) Create(ctx context.Context, d *models.Document) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	m.clock = m.clock.Add(time.Minute)
	cp := *d
	cp.ID = fmt.Sprintf("d%d", m.nextID)
	cp.CreatedAt = m.clock
	m.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memDocs) ListByOwner(ctx context.Context, ownerID string) ([]*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Document, 0)
	for _, d := range m.byID {
		if d.OwnerID == ownerID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memDocs) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	docs, _ := m.ListByOwner(ctx, ownerID)
	return len(docs), nil
}

func (m *memDocs) GetByID(ctx context.Context, id string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDocs) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.byID, id)
	return nil
}

type fakeRepoManager struct {
	u *memUsers
	d *memDocs
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Documents(db dbx.DBTX) documents.Repository   { return m.d }

// fakeStore is an in-memory storage.ObjectStorage.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	putErr     error
	deleteErr  error
	presignErr error
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (f *fakeStore) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	if int64(buf.Len()) != size {
		return errors.New("size mismatch")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = buf.Bytes()
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return f.deleteErr
}

func (f *fakeStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return fmt.Sprintf("https://s3.test/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

func (f *fakeStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
