package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pdfdesk/internal/dbx"
	"github.com/dmitrijs2005/pdfdesk/internal/server/repositories/documents"
	"github.com/dmitrijs2005/pdfdesk/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX so services can run
// them either directly on the pool or inside a dbx.WithTx transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Documents(db dbx.DBTX) documents.Repository
}
