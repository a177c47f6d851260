package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pdfdesk/internal/common"
	"github.com/dmitrijs2005/pdfdesk/internal/dbx"
	"github.com/dmitrijs2005/pdfdesk/internal/server/models"
	"github.com/google/uuid"
)

const userColumns = `id, name, email, password_hash, role, active, created_at, updated_at`

// PostgresRepository stores users in PostgreSQL. Ids are UUIDs; a malformed
// id cannot match a row and is reported as common.ErrorNotFound.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user models.User
		role string
	)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.Role = models.Role(role)
	return &user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (name, email, password_hash, role, active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, string(user.Role), user.Active).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// Update applies the non-nil fields of update in one statement.
func (r *PostgresRepository) Update(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}
	query :=
		`UPDATE users SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			password_hash = COALESCE($4, password_hash),
			role = COALESCE($5, role),
			updated_at = now()
		 WHERE id = $1
		 RETURNING ` + userColumns

	var role *string
	if update.Role != nil {
		s := string(*update.Role)
		role = &s
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, update.Name, update.Email, update.PasswordHash, role))
	if err != nil && dbx.IsUniqueViolation(err) {
		return nil, common.ErrorConflict
	}
	return user, err
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id string) (*models.User, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}
	query :=
		`UPDATE users SET active = FALSE, updated_at = now()
		 WHERE id = $1 AND active
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, id))
}
