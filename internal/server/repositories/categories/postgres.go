// Package categories provides the PostgreSQL-backed category repository.
package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/spendy/internal/common"
	"github.com/dmitrijs2005/spendy/internal/dbx"
	"github.com/dmitrijs2005/spendy/internal/server/models"
	"github.com/google/uuid"
)

const selectCategory = `SELECT id, uuid, owner, name, kind, created_at, last_update, is_deleted FROM categories`

// PostgresRepository implements category storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	var kind string
	if err := row.Scan(&c.ID, &c.UUID, &c.Owner, &c.Name, &kind, &c.CreatedAt, &c.LastUpdate, &c.IsDeleted); err != nil {
		return nil, err
	}
	c.Kind = models.Kind(kind)
	c.CreatedAt = c.CreatedAt.UTC()
	c.LastUpdate = c.LastUpdate.UTC()
	return &c, nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// FindByUUID looks a category up by its global uuid regardless of owner.
// Retired categories are returned too.
func (r *PostgresRepository) FindByUUID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return r.findOne(ctx, selectCategory+` WHERE uuid = $1`, id)
}

// FindByUUIDAndOwner is FindByUUID restricted to one owner.
func (r *PostgresRepository) FindByUUIDAndOwner(ctx context.Context, id uuid.UUID, owner string) (*models.Category, error) {
	return r.findOne(ctx, selectCategory+` WHERE uuid = $1 AND owner = $2`, id, owner)
}

// FindLiveByKindAndName returns the non-deleted category of owner with the
// given kind and name.
func (r *PostgresRepository) FindLiveByKindAndName(ctx context.Context, owner string, kind models.Kind, name string) (*models.Category, error) {
	return r.findOne(ctx, selectCategory+` WHERE owner = $1 AND kind = $2 AND name = $3 AND NOT is_deleted`, owner, string(kind), name)
}

// ListByOwner returns every category of owner, retired ones included.
func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, selectCategory+` WHERE owner = $1 ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts category and fills in its database id. A uuid or live
// (owner, kind, name) collision yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	query :=
		`INSERT INTO categories (uuid, owner, name, kind, created_at, last_update, is_deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		category.UUID, category.Owner, category.Name, string(category.Kind),
		category.CreatedAt, category.LastUpdate, category.IsDeleted,
	).Scan(&category.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return category, nil
}

// Update rewrites the mutable fields of the category identified by category.ID.
func (r *PostgresRepository) Update(ctx context.Context, category *models.Category) error {
	query :=
		`UPDATE categories SET name = $2, kind = $3, is_deleted = $4, last_update = $5
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		category.ID, category.Name, string(category.Kind), category.IsDeleted, category.LastUpdate)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Delete physically removes the category row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
