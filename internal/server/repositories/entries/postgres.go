// Package entries provides PostgreSQL-backed repositories for ledger entry
// persistence, sync queries and price aggregation.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/spendy/internal/common"
	"github.com/dmitrijs2005/spendy/internal/dbx"
	"github.com/dmitrijs2005/spendy/internal/server/models"
	"github.com/google/uuid"
)

// selectEntry resolves the category uuid of every row through the categories table.
const selectEntry = `SELECT e.id, e.uuid, e.owner, e.kind, e.category_id, c.uuid, e.description, e.price, e.created_at, e.last_update, e.is_deleted
	FROM entries e JOIN categories c ON c.id = e.category_id`

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
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

func scanEntry(row rowScanner) (*models.Entry, error) {
	var e models.Entry
	var kind string
	if err := row.Scan(
		&e.ID, &e.UUID, &e.Owner, &kind, &e.CategoryID, &e.CategoryUUID,
		&e.Description, &e.Price, &e.CreatedAt, &e.LastUpdate, &e.IsDeleted,
	); err != nil {
		return nil, err
	}
	e.Kind = models.Kind(kind)
	e.CreatedAt = e.CreatedAt.UTC()
	e.LastUpdate = e.LastUpdate.UTC()
	return &e, nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (*models.Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// FindByUUIDForUpdate returns the entry with the given uuid or
// common.ErrorNotFound, row-locking it until the surrounding transaction ends.
func (r *PostgresRepository) FindByUUIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Entry, error) {
	return r.findOne(ctx, selectEntry+` WHERE e.uuid = $1 FOR UPDATE OF e`, id)
}

func (r *PostgresRepository) ExistsByUUID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM entries WHERE uuid = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Create inserts entry. entry.CategoryID must already be resolved.
// A duplicate uuid yields common.ErrorAlreadyExists, including one committed
// by another owner after the caller's existence check.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query :=
		`INSERT INTO entries (uuid, owner, kind, category_id, description, price, created_at, last_update, is_deleted)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (uuid) DO NOTHING
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		entry.UUID, entry.Owner, string(entry.Kind), entry.CategoryID,
		entry.Description, entry.Price, entry.CreatedAt, entry.LastUpdate, entry.IsDeleted,
	).Scan(&entry.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

// Update replaces the mutable fields of the entry with entry.UUID.
// Owner and created_at are never touched.
func (r *PostgresRepository) Update(ctx context.Context, entry *models.Entry) error {
	query :=
		`UPDATE entries
		 SET kind = $2, category_id = $3, description = $4, price = $5, last_update = $6, is_deleted = $7
		 WHERE uuid = $1`

	res, err := r.db.ExecContext(ctx, query,
		entry.UUID, string(entry.Kind), entry.CategoryID, entry.Description, entry.Price, entry.LastUpdate, entry.IsDeleted)
	if err != nil {
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

// DeleteByUUID physically removes owner's entry. Deleting a missing uuid is not an error.
func (r *PostgresRepository) DeleteByUUID(ctx context.Context, owner string, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE uuid = $1 AND owner = $2`, id, owner); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteByCategory removes every entry referencing the category and reports how many went.
func (r *PostgresRepository) DeleteByCategory(ctx context.Context, categoryID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE category_id = $1`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

// ReplaceCategory points every entry of owner referencing oldCategoryID at
// newCategoryID, stamps last_update with at and returns the rewritten rows.
func (r *PostgresRepository) ReplaceCategory(ctx context.Context, owner string, oldCategoryID, newCategoryID int64, at time.Time) ([]*models.Entry, error) {
	query :=
		`UPDATE entries e SET category_id = c.id, last_update = $4
		 FROM categories c
		 WHERE c.id = $3 AND e.owner = $1 AND e.category_id = $2
		 RETURNING e.id, e.uuid, e.owner, e.kind, e.category_id, c.uuid, e.description, e.price, e.created_at, e.last_update, e.is_deleted`

	return r.selectMany(ctx, query, owner, oldCategoryID, newCategoryID, at)
}

func (r *PostgresRepository) CountByOwnerAndCategory(ctx context.Context, owner string, categoryID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE owner = $1 AND category_id = $2`, owner, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// SelectUpdatedSince returns all entries of owner with last_update > since.
func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, owner string, since time.Time) ([]*models.Entry, error) {
	return r.selectMany(ctx, selectEntry+` WHERE e.owner = $1 AND e.last_update > $2 ORDER BY e.last_update, e.id`, owner, since)
}

// SelectByCreatedRange returns all entries of owner with created_at in [start, end].
func (r *PostgresRepository) SelectByCreatedRange(ctx context.Context, owner string, start, end time.Time) ([]*models.Entry, error) {
	return r.selectMany(ctx, selectEntry+` WHERE e.owner = $1 AND e.created_at BETWEEN $2 AND $3 ORDER BY e.created_at, e.id`, owner, start, end)
}

// SumPrices sums the prices of owner's entries in the category with
// created_at in [start, end]. No matching rows sum to 0.
func (r *PostgresRepository) SumPrices(ctx context.Context, owner string, categoryUUID uuid.UUID, start, end time.Time) (int64, error) {
	query :=
		`SELECT COALESCE(SUM(e.price), 0)::BIGINT
		 FROM entries e JOIN categories c ON c.id = e.category_id
		 WHERE e.owner = $1 AND c.uuid = $2 AND e.created_at BETWEEN $3 AND $4`

	var sum int64
	if err := r.db.QueryRowContext(ctx, query, owner, categoryUUID, start, end).Scan(&sum); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return sum, nil
}

// SumPricesLifetime is SumPrices without a date bound.
func (r *PostgresRepository) SumPricesLifetime(ctx context.Context, owner string, categoryUUID uuid.UUID) (int64, error) {
	query :=
		`SELECT COALESCE(SUM(e.price), 0)::BIGINT
		 FROM entries e JOIN categories c ON c.id = e.category_id
		 WHERE e.owner = $1 AND c.uuid = $2`

	var sum int64
	if err := r.db.QueryRowContext(ctx, query, owner, categoryUUID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return sum, nil
}
