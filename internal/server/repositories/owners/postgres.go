// Package owners stores the identities that scope categories and entries.
package owners

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/spendy/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Register records username. Registering an existing owner is a no-op.
func (r *PostgresRepository) Register(ctx context.Context, username string) error {
	query :=
		`INSERT INTO owners (username)
		 VALUES ($1)
		 ON CONFLICT (username) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, username); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM owners WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Lock takes a transaction-scoped advisory lock keyed by username. It must be
// called on a transaction; the lock is released on commit or rollback.
func (r *PostgresRepository) Lock(ctx context.Context, username string) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, username); err != nil {
		return fmt.Errorf("lock owner: %w", err)
	}
	return nil
}
