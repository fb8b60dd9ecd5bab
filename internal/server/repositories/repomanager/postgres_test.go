package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/categories"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/entries"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/owners"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager()

	assert.IsType(t, &owners.PostgresRepository{}, m.Owners(db))
	assert.IsType(t, &categories.PostgresRepository{}, m.Categories(db))
	assert.IsType(t, &entries.PostgresRepository{}, m.Entries(db))
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestOpen_InvalidDSN(t *testing.T) {
	_, _, err := Open(context.Background(), "postgres://%zz", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse dsn")
}

func TestOpen_PoolErrorAndMaxConns(t *testing.T) {
	orig := newPool
	defer func() { newPool = orig }()

	var gotMax int32
	newPool = func(ctx context.Context, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
		gotMax = cfg.MaxConns
		return nil, errors.New("no route")
	}

	_, _, err := Open(context.Background(), "postgres://u:p@localhost:5432/spendy", 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create pool")
	assert.Equal(t, int32(7), gotMax)
}
