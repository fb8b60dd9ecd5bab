package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/spendy/internal/dbx"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/categories"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/entries"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/owners"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Owners(db dbx.DBTX) owners.Repository
	Categories(db dbx.DBTX) categories.Repository
	Entries(db dbx.DBTX) entries.Repository
}
