package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/spendy/internal/common"
	"github.com/dmitrijs2005/spendy/internal/dbx"
	"github.com/dmitrijs2005/spendy/internal/logging"
	"github.com/dmitrijs2005/spendy/internal/server/models"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CategoryService creates, updates and deletes categories. It enforces
// per-owner uniqueness of live (kind, name) pairs and refuses to delete a
// category that entries still reference.
type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CategoryService {
	return &CategoryService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "categories"),
		now:         time.Now,
	}
}

// List returns all categories of owner, retired ones included.
func (s *CategoryService) List(ctx context.Context, owner string) ([]*models.Category, error) {
	list, err := s.repomanager.Categories(s.db).ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return list, nil
}

// Create stores a new category for owner with the timestamps supplied by the
// caller. It fails with common.ErrCategoryExists when owner already has a
// live category of the same kind and name, or when the uuid is taken by
// anyone.
func (s *CategoryService) Create(ctx context.Context, owner string, category *models.Category) (*models.Category, error) {
	if err := category.Validate(); err != nil {
		return nil, err
	}

	var created *models.Category
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Owners(tx).Lock(ctx, owner); err != nil {
			return err
		}
		repo := s.repomanager.Categories(tx)

		if err := absent(repo.FindLiveByKindAndName(ctx, owner, category.Kind, category.Name)); err != nil {
			return err
		}
		if err := absent(repo.FindByUUID(ctx, category.UUID)); err != nil {
			return err
		}

		c := *category
		c.ID = 0
		c.Owner = owner
		c.CreatedAt = c.CreatedAt.UTC()
		c.LastUpdate = c.LastUpdate.UTC()

		var err error
		created, err = repo.Create(ctx, &c)
		if errors.Is(err, common.ErrorAlreadyExists) {
			return common.ErrCategoryExists
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating category: %w", err)
	}

	s.log.Info(ctx, "category created", "owner", owner, "uuid", created.UUID, "kind", created.Kind)
	return created, nil
}

// absent turns the result of a lookup into common.ErrCategoryExists when the
// category was found and into nil when it was not.
func absent(_ *models.Category, err error) error {
	switch {
	case err == nil:
		return common.ErrCategoryExists
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		return err
	}
}

// Update replaces the name, kind and retired flag of owner's category with
// category.UUID. Unlike entry updates, lastUpdate is always stamped with
// the server clock.
func (s *CategoryService) Update(ctx context.Context, owner string, category *models.Category) (*models.Category, error) {
	if err := category.Validate(); err != nil {
		return nil, err
	}

	var stored *models.Category
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Owners(tx).Lock(ctx, owner); err != nil {
			return err
		}
		repo := s.repomanager.Categories(tx)

		var err error
		stored, err = repo.FindByUUIDAndOwner(ctx, category.UUID, owner)
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrCategoryNotFound
		}
		if err != nil {
			return err
		}

		if !category.IsDeleted {
			other, err := repo.FindLiveByKindAndName(ctx, owner, category.Kind, category.Name)
			switch {
			case err == nil && other.ID != stored.ID:
				return common.ErrCategoryExists
			case err != nil && !errors.Is(err, common.ErrorNotFound):
				return err
			}
		}

		stored.Name = category.Name
		stored.Kind = category.Kind
		stored.IsDeleted = category.IsDeleted
		stored.LastUpdate = s.now().UTC()

		err = repo.Update(ctx, stored)
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			return common.ErrCategoryExists
		case errors.Is(err, common.ErrorNotFound):
			return common.ErrCategoryNotFound
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error updating category: %w", err)
	}

	s.log.Info(ctx, "category updated", "owner", owner, "uuid", stored.UUID, "deleted", stored.IsDeleted)
	return stored, nil
}

// Delete physically removes owner's category. A missing category is a no-op;
// a category with entries is kept and common.ErrCategoryHasEntries returned.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID, owner string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Owners(tx).Lock(ctx, owner); err != nil {
			return err
		}
		repo := s.repomanager.Categories(tx)

		stored, err := repo.FindByUUIDAndOwner(ctx, id, owner)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		n, err := s.repomanager.Entries(tx).CountByOwnerAndCategory(ctx, owner, stored.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return common.ErrCategoryHasEntries
		}

		return repo.Delete(ctx, stored.ID)
	})
	if err != nil {
		return fmt.Errorf("error deleting category: %w", err)
	}
	return nil
}
