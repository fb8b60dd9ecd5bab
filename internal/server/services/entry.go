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
	"github.com/dmitrijs2005/spendy/internal/server/repositories/categories"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/entries"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	msgAllDeleted  = "All entries have been deleted"
	msgSomeRemains = "Some entries could not be deleted"
)

// CreateResult is the per-item outcome of a create batch.
type CreateResult struct {
	Saved                 []*models.Entry
	ConflictingOnID       []*models.Entry
	ConflictingOnCategory []*models.Entry
}

// Created reports whether every item of the batch was stored.
func (r *CreateResult) Created() bool {
	return len(r.ConflictingOnID) == 0 && len(r.ConflictingOnCategory) == 0
}

// UpdateVerdict is the outcome of one whole-record update.
type UpdateVerdict int

const (
	Updated UpdateVerdict = iota
	ConflictOnID
	ConflictOnCategory
	ConflictOnLastUpdate
)

func (v UpdateVerdict) String() string {
	switch v {
	case Updated:
		return "updated"
	case ConflictOnID:
		return "conflict_on_id"
	case ConflictOnCategory:
		return "conflict_on_category"
	case ConflictOnLastUpdate:
		return "conflict_on_last_update"
	default:
		return fmt.Sprintf("UpdateVerdict(%d)", int(v))
	}
}

// UpdateResult groups the items of an update batch by verdict.
type UpdateResult struct {
	Updated                 []*models.Entry
	ConflictingOnID         []*models.Entry
	ConflictingOnCategory   []*models.Entry
	ConflictingOnLastUpdate []*models.Entry
}

func (r *UpdateResult) add(v UpdateVerdict, e *models.Entry) {
	switch v {
	case Updated:
		r.Updated = append(r.Updated, e)
	case ConflictOnID:
		r.ConflictingOnID = append(r.ConflictingOnID, e)
	case ConflictOnCategory:
		r.ConflictingOnCategory = append(r.ConflictingOnCategory, e)
	case ConflictOnLastUpdate:
		r.ConflictingOnLastUpdate = append(r.ConflictingOnLastUpdate, e)
	}
}

// AllUpdated reports whether every item of the batch was applied.
func (r *UpdateResult) AllUpdated() bool {
	return len(r.ConflictingOnID) == 0 && len(r.ConflictingOnCategory) == 0 && len(r.ConflictingOnLastUpdate) == 0
}

// DeleteResult reports a bulk delete. ConflictingEntries lists the uuids
// that were still present after their delete attempt.
type DeleteResult struct {
	Success            bool
	Message            string
	DeletedAt          time.Time
	ConflictingEntries []uuid.UUID
}

// EntryService reconciles client-submitted entry batches with the store
// using client-assigned uuids for idempotency and lastUpdate timestamps for
// last-write-wins conflict detection.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *EntryService {
	return &EntryService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "entries"),
		now:         time.Now,
	}
}

func validateAll(items []*models.Entry) error {
	for _, e := range items {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CreateBatch stores each submitted entry for owner, in submission order.
// An item whose uuid already exists lands in ConflictingOnID; an item whose
// category does not resolve to one of owner's categories lands in
// ConflictingOnCategory. Conflicts never abort the batch.
func (s *EntryService) CreateBatch(ctx context.Context, owner string, items []*models.Entry) (*CreateResult, error) {
	if err := validateAll(items); err != nil {
		return nil, err
	}

	result := &CreateResult{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Owners(tx).Lock(ctx, owner); err != nil {
			return err
		}
		entryRepo := s.repomanager.Entries(tx)
		categoryRepo := s.repomanager.Categories(tx)

		for _, e := range items {
			exists, err := entryRepo.ExistsByUUID(ctx, e.UUID)
			if err != nil {
				return err
			}
			if exists {
				result.ConflictingOnID = append(result.ConflictingOnID, e)
				continue
			}

			category, err := categoryRepo.FindByUUIDAndOwner(ctx, e.CategoryUUID, owner)
			if errors.Is(err, common.ErrorNotFound) {
				result.ConflictingOnCategory = append(result.ConflictingOnCategory, e)
				continue
			}
			if err != nil {
				return err
			}

			entry := *e
			entry.ID = 0
			entry.Owner = owner
			entry.CategoryID = category.ID
			entry.CreatedAt = entry.CreatedAt.UTC()
			entry.LastUpdate = entry.LastUpdate.UTC()

			saved, err := entryRepo.Create(ctx, &entry)
			if errors.Is(err, common.ErrorAlreadyExists) {
				result.ConflictingOnID = append(result.ConflictingOnID, e)
				continue
			}
			if err != nil {
				return err
			}
			result.Saved = append(result.Saved, saved)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error creating entries: %w", err)
	}

	s.log.Info(ctx, "entries created", "owner", owner,
		"saved", len(result.Saved), "conflict_id", len(result.ConflictingOnID), "conflict_category", len(result.ConflictingOnCategory))
	return result, nil
}

// UpdateBatch applies whole-record updates to owner's entries. Each item is
// checked in a fixed order: unknown uuid, unresolvable category, then a
// stored lastUpdate strictly after the submitted one. Items passing every
// check have kind, description, price, category, lastUpdate and isDeleted
// replaced verbatim; createdAt never changes.
func (s *EntryService) UpdateBatch(ctx context.Context, owner string, items []*models.Entry) (*UpdateResult, error) {
	if err := validateAll(items); err != nil {
		return nil, err
	}

	result := &UpdateResult{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Owners(tx).Lock(ctx, owner); err != nil {
			return err
		}
		entryRepo := s.repomanager.Entries(tx)
		categoryRepo := s.repomanager.Categories(tx)

		for _, e := range items {
			verdict, stored, err := s.update(ctx, entryRepo, categoryRepo, owner, e)
			if err != nil {
				return err
			}
			if verdict == Updated {
				result.add(verdict, stored)
				continue
			}
			s.log.Debug(ctx, "entry update rejected", "owner", owner, "uuid", e.UUID, "verdict", verdict)
			result.add(verdict, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error updating entries: %w", err)
	}

	s.log.Info(ctx, "entries updated", "owner", owner, "updated", len(result.Updated),
		"conflict_id", len(result.ConflictingOnID), "conflict_category", len(result.ConflictingOnCategory),
		"conflict_last_update", len(result.ConflictingOnLastUpdate))
	return result, nil
}

func (s *EntryService) update(ctx context.Context, entryRepo entries.Repository, categoryRepo categories.Repository,
	owner string, e *models.Entry) (UpdateVerdict, *models.Entry, error) {

	stored, err := entryRepo.FindByUUIDForUpdate(ctx, e.UUID)
	if errors.Is(err, common.ErrorNotFound) {
		return ConflictOnID, nil, nil
	}
	if err != nil {
		return 0, nil, err
	}
	if stored.Owner != owner {
		return ConflictOnID, nil, nil
	}

	category, err := categoryRepo.FindByUUIDAndOwner(ctx, e.CategoryUUID, owner)
	if errors.Is(err, common.ErrorNotFound) {
		return ConflictOnCategory, nil, nil
	}
	if err != nil {
		return 0, nil, err
	}

	if stored.LastUpdate.After(e.LastUpdate) {
		return ConflictOnLastUpdate, nil, nil
	}

	stored.Kind = e.Kind
	stored.CategoryID = category.ID
	stored.CategoryUUID = category.UUID
	stored.Description = e.Description
	stored.Price = e.Price
	stored.LastUpdate = e.LastUpdate.UTC()
	stored.IsDeleted = e.IsDeleted

	if err := entryRepo.Update(ctx, stored); err != nil {
		return 0, nil, err
	}
	return Updated, stored, nil
}

// ReplaceCategory points every entry of owner that references oldID at newID
// and stamps them with the server clock. Both categories must belong to
// owner, otherwise common.ErrCategoryNotFound is returned and nothing changes.
func (s *EntryService) ReplaceCategory(ctx context.Context, owner string, oldID, newID uuid.UUID) ([]*models.Entry, error) {
	var rewritten []*models.Entry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Owners(tx).Lock(ctx, owner); err != nil {
			return err
		}
		categoryRepo := s.repomanager.Categories(tx)

		oldCategory, err := categoryRepo.FindByUUIDAndOwner(ctx, oldID, owner)
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("category to replace %s: %w", oldID, common.ErrCategoryNotFound)
		}
		if err != nil {
			return err
		}
		newCategory, err := categoryRepo.FindByUUIDAndOwner(ctx, newID, owner)
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("replacement category %s: %w", newID, common.ErrCategoryNotFound)
		}
		if err != nil {
			return err
		}

		rewritten, err = s.repomanager.Entries(tx).ReplaceCategory(ctx, owner, oldCategory.ID, newCategory.ID, s.now().UTC())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error replacing category: %w", err)
	}

	s.log.Info(ctx, "category replaced", "owner", owner, "old", oldID, "new", newID, "entries", len(rewritten))
	return rewritten, nil
}

// DeleteBatch physically removes owner's entries by uuid and then checks
// that each one is gone. Uuids that are still present are reported as
// conflicting. Missing uuids count as deleted.
func (s *EntryService) DeleteBatch(ctx context.Context, owner string, ids []uuid.UUID) (*DeleteResult, error) {
	var conflicting []uuid.UUID
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Owners(tx).Lock(ctx, owner); err != nil {
			return err
		}
		repo := s.repomanager.Entries(tx)

		for _, id := range ids {
			if err := repo.DeleteByUUID(ctx, owner, id); err != nil {
				return err
			}
			exists, err := repo.ExistsByUUID(ctx, id)
			if err != nil {
				return err
			}
			if exists {
				conflicting = append(conflicting, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error deleting entries: %w", err)
	}

	res := &DeleteResult{DeletedAt: s.now().UTC()}
	if len(conflicting) == 0 {
		res.Success = true
		res.Message = msgAllDeleted
		res.ConflictingEntries = []uuid.UUID{}
	} else {
		res.Message = msgSomeRemains
		res.ConflictingEntries = conflicting
	}

	s.log.Info(ctx, "entries deleted", "owner", owner, "requested", len(ids), "conflicting", len(conflicting))
	return res, nil
}

// DeleteByCategory removes every entry of owner's category and returns how
// many were removed.
func (s *EntryService) DeleteByCategory(ctx context.Context, owner string, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Owners(tx).Lock(ctx, owner); err != nil {
			return err
		}

		category, err := s.repomanager.Categories(tx).FindByUUIDAndOwner(ctx, categoryID, owner)
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrCategoryNotFound
		}
		if err != nil {
			return err
		}

		n, err = s.repomanager.Entries(tx).DeleteByCategory(ctx, category.ID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("error deleting entries of category: %w", err)
	}
	return n, nil
}

// Pull returns owner's entries with lastUpdate strictly after since.
func (s *EntryService) Pull(ctx context.Context, owner string, since time.Time) ([]*models.Entry, error) {
	list, err := s.repomanager.Entries(s.db).SelectUpdatedSince(ctx, owner, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("error pulling entries: %w", err)
	}
	return list, nil
}

// ByDateRange returns owner's entries whose ledger date lies in [start, end].
func (s *EntryService) ByDateRange(ctx context.Context, owner string, start, end time.Time) ([]*models.Entry, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s before start %s", common.ErrValidation, end, start)
	}
	list, err := s.repomanager.Entries(s.db).SelectByCreatedRange(ctx, owner, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("error selecting entries: %w", err)
	}
	return list, nil
}
