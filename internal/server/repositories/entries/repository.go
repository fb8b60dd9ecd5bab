package entries

import (
	"context"
	"time"

	"github.com/dmitrijs2005/spendy/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	FindByUUIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Entry, error)
	ExistsByUUID(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	Update(ctx context.Context, entry *models.Entry) error
	DeleteByUUID(ctx context.Context, owner string, id uuid.UUID) error
	DeleteByCategory(ctx context.Context, categoryID int64) (int64, error)
	ReplaceCategory(ctx context.Context, owner string, oldCategoryID, newCategoryID int64, at time.Time) ([]*models.Entry, error)
	CountByOwnerAndCategory(ctx context.Context, owner string, categoryID int64) (int64, error)
	SelectUpdatedSince(ctx context.Context, owner string, since time.Time) ([]*models.Entry, error)
	SelectByCreatedRange(ctx context.Context, owner string, start, end time.Time) ([]*models.Entry, error)
	SumPrices(ctx context.Context, owner string, categoryUUID uuid.UUID, start, end time.Time) (int64, error)
	SumPricesLifetime(ctx context.Context, owner string, categoryUUID uuid.UUID) (int64, error)
}
