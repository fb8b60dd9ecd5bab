package categories

import (
	"context"

	"github.com/dmitrijs2005/spendy/internal/server/models"
	"github.com/google/uuid"
)

type Repository interface {
	FindByUUID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindByUUIDAndOwner(ctx context.Context, id uuid.UUID, owner string) (*models.Category, error)
	FindLiveByKindAndName(ctx context.Context, owner string, kind models.Kind, name string) (*models.Category, error)
	ListByOwner(ctx context.Context, owner string) ([]*models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
}
