package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/forkandfield/catersync/pkg/db/models"
)

// Repository defines persistence for caterer orders. Orders are keyed by the
// upstream order UUID and never deleted here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.CatererOrder, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.CatererOrder, error)
	Create(ctx context.Context, order *models.CatererOrder) (*models.CatererOrder, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// Service exposes the order read path.
type Service interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListOrders(ctx context.Context, accountID uuid.UUID) ([]OrderView, error)
}
