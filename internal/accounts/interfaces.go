package accounts

import (
	"context"

	"gorm.io/gorm"

	"github.com/forkandfield/catersync/pkg/db/models"
)

// Repository defines read access to tenant accounts. Accounts are provisioned
// elsewhere; this service only looks them up.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCatererID(ctx context.Context, catererID string) (*models.Account, error)
	FindByRef(ctx context.Context, ref string) (*models.Account, error)
}
