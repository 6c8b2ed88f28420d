package accounts

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/forkandfield/catersync/pkg/db/models"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an accounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCatererID(ctx context.Context, catererID string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("caterer_id = ?", catererID).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("no account for caterer %q", catererID))
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByRef(ctx context.Context, ref string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("ref = ?", ref).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("no account for ref %q", ref))
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
