package accounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/forkandfield/catersync/pkg/db/models"
	pkgerrors "github.com/forkandfield/catersync/pkg/errors"
)

func setupAccountsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  ref TEXT NOT NULL UNIQUE,
  caterer_id TEXT NOT NULL UNIQUE,
  crm_kind TEXT NOT NULL DEFAULT 'nutshell',
  crm_primary_entity_kind TEXT NOT NULL DEFAULT 'lead',
  webhook_secret TEXT NOT NULL,
  user_routes TEXT,
  lead_tags TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestFindByCatererID(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)

	account := &models.Account{
		ID:            uuid.New(),
		Ref:           "forkandfield",
		CatererID:     "cat-123",
		WebhookSecret: "secret",
		UserRoutes: []models.CRMUserRoute{
			{City: "Athens", CRMUserID: 7, CRMUserName: "Riley"},
		},
		LeadTags: []models.LeadTag{
			{Value: "ezcater", IsRequired: true},
			{Value: "seasonal", IsRequired: false},
		},
	}
	require.NoError(t, db.Create(account).Error)

	found, err := repo.FindByCatererID(context.Background(), "cat-123")
	require.NoError(t, err)
	assert.Equal(t, "forkandfield", found.Ref)
	assert.Equal(t, []string{"ezcater"}, found.RequiredTags())
	require.Len(t, found.UserRoutes, 1)
	assert.Equal(t, "Athens", found.UserRoutes[0].City)
}

func TestFindByCatererIDMissing(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByCatererID(context.Background(), "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestFindByRef(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Create(&models.Account{
		ID:            uuid.New(),
		Ref:           "forkandfield",
		CatererID:     "cat-123",
		WebhookSecret: "secret",
	}).Error)

	found, err := repo.FindByRef(context.Background(), "forkandfield")
	require.NoError(t, err)
	assert.Equal(t, "cat-123", found.CatererID)

	_, err = repo.FindByRef(context.Background(), "other")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
