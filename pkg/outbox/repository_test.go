package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forkandfield/catersync/pkg/db/models"
	"github.com/forkandfield/catersync/pkg/enums"
)

func seedOutboxEvent(t *testing.T, db *gorm.DB, eventType enums.OutboxEventType) models.OutboxEvent {
	t.Helper()
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateCatererOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func TestRepositoryFetchUnpublishedSkipsPublished(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	pending := seedOutboxEvent(t, db, enums.EventOrderCaptured)
	published := seedOutboxEvent(t, db, enums.EventOrderResynced)
	require.NoError(t, repo.MarkPublished(published.ID))

	rows, err := repo.FetchUnpublished(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pending.ID, rows[0].ID)
}

func TestRepositoryMarkFailedIncrementsAttempts(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := seedOutboxEvent(t, db, enums.EventOrderCaptured)
	require.NoError(t, repo.MarkFailed(event.ID, errors.New("publish timeout")))
	require.NoError(t, repo.MarkFailed(event.ID, errors.New("publish timeout")))

	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	assert.Equal(t, 2, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.Equal(t, "publish timeout", *row.LastError)
	assert.Nil(t, row.PublishedAt)
}

func TestRepositoryMarkTerminalRetiresEvent(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := seedOutboxEvent(t, db, enums.EventOrderCaptured)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.MarkTerminalTx(tx, event.ID, errors.New("max publish attempts reached"), 10)
	}))

	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	assert.Equal(t, 10, row.AttemptCount)
}

func TestDLQRepositoryInsertAndFind(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewDLQRepository(db)

	eventID := uuid.New()
	longMessage := strings.Repeat("x", maxDLQErrorLen+100)
	entry := models.OutboxDLQ{
		ID:            uuid.New(),
		EventID:       eventID,
		EventType:     enums.EventOrderCaptured,
		AggregateType: enums.AggregateCatererOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		ErrorMessage:  &longMessage,
		AttemptCount:  10,
		FailedAt:      time.Now().UTC(),
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.InsertTx(tx, entry)
	}))

	found, err := repo.FindByEventID(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.OutboxDLQReasonMaxAttempts, found.ErrorReason)
	require.NotNil(t, found.ErrorMessage)
	assert.Len(t, *found.ErrorMessage, maxDLQErrorLen)

	missing, err := repo.FindByEventID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
