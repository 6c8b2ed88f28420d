package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/forkandfield/catersync/pkg/enums"
)

// CatererOrder is the internal record of an upstream order, keyed by the
// external order UUID. Once CRMID is set it is never cleared or repointed.
type CatererOrder struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	AccountID      uuid.UUID         `gorm:"column:account_id;type:uuid;not null;index"`
	CatererID      string            `gorm:"column:caterer_id;not null"`
	CatererName    string            `gorm:"column:caterer_name;not null"`
	OrderNumber    string            `gorm:"column:order_number;not null"`
	Status         enums.OrderStatus `gorm:"column:status;type:text;not null;default:'accepted'"`
	CRMID          *string           `gorm:"column:crm_id"`
	CRMDescription *string           `gorm:"column:crm_description"`
	Warnings       []string          `gorm:"column:warnings;type:jsonb;serializer:json"`
	EventAt        time.Time         `gorm:"column:event_at;not null"`
	AcceptedAt     time.Time         `gorm:"column:accepted_at;not null"`
	LastUpdatedAt  time.Time         `gorm:"column:last_updated_at;not null"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
