package models

import (
	"time"

	"github.com/google/uuid"
)

// CRMUserRoute maps a caterer city to the CRM user who owns leads for it.
type CRMUserRoute struct {
	City        string `json:"city"`
	CRMUserID   int    `json:"crmUserId"`
	CRMUserName string `json:"crmUserName"`
}

// LeadTag is a tag configured on the account; required tags are applied to
// every synchronized lead.
type LeadTag struct {
	Value      string `json:"value"`
	IsRequired bool   `json:"isRequired"`
}

// Account is a tenant configured with its own CRM mapping, routing, and
// credentials. Maintained by the provisioning service; read-only here.
type Account struct {
	ID                   uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Ref                  string         `gorm:"column:ref;uniqueIndex;not null"`
	CatererID            string         `gorm:"column:caterer_id;uniqueIndex;not null"`
	CRMKind              string         `gorm:"column:crm_kind;not null;default:'nutshell'"`
	CRMPrimaryEntityKind string         `gorm:"column:crm_primary_entity_kind;not null;default:'lead'"`
	WebhookSecret        string         `gorm:"column:webhook_secret;not null"`
	UserRoutes           []CRMUserRoute `gorm:"column:user_routes;type:jsonb;serializer:json"`
	LeadTags             []LeadTag      `gorm:"column:lead_tags;type:jsonb;serializer:json"`
	CreatedAt            time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// RequiredTags returns the values of all tags flagged as required.
func (a *Account) RequiredTags() []string {
	if a == nil {
		return nil
	}
	out := []string{}
	for _, tag := range a.LeadTags {
		if tag.IsRequired {
			out = append(out, tag.Value)
		}
	}
	return out
}
