package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Record is the loosely-typed entitlement payload issued by the subscription
// system. No schema is enforced on write; readers treat missing or
// oddly-typed keys as absent.
type Record map[string]any

// Entitlement is the persisted entitlement record for an organization.
type Entitlement struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;uniqueIndex:ux_entitlements_org"`

	Record datatypes.JSONMap `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Entitlement) TableName() string { return "entitlements" }
