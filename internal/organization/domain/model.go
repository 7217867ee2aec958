// Package domain contains core types for organizations and membership.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is a membership role inside an organization. Roles map onto the
// authorization policy groups.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Organization is a tenant on the dashboard.
type Organization struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id,string"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	IsDefault bool         `gorm:"column:is_default" json:"-"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// OrganizationMember links a user to an organization with a role.
type OrganizationMember struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id,string"`
	OrgID     snowflake.ID `gorm:"column:org_id;not null;uniqueIndex:ux_org_user" json:"org_id,string"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;uniqueIndex:ux_org_user" json:"user_id,string"`
	Role      Role         `gorm:"type:text;not null" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (OrganizationMember) TableName() string { return "organization_members" }
