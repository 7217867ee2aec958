package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists organizations and memberships.
type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Organization, error)
	ListForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Organization, error)
	FindMember(ctx context.Context, db *gorm.DB, orgID, userID snowflake.ID) (*OrganizationMember, error)
	CreateMember(ctx context.Context, db *gorm.DB, member *OrganizationMember) error
}
