package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByOrg(ctx context.Context, db *gorm.DB, orgID int64) (*Entitlement, error)
	Upsert(ctx context.Context, db *gorm.DB, ent *Entitlement) error
}
