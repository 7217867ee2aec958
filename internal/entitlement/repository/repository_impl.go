package repository

import (
	"context"

	"github.com/smallbiznis/ledgerview/internal/entitlement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByOrg(ctx context.Context, db *gorm.DB, orgID int64) (*domain.Entitlement, error) {
	var ent domain.Entitlement
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, record, created_at, updated_at
		 FROM entitlements WHERE org_id = ?`,
		orgID,
	).Scan(&ent).Error
	if err != nil {
		return nil, err
	}
	if ent.ID == 0 {
		return nil, nil
	}
	return &ent, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, ent *domain.Entitlement) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO entitlements (id, org_id, record, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (org_id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		ent.ID,
		ent.OrgID,
		ent.Record,
		ent.CreatedAt,
		ent.UpdatedAt,
	).Error
}
