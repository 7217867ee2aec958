package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerview/internal/upload/domain"
)

type uploadRepository struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *domain.Upload) error {
	return r.db.WithContext(ctx).Exec(`
INSERT INTO uploads (id, org_id, filename, stored_name, content_type, size, checksum, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, upload.ID, upload.OrgID, upload.Filename, upload.StoredName, upload.ContentType, upload.Size, upload.Checksum, upload.CreatedAt).Error
}

func (r *uploadRepository) Find(ctx context.Context, orgID snowflake.ID) ([]domain.Upload, error) {
	var uploads []domain.Upload
	if err := r.db.WithContext(ctx).Raw(`
SELECT * FROM uploads WHERE org_id = ? ORDER BY created_at DESC
`, orgID).Scan(&uploads).Error; err != nil {
		return nil, err
	}
	return uploads, nil
}

func (r *uploadRepository) FindByID(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (*domain.Upload, error) {
	var upload domain.Upload
	err := r.db.WithContext(ctx).Raw(`
SELECT * FROM uploads WHERE org_id = ? AND id = ?
`, orgID, id).First(&upload).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &upload, nil
}
