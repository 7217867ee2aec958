package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, account *Account) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Account, error)
	List(ctx context.Context, db *gorm.DB, orgID int64, filter ListRequest) ([]Account, error)
	Update(ctx context.Context, db *gorm.DB, account *Account) error
}
