package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Filter struct {
	AccountID *int64
	From      *time.Time
	To        *time.Time
	Category  string
	Search    string
	Pending   *bool
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, txn *Transaction) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Transaction, error)
	List(ctx context.Context, db *gorm.DB, orgID int64, filter Filter, limit int, afterID int64) ([]Transaction, error)
	// ForEach streams every transaction matching filter in posted order.
	// The export feed uses this so the full result set never sits in memory.
	ForEach(ctx context.Context, db *gorm.DB, orgID int64, filter Filter, fn func(*Transaction) error) error
}
