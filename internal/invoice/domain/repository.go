package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, inv *Invoice, items []InvoiceItem) error
	Find(ctx context.Context, db *gorm.DB, orgID snowflake.ID, status InvoiceStatus) ([]Invoice, error)
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	FindItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, inv *Invoice) error
	NextSequence(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error)
}
