package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Transaction is a posted or pending ledger line on a linked account.
// Amounts are minor units, negative for outflow.
type Transaction struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	OrgID     snowflake.ID `gorm:"column:org_id;not null;index:ix_transactions_org_posted,priority:1"`
	AccountID snowflake.ID `gorm:"column:account_id;not null;index:ix_transactions_account"`

	PostedAt time.Time `gorm:"not null;index:ix_transactions_org_posted,priority:2"`
	Amount   int64     `gorm:"not null"`
	Currency string    `gorm:"type:text;not null;default:'USD'"`
	Merchant string    `gorm:"type:text;not null"`
	Category string    `gorm:"type:text;not null;default:''"`
	Memo     string    `gorm:"type:text;not null;default:''"`
	Pending  bool      `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Transaction) TableName() string { return "transactions" }
