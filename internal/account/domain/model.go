package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeInvestment AccountType = "investment"
)

// Account is a linked financial account. Balances are minor units.
type Account struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;index:ix_accounts_org"`

	Name        string      `gorm:"type:text;not null"`
	Institution string      `gorm:"type:text;not null"`
	Mask        string      `gorm:"type:text;not null"` // last four digits only
	Type        AccountType `gorm:"column:account_type;type:text;not null"`
	Currency    string      `gorm:"type:text;not null;default:'USD'"`

	CurrentBalance   int64 `gorm:"not null;default:0"`
	AvailableBalance int64 `gorm:"not null;default:0"`

	Active bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Account) TableName() string { return "accounts" }

func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCreditCard, AccountTypeLoan, AccountTypeInvestment:
		return true
	default:
		return false
	}
}
