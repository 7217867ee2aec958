package domain

import (
	"context"
	"errors"
	"time"
)

// Service aggregates the financial snapshot the dashboard home renders.
type Service interface {
	Get(ctx context.Context) (*Snapshot, error)
}

type BalanceByType struct {
	AccountType string `json:"account_type"`
	Balance     int64  `json:"balance"`
	Accounts    int    `json:"accounts"`
}

type Snapshot struct {
	OrganizationID string          `json:"organization_id"`
	AsOf           time.Time       `json:"as_of"`
	TotalBalance   int64           `json:"total_balance"`
	Balances       []BalanceByType `json:"balances"`

	// 30-day activity window
	Inflow       int64 `json:"inflow"`
	Outflow      int64 `json:"outflow"`
	Transactions int   `json:"transactions"`
	Pending      int   `json:"pending"`
}

var ErrInvalidOrganization = errors.New("invalid_organization")
