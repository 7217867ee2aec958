package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type RuleKind string

const (
	RuleLowBalance       RuleKind = "low_balance"
	RuleLargeTransaction RuleKind = "large_transaction"
)

func (k RuleKind) Valid() bool {
	switch k {
	case RuleLowBalance, RuleLargeTransaction:
		return true
	}
	return false
}

type Rule struct {
	ID        snowflake.ID `json:"id,string" gorm:"primaryKey"`
	OrgID     snowflake.ID `json:"org_id,string" gorm:"column:org_id;index"`
	Kind      RuleKind     `json:"kind"`
	AccountID snowflake.ID `json:"account_id,string"`

	// Threshold is in minor units. For low_balance it is the floor the
	// balance must stay above, for large_transaction the absolute amount
	// a single transaction must not exceed.
	Threshold int64 `json:"threshold"`

	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rule) TableName() string { return "alert_rules" }

type Event struct {
	ID          snowflake.ID `json:"id,string" gorm:"primaryKey"`
	OrgID       snowflake.ID `json:"org_id,string" gorm:"column:org_id;index"`
	RuleID      snowflake.ID `json:"rule_id,string" gorm:"index"`
	Kind        RuleKind     `json:"kind"`
	AccountID   snowflake.ID `json:"account_id,string"`
	Observed    int64        `json:"observed"`
	Threshold   int64        `json:"threshold"`
	TriggeredAt time.Time    `json:"triggered_at"`
}

func (Event) TableName() string { return "alert_events" }
