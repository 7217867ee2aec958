package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	CreateRule(ctx context.Context, rule *Rule) error
	FindRules(ctx context.Context, orgID snowflake.ID) ([]Rule, error)
	FindEnabledRules(ctx context.Context) ([]Rule, error)
	FindRuleByID(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (*Rule, error)
	UpdateRule(ctx context.Context, rule *Rule) error
	DeleteRule(ctx context.Context, orgID snowflake.ID, id snowflake.ID) error

	CreateEvent(ctx context.Context, event *Event) error
	FindEvents(ctx context.Context, orgID snowflake.ID, limit int) ([]Event, error)
	LastEvent(ctx context.Context, ruleID snowflake.ID) (*Event, error)
}
