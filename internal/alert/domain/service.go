package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateRuleRequest struct {
	Kind      RuleKind `json:"kind" binding:"required"`
	AccountID string   `json:"account_id"`
	Threshold *int64   `json:"threshold"`
	Enabled   *bool    `json:"enabled"`
}

type UpdateRuleRequest struct {
	Threshold *int64 `json:"threshold"`
	Enabled   *bool  `json:"enabled"`
}

type Service interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (*Rule, error)
	ListRules(ctx context.Context) ([]Rule, error)
	UpdateRule(ctx context.Context, id snowflake.ID, req UpdateRuleRequest) (*Rule, error)
	DeleteRule(ctx context.Context, id snowflake.ID) error
	ListEvents(ctx context.Context, limit int) ([]Event, error)

	// Evaluate runs every enabled rule across all organizations and
	// records an event for each rule whose condition currently holds.
	Evaluate(ctx context.Context) (int, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidRuleKind     = errors.New("invalid_rule_kind")
	ErrInvalidThreshold    = errors.New("invalid_threshold")
	ErrRuleNotFound        = errors.New("rule_not_found")
)
