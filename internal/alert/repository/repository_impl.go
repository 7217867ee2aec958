package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerview/internal/alert/domain"
)

type alertRepository struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &alertRepository{db: db}
}

func (r *alertRepository) CreateRule(ctx context.Context, rule *domain.Rule) error {
	return r.db.WithContext(ctx).Exec(`
INSERT INTO alert_rules (id, org_id, kind, account_id, threshold, enabled, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, rule.ID, rule.OrgID, rule.Kind, rule.AccountID, rule.Threshold, rule.Enabled, rule.CreatedAt, rule.UpdatedAt).Error
}

func (r *alertRepository) FindRules(ctx context.Context, orgID snowflake.ID) ([]domain.Rule, error) {
	var rules []domain.Rule
	if err := r.db.WithContext(ctx).Raw(`
SELECT * FROM alert_rules WHERE org_id = ? ORDER BY created_at DESC
`, orgID).Scan(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *alertRepository) FindEnabledRules(ctx context.Context) ([]domain.Rule, error) {
	var rules []domain.Rule
	if err := r.db.WithContext(ctx).Raw(`
SELECT * FROM alert_rules WHERE enabled ORDER BY org_id, created_at
`).Scan(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *alertRepository) FindRuleByID(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (*domain.Rule, error) {
	var rule domain.Rule
	err := r.db.WithContext(ctx).Raw(`
SELECT * FROM alert_rules WHERE org_id = ? AND id = ?
`, orgID, id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *alertRepository) UpdateRule(ctx context.Context, rule *domain.Rule) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE alert_rules SET threshold = ?, enabled = ?, updated_at = ? WHERE id = ?
`, rule.Threshold, rule.Enabled, rule.UpdatedAt, rule.ID).Error
}

func (r *alertRepository) DeleteRule(ctx context.Context, orgID snowflake.ID, id snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(`
DELETE FROM alert_rules WHERE org_id = ? AND id = ?
`, orgID, id).Error
}

func (r *alertRepository) CreateEvent(ctx context.Context, event *domain.Event) error {
	return r.db.WithContext(ctx).Exec(`
INSERT INTO alert_events (id, org_id, rule_id, kind, account_id, observed, threshold, triggered_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, event.ID, event.OrgID, event.RuleID, event.Kind, event.AccountID, event.Observed, event.Threshold, event.TriggeredAt).Error
}

func (r *alertRepository) FindEvents(ctx context.Context, orgID snowflake.ID, limit int) ([]domain.Event, error) {
	var events []domain.Event
	if err := r.db.WithContext(ctx).Raw(`
SELECT * FROM alert_events WHERE org_id = ? ORDER BY triggered_at DESC LIMIT ?
`, orgID, limit).Scan(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *alertRepository) LastEvent(ctx context.Context, ruleID snowflake.ID) (*domain.Event, error) {
	var event domain.Event
	err := r.db.WithContext(ctx).Raw(`
SELECT * FROM alert_events WHERE rule_id = ? ORDER BY triggered_at DESC LIMIT 1
`, ruleID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}
