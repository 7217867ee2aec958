package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerview/internal/alert/domain"
	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/config"
	"github.com/smallbiznis/ledgerview/internal/observability/metrics"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200

	// Minimum gap between two events from the same rule. Keeps a rule
	// that keeps holding from flooding the event feed.
	refireInterval = time.Hour
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Clock   clock.Clock
	Holder  *config.AlertingConfigHolder
	Metrics *metrics.Metrics
}

type alertService struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	clock   clock.Clock
	holder  *config.AlertingConfigHolder
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &alertService{
		db:      p.DB,
		log:     p.Log.Named("alert.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		clock:   p.Clock,
		holder:  p.Holder,
		metrics: p.Metrics,
	}
}

func (s *alertService) CreateRule(ctx context.Context, req domain.CreateRuleRequest) (*domain.Rule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if !req.Kind.Valid() {
		return nil, domain.ErrInvalidRuleKind
	}

	threshold := s.defaultThreshold(req.Kind)
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 {
		return nil, domain.ErrInvalidThreshold
	}

	var accountID snowflake.ID
	if req.AccountID != "" {
		id, err := snowflake.ParseString(req.AccountID)
		if err != nil {
			return nil, domain.ErrRuleNotFound
		}
		accountID = id
	}

	now := s.clock.Now().UTC()
	rule := &domain.Rule{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Kind:      req.Kind,
		AccountID: accountID,
		Threshold: threshold,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	s.log.Info("alert rule created",
		zap.String("org_id", orgID.String()),
		zap.String("rule_id", rule.ID.String()),
		zap.String("kind", string(rule.Kind)),
	)
	return rule, nil
}

func (s *alertService) ListRules(ctx context.Context) ([]domain.Rule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.FindRules(ctx, orgID)
}

func (s *alertService) UpdateRule(ctx context.Context, id snowflake.ID, req domain.UpdateRuleRequest) (*domain.Rule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	rule, err := s.repo.FindRuleByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, domain.ErrRuleNotFound
	}

	if req.Threshold != nil {
		if *req.Threshold < 0 {
			return nil, domain.ErrInvalidThreshold
		}
		rule.Threshold = *req.Threshold
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
	rule.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *alertService) DeleteRule(ctx context.Context, id snowflake.ID) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	rule, err := s.repo.FindRuleByID(ctx, orgID, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return domain.ErrRuleNotFound
	}
	return s.repo.DeleteRule(ctx, orgID, id)
}

func (s *alertService) ListEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	return s.repo.FindEvents(ctx, orgID, limit)
}

func (s *alertService) Evaluate(ctx context.Context) (int, error) {
	rules, err := s.repo.FindEnabledRules(ctx)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, rule := range rules {
		hit, observed, err := s.check(ctx, rule)
		if err != nil {
			s.log.Warn("alert rule check failed",
				zap.String("rule_id", rule.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if !hit {
			continue
		}

		last, err := s.repo.LastEvent(ctx, rule.ID)
		if err != nil {
			return fired, err
		}
		now := s.clock.Now().UTC()
		if last != nil && now.Sub(last.TriggeredAt) < refireInterval {
			continue
		}

		event := &domain.Event{
			ID:          s.genID.Generate(),
			OrgID:       rule.OrgID,
			RuleID:      rule.ID,
			Kind:        rule.Kind,
			AccountID:   rule.AccountID,
			Observed:    observed,
			Threshold:   rule.Threshold,
			TriggeredAt: now,
		}
		if err := s.repo.CreateEvent(ctx, event); err != nil {
			return fired, err
		}
		s.metrics.RecordAlertEvent(ctx, rule.OrgID.String(), string(rule.Kind))
		fired++
	}
	return fired, nil
}

func (s *alertService) check(ctx context.Context, rule domain.Rule) (bool, int64, error) {
	switch rule.Kind {
	case domain.RuleLowBalance:
		return s.checkLowBalance(ctx, rule)
	case domain.RuleLargeTransaction:
		return s.checkLargeTransaction(ctx, rule)
	}
	return false, 0, domain.ErrInvalidRuleKind
}

func (s *alertService) checkLowBalance(ctx context.Context, rule domain.Rule) (bool, int64, error) {
	query := `SELECT COALESCE(SUM(current_balance), 0) FROM accounts WHERE org_id = ? AND active`
	args := []any{rule.OrgID}
	if rule.AccountID != 0 {
		query += ` AND id = ?`
		args = append(args, rule.AccountID)
	}

	var balance int64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&balance).Error; err != nil {
		return false, 0, err
	}
	return balance < rule.Threshold, balance, nil
}

func (s *alertService) checkLargeTransaction(ctx context.Context, rule domain.Rule) (bool, int64, error) {
	interval := time.Duration(s.holder.Get().EvaluationInterval) * time.Second
	since := s.clock.Now().UTC().Add(-2 * interval)

	query := `SELECT COALESCE(MAX(ABS(amount)), 0) FROM transactions WHERE org_id = ? AND posted_at >= ?`
	args := []any{rule.OrgID, since}
	if rule.AccountID != 0 {
		query += ` AND account_id = ?`
		args = append(args, rule.AccountID)
	}

	var largest int64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&largest).Error; err != nil {
		return false, 0, err
	}
	return largest > rule.Threshold, largest, nil
}

func (s *alertService) defaultThreshold(kind domain.RuleKind) int64 {
	cfg := s.holder.Get()
	switch kind {
	case domain.RuleLowBalance:
		return cfg.LowBalanceFloor
	case domain.RuleLargeTransaction:
		return cfg.LargeTxnThreshold
	}
	return 0
}
