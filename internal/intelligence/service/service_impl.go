package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerview/internal/cache"
	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/intelligence/domain"
	"github.com/smallbiznis/ledgerview/internal/observability/metrics"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
)

const (
	defaultWindowDays = 30
	maxWindowDays     = 365

	defaultHorizonDays = 30
	maxHorizonDays     = 90

	maxRows = 20

	// Aggregates are recomputed at most once per org per TTL window.
	insightCacheTTL = 5 * time.Minute
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Metrics *metrics.Metrics
}

type intelligenceService struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	metrics   *metrics.Metrics
	insights  cache.Cache[string, []domain.Insight]
	forecasts cache.Cache[string, *domain.Forecast]
}

func New(p Params) domain.Service {
	return &intelligenceService{
		db:        p.DB,
		log:       p.Log.Named("intelligence.service"),
		clock:     p.Clock,
		metrics:   p.Metrics,
		insights:  cache.NewTTLCache[string, []domain.Insight](),
		forecasts: cache.NewTTLCache[string, *domain.Forecast](),
	}
}

func (s *intelligenceService) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if !req.Kind.Valid() {
		return nil, domain.ErrInvalidQueryKind
	}

	days := req.Days
	if days <= 0 {
		days = defaultWindowDays
	}
	if days > maxWindowDays {
		days = maxWindowDays
	}
	since := s.clock.Now().UTC().AddDate(0, 0, -days)

	var (
		query string
		args  []any
	)
	switch req.Kind {
	case domain.QueryCategorySpend:
		query = `
SELECT category AS label, COALESCE(SUM(-amount), 0) AS total, COUNT(*) AS count
FROM transactions
WHERE org_id = ? AND posted_at >= ? AND amount < 0
GROUP BY category
ORDER BY total DESC
LIMIT ?`
		args = []any{orgID, since, maxRows}
	case domain.QueryMerchantSpend:
		query = `
SELECT merchant AS label, COALESCE(SUM(-amount), 0) AS total, COUNT(*) AS count
FROM transactions
WHERE org_id = ? AND posted_at >= ? AND amount < 0
GROUP BY merchant
ORDER BY total DESC
LIMIT ?`
		args = []any{orgID, since, maxRows}
	case domain.QueryCashPosition:
		query = `
SELECT account_type AS label, COALESCE(SUM(current_balance), 0) AS total, COUNT(*) AS count
FROM accounts
WHERE org_id = ? AND active
GROUP BY account_type
ORDER BY total DESC
LIMIT ?`
		args = []any{orgID, maxRows}
	}

	var rows []domain.QueryRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.QueryRow{}
	}

	s.metrics.RecordIntelligenceQuery(ctx, orgID.String(), string(req.Kind))
	return &domain.QueryResult{Kind: req.Kind, Since: since, Rows: rows}, nil
}

func (s *intelligenceService) Insights(ctx context.Context) ([]domain.Insight, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if cached, ok := s.insights.Get(orgID.String()); ok {
		return cached, nil
	}

	now := s.clock.Now().UTC()
	current := now.AddDate(0, 0, -defaultWindowDays)
	previous := now.AddDate(0, 0, -2*defaultWindowDays)

	var windows struct {
		CurrentSpend  int64
		PreviousSpend int64
		CurrentIncome int64
	}
	if err := s.db.WithContext(ctx).Raw(`
SELECT
  COALESCE(SUM(CASE WHEN posted_at >= ? AND amount < 0 THEN -amount ELSE 0 END), 0) AS current_spend,
  COALESCE(SUM(CASE WHEN posted_at >= ? AND posted_at < ? AND amount < 0 THEN -amount ELSE 0 END), 0) AS previous_spend,
  COALESCE(SUM(CASE WHEN posted_at >= ? AND amount > 0 THEN amount ELSE 0 END), 0) AS current_income
FROM transactions
WHERE org_id = ? AND posted_at >= ?
`, current, previous, current, current, orgID, previous).Scan(&windows).Error; err != nil {
		return nil, err
	}

	insights := make([]domain.Insight, 0, 3)

	delta := windows.CurrentSpend - windows.PreviousSpend
	switch {
	case windows.PreviousSpend == 0 && windows.CurrentSpend == 0:
		// no signal, skip
	case delta > 0:
		insights = append(insights, domain.Insight{
			Kind:    "spend_up",
			Message: fmt.Sprintf("spending is up %d over the previous %d days", delta, defaultWindowDays),
			Delta:   delta,
		})
	default:
		insights = append(insights, domain.Insight{
			Kind:    "spend_down",
			Message: fmt.Sprintf("spending is down %d over the previous %d days", -delta, defaultWindowDays),
			Delta:   delta,
		})
	}

	net := windows.CurrentIncome - windows.CurrentSpend
	if net < 0 {
		insights = append(insights, domain.Insight{
			Kind:    "negative_cash_flow",
			Message: fmt.Sprintf("outflow exceeded inflow by %d in the last %d days", -net, defaultWindowDays),
			Delta:   net,
		})
	}

	var topRows []domain.QueryRow
	if err := s.db.WithContext(ctx).Raw(`
SELECT category AS label, COALESCE(SUM(-amount), 0) AS total, COUNT(*) AS count
FROM transactions
WHERE org_id = ? AND posted_at >= ? AND amount < 0
GROUP BY category
ORDER BY total DESC
LIMIT 1
`, orgID, current).Scan(&topRows).Error; err != nil {
		return nil, err
	}
	if len(topRows) == 1 && topRows[0].Total > 0 {
		insights = append(insights, domain.Insight{
			Kind:    "top_category",
			Message: fmt.Sprintf("%s is the largest spend category at %d", topRows[0].Label, topRows[0].Total),
			Delta:   topRows[0].Total,
		})
	}

	s.insights.Set(orgID.String(), insights, insightCacheTTL)
	s.metrics.RecordIntelligenceQuery(ctx, orgID.String(), "insights")
	return insights, nil
}

func (s *intelligenceService) Forecast(ctx context.Context, horizonDays int) (*domain.Forecast, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if horizonDays == 0 {
		horizonDays = defaultHorizonDays
	}
	if horizonDays < 0 || horizonDays > maxHorizonDays {
		return nil, domain.ErrInvalidHorizon
	}

	cacheKey := fmt.Sprintf("%s|%d", orgID, horizonDays)
	if cached, ok := s.forecasts.Get(cacheKey); ok {
		return cached, nil
	}

	now := s.clock.Now().UTC()
	since := now.AddDate(0, 0, -defaultWindowDays)

	var totals struct {
		Balance int64
		Net     int64
	}
	if err := s.db.WithContext(ctx).Raw(`
SELECT
  (SELECT COALESCE(SUM(current_balance), 0) FROM accounts WHERE org_id = ? AND active) AS balance,
  (SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE org_id = ? AND posted_at >= ?) AS net
`, orgID, orgID, since).Scan(&totals).Error; err != nil {
		return nil, err
	}

	// Naive projection: recent daily net applied forward. Good enough
	// for a dashboard sparkline, not a planning tool.
	daily := totals.Net / defaultWindowDays

	points := make([]domain.ForecastPoint, 0, horizonDays)
	balance := totals.Balance
	day := now.Truncate(24 * time.Hour)
	for i := 1; i <= horizonDays; i++ {
		balance += daily
		points = append(points, domain.ForecastPoint{
			Date:    day.AddDate(0, 0, i),
			Balance: balance,
		})
	}

	forecast := &domain.Forecast{Horizon: horizonDays, Daily: daily, Points: points}
	s.forecasts.Set(cacheKey, forecast, insightCacheTTL)
	s.metrics.RecordIntelligenceQuery(ctx, orgID.String(), "forecast")
	return forecast, nil
}
