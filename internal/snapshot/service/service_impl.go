package service

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	"github.com/smallbiznis/ledgerview/internal/snapshot/domain"
)

const activityWindow = 30 * 24 * time.Hour

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type snapshotService struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &snapshotService{
		db:    p.DB,
		log:   p.Log.Named("snapshot.service"),
		clock: p.Clock,
	}
}

func (s *snapshotService) Get(ctx context.Context) (*domain.Snapshot, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	now := s.clock.Now().UTC()
	snap := &domain.Snapshot{
		OrganizationID: orgID.String(),
		AsOf:           now,
		Balances:       []domain.BalanceByType{},
	}

	rows, err := s.db.WithContext(ctx).Raw(`
SELECT account_type, COALESCE(SUM(current_balance), 0) AS balance, COUNT(*) AS accounts
FROM accounts
WHERE org_id = ? AND active
GROUP BY account_type
ORDER BY account_type
`, orgID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b domain.BalanceByType
		if err := rows.Scan(&b.AccountType, &b.Balance, &b.Accounts); err != nil {
			return nil, err
		}
		snap.TotalBalance += b.Balance
		snap.Balances = append(snap.Balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	since := now.Add(-activityWindow)
	var activity struct {
		Inflow       int64
		Outflow      int64
		Transactions int
		Pending      int
	}
	if err := s.db.WithContext(ctx).Raw(`
SELECT
  COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0) AS inflow,
  COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0) AS outflow,
  COUNT(*) AS transactions,
  COALESCE(SUM(CASE WHEN pending THEN 1 ELSE 0 END), 0) AS pending
FROM transactions
WHERE org_id = ? AND posted_at >= ?
`, orgID, since).Scan(&activity).Error; err != nil {
		return nil, err
	}

	snap.Inflow = activity.Inflow
	snap.Outflow = activity.Outflow
	snap.Transactions = activity.Transactions
	snap.Pending = activity.Pending

	return snap, nil
}
