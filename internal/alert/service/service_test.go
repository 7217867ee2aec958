package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/smallbiznis/ledgerview/internal/account/domain"
	"github.com/smallbiznis/ledgerview/internal/alert/domain"
	"github.com/smallbiznis/ledgerview/internal/alert/repository"
	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/config"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	txndomain "github.com/smallbiznis/ledgerview/internal/transaction/domain"
	"github.com/smallbiznis/ledgerview/pkg/db"
)

type alertFixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	orgID snowflake.ID
}

func newAlertFixture(t *testing.T) *alertFixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&domain.Rule{}, &domain.Event{},
		&accountdomain.Account{}, &txndomain.Transaction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:      dbConn,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(dbConn),
		Clock:   clk,
		Holder:  config.NewStaticAlertingConfigHolder(config.DefaultAlertingConfig()),
		Metrics: nil,
	})

	return &alertFixture{
		svc:   svc,
		db:    dbConn,
		node:  node,
		clock: clk,
		orgID: node.Generate(),
	}
}

func (f *alertFixture) ctx() context.Context {
	return orgcontext.WithOrgID(context.Background(), int64(f.orgID))
}

func (f *alertFixture) createAccount(t *testing.T, balance int64) snowflake.ID {
	t.Helper()
	account := &accountdomain.Account{
		ID:             f.node.Generate(),
		OrgID:          f.orgID,
		Name:           "Operating Checking",
		Institution:    "First Demo Bank",
		Mask:           "1234",
		Type:           accountdomain.AccountTypeChecking,
		Currency:       "USD",
		CurrentBalance: balance,
		Active:         true,
		CreatedAt:      f.clock.Now(),
		UpdatedAt:      f.clock.Now(),
	}
	require.NoError(t, f.db.Create(account).Error)
	return account.ID
}

func (f *alertFixture) createTransaction(t *testing.T, accountID snowflake.ID, amount int64, postedAt time.Time) {
	t.Helper()
	txn := &txndomain.Transaction{
		ID:        f.node.Generate(),
		OrgID:     f.orgID,
		AccountID: accountID,
		PostedAt:  postedAt,
		Amount:    amount,
		Currency:  "USD",
		Merchant:  "Test Merchant",
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.db.Create(txn).Error)
}

func TestEvaluateLowBalanceFires(t *testing.T) {
	f := newAlertFixture(t)
	f.createAccount(t, 5_000)

	threshold := int64(10_000)
	_, err := f.svc.CreateRule(f.ctx(), domain.CreateRuleRequest{
		Kind:      domain.RuleLowBalance,
		Threshold: &threshold,
	})
	require.NoError(t, err)

	fired, err := f.svc.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	events, err := f.svc.ListEvents(f.ctx(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.RuleLowBalance, events[0].Kind)
	assert.Equal(t, int64(5_000), events[0].Observed)
}

func TestEvaluateLowBalanceHolds(t *testing.T) {
	f := newAlertFixture(t)
	f.createAccount(t, 50_000)

	threshold := int64(10_000)
	_, err := f.svc.CreateRule(f.ctx(), domain.CreateRuleRequest{
		Kind:      domain.RuleLowBalance,
		Threshold: &threshold,
	})
	require.NoError(t, err)

	fired, err := f.svc.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
}

func TestEvaluateLargeTransaction(t *testing.T) {
	f := newAlertFixture(t)
	accountID := f.createAccount(t, 1_000_000)
	f.createTransaction(t, accountID, -750_000, f.clock.Now().Add(-time.Minute))

	threshold := int64(500_000)
	_, err := f.svc.CreateRule(f.ctx(), domain.CreateRuleRequest{
		Kind:      domain.RuleLargeTransaction,
		Threshold: &threshold,
	})
	require.NoError(t, err)

	fired, err := f.svc.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestEvaluateRefireSuppression(t *testing.T) {
	f := newAlertFixture(t)
	f.createAccount(t, 5_000)

	threshold := int64(10_000)
	_, err := f.svc.CreateRule(f.ctx(), domain.CreateRuleRequest{
		Kind:      domain.RuleLowBalance,
		Threshold: &threshold,
	})
	require.NoError(t, err)

	fired, err := f.svc.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	// Still holding moments later, but within the refire interval.
	f.clock.Advance(10 * time.Minute)
	fired, err = f.svc.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, fired)

	// Past the interval it fires again.
	f.clock.Advance(time.Hour)
	fired, err = f.svc.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestCreateRuleRejectsUnknownKind(t *testing.T) {
	f := newAlertFixture(t)

	_, err := f.svc.CreateRule(f.ctx(), domain.CreateRuleRequest{Kind: domain.RuleKind("volcano")})
	assert.ErrorIs(t, err, domain.ErrInvalidRuleKind)
}

func TestDisabledRuleIsSkipped(t *testing.T) {
	f := newAlertFixture(t)
	f.createAccount(t, 5_000)

	threshold := int64(10_000)
	enabled := false
	_, err := f.svc.CreateRule(f.ctx(), domain.CreateRuleRequest{
		Kind:      domain.RuleLowBalance,
		Threshold: &threshold,
		Enabled:   &enabled,
	})
	require.NoError(t, err)

	fired, err := f.svc.Evaluate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
}
