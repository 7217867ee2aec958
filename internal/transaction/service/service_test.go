package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	"github.com/smallbiznis/ledgerview/internal/transaction/domain"
	"github.com/smallbiznis/ledgerview/internal/transaction/repository"
	"github.com/smallbiznis/ledgerview/pkg/db"
)

type txnFixture struct {
	svc       domain.Service
	node      *snowflake.Node
	orgID     snowflake.ID
	accountID snowflake.ID
}

func newTxnFixture(t *testing.T) *txnFixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Transaction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})

	return &txnFixture{
		svc:       svc,
		node:      node,
		orgID:     node.Generate(),
		accountID: node.Generate(),
	}
}

func (f *txnFixture) ctx() context.Context {
	return orgcontext.WithOrgID(context.Background(), int64(f.orgID))
}

func (f *txnFixture) ingest(t *testing.T, amount int64, merchant, category string, postedAt time.Time) *domain.Response {
	t.Helper()
	resp, err := f.svc.Ingest(f.ctx(), domain.IngestRequest{
		AccountID: f.accountID.String(),
		PostedAt:  postedAt,
		Amount:    amount,
		Currency:  "usd",
		Merchant:  merchant,
		Category:  category,
	})
	require.NoError(t, err)
	return resp
}

func TestIngestNormalizesInput(t *testing.T) {
	f := newTxnFixture(t)

	resp, err := f.svc.Ingest(f.ctx(), domain.IngestRequest{
		AccountID: f.accountID.String(),
		PostedAt:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Amount:    -4500,
		Currency:  "usd",
		Merchant:  "  Coffee Collective  ",
		Category:  " meals ",
	})
	require.NoError(t, err)

	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, "Coffee Collective", resp.Merchant)
	assert.Equal(t, "meals", resp.Category)
}

func TestIngestValidation(t *testing.T) {
	f := newTxnFixture(t)
	postedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	_, err := f.svc.Ingest(f.ctx(), domain.IngestRequest{
		AccountID: "not-a-snowflake",
		PostedAt:  postedAt,
		Merchant:  "Coffee",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAccountID)

	_, err = f.svc.Ingest(f.ctx(), domain.IngestRequest{
		AccountID: f.accountID.String(),
		PostedAt:  postedAt,
		Merchant:  "   ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMerchant)

	_, err = f.svc.Ingest(f.ctx(), domain.IngestRequest{
		AccountID: f.accountID.String(),
		Merchant:  "Coffee",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPostedAt)
}

func TestIngestRequiresOrganization(t *testing.T) {
	f := newTxnFixture(t)

	_, err := f.svc.Ingest(context.Background(), domain.IngestRequest{
		AccountID: f.accountID.String(),
		PostedAt:  time.Now().UTC(),
		Merchant:  "Coffee",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestListFiltersByCategory(t *testing.T) {
	f := newTxnFixture(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	f.ingest(t, -4500, "Coffee Collective", "meals", base)
	f.ingest(t, -12000, "Cloud Hosting Inc", "infrastructure", base.Add(time.Hour))
	f.ingest(t, -900, "Corner Bakery", "meals", base.Add(2*time.Hour))

	resp, err := f.svc.List(f.ctx(), domain.ListRequest{Category: "meals"})
	require.NoError(t, err)
	require.Len(t, resp.Transactions, 2)
	for _, txn := range resp.Transactions {
		assert.Equal(t, "meals", txn.Category)
	}
}

func TestListPagination(t *testing.T) {
	f := newTxnFixture(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		f.ingest(t, -100*int64(i+1), fmt.Sprintf("Merchant %d", i), "misc", base.Add(time.Duration(i)*time.Hour))
	}

	first, err := f.svc.List(f.ctx(), domain.ListRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, first.Transactions, 2)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := f.svc.List(f.ctx(), domain.ListRequest{PageSize: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	assert.Len(t, second.Transactions, 2)

	seen := map[string]bool{}
	for _, txn := range append(first.Transactions, second.Transactions...) {
		assert.False(t, seen[txn.ID], "transaction %s returned twice", txn.ID)
		seen[txn.ID] = true
	}
}

func TestListRejectsBadPageToken(t *testing.T) {
	f := newTxnFixture(t)

	_, err := f.svc.List(f.ctx(), domain.ListRequest{PageToken: "not-a-cursor"})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

func TestGetByID(t *testing.T) {
	f := newTxnFixture(t)
	created := f.ingest(t, -4500, "Coffee Collective", "meals", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	found, err := f.svc.GetByID(f.ctx(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = f.svc.GetByID(f.ctx(), f.node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportStreamsAllRows(t *testing.T) {
	f := newTxnFixture(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		f.ingest(t, -100, fmt.Sprintf("Merchant %d", i), "misc", base.Add(time.Duration(i)*time.Hour))
	}

	var rows int
	err := f.svc.Export(f.ctx(), domain.ListRequest{}, func(txn domain.Response) error {
		rows++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, rows)
}
