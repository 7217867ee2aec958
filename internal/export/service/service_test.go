package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/export/domain"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	txndomain "github.com/smallbiznis/ledgerview/internal/transaction/domain"
)

type stubTransactionService struct {
	rows []txndomain.Response
	err  error
}

func (s *stubTransactionService) Ingest(ctx context.Context, req txndomain.IngestRequest) (*txndomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTransactionService) List(ctx context.Context, req txndomain.ListRequest) (*txndomain.ListResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTransactionService) GetByID(ctx context.Context, id string) (*txndomain.Response, error) {
	return nil, errors.New("not implemented")
}

func (s *stubTransactionService) Export(ctx context.Context, req txndomain.ListRequest, fn func(txndomain.Response) error) error {
	if s.err != nil {
		return s.err
	}
	for _, row := range s.rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func newExportService(txns txndomain.Service) domain.Service {
	return New(Params{
		Log:          zap.NewNop(),
		Clock:        clock.NewFakeClock(time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)),
		Transactions: txns,
		Metrics:      nil,
	})
}

func orgContext() context.Context {
	return orgcontext.WithOrgID(context.Background(), 42)
}

func TestWriteCSV(t *testing.T) {
	svc := newExportService(&stubTransactionService{rows: []txndomain.Response{
		{
			ID:        "1",
			AccountID: "10",
			PostedAt:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Amount:    -4500,
			Currency:  "USD",
			Merchant:  "Coffee Collective",
			Category:  "meals",
		},
		{
			ID:        "2",
			AccountID: "10",
			PostedAt:  time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
			Amount:    250000,
			Currency:  "USD",
			Merchant:  "ACME Payroll",
			Category:  "income",
			Pending:   true,
		},
	}})

	var buf bytes.Buffer
	result, err := svc.WriteCSV(orgContext(), domain.Request{}, &buf)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, int64(buf.Len()), result.Bytes)
	assert.True(t, strings.HasPrefix(result.Filename, "transactions-20260829-"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,account_id,posted_at,amount,currency,merchant,category,memo,pending", lines[0])
	assert.Contains(t, lines[1], "Coffee Collective")
	assert.Contains(t, lines[2], "true")
}

func TestWriteCSVEmptySet(t *testing.T) {
	svc := newExportService(&stubTransactionService{})

	var buf bytes.Buffer
	result, err := svc.WriteCSV(orgContext(), domain.Request{}, &buf)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Rows)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
}

func TestWriteCSVPropagatesError(t *testing.T) {
	svc := newExportService(&stubTransactionService{err: errors.New("source gone")})

	var buf bytes.Buffer
	_, err := svc.WriteCSV(orgContext(), domain.Request{}, &buf)
	assert.Error(t, err)
}

func TestWriteCSVRequiresOrganization(t *testing.T) {
	svc := newExportService(&stubTransactionService{})

	var buf bytes.Buffer
	_, err := svc.WriteCSV(context.Background(), domain.Request{}, &buf)
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}
