package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/export/domain"
	"github.com/smallbiznis/ledgerview/internal/observability/metrics"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	txndomain "github.com/smallbiznis/ledgerview/internal/transaction/domain"
)

var csvHeader = []string{
	"id", "account_id", "posted_at", "amount", "currency",
	"merchant", "category", "memo", "pending",
}

type Params struct {
	fx.In

	Log          *zap.Logger
	Clock        clock.Clock
	Transactions txndomain.Service
	Metrics      *metrics.Metrics
}

type exportService struct {
	log          *zap.Logger
	clock        clock.Clock
	transactions txndomain.Service
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &exportService{
		log:          p.Log.Named("export.service"),
		clock:        p.Clock,
		transactions: p.Transactions,
		metrics:      p.Metrics,
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (s *exportService) WriteCSV(ctx context.Context, req domain.Request, w io.Writer) (*domain.Result, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	counter := &countingWriter{w: w}
	cw := csv.NewWriter(counter)

	if err := cw.Write(csvHeader); err != nil {
		return nil, err
	}

	rows := 0
	err := s.transactions.Export(ctx, txndomain.ListRequest{
		AccountID: req.AccountID,
		From:      req.From,
		To:        req.To,
		Category:  req.Category,
	}, func(txn txndomain.Response) error {
		rows++
		return cw.Write([]string{
			txn.ID,
			txn.AccountID,
			txn.PostedAt.UTC().Format(time.RFC3339),
			strconv.FormatInt(txn.Amount, 10),
			txn.Currency,
			txn.Merchant,
			txn.Category,
			txn.Memo,
			strconv.FormatBool(txn.Pending),
		})
	})
	if err != nil {
		s.metrics.RecordExportRun(ctx, orgID.String(), "error")
		return nil, err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		s.metrics.RecordExportRun(ctx, orgID.String(), "error")
		return nil, err
	}

	result := &domain.Result{
		Filename: s.filename(),
		Rows:     rows,
		Bytes:    counter.n,
	}

	s.metrics.RecordExportRun(ctx, orgID.String(), "ok")
	s.log.Info("export rendered",
		zap.String("org_id", orgID.String()),
		zap.String("filename", result.Filename),
		zap.Int("rows", result.Rows),
	)
	return result, nil
}

func (s *exportService) filename() string {
	now := s.clock.Now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
	return fmt.Sprintf("transactions-%s-%s.csv", now.Format("20060102"), id.String())
}
