package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/config"
	"github.com/smallbiznis/ledgerview/internal/invoice/domain"
	"github.com/smallbiznis/ledgerview/internal/invoice/repository"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	"github.com/smallbiznis/ledgerview/internal/providers/pdf"
	"github.com/smallbiznis/ledgerview/pkg/db"
)

type invoiceFixture struct {
	svc   domain.Service
	orgID snowflake.ID
	node  *snowflake.Node
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Invoice{}, &domain.InvoiceItem{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		Cfg:   config.Config{AppName: "ledgerview"},
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)),
		PDF:   pdf.New(),
	})
	return &invoiceFixture{svc: svc, orgID: node.Generate(), node: node}
}

func (f *invoiceFixture) ctx() context.Context {
	return orgcontext.WithOrgID(context.Background(), int64(f.orgID))
}

func validRequest() domain.CreateInvoiceRequest {
	return domain.CreateInvoiceRequest{
		CustomerName:  "ACME Corp",
		CustomerEmail: "billing@acme.test",
		Lines: []domain.LineRequest{
			{Description: "Consulting", Quantity: 10, UnitAmount: 15_000},
			{Description: "Support retainer", Quantity: 1, UnitAmount: 50_000},
		},
	}
}

func TestCreateInvoice(t *testing.T) {
	f := newInvoiceFixture(t)

	inv, err := f.svc.Create(f.ctx(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusOpen, inv.Status)
	assert.Equal(t, int64(200_000), inv.TotalAmount)
	assert.Equal(t, "USD", inv.Currency)
	assert.True(t, strings.HasPrefix(inv.Number, "INV-2026"), "number %s", inv.Number)
	assert.Len(t, inv.Items, 2)
}

func TestCreateInvoiceSequenceAdvances(t *testing.T) {
	f := newInvoiceFixture(t)

	first, err := f.svc.Create(f.ctx(), validRequest())
	require.NoError(t, err)
	second, err := f.svc.Create(f.ctx(), validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.Number, second.Number)
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := newInvoiceFixture(t)

	req := validRequest()
	req.CustomerName = "   "
	_, err := f.svc.Create(f.ctx(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	req = validRequest()
	req.Lines = nil
	_, err = f.svc.Create(f.ctx(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidLines)

	req = validRequest()
	req.Lines[0].Quantity = 0
	_, err = f.svc.Create(f.ctx(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidLines)
}

func TestMarkPaidIsTerminal(t *testing.T) {
	f := newInvoiceFixture(t)

	inv, err := f.svc.Create(f.ctx(), validRequest())
	require.NoError(t, err)

	paid, err := f.svc.MarkPaid(f.ctx(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = f.svc.Void(f.ctx(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.MarkPaid(f.ctx(), inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestVoidOpenInvoice(t *testing.T) {
	f := newInvoiceFixture(t)

	inv, err := f.svc.Create(f.ctx(), validRequest())
	require.NoError(t, err)

	voided, err := f.svc.Void(f.ctx(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusVoid, voided.Status)
	assert.Nil(t, voided.PaidAt)
}

func TestGetByIDUnknown(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.svc.GetByID(f.ctx(), f.node.Generate())
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestRenderPDF(t *testing.T) {
	f := newInvoiceFixture(t)

	inv, err := f.svc.Create(f.ctx(), validRequest())
	require.NoError(t, err)

	reader, rendered, err := f.svc.RenderPDF(f.ctx(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, rendered.ID)

	raw, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.True(t, bytesLookLikePDF(raw), "expected a PDF document")
}

func bytesLookLikePDF(raw []byte) bool {
	return len(raw) > 4 && string(raw[:5]) == "%PDF-"
}
