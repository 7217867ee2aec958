package service

import (
	"context"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/config"
	"github.com/smallbiznis/ledgerview/internal/invoice/domain"
	"github.com/smallbiznis/ledgerview/internal/invoice/format"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	"github.com/smallbiznis/ledgerview/internal/providers/pdf"
)

const defaultCurrency = "USD"

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
	PDF   pdf.Provider
}

type invoiceService struct {
	orgName string
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	clock   clock.Clock
	pdf     pdf.Provider
}

func New(p Params) domain.Service {
	return &invoiceService{
		orgName: p.Cfg.AppName,
		db:      p.DB,
		log:     p.Log.Named("invoice.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		clock:   p.Clock,
		pdf:     p.PDF,
	}
}

func (s *invoiceService) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, domain.ErrInvalidCustomer
	}
	if len(req.Lines) == 0 {
		return nil, domain.ErrInvalidLines
	}
	for _, line := range req.Lines {
		if strings.TrimSpace(line.Description) == "" || line.Quantity <= 0 || line.UnitAmount < 0 {
			return nil, domain.ErrInvalidLines
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	now := s.clock.Now().UTC()

	seq, err := s.repo.NextSequence(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	number, err := format.FormatInvoiceNumber(format.DefaultInvoiceNumberTemplate, now, seq)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invoice{
		ID:            s.genID.Generate(),
		OrgID:         orgID,
		Number:        number,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		Status:        domain.InvoiceStatusOpen,
		Currency:      currency,
		IssuedAt:      &now,
		DueAt:         req.DueAt,
		Metadata:      datatypes.JSONMap{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	items := make([]domain.InvoiceItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		amount := line.Quantity * line.UnitAmount
		inv.TotalAmount += amount
		items = append(items, domain.InvoiceItem{
			ID:          s.genID.Generate(),
			OrgID:       orgID,
			InvoiceID:   inv.ID,
			Description: strings.TrimSpace(line.Description),
			Quantity:    line.Quantity,
			UnitAmount:  line.UnitAmount,
			Amount:      amount,
			CreatedAt:   now,
		})
	}

	if err := s.repo.Create(ctx, s.db, inv, items); err != nil {
		return nil, err
	}
	inv.Items = items

	s.log.Info("invoice created",
		zap.String("org_id", orgID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.Int64("total", inv.TotalAmount),
	)
	return inv, nil
}

func (s *invoiceService) List(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.Find(ctx, s.db, orgID, status)
}

func (s *invoiceService) GetByID(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	inv, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}

	items, err := s.repo.FindItems(ctx, s.db, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	return s.transition(ctx, id, domain.InvoiceStatusPaid)
}

func (s *invoiceService) Void(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	return s.transition(ctx, id, domain.InvoiceStatusVoid)
}

func (s *invoiceService) transition(ctx context.Context, id snowflake.ID, to domain.InvoiceStatus) (*domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	inv, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrInvoiceNotFound
	}

	// Only OPEN invoices move. PAID and VOID are terminal.
	if inv.Status != domain.InvoiceStatusOpen {
		return nil, domain.ErrInvalidTransition
	}

	now := s.clock.Now().UTC()
	inv.Status = to
	inv.UpdatedAt = now
	if to == domain.InvoiceStatusPaid {
		inv.PaidAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, s.db, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) RenderPDF(ctx context.Context, id snowflake.ID) (io.Reader, *domain.Invoice, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data := pdf.InvoiceData{
		OrgName:       s.orgName,
		InvoiceNumber: inv.Number,
		Status:        string(inv.Status),
		BillToName:    inv.CustomerName,
		BillToEmail:   inv.CustomerEmail,
		Total:         format.FormatMinor(inv.TotalAmount, inv.Currency),
	}
	if inv.IssuedAt != nil {
		data.IssueDate = inv.IssuedAt.Format(dateLayout)
	}
	if inv.DueAt != nil {
		data.DueDate = inv.DueAt.Format(dateLayout)
	}
	if inv.Status == domain.InvoiceStatusPaid || inv.Status == domain.InvoiceStatusVoid {
		data.AmountDue = format.FormatMinor(0, inv.Currency)
	} else {
		data.AmountDue = data.Total
	}

	for _, item := range inv.Items {
		data.Items = append(data.Items, pdf.InvoiceLine{
			Description: item.Description,
			Qty:         item.Quantity,
			UnitPrice:   format.FormatMinor(item.UnitAmount, inv.Currency),
			Amount:      format.FormatMinor(item.Amount, inv.Currency),
		})
	}

	doc, err := s.pdf.GenerateInvoice(ctx, data)
	if err != nil {
		return nil, nil, err
	}
	return doc, inv, nil
}

const dateLayout = "2006-01-02"
