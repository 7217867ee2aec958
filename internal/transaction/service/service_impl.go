package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	"github.com/smallbiznis/ledgerview/internal/transaction/domain"
	"github.com/smallbiznis/ledgerview/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 250
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("transaction.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	accountID, err := snowflake.ParseString(strings.TrimSpace(req.AccountID))
	if err != nil {
		return nil, domain.ErrInvalidAccountID
	}
	merchant := strings.TrimSpace(req.Merchant)
	if merchant == "" {
		return nil, domain.ErrInvalidMerchant
	}
	if req.PostedAt.IsZero() {
		return nil, domain.ErrInvalidPostedAt
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	record := &domain.Transaction{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		AccountID: accountID,
		PostedAt:  req.PostedAt.UTC(),
		Amount:    req.Amount,
		Currency:  currency,
		Merchant:  merchant,
		Category:  strings.TrimSpace(req.Category),
		Memo:      strings.TrimSpace(req.Memo),
		Pending:   req.Pending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, s.db, record); err != nil {
		return nil, err
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	filter, err := buildFilter(req)
	if err != nil {
		return nil, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var afterID int64
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		parsed, err := strconv.ParseInt(cursor.ID, 10, 64)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		afterID = parsed
	}

	// fetch one extra row to detect a further page
	items, err := s.repo.List(ctx, s.db, int64(orgID), filter, pageSize+1, afterID)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > pageSize
	if hasMore {
		items = items[:pageSize]
	}

	resp := &domain.ListResponse{
		Transactions: make([]domain.Response, 0, len(items)),
		HasMore:      hasMore,
	}
	for _, item := range items {
		resp.Transactions = append(resp.Transactions, toResponse(&item))
	}

	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:       strconv.FormatInt(int64(last.ID), 10),
			PostedAt: last.PostedAt.Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		resp.NextPageToken = token
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, s.db, int64(orgID), int64(parsed))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(record)
	return &resp, nil
}

func (s *Service) Export(ctx context.Context, req domain.ListRequest, fn func(domain.Response) error) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	filter, err := buildFilter(req)
	if err != nil {
		return err
	}

	return s.repo.ForEach(ctx, s.db, int64(orgID), filter, func(txn *domain.Transaction) error {
		return fn(toResponse(txn))
	})
}

func buildFilter(req domain.ListRequest) (domain.Filter, error) {
	filter := domain.Filter{
		From:     req.From,
		To:       req.To,
		Category: strings.TrimSpace(req.Category),
		Search:   strings.TrimSpace(req.Search),
		Pending:  req.Pending,
	}
	if raw := strings.TrimSpace(req.AccountID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.Filter{}, domain.ErrInvalidAccountID
		}
		id := int64(parsed)
		filter.AccountID = &id
	}
	return filter, nil
}

func toResponse(t *domain.Transaction) domain.Response {
	return domain.Response{
		ID:             t.ID.String(),
		OrganizationID: t.OrgID.String(),
		AccountID:      t.AccountID.String(),
		PostedAt:       t.PostedAt,
		Amount:         t.Amount,
		Currency:       t.Currency,
		Merchant:       t.Merchant,
		Category:       t.Category,
		Memo:           t.Memo,
		Pending:        t.Pending,
	}
}
