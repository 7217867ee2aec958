package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerview/internal/clock"
	obsContext "github.com/smallbiznis/ledgerview/internal/observability/context"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	"github.com/smallbiznis/ledgerview/internal/support/domain"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type ticketService struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &ticketService{
		log:   p.Log.Named("support.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *ticketService) Create(ctx context.Context, req domain.CreateTicketRequest) (*domain.Ticket, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if strings.TrimSpace(req.Subject) == "" {
		return nil, domain.ErrInvalidSubject
	}

	_, requester := obsContext.ActorFromContext(ctx)

	now := s.clock.Now().UTC()
	ticket := &domain.Ticket{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Subject:   strings.TrimSpace(req.Subject),
		Body:      req.Body,
		Requester: requester,
		Status:    domain.TicketOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.log.Info("support ticket created",
		zap.String("org_id", orgID.String()),
		zap.String("ticket_id", ticket.ID.String()),
	)
	return ticket, nil
}

func (s *ticketService) List(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.Find(ctx, orgID, status)
}

func (s *ticketService) Close(ctx context.Context, id snowflake.ID) (*domain.Ticket, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	ticket, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, domain.ErrTicketNotFound
	}
	if ticket.Status == domain.TicketClosed {
		return nil, domain.ErrTicketClosed
	}

	now := s.clock.Now().UTC()
	ticket.Status = domain.TicketClosed
	ticket.UpdatedAt = now
	ticket.ClosedAt = &now
	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}
