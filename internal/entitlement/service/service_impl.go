package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/ledgerview/internal/audit/domain"
	"github.com/smallbiznis/ledgerview/internal/entitlement/domain"
	obsContext "github.com/smallbiznis/ledgerview/internal/observability/context"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	AuditSvc auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	genID    *snowflake.Node
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("entitlement.service"),
		repo:     p.Repo,
		genID:    p.GenID,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Get(ctx context.Context) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	ent, err := s.repo.FindByOrg(ctx, s.db, int64(orgID))
	if err != nil {
		return nil, err
	}
	if ent == nil {
		// no record provisioned yet: default deny, empty payload
		return &domain.Response{
			OrganizationID: orgID.String(),
			Record:         map[string]any{},
			GovCon:         false,
		}, nil
	}

	return s.toResponse(ent), nil
}

func (s *Service) Put(ctx context.Context, record domain.Record) (*domain.Response, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if record == nil {
		return nil, domain.ErrInvalidRecord
	}

	now := time.Now().UTC()
	ent := &domain.Entitlement{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		Record:    datatypes.JSONMap(record),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, s.db, ent); err != nil {
		return nil, err
	}

	s.log.Info("entitlement record replaced",
		zap.String("org_id", orgID.String()),
		zap.Bool("govcon", domain.GovConUnlocked(record)),
	)

	actorType, actorID := obsContext.ActorFromContext(ctx)
	targetID := orgID.String()
	_ = s.auditSvc.AuditLog(ctx, &orgID, actorType, &actorID, "entitlement.updated", "entitlement", &targetID, map[string]any{
		"govcon": domain.GovConUnlocked(record),
	})

	return s.toResponse(ent), nil
}

func (s *Service) GovCon(ctx context.Context) (bool, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return false, domain.ErrInvalidOrganization
	}

	ent, err := s.repo.FindByOrg(ctx, s.db, int64(orgID))
	if err != nil {
		return false, err
	}
	if ent == nil {
		return false, nil
	}
	return domain.GovConUnlocked(map[string]any(ent.Record)), nil
}

func (s *Service) toResponse(ent *domain.Entitlement) *domain.Response {
	record := map[string]any(ent.Record)
	if record == nil {
		record = map[string]any{}
	}
	return &domain.Response{
		OrganizationID: ent.OrgID.String(),
		Record:         record,
		GovCon:         domain.GovConUnlocked(record),
		UpdatedAt:      ent.UpdatedAt,
	}
}
