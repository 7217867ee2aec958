package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/organization/domain"
	pkgdb "github.com/smallbiznis/ledgerview/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("organization.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	org, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrOrganizationNotFound
	}
	return org, nil
}

func (s *Service) ListForUser(ctx context.Context, userID snowflake.ID) ([]domain.Organization, error) {
	return s.repo.ListForUser(ctx, s.db, userID)
}

func (s *Service) RoleOf(ctx context.Context, orgID, userID snowflake.ID) (domain.Role, error) {
	member, err := s.repo.FindMember(ctx, s.db, orgID, userID)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", domain.ErrNotAMember
	}
	return member.Role, nil
}

func (s *Service) AddMember(ctx context.Context, orgID, userID snowflake.ID, role domain.Role) (*domain.OrganizationMember, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	org, err := s.repo.FindByID(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrOrganizationNotFound
	}

	existing, err := s.repo.FindMember(ctx, s.db, orgID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	member := &domain.OrganizationMember{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		UserID:    userID,
		Role:      role,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.CreateMember(ctx, s.db, member); err != nil {
		// Two concurrent adds can both miss the membership lookup; the
		// unique index decides, and the loser reads the winner's row.
		if pkgdb.IsDuplicateKeyErr(err) {
			existing, findErr := s.repo.FindMember(ctx, s.db, orgID, userID)
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	s.log.Info("member added",
		zap.String("org_id", orgID.String()),
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)),
	)
	return member, nil
}
