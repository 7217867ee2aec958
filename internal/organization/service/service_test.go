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

	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/organization/domain"
	"github.com/smallbiznis/ledgerview/internal/organization/repository"
	"github.com/smallbiznis/ledgerview/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Organization{}, &domain.OrganizationMember{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
	})
	return svc, dbConn, node
}

func createOrg(t *testing.T, dbConn *gorm.DB, node *snowflake.Node, name, slug string) *domain.Organization {
	t.Helper()
	org := &domain.Organization{
		ID:        node.Generate(),
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, dbConn.Create(org).Error)
	return org
}

func TestGetUnknownOrganization(t *testing.T) {
	svc, _, node := newTestService(t)

	_, err := svc.Get(context.Background(), node.Generate())
	assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)
}

func TestRoleOfNonMember(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	org := createOrg(t, dbConn, node, "Main", "main")

	_, err := svc.RoleOf(context.Background(), org.ID, node.Generate())
	assert.ErrorIs(t, err, domain.ErrNotAMember)
}

func TestAddMemberAndRoleOf(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	org := createOrg(t, dbConn, node, "Main", "main")
	userID := node.Generate()

	member, err := svc.AddMember(context.Background(), org.ID, userID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, member.Role)

	role, err := svc.RoleOf(context.Background(), org.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestAddMemberIsIdempotent(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	org := createOrg(t, dbConn, node, "Main", "main")
	userID := node.Generate()

	first, err := svc.AddMember(context.Background(), org.ID, userID, domain.RoleOwner)
	require.NoError(t, err)

	second, err := svc.AddMember(context.Background(), org.ID, userID, domain.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.RoleOwner, second.Role)
}

func TestAddMemberRejectsInvalidRole(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	org := createOrg(t, dbConn, node, "Main", "main")

	_, err := svc.AddMember(context.Background(), org.ID, node.Generate(), domain.Role("superuser"))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

// blindRepo misses membership lookups a set number of times, standing in
// for a second writer racing the same membership insert.
type blindRepo struct {
	domain.Repository
	misses int
}

func (r *blindRepo) FindMember(ctx context.Context, db *gorm.DB, orgID, userID snowflake.ID) (*domain.OrganizationMember, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.Repository.FindMember(ctx, db, orgID, userID)
}

func TestAddMemberRecoversFromDuplicateCreate(t *testing.T) {
	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Organization{}, &domain.OrganizationMember{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  &blindRepo{Repository: repository.Provide(), misses: 1},
		Clock: clock.NewFakeClock(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
	})

	org := createOrg(t, dbConn, node, "Main", "main")
	userID := node.Generate()
	existing := &domain.OrganizationMember{
		ID:        node.Generate(),
		OrgID:     org.ID,
		UserID:    userID,
		Role:      domain.RoleOwner,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, dbConn.Create(existing).Error)

	member, err := svc.AddMember(context.Background(), org.ID, userID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, member.ID)
	assert.Equal(t, domain.RoleOwner, member.Role)
}

func TestListForUser(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	first := createOrg(t, dbConn, node, "First", "first")
	second := createOrg(t, dbConn, node, "Second", "second")
	userID := node.Generate()

	_, err := svc.AddMember(context.Background(), first.ID, userID, domain.RoleMember)
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), second.ID, userID, domain.RoleMember)
	require.NoError(t, err)

	orgs, err := svc.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, orgs, 2)
}
