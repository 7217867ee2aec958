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

	"github.com/smallbiznis/ledgerview/internal/audit/domain"
	"github.com/smallbiznis/ledgerview/internal/audit/repository"
	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	"github.com/smallbiznis/ledgerview/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)),
	})
	return svc, dbConn, node
}

func TestAuditLogRedactsCredentialMetadata(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	orgID := node.Generate()

	err := svc.AuditLog(context.Background(), &orgID, string(domain.ActorTypeSystem), nil,
		"session.created", "session", nil, map[string]any{
			"session_token": "abc123xyz",
			"email":         "admin@ledgerview.local",
		})
	require.NoError(t, err)

	var entry domain.AuditLog
	require.NoError(t, dbConn.First(&entry).Error)
	assert.Equal(t, "session.created", entry.Action)
	assert.Equal(t, "****3xyz", entry.Metadata["session_token"])
	assert.Equal(t, "admin@ledgerview.local", entry.Metadata["email"])
}

func TestAuditLogRejectsBlankAction(t *testing.T) {
	svc, _, node := newTestService(t)
	orgID := node.Generate()

	err := svc.AuditLog(context.Background(), &orgID, "system", nil, "   ", "entitlement", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestAuditLogResolvesOrgFromContext(t *testing.T) {
	svc, dbConn, node := newTestService(t)
	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	err := svc.AuditLog(ctx, nil, "system", nil, "entitlement.updated", "entitlement", nil, nil)
	require.NoError(t, err)

	var entry domain.AuditLog
	require.NoError(t, dbConn.First(&entry).Error)
	require.NotNil(t, entry.OrgID)
	assert.Equal(t, orgID, *entry.OrgID)
}
