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

	"github.com/smallbiznis/ledgerview/internal/auth/domain"
	"github.com/smallbiznis/ledgerview/internal/auth/password"
	"github.com/smallbiznis/ledgerview/internal/auth/repository"
	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clk,
	})
	return svc, dbConn, clk
}

func createUser(t *testing.T, dbConn *gorm.DB, email, plaintext string) *domain.User {
	t.Helper()

	hash, err := password.Hash(plaintext)
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	user := &domain.User{
		ID:           node.Generate(),
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: &hash,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, dbConn.Create(user).Error)
	return user
}

func TestLoginAndResolveSession(t *testing.T) {
	svc, dbConn, _ := newTestService(t)
	user := createUser(t, dbConn, "alice@example.com", "correct-password")

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "Alice@Example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	resolved, session, err := svc.ResolveSession(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, user.ID, session.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, dbConn, _ := newTestService(t)
	createUser(t, dbConn, "alice@example.com", "correct-password")

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestResolveSessionExpired(t *testing.T) {
	svc, dbConn, clk := newTestService(t)
	createUser(t, dbConn, "alice@example.com", "correct-password")

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	clk.Advance(31 * 24 * time.Hour)
	_, _, err = svc.ResolveSession(context.Background(), result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, dbConn, _ := newTestService(t)
	createUser(t, dbConn, "alice@example.com", "correct-password")

	result, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.Token))

	_, _, err = svc.ResolveSession(context.Background(), result.Token)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
