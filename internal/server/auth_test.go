package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/ledgerview/internal/auth/domain"
	"github.com/smallbiznis/ledgerview/internal/auth/session"
	"github.com/smallbiznis/ledgerview/internal/config"
	"github.com/stretchr/testify/assert"
)

type stubAuthService struct {
	user *authdomain.User
	err  error
}

func (s *stubAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	return nil, authdomain.ErrInvalidCredentials
}

func (s *stubAuthService) ResolveSession(ctx context.Context, token string) (*authdomain.User, *authdomain.Session, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.user, &authdomain.Session{UserID: s.user.ID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return nil
}

func authedEngine(svc authdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := &Server{
		authSvc:  svc,
		sessions: session.NewManager(config.Config{}),
	}

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.GET("/whoami", s.AuthRequired(), func(c *gin.Context) {
		id, _ := s.userID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String()})
	})
	return r
}

func TestAuthRequiredWithoutCookie(t *testing.T) {
	r := authedEngine(&stubAuthService{err: authdomain.ErrSessionNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsExpiredSession(t *testing.T) {
	r := authedEngine(&stubAuthService{err: authdomain.ErrSessionExpired})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "stale"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredResolvesUser(t *testing.T) {
	r := authedEngine(&stubAuthService{user: &authdomain.User{ID: 7, Email: "ops@ledgerview.local"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "token"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": "7"}`, w.Body.String())
}
