// Package e2e boots the full application against a real Postgres and
// exercises the dashboard flows end to end. The suite is opt-in: set
// LEDGERVIEW_E2E=1 and point DATABASE_* at a scratch database.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/ledgerview/internal/account"
	"github.com/smallbiznis/ledgerview/internal/alert"
	"github.com/smallbiznis/ledgerview/internal/audit"
	"github.com/smallbiznis/ledgerview/internal/auth"
	"github.com/smallbiznis/ledgerview/internal/authorization"
	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/config"
	"github.com/smallbiznis/ledgerview/internal/entitlement"
	"github.com/smallbiznis/ledgerview/internal/export"
	"github.com/smallbiznis/ledgerview/internal/intelligence"
	"github.com/smallbiznis/ledgerview/internal/invoice"
	"github.com/smallbiznis/ledgerview/internal/migration"
	"github.com/smallbiznis/ledgerview/internal/observability"
	"github.com/smallbiznis/ledgerview/internal/organization"
	"github.com/smallbiznis/ledgerview/internal/providers"
	"github.com/smallbiznis/ledgerview/internal/ratelimit"
	"github.com/smallbiznis/ledgerview/internal/seed"
	"github.com/smallbiznis/ledgerview/internal/server"
	"github.com/smallbiznis/ledgerview/internal/snapshot"
	"github.com/smallbiznis/ledgerview/internal/support"
	"github.com/smallbiznis/ledgerview/internal/transaction"
	"github.com/smallbiznis/ledgerview/internal/upload"
	"github.com/smallbiznis/ledgerview/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type testEnv struct {
	app     *fx.App
	server  *server.Server
	db      *gorm.DB
	baseURL string
	httpSrv *httptest.Server
}

var env *testEnv

func TestMain(m *testing.M) {
	if strings.TrimSpace(os.Getenv("LEDGERVIEW_E2E")) == "" {
		fmt.Println("skipping e2e suite: LEDGERVIEW_E2E not set")
		return
	}

	gin.SetMode(gin.TestMode)
	setDefaultEnv()

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.shutdown()
	os.Exit(code)
}

func startEnv() (*testEnv, error) {
	var (
		srv    *server.Server
		dbConn *gorm.DB
	)

	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		providers.Module,
		authorization.Module,
		audit.Module,
		auth.Module,
		organization.Module,
		entitlement.Module,
		account.Module,
		transaction.Module,
		snapshot.Module,
		export.Module,
		upload.Module,
		intelligence.Module,
		invoice.Module,
		alert.Module,
		support.Module,
		ratelimit.Module,
		migration.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Populate(&srv, &dbConn),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return nil, err
	}

	httpSrv := httptest.NewServer(srv.Engine())

	return &testEnv{
		app:     app,
		server:  srv,
		db:      dbConn,
		baseURL: httpSrv.URL,
		httpSrv: httpSrv,
	}, nil
}

func (e *testEnv) shutdown() {
	if e == nil {
		return
	}
	if e.httpSrv != nil {
		e.httpSrv.Close()
	}
	if e.app != nil {
		_ = e.app.Stop(context.Background())
	}
}

func setDefaultEnv() {
	setEnvIfEmpty("ENVIRONMENT", "test")
	setEnvIfEmpty("AUTH_COOKIE_SECURE", "false")
	setEnvIfEmpty("BOOTSTRAP_ADMIN", "true")
	setEnvIfEmpty("LOG_LEVEL", "error")
}

func setEnvIfEmpty(key, value string) {
	if strings.TrimSpace(os.Getenv(key)) != "" {
		return
	}
	_ = os.Setenv(key, value)
}

func resetDatabase(t *testing.T, dbConn *gorm.DB) {
	t.Helper()
	if err := truncateAllTables(dbConn); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	if err := seed.EnsureMainOrgAndAdmin(dbConn); err != nil {
		t.Fatalf("seed default org and admin: %v", err)
	}
}

func truncateAllTables(dbConn *gorm.DB) error {
	type tableRow struct {
		Name string `gorm:"column:tablename"`
	}
	var rows []tableRow
	if err := dbConn.Raw(
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`,
	).Scan(&rows).Error; err != nil {
		return err
	}

	tables := make([]string, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		tables = append(tables, `"`+row.Name+`"`)
	}
	if len(tables) == 0 {
		return nil
	}

	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	return dbConn.Exec(stmt).Error
}

func loginAdmin(t *testing.T) (*http.Client, string) {
	t.Helper()
	client := newHTTPClient()

	req := map[string]any{
		"email":    "admin@ledgerview.local",
		"password": "admin",
	}
	resp, body := doJSON(t, client, http.MethodPost, env.baseURL+"/auth/login", req, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, client, http.MethodGet, env.baseURL+"/auth/user/orgs", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list orgs failed: %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Organizations []struct {
			ID string `json:"id"`
		} `json:"organizations"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode orgs: %v", err)
	}
	if len(payload.Organizations) == 0 {
		t.Fatalf("no organizations returned")
	}
	return client, strings.TrimSpace(payload.Organizations[0].ID)
}

func doJSON(t *testing.T, client *http.Client, method, reqURL string, payload any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, reqURL, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, reqURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func newHTTPClient() *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func TestE2E_HealthCheck(t *testing.T) {
	resetDatabase(t, env.db)

	resp, err := http.Get(env.baseURL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestE2E_BootstrapDefaultOrgAndAdmin(t *testing.T) {
	resetDatabase(t, env.db)

	org := struct {
		ID        int64
		Slug      string
		IsDefault bool
	}{}
	if err := env.db.Raw(
		`SELECT id, slug, is_default FROM organizations WHERE slug = ?`, "main",
	).Scan(&org).Error; err != nil {
		t.Fatalf("query default org: %v", err)
	}
	if org.ID == 0 || !org.IsDefault {
		t.Fatalf("default org not found")
	}

	_, orgID := loginAdmin(t)
	if orgID == "" {
		t.Fatalf("expected org id after login")
	}
}

func TestE2E_AccountTransactionSnapshotFlow(t *testing.T) {
	resetDatabase(t, env.db)

	client, orgID := loginAdmin(t)
	headers := map[string]string{server.HeaderOrg: orgID}

	created := struct {
		ID string `json:"id"`
	}{}
	resp, body := doJSON(t, client, http.MethodPost, env.baseURL+"/api/accounts", map[string]any{
		"name":         "Payroll Checking",
		"institution":  "First Demo Bank",
		"mask":         "1234",
		"account_type": "checking",
		"currency":     "USD",
	}, headers)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create account failed: %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode account: %v", err)
	}

	resp, body = doJSON(t, client, http.MethodPost, env.baseURL+"/api/transactions", map[string]any{
		"account_id": created.ID,
		"posted_at":  time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
		"amount":     -4500,
		"currency":   "USD",
		"merchant":   "Coffee Collective",
		"category":   "meals",
	}, headers)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("ingest transaction failed: %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, client, http.MethodGet, env.baseURL+"/api/snapshot", nil, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("snapshot failed: %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, client, http.MethodGet, env.baseURL+"/api/transactions", nil, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list transactions failed: %d: %s", resp.StatusCode, string(body))
	}
	if !strings.Contains(string(body), "Coffee Collective") {
		t.Fatalf("expected ingested transaction in list: %s", string(body))
	}
}

func TestE2E_TransactionExportCSV(t *testing.T) {
	resetDatabase(t, env.db)

	client, orgID := loginAdmin(t)
	headers := map[string]string{server.HeaderOrg: orgID}

	resp, body := doJSON(t, client, http.MethodGet, env.baseURL+"/api/transactions/export", nil, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export failed: %d: %s", resp.StatusCode, string(body))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected csv content type, got %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("expected attachment disposition, got %s", cd)
	}
}

func TestE2E_IntelligenceGate(t *testing.T) {
	resetDatabase(t, env.db)

	client, orgID := loginAdmin(t)
	headers := map[string]string{server.HeaderOrg: orgID}
	queryReq := map[string]any{"kind": "category_spend"}

	// No entitlement record yet, the gate denies.
	resp, body := doJSON(t, client, http.MethodPost, env.baseURL+"/api/intelligence/query", queryReq, headers)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without entitlement, got %d: %s", resp.StatusCode, string(body))
	}

	// A lowercase tier value does not unlock anything.
	resp, body = doJSON(t, client, http.MethodPut, env.baseURL+"/api/entitlement", map[string]any{
		"tier": "govcon",
	}, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put entitlement failed: %d: %s", resp.StatusCode, string(body))
	}
	resp, body = doJSON(t, client, http.MethodPost, env.baseURL+"/api/intelligence/query", queryReq, headers)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for lowercase tier, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, client, http.MethodPut, env.baseURL+"/api/entitlement", map[string]any{
		"tier": "GovCon",
	}, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put entitlement failed: %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, client, http.MethodPost, env.baseURL+"/api/intelligence/query", queryReq, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after unlock, got %d: %s", resp.StatusCode, string(body))
	}
	if !strings.Contains(string(body), "category_spend") {
		t.Fatalf("expected query result, got %s", string(body))
	}
}

func TestE2E_AuditTrail(t *testing.T) {
	resetDatabase(t, env.db)

	client, orgID := loginAdmin(t)
	headers := map[string]string{server.HeaderOrg: orgID}

	resp, body := doJSON(t, client, http.MethodPut, env.baseURL+"/api/entitlement", map[string]any{
		"tier": "GovCon",
	}, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put entitlement failed: %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, client, http.MethodGet, env.baseURL+"/api/audit-logs", nil, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list audit logs failed: %d: %s", resp.StatusCode, string(body))
	}
	if !strings.Contains(string(body), "entitlement.updated") {
		t.Fatalf("expected entitlement audit entry, got %s", string(body))
	}
}
