// Package server wires the HTTP surface: routes, session auth, org
// resolution, RBAC, the entitlement gate, and rate limiting.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/ledgerview/internal/account"
	accountdomain "github.com/smallbiznis/ledgerview/internal/account/domain"
	"github.com/smallbiznis/ledgerview/internal/alert"
	alertdomain "github.com/smallbiznis/ledgerview/internal/alert/domain"
	"github.com/smallbiznis/ledgerview/internal/audit"
	auditdomain "github.com/smallbiznis/ledgerview/internal/audit/domain"
	"github.com/smallbiznis/ledgerview/internal/auth"
	authdomain "github.com/smallbiznis/ledgerview/internal/auth/domain"
	"github.com/smallbiznis/ledgerview/internal/auth/session"
	"github.com/smallbiznis/ledgerview/internal/authorization"
	"github.com/smallbiznis/ledgerview/internal/config"
	"github.com/smallbiznis/ledgerview/internal/endpoints"
	"github.com/smallbiznis/ledgerview/internal/entitlement"
	entitlementdomain "github.com/smallbiznis/ledgerview/internal/entitlement/domain"
	"github.com/smallbiznis/ledgerview/internal/export"
	exportdomain "github.com/smallbiznis/ledgerview/internal/export/domain"
	"github.com/smallbiznis/ledgerview/internal/intelligence"
	intelligencedomain "github.com/smallbiznis/ledgerview/internal/intelligence/domain"
	"github.com/smallbiznis/ledgerview/internal/invoice"
	invoicedomain "github.com/smallbiznis/ledgerview/internal/invoice/domain"
	"github.com/smallbiznis/ledgerview/internal/observability"
	obslogger "github.com/smallbiznis/ledgerview/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/ledgerview/internal/observability/metrics"
	obstracing "github.com/smallbiznis/ledgerview/internal/observability/tracing"
	"github.com/smallbiznis/ledgerview/internal/organization"
	organizationdomain "github.com/smallbiznis/ledgerview/internal/organization/domain"
	"github.com/smallbiznis/ledgerview/internal/providers/pdf"
	"github.com/smallbiznis/ledgerview/internal/ratelimit"
	"github.com/smallbiznis/ledgerview/internal/snapshot"
	snapshotdomain "github.com/smallbiznis/ledgerview/internal/snapshot/domain"
	"github.com/smallbiznis/ledgerview/internal/support"
	supportdomain "github.com/smallbiznis/ledgerview/internal/support/domain"
	"github.com/smallbiznis/ledgerview/internal/transaction"
	transactiondomain "github.com/smallbiznis/ledgerview/internal/transaction/domain"
	"github.com/smallbiznis/ledgerview/internal/upload"
	uploaddomain "github.com/smallbiznis/ledgerview/internal/upload/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
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
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	sessions        *session.Manager
	authSvc         authdomain.Service
	authzSvc        authorization.Service
	auditSvc        auditdomain.Service
	organizationSvc organizationdomain.Service
	entitlementSvc  entitlementdomain.Service
	accountSvc      accountdomain.Service
	transactionSvc  transactiondomain.Service
	snapshotSvc     snapshotdomain.Service
	exportSvc       exportdomain.Service
	uploadSvc       uploaddomain.Service
	intelligenceSvc intelligencedomain.Service
	invoiceSvc      invoicedomain.Service
	alertSvc        alertdomain.Service
	supportSvc      supportdomain.Service
	pdfProvider     pdf.Provider
	obsMetrics      *obsmetrics.Metrics
	limiter         *ratelimit.APILimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Sessions        *session.Manager
	AuthSvc         authdomain.Service
	AuthzSvc        authorization.Service
	AuditSvc        auditdomain.Service
	OrganizationSvc organizationdomain.Service
	EntitlementSvc  entitlementdomain.Service
	AccountSvc      accountdomain.Service
	TransactionSvc  transactiondomain.Service
	SnapshotSvc     snapshotdomain.Service
	ExportSvc       exportdomain.Service
	UploadSvc       uploaddomain.Service
	IntelligenceSvc intelligencedomain.Service
	InvoiceSvc      invoicedomain.Service
	AlertSvc        alertdomain.Service
	SupportSvc      supportdomain.Service
	PDFProvider     pdf.Provider
	ObsMetrics      *obsmetrics.Metrics   `optional:"true"`
	Limiter         *ratelimit.APILimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		sessions:        p.Sessions,
		authSvc:         p.AuthSvc,
		authzSvc:        p.AuthzSvc,
		auditSvc:        p.AuditSvc,
		organizationSvc: p.OrganizationSvc,
		entitlementSvc:  p.EntitlementSvc,
		accountSvc:      p.AccountSvc,
		transactionSvc:  p.TransactionSvc,
		snapshotSvc:     p.SnapshotSvc,
		exportSvc:       p.ExportSvc,
		uploadSvc:       p.UploadSvc,
		intelligenceSvc: p.IntelligenceSvc,
		invoiceSvc:      p.InvoiceSvc,
		alertSvc:        p.AlertSvc,
		supportSvc:      p.SupportSvc,
		pdfProvider:     p.PDFProvider,
		obsMetrics:      p.ObsMetrics,
		limiter:         p.Limiter,
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	group := s.engine.Group("/auth")

	group.POST("/login", s.Login)
	group.POST("/logout", s.Logout)
	group.GET("/me", s.AuthRequired(), s.Me)
	group.GET("/user/orgs", s.AuthRequired(), s.ListUserOrgs)
}

// registerAPIRoutes mounts the dashboard API. Routes the frontend resolves
// through the operation registry are mounted from that same table.
func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("")
	api.Use(s.AuthRequired())
	api.Use(s.OrgContext())

	// -------- Snapshot --------
	api.GET(endpoints.MustPath(endpoints.FinancialSnapshot), s.authorizeOrgAction(authorization.ObjectSnapshot, authorization.ActionSnapshotView), s.GetSnapshot)
	api.GET("/api/snapshot/statement", s.authorizeOrgAction(authorization.ObjectSnapshot, authorization.ActionSnapshotView), s.DownloadStatement)

	// -------- Accounts --------
	api.GET("/api/accounts", s.authorizeOrgAction(authorization.ObjectAccount, authorization.ActionAccountView), s.ListAccounts)
	api.POST("/api/accounts", s.authorizeOrgAction(authorization.ObjectAccount, authorization.ActionAccountCreate), s.CreateAccount)
	api.GET("/api/accounts/:id", s.authorizeOrgAction(authorization.ObjectAccount, authorization.ActionAccountView), s.GetAccountByID)
	api.POST("/api/accounts/:id/archive", s.authorizeOrgAction(authorization.ObjectAccount, authorization.ActionAccountArchive), s.ArchiveAccount)

	// -------- Transactions --------
	api.GET(endpoints.MustPath(endpoints.TransactionList), s.authorizeOrgAction(authorization.ObjectTransaction, authorization.ActionTransactionView), s.ListTransactions)
	api.POST("/api/transactions", s.authorizeOrgAction(authorization.ObjectTransaction, authorization.ActionTransactionIngest), s.IngestTransaction)
	api.GET("/api/transactions/:id", s.authorizeOrgAction(authorization.ObjectTransaction, authorization.ActionTransactionView), s.GetTransactionByID)

	api.GET(endpoints.MustPath(endpoints.TransactionExportCSV),
		s.authorizeOrgAction(authorization.ObjectExport, authorization.ActionExportRun),
		s.ExportRateLimit(),
		s.ExportTransactionsCSV,
	)

	// -------- Uploads --------
	api.POST(endpoints.MustPath(endpoints.FileUpload), s.authorizeOrgAction(authorization.ObjectUpload, authorization.ActionUploadCreate), s.CreateUpload)
	api.GET("/api/uploads", s.authorizeOrgAction(authorization.ObjectUpload, authorization.ActionUploadView), s.ListUploads)
	api.GET("/api/uploads/:id/download", s.authorizeOrgAction(authorization.ObjectUpload, authorization.ActionUploadView), s.DownloadUpload)

	// -------- Intelligence (GovCon gated) --------
	intel := api.Group("",
		s.RequireGovCon(),
		s.authorizeOrgAction(authorization.ObjectIntelligence, authorization.ActionIntelligenceQuery),
		s.IntelligenceRateLimit(),
	)
	intel.POST(endpoints.MustPath(endpoints.IntelligenceQuery), s.IntelligenceQuery)
	intel.GET(endpoints.MustPath(endpoints.IntelligenceInsights), s.IntelligenceInsights)
	intel.GET(endpoints.MustPath(endpoints.IntelligenceForecast), s.IntelligenceForecast)

	// -------- Invoices --------
	api.GET("/api/invoices", s.authorizeOrgAction(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.ListInvoices)
	api.POST("/api/invoices", s.authorizeOrgAction(authorization.ObjectInvoice, authorization.ActionInvoiceCreate), s.CreateInvoice)
	api.GET("/api/invoices/:id", s.authorizeOrgAction(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.GetInvoiceByID)
	api.GET("/api/invoices/:id/render", s.authorizeOrgAction(authorization.ObjectInvoice, authorization.ActionInvoiceView), s.RenderInvoice)
	api.POST("/api/invoices/:id/pay", s.authorizeOrgAction(authorization.ObjectInvoice, authorization.ActionInvoicePay), s.MarkInvoicePaid)
	api.POST("/api/invoices/:id/void", s.authorizeOrgAction(authorization.ObjectInvoice, authorization.ActionInvoiceVoid), s.VoidInvoice)

	// -------- Alerts --------
	api.GET("/api/alerts/rules", s.authorizeOrgAction(authorization.ObjectAlert, authorization.ActionAlertView), s.ListAlertRules)
	api.POST("/api/alerts/rules", s.authorizeOrgAction(authorization.ObjectAlert, authorization.ActionAlertManage), s.CreateAlertRule)
	api.PATCH("/api/alerts/rules/:id", s.authorizeOrgAction(authorization.ObjectAlert, authorization.ActionAlertManage), s.UpdateAlertRule)
	api.DELETE("/api/alerts/rules/:id", s.authorizeOrgAction(authorization.ObjectAlert, authorization.ActionAlertManage), s.DeleteAlertRule)
	api.GET("/api/alerts/events", s.authorizeOrgAction(authorization.ObjectAlert, authorization.ActionAlertView), s.ListAlertEvents)

	// -------- Support --------
	api.GET("/api/support/tickets", s.authorizeOrgAction(authorization.ObjectSupport, authorization.ActionSupportView), s.ListSupportTickets)
	api.POST("/api/support/tickets", s.authorizeOrgAction(authorization.ObjectSupport, authorization.ActionSupportCreate), s.CreateSupportTicket)
	api.POST("/api/support/tickets/:id/close", s.authorizeOrgAction(authorization.ObjectSupport, authorization.ActionSupportClose), s.CloseSupportTicket)

	// -------- Entitlements --------
	api.GET("/api/entitlement", s.authorizeOrgAction(authorization.ObjectEntitlement, authorization.ActionEntitlementView), s.GetEntitlement)
	api.PUT("/api/entitlement", s.authorizeOrgAction(authorization.ObjectEntitlement, authorization.ActionEntitlementManage), s.PutEntitlement)

	// -------- Audit Logs --------
	api.GET("/api/audit-logs", s.authorizeOrgAction(authorization.ObjectAuditLog, authorization.ActionAuditLogView), s.ListAuditLogs)
}
