package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/ledgerview/internal/audit/domain"
)

//go:embed model.conf
var modelText string

const (
	ObjectSnapshot     = "snapshot"
	ObjectAccount      = "account"
	ObjectTransaction  = "transaction"
	ObjectExport       = "export"
	ObjectUpload       = "upload"
	ObjectInvoice      = "invoice"
	ObjectAlert        = "alert"
	ObjectSupport      = "support"
	ObjectIntelligence = "intelligence"
	ObjectEntitlement  = "entitlement"
	ObjectAuditLog     = "audit_log"
)

const (
	ActionSnapshotView = "snapshot.view"

	ActionAccountView    = "account.view"
	ActionAccountCreate  = "account.create"
	ActionAccountArchive = "account.archive"

	ActionTransactionView   = "transaction.view"
	ActionTransactionIngest = "transaction.ingest"

	ActionExportRun = "export.run"

	ActionUploadView   = "upload.view"
	ActionUploadCreate = "upload.create"

	ActionInvoiceView   = "invoice.view"
	ActionInvoiceCreate = "invoice.create"
	ActionInvoicePay    = "invoice.pay"
	ActionInvoiceVoid   = "invoice.void"

	ActionAlertView   = "alert.view"
	ActionAlertManage = "alert.manage"

	ActionSupportView   = "support.view"
	ActionSupportCreate = "support.create"
	ActionSupportClose  = "support.close"

	ActionIntelligenceQuery = "intelligence.query"

	ActionEntitlementView   = "entitlement.view"
	ActionEntitlementManage = "entitlement.manage"

	ActionAuditLogView = "audit_log.view"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, orgID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return ErrInvalidOrganization
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, actorType, actorID, err := s.resolveActor(ctx, actor, orgID)
	if err != nil {
		s.audit(ctx, "authorization.denied", actorType, actorID, orgID, object, action)
		return err
	}

	domain := fmt.Sprintf("org:%s", orgID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.audit(ctx, "authorization.denied", actorType, actorID, orgID, object, action)
		return ErrForbidden
	}

	if shouldAuditGrant(action) {
		s.audit(ctx, "authorization.granted", actorType, actorID, orgID, object, action)
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, orgID string) (string, string, string, *string, error) {
	if actor == "system" || actor == "scheduler" {
		return actor, "role:system", actor, nil, nil
	}
	if strings.HasPrefix(actor, "user:") {
		userIDRaw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(userIDRaw)
		if err != nil || userID == 0 {
			return "", "", "", nil, ErrInvalidActor
		}
		userIDStr := userID.String()
		parsedOrgID, err := snowflake.ParseString(orgID)
		if err != nil || parsedOrgID == 0 {
			return actor, "", "user", &userIDStr, ErrInvalidOrganization
		}
		role, err := s.roleForUser(ctx, parsedOrgID, userID)
		if err != nil {
			return actor, "", "user", &userIDStr, err
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), "user", &userIDStr, nil
	}
	return "", "", "", nil, ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, orgID snowflake.ID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM organization_members
		 WHERE org_id = ? AND user_id = ?
		 LIMIT 1`,
		orgID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func (s *ServiceImpl) audit(ctx context.Context, auditAction string, actorType string, actorID *string, orgID string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	parsedOrgID, err := snowflake.ParseString(orgID)
	if err != nil || parsedOrgID == 0 {
		return
	}
	targetID := "capability"
	_ = s.auditSvc.AuditLog(ctx, &parsedOrgID, actorType, actorID, auditAction, "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
		"org_id": orgID,
	})
}

func shouldAuditGrant(action string) bool {
	switch action {
	case ActionInvoiceVoid, ActionEntitlementManage, ActionExportRun:
		return true
	default:
		return false
	}
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Member permissions (read-mostly)
		{"role:member", ObjectSnapshot, ActionSnapshotView},
		{"role:member", ObjectAccount, ActionAccountView},
		{"role:member", ObjectTransaction, ActionTransactionView},
		{"role:member", ObjectExport, ActionExportRun},
		{"role:member", ObjectUpload, ActionUploadView},
		{"role:member", ObjectUpload, ActionUploadCreate},
		{"role:member", ObjectInvoice, ActionInvoiceView},
		{"role:member", ObjectAlert, ActionAlertView},
		{"role:member", ObjectSupport, ActionSupportView},
		{"role:member", ObjectSupport, ActionSupportCreate},
		{"role:member", ObjectIntelligence, ActionIntelligenceQuery},
		{"role:member", ObjectEntitlement, ActionEntitlementView},

		// Admin permissions
		{"role:admin", ObjectSnapshot, ActionSnapshotView},
		{"role:admin", ObjectAccount, ActionAccountView},
		{"role:admin", ObjectAccount, ActionAccountCreate},
		{"role:admin", ObjectAccount, ActionAccountArchive},
		{"role:admin", ObjectTransaction, ActionTransactionView},
		{"role:admin", ObjectTransaction, ActionTransactionIngest},
		{"role:admin", ObjectExport, ActionExportRun},
		{"role:admin", ObjectUpload, ActionUploadView},
		{"role:admin", ObjectUpload, ActionUploadCreate},
		{"role:admin", ObjectInvoice, ActionInvoiceView},
		{"role:admin", ObjectInvoice, ActionInvoiceCreate},
		{"role:admin", ObjectInvoice, ActionInvoicePay},
		{"role:admin", ObjectAlert, ActionAlertView},
		{"role:admin", ObjectAlert, ActionAlertManage},
		{"role:admin", ObjectSupport, ActionSupportView},
		{"role:admin", ObjectSupport, ActionSupportCreate},
		{"role:admin", ObjectSupport, ActionSupportClose},
		{"role:admin", ObjectIntelligence, ActionIntelligenceQuery},
		{"role:admin", ObjectEntitlement, ActionEntitlementView},
		{"role:admin", ObjectAuditLog, ActionAuditLogView},

		// Owner permissions
		{"role:owner", ObjectSnapshot, ActionSnapshotView},
		{"role:owner", ObjectAccount, ActionAccountView},
		{"role:owner", ObjectAccount, ActionAccountCreate},
		{"role:owner", ObjectAccount, ActionAccountArchive},
		{"role:owner", ObjectTransaction, ActionTransactionView},
		{"role:owner", ObjectTransaction, ActionTransactionIngest},
		{"role:owner", ObjectExport, ActionExportRun},
		{"role:owner", ObjectUpload, ActionUploadView},
		{"role:owner", ObjectUpload, ActionUploadCreate},
		{"role:owner", ObjectInvoice, ActionInvoiceView},
		{"role:owner", ObjectInvoice, ActionInvoiceCreate},
		{"role:owner", ObjectInvoice, ActionInvoicePay},
		{"role:owner", ObjectInvoice, ActionInvoiceVoid},
		{"role:owner", ObjectAlert, ActionAlertView},
		{"role:owner", ObjectAlert, ActionAlertManage},
		{"role:owner", ObjectSupport, ActionSupportView},
		{"role:owner", ObjectSupport, ActionSupportCreate},
		{"role:owner", ObjectSupport, ActionSupportClose},
		{"role:owner", ObjectIntelligence, ActionIntelligenceQuery},
		{"role:owner", ObjectEntitlement, ActionEntitlementView},
		{"role:owner", ObjectEntitlement, ActionEntitlementManage},
		{"role:owner", ObjectAuditLog, ActionAuditLogView},

		// System permissions (scheduler and internal jobs)
		{"role:system", ObjectAlert, ActionAlertView},
		{"role:system", ObjectAlert, ActionAlertManage},
		{"role:system", ObjectTransaction, ActionTransactionIngest},
		{"role:system", ObjectEntitlement, ActionEntitlementManage},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
