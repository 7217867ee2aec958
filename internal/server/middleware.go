package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/ledgerview/internal/audit/domain"
	obsContext "github.com/smallbiznis/ledgerview/internal/observability/context"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	"github.com/smallbiznis/ledgerview/internal/ratelimit"
)

const (
	HeaderOrg        = "X-Org-ID"
	contextUserIDKey = "user_id"
)

// AuthRequired resolves the session cookie to a user and stamps the actor
// on the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, _, err := s.authSvc.ResolveSession(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, user.ID.String())
		ctx := obsContext.WithActor(c.Request.Context(), string(auditdomain.ActorTypeUser), user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// OrgContext resolves the organization for the request, either from the
// X-Org-ID header or the user's first membership, verifies the caller is a
// member, and injects the org id into the request context.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := s.userID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()

		var orgID snowflake.ID
		if raw := strings.TrimSpace(c.GetHeader(HeaderOrg)); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed <= 0 {
				AbortWithError(c, invalidRequestError())
				return
			}
			orgID = snowflake.ID(parsed)
			if _, err := s.organizationSvc.RoleOf(ctx, orgID, userID); err != nil {
				AbortWithError(c, ErrForbidden)
				return
			}
		} else {
			orgs, err := s.organizationSvc.ListForUser(ctx, userID)
			if err != nil {
				AbortWithError(c, err)
				return
			}
			if len(orgs) == 0 {
				AbortWithError(c, ErrForbidden)
				return
			}
			orgID = orgs[0].ID
		}

		ctx = orgcontext.WithOrgID(ctx, int64(orgID))
		ctx = obsContext.WithOrgID(ctx, orgID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireGovCon blocks the request unless the GovCon feature set is
// unlocked for the org in context. The handler behind it is never invoked
// on a denial, so gated data cannot leak into a response.
func (s *Server) RequireGovCon() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		allowed, err := s.entitlementSvc.GovCon(ctx)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !allowed {
			if s.obsMetrics != nil {
				s.obsMetrics.RecordEntitlementDenied(ctx, obsContext.OrgIDFromContext(ctx), "govcon")
			}
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func (s *Server) ExportRateLimit() gin.HandlerFunc {
	return s.rateLimit("export", func(c *gin.Context, orgID string) (*ratelimit.Result, error) {
		return s.limiter.AllowExport(c.Request.Context(), orgID)
	})
}

func (s *Server) IntelligenceRateLimit() gin.HandlerFunc {
	return s.rateLimit("intelligence", func(c *gin.Context, orgID string) (*ratelimit.Result, error) {
		return s.limiter.AllowIntelligence(c.Request.Context(), orgID)
	})
}

func (s *Server) rateLimit(endpoint string, allow func(*gin.Context, string) (*ratelimit.Result, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || !s.limiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		orgID := obsContext.OrgIDFromContext(ctx)

		result, err := allow(c, orgID)
		if err != nil {
			// a Redis outage must not take the API down with it
			c.Next()
			return
		}
		if !result.Allowed {
			if s.obsMetrics != nil {
				s.obsMetrics.RecordRateLimitDenied(ctx, orgID, endpoint, "bucket_empty")
			}
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		if s.obsMetrics != nil {
			s.obsMetrics.RecordRateLimitAllowed(ctx, orgID, endpoint)
		}
		c.Next()
	}
}

func (s *Server) userID(c *gin.Context) (snowflake.ID, bool) {
	raw, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	str, ok := raw.(string)
	if !ok {
		return 0, false
	}
	parsed, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, false
	}
	return snowflake.ID(parsed), true
}
