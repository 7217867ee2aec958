package server

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/ledgerview/internal/authorization"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
)

// authorizeOrgAction enforces RBAC for the org and user already resolved
// by AuthRequired and OrgContext.
func (s *Server) authorizeOrgAction(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := s.userID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
		if !ok || orgID == 0 {
			AbortWithError(c, ErrForbidden)
			return
		}

		actor := "user:" + userID.String()
		err := s.authzSvc.Authorize(c.Request.Context(), actor, orgID.String(), strings.TrimSpace(object), strings.TrimSpace(action))
		if err != nil {
			if errors.Is(err, authorization.ErrForbidden) {
				AbortWithError(c, ErrForbidden)
				return
			}
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
