package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	entitlementdomain "github.com/smallbiznis/ledgerview/internal/entitlement/domain"
)

func (s *Server) GetEntitlement(c *gin.Context) {
	resp, err := s.entitlementSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) PutEntitlement(c *gin.Context) {
	var record entitlementdomain.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.entitlementSvc.Put(c.Request.Context(), record)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
