package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	supportdomain "github.com/smallbiznis/ledgerview/internal/support/domain"
)

func (s *Server) ListSupportTickets(c *gin.Context) {
	status := supportdomain.TicketStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))
	tickets, err := s.supportSvc.List(c.Request.Context(), status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

func (s *Server) CreateSupportTicket(c *gin.Context) {
	var req supportdomain.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ticket, err := s.supportSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (s *Server) CloseSupportTicket(c *gin.Context) {
	id, err := parseSnowflakeParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ticket, err := s.supportSvc.Close(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
