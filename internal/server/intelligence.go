package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	intelligencedomain "github.com/smallbiznis/ledgerview/internal/intelligence/domain"
)

func (s *Server) IntelligenceQuery(c *gin.Context) {
	var req intelligencedomain.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.intelligenceSvc.Query(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) IntelligenceInsights(c *gin.Context) {
	insights, err := s.intelligenceSvc.Insights(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

func (s *Server) IntelligenceForecast(c *gin.Context) {
	horizon := 0
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		horizon = parsed
	}

	forecast, err := s.intelligenceSvc.Forecast(c.Request.Context(), horizon)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}
