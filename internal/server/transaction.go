package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	transactiondomain "github.com/smallbiznis/ledgerview/internal/transaction/domain"
)

func (s *Server) ListTransactions(c *gin.Context) {
	req, err := transactionListRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.transactionSvc.List(c.Request.Context(), *req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) IngestTransaction(c *gin.Context) {
	var req transactiondomain.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	txn, err := s.transactionSvc.Ingest(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (s *Server) GetTransactionByID(c *gin.Context) {
	txn, err := s.transactionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func transactionListRequest(c *gin.Context) (*transactiondomain.ListRequest, error) {
	req := transactiondomain.ListRequest{
		AccountID: strings.TrimSpace(c.Query("account_id")),
		Category:  strings.TrimSpace(c.Query("category")),
		Search:    strings.TrimSpace(c.Query("q")),
		PageToken: strings.TrimSpace(c.Query("page_token")),
	}

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, invalidRequestError()
		}
		req.From = &t
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, invalidRequestError()
		}
		req.To = &t
	}
	if raw := strings.TrimSpace(c.Query("pending")); raw != "" {
		pending := raw == "true" || raw == "1"
		req.Pending = &pending
	}
	if raw := strings.TrimSpace(c.Query("page_size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			return nil, invalidRequestError()
		}
		req.PageSize = size
	}

	return &req, nil
}
