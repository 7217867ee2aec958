package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	exportdomain "github.com/smallbiznis/ledgerview/internal/export/domain"
)

// ExportTransactionsCSV renders the filtered transaction set as a CSV
// download. The document is rendered in full before any byte reaches the
// client, so a failed export is a clean error response and never a
// truncated file.
func (s *Server) ExportTransactionsCSV(c *gin.Context) {
	req := exportdomain.Request{
		AccountID: strings.TrimSpace(c.Query("account_id")),
		Category:  strings.TrimSpace(c.Query("category")),
	}
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		req.From = &t
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		req.To = &t
	}

	var buf bytes.Buffer
	result, err := s.exportSvc.WriteCSV(c.Request.Context(), req, &buf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Content-Length", strconv.FormatInt(int64(buf.Len()), 10))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
