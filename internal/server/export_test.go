package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	exportdomain "github.com/smallbiznis/ledgerview/internal/export/domain"
	"github.com/stretchr/testify/assert"
)

type stubExportService struct {
	csv string
	err error
}

func (s *stubExportService) WriteCSV(ctx context.Context, req exportdomain.Request, w io.Writer) (*exportdomain.Result, error) {
	if s.err != nil {
		// A failing render may have already emitted partial output.
		_, _ = io.WriteString(w, "date,description\n2026-01-")
		return nil, s.err
	}
	n, err := io.WriteString(w, s.csv)
	if err != nil {
		return nil, err
	}
	return &exportdomain.Result{Filename: "transactions-20260829.csv", Rows: 2, Bytes: int64(n)}, nil
}

func exportEngine(svc exportdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := &Server{exportSvc: svc}

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.GET("/api/export/transactions.csv", s.ExportTransactionsCSV)
	return r
}

func TestExportTransactionsCSV(t *testing.T) {
	csv := "date,description,amount\n2026-01-02,Coffee,-450\n2026-01-03,Payroll,250000\n"
	r := exportEngine(&stubExportService{csv: csv})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/transactions.csv", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, csv, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="transactions-20260829.csv"`, w.Header().Get("Content-Disposition"))
}

func TestExportTransactionsCSVFailureLeaksNothing(t *testing.T) {
	r := exportEngine(&stubExportService{err: errors.New("export failed")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/transactions.csv", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "date,description")
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.JSONEq(t, `{"error": {"type": "internal_error", "message": "internal server error"}}`, w.Body.String())
}

func TestExportTransactionsCSVRejectsBadRange(t *testing.T) {
	r := exportEngine(&stubExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/export/transactions.csv?from=yesterday", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
