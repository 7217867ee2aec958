package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/ledgerview/internal/invoice/format"
	"github.com/smallbiznis/ledgerview/internal/providers/pdf"
)

func (s *Server) GetSnapshot(c *gin.Context) {
	snap, err := s.snapshotSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DownloadStatement renders the current snapshot as a PDF statement.
func (s *Server) DownloadStatement(c *gin.Context) {
	snap, err := s.snapshotSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := pdf.StatementData{
		OrgName:      s.cfg.AppName,
		AsOf:         snap.AsOf.Format("2006-01-02 15:04 MST"),
		TotalBalance: format.FormatMinor(snap.TotalBalance, "USD"),
		Inflow:       format.FormatMinor(snap.Inflow, "USD"),
		Outflow:      format.FormatMinor(snap.Outflow, "USD"),
		Transactions: snap.Transactions,
		Pending:      snap.Pending,
	}
	for _, b := range snap.Balances {
		data.Balances = append(data.Balances, pdf.StatementBalance{
			AccountType: b.AccountType,
			Accounts:    b.Accounts,
			Balance:     format.FormatMinor(b.Balance, "USD"),
		})
	}

	doc, err := s.pdfProvider.GenerateStatement(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("statement-%s.pdf", snap.AsOf.Format("20060102"))
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, doc); err != nil {
		_ = c.Error(err)
	}
}
