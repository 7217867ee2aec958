package domain

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
)

type LineRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required"`
	UnitAmount  int64  `json:"unit_amount"`
}

type CreateInvoiceRequest struct {
	CustomerName  string        `json:"customer_name" binding:"required"`
	CustomerEmail string        `json:"customer_email"`
	Currency      string        `json:"currency"`
	DueAt         *time.Time    `json:"due_at"`
	Lines         []LineRequest `json:"lines" binding:"required"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	List(ctx context.Context, status InvoiceStatus) ([]Invoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Invoice, error)
	MarkPaid(ctx context.Context, id snowflake.ID) (*Invoice, error)
	Void(ctx context.Context, id snowflake.ID) (*Invoice, error)

	// RenderPDF returns the invoice as a finished PDF document.
	RenderPDF(ctx context.Context, id snowflake.ID) (io.Reader, *Invoice, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidLines        = errors.New("invalid_lines")
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
)
