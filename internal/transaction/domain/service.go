package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Ingest(ctx context.Context, req IngestRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	// Export streams every transaction matching the filter to fn.
	Export(ctx context.Context, req ListRequest, fn func(Response) error) error
}

type IngestRequest struct {
	AccountID string    `json:"account_id"`
	PostedAt  time.Time `json:"posted_at"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Merchant  string    `json:"merchant"`
	Category  string    `json:"category"`
	Memo      string    `json:"memo"`
	Pending   bool      `json:"pending"`
}

type ListRequest struct {
	AccountID string
	From      *time.Time
	To        *time.Time
	Category  string
	Search    string
	Pending   *bool
	PageSize  int
	PageToken string
}

type Response struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	AccountID      string    `json:"account_id"`
	PostedAt       time.Time `json:"posted_at"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Merchant       string    `json:"merchant"`
	Category       string    `json:"category"`
	Memo           string    `json:"memo"`
	Pending        bool      `json:"pending"`
}

type ListResponse struct {
	Transactions  []Response `json:"transactions"`
	NextPageToken string     `json:"next_page_token,omitempty"`
	HasMore       bool       `json:"has_more"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidAccountID    = errors.New("invalid_account_id")
	ErrInvalidMerchant     = errors.New("invalid_merchant")
	ErrInvalidPostedAt     = errors.New("invalid_posted_at")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
	ErrNotFound            = errors.New("not_found")
)
