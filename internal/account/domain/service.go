package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	GetByID(ctx context.Context, id string) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)
}

type ListRequest struct {
	Type   *AccountType
	Active *bool
}

type CreateRequest struct {
	Name        string      `json:"name"`
	Institution string      `json:"institution"`
	Mask        string      `json:"mask"`
	Type        AccountType `json:"account_type"`
	Currency    string      `json:"currency"`
}

type Response struct {
	ID               string      `json:"id"`
	OrganizationID   string      `json:"organization_id"`
	Name             string      `json:"name"`
	Institution      string      `json:"institution"`
	Mask             string      `json:"mask"`
	Type             AccountType `json:"account_type"`
	Currency         string      `json:"currency"`
	CurrentBalance   int64       `json:"current_balance"`
	AvailableBalance int64       `json:"available_balance"`
	Active           bool        `json:"active"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidInstitution  = errors.New("invalid_institution")
	ErrInvalidType         = errors.New("invalid_account_type")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
