package domain

import (
	"context"
	"errors"
	"time"
)

// Service resolves and stores the entitlement record for the org in context.
type Service interface {
	Get(ctx context.Context) (*Response, error)
	Put(ctx context.Context, record Record) (*Response, error)
	// GovCon reports whether the GovCon feature set is unlocked for the org
	// in context. A missing record is not an error; it resolves to false.
	GovCon(ctx context.Context) (bool, error)
}

type Response struct {
	OrganizationID string         `json:"organization_id"`
	Record         map[string]any `json:"record"`
	GovCon         bool           `json:"govcon"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidRecord       = errors.New("invalid_record")
)
