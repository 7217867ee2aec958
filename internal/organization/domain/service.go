package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrOrganizationNotFound = errors.New("organization_not_found")
	ErrNotAMember           = errors.New("not_a_member")
	ErrInvalidRole          = errors.New("invalid_role")
)

// Service exposes organization and membership lookups.
type Service interface {
	Get(ctx context.Context, id snowflake.ID) (*Organization, error)
	ListForUser(ctx context.Context, userID snowflake.ID) ([]Organization, error)
	RoleOf(ctx context.Context, orgID, userID snowflake.ID) (Role, error)
	AddMember(ctx context.Context, orgID, userID snowflake.ID, role Role) (*OrganizationMember, error)
}
