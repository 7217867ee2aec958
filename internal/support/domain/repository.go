package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, ticket *Ticket) error
	Find(ctx context.Context, orgID snowflake.ID, status TicketStatus) ([]Ticket, error)
	FindByID(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (*Ticket, error)
	Update(ctx context.Context, ticket *Ticket) error
}
