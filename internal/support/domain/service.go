package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateTicketRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

type Service interface {
	Create(ctx context.Context, req CreateTicketRequest) (*Ticket, error)
	List(ctx context.Context, status TicketStatus) ([]Ticket, error)
	Close(ctx context.Context, id snowflake.ID) (*Ticket, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidSubject      = errors.New("invalid_subject")
	ErrTicketNotFound      = errors.New("ticket_not_found")
	ErrTicketClosed        = errors.New("ticket_already_closed")
)
