package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

type Ticket struct {
	ID        snowflake.ID `json:"id,string" gorm:"primaryKey"`
	OrgID     snowflake.ID `json:"org_id,string" gorm:"column:org_id;index"`
	Subject   string       `json:"subject"`
	Body      string       `json:"body"`
	Requester string       `json:"requester"`
	Status    TicketStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	ClosedAt  *time.Time   `json:"closed_at,omitempty"`
}

func (Ticket) TableName() string { return "support_tickets" }
