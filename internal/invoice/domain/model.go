// Package domain contains persistence models for customer invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusOpen  InvoiceStatus = "OPEN"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
	InvoiceStatusVoid  InvoiceStatus = "VOID"
)

// Invoice is a receivable the organization issues to one of its customers.
type Invoice struct {
	ID            snowflake.ID      `gorm:"primaryKey"`
	OrgID         snowflake.ID      `gorm:"not null;index"`
	Number        string            `gorm:"type:text;not null;uniqueIndex:ux_invoices_org_number"`
	CustomerName  string            `gorm:"type:text;not null"`
	CustomerEmail string            `gorm:"type:text;not null;default:''"`
	Status        InvoiceStatus     `gorm:"type:text;not null;default:'DRAFT'"`
	TotalAmount   int64             `gorm:"not null;default:0"`
	Currency      string            `gorm:"type:text;not null"`
	IssuedAt      *time.Time        `gorm:""`
	DueAt         *time.Time        `gorm:""`
	PaidAt        *time.Time        `gorm:""`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Items []InvoiceItem `gorm:"-"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice.
type InvoiceItem struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	OrgID       snowflake.ID `gorm:"not null;index"`
	InvoiceID   snowflake.ID `gorm:"not null;index"`
	Description string       `gorm:"type:text"`
	Quantity    int64        `gorm:"not null"`
	UnitAmount  int64        `gorm:"not null"`
	Amount      int64        `gorm:"not null"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }
