package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerview/internal/support/domain"
)

type ticketRepository struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return r.db.WithContext(ctx).Exec(`
INSERT INTO support_tickets (id, org_id, subject, body, requester, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, ticket.ID, ticket.OrgID, ticket.Subject, ticket.Body, ticket.Requester, ticket.Status, ticket.CreatedAt, ticket.UpdatedAt).Error
}

func (r *ticketRepository) Find(ctx context.Context, orgID snowflake.ID, status domain.TicketStatus) ([]domain.Ticket, error) {
	query := `SELECT * FROM support_tickets WHERE org_id = ?`
	args := []any{orgID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var tickets []domain.Ticket
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) FindByID(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.db.WithContext(ctx).Raw(`
SELECT * FROM support_tickets WHERE org_id = ? AND id = ?
`, orgID, id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE support_tickets SET status = ?, updated_at = ?, closed_at = ? WHERE id = ?
`, ticket.Status, ticket.UpdatedAt, ticket.ClosedAt, ticket.ID).Error
}
