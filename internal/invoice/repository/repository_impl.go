package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerview/internal/invoice/domain"
)

type invoiceRepository struct{}

func Provide() domain.Repository {
	return &invoiceRepository{}
}

func (r *invoiceRepository) Create(ctx context.Context, db *gorm.DB, inv *domain.Invoice, items []domain.InvoiceItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
INSERT INTO invoices (id, org_id, number, customer_name, customer_email, status, total_amount, currency, issued_at, due_at, metadata, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, inv.ID, inv.OrgID, inv.Number, inv.CustomerName, inv.CustomerEmail, inv.Status, inv.TotalAmount, inv.Currency, inv.IssuedAt, inv.DueAt, inv.Metadata, inv.CreatedAt, inv.UpdatedAt).Error; err != nil {
			return err
		}
		for i := range items {
			item := items[i]
			if err := tx.Exec(`
INSERT INTO invoice_items (id, org_id, invoice_id, description, quantity, unit_amount, amount, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, item.ID, item.OrgID, item.InvoiceID, item.Description, item.Quantity, item.UnitAmount, item.Amount, item.CreatedAt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *invoiceRepository) Find(ctx context.Context, db *gorm.DB, orgID snowflake.ID, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	query := `SELECT * FROM invoices WHERE org_id = ?`
	args := []any{orgID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var invoices []domain.Invoice
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).Raw(`
SELECT * FROM invoices WHERE org_id = ? AND id = ?
`, orgID, id).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) FindItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	if err := db.WithContext(ctx).Raw(`
SELECT * FROM invoice_items WHERE invoice_id = ? ORDER BY id
`, invoiceID).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Exec(`
UPDATE invoices SET status = ?, paid_at = ?, updated_at = ? WHERE id = ?
`, inv.Status, inv.PaidAt, inv.UpdatedAt, inv.ID).Error
}

func (r *invoiceRepository) NextSequence(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(`
SELECT COUNT(*) FROM invoices WHERE org_id = ?
`, orgID).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count + 1, nil
}
