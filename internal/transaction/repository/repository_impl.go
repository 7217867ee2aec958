package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/ledgerview/internal/transaction/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO transactions (
			id, org_id, account_id, posted_at, amount, currency, merchant,
			category, memo, pending, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.OrgID,
		txn.AccountID,
		txn.PostedAt,
		txn.Amount,
		txn.Currency,
		txn.Merchant,
		txn.Category,
		txn.Memo,
		txn.Pending,
		txn.CreatedAt,
		txn.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Transaction, error) {
	var t domain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, account_id, posted_at, amount, currency, merchant,
		        category, memo, pending, created_at, updated_at
		 FROM transactions WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID int64, filter domain.Filter, limit int, afterID int64) ([]domain.Transaction, error) {
	var items []domain.Transaction
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Transaction{}).Where("org_id = ?", orgID), filter)

	if afterID > 0 {
		stmt = stmt.Where("id < ?", afterID)
	}
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	if err := stmt.Order("posted_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ForEach(ctx context.Context, db *gorm.DB, orgID int64, filter domain.Filter, fn func(*domain.Transaction) error) error {
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Transaction{}).Where("org_id = ?", orgID), filter)

	rows, err := stmt.Order("posted_at ASC, id ASC").Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Transaction
		if err := db.ScanRows(rows, &t); err != nil {
			return err
		}
		if err := fn(&t); err != nil {
			return err
		}
	}
	return rows.Err()
}

func applyFilter(stmt *gorm.DB, filter domain.Filter) *gorm.DB {
	if filter.AccountID != nil {
		stmt = stmt.Where("account_id = ?", *filter.AccountID)
	}
	if filter.From != nil {
		stmt = stmt.Where("posted_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("posted_at < ?", *filter.To)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		stmt = stmt.Where("category = ?", category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		stmt = stmt.Where("merchant LIKE ? OR memo LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if filter.Pending != nil {
		stmt = stmt.Where("pending = ?", *filter.Pending)
	}
	return stmt
}
