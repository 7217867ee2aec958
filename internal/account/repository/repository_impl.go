package repository

import (
	"context"

	"github.com/smallbiznis/ledgerview/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO accounts (
			id, org_id, name, institution, mask, account_type, currency,
			current_balance, available_balance, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.OrgID,
		account.Name,
		account.Institution,
		account.Mask,
		account.Type,
		account.Currency,
		account.CurrentBalance,
		account.AvailableBalance,
		account.Active,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Account, error) {
	var a domain.Account
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, institution, mask, account_type, currency,
		        current_balance, available_balance, active, created_at, updated_at
		 FROM accounts WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&a).Error
	if err != nil {
		return nil, err
	}
	if a.ID == 0 {
		return nil, nil
	}
	return &a, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID int64, filter domain.ListRequest) ([]domain.Account, error) {
	var items []domain.Account
	stmt := db.WithContext(ctx).
		Model(&domain.Account{}).
		Where("org_id = ?", orgID)

	if filter.Type != nil {
		stmt = stmt.Where("account_type = ?", *filter.Type)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}

	if err := stmt.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Exec(
		`UPDATE accounts SET name = ?, institution = ?, mask = ?, account_type = ?,
		        currency = ?, current_balance = ?, available_balance = ?, active = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		account.Name,
		account.Institution,
		account.Mask,
		account.Type,
		account.Currency,
		account.CurrentBalance,
		account.AvailableBalance,
		account.Active,
		account.UpdatedAt,
		account.OrgID,
		account.ID,
	).Error
}
