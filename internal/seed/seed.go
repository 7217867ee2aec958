// Package seed provisions the default organization and admin user when the
// server boots in single-tenant mode.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/ledgerview/internal/account/domain"
	authdomain "github.com/smallbiznis/ledgerview/internal/auth/domain"
	"github.com/smallbiznis/ledgerview/internal/auth/password"
	organizationdomain "github.com/smallbiznis/ledgerview/internal/organization/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName       = "Main"
	defaultOrgSlug       = "main"
	defaultAdminEmail    = "admin@ledgerview.local"
	defaultAdminPassword = "admin"
	defaultAdminDisplay  = "LedgerView Admin"
)

// EnsureMainOrg seeds the default organization for startup bootstrap.
func EnsureMainOrg(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureMainOrgTx(ctx, tx, node)
		if err != nil {
			return err
		}
		return ensureDemoAccounts(ctx, tx, node, org.ID)
	})
}

// EnsureMainOrgAndAdmin seeds the default organization and admin user for
// OSS mode. The admin password is a placeholder and must be rotated on
// first login in anything but a local deployment.
func EnsureMainOrgAndAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureMainOrgTx(ctx, tx, node)
		if err != nil {
			return err
		}

		var user authdomain.User
		err = tx.WithContext(ctx).
			Where("email = ?", strings.ToLower(defaultAdminEmail)).
			First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			hashed, err := password.Hash(defaultAdminPassword)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			user = authdomain.User{
				ID:           node.Generate(),
				Email:        strings.ToLower(defaultAdminEmail),
				DisplayName:  defaultAdminDisplay,
				PasswordHash: &hashed,
				IsDefault:    true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
				return err
			}
		}

		var member organizationdomain.OrganizationMember
		err = tx.WithContext(ctx).
			Where("org_id = ? AND user_id = ?", org.ID, user.ID).
			First(&member).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			member = organizationdomain.OrganizationMember{
				ID:        node.Generate(),
				OrgID:     org.ID,
				UserID:    user.ID,
				Role:      organizationdomain.RoleOwner,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.WithContext(ctx).Create(&member).Error; err != nil {
				return err
			}
		}

		return ensureDemoAccounts(ctx, tx, node, org.ID)
	})
}

func ensureMainOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (organizationdomain.Organization, error) {
	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", defaultOrgSlug).First(&org).Error
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return org, err
	}
	now := time.Now().UTC()
	org = organizationdomain.Organization{
		ID:        node.Generate(),
		Name:      defaultOrgName,
		Slug:      defaultOrgSlug,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return org, err
	}
	return org, nil
}

// ensureDemoAccounts gives a fresh install something to render on the
// dashboard before any real accounts are linked.
func ensureDemoAccounts(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&accountdomain.Account{}).
		Where("org_id = ?", orgID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	accounts := []accountdomain.Account{
		{
			ID:               node.Generate(),
			OrgID:            orgID,
			Name:             "Operating Checking",
			Institution:      "First Demo Bank",
			Mask:             "0001",
			Type:             accountdomain.AccountTypeChecking,
			Currency:         "USD",
			CurrentBalance:   1250000,
			AvailableBalance: 1250000,
			Active:           true,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		{
			ID:               node.Generate(),
			OrgID:            orgID,
			Name:             "Reserve Savings",
			Institution:      "First Demo Bank",
			Mask:             "0002",
			Type:             accountdomain.AccountTypeSavings,
			Currency:         "USD",
			CurrentBalance:   5000000,
			AvailableBalance: 5000000,
			Active:           true,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
	}
	for i := range accounts {
		if err := tx.WithContext(ctx).Create(&accounts[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
