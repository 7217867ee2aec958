package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, upload *Upload) error
	Find(ctx context.Context, orgID snowflake.ID) ([]Upload, error)
	FindByID(ctx context.Context, orgID snowflake.ID, id snowflake.ID) (*Upload, error)
}
