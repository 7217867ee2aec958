package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Upload struct {
	ID          snowflake.ID `json:"id,string" gorm:"primaryKey"`
	OrgID       snowflake.ID `json:"org_id,string" gorm:"column:org_id;index"`
	Filename    string       `json:"filename"`
	StoredName  string       `json:"-" gorm:"uniqueIndex"`
	ContentType string       `json:"content_type"`
	Size        int64        `json:"size"`
	Checksum    string       `json:"checksum"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (Upload) TableName() string { return "uploads" }
