package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentRecord struct {
	Id                 uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId           uuid.UUID         `gorm:"type:uuid;not null;index"`
	Title              string            `gorm:"type:varchar(512);not null"`
	Url                string            `gorm:"type:varchar(2048)"`
	Path               string            `gorm:"type:varchar(1024)"`
	Domain             string            `gorm:"type:varchar(255);index"`
	Summary            string            `gorm:"type:text"`
	Description        string            `gorm:"type:text"`
	ContentType        string            `gorm:"type:varchar(128);index"`
	Topic              string            `gorm:"type:varchar(255);index"`
	GeoFocus           string            `gorm:"type:varchar(128)"`
	Categories         datatypes.JSONMap `gorm:"type:jsonb"`
	IsMarketingContent bool              `gorm:"default:false;index"`
	WordCount          int               `gorm:"default:0"`
	PublishedAt        *time.Time
	CreatedAt          time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (ContentRecord) TableName() string {
	return "content_records"
}
