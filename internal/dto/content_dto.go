package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateContentRecordRequest struct {
	Title              string            `json:"title" validate:"required,max=512"`
	Url                string            `json:"url" validate:"omitempty,url,max=2048"`
	Path               string            `json:"path" validate:"max=1024"`
	Domain             string            `json:"domain" validate:"max=255"`
	Summary            string            `json:"summary"`
	Description        string            `json:"description"`
	ContentType        string            `json:"contentType" validate:"max=128"`
	Topic              string            `json:"topic" validate:"max=255"`
	GeoFocus           string            `json:"geoFocus" validate:"max=128"`
	Categories         map[string]string `json:"categories"`
	IsMarketingContent bool              `json:"isMarketingContent"`
	WordCount          int               `json:"wordCount" validate:"gte=0"`
	PublishedAt        *time.Time        `json:"publishedAt"`
}

type UpdateContentRecordRequest struct {
	Id uuid.UUID `json:"-"`
	CreateContentRecordRequest
}

type ContentRecordResponse struct {
	Id                 uuid.UUID         `json:"id"`
	Title              string            `json:"title"`
	Url                string            `json:"url,omitempty"`
	ContentType        string            `json:"contentType,omitempty"`
	Topic              string            `json:"topic,omitempty"`
	GeoFocus           string            `json:"geoFocus,omitempty"`
	Categories         map[string]string `json:"categories,omitempty"`
	IsMarketingContent bool              `json:"isMarketingContent"`
	WordCount          int               `json:"wordCount,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
}

type ListContentRecordsRequest struct {
	Skip  int `query:"skip" validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

type ListContentRecordsResponse struct {
	Data       []ContentRecordResponse `json:"data"`
	TotalCount int64                   `json:"totalCount"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"totalPages"`
}

// PublishEmbedRecordMessage is the watermill payload that schedules
// (re-)embedding of one content record.
type PublishEmbedRecordMessage struct {
	RecordId uuid.UUID `json:"recordId"`
}
