package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContentRecord is one page/asset in a tenant's content library.
// Categories holds the flexible category dimensions (industry,
// primary_audience, page_type, funnel_stage, ...) as name -> value.
type ContentRecord struct {
	Id                 uuid.UUID
	TenantId           uuid.UUID
	Title              string
	Url                string
	Path               string
	Domain             string
	Summary            string
	Description        string
	ContentType        string
	Topic              string
	GeoFocus           string
	Categories         map[string]string
	IsMarketingContent bool
	WordCount          int
	PublishedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          *time.Time
	DeletedAt          *time.Time
	IsDeleted          bool
}

// Snippet returns the text that represents this record in prompts and
// embeddings: summary when present, otherwise description.
func (r *ContentRecord) Snippet() string {
	if r.Summary != "" {
		return r.Summary
	}
	return r.Description
}
