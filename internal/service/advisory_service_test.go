package service

import (
	"strings"
	"testing"
	"time"

	"content-advisor-be/internal/entity"
	"content-advisor-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHydrateCitations(t *testing.T) {
	evidence := []store.EvidenceItem{
		{RecordID: "rec-1", Title: "Pricing Guide", URL: "https://x/pricing"},
		{RecordID: "rec-2", Title: "Case Study"},
	}

	citations := hydrateCitations([]store.EvidenceRef{
		{RecordID: "rec-2", Score: 0.82},
		{RecordID: "rec-1"},
		{RecordID: "rec-unknown"},
	}, evidence)

	assert.Len(t, citations, 3)
	assert.Equal(t, "Case Study", citations[0].Title)
	assert.Equal(t, float32(0.82), citations[0].Score)
	assert.Equal(t, "Pricing Guide", citations[1].Title)
	assert.Equal(t, "https://x/pricing", citations[1].Url)
	// Unknown ids still come back, just without hydrated fields
	assert.Equal(t, "rec-unknown", citations[2].RecordId)
	assert.Empty(t, citations[2].Title)
}

func TestBuildEmbedDocumentDeterministic(t *testing.T) {
	published := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	record := &entity.ContentRecord{
		Id:          uuid.New(),
		Title:       "Scaling Content Ops",
		Topic:       "content operations",
		ContentType: "webinar",
		Summary:     "How to scale production.",
		Categories: map[string]string{
			"industry":         "saas",
			"funnel_stage":     "consideration",
			"primary_audience": "content teams",
		},
		PublishedAt: &published,
	}

	one := buildEmbedDocument(record)
	two := buildEmbedDocument(record)
	assert.Equal(t, one, two, "map iteration must not leak into the document")

	assert.Contains(t, one, "Title: Scaling Content Ops")
	assert.Contains(t, one, "How to scale production.")
	assert.Contains(t, one, "funnel_stage: consideration")
	assert.Contains(t, one, "Published: 2026-05-01")

	// Category dimensions render sorted by name
	industryAt := strings.Index(one, "industry:")
	funnelAt := strings.Index(one, "funnel_stage:")
	audienceAt := strings.Index(one, "primary_audience:")
	assert.Less(t, funnelAt, industryAt)
	assert.Less(t, industryAt, audienceAt)
}

func TestBuildEmbedDocumentFallsBackToDescription(t *testing.T) {
	record := &entity.ContentRecord{
		Title:       "No Summary",
		Description: "description text only",
	}
	assert.Contains(t, buildEmbedDocument(record), "description text only")
}
