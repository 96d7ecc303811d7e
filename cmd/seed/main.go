package main

import (
	"log"
	"os"
	"time"

	"content-advisor-be/internal/model"
	"content-advisor-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
)

// Demo tenant used across the seed set and the simulation client.
const demoTenantId = "5b1f0f2e-9c1a-4d68-8a54-3f9b2a7c41d0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	tenantId := uuid.MustParse(demoTenantId)

	color.Cyan("🌱 Seeding content catalog for tenant %s\n", tenantId)

	records := demoRecords(tenantId)
	created := 0
	for _, record := range records {
		var count int64
		db.Model(&model.ContentRecord{}).
			Where("tenant_id = ? AND title = ?", tenantId, record.Title).
			Count(&count)
		if count > 0 {
			color.Yellow("skip (exists): %s", record.Title)
			continue
		}
		if err := db.Create(&record).Error; err != nil {
			color.Red("failed: %s: %v", record.Title, err)
			continue
		}
		color.Green("created: %s", record.Title)
		created++
	}

	color.Cyan("\n✅ Done. %d/%d records created.", created, len(records))
	color.White("Run the API and re-save records (PUT /api/content/v1/:id) to build embeddings,")
	color.White("or create fresh ones through POST /api/content/v1 so the consumer indexes them.")
}

func demoRecords(tenantId uuid.UUID) []model.ContentRecord {
	published := func(daysAgo int) *time.Time {
		t := time.Now().AddDate(0, 0, -daysAgo)
		return &t
	}

	return []model.ContentRecord{
		{
			TenantId:    tenantId,
			Title:       "The Complete Guide to B2B Demand Generation",
			Url:         "https://demo.example.com/blog/b2b-demand-generation-guide",
			Path:        "/blog/b2b-demand-generation-guide",
			Domain:      "demo.example.com",
			Summary:     "A long-form guide covering demand generation strategy, channel mix, and measurement for B2B marketing teams.",
			ContentType: "guide",
			Topic:       "demand generation",
			GeoFocus:    "North America",
			Categories: datatypes.JSONMap{
				"industry":         "saas",
				"primary_audience": "marketing leaders",
				"page_type":        "blog",
				"funnel_stage":     "awareness",
			},
			IsMarketingContent: true,
			WordCount:          4200,
			PublishedAt:        published(40),
		},
		{
			TenantId:    tenantId,
			Title:       "Case Study: How Acme Cut Onboarding Time by 60%",
			Url:         "https://demo.example.com/customers/acme-onboarding",
			Path:        "/customers/acme-onboarding",
			Domain:      "demo.example.com",
			Summary:     "Customer story showing measurable onboarding improvements after adopting the platform.",
			ContentType: "case study",
			Topic:       "customer onboarding",
			GeoFocus:    "Europe",
			Categories: datatypes.JSONMap{
				"industry":         "fintech",
				"primary_audience": "operations managers",
				"page_type":        "customer story",
				"funnel_stage":     "decision",
			},
			IsMarketingContent: true,
			WordCount:          1600,
			PublishedAt:        published(25),
		},
		{
			TenantId:    tenantId,
			Title:       "Webinar: Scaling Content Operations with AI",
			Url:         "https://demo.example.com/webinars/scaling-content-ops",
			Path:        "/webinars/scaling-content-ops",
			Domain:      "demo.example.com",
			Summary:     "Recorded webinar on building an AI-assisted content production workflow.",
			ContentType: "webinar",
			Topic:       "content operations",
			GeoFocus:    "Global",
			Categories: datatypes.JSONMap{
				"industry":         "saas",
				"primary_audience": "content teams",
				"page_type":        "webinar",
				"funnel_stage":     "consideration",
			},
			IsMarketingContent: true,
			WordCount:          900,
			PublishedAt:        published(12),
		},
		{
			TenantId:    tenantId,
			Title:       "Pricing Page Teardown: What Converts in 2026",
			Url:         "https://demo.example.com/blog/pricing-page-teardown",
			Path:        "/blog/pricing-page-teardown",
			Domain:      "demo.example.com",
			Summary:     "Analysis of high-converting pricing pages with annotated examples.",
			ContentType: "blog post",
			Topic:       "conversion optimization",
			GeoFocus:    "North America",
			Categories: datatypes.JSONMap{
				"industry":         "ecommerce",
				"primary_audience": "growth marketers",
				"page_type":        "blog",
				"funnel_stage":     "decision",
			},
			IsMarketingContent: true,
			WordCount:          2100,
			PublishedAt:        published(7),
		},
		{
			TenantId:    tenantId,
			Title:       "Engineering Changelog: March Release",
			Url:         "https://demo.example.com/changelog/march",
			Path:        "/changelog/march",
			Domain:      "demo.example.com",
			Summary:     "Monthly engineering release notes.",
			ContentType: "changelog",
			Topic:       "product updates",
			GeoFocus:    "Global",
			Categories: datatypes.JSONMap{
				"page_type": "changelog",
			},
			IsMarketingContent: false,
			WordCount:          500,
			PublishedAt:        published(3),
		},
	}
}
