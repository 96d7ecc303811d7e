package specification

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category dimensions stored as real columns on content_records. Everything
// else lives in the categories JSONB map.
var categoryColumns = map[string]string{
	"content_type": "content_type",
	"topic":        "topic",
	"geo_focus":    "geo_focus",
	"domain":       "domain",
}

// ColumnForCategory resolves a category dimension to its SQL expression.
func ColumnForCategory(field string) (expr string, isColumn bool) {
	if col, ok := categoryColumns[field]; ok {
		return col, true
	}
	return "categories ->> '" + sanitizeJSONKey(field) + "'", false
}

// sanitizeJSONKey keeps JSONB key interpolation safe; category names are
// lowercase identifiers in practice.
func sanitizeJSONKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return -1
	}, key)
}

// ByTenant scopes a query to one tenant. Every catalog query carries it.
type ByTenant struct {
	TenantId uuid.UUID
}

func (s ByTenant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tenant_id = ?", s.TenantId)
}

// CategoryIn keeps records whose category dimension matches any given value.
type CategoryIn struct {
	Field  string
	Values []string
}

func (s CategoryIn) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Values) == 0 {
		return db
	}
	expr, _ := ColumnForCategory(s.Field)
	return db.Where(fmt.Sprintf("%s IN ?", expr), s.Values)
}

// CategoryNotIn excludes records whose category dimension matches any given
// value. Records without the dimension at all are kept.
type CategoryNotIn struct {
	Field  string
	Values []string
}

func (s CategoryNotIn) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Values) == 0 {
		return db
	}
	expr, _ := ColumnForCategory(s.Field)
	return db.Where(fmt.Sprintf("(%s IS NULL OR %s NOT IN ?)", expr, expr), s.Values)
}

// MarketingOnly keeps records flagged as marketing content.
type MarketingOnly struct{}

func (s MarketingOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_marketing_content = ?", true)
}

// CreatedBetween bounds created_at. Zero bounds are open.
type CreatedBetween struct {
	From time.Time
	To   time.Time
}

func (s CreatedBetween) Apply(db *gorm.DB) *gorm.DB {
	if !s.From.IsZero() {
		db = db.Where("created_at >= ?", s.From)
	}
	if !s.To.IsZero() {
		db = db.Where("created_at <= ?", s.To)
	}
	return db
}

// TermsMatch does a keyword OR-match across the text columns. Used by the
// structured channel when an intent carries semantic terms but the vector
// channel is unavailable.
type TermsMatch struct {
	Terms []string
}

func (s TermsMatch) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Terms) == 0 {
		return db
	}
	var clauses []string
	var args []interface{}
	for _, term := range s.Terms {
		pattern := "%" + term + "%"
		clauses = append(clauses, "(title ILIKE ? OR summary ILIKE ? OR description ILIKE ? OR topic ILIKE ?)")
		args = append(args, pattern, pattern, pattern, pattern)
	}
	return db.Where(strings.Join(clauses, " OR "), args...)
}
