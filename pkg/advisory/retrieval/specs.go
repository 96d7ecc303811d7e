package retrieval

import (
	"content-advisor-be/internal/repository/specification"
	"content-advisor-be/pkg/store"

	"github.com/google/uuid"
)

// SpecsForIntent translates a structured intent into catalog query
// specifications. Shared with the distribution aggregation path.
func SpecsForIntent(tenantId uuid.UUID, intent *store.StructuredIntent) []specification.Specification {
	specs := []specification.Specification{
		specification.ByTenant{TenantId: tenantId},
	}

	if intent.MarketingOnly {
		specs = append(specs, specification.MarketingOnly{})
	}
	if !intent.TimeRange.IsZero() {
		specs = append(specs, specification.CreatedBetween{
			From: intent.TimeRange.From,
			To:   intent.TimeRange.To,
		})
	}

	for field, filter := range intent.Filters {
		include, exclude := filter.Include, filter.Exclude
		if intent.IsNegation {
			// "what do I NOT have about X" inverts the include side
			include, exclude = nil, append(exclude, include...)
		}
		if len(include) > 0 {
			specs = append(specs, specification.CategoryIn{Field: field, Values: include})
		}
		if len(exclude) > 0 {
			specs = append(specs, specification.CategoryNotIn{Field: field, Values: exclude})
		}
	}

	if intent.Operation == store.OpSemantic && len(intent.SemanticTerms) > 0 {
		specs = append(specs, specification.TermsMatch{Terms: intent.SemanticTerms})
	}

	return specs
}
