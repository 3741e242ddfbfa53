package catalog

import (
	"fmt"
	"math"

	"github.com/neetkit/cardforge/internal/random"
)

// Fixed pools for URL-shaped fields.
var (
	urlSubdomains = []string{"www", "dev", "app", "secure"}
	urlDomains    = []string{"example.com", "test.org", "api.cloud"}
)

// FixedTimestamp is the instant every timestamp field resolves to. It is not
// derived from the wall clock.
const FixedTimestamp = "2025-07-05T12:00:00Z"

// Resolve produces the value for a rule, drawing from src as needed.
func (r Rule) Resolve(src *random.Source) any {
	switch r.Kind {
	case KindLiteral:
		return cloneValue(r.Value)
	case KindAddress:
		return fmt.Sprintf("%d.%d.%d.%d",
			src.IntRange(1, 254), src.IntRange(1, 254),
			src.IntRange(1, 254), src.IntRange(1, 254))
	case KindIdentifier:
		year := src.IntRange(2000, 2025)
		return fmt.Sprintf("CVE-%d-%d", year, src.IntRange(1000, 99999))
	case KindURL:
		sub, _ := random.Choose(src, urlSubdomains)
		domain, _ := random.Choose(src, urlDomains)
		return fmt.Sprintf("https://%s.%s/login", sub, domain)
	case KindMeasurement:
		return math.Round(src.FloatRange(0, 100)*100) / 100
	case KindTimestamp:
		return FixedTimestamp
	default:
		return fmt.Sprintf("dynamic_value_%d", src.IntRange(0, 100))
	}
}

// Populate resolves every field of t in declaration order.
func (t Template) Populate(src *random.Source) map[string]any {
	attributes := make(map[string]any, len(t.Fields))
	for _, field := range t.Fields {
		attributes[field.Name] = field.Rule.Resolve(src)
	}
	return attributes
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

// CloneAttributes deep-copies a resolved attribute map.
func CloneAttributes(attributes map[string]any) map[string]any {
	if attributes == nil {
		return nil
	}
	return cloneValue(attributes).(map[string]any)
}
