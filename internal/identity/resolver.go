// Package identity resolves the customer identifier attached to a booking. Upstream user
// profiles do not agree on a single id field, so the candidate fields are configured as an
// ordered list instead of being hardcoded.
package identity

import (
	"encoding/json"
	"strconv"
	"strings"
)

type Resolver struct {
	fields []string
}

func New(fields []string) *Resolver {
	return &Resolver{fields: append([]string(nil), fields...)}
}

func (r *Resolver) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Resolve walks sources in order and, within each source, the configured fields in order.
// The first non-empty value wins.
func (r *Resolver) Resolve(sources ...map[string]any) (string, bool) {
	for _, src := range sources {
		for _, field := range r.fields {
			if id := stringify(src[field]); id != "" {
				return id, true
			}
		}
	}

	return "", false
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}
