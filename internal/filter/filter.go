// Package filter implements the search/category filter shared by every view.
package filter

import (
	"strings"

	"github.com/david/becas-dashboard/internal/models"
)

// Records returns the records that satisfy both constraints, in their original order.
//
// A non-empty category, whitespace included, keeps records whose
// categoryField equals it ignoring ASCII case. A term that is non-empty after trimming keeps records where at
// least one of searchFields contains it, again ignoring ASCII case. Missing
// values compare as the empty string. The input slice is never modified.
func Records[T models.Record](records []T, term, category, categoryField string, searchFields []string) []T {
	needle := foldASCII(strings.TrimSpace(term))

	out := make([]T, 0, len(records))
	for _, r := range records {
		if category != "" && !EqualFold(r.Field(categoryField), category) {
			continue
		}
		if needle != "" && !matchesAny(r, needle, searchFields) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesAny(r models.Record, needle string, fields []string) bool {
	for _, f := range fields {
		if strings.Contains(foldASCII(r.Field(f)), needle) {
			return true
		}
	}
	return false
}

// foldASCII lower-cases A-Z only. Accented and other non-ASCII letters are left as is.
func foldASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// EqualFold reports whether a and b are equal ignoring ASCII case.
func EqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return foldASCII(a) == foldASCII(b)
}
