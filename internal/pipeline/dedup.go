package pipeline

import (
	"strings"
)

// MergedConcept is the canonical record for one normalized term.
type MergedConcept struct {
	Term        string   // display casing from the first occurrence
	Definition  string   // longest definition seen
	Example     string   // first non-empty example
	Pages       []int    // distinct pages, first-seen order
	DocumentIDs []string // distinct contributing documents, first-seen order
	Occurrences int
}

// NormalizeTerm is the merge key: case-folded and trimmed.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Deduplicate merges candidates sharing a normalized term. The longest
// definition wins; equal lengths keep the earlier one, so the result
// is deterministic for a given input order. Pages and document
// associations accumulate as sets rather than being overwritten.
// Output order is first-seen order of the normalized terms.
func Deduplicate(candidates []Candidate) []MergedConcept {
	merged := make(map[string]*MergedConcept, len(candidates))
	order := make([]string, 0, len(candidates))

	for _, c := range candidates {
		key := NormalizeTerm(c.Term)
		if key == "" {
			continue
		}

		existing, ok := merged[key]
		if !ok {
			merged[key] = &MergedConcept{
				Term:        strings.TrimSpace(c.Term),
				Definition:  c.Definition,
				Example:     c.Example,
				Pages:       appendUniqueInt(nil, c.PageNumber),
				DocumentIDs: appendUniqueString(nil, c.DocumentID),
				Occurrences: 1,
			}
			order = append(order, key)
			continue
		}

		existing.Occurrences++
		if len(c.Definition) > len(existing.Definition) {
			existing.Definition = c.Definition
		}
		if existing.Example == "" {
			existing.Example = c.Example
		}
		existing.Pages = appendUniqueInt(existing.Pages, c.PageNumber)
		existing.DocumentIDs = appendUniqueString(existing.DocumentIDs, c.DocumentID)
	}

	result := make([]MergedConcept, 0, len(order))
	for _, key := range order {
		result = append(result, *merged[key])
	}
	return result
}

func appendUniqueInt(values []int, v int) []int {
	if v <= 0 {
		return values
	}
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}

func appendUniqueString(values []string, v string) []string {
	if v == "" {
		return values
	}
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
