package catalog

import (
	"sort"
	"strings"
)

// Merge builds the unified collection: contributions first, in their stored
// newest-first order, then the catalog. Either side may be empty. Duplicate
// ids are kept.
func Merge(items, contributions []Product) []Product {
	out := make([]Product, 0, len(items)+len(contributions))
	out = append(out, contributions...)
	out = append(out, items...)
	return out
}

// Categories returns the distinct non-empty categories, sorted.
func Categories(items []Product) []string {
	seen := make(map[string]bool)
	var cats []string
	for _, p := range items {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		cats = append(cats, p.Category)
	}
	sort.Strings(cats)
	return cats
}

// Find returns the first item with the given id.
func Find(items []Product, id string) (Product, bool) {
	for _, p := range items {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// SplitList turns comma separated form text into trimmed, non-empty entries.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
