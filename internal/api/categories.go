package api

import (
	"fmt"
	"sort"
	"strings"

	"challenge-stake-go/internal/store"
)

// Categories is the allow-list for challenge categories. An empty set allows any.
type Categories map[string]struct{}

func NewCategories(names []string) Categories {
	c := make(Categories, len(names))
	for _, n := range names {
		if n = normalizeCategory(n); n != "" {
			c[n] = struct{}{}
		}
	}
	return c
}

// Resolve returns the normalized category or ErrInvalidInput.
func (c Categories) Resolve(category string) (string, error) {
	normalized := normalizeCategory(category)
	if len(c) == 0 {
		return normalized, nil
	}
	if _, ok := c[normalized]; !ok {
		return "", fmt.Errorf("%w: unknown category %q (allowed: %s)", store.ErrInvalidInput, category, strings.Join(c.Names(), ", "))
	}
	return normalized, nil
}

func (c Categories) Names() []string {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
