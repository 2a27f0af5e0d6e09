package recipe

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey names the attribute recipes are ordered by.
type SortKey string

const (
	SortNone     SortKey = ""
	SortName     SortKey = "name"
	SortCategory SortKey = "category"
)

// ParseSortKey accepts "", "name" or "category".
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortName, SortCategory:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, s)
}

// Sort orders recipes by key without touching the input slice. SortNone
// returns recipes as is.
func Sort(recipes []Recipe, key SortKey) []Recipe {
	switch key {
	case SortName:
		return SortByName(recipes)
	case SortCategory:
		return SortByCategory(recipes)
	}
	return recipes
}

// SortByName returns a copy of recipes ordered by name, ignoring case.
// Recipes with equal names keep their relative order.
func SortByName(recipes []Recipe) []Recipe {
	return sortedBy(recipes, func(r Recipe) string { return r.Name })
}

// SortByCategory returns a copy of recipes ordered by category, ignoring
// case. Recipes in the same category keep their relative order.
func SortByCategory(recipes []Recipe) []Recipe {
	return sortedBy(recipes, func(r Recipe) string { return string(r.Category) })
}

func sortedBy(recipes []Recipe, field func(Recipe) string) []Recipe {
	out := make([]Recipe, len(recipes))
	copy(out, recipes)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(field(out[i])) < strings.ToLower(field(out[j]))
	})
	return out
}
