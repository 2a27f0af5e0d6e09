package recipe

import (
	"context"
	"fmt"
	"strings"
)

// SearchMode selects which recipe attribute a query is matched against.
type SearchMode int

const (
	ByName SearchMode = iota
	ByCategory
	ByIngredient
)

func (m SearchMode) String() string {
	switch m {
	case ByName:
		return "name"
	case ByCategory:
		return "category"
	case ByIngredient:
		return "ingredient"
	}
	return fmt.Sprintf("SearchMode(%d)", int(m))
}

// ParseSearchMode converts "name", "category" or "ingredient" to a
// SearchMode. An empty string selects ByName.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return ByName, nil
	case "category":
		return ByCategory, nil
	case "ingredient":
		return ByIngredient, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSearchMode, s)
}

// IngredientLookup returns the ingredient list of one recipe.
type IngredientLookup func(ctx context.Context, recipeID int64) ([]Ingredient, error)

// Filter returns the recipes matching query under mode, in input order.
// Matching is a case-insensitive substring test. An empty query returns
// recipes unchanged.
//
// In ByIngredient mode lookup is called once per recipe on every call and
// scanning stops at the first matching ingredient. A lookup failure aborts
// the filter with an error wrapping ErrLookupFailed, as does a nil lookup.
func Filter(ctx context.Context, recipes []Recipe, query string, mode SearchMode, lookup IngredientLookup) ([]Recipe, error) {
	if query == "" {
		return recipes, nil
	}
	if mode < ByName || mode > ByIngredient {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSearchMode, mode)
	}
	if mode == ByIngredient && lookup == nil {
		return nil, fmt.Errorf("%w: no ingredient lookup configured", ErrLookupFailed)
	}

	q := strings.ToLower(query)
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		var match bool
		switch mode {
		case ByName:
			match = strings.Contains(strings.ToLower(r.Name), q)
		case ByCategory:
			match = strings.Contains(strings.ToLower(string(r.Category)), q)
		case ByIngredient:
			ings, err := lookup(ctx, r.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: recipe %d: %w", ErrLookupFailed, r.ID, err)
			}
			for _, ing := range ings {
				if strings.Contains(strings.ToLower(ing.Name), q) {
					match = true
					break
				}
			}
		}
		if match {
			out = append(out, r)
		}
	}
	return out, nil
}
