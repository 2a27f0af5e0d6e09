package recipe

import "errors"

// Sentinel errors returned by the recipe package.
var (
	ErrNotFound          = errors.New("recipe not found")
	ErrLookupFailed      = errors.New("ingredient lookup failed")
	ErrInvalidSearchMode = errors.New("invalid search mode")
	ErrInvalidSortKey    = errors.New("invalid sort key")
	ErrInvalidServings   = errors.New("invalid serving count")
	ErrInvalidCategory   = errors.New("invalid category")
)
