package recipe

import (
	"fmt"
	"strconv"
	"strings"
)

// MinServings is the smallest serving count a recipe can be shown for.
const MinServings = 1

// ParseServings parses a serving count typed by the user.
func ParseServings(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidServings, s)
	}
	if n < MinServings {
		return 0, fmt.Errorf("%w: %d is below %d", ErrInvalidServings, n, MinServings)
	}
	return n, nil
}

// StepServings applies delta to n. A step that would go below MinServings
// leaves n unchanged.
func StepServings(n, delta int) int {
	if n+delta < MinServings {
		return n
	}
	return n + delta
}
