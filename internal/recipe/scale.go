package recipe

import (
	"fmt"
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Ratio returns target/original. An original count of zero or less is
// treated as one so the ratio is always defined.
func Ratio(originalServings, targetServings int) float64 {
	if originalServings <= 0 {
		originalServings = 1
	}
	return float64(targetServings) / float64(originalServings)
}

// ScaleQuantity multiplies the leading integer of quantity by ratio and
// keeps the rest of the string verbatim. "250g" at ratio 2 becomes "500g".
// Any Unicode decimal digit counts, so "٣ eggs" at ratio 2 becomes "6 eggs".
// A quantity without leading digits, or whose digits do not fit an int, is
// returned unchanged. Rounding is half away from zero.
func ScaleQuantity(quantity string, ratio float64) string {
	val, n, ok := leadingInt(quantity)
	if !ok {
		return quantity
	}
	return formatRounded(float64(val)*ratio) + quantity[n:]
}

// leadingInt parses the run of decimal digits at the start of s and returns
// its value and byte length.
func leadingInt(s string) (val, n int, ok bool) {
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !unicode.IsDigit(r) {
			break
		}
		d := digitValue(r)
		if val > (math.MaxInt-d)/10 {
			return 0, 0, false
		}
		val = val*10 + d
		n += size
	}
	return val, n, n > 0
}

// digitValue returns the value of a decimal digit rune. Unicode lays out
// every decimal digit set as a contiguous 0-9 run.
func digitValue(r rune) int {
	zero := r
	for unicode.IsDigit(zero - 1) {
		zero--
	}
	return int(r-zero) % 10
}

func formatRounded(x float64) string {
	x = math.Round(x)
	if math.Abs(x) < 1<<63 {
		return strconv.FormatInt(int64(x), 10)
	}
	return strconv.FormatFloat(x, 'f', 0, 64)
}

// Scale renders the ingredient list for targetServings people, one
// "- name : quantity" line per ingredient in input order. Quantities are
// always computed from originalServings, never from a previously scaled
// value. targetServings is not clamped.
func Scale(ingredients []Ingredient, originalServings, targetServings int) []string {
	ratio := Ratio(originalServings, targetServings)

	lines := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		lines = append(lines, fmt.Sprintf("- %s : %s", ing.Name, ScaleQuantity(ing.Quantity, ratio)))
	}
	return lines
}
