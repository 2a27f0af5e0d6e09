package recipe

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Category is the kind of dish a recipe belongs to.
type Category string

const (
	Starter   Category = "Starter"
	Main      Category = "Main"
	Dessert   Category = "Dessert"
	Appetizer Category = "Appetizer"
)

// Categories returns the recognised categories in display order.
func Categories() []Category {
	return []Category{Starter, Main, Dessert, Appetizer}
}

// ParseCategory matches s against the known categories, ignoring case.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Recipe represents a stored recipe.
type Recipe struct {
	ID           int64    `json:"id" db:"id"`
	Name         string   `json:"name" db:"name" validate:"required"`
	Category     Category `json:"category" db:"category" validate:"required,oneof=Starter Main Dessert Appetizer"`
	Ingredients  string   `json:"ingredients" db:"ingredients"` // legacy free-text summary
	Instructions string   `json:"instructions" db:"instructions" validate:"required"`
	Duration     string   `json:"duration" db:"duration"`
	Servings     int      `json:"servings" db:"servings" validate:"min=1"`
	AveragePrice float64  `json:"average_price" db:"average_price" validate:"min=0"`
}

// Ingredient is one line of a recipe's ingredient list: a catalog
// ingredient name plus a free-form quantity such as "250g" or "a pinch".
type Ingredient struct {
	Name     string `json:"name" db:"name" validate:"required"`
	Quantity string `json:"quantity" db:"quantity" validate:"required"`
}

// Draft is a recipe being edited together with its provisional ingredient
// list. Nothing in a draft is persisted until it is saved as a whole.
type Draft struct {
	Recipe
	IngredientList []Ingredient `json:"ingredient_list" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Normalize trims text fields and applies defaults.
func (d *Draft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Instructions = strings.TrimSpace(d.Instructions)
	d.Duration = strings.TrimSpace(d.Duration)
	if c, err := ParseCategory(string(d.Category)); err == nil {
		d.Category = c
	}
	if d.Servings == 0 {
		d.Servings = 1
	}
	for i := range d.IngredientList {
		d.IngredientList[i].Name = strings.TrimSpace(d.IngredientList[i].Name)
		d.IngredientList[i].Quantity = strings.TrimSpace(d.IngredientList[i].Quantity)
	}
}

// Validate reports whether the draft may be persisted. The returned error
// is a validator.ValidationErrors when a field rule fails.
func (d *Draft) Validate() error {
	return validate.Struct(d)
}
