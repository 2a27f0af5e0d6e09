package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"recipebook/internal/recipe"
)

// RecipeStore defines the recipe data operations the handlers need.
type RecipeStore interface {
	AllRecipes(ctx context.Context) ([]recipe.Recipe, error)
	Recipe(ctx context.Context, id int64) (*recipe.Recipe, error)
	IngredientsFor(ctx context.Context, recipeID int64) ([]recipe.Ingredient, error)
	CreateRecipe(ctx context.Context, d recipe.Draft) (int64, error)
	ReplaceRecipe(ctx context.Context, d recipe.Draft) error
	RemoveRecipe(ctx context.Context, id int64) error
}

const storeTimeout = 5 * time.Second

// Handler handles HTTP requests.
type Handler struct {
	RecipeStore RecipeStore
	log         *zap.Logger
}

// NewHandler creates a new Handler. A nil log discards output.
func NewHandler(recipeStore RecipeStore, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{RecipeStore: recipeStore, log: log}
}

// RecipeDetail is a recipe with its ingredient list.
type RecipeDetail struct {
	recipe.Recipe
	IngredientList []recipe.Ingredient `json:"ingredient_list"`
}

// ScaledIngredients is the ingredient list rendered for a serving count.
type ScaledIngredients struct {
	RecipeID         int64    `json:"recipe_id"`
	OriginalServings int      `json:"original_servings"`
	Servings         int      `json:"servings"`
	Lines            []string `json:"lines"`
}

// Routes registers the handler's endpoints on r.
func (h *Handler) Routes(r gin.IRoutes) {
	r.GET("/categories", h.GetCategories)
	r.GET("/recipes", h.GetRecipes)
	r.POST("/recipes", h.CreateRecipe)
	r.GET("/recipes/:id", h.GetRecipe)
	r.PUT("/recipes/:id", h.UpdateRecipe)
	r.DELETE("/recipes/:id", h.DeleteRecipe)
	r.GET("/recipes/:id/scaled", h.GetScaledIngredients)
}

// GetCategories lists the recipe categories.
func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, recipe.Categories())
}

// GetRecipes lists recipes, optionally filtered by q under mode and sorted.
func (h *Handler) GetRecipes(c *gin.Context) {
	mode, err := recipe.ParseSearchMode(c.Query("mode"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	key, err := recipe.ParseSortKey(c.Query("sort"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	recipes, err := h.RecipeStore.AllRecipes(ctx)
	if err != nil {
		h.storeError(c, err)
		return
	}

	recipes, err = recipe.Filter(ctx, recipes, c.Query("q"), mode, h.RecipeStore.IngredientsFor)
	if err != nil {
		if errors.Is(err, recipe.ErrLookupFailed) && !errors.Is(err, context.DeadlineExceeded) {
			h.log.Error("recipe filter failed", zap.Error(err))
			c.String(http.StatusBadGateway, err.Error())
			return
		}
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe.Sort(recipes, key))
}

// GetRecipe returns a single recipe with its ingredients.
func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	r, err := h.RecipeStore.Recipe(ctx, id)
	if err != nil {
		h.storeError(c, err)
		return
	}
	ings, err := h.RecipeStore.IngredientsFor(ctx, id)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, RecipeDetail{Recipe: *r, IngredientList: ings})
}

// GetScaledIngredients renders a recipe's ingredients for the servings
// query parameter, defaulting to the recipe's own serving count. An
// optional step adjusts that count the way the +/- buttons do.
func (h *Handler) GetScaledIngredients(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	r, err := h.RecipeStore.Recipe(ctx, id)
	if err != nil {
		h.storeError(c, err)
		return
	}

	servings := r.Servings
	if s, set := c.GetQuery("servings"); set {
		servings, err = recipe.ParseServings(s)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
	}
	if s, set := c.GetQuery("step"); set {
		delta, err := strconv.Atoi(s)
		if err != nil {
			c.String(http.StatusBadRequest, fmt.Sprintf("invalid step: %q", s))
			return
		}
		servings = recipe.StepServings(servings, delta)
	}

	ings, err := h.RecipeStore.IngredientsFor(ctx, id)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ScaledIngredients{
		RecipeID:         id,
		OriginalServings: r.Servings,
		Servings:         servings,
		Lines:            recipe.Scale(ings, r.Servings, servings),
	})
}

// CreateRecipe saves a new recipe with its ingredient list.
func (h *Handler) CreateRecipe(c *gin.Context) {
	d, ok := bindDraft(c)
	if !ok {
		return
	}
	d.ID = 0

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	id, err := h.RecipeStore.CreateRecipe(ctx, d)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdateRecipe replaces a recipe and its ingredient list.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	d, ok := bindDraft(c)
	if !ok {
		return
	}
	d.ID = id

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	if err := h.RecipeStore.ReplaceRecipe(ctx, d); err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// DeleteRecipe removes a recipe and its ingredient links.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	if err := h.RecipeStore.RemoveRecipe(ctx, id); err != nil {
		h.storeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recipe.ErrNotFound):
		c.String(http.StatusNotFound, "Recipe not found")
	case errors.Is(err, context.DeadlineExceeded):
		c.String(http.StatusRequestTimeout, "Database query timed out after 5 seconds")
	default:
		h.log.Error("database error", zap.Error(err), zap.String("path", c.FullPath()))
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
	}
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid recipe id: %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func bindDraft(c *gin.Context) (recipe.Draft, bool) {
	var d recipe.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid recipe: %s", err.Error()))
		return d, false
	}
	d.Normalize()
	if err := d.Validate(); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Required fields are missing or invalid", "fields": fields})
			return d, false
		}
		c.String(http.StatusBadRequest, err.Error())
		return d, false
	}
	return d, true
}
