package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebook/internal/api"
	"recipebook/internal/config"
	"recipebook/internal/recipe"
)

// mockRecipeStore is an in-memory RecipeStore.
type mockRecipeStore struct {
	recipes     map[int64]recipe.Recipe
	ingredients map[int64][]recipe.Ingredient
	nextID      int64
	lookupCalls int
	getError    error
	lookupError error
}

// NewMockRecipeStore creates a new mockRecipeStore.
func NewMockRecipeStore() *mockRecipeStore {
	return &mockRecipeStore{
		recipes:     make(map[int64]recipe.Recipe),
		ingredients: make(map[int64][]recipe.Ingredient),
		nextID:      1,
	}
}

func (m *mockRecipeStore) AllRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	out := make([]recipe.Recipe, 0, len(m.recipes))
	for _, r := range m.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRecipeStore) Recipe(ctx context.Context, id int64) (*recipe.Recipe, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	r, ok := m.recipes[id]
	if !ok {
		return nil, recipe.ErrNotFound
	}
	return &r, nil
}

func (m *mockRecipeStore) IngredientsFor(ctx context.Context, recipeID int64) ([]recipe.Ingredient, error) {
	m.lookupCalls++
	if m.lookupError != nil {
		return nil, m.lookupError
	}
	return m.ingredients[recipeID], nil
}

func (m *mockRecipeStore) CreateRecipe(ctx context.Context, d recipe.Draft) (int64, error) {
	r := d.Recipe
	r.ID = m.nextID
	m.nextID++
	m.recipes[r.ID] = r
	m.ingredients[r.ID] = d.IngredientList
	return r.ID, nil
}

func (m *mockRecipeStore) ReplaceRecipe(ctx context.Context, d recipe.Draft) error {
	if _, ok := m.recipes[d.ID]; !ok {
		return recipe.ErrNotFound
	}
	m.recipes[d.ID] = d.Recipe
	m.ingredients[d.ID] = d.IngredientList
	return nil
}

func (m *mockRecipeStore) RemoveRecipe(ctx context.Context, id int64) error {
	if _, ok := m.recipes[id]; !ok {
		return recipe.ErrNotFound
	}
	delete(m.ingredients, id)
	delete(m.recipes, id)
	return nil
}

func (m *mockRecipeStore) seed() {
	m.CreateRecipe(context.Background(), recipe.Draft{
		Recipe: recipe.Recipe{Name: "Soup", Category: recipe.Starter, Instructions: "Simmer", Servings: 2},
		IngredientList: []recipe.Ingredient{
			{Name: "Leek", Quantity: "2"},
			{Name: "Water", Quantity: "1L"},
		},
	})
	m.CreateRecipe(context.Background(), recipe.Draft{
		Recipe: recipe.Recipe{Name: "Chocolate Cake", Category: recipe.Dessert, Instructions: "Bake", Servings: 2},
		IngredientList: []recipe.Ingredient{
			{Name: "Flour", Quantity: "250g"},
			{Name: "Milk", Quantity: "1L"},
			{Name: "Salt", Quantity: "a pinch"},
		},
	})
}

func setupRouter(store *mockRecipeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := api.NewHandler(store, zap.NewNop())
	cfg := config.Default()
	return newRouter(handler, cfg, zap.NewNop())
}

func serve(r *gin.Engine, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeRecipes(t *testing.T, rr *httptest.ResponseRecorder) []recipe.Recipe {
	t.Helper()
	var recipes []recipe.Recipe
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recipes))
	return recipes
}

func TestGetRecipes(t *testing.T) {
	store := NewMockRecipeStore()
	store.seed()
	r := setupRouter(store)

	rr := serve(r, http.MethodGet, "/recipes", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	recipes := decodeRecipes(t, rr)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Soup", recipes[0].Name)
	assert.Equal(t, "Chocolate Cake", recipes[1].Name)
	assert.Zero(t, store.lookupCalls)
	assert.NotEmpty(t, rr.Header().Get(api.RequestIDHeader))
}

func TestGetRecipes_Search(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"by name", "/recipes?q=choc", []string{"Chocolate Cake"}},
		{"by category", "/recipes?q=des&mode=category", []string{"Chocolate Cake"}},
		{"by ingredient", "/recipes?q=MILK&mode=ingredient", []string{"Chocolate Cake"}},
		{"no match", "/recipes?q=butter&mode=ingredient", []string{}},
		{"water", "/recipes?q=wat&mode=ingredient", []string{"Soup"}},
		{"sorted", "/recipes?sort=name", []string{"Chocolate Cake", "Soup"}},
		{"sorted by category", "/recipes?sort=category", []string{"Chocolate Cake", "Soup"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMockRecipeStore()
			store.seed()
			r := setupRouter(store)

			rr := serve(r, http.MethodGet, tt.target, nil)

			require.Equal(t, http.StatusOK, rr.Code)
			names := []string{}
			for _, rec := range decodeRecipes(t, rr) {
				names = append(names, rec.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestGetRecipes_BadParams(t *testing.T) {
	store := NewMockRecipeStore()
	r := setupRouter(store)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/recipes?q=x&mode=colour", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/recipes?sort=price", nil).Code)
}

func TestGetRecipes_LookupFailed(t *testing.T) {
	store := NewMockRecipeStore()
	store.seed()
	store.lookupError = errors.New("connection reset")
	r := setupRouter(store)

	rr := serve(r, http.MethodGet, "/recipes?q=flour&mode=ingredient", nil)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "ingredient lookup failed")
}

func TestGetRecipes_LookupTimeout(t *testing.T) {
	store := NewMockRecipeStore()
	store.seed()
	store.lookupError = context.DeadlineExceeded
	r := setupRouter(store)

	rr := serve(r, http.MethodGet, "/recipes?q=flour&mode=ingredient", nil)

	assert.Equal(t, http.StatusRequestTimeout, rr.Code)
}

func TestGetRecipes_DatabaseError(t *testing.T) {
	store := NewMockRecipeStore()
	store.getError = errors.New("boom")
	r := setupRouter(store)

	rr := serve(r, http.MethodGet, "/recipes", nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "database error: boom", rr.Body.String())
}

func TestGetRecipes_Timeout(t *testing.T) {
	store := NewMockRecipeStore()
	store.getError = context.DeadlineExceeded
	r := setupRouter(store)

	rr := serve(r, http.MethodGet, "/recipes", nil)

	assert.Equal(t, http.StatusRequestTimeout, rr.Code)
}

func TestGetRecipe(t *testing.T) {
	store := NewMockRecipeStore()
	store.seed()
	r := setupRouter(store)

	rr := serve(r, http.MethodGet, "/recipes/2", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var detail api.RecipeDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, "Chocolate Cake", detail.Name)
	assert.Equal(t, recipe.Dessert, detail.Category)
	assert.Len(t, detail.IngredientList, 3)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/recipes/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/recipes/abc", nil).Code)
}

func TestGetScaledIngredients(t *testing.T) {
	store := NewMockRecipeStore()
	store.seed()
	r := setupRouter(store)

	rr := serve(r, http.MethodGet, "/recipes/2/scaled?servings=4", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var scaled api.ScaledIngredients
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scaled))
	assert.Equal(t, 2, scaled.OriginalServings)
	assert.Equal(t, 4, scaled.Servings)
	assert.Equal(t, []string{"- Flour : 500g", "- Milk : 2L", "- Salt : a pinch"}, scaled.Lines)
}

func TestGetScaledIngredients_DefaultServings(t *testing.T) {
	store := NewMockRecipeStore()
	store.seed()
	r := setupRouter(store)

	rr := serve(r, http.MethodGet, "/recipes/2/scaled", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var scaled api.ScaledIngredients
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scaled))
	assert.Equal(t, 2, scaled.Servings)
	assert.Equal(t, []string{"- Flour : 250g", "- Milk : 1L", "- Salt : a pinch"}, scaled.Lines)
}

func TestGetScaledIngredients_Step(t *testing.T) {
	store := NewMockRecipeStore()
	store.seed()
	r := setupRouter(store)

	tests := []struct {
		query    string
		servings int
		flour    string
	}{
		{"step=1", 3, "- Flour : 375g"},
		{"step=-1", 1, "- Flour : 125g"},
		{"servings=1&step=-1", 1, "- Flour : 125g"},
		{"servings=5&step=-2", 3, "- Flour : 375g"},
	}
	for _, tt := range tests {
		rr := serve(r, http.MethodGet, "/recipes/2/scaled?"+tt.query, nil)

		require.Equal(t, http.StatusOK, rr.Code, tt.query)
		var scaled api.ScaledIngredients
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scaled))
		assert.Equal(t, tt.servings, scaled.Servings, tt.query)
		assert.Equal(t, tt.flour, scaled.Lines[0], tt.query)
	}

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/recipes/2/scaled?step=up", nil).Code)
}

func TestGetScaledIngredients_HugeServings(t *testing.T) {
	store := NewMockRecipeStore()
	store.seed()
	r := setupRouter(store)

	rr := serve(r, http.MethodGet, "/recipes/2/scaled?servings=9223372036854775807", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var scaled api.ScaledIngredients
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scaled))
	assert.Equal(t, "- Flour : 1152921504606846976000g", scaled.Lines[0])
	assert.Equal(t, "- Milk : 4611686018427387904L", scaled.Lines[1])
}

func TestGetScaledIngredients_InvalidServings(t *testing.T) {
	store := NewMockRecipeStore()
	store.seed()
	r := setupRouter(store)

	for _, s := range []string{"abc", "0", "-3", ""} {
		rr := serve(r, http.MethodGet, "/recipes/2/scaled?servings="+s, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "servings=%q", s)
	}
}

func TestCreateRecipe(t *testing.T) {
	store := NewMockRecipeStore()
	r := setupRouter(store)

	body := []byte(`{
		"name": "  Tarte Tatin ",
		"category": "dessert",
		"instructions": "Caramelise, then bake.",
		"average_price": 7.5,
		"ingredient_list": [{"name": "Apple", "quantity": "6"}, {"name": "Sugar", "quantity": "150g"}]
	}`)
	rr := serve(r, http.MethodPost, "/recipes", body)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	stored := store.recipes[resp.ID]
	assert.Equal(t, "Tarte Tatin", stored.Name)
	assert.Equal(t, recipe.Dessert, stored.Category)
	assert.Equal(t, 1, stored.Servings)
	assert.Len(t, store.ingredients[resp.ID], 2)
}

func TestCreateRecipe_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"name": `},
		{"missing name", `{"category": "Main", "instructions": "x", "ingredient_list": [{"name": "a", "quantity": "1"}]}`},
		{"unknown category", `{"name": "x", "category": "Snack", "instructions": "x", "ingredient_list": [{"name": "a", "quantity": "1"}]}`},
		{"no ingredients", `{"name": "x", "category": "Main", "instructions": "x", "ingredient_list": []}`},
		{"negative servings", `{"name": "x", "category": "Main", "instructions": "x", "servings": -1, "ingredient_list": [{"name": "a", "quantity": "1"}]}`},
		{"blank quantity", `{"name": "x", "category": "Main", "instructions": "x", "ingredient_list": [{"name": "a", "quantity": " "}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMockRecipeStore()
			r := setupRouter(store)

			rr := serve(r, http.MethodPost, "/recipes", []byte(tt.body))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, store.recipes)
		})
	}
}

func TestUpdateRecipe(t *testing.T) {
	store := NewMockRecipeStore()
	store.seed()
	r := setupRouter(store)

	body := []byte(`{"name": "Leek Soup", "category": "Starter", "instructions": "Simmer", "servings": 4,
		"ingredient_list": [{"name": "Leek", "quantity": "4"}]}`)
	rr := serve(r, http.MethodPut, "/recipes/1", body)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Leek Soup", store.recipes[1].Name)
	assert.Equal(t, int64(1), store.recipes[1].ID)
	assert.Equal(t, []recipe.Ingredient{{Name: "Leek", Quantity: "4"}}, store.ingredients[1])

	rr = serve(r, http.MethodPut, "/recipes/42", body)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteRecipe(t *testing.T) {
	store := NewMockRecipeStore()
	store.seed()
	r := setupRouter(store)

	rr := serve(r, http.MethodDelete, "/recipes/1", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NotContains(t, store.recipes, int64(1))
	assert.NotContains(t, store.ingredients, int64(1))

	rr = serve(r, http.MethodDelete, "/recipes/1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetCategories(t *testing.T) {
	r := setupRouter(NewMockRecipeStore())

	rr := serve(r, http.MethodGet, "/categories", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["Starter","Main","Dessert","Appetizer"]`, rr.Body.String())
}

func TestRequestIDPropagated(t *testing.T) {
	r := setupRouter(NewMockRecipeStore())

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set(api.RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", rr.Header().Get(api.RequestIDHeader))
}
