package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Store defines the interface for recipe data operations.
type Store interface {
	AllRecipes(ctx context.Context) ([]Recipe, error)
	Recipe(ctx context.Context, id int64) (*Recipe, error)
	IngredientsFor(ctx context.Context, recipeID int64) ([]Ingredient, error)
	InsertRecipe(ctx context.Context, r *Recipe) error
	UpdateRecipe(ctx context.Context, r Recipe) error
	DeleteRecipe(ctx context.Context, id int64) error
	IngredientID(ctx context.Context, name string) (int64, error)
	InsertIngredientAssociation(ctx context.Context, recipeID, ingredientID int64, quantity string) error
	DeleteIngredientAssociations(ctx context.Context, recipeID int64) error

	CreateRecipe(ctx context.Context, d Draft) (int64, error)
	ReplaceRecipe(ctx context.Context, d Draft) error
	RemoveRecipe(ctx context.Context, id int64) error
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db  *sqlx.DB
	log *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS recipes (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	ingredients TEXT NOT NULL DEFAULT '',
	instructions TEXT NOT NULL,
	duration TEXT NOT NULL DEFAULT '',
	servings INTEGER NOT NULL DEFAULT 1 CHECK (servings >= 1),
	average_price DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (average_price >= 0)
);

CREATE TABLE IF NOT EXISTS ingredients (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
	id SERIAL PRIMARY KEY,
	recipe_id INTEGER NOT NULL REFERENCES recipes(id),
	ingredient_id INTEGER NOT NULL REFERENCES ingredients(id),
	quantity TEXT NOT NULL
);
`

// NewPostgresStore connects to dataSourceName and creates the schema if it
// does not exist yet. A nil log discards output.
func NewPostgresStore(ctx context.Context, dataSourceName string, log *zap.Logger) (*PostgresStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Debug("recipe store ready")
	return &PostgresStore{db: db, log: log}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const recipeColumns = "id, name, category, ingredients, instructions, duration, servings, average_price"

// AllRecipes returns every recipe ordered by id.
func (s *PostgresStore) AllRecipes(ctx context.Context) ([]Recipe, error) {
	recipes := []Recipe{}
	if err := s.db.SelectContext(ctx, &recipes, "SELECT "+recipeColumns+" FROM recipes ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get recipes: %w", err)
	}
	return recipes, nil
}

// Recipe returns the recipe with the given id, or ErrNotFound.
func (s *PostgresStore) Recipe(ctx context.Context, id int64) (*Recipe, error) {
	var r Recipe
	err := s.db.GetContext(ctx, &r, "SELECT "+recipeColumns+" FROM recipes WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	return &r, nil
}

// IngredientsFor returns the ingredient list of a recipe in the order it
// was saved.
func (s *PostgresStore) IngredientsFor(ctx context.Context, recipeID int64) ([]Ingredient, error) {
	return ingredientsFor(ctx, s.db, recipeID)
}

// InsertRecipe inserts r and sets r.ID to the assigned id.
func (s *PostgresStore) InsertRecipe(ctx context.Context, r *Recipe) error {
	return insertRecipe(ctx, s.db, r)
}

// UpdateRecipe overwrites the stored fields of r.ID.
func (s *PostgresStore) UpdateRecipe(ctx context.Context, r Recipe) error {
	return updateRecipe(ctx, s.db, r)
}

// DeleteRecipe deletes the recipe row. Its ingredient associations must
// already be gone.
func (s *PostgresStore) DeleteRecipe(ctx context.Context, id int64) error {
	return deleteRecipe(ctx, s.db, id)
}

// IngredientID returns the catalog id for name, creating the entry if
// needed.
func (s *PostgresStore) IngredientID(ctx context.Context, name string) (int64, error) {
	return ingredientID(ctx, s.db, name)
}

// InsertIngredientAssociation links an ingredient to a recipe.
func (s *PostgresStore) InsertIngredientAssociation(ctx context.Context, recipeID, ingredientID int64, quantity string) error {
	return insertAssociation(ctx, s.db, recipeID, ingredientID, quantity)
}

// DeleteIngredientAssociations removes every ingredient link of a recipe.
func (s *PostgresStore) DeleteIngredientAssociations(ctx context.Context, recipeID int64) error {
	return deleteAssociations(ctx, s.db, recipeID)
}

// CreateRecipe saves a new recipe and its ingredient list in a single
// transaction and returns the new id.
func (s *PostgresStore) CreateRecipe(ctx context.Context, d Draft) (int64, error) {
	r := d.Recipe
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertRecipe(ctx, tx, &r); err != nil {
			return err
		}
		return insertIngredients(ctx, tx, r.ID, d.IngredientList)
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("recipe created", zap.Int64("id", r.ID), zap.String("name", r.Name), zap.Int("ingredients", len(d.IngredientList)))
	return r.ID, nil
}

// ReplaceRecipe updates an existing recipe and replaces its ingredient
// list. The delete and re-insert of associations happen in the same
// transaction as the update, so a failure never leaves the recipe without
// ingredients.
func (s *PostgresStore) ReplaceRecipe(ctx context.Context, d Draft) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := updateRecipe(ctx, tx, d.Recipe); err != nil {
			return err
		}
		if err := deleteAssociations(ctx, tx, d.ID); err != nil {
			return err
		}
		return insertIngredients(ctx, tx, d.ID, d.IngredientList)
	})
	if err != nil {
		return err
	}
	s.log.Info("recipe updated", zap.Int64("id", d.ID), zap.String("name", d.Name), zap.Int("ingredients", len(d.IngredientList)))
	return nil
}

// RemoveRecipe deletes a recipe after its ingredient associations.
func (s *PostgresStore) RemoveRecipe(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := deleteAssociations(ctx, tx, id); err != nil {
			return err
		}
		return deleteRecipe(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("recipe deleted", zap.Int64("id", id))
	return nil
}

func (s *PostgresStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func ingredientsFor(ctx context.Context, q sqlx.QueryerContext, recipeID int64) ([]Ingredient, error) {
	ings := []Ingredient{}
	err := sqlx.SelectContext(ctx, q, &ings,
		"SELECT i.name, ri.quantity FROM recipe_ingredients ri JOIN ingredients i ON ri.ingredient_id = i.id WHERE ri.recipe_id = $1 ORDER BY ri.id",
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get ingredients for recipe %d: %w", recipeID, err)
	}
	return ings, nil
}

func insertRecipe(ctx context.Context, q sqlx.QueryerContext, r *Recipe) error {
	err := q.QueryRowxContext(ctx,
		"INSERT INTO recipes (name, category, ingredients, instructions, duration, servings, average_price) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id",
		r.Name,
		r.Category,
		r.Ingredients,
		r.Instructions,
		r.Duration,
		r.Servings,
		r.AveragePrice,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}
	return nil
}

func updateRecipe(ctx context.Context, e sqlx.ExecerContext, r Recipe) error {
	res, err := e.ExecContext(ctx,
		"UPDATE recipes SET name = $1, category = $2, ingredients = $3, instructions = $4, duration = $5, servings = $6, average_price = $7 WHERE id = $8",
		r.Name,
		r.Category,
		r.Ingredients,
		r.Instructions,
		r.Duration,
		r.Servings,
		r.AveragePrice,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe %d: %w", r.ID, err)
	}
	return expectRow(res)
}

func deleteRecipe(ctx context.Context, e sqlx.ExecerContext, id int64) error {
	res, err := e.ExecContext(ctx, "DELETE FROM recipes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	return expectRow(res)
}

func ingredientID(ctx context.Context, q sqlx.QueryerContext, name string) (int64, error) {
	var id int64
	err := q.QueryRowxContext(ctx,
		"INSERT INTO ingredients (name) VALUES ($1) ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id",
		name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to get ingredient id for %q: %w", name, err)
	}
	return id, nil
}

func insertAssociation(ctx context.Context, e sqlx.ExecerContext, recipeID, ingredientID int64, quantity string) error {
	_, err := e.ExecContext(ctx,
		"INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity) VALUES ($1, $2, $3)",
		recipeID,
		ingredientID,
		quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to link ingredient %d to recipe %d: %w", ingredientID, recipeID, err)
	}
	return nil
}

func deleteAssociations(ctx context.Context, e sqlx.ExecerContext, recipeID int64) error {
	if _, err := e.ExecContext(ctx, "DELETE FROM recipe_ingredients WHERE recipe_id = $1", recipeID); err != nil {
		return fmt.Errorf("failed to delete ingredients of recipe %d: %w", recipeID, err)
	}
	return nil
}

func insertIngredients(ctx context.Context, tx *sqlx.Tx, recipeID int64, ings []Ingredient) error {
	for _, ing := range ings {
		id, err := ingredientID(ctx, tx, ing.Name)
		if err != nil {
			return err
		}
		if err := insertAssociation(ctx, tx, recipeID, id, ing.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
