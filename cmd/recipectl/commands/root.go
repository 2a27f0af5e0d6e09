package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipebook/internal/config"
	"recipebook/internal/logger"
	"recipebook/internal/recipe"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Store is the subset of recipe.Store the commands use.
type Store interface {
	AllRecipes(ctx context.Context) ([]recipe.Recipe, error)
	Recipe(ctx context.Context, id int64) (*recipe.Recipe, error)
	IngredientsFor(ctx context.Context, recipeID int64) ([]recipe.Ingredient, error)
	RemoveRecipe(ctx context.Context, id int64) error
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "recipectl",
	Short: "Manage the recipe book from the terminal",
	Long: `recipectl browses and deletes recipes stored in PostgreSQL.

The database connection comes from the config file or the
RECIPEBOOK_DATABASE_URL / DATABASE_URL environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "recipebook.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// openStore loads the configuration and connects to the recipe database.
func openStore(ctx context.Context) (*recipe.PostgresStore, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := "off"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return nil, err
	}

	store, err := recipe.NewPostgresStore(ctx, cfg.DatabaseURL, log.Named("store"))
	if err != nil {
		log.Debug("connect failed", zap.Error(err))
		return nil, err
	}
	return store, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid recipe id %q", s)
	}
	return id, nil
}
