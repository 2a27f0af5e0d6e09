package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"recipebook/internal/recipe"
)

var (
	// List flags
	searchQuery string
	searchMode  string
	sortKey     string
)

// listCmd lists recipes
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes",
	Long: `List recipes, optionally filtered and sorted.

Examples:
  recipectl list                                   # All recipes
  recipectl list --search choc                     # Name contains "choc"
  recipectl list --search des --mode category      # Desserts
  recipectl list --search flour --mode ingredient  # Recipes using flour
  recipectl list --sort name`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		return runList(ctx, store, os.Stdout, searchQuery, searchMode, sortKey)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "Text to search for")
	listCmd.Flags().StringVarP(&searchMode, "mode", "m", "name", "Search by name, category or ingredient")
	listCmd.Flags().StringVar(&sortKey, "sort", "", "Sort by name or category")
}

func runList(ctx context.Context, store Store, w io.Writer, query, mode, sortBy string) error {
	m, err := recipe.ParseSearchMode(mode)
	if err != nil {
		return err
	}
	key, err := recipe.ParseSortKey(sortBy)
	if err != nil {
		return err
	}

	recipes, err := store.AllRecipes(ctx)
	if err != nil {
		return err
	}
	recipes, err = recipe.Filter(ctx, recipes, query, m, store.IngredientsFor)
	if err != nil {
		return err
	}
	recipes = recipe.Sort(recipes, key)

	if jsonOutput {
		return writeJSON(w, recipes)
	}
	return writeRecipes(w, recipes)
}
