package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"recipebook/internal/recipe"
)

var (
	// Show flags
	servingsFlag string
	stepFlag     int
)

// showCmd prints one recipe
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recipe with its ingredients",
	Long: `Show a recipe. With --servings the ingredient quantities are
scaled from the recipe's own serving count. --step adds to or
removes from that count, never going below one serving.

Examples:
  recipectl show 3
  recipectl show 3 --servings 6
  recipectl show 3 --step -1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		return runShow(ctx, store, os.Stdout, id, servingsFlag, stepFlag)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVarP(&servingsFlag, "servings", "n", "", "Number of people to scale the ingredients for")
	showCmd.Flags().IntVar(&stepFlag, "step", 0, "Add or remove people from the serving count")
}

type scaledRecipe struct {
	recipe.Recipe
	ShownServings int      `json:"shown_servings"`
	Lines         []string `json:"lines"`
}

func runShow(ctx context.Context, store Store, w io.Writer, id int64, servings string, step int) error {
	r, err := store.Recipe(ctx, id)
	if err != nil {
		return err
	}

	target := r.Servings
	if servings != "" {
		if target, err = recipe.ParseServings(servings); err != nil {
			return err
		}
	}
	target = recipe.StepServings(target, step)

	ings, err := store.IngredientsFor(ctx, id)
	if err != nil {
		return err
	}
	lines := recipe.Scale(ings, r.Servings, target)

	if jsonOutput {
		return writeJSON(w, scaledRecipe{Recipe: *r, ShownServings: target, Lines: lines})
	}
	return writeRecipeDetail(w, *r, target, lines)
}
