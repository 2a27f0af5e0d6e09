package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// deleteCmd removes a recipe
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recipe and its ingredient links",
	Args:  cobra.ExactArgs(1),
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
		if err := runDelete(ctx, store, id); err != nil {
			return err
		}
		Success("Deleted recipe %d", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(ctx context.Context, store Store, id int64) error {
	return store.RemoveRecipe(ctx, id)
}
