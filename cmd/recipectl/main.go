// recipectl lists, shows and deletes recipes from the command line.
//
// Usage:
//
//	recipectl list [--search q] [--mode name|category|ingredient] [--sort name|category]
//	recipectl show <id> [--servings n]
//	recipectl delete <id>
package main

import (
	"github.com/joho/godotenv"

	"recipebook/cmd/recipectl/commands"
)

func main() {
	_ = godotenv.Load()
	commands.Execute()
}
