package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"recipe-nutrition/internal/app"
	"recipe-nutrition/internal/infrastructure/config"
	"recipe-nutrition/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	ingredientsPath string
	recipesPath     string
	timeout         time.Duration
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load ingredients and recipes from CSV files",
		Long: `Load ingredients and recipes from CSV files into the configured database.

Rows that already exist are left untouched, so the command can be re-run safely.
Numeric ingredient ids are stored as ing_XXX.

Examples:
  seed
  seed --ingredients sample-data/ingredients.csv --recipes sample-data/recipes.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSeed,
	}

	cmd.Flags().StringVar(&ingredientsPath, "ingredients", "sample-data/"+app.IngredientsFile, "Ingredients CSV file (empty to skip)")
	cmd.Flags().StringVar(&recipesPath, "recipes", "sample-data/"+app.RecipesFile, "Recipes CSV file (empty to skip)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall timeout")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Database.InMemory() {
		return fmt.Errorf("database url %q is in-memory, nothing to seed", cfg.Database.URL)
	}

	if err := common.InitLogger(cfg.LogLevel, ""); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer common.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	storage, err := app.OpenStorage(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer storage.Close()

	common.LogInfo("開始匯入資料",
		zap.String("ingredients", ingredientsPath),
		zap.String("recipes", recipesPath),
	)

	res, err := app.SeedFiles(ctx, storage, ingredientsPath, recipesPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ingredients: %d inserted, %d skipped\n", res.IngredientsInserted, res.IngredientsSkipped)
	fmt.Fprintf(cmd.OutOrStdout(), "recipes: %d inserted, %d skipped\n", res.RecipesInserted, res.RecipesSkipped)
	if res.NextRecipeID > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "next recipe id: %d\n", res.NextRecipeID)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
