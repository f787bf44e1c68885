package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/category"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the default expense categories",
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to initialize dependencies: %v", err)
		}
		defer deps.Close()

		if err := seedCategories(cmd.Context(), deps.Categories, os.Stdout); err != nil {
			deps.Close()
			log.Fatalf("failed to seed categories: %v", err)
		}
	},
}

var defaultCategories = []category.CategoryDTO{
	{Name: "Food", Description: "Groceries, restaurants and coffee"},
	{Name: "Transport", Description: "Fuel, public transport and taxis"},
	{Name: "Housing", Description: "Rent, utilities and repairs"},
	{Name: "Health", Description: "Pharmacy, doctors and insurance"},
	{Name: "Entertainment", Description: "Movies, games and going out"},
	{Name: "Shopping", Description: "Clothes and household items"},
	{Name: "Other", Description: "Everything else"},
}

type categoryCreator interface {
	Create(ctx context.Context, dto category.CategoryDTO) (*category.Category, error)
}

// seedCategories creates the default categories, skipping names that
// already exist.
func seedCategories(ctx context.Context, svc categoryCreator, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, dto := range defaultCategories {
		cat, err := svc.Create(ctx, dto)
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeCategoryDuplicate {
				fmt.Fprintf(out, "Category already exists: %s\n", dto.Name)
				continue
			}
			return fmt.Errorf("create category %s: %w", dto.Name, err)
		}
		fmt.Fprintf(out, "Seeded category: %s (id %d)\n", cat.Name, cat.ID)
	}
	return nil
}
