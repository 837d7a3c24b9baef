package backup

import (
	"context"
	"fmt"
	"time"

	"pantry-planner/internal/ingredient"
	"pantry-planner/internal/mealplan"
	"pantry-planner/internal/recipe"
	"pantry-planner/internal/shopping"
)

// Exporter assembles full-user snapshots from the repositories and stores
// them through a Store.
type Exporter struct {
	store          *Store
	ingredientRepo *ingredient.Repository
	recipeRepo     *recipe.Repository
	planRepo       *mealplan.Repository
	shoppingRepo   *shopping.Repository
}

// NewExporter creates an Exporter over the given repositories.
func NewExporter(
	store *Store,
	ingredientRepo *ingredient.Repository,
	recipeRepo *recipe.Repository,
	planRepo *mealplan.Repository,
	shoppingRepo *shopping.Repository,
) *Exporter {
	return &Exporter{
		store:          store,
		ingredientRepo: ingredientRepo,
		recipeRepo:     recipeRepo,
		planRepo:       planRepo,
		shoppingRepo:   shoppingRepo,
	}
}

// Export gathers everything the user owns into one snapshot and writes it to
// disk, returning the snapshot and its file path.
func (e *Exporter) Export(ctx context.Context, userID string) (*Snapshot, string, error) {
	ingredients, err := e.ingredientRepo.List(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to export ingredients: %w", err)
	}
	recipes, err := e.recipeRepo.List(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to export recipes: %w", err)
	}
	plans, err := e.planRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to export meal plans: %w", err)
	}
	lists, err := e.shoppingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to export shopping lists: %w", err)
	}

	snap := Snapshot{
		UserID:        userID,
		ExportedAt:    time.Now().UTC(),
		Ingredients:   ingredients,
		Recipes:       recipes,
		MealPlans:     plans,
		ShoppingLists: lists,
	}
	path, err := e.store.Save(snap)
	if err != nil {
		return nil, "", err
	}
	return &snap, path, nil
}
