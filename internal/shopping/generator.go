package shopping

import (
	"sort"
	"strings"

	"pantry-planner/internal/ingredient"
	"pantry-planner/internal/mealplan"
	"pantry-planner/internal/recipe"
)

// NewItemKey builds the aggregation key for an ingredient name and unit.
func NewItemKey(name, unit string) ItemKey {
	return ItemKey{Name: strings.ToLower(name), Unit: unit}
}

// Generate derives a shopping list from a set of meal slots, the recipes they
// reference and a snapshot of the inventory. It is a pure function: inputs
// are never mutated and identical inputs produce identical output.
//
// Slots without an assigned recipe, or whose recipe is absent from the
// lookup, contribute nothing. Each recipe ingredient is scaled by the slot's
// serving override relative to the recipe's base serving count, merged into a
// per-(name, unit) aggregate, and matched once against the inventory by
// case-insensitive name. Inventory matching ignores units, so amounts are
// only comparable when both sides were recorded in the same unit; no
// conversion is attempted.
func Generate(slots []mealplan.MealSlot, recipes map[string]recipe.Recipe, inventory []ingredient.Ingredient) []ListItem {
	items := make(map[ItemKey]*ListItem)

	for _, slot := range slots {
		if slot.RecipeID == nil {
			continue
		}
		rec, ok := recipes[*slot.RecipeID]
		if !ok {
			continue
		}

		factor := 1.0
		if slot.Servings != nil && rec.Servings > 0 {
			factor = float64(*slot.Servings) / float64(rec.Servings)
		}

		for _, ing := range rec.Ingredients {
			// Amounts are taken as-is, including zero or negative values.
			scaled := ing.Amount * factor
			key := NewItemKey(ing.Name, ing.Unit)

			item, ok := items[key]
			if !ok {
				item = &ListItem{
					Name:     ing.Name,
					Unit:     ing.Unit,
					Category: ing.Category,
				}
				// One-time inventory lookup, not re-evaluated on merges.
				if inv := findByName(inventory, ing.Name); inv != nil {
					item.InInventory = true
					item.InventoryAmount = inv.Quantity
				}
				items[key] = item
			}

			item.TotalAmount += scaled
			item.Sources = append(item.Sources, Source{
				RecipeID:    rec.ID,
				RecipeTitle: rec.Title,
				Amount:      scaled,
			})
		}
	}

	out := make([]ListItem, 0, len(items))
	for _, item := range items {
		item.NeedToBuy = !(item.InInventory && item.InventoryAmount >= item.TotalAmount)
		out = append(out, *item)
	}

	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}

func findByName(inventory []ingredient.Ingredient, name string) *ingredient.Ingredient {
	for i := range inventory {
		if strings.EqualFold(inventory[i].Name, name) {
			return &inventory[i]
		}
	}
	return nil
}
