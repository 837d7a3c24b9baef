package shopping

import "time"

// ItemKey is the composite aggregation key that merges contributions from
// multiple recipes and slots into one line item. Name is held lower-cased so
// that structural equality matches the case-insensitive identity of
// ingredient names.
type ItemKey struct {
	Name string
	Unit string
}

// Source records one recipe's contribution to a line item.
type Source struct {
	RecipeID    string  `json:"recipe_id"`
	RecipeTitle string  `json:"recipe_title"`
	Amount      float64 `json:"amount"`
}

// ListItem is one derived line of a shopping list. Within a generated list
// the (name, unit) key is unique.
type ListItem struct {
	Name            string   `json:"name"`
	Unit            string   `json:"unit"`
	TotalAmount     float64  `json:"total_amount"`
	Category        string   `json:"category,omitempty"`
	Sources         []Source `json:"sources"`
	InInventory     bool     `json:"in_inventory"`
	InventoryAmount float64  `json:"inventory_amount,omitempty"`
	NeedToBuy       bool     `json:"need_to_buy"`
	Purchased       bool     `json:"purchased"`
	Price           *float64 `json:"price,omitempty"`
}

// Key returns the item's aggregation key.
func (it ListItem) Key() ItemKey {
	return NewItemKey(it.Name, it.Unit)
}

// ShoppingList is a persisted, named shopping list with purchase and price
// tracking on its items.
type ShoppingList struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	WeekStart *time.Time `json:"week_start,omitempty"`
	Items     []ListItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}
