package recipe

import "time"

// Ingredient is one typed ingredient line of a recipe. Lines are immutable
// once the recipe is saved; edits go through a full recipe update.
type Ingredient struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Category string  `json:"category,omitempty"`
	Optional bool    `json:"optional,omitempty"`
}

// Recipe represents a stored recipe with its typed ingredient list.
type Recipe struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Servings     int          `json:"servings"`
	PrepTime     string       `json:"prep_time,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions string       `json:"instructions,omitempty"`
	SourceURL    string       `json:"source_url,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
