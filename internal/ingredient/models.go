package ingredient

import "time"

// Location identifies where an inventory item is kept.
type Location string

const (
	LocationFridge  Location = "fridge"
	LocationPantry  Location = "pantry"
	LocationFreezer Location = "freezer"
)

// Ingredient is a single on-hand inventory item. It has a lifecycle
// independent from recipes and meal plans, and is only ever read as a
// snapshot during shopping-list generation.
type Ingredient struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	Quantity       float64    `json:"quantity"`
	Unit           string     `json:"unit"`
	Location       Location   `json:"location"`
	Category       string     `json:"category"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	DateBought     time.Time  `json:"date_bought"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
