package mealplan

import "time"

// MealType identifies one of the three daily meal slots.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// MealTypes lists the slot types in day order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner}

// MealSlot is one date+meal-type cell in a weekly plan. Slots are created
// empty when the plan is instantiated and are only ever mutated by assigning
// or clearing a recipe; they are deleted with the plan, never individually.
type MealSlot struct {
	ID       string    `json:"id"`
	PlanID   string    `json:"plan_id"`
	Date     time.Time `json:"date"`
	MealType MealType  `json:"meal_type"`
	RecipeID *string   `json:"recipe_id,omitempty"`
	Servings *int      `json:"servings,omitempty"`
	Notes    string    `json:"notes,omitempty"`
}

// MealPlan is a week-scoped assignment of recipes to slots.
type MealPlan struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	WeekStart time.Time  `json:"week_start"`
	CreatedAt time.Time  `json:"created_at"`
	Slots     []MealSlot `json:"slots"`
}

// WeekStart normalizes a time to the Monday 00:00 UTC of its plan week.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := t.Truncate(24 * time.Hour)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}
