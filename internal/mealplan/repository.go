package mealplan

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is a database-backed repository for meal plans and their slots.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// CreateWeek instantiates a plan for the given week with an empty slot for
// every date and meal type cell. The week start is normalized to Monday.
func (r *Repository) CreateWeek(ctx context.Context, userID string, weekStart time.Time) (*MealPlan, error) {
	weekStart = WeekStart(weekStart)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	plan := &MealPlan{
		ID:        uuid.NewString(),
		UserID:    userID,
		WeekStart: weekStart,
		CreatedAt: time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meal_plans (id, user_id, week_start, created_at) VALUES (?, ?, ?, ?)`,
		plan.ID, plan.UserID, plan.WeekStart, plan.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert meal plan: %w", err)
	}

	for day := 0; day < 7; day++ {
		date := weekStart.AddDate(0, 0, day)
		for _, mealType := range MealTypes {
			slot := MealSlot{
				ID:       uuid.NewString(),
				PlanID:   plan.ID,
				Date:     date,
				MealType: mealType,
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO meal_slots (id, plan_id, slot_date, meal_type, notes) VALUES (?, ?, ?, ?, '')`,
				slot.ID, slot.PlanID, slot.Date, string(slot.MealType),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to insert meal slot: %w", err)
			}
			plan.Slots = append(plan.Slots, slot)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit meal plan: %w", err)
	}
	return plan, nil
}

// Get retrieves a plan with its slots by ID, returning nil when it does not
// exist.
func (r *Repository) Get(ctx context.Context, id string) (*MealPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, week_start, created_at FROM meal_plans WHERE id = ?`, id)
	return r.scanPlan(ctx, row)
}

// GetByWeek retrieves a user's plan for the given week, returning nil when
// none exists yet.
func (r *Repository) GetByWeek(ctx context.Context, userID string, weekStart time.Time) (*MealPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, week_start, created_at FROM meal_plans WHERE user_id = ? AND week_start = ?`,
		userID, WeekStart(weekStart))
	return r.scanPlan(ctx, row)
}

// ListByUser retrieves all of a user's plans with their slots, oldest week
// first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]MealPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, week_start, created_at FROM meal_plans
		 WHERE user_id = ? ORDER BY week_start ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	defer rows.Close()

	var plans []MealPlan
	for rows.Next() {
		var plan MealPlan
		if err := rows.Scan(&plan.ID, &plan.UserID, &plan.WeekStart, &plan.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal plans: %w", err)
	}

	for i := range plans {
		slots, err := r.slotsForPlan(ctx, plans[i].ID)
		if err != nil {
			return nil, err
		}
		plans[i].Slots = slots
	}
	return plans, nil
}

func (r *Repository) scanPlan(ctx context.Context, row *sql.Row) (*MealPlan, error) {
	var plan MealPlan
	err := row.Scan(&plan.ID, &plan.UserID, &plan.WeekStart, &plan.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}

	slots, err := r.slotsForPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	plan.Slots = slots
	return &plan, nil
}

func (r *Repository) slotsForPlan(ctx context.Context, planID string) ([]MealSlot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plan_id, slot_date, meal_type, recipe_id, servings, notes
		 FROM meal_slots WHERE plan_id = ?
		 ORDER BY slot_date ASC,
		   CASE meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 ELSE 2 END`,
		planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal slots: %w", err)
	}
	defer rows.Close()

	var slots []MealSlot
	for rows.Next() {
		var slot MealSlot
		var mealType string
		var recipeID sql.NullString
		var servings sql.NullInt64
		if err := rows.Scan(&slot.ID, &slot.PlanID, &slot.Date, &mealType, &recipeID, &servings, &slot.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan meal slot: %w", err)
		}
		slot.MealType = MealType(mealType)
		if recipeID.Valid {
			v := recipeID.String
			slot.RecipeID = &v
		}
		if servings.Valid {
			v := int(servings.Int64)
			slot.Servings = &v
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal slots: %w", err)
	}
	return slots, nil
}

// PlanIDForSlot returns the owning plan's ID for a slot, or an empty string
// when the slot does not exist.
func (r *Repository) PlanIDForSlot(ctx context.Context, slotID string) (string, error) {
	var planID string
	err := r.db.QueryRowContext(ctx,
		`SELECT plan_id FROM meal_slots WHERE id = ?`, slotID).Scan(&planID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up meal slot: %w", err)
	}
	return planID, nil
}

// AssignRecipe sets the recipe for a slot, with an optional servings override
// and notes. A nil servings defers to the recipe's base serving count.
func (r *Repository) AssignRecipe(ctx context.Context, slotID, recipeID string, servings *int, notes string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE meal_slots SET recipe_id = ?, servings = ?, notes = ? WHERE id = ?`,
		recipeID, nullableInt(servings), notes, slotID)
	if err != nil {
		return fmt.Errorf("failed to assign recipe to slot: %w", err)
	}
	return requireRow(res, "meal slot", slotID)
}

// ClearSlot removes the recipe assignment from a slot. The slot itself
// remains; only whole plans are deleted.
func (r *Repository) ClearSlot(ctx context.Context, slotID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE meal_slots SET recipe_id = NULL, servings = NULL, notes = '' WHERE id = ?`, slotID)
	if err != nil {
		return fmt.Errorf("failed to clear meal slot: %w", err)
	}
	return requireRow(res, "meal slot", slotID)
}

// Delete removes a plan; its slots go with it via the foreign key cascade.
func (r *Repository) Delete(ctx context.Context, planID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meal_plans WHERE id = ?`, planID); err != nil {
		return fmt.Errorf("failed to delete meal plan: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no %s found with id %s", entity, id)
	}
	return nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
