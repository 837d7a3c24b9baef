package ingredient

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is a database-backed repository for inventory ingredients.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

const ingredientColumns = `id, user_id, name, quantity, unit, location, category, expiration_date, date_bought, created_at, updated_at`

// Create inserts a new ingredient, assigning an ID when none is set.
func (r *Repository) Create(ctx context.Context, ing *Ingredient) error {
	if ing.ID == "" {
		ing.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if ing.DateBought.IsZero() {
		ing.DateBought = now
	}
	if ing.Location == "" {
		ing.Location = LocationPantry
	}
	ing.CreatedAt = now
	ing.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ingredients (`+ingredientColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ing.ID, ing.UserID, ing.Name, ing.Quantity, ing.Unit, string(ing.Location),
		ing.Category, nullableTime(ing.ExpirationDate), ing.DateBought, ing.CreatedAt, ing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ingredient: %w", err)
	}
	return nil
}

// Get retrieves an ingredient by ID, returning nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Ingredient, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE id = ?`, id)
	ing, err := scanIngredient(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return ing, nil
}

// List retrieves all ingredients for a user, ordered by location then name.
func (r *Repository) List(ctx context.Context, userID string) ([]Ingredient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE user_id = ? ORDER BY location ASC, name COLLATE NOCASE ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()
	return collectIngredients(rows)
}

// ListExpiringWithin retrieves ingredients whose expiration date falls within
// the next N days. Items without an expiration date are never returned.
func (r *Repository) ListExpiringWithin(ctx context.Context, userID string, days int) ([]Ingredient, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, days)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients
		 WHERE user_id = ? AND expiration_date IS NOT NULL AND expiration_date <= ?
		 ORDER BY expiration_date ASC`,
		userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring ingredients: %w", err)
	}
	defer rows.Close()
	return collectIngredients(rows)
}

// Update rewrites the mutable fields of an ingredient.
func (r *Repository) Update(ctx context.Context, ing *Ingredient) error {
	ing.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE ingredients
		 SET name = ?, quantity = ?, unit = ?, location = ?, category = ?, expiration_date = ?, date_bought = ?, updated_at = ?
		 WHERE id = ?`,
		ing.Name, ing.Quantity, ing.Unit, string(ing.Location), ing.Category,
		nullableTime(ing.ExpirationDate), ing.DateBought, ing.UpdatedAt, ing.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ingredient: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no ingredient found with id %s", ing.ID)
	}
	return nil
}

// Delete removes an ingredient by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIngredient(row rowScanner) (*Ingredient, error) {
	var ing Ingredient
	var location string
	var expiration sql.NullTime
	if err := row.Scan(
		&ing.ID, &ing.UserID, &ing.Name, &ing.Quantity, &ing.Unit, &location,
		&ing.Category, &expiration, &ing.DateBought, &ing.CreatedAt, &ing.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ing.Location = Location(location)
	if expiration.Valid {
		t := expiration.Time
		ing.ExpirationDate = &t
	}
	return &ing, nil
}

func collectIngredients(rows *sql.Rows) ([]Ingredient, error) {
	var out []Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		out = append(out, *ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}
	return out, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
