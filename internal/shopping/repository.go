package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository handles persistence of shopping lists. Items are stored as one
// JSON document per list; purchase and price updates rewrite the whole item
// set (last-write-wins, like the backing store of the original).
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Create persists a new shopping list and returns its ID.
func (r *Repository) Create(ctx context.Context, list *ShoppingList) (string, error) {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	list.CreatedAt = time.Now().UTC()

	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (id, user_id, name, week_start, items, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		list.ID, list.UserID, list.Name, nullableTime(list.WeekStart), string(itemsJSON), list.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert shopping list: %w", err)
	}
	return list.ID, nil
}

// Get retrieves a shopping list by ID, returning nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, week_start, items, created_at FROM shopping_lists WHERE id = ?`, id)
	list, err := scanList(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}
	return list, nil
}

// ListByUser retrieves all of a user's shopping lists, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]ShoppingList, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, week_start, items, created_at
		 FROM shopping_lists WHERE user_id = ? ORDER BY created_at DESC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping lists: %w", err)
	}
	defer rows.Close()

	var lists []ShoppingList
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shopping list: %w", err)
		}
		lists = append(lists, *list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping lists: %w", err)
	}
	return lists, nil
}

// UpdateItems replaces the item set of a list, used for purchase and price
// tracking.
func (r *Repository) UpdateItems(ctx context.Context, id string, items []ListItem) error {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE shopping_lists SET items = ? WHERE id = ?`, string(itemsJSON), id)
	if err != nil {
		return fmt.Errorf("failed to update shopping list items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no shopping list found with id %s", id)
	}
	return nil
}

// Delete removes a shopping list by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner) (*ShoppingList, error) {
	var list ShoppingList
	var weekStart sql.NullTime
	var itemsJSON string
	if err := row.Scan(&list.ID, &list.UserID, &list.Name, &weekStart, &itemsJSON, &list.CreatedAt); err != nil {
		return nil, err
	}
	if weekStart.Valid {
		t := weekStart.Time
		list.WeekStart = &t
	}
	if err := json.Unmarshal([]byte(itemsJSON), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	return &list, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
