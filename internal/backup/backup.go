package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pantry-planner/internal/ingredient"
	"pantry-planner/internal/mealplan"
	"pantry-planner/internal/recipe"
	"pantry-planner/internal/shopping"
)

// Snapshot is a full export of one user's data at a point in time.
type Snapshot struct {
	UserID        string                  `json:"user_id"`
	ExportedAt    time.Time               `json:"exported_at"`
	Ingredients   []ingredient.Ingredient `json:"ingredients"`
	Recipes       []recipe.Recipe         `json:"recipes"`
	MealPlans     []mealplan.MealPlan     `json:"meal_plans"`
	ShoppingLists []shopping.ShoppingList `json:"shopping_lists"`
}

// Store provides file-based storage for user data snapshots.
type Store struct {
	basePath string
}

// NewStore creates a new Store and ensures the base directory exists.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory %s: %w", basePath, err)
	}
	return &Store{basePath: basePath}, nil
}

// sanitizeTimestamp makes the timestamp safe for filenames.
func sanitizeTimestamp(ts string) string {
	return strings.ReplaceAll(ts, ":", "-")
}

func (s *Store) snapshotPath(userID string, exportedAt time.Time) string {
	filename := fmt.Sprintf("%s_%s.json", userID, sanitizeTimestamp(exportedAt.UTC().Format(time.RFC3339)))
	return filepath.Join(s.basePath, filename)
}

// Save writes a snapshot to a timestamped file and returns its path.
func (s *Store) Save(snap Snapshot) (string, error) {
	if snap.ExportedAt.IsZero() {
		snap.ExportedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	filePath := s.snapshotPath(snap.UserID, snap.ExportedAt)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return filePath, nil
}

// Load reads a snapshot back from a file previously returned by Save.
func (s *Store) Load(filePath string) (*Snapshot, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// List returns the snapshot files for a user, newest first.
func (s *Store) List(userID string) ([]string, error) {
	pattern := filepath.Join(s.basePath, fmt.Sprintf("%s_*.json", userID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob snapshot files: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches, nil
}

// Prune keeps the newest keep snapshots for a user and removes the rest.
func (s *Store) Prune(userID string, keep int) error {
	matches, err := s.List(userID)
	if err != nil {
		return err
	}
	if keep < 0 {
		keep = 0
	}
	for _, match := range matches[min(keep, len(matches)):] {
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to remove stale snapshot %s: %w", match, err)
		}
	}
	return nil
}
