package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RequestMetric records metadata for a single handled API request.
type RequestMetric struct {
	Route     string
	Method    string
	Status    int
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of request metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m RequestMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO request_metrics (route, method, status, latency_ms, timestamp) VALUES (?, ?, ?, ?, ?)`,
		m.Route, m.Method, m.Status, m.LatencyMS, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to insert request metric: %w", err)
	}
	return nil
}

// DailyUsage represents request totals for a single day.
type DailyUsage struct {
	Date           string
	Requests       int
	Errors         int
	TotalLatencyMS int64
}

// GetDailyUsage retrieves usage for the last N days.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx,
		`SELECT date(timestamp) AS day,
		        COUNT(*),
		        SUM(CASE WHEN status >= 500 THEN 1 ELSE 0 END),
		        SUM(latency_ms)
		 FROM request_metrics
		 WHERE timestamp >= ?
		 GROUP BY day ORDER BY day ASC`,
		since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		var errors sql.NullInt64
		var latency sql.NullInt64
		if err := rows.Scan(&u.Date, &u.Requests, &errors, &latency); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		if errors.Valid {
			u.Errors = int(errors.Int64)
		}
		if latency.Valid {
			u.TotalLatencyMS = latency.Int64
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily usage: %w", err)
	}
	return results, nil
}

// Cleanup removes records older than the specified number of days and
// returns how many were deleted.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM request_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up request metrics: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}
