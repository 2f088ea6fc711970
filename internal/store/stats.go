package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/rewearhq/rewear/internal/model"
)

// Stats is the admin dashboard aggregate. Every call recomputes from the
// live tables; nothing is cached.
type Stats struct {
	TotalUsers           int `json:"total_users"`
	TotalItems           int `json:"total_items"`
	TotalSwaps           int `json:"total_swaps"`
	PendingSwaps         int `json:"pending_swaps"`
	ApprovedItems        int `json:"approved_items"`
	PendingItems         int `json:"pending_items"`
	AvailableItems       int `json:"available_items"`
	TotalPoints          int `json:"total_points"`
	AveragePointsPerUser int `json:"average_points_per_user"`
}

// GetStats computes platform-wide counts.
func GetStats(ctx context.Context, db *sql.DB) (*Stats, error) {
	stats := &Stats{}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(points), 0) FROM users`,
	).Scan(&stats.TotalUsers, &stats.TotalPoints)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(approved), 0),
		        COALESCE(SUM(1 - approved), 0),
		        COALESCE(SUM(CASE WHEN status = ? AND approved = 1 THEN 1 ELSE 0 END), 0)
		 FROM items`, model.ItemStatusAvailable,
	).Scan(&stats.TotalItems, &stats.ApprovedItems, &stats.PendingItems, &stats.AvailableItems)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		 FROM swaps`, model.SwapStatusPending,
	).Scan(&stats.TotalSwaps, &stats.PendingSwaps)
	if err != nil {
		return nil, fmt.Errorf("counting swaps: %w", err)
	}

	if stats.TotalUsers > 0 {
		stats.AveragePointsPerUser = int(math.Round(float64(stats.TotalPoints) / float64(stats.TotalUsers)))
	}

	return stats, nil
}

// ActivityEntry is one row of the recent-activity feed.
type ActivityEntry struct {
	ItemID    int64     `json:"id"`
	Title     string    `json:"title"`
	Action    string    `json:"action"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentActivity returns the newest listings with their moderation state.
func RecentActivity(ctx context.Context, db *sql.DB, limit int) ([]ActivityEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, title, approved, owner_id, created_at
		 FROM items ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent activity: %w", err)
	}
	defer rows.Close()

	var entries []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		var approved bool
		if err := rows.Scan(&e.ItemID, &e.Title, &approved, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		if approved {
			e.Action = "approved"
		} else {
			e.Action = "pending"
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
