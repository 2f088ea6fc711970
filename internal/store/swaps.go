package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rewearhq/rewear/internal/model"
)

const swapColumns = `s.id, s.item_id, s.requester_id, s.owner_id, s.kind, s.status,
	s.message, s.points_cost, s.created_at, s.updated_at, s.completed_at,
	i.title AS item_title, ru.name AS requester_name, ou.name AS owner_name`

const swapJoins = ` FROM swaps s
	JOIN items i ON i.id = s.item_id
	JOIN users ru ON ru.id = s.requester_id
	JOIN users ou ON ou.id = s.owner_id`

// CreateSwapRequest creates a pending direct swap for an item.
// The item must exist, be available, and not belong to the requester.
// Item and user state are untouched until the swap completes.
func CreateSwapRequest(ctx context.Context, db *sql.DB, requesterID, itemID int64, message string) (*model.Swap, error) {
	item, err := GetItem(ctx, db, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if item.OwnerID == requesterID {
		return nil, ErrOwnItem
	}
	if item.Status != model.ItemStatusAvailable {
		return nil, ErrItemUnavailable
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO swaps (item_id, requester_id, owner_id, kind, status, message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		itemID, requesterID, item.OwnerID, model.SwapKindDirect, model.SwapStatusPending, message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating swap request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting swap id: %w", err)
	}
	return getSwap(ctx, db, id)
}

// Redeem buys an item outright with points. The balance debit, the item
// status flip and the completed swap record commit as a single transaction:
// no observer ever sees one without the others, and any failure leaves
// everything untouched.
func Redeem(ctx context.Context, db *sql.DB, requesterID, itemID int64) (*model.Swap, int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID, price int64
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT owner_id, points, status FROM items WHERE id = ?`, itemID,
	).Scan(&ownerID, &price, &status)
	if err == sql.ErrNoRows {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("loading item: %w", err)
	}

	if ownerID == requesterID {
		return nil, 0, ErrOwnItem
	}
	if status != model.ItemStatusAvailable {
		return nil, 0, ErrItemUnavailable
	}

	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT points FROM users WHERE id = ?`, requesterID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("loading requester: %w", err)
	}
	if balance < price {
		return nil, 0, ErrInsufficientPoints
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET points = points - ? WHERE id = ?`, price, requesterID,
	); err != nil {
		return nil, 0, fmt.Errorf("debiting points: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.ItemStatusSwapped, itemID,
	); err != nil {
		return nil, 0, fmt.Errorf("marking item swapped: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO swaps (item_id, requester_id, owner_id, kind, status, points_cost, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		itemID, requesterID, ownerID, model.SwapKindRedemption, model.SwapStatusCompleted, price,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("recording redemption: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("committing redemption: %w", err)
	}

	swapID, _ := result.LastInsertId()
	swap, err := getSwap(ctx, db, swapID)
	if err != nil {
		return nil, 0, err
	}
	return swap, int(balance - price), nil
}

// AcceptSwap transitions a pending direct swap to accepted. Only the item's
// owner may accept. The item itself stays available until completion; two
// requests for the same item can both sit accepted, and whichever completes
// first wins.
func AcceptSwap(ctx context.Context, db *sql.DB, swapID, callerID int64) (*model.Swap, error) {
	return transitionSwap(ctx, db, swapID, callerID, ownerOnly, model.SwapStatusPending, model.SwapStatusAccepted)
}

// RejectSwap transitions a pending direct swap to rejected. Owner only.
func RejectSwap(ctx context.Context, db *sql.DB, swapID, callerID int64) (*model.Swap, error) {
	return transitionSwap(ctx, db, swapID, callerID, ownerOnly, model.SwapStatusPending, model.SwapStatusRejected)
}

// CompleteSwap transitions an accepted swap to completed and marks the item
// swapped, in one transaction. Either participant may complete.
func CompleteSwap(ctx context.Context, db *sql.DB, swapID, callerID int64) (*model.Swap, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var itemID, requesterID, ownerID int64
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT item_id, requester_id, owner_id, status FROM swaps WHERE id = ?`, swapID,
	).Scan(&itemID, &requesterID, &ownerID, &status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading swap: %w", err)
	}

	if callerID != requesterID && callerID != ownerID {
		return nil, ErrNotAllowed
	}
	if status != model.SwapStatusAccepted {
		return nil, ErrInvalidState
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE swaps SET status = ?, updated_at = CURRENT_TIMESTAMP, completed_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, model.SwapStatusCompleted, swapID,
	); err != nil {
		return nil, fmt.Errorf("completing swap: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.ItemStatusSwapped, itemID,
	); err != nil {
		return nil, fmt.Errorf("marking item swapped: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing completion: %w", err)
	}

	return getSwap(ctx, db, swapID)
}

// CancelSwap withdraws a pending request. Requester only. The record is
// deleted outright: cancelled requests leave no trace, unlike rejections.
func CancelSwap(ctx context.Context, db *sql.DB, swapID, callerID int64) error {
	var requesterID int64
	var status string
	err := db.QueryRowContext(ctx,
		`SELECT requester_id, status FROM swaps WHERE id = ?`, swapID,
	).Scan(&requesterID, &status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading swap: %w", err)
	}

	if callerID != requesterID {
		return ErrNotAllowed
	}
	if status != model.SwapStatusPending {
		return ErrInvalidState
	}

	// Guard again in the DELETE so a cancel racing an accept cannot remove
	// a swap that is no longer pending.
	result, err := db.ExecContext(ctx,
		`DELETE FROM swaps WHERE id = ? AND status = ?`, swapID, model.SwapStatusPending,
	)
	if err != nil {
		return fmt.Errorf("cancelling swap: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrInvalidState
	}
	return nil
}

// GetSwap returns a swap visible to the caller. Only the two participants
// may view a swap.
func GetSwap(ctx context.Context, db *sql.DB, swapID, callerID int64) (*model.Swap, error) {
	swap, err := getSwap(ctx, db, swapID)
	if err != nil {
		return nil, err
	}
	if swap == nil {
		return nil, ErrNotFound
	}
	if swap.RequesterID != callerID && swap.OwnerID != callerID {
		return nil, ErrNotAllowed
	}
	return swap, nil
}

// ListSwapsForUser returns swaps where the user is requester or owner.
func ListSwapsForUser(ctx context.Context, db *sql.DB, userID int64) ([]model.Swap, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+swapColumns+swapJoins+`
		 WHERE s.requester_id = ? OR s.owner_id = ?
		 ORDER BY s.created_at DESC, s.id DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing swaps for user: %w", err)
	}
	defer rows.Close()

	return scanSwaps(rows)
}

// ListSwaps returns all swaps, newest first.
func ListSwaps(ctx context.Context, db *sql.DB) ([]model.Swap, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+swapColumns+swapJoins+` ORDER BY s.created_at DESC, s.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing swaps: %w", err)
	}
	defer rows.Close()

	return scanSwaps(rows)
}

type authzCheck int

const ownerOnly authzCheck = iota

// transitionSwap applies a single-record status transition with an
// ownership guard and a required source status.
func transitionSwap(ctx context.Context, db *sql.DB, swapID, callerID int64, check authzCheck, from, to string) (*model.Swap, error) {
	var ownerID int64
	var status string
	err := db.QueryRowContext(ctx,
		`SELECT owner_id, status FROM swaps WHERE id = ?`, swapID,
	).Scan(&ownerID, &status)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading swap: %w", err)
	}

	if check == ownerOnly && callerID != ownerID {
		return nil, ErrNotAllowed
	}
	if status != from {
		return nil, ErrInvalidState
	}

	// Guard again in the UPDATE so a concurrent transition loses cleanly.
	result, err := db.ExecContext(ctx,
		`UPDATE swaps SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		to, swapID, from,
	)
	if err != nil {
		return nil, fmt.Errorf("updating swap status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrInvalidState
	}

	return getSwap(ctx, db, swapID)
}

// getSwap returns a swap by ID with joined display fields, nil if missing.
func getSwap(ctx context.Context, db *sql.DB, id int64) (*model.Swap, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+swapColumns+swapJoins+` WHERE s.id = ?`, id,
	)
	swap, err := scanSwap(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting swap: %w", err)
	}
	return swap, nil
}

func scanSwap(scan func(...any) error) (*model.Swap, error) {
	s := &model.Swap{}
	var message sql.NullString
	var pointsCost sql.NullInt64
	err := scan(&s.ID, &s.ItemID, &s.RequesterID, &s.OwnerID, &s.Kind, &s.Status,
		&message, &pointsCost, &s.CreatedAt, &s.UpdatedAt, &s.CompletedAt,
		&s.ItemTitle, &s.RequesterName, &s.OwnerName)
	if err != nil {
		return nil, err
	}
	s.Message = message.String
	s.PointsCost = int(pointsCost.Int64)
	return s, nil
}

func scanSwaps(rows *sql.Rows) ([]model.Swap, error) {
	var swaps []model.Swap
	for rows.Next() {
		s, err := scanSwap(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning swap: %w", err)
		}
		swaps = append(swaps, *s)
	}
	return swaps, rows.Err()
}
