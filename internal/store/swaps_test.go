package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/rewearhq/rewear/internal/db"
	"github.com/rewearhq/rewear/internal/model"
)

func newTestUser(t *testing.T, database *sql.DB, email string, points int) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, email, "Test User", "hash", model.RoleUser, points)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func newTestItem(t *testing.T, database *sql.DB, ownerID int64, points int) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, ownerID, model.ItemFields{
		Title:       "Vintage Denim Jacket",
		Description: "Classic blue denim jacket in excellent condition.",
		Category:    "Outerwear",
		Type:        "Jacket",
		Size:        "M",
		Condition:   "Excellent",
		Points:      points,
		Tags:        []string{"vintage", "denim"},
	}, true)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

func TestRequestSwap(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "owner@rewear.test", 1000)
	requester := newTestUser(t, database, "requester@rewear.test", 100)
	item := newTestItem(t, database, owner.ID, 150)

	swap, err := CreateSwapRequest(ctx, database, requester.ID, item.ID, "Would love to trade for this!")
	if err != nil {
		t.Fatalf("CreateSwapRequest: %v", err)
	}
	if swap.Status != model.SwapStatusPending {
		t.Errorf("expected status pending, got %q", swap.Status)
	}
	if swap.Kind != model.SwapKindDirect {
		t.Errorf("expected kind direct_swap, got %q", swap.Kind)
	}
	if swap.OwnerID != owner.ID {
		t.Errorf("expected owner %d, got %d", owner.ID, swap.OwnerID)
	}

	// A fresh request leaves the item untouched.
	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("expected item still available, got %q", got.Status)
	}
}

func TestRequestSwapOwnItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "owner@rewear.test", 1000)
	item := newTestItem(t, database, owner.ID, 150)

	_, err := CreateSwapRequest(ctx, database, owner.ID, item.ID, "")
	if !errors.Is(err, ErrOwnItem) {
		t.Errorf("expected ErrOwnItem, got %v", err)
	}
}

func TestRequestSwapUnavailableItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "owner@rewear.test", 1000)
	requester := newTestUser(t, database, "requester@rewear.test", 100)
	item := newTestItem(t, database, owner.ID, 150)

	swapped := model.ItemStatusSwapped
	if _, err := UpdateItem(ctx, database, item.ID, ItemPatch{Status: &swapped}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	_, err := CreateSwapRequest(ctx, database, requester.ID, item.ID, "")
	if !errors.Is(err, ErrItemUnavailable) {
		t.Errorf("expected ErrItemUnavailable, got %v", err)
	}
}

func TestRequestSwapMissingItem(t *testing.T) {
	database := db.NewTestDB(t)
	requester := newTestUser(t, database, "requester@rewear.test", 100)

	_, err := CreateSwapRequest(context.Background(), database, requester.ID, 9999, "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedeemInsufficientPoints(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	buyer := newTestUser(t, database, "u2@rewear.test", 100)
	item := newTestItem(t, database, owner.ID, 150)

	_, _, err := Redeem(ctx, database, buyer.ID, item.ID)
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	// All-or-nothing: neither the balance nor the item changed.
	u, _ := GetUser(ctx, database, buyer.ID)
	if u.Points != 100 {
		t.Errorf("expected balance unchanged at 100, got %d", u.Points)
	}
	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("expected item still available, got %q", got.Status)
	}
	swaps, _ := ListSwaps(ctx, database)
	if len(swaps) != 0 {
		t.Errorf("expected no swap records after failed redeem, got %d", len(swaps))
	}
}

func TestRedeemSuccess(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	buyer := newTestUser(t, database, "u2@rewear.test", 200)
	item := newTestItem(t, database, owner.ID, 150)

	swap, remaining, err := Redeem(ctx, database, buyer.ID, item.ID)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if remaining != 50 {
		t.Errorf("expected remaining balance 50, got %d", remaining)
	}
	if swap.Status != model.SwapStatusCompleted {
		t.Errorf("expected completed redemption, got %q", swap.Status)
	}
	if swap.Kind != model.SwapKindRedemption {
		t.Errorf("expected kind points_redemption, got %q", swap.Kind)
	}
	if swap.PointsCost != 150 {
		t.Errorf("expected points_cost 150, got %d", swap.PointsCost)
	}
	if swap.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}

	u, _ := GetUser(ctx, database, buyer.ID)
	if u.Points != 50 {
		t.Errorf("expected balance 50, got %d", u.Points)
	}
	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusSwapped {
		t.Errorf("expected item swapped, got %q", got.Status)
	}
}

func TestRedeemOwnItem(t *testing.T) {
	database := db.NewTestDB(t)

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	item := newTestItem(t, database, owner.ID, 150)

	_, _, err := Redeem(context.Background(), database, owner.ID, item.ID)
	if !errors.Is(err, ErrOwnItem) {
		t.Errorf("expected ErrOwnItem, got %v", err)
	}
}

func TestRedeemedItemCannotBeRedeemedAgain(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	b1 := newTestUser(t, database, "u2@rewear.test", 200)
	b2 := newTestUser(t, database, "u3@rewear.test", 200)
	item := newTestItem(t, database, owner.ID, 150)

	if _, _, err := Redeem(ctx, database, b1.ID, item.ID); err != nil {
		t.Fatalf("first Redeem: %v", err)
	}
	_, _, err := Redeem(ctx, database, b2.ID, item.ID)
	if !errors.Is(err, ErrItemUnavailable) {
		t.Errorf("expected ErrItemUnavailable on second redeem, got %v", err)
	}

	// The second buyer keeps their points.
	u, _ := GetUser(ctx, database, b2.ID)
	if u.Points != 200 {
		t.Errorf("expected second buyer balance unchanged, got %d", u.Points)
	}
}

func TestDirectSwapFullLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	requester := newTestUser(t, database, "u2@rewear.test", 100)
	item := newTestItem(t, database, owner.ID, 150)

	swap, err := CreateSwapRequest(ctx, database, requester.ID, item.ID, "Interested in a trade.")
	if err != nil {
		t.Fatalf("CreateSwapRequest: %v", err)
	}

	accepted, err := AcceptSwap(ctx, database, swap.ID, owner.ID)
	if err != nil {
		t.Fatalf("AcceptSwap: %v", err)
	}
	if accepted.Status != model.SwapStatusAccepted {
		t.Errorf("expected accepted, got %q", accepted.Status)
	}

	// Acceptance alone does not take the item off the market.
	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("expected item still available after accept, got %q", got.Status)
	}

	completed, err := CompleteSwap(ctx, database, swap.ID, requester.ID)
	if err != nil {
		t.Fatalf("CompleteSwap: %v", err)
	}
	if completed.Status != model.SwapStatusCompleted {
		t.Errorf("expected completed, got %q", completed.Status)
	}
	if completed.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}

	got, _ = GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusSwapped {
		t.Errorf("expected item swapped after completion, got %q", got.Status)
	}
}

func TestAcceptOnlyByOwner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	requester := newTestUser(t, database, "u2@rewear.test", 100)
	item := newTestItem(t, database, owner.ID, 150)

	swap, _ := CreateSwapRequest(ctx, database, requester.ID, item.ID, "")

	if _, err := AcceptSwap(ctx, database, swap.ID, requester.ID); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("expected ErrNotAllowed for requester accept, got %v", err)
	}
	if _, err := RejectSwap(ctx, database, swap.ID, requester.ID); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("expected ErrNotAllowed for requester reject, got %v", err)
	}
}

func TestCompleteRequiresAccepted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	requester := newTestUser(t, database, "u2@rewear.test", 100)
	item := newTestItem(t, database, owner.ID, 150)

	swap, _ := CreateSwapRequest(ctx, database, requester.ID, item.ID, "")

	// Cannot jump straight from pending to completed.
	if _, err := CompleteSwap(ctx, database, swap.ID, requester.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState completing a pending swap, got %v", err)
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	requester := newTestUser(t, database, "u2@rewear.test", 100)
	item := newTestItem(t, database, owner.ID, 150)

	swap, _ := CreateSwapRequest(ctx, database, requester.ID, item.ID, "")
	if _, err := RejectSwap(ctx, database, swap.ID, owner.ID); err != nil {
		t.Fatalf("RejectSwap: %v", err)
	}

	// No transition leaves rejected.
	if _, err := AcceptSwap(ctx, database, swap.ID, owner.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState accepting a rejected swap, got %v", err)
	}
	if _, err := CompleteSwap(ctx, database, swap.ID, owner.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState completing a rejected swap, got %v", err)
	}
	if err := CancelSwap(ctx, database, swap.ID, requester.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState cancelling a rejected swap, got %v", err)
	}

	// Rejection leaves the item on the market.
	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusAvailable {
		t.Errorf("expected item still available after reject, got %q", got.Status)
	}
}

func TestCancelRemovesRecord(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	requester := newTestUser(t, database, "u2@rewear.test", 100)
	item := newTestItem(t, database, owner.ID, 150)

	swap, _ := CreateSwapRequest(ctx, database, requester.ID, item.ID, "")

	// Only the requester may cancel.
	if err := CancelSwap(ctx, database, swap.ID, owner.ID); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("expected ErrNotAllowed for owner cancel, got %v", err)
	}

	if err := CancelSwap(ctx, database, swap.ID, requester.ID); err != nil {
		t.Fatalf("CancelSwap: %v", err)
	}

	// Cancelled requests leave no trace.
	swaps, _ := ListSwaps(ctx, database)
	if len(swaps) != 0 {
		t.Errorf("expected swap record gone after cancel, got %d records", len(swaps))
	}
}

func TestCancelOnlyRemovesPending(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	requester := newTestUser(t, database, "u2@rewear.test", 100)
	item := newTestItem(t, database, owner.ID, 150)

	swap, _ := CreateSwapRequest(ctx, database, requester.ID, item.ID, "")
	if _, err := AcceptSwap(ctx, database, swap.ID, owner.ID); err != nil {
		t.Fatalf("AcceptSwap: %v", err)
	}

	// Once the owner has accepted, the requester can no longer withdraw.
	if err := CancelSwap(ctx, database, swap.ID, requester.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState cancelling accepted swap, got %v", err)
	}

	got, err := GetSwap(ctx, database, swap.ID, requester.ID)
	if err != nil {
		t.Fatalf("GetSwap: %v", err)
	}
	if got.Status != model.SwapStatusAccepted {
		t.Errorf("expected swap still accepted, got %q", got.Status)
	}
}

func TestGetSwapParticipantsOnly(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	requester := newTestUser(t, database, "u2@rewear.test", 100)
	outsider := newTestUser(t, database, "u3@rewear.test", 100)
	item := newTestItem(t, database, owner.ID, 150)

	swap, _ := CreateSwapRequest(ctx, database, requester.ID, item.ID, "")

	if _, err := GetSwap(ctx, database, swap.ID, outsider.ID); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("expected ErrNotAllowed for outsider, got %v", err)
	}
	if _, err := GetSwap(ctx, database, swap.ID, owner.ID); err != nil {
		t.Errorf("owner should see the swap: %v", err)
	}
}

func TestListSwapsForUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "u1@rewear.test", 1000)
	requester := newTestUser(t, database, "u2@rewear.test", 100)
	outsider := newTestUser(t, database, "u3@rewear.test", 100)
	item := newTestItem(t, database, owner.ID, 150)

	CreateSwapRequest(ctx, database, requester.ID, item.ID, "")

	for _, uid := range []int64{owner.ID, requester.ID} {
		swaps, err := ListSwapsForUser(ctx, database, uid)
		if err != nil {
			t.Fatalf("ListSwapsForUser(%d): %v", uid, err)
		}
		if len(swaps) != 1 {
			t.Errorf("expected 1 swap for user %d, got %d", uid, len(swaps))
		}
	}

	swaps, _ := ListSwapsForUser(ctx, database, outsider.ID)
	if len(swaps) != 0 {
		t.Errorf("expected no swaps for outsider, got %d", len(swaps))
	}
}
