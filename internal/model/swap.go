package model

import "time"

// Swap represents a swap request or a points redemption for an item.
// It references its item and both users by ID only.
type Swap struct {
	ID          int64      `json:"id"`
	ItemID      int64      `json:"item_id"`
	RequesterID int64      `json:"requester_id"`
	OwnerID     int64      `json:"owner_id"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	Message     string     `json:"message,omitempty"`
	PointsCost  int        `json:"points_cost,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Joined fields (not always populated).
	ItemTitle     string `json:"item_title,omitempty"`
	RequesterName string `json:"requester_name,omitempty"`
	OwnerName     string `json:"owner_name,omitempty"`
}

// Swap kinds.
const (
	SwapKindDirect     = "direct_swap"
	SwapKindRedemption = "points_redemption"
)

// Swap statuses. Direct swaps move pending -> accepted -> completed or
// pending -> rejected. Redemptions are created completed. Cancelling a
// pending request deletes the record instead of marking it.
const (
	SwapStatusPending   = "pending"
	SwapStatusAccepted  = "accepted"
	SwapStatusRejected  = "rejected"
	SwapStatusCompleted = "completed"
)
