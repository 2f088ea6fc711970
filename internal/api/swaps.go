package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rewearhq/rewear/internal/model"
	"github.com/rewearhq/rewear/internal/store"
)

// SwapsHandler handles swap and redemption endpoints.
type SwapsHandler struct {
	DB *sql.DB
}

type swapRequestBody struct {
	ItemID  int64  `json:"item_id"`
	Message string `json:"message"`
}

type redeemRequestBody struct {
	ItemID int64 `json:"item_id"`
}

// Request handles POST /api/swaps/request.
func (h *SwapsHandler) Request(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req swapRequestBody
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == 0 {
		jsonFieldErrors(w, []model.FieldError{{Field: "item_id", Message: "required"}})
		return
	}
	if req.Message != "" && (len(req.Message) < 10 || len(req.Message) > 500) {
		jsonFieldErrors(w, []model.FieldError{{Field: "message", Message: "must be between 10 and 500 characters"}})
		return
	}

	swap, err := store.CreateSwapRequest(r.Context(), h.DB, claims.UserID, req.ItemID, req.Message)
	if err != nil {
		storeError(w, err, "failed to create swap request")
		return
	}

	slog.Info("swap requested", "swap", swap.ID, "item", swap.ItemID, "requester", claims.UserID)
	jsonResponse(w, http.StatusCreated, swap)
}

// Redeem handles POST /api/swaps/redeem.
func (h *SwapsHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req redeemRequestBody
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == 0 {
		jsonFieldErrors(w, []model.FieldError{{Field: "item_id", Message: "required"}})
		return
	}

	swap, remaining, err := store.Redeem(r.Context(), h.DB, claims.UserID, req.ItemID)
	if err != nil {
		storeError(w, err, "failed to redeem item")
		return
	}

	slog.Info("item redeemed", "swap", swap.ID, "item", swap.ItemID,
		"requester", claims.UserID, "cost", swap.PointsCost)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"swap":             swap,
		"remaining_points": remaining,
	})
}

// ListMine handles GET /api/swaps/me.
func (h *SwapsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	swaps, err := store.ListSwapsForUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, err, "failed to list swaps")
		return
	}
	if swaps == nil {
		swaps = []model.Swap{}
	}
	jsonResponse(w, http.StatusOK, swaps)
}

// Get handles GET /api/swaps/{id}.
func (h *SwapsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid swap id")
		return
	}

	swap, err := store.GetSwap(r.Context(), h.DB, id, claims.UserID)
	if err != nil {
		storeError(w, err, "failed to get swap")
		return
	}
	jsonResponse(w, http.StatusOK, swap)
}

// Accept handles PUT /api/swaps/{id}/accept.
func (h *SwapsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, store.AcceptSwap, "accepted")
}

// Reject handles PUT /api/swaps/{id}/reject.
func (h *SwapsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, store.RejectSwap, "rejected")
}

// Complete handles PUT /api/swaps/{id}/complete.
func (h *SwapsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, store.CompleteSwap, "completed")
}

func (h *SwapsHandler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, db *sql.DB, swapID, callerID int64) (*model.Swap, error), verb string) {

	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid swap id")
		return
	}

	swap, err := op(r.Context(), h.DB, id, claims.UserID)
	if err != nil {
		storeError(w, err, "failed to update swap")
		return
	}

	slog.Info("swap "+verb, "swap", swap.ID, "by", claims.UserID)
	jsonResponse(w, http.StatusOK, swap)
}

// Cancel handles DELETE /api/swaps/{id}.
func (h *SwapsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid swap id")
		return
	}

	if err := store.CancelSwap(r.Context(), h.DB, id, claims.UserID); err != nil {
		storeError(w, err, "failed to cancel swap")
		return
	}

	slog.Info("swap cancelled", "swap", id, "by", claims.UserID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "swap request cancelled"})
}
