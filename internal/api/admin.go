package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rewearhq/rewear/internal/model"
	"github.com/rewearhq/rewear/internal/store"
)

// AdminHandler handles moderation endpoints. Every route is behind
// RequireAdmin in the router.
type AdminHandler struct {
	DB *sql.DB
}

// PendingItems handles GET /api/admin/pending-items.
func (h *AdminHandler) PendingItems(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListPendingItems(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list pending items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Items handles GET /api/admin/items: the unfiltered moderation view,
// optionally narrowed by status and approval.
func (h *AdminHandler) Items(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.ItemFilter{Status: q.Get("status")}
	if filter.Status != "" && !model.ValidItemStatus(filter.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if v := q.Get("approved"); v != "" {
		approved, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid approved filter")
			return
		}
		filter.Approved = &approved
	}

	items, err := store.ListItems(r.Context(), h.DB, filter)
	if err != nil {
		storeError(w, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Users handles GET /api/admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Swaps handles GET /api/admin/swaps.
func (h *AdminHandler) Swaps(w http.ResponseWriter, r *http.Request) {
	swaps, err := store.ListSwaps(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list swaps")
		return
	}
	if swaps == nil {
		swaps = []model.Swap{}
	}
	jsonResponse(w, http.StatusOK, swaps)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to compute stats")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Activity handles GET /api/admin/activity.
func (h *AdminHandler) Activity(w http.ResponseWriter, r *http.Request) {
	entries, err := store.RecentActivity(r.Context(), h.DB, 10)
	if err != nil {
		storeError(w, err, "failed to list activity")
		return
	}
	if entries == nil {
		entries = []store.ActivityEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// ApproveItem handles PUT /api/admin/items/{id}/approve.
func (h *AdminHandler) ApproveItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.ApproveItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to approve item")
		return
	}

	slog.Info("item approved", "item", id)
	jsonResponse(w, http.StatusOK, item)
}

type rejectItemRequest struct {
	Reason string `json:"reason"`
}

// RejectItem handles PUT /api/admin/items/{id}/reject.
func (h *AdminHandler) RejectItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req rejectItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if l := len(req.Reason); l < 5 || l > 200 {
		jsonFieldErrors(w, []model.FieldError{{Field: "reason", Message: "must be between 5 and 200 characters"}})
		return
	}

	item, err := store.RejectItem(r.Context(), h.DB, id, req.Reason)
	if err != nil {
		storeError(w, err, "failed to reject item")
		return
	}

	slog.Info("item rejected", "item", id, "reason", req.Reason)
	jsonResponse(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/admin/items/{id}.
func (h *AdminHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete item")
		return
	}

	slog.Info("item removed by admin", "item", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item removed"})
}

// BanUser handles PUT /api/admin/users/{id}/ban.
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	h.setUserStatus(w, r, model.UserStatusBanned)
}

// ActivateUser handles PUT /api/admin/users/{id}/activate.
func (h *AdminHandler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserStatus(w, r, model.UserStatusActive)
}

func (h *AdminHandler) setUserStatus(w http.ResponseWriter, r *http.Request, status string) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := store.SetUserStatus(r.Context(), h.DB, id, status); err != nil {
		storeError(w, err, "failed to update user status")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to load user")
		return
	}

	slog.Info("user status changed", "user", id, "status", status)
	jsonResponse(w, http.StatusOK, user)
}

type setPointsRequest struct {
	Points int `json:"points"`
}

// SetUserPoints handles PUT /api/admin/users/{id}/points. This overwrites
// the balance outright; it is not a ledger adjustment.
func (h *AdminHandler) SetUserPoints(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req setPointsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Points < 0 {
		jsonFieldErrors(w, []model.FieldError{{Field: "points", Message: "must be non-negative"}})
		return
	}

	if err := store.SetUserPoints(r.Context(), h.DB, id, req.Points); err != nil {
		storeError(w, err, "failed to set user points")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to load user")
		return
	}

	slog.Info("user points overridden", "user", id, "points", req.Points)
	jsonResponse(w, http.StatusOK, user)
}
