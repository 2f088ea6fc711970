package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/rewearhq/rewear/internal/imaging"
	"github.com/rewearhq/rewear/internal/model"
	"github.com/rewearhq/rewear/internal/store"
)

// ItemsHandler handles listing CRUD and browsing endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

// maxImages is the photo count limit per listing.
const maxImages = 5

// List handles GET /api/items. Public browsing only ever sees approved
// listings; the status filter defaults to available.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := q.Get("status")
	if status == "" {
		status = model.ItemStatusAvailable
	}
	if !model.ValidItemStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	approved := true
	items, err := store.ListItems(r.Context(), h.DB, store.ItemFilter{
		Status:    status,
		Category:  q.Get("category"),
		Size:      q.Get("size"),
		Condition: q.Get("condition"),
		Search:    q.Get("search"),
		Approved:  &approved,
	})
	if err != nil {
		storeError(w, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Featured handles GET /api/items/featured.
func (h *ItemsHandler) Featured(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListFeaturedItems(r.Context(), h.DB, 6)
	if err != nil {
		storeError(w, err, "failed to list featured items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// ListMine handles GET /api/items/user/me.
func (h *ItemsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	items, err := store.ListItemsByOwner(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, err, "failed to list your items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items: a multipart form with listing fields and
// up to five photos.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	// Photos are capped at 5 MB each.
	r.Body = http.MaxBytesReader(w, r.Body, (maxImages+1)*5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid multipart form or form too large")
		return
	}

	points, _ := strconv.Atoi(r.FormValue("points"))
	fields := model.ItemFields{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Type:        r.FormValue("type"),
		Size:        r.FormValue("size"),
		Condition:   r.FormValue("condition"),
		Points:      points,
		Tags:        r.Form["tags"],
	}

	if errs := fields.Validate(); len(errs) > 0 {
		jsonFieldErrors(w, errs)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) > maxImages {
		jsonFieldErrors(w, []model.FieldError{{Field: "images", Message: "at most 5 images allowed"}})
		return
	}

	// Validate and process the photos before touching the database, so a
	// bad upload never leaves a half-created listing.
	var processed []*imaging.ProcessResult
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			jsonError(w, http.StatusBadRequest, "failed to read uploaded image")
			return
		}
		result, err := imaging.Process(file)
		file.Close()
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		processed = append(processed, result)
	}

	item, err := store.CreateItem(r.Context(), h.DB, claims.UserID, fields, claims.Role == model.RoleAdmin)
	if err != nil {
		storeError(w, err, "failed to create item")
		return
	}

	for i, p := range processed {
		if _, err := store.AddItemImage(r.Context(), h.DB, item.ID, i, p.Data, p.MIME); err != nil {
			storeError(w, err, "failed to save image")
			return
		}
	}

	// Re-read to pick up the image URLs.
	item, err = store.GetItem(r.Context(), h.DB, item.ID)
	if err != nil {
		storeError(w, err, "failed to load created item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

type updateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Points      *int    `json:"points"`
	Status      *string `json:"status"`
}

// Update handles PUT /api/items/{id}. Owner or admin only.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.OwnerID != claims.UserID && claims.Role != model.RoleAdmin {
		jsonError(w, http.StatusForbidden, "not authorized to update this item")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := store.ItemPatch{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Status:      req.Status,
	}
	if errs := patch.Validate(); len(errs) > 0 {
		jsonFieldErrors(w, errs)
		return
	}

	updated, err := store.UpdateItem(r.Context(), h.DB, id, patch)
	if err != nil {
		storeError(w, err, "failed to update item")
		return
	}

	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}. Owner or admin only.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.OwnerID != claims.UserID && claims.Role != model.RoleAdmin {
		jsonError(w, http.StatusForbidden, "not authorized to delete this item")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// GetImage handles GET /api/items/{id}/images/{imageID}.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	imageID, err := strconv.ParseInt(r.PathValue("imageID"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, itemID, imageID)
	if err != nil {
		storeError(w, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
