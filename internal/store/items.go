package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rewearhq/rewear/internal/model"
)

const itemColumns = `id, title, description, category, type, size, condition, tags,
	owner_id, status, points, approved, rejection_reason, approved_at, rejected_at,
	created_at, updated_at`

// CreateItem creates a new listing. Listings by admins are approved
// immediately; everyone else's wait for moderation.
func CreateItem(ctx context.Context, db *sql.DB, ownerID int64, fields model.ItemFields, autoApprove bool) (*model.Item, error) {
	tags, err := json.Marshal(fields.Tags)
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (title, description, category, type, size, condition, tags, owner_id, points, approved)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fields.Title, fields.Description, fields.Category, fields.Type, fields.Size,
		fields.Condition, string(tags), ownerID, fields.Points, autoApprove,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, with its image URLs populated.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	if err := attachImageURLs(ctx, db, []*model.Item{item}); err != nil {
		return nil, err
	}
	return item, nil
}

// ItemFilter narrows ListItems results. All conditions are conjunctive.
type ItemFilter struct {
	Status    string
	Category  string
	Size      string
	Condition string
	Search    string // case-insensitive substring over title, description, tags
	Approved  *bool  // nil means any; public browsing filters to approved only
}

// ListItems returns listings matching the filter, newest first.
func ListItems(ctx context.Context, db *sql.DB, filter ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Approved != nil {
		query += ` AND approved = ?`
		args = append(args, *filter.Approved)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Size != "" {
		query += ` AND size = ?`
		args = append(args, filter.Size)
	}
	if filter.Condition != "" {
		query += ` AND condition = ?`
		args = append(args, filter.Condition)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}

	// Search covers tags too, which live in a JSON column, so match in Go
	// instead of wrestling SQL LIKE over encoded arrays.
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		matched := items[:0]
		for _, item := range items {
			if matchesSearch(item, needle) {
				matched = append(matched, item)
			}
		}
		items = matched
	}

	if err := attachImageURLsSlice(ctx, db, items); err != nil {
		return nil, err
	}
	return items, nil
}

func matchesSearch(item model.Item, needle string) bool {
	if strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.Description), needle) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// ListItemsByOwner returns every listing owned by a user, regardless of
// status or approval.
func ListItemsByOwner(ctx context.Context, db *sql.DB, ownerID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE owner_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items by owner: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if err := attachImageURLsSlice(ctx, db, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListFeaturedItems returns the newest browsable listings, for the
// landing-page carousel.
func ListFeaturedItems(ctx context.Context, db *sql.DB, limit int) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE status = ? AND approved = 1
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		model.ItemStatusAvailable, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing featured items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if err := attachImageURLsSlice(ctx, db, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ItemPatch holds optional updates to a listing. Nil fields are left as-is.
type ItemPatch struct {
	Title       *string
	Description *string
	Points      *int
	Status      *string
}

// Validate returns one entry per violated field.
func (p ItemPatch) Validate() []model.FieldError {
	var errs []model.FieldError
	if p.Title != nil {
		if l := len(*p.Title); l < 3 || l > 100 {
			errs = append(errs, model.FieldError{Field: "title", Message: "must be between 3 and 100 characters"})
		}
	}
	if p.Description != nil {
		if l := len(*p.Description); l < 10 || l > 500 {
			errs = append(errs, model.FieldError{Field: "description", Message: "must be between 10 and 500 characters"})
		}
	}
	if p.Points != nil && (*p.Points < 10 || *p.Points > 500) {
		errs = append(errs, model.FieldError{Field: "points", Message: "must be between 10 and 500"})
	}
	if p.Status != nil && !model.ValidItemStatus(*p.Status) {
		errs = append(errs, model.FieldError{Field: "status", Message: "must be one of: available, pending, swapped"})
	}
	return errs
}

// UpdateItem applies a patch to a listing.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, patch ItemPatch) (*model.Item, error) {
	sets := []string{"updated_at = CURRENT_TIMESTAMP"}
	var args []any

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Points != nil {
		sets = append(sets, "points = ?")
		args = append(args, *patch.Points)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}

	args = append(args, id)
	result, err := db.ExecContext(ctx,
		`UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return GetItem(ctx, db, id)
}

// DeleteItem removes a listing, its images and any swap records that
// reference it, in one transaction. Swaps hold a foreign key on the item,
// so they must go first.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM swaps WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("deleting item swap history: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item deletion: %w", err)
	}
	return nil
}

// ListPendingItems returns listings awaiting moderation.
func ListPendingItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE approved = 0 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if err := attachImageURLsSlice(ctx, db, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ApproveItem marks a listing approved and stamps the approval time.
func ApproveItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET approved = 1, approved_at = CURRENT_TIMESTAMP,
		        rejection_reason = NULL, rejected_at = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("approving item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return GetItem(ctx, db, id)
}

// RejectItem marks a listing not approved, recording the reason.
func RejectItem(ctx context.Context, db *sql.DB, id int64, reason string) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET approved = 0, rejection_reason = ?, rejected_at = CURRENT_TIMESTAMP,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, reason, id,
	)
	if err != nil {
		return nil, fmt.Errorf("rejecting item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return GetItem(ctx, db, id)
}

// AddItemImage stores a processed listing photo and returns its ID.
func AddItemImage(ctx context.Context, db *sql.DB, itemID int64, position int, data []byte, mime string) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO item_images (item_id, position, data, mime) VALUES (?, ?, ?, ?)`,
		itemID, position, data, mime,
	)
	if err != nil {
		return 0, fmt.Errorf("adding item image: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting image id: %w", err)
	}
	return id, nil
}

// GetItemImage returns a photo's data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, itemID, imageID int64) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM item_images WHERE id = ? AND item_id = ?`, imageID, itemID,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return data, mime, nil
}

// imageURL builds the serving path for a stored photo.
func imageURL(itemID, imageID int64) string {
	return fmt.Sprintf("/api/items/%d/images/%d", itemID, imageID)
}

func attachImageURLs(ctx context.Context, db *sql.DB, items []*model.Item) error {
	for _, item := range items {
		rows, err := db.QueryContext(ctx,
			`SELECT id FROM item_images WHERE item_id = ? ORDER BY position, id`, item.ID,
		)
		if err != nil {
			return fmt.Errorf("listing item images: %w", err)
		}

		urls := []string{}
		for rows.Next() {
			var imgID int64
			if err := rows.Scan(&imgID); err != nil {
				rows.Close()
				return fmt.Errorf("scanning image id: %w", err)
			}
			urls = append(urls, imageURL(item.ID, imgID))
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
		item.Images = urls
	}
	return nil
}

func attachImageURLsSlice(ctx context.Context, db *sql.DB, items []model.Item) error {
	ptrs := make([]*model.Item, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	return attachImageURLs(ctx, db, ptrs)
}

func scanItem(scan func(...any) error) (*model.Item, error) {
	item := &model.Item{}
	var tags string
	var reason sql.NullString
	err := scan(&item.ID, &item.Title, &item.Description, &item.Category, &item.Type,
		&item.Size, &item.Condition, &tags, &item.OwnerID, &item.Status, &item.Points,
		&item.Approved, &reason, &item.ApprovedAt, &item.RejectedAt,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.RejectionReason = reason.String
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	return item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
