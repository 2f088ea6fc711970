package model

import (
	"fmt"
	"strings"
	"time"
)

// Item represents a clothing listing.
type Item struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Type            string     `json:"type"`
	Size            string     `json:"size"`
	Condition       string     `json:"condition"`
	Tags            []string   `json:"tags"`
	Images          []string   `json:"images"`
	OwnerID         int64      `json:"owner_id"`
	Status          string     `json:"status"`
	Points          int        `json:"points"`
	Approved        bool       `json:"approved"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Item statuses.
const (
	ItemStatusAvailable = "available"
	ItemStatusPending   = "pending"
	ItemStatusSwapped   = "swapped"
)

// Categories lists the accepted item categories.
var Categories = []string{"Outerwear", "Tops", "Bottoms", "Dresses", "Shoes", "Accessories"}

// Sizes lists the accepted item sizes.
var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

// Conditions lists the accepted item conditions.
var Conditions = []string{"Excellent", "Good", "Fair", "Poor"}

// ValidItemStatus reports whether status is a known item status.
func ValidItemStatus(status string) bool {
	return status == ItemStatusAvailable || status == ItemStatusPending || status == ItemStatusSwapped
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// ItemFields holds the user-supplied fields of a new listing.
type ItemFields struct {
	Title       string
	Description string
	Category    string
	Type        string
	Size        string
	Condition   string
	Points      int
	Tags        []string
}

// Validate checks every field and returns one entry per violation,
// so the caller sees the full list rather than just the first problem.
func (f ItemFields) Validate() []FieldError {
	var errs []FieldError
	if l := len(f.Title); l < 3 || l > 100 {
		errs = append(errs, FieldError{"title", "must be between 3 and 100 characters"})
	}
	if l := len(f.Description); l < 10 || l > 500 {
		errs = append(errs, FieldError{"description", "must be between 10 and 500 characters"})
	}
	if !oneOf(f.Category, Categories) {
		errs = append(errs, FieldError{"category", "must be one of: " + strings.Join(Categories, ", ")})
	}
	if l := len(f.Type); l < 2 || l > 50 {
		errs = append(errs, FieldError{"type", "must be between 2 and 50 characters"})
	}
	if !oneOf(f.Size, Sizes) {
		errs = append(errs, FieldError{"size", "must be one of: " + strings.Join(Sizes, ", ")})
	}
	if !oneOf(f.Condition, Conditions) {
		errs = append(errs, FieldError{"condition", "must be one of: " + strings.Join(Conditions, ", ")})
	}
	if f.Points < 10 || f.Points > 500 {
		errs = append(errs, FieldError{"points", "must be between 10 and 500"})
	}
	if l := len(f.Tags); l < 1 || l > 10 {
		errs = append(errs, FieldError{"tags", "must contain between 1 and 10 tags"})
	}
	return errs
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
