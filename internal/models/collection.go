package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// ItemCondition describes the physical state of an owned figure
type ItemCondition string

const (
	ConditionNew     ItemCondition = "new"
	ConditionUsed    ItemCondition = "used"
	ConditionDamaged ItemCondition = "damaged"
)

// IsValidCondition reports whether c is a known condition
func IsValidCondition(c ItemCondition) bool {
	switch c {
	case ConditionNew, ConditionUsed, ConditionDamaged:
		return true
	default:
		return false
	}
}

// OwnershipRecord marks a catalog item as owned by a user, with packaging
// and condition metadata. At most one record exists per (user, item) pair;
// the database enforces this with a unique constraint.
type OwnershipRecord struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId,omitempty"`
	ItemID    string        `json:"itemId"`
	Boxed     bool          `json:"boxed"`
	Condition ItemCondition `json:"condition"`
	// ValuePaid is stored in the reference currency (EUR) and converted
	// for display only
	ValuePaid *float64  `json:"valuePaid,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SeriesCompletion reports owned-vs-available progress for one series
type SeriesCompletion struct {
	Series string `json:"series"`
	Owned  int    `json:"owned"`
	Total  int    `json:"total"`
}

// CollectionStats summarizes a user's collection
type CollectionStats struct {
	TotalOwned     int                   `json:"totalOwned"`
	BoxedCount     int                   `json:"boxedCount"`
	ByCondition    map[ItemCondition]int `json:"byCondition"`
	TotalValuePaid float64               `json:"totalValuePaid"`
	WishlistCount  int                   `json:"wishlistCount"`
	Series         []SeriesCompletion    `json:"series,omitempty"`
}

// CollectionResponse represents the response for collection queries
type CollectionResponse struct {
	Records    []OwnershipRecord `json:"records"`
	TotalCount int               `json:"totalCount"`
}

// ErrInvalidValuePaid is returned when a value-paid string cannot be parsed
// into a non-negative amount
var ErrInvalidValuePaid = errors.New("value paid must be a non-negative number")

// ParseValuePaid parses user-entered value-paid text. Comma is accepted as
// the decimal separator. Empty text clears the value (returns nil).
func ParseValuePaid(text string) (*float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	text = strings.ReplaceAll(text, ",", ".")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, ErrInvalidValuePaid
	}

	return &v, nil
}
