package models

import "time"

// WishlistRecord marks a catalog item as desired but not owned by a user.
// Adding the item to the collection removes the wishlist row in the same
// transaction, so an item is never owned and wishlisted at once.
type WishlistRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	ItemID    string    `json:"itemId"`
	CreatedAt time.Time `json:"createdAt"`
}

// WishlistResponse represents the response for wishlist queries
type WishlistResponse struct {
	Records    []WishlistRecord `json:"records"`
	TotalCount int              `json:"totalCount"`
}
