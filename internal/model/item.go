package model

import "time"

// Item is a priced entry owned by a user.
// OwnerID is not checked against existing users.
type Item struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Price       float64    `json:"price"`
	OwnerID     int64      `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// NewItem holds the fields required to create an item.
type NewItem struct {
	Title       string
	Description *string
	Price       float64
	OwnerID     int64
}

// ItemPatch is a partial update; nil fields are left unchanged.
type ItemPatch struct {
	Title       *string
	Description *string
	Price       *float64
}

// Apply writes the patch onto it and stamps UpdatedAt.
// Pointer fields are copied so the patch and the item never share storage.
func (p ItemPatch) Apply(it *Item, now time.Time) {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		desc := *p.Description
		it.Description = &desc
	}
	if p.Price != nil {
		it.Price = *p.Price
	}
	stamp := now
	it.UpdatedAt = &stamp
}

// OwnedBy reports whether the item belongs to the given user id.
func (it *Item) OwnedBy(userID int64) bool {
	return it.OwnerID == userID
}
