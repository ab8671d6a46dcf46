package models

import "time"

// Item is a marketplace listing. Owner is fixed at creation time from the
// authenticated caller and is not reassignable through the public API.
type Item struct {
	ID          string    `json:"id"`
	OwnerID     int       `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Available   bool      `json:"available"`
	Views       int       `json:"views"`
	CreatedAt   time.Time `json:"created_at"`
}
