// Package models defines the marketplace entities and request schemas.
package models

import "time"

// User mirrors the identity provider's record. Rows are created either by
// the /clerk webhook or lazily on the first authenticated request.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// StudentSummary is the slice of a user shown on educator dashboards.
type StudentSummary struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}
