// Package journal holds the domain types shared across the aura system:
// users and their settings, documents, comments, facts and almanac days.
package journal

import (
	"encoding/json"
	"time"
)

// User is the owner of documents, comments and facts.
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Active   bool     `json:"is_active"`
	Settings Settings `json:"settings"`

	// Scanning is the advisory busy flag set for the duration of a
	// background scan run.
	Scanning bool `json:"is_scanning"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document is a unit of user-authored rich text that can be scanned.
type Document struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`

	// Content is the structured document tree as produced by the editor.
	Content json.RawMessage `json:"content,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// LastScannedAt is nil until the scanner completes a pass over the
	// document.
	LastScannedAt *time.Time `json:"last_scanned_at,omitempty"`

	Deleted bool `json:"is_deleted"`
}
