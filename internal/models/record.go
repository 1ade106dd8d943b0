package models

import "time"

// SecretRecord is a stored secret plus its timing metadata. Every field
// except Active is immutable after creation; Active only ever flips from
// true to false, and retired records stay in storage as tombstones.
type SecretRecord struct {
	ID          string    `json:"id"`
	Value       string    `json:"-"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Active      bool      `json:"-"`
}
