package model

import "time"

// User is an end-user profile bound 1:1 to an API key. It exists only to
// feed the dashboard report; it carries no invariants of its own beyond
// referencing a valid key id.
type User struct {
	ID        int64     `json:"id" db:"id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	APIKeyID  int64     `json:"api_key_id" db:"api_key_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
