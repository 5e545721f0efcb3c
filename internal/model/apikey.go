package model

import "time"

// APIKey is an opaque bearer credential issued by this service. The secret is
// the literal persisted value, not a hash: the key itself is the credential
// the store manages. Keys are write-once; there is no revocation path.
type APIKey struct {
	ID        int64     `json:"id" db:"id"`
	Key       string    `json:"key" db:"key"` // "sk-" + 24 random bytes, base64url
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
