package model

import "time"

// LivenessWindow is the trailing period used to classify a key as online.
// A key with at least one usage event inside the window counts as online;
// the boundary is inclusive.
const LivenessWindow = 30 * 24 * time.Hour

// Key liveness states derived from the usage log.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// UsageEvent records that a key was presented and validated at a point in
// time. Rows are append-only and never deleted.
type UsageEvent struct {
	ID        int64     `json:"id" db:"id"`
	APIKeyID  int64     `json:"api_key_id" db:"api_key_id"`
	CheckedAt time.Time `json:"checked_at" db:"checked_at"`
}

// UserKeyStatus is one row of the admin dashboard report: a user profile
// joined with its key and the derived liveness status.
type UserKeyStatus struct {
	FirstName string `json:"firstName" db:"first_name"`
	LastName  string `json:"lastName" db:"last_name"`
	Email     string `json:"email" db:"email"`
	Key       string `json:"key" db:"key"`
	Status    string `json:"status" db:"status"`
}
