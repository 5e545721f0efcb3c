package model

import "time"

// Admin is a privileged account authorized to view the dashboard report.
// Passwords are stored as bcrypt hashes. Admin identity is unrelated to
// API-key identity, and no session is minted on login.
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // bcrypt hash, never expose
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
