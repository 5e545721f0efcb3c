package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Latfiansya/198-APIKeyGenerator/internal/model"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/store"
)

// bcryptCost matches the work factor the admin accounts were originally
// hashed with; changing it only affects newly registered admins.
const bcryptCost = 10

var (
	// ErrInvalidCredentials is returned for both unknown emails and wrong
	// passwords, so callers cannot enumerate registered admin accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when registering an email that already has
	// an admin account.
	ErrEmailTaken = errors.New("email already registered")
)

// AuthService handles admin account registration and credential checks.
// Login confirms credentials and nothing more: no session or token is minted,
// and every call is independently authenticated.
type AuthService struct {
	store *store.Store
}

// NewAuthService creates an AuthService.
func NewAuthService(st *store.Store) *AuthService {
	return &AuthService{store: st}
}

// Register stores a new admin with a bcrypt hash of the password, keyed by
// unique email.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &model.Admin{Email: email, PasswordHash: string(hash)}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return admin, nil
}

// Login verifies the password against the stored hash for the given email.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	admin, err := s.store.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("look up admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
