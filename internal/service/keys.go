package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Latfiansya/198-APIKeyGenerator/internal/metrics"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/model"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/store"
)

const (
	// keyPrefix marks generated secrets as API keys at a glance.
	keyPrefix = "sk-"
	// keyEntropyBytes is the random payload per key. 24 bytes makes a
	// collision astronomically unlikely, but the store's UNIQUE constraint
	// still backstops it.
	keyEntropyBytes = 24
)

var (
	// ErrInvalidKey is returned when a presented secret matches no issued key.
	ErrInvalidKey = errors.New("invalid api key")

	// ErrGenerationConflict is returned when a freshly drawn secret collides
	// with an existing one. Retrying is safe: every attempt draws new
	// randomness and leaves no partial state behind.
	ErrGenerationConflict = errors.New("generated key already exists")
)

// KeyService orchestrates key generation, validation, and usage recording.
// It holds no state between calls; the store is the single source of truth,
// so concurrent Generate and Validate calls need no coordination here.
type KeyService struct {
	store   *store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewKeyService creates a KeyService.
func NewKeyService(st *store.Store, m *metrics.Metrics, logger *slog.Logger) *KeyService {
	return &KeyService{store: st, metrics: m, logger: logger}
}

// Generate draws a new random secret, persists it, and returns the plaintext
// to the caller. The secret is the stored value itself: it is the bearer
// credential the store manages, not a password, so it is never hashed.
func (s *KeyService) Generate(ctx context.Context) (string, error) {
	buf := make([]byte, keyEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("draw key randomness: %w", err)
	}
	secret := keyPrefix + base64.RawURLEncoding.EncodeToString(buf)

	key := &model.APIKey{Key: secret}
	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return "", ErrGenerationConflict
		}
		return "", fmt.Errorf("persist api key: %w", err)
	}

	s.metrics.KeysGeneratedTotal.Inc()
	return secret, nil
}

// Validate checks a presented secret against the issued keys. A hit appends
// one usage event and returns the key's id; a miss returns ErrInvalidKey and
// writes nothing.
//
// The usage append is best-effort: validation has already succeeded by the
// time the event is written, and a ledger failure must not downgrade that
// answer. A dropped write is logged and counted instead.
func (s *KeyService) Validate(ctx context.Context, secret string) (int64, error) {
	key, err := s.store.GetAPIKeyBySecret(ctx, secret)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.ValidationsTotal.WithLabelValues("invalid").Inc()
			return 0, ErrInvalidKey
		}
		s.metrics.ValidationsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("look up api key: %w", err)
	}

	if err := s.store.InsertUsageEvent(ctx, key.ID, time.Time{}); err != nil {
		s.logger.Error("usage event dropped", "key_id", key.ID, "error", err)
		s.metrics.UsageLogDroppedTotal.Inc()
	}

	s.metrics.ValidationsTotal.WithLabelValues("valid").Inc()
	return key.ID, nil
}
