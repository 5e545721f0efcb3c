package service

import (
	"context"
	"time"

	"github.com/Latfiansya/198-APIKeyGenerator/internal/model"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/store"
)

// LivenessService derives a coarse online/offline signal per key from the
// usage log. It is a pure function of the ledger's contents at query time:
// no caching, no incremental state, recomputed fresh per query.
type LivenessService struct {
	store *store.Store
}

// NewLivenessService creates a LivenessService.
func NewLivenessService(st *store.Store) *LivenessService {
	return &LivenessService{store: st}
}

// StatusOf reports whether the key has at least one usage event inside the
// trailing liveness window ending at asOf. An event exactly at the window
// boundary counts as online. The zero asOf means "now".
func (s *LivenessService) StatusOf(ctx context.Context, keyID int64, asOf time.Time) (string, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	online, err := s.store.HasUsageSince(ctx, keyID, asOf.Add(-model.LivenessWindow))
	if err != nil {
		return "", err
	}
	if online {
		return model.StatusOnline, nil
	}
	return model.StatusOffline, nil
}

// Dashboard returns the admin report: every user/key pair with its derived
// status, computed in a single query. The zero asOf means "now".
func (s *LivenessService) Dashboard(ctx context.Context, asOf time.Time) ([]model.UserKeyStatus, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return s.store.DashboardRows(ctx, asOf.Add(-model.LivenessWindow))
}
