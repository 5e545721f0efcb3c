package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/Latfiansya/198-APIKeyGenerator/internal/metrics"
	"github.com/Latfiansya/198-APIKeyGenerator/internal/store"
)

func newTestKeys(t *testing.T) (*KeyService, *store.Store) {
	t.Helper()
	st, err := store.OpenSQLite("")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewKeyService(st, metrics.New(nil), logger), st
}

func TestGenerateShape(t *testing.T) {
	svc, _ := newTestKeys(t)

	secret, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(secret, "sk-") {
		t.Errorf("secret %q missing sk- prefix", secret)
	}
	// 24 bytes of entropy base64url-encode to 32 characters.
	if got := len(strings.TrimPrefix(secret, "sk-")); got != 32 {
		t.Errorf("encoded payload length = %d, want 32", got)
	}
}

func TestGenerateUniqueSequential(t *testing.T) {
	svc, _ := newTestKeys(t)
	ctx := context.Background()

	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		secret, err := svc.Generate(ctx)
		if err != nil {
			t.Fatalf("Generate #%d: %v", i, err)
		}
		if _, dup := seen[secret]; dup {
			t.Fatalf("duplicate secret after %d generations: %q", i, secret)
		}
		seen[secret] = struct{}{}
	}
}

func TestGenerateUniqueConcurrent(t *testing.T) {
	svc, _ := newTestKeys(t)
	ctx := context.Background()

	const workers = 8
	const perWorker = 50

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				secret, err := svc.Generate(ctx)
				if err != nil {
					t.Errorf("Generate: %v", err)
					return
				}
				mu.Lock()
				seen[secret] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("got %d distinct secrets, want %d", len(seen), workers*perWorker)
	}
}

func TestValidateKnownKey(t *testing.T) {
	svc, st := newTestKeys(t)
	ctx := context.Background()

	secret, err := svc.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	keyID, err := svc.Validate(ctx, secret)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if keyID == 0 {
		t.Fatal("expected non-zero key id")
	}

	count, err := st.CountUsageEvents(ctx, keyID)
	if err != nil {
		t.Fatalf("CountUsageEvents: %v", err)
	}
	if count != 1 {
		t.Errorf("usage count = %d, want 1", count)
	}

	// Each successful validation appends exactly one more event.
	if _, err := svc.Validate(ctx, secret); err != nil {
		t.Fatalf("Validate again: %v", err)
	}
	count, _ = st.CountUsageEvents(ctx, keyID)
	if count != 2 {
		t.Errorf("usage count = %d, want 2", count)
	}
}

func TestValidateUnknownKeyHasNoSideEffects(t *testing.T) {
	svc, st := newTestKeys(t)
	ctx := context.Background()

	secret, err := svc.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	key, err := st.GetAPIKeyBySecret(ctx, secret)
	if err != nil {
		t.Fatalf("GetAPIKeyBySecret: %v", err)
	}

	_, err = svc.Validate(ctx, "sk-doesnotexist")
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}

	count, err := st.CountUsageEvents(ctx, key.ID)
	if err != nil {
		t.Fatalf("CountUsageEvents: %v", err)
	}
	if count != 0 {
		t.Errorf("usage count = %d, want 0 after failed validation", count)
	}
}

func TestValidateConcurrent(t *testing.T) {
	svc, st := newTestKeys(t)
	ctx := context.Background()

	secret, err := svc.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	key, err := st.GetAPIKeyBySecret(ctx, secret)
	if err != nil {
		t.Fatalf("GetAPIKeyBySecret: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := svc.Validate(ctx, secret)
			if err != nil {
				t.Errorf("Validate: %v", err)
				return
			}
			if id != key.ID {
				t.Errorf("validated key id = %d, want %d", id, key.ID)
			}
		}()
	}
	wg.Wait()

	count, err := st.CountUsageEvents(ctx, key.ID)
	if err != nil {
		t.Fatalf("CountUsageEvents: %v", err)
	}
	if count != workers {
		t.Errorf("usage count = %d, want %d", count, workers)
	}
}
