package auth

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Revocations remembers logged-out token ids until the tokens would have
// expired anyway.
type Revocations struct {
	store *ristretto.Cache
}

func NewRevocations(numCounters, maxCost int64) (*Revocations, error) {
	if numCounters <= 0 {
		numCounters = 100000
	}
	if maxCost <= 0 {
		maxCost = 10000
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token revocation cache: %w", err)
	}
	return &Revocations{store: store}, nil
}

func (r *Revocations) Revoke(claims *Claims, now time.Time) {
	if r == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := claims.ExpiresAt.Time.Sub(now)
	if ttl <= 0 {
		return
	}
	r.store.SetWithTTL(claims.ID, struct{}{}, 1, ttl)
	r.store.Wait()
}

func (r *Revocations) IsRevoked(claims *Claims) bool {
	if r == nil || claims == nil || claims.ID == "" {
		return false
	}
	_, found := r.store.Get(claims.ID)
	return found
}

func (r *Revocations) Close() {
	if r == nil {
		return
	}
	r.store.Close()
}
