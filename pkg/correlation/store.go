// Package correlation maps gateway tracking ids back to ledger records
// while a payment is in flight.
package correlation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"makao/pkg/logger"

	redislib "github.com/redis/go-redis/v9"
)

// ErrNotFound no correlation entry for the tracking id. Callers fall
// back to the ledger's tracking id index.
var ErrNotFound = errors.New("correlation: entry not found")

// Entry in-flight payment context keyed by the gateway tracking id.
type Entry struct {
	PaymentID         uint64    `json:"payment_id"`
	Kind              string    `json:"kind"`
	Amount            string    `json:"amount"`
	UnitID            *uint64   `json:"unit_id,omitempty"`
	TenantID          *uint64   `json:"tenant_id,omitempty"`
	UserID            *uint64   `json:"user_id,omitempty"`
	Plan              string    `json:"plan,omitempty"`
	MerchantReference string    `json:"merchant_reference"`
	SessionID         string    `json:"session_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Store redis-backed correlation store.
type Store struct {
	rds    *redislib.Client
	prefix string
}

// NewStore creates a correlation store on the given redis client.
func NewStore(rds *redislib.Client, prefix string) *Store {
	return &Store{rds: rds, prefix: prefix}
}

func (s *Store) key(trackingID string) string {
	return s.prefix + ":correlation:" + trackingID
}

// Put stores an entry under the tracking id with a TTL. A redis
// failure is logged but not returned, the ledger index still covers
// the lookup.
func (s *Store) Put(ctx context.Context, trackingID string, entry *Entry, ttl time.Duration) {
	raw, err := json.Marshal(entry)
	if err != nil {
		logger.LogIf(err)
		return
	}

	if err := s.rds.Set(ctx, s.key(trackingID), raw, ttl).Err(); err != nil {
		logger.ErrorString("Correlation", "Put", err.Error())
	}
}

// Get fetches an entry, returning ErrNotFound on a cache miss.
func (s *Store) Get(ctx context.Context, trackingID string) (*Entry, error) {
	raw, err := s.rds.Get(ctx, s.key(trackingID)).Bytes()
	if errors.Is(err, redislib.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete drops an entry once the payment reaches a terminal state.
func (s *Store) Delete(ctx context.Context, trackingID string) {
	if err := s.rds.Del(ctx, s.key(trackingID)).Err(); err != nil {
		logger.ErrorString("Correlation", "Delete", err.Error())
	}
}
