// Shutterfeed - Photo Sharing Feed and Social Graph Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shutterfeed

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/shutterfeed/internal/logging"
)

// Store types accepted by NewRevocationStore.
const (
	RevocationStoreMemory = "memory"
	RevocationStoreBadger = "badger"
)

var (
	// RevocationOperationsTotal counts revocation store operations.
	RevocationOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shutterfeed_token_revocation_operations_total",
			Help: "Total number of token revocation store operations",
		},
		[]string{"operation", "outcome"}, // operation: revoke, check, cleanup
	)

	// RevokedTokenRejectionsTotal counts requests carrying a revoked token.
	RevokedTokenRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shutterfeed_revoked_token_rejections_total",
			Help: "Total number of requests rejected because their token was revoked",
		},
	)
)

// ErrRevocationStoreClosed indicates the store has been closed.
var ErrRevocationStoreClosed = errors.New("revocation store is closed")

// RevocationEntry records a logged-out token until it would have expired.
type RevocationEntry struct {
	JTI       string    `json:"jti"`
	AccountID string    `json:"account_id"`
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RevocationStore remembers revoked token ids until they expire.
type RevocationStore interface {
	// Revoke marks entry.JTI as revoked for ttl.
	Revoke(ctx context.Context, entry *RevocationEntry, ttl time.Duration) error

	// IsRevoked reports whether jti was revoked and has not yet expired.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// CleanupExpired removes expired entries and returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// NewRevocationStore creates the configured store. "badger" opens (and
// owns) a BadgerDB at path; anything else yields a memory store.
func NewRevocationStore(storeType, path string) (RevocationStore, error) {
	if storeType != RevocationStoreBadger {
		return NewMemoryRevocationStore(), nil
	}
	if path == "" {
		return nil, errors.New("revocation path is required for the badger store")
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for token revocation: %w", err)
	}
	store := NewBadgerRevocationStore(db, "")
	store.ownsDB = true
	return store, nil
}

// MemoryRevocationStore is an in-memory revocation store.
// Entries are lost on restart, so revoked tokens become valid again.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]*RevocationEntry
	closed  bool
}

// NewMemoryRevocationStore creates a new in-memory store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]*RevocationEntry),
	}
}

// Revoke stores the entry with the given ttl.
func (s *MemoryRevocationStore) Revoke(_ context.Context, entry *RevocationEntry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		RevocationOperationsTotal.WithLabelValues("revoke", "failure").Inc()
		return ErrRevocationStoreClosed
	}

	entry.RevokedAt = time.Now()
	entry.ExpiresAt = entry.RevokedAt.Add(ttl)
	s.entries[entry.JTI] = entry

	RevocationOperationsTotal.WithLabelValues("revoke", "success").Inc()
	return nil
}

// IsRevoked checks whether jti is revoked.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrRevocationStoreClosed
	}

	entry, ok := s.entries[jti]
	if !ok {
		return false, nil
	}
	return time.Now().Before(entry.ExpiresAt), nil
}

// CleanupExpired removes expired entries.
func (s *MemoryRevocationStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrRevocationStoreClosed
	}

	count := 0
	now := time.Now()
	for jti, entry := range s.entries {
		if now.After(entry.ExpiresAt) {
			delete(s.entries, jti)
			count++
		}
	}

	RevocationOperationsTotal.WithLabelValues("cleanup", "success").Inc()
	return count, nil
}

// Close closes the store.
func (s *MemoryRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	return nil
}

// BadgerRevocationStore keeps revoked token ids in BadgerDB so logouts
// survive restarts. Entries carry a Badger TTL equal to the token's
// remaining lifetime.
type BadgerRevocationStore struct {
	db     *badger.DB
	prefix []byte
	ownsDB bool
	closed bool
	mu     sync.RWMutex
}

// NewBadgerRevocationStore creates a store over db. prefix defaults to
// "revoked:".
func NewBadgerRevocationStore(db *badger.DB, prefix string) *BadgerRevocationStore {
	if prefix == "" {
		prefix = "revoked:"
	}
	return &BadgerRevocationStore{
		db:     db,
		prefix: []byte(prefix),
	}
}

func (s *BadgerRevocationStore) makeKey(jti string) []byte {
	key := make([]byte, 0, len(s.prefix)+len(jti))
	key = append(key, s.prefix...)
	return append(key, jti...)
}

func (s *BadgerRevocationStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Revoke stores the entry with a Badger TTL.
func (s *BadgerRevocationStore) Revoke(_ context.Context, entry *RevocationEntry, ttl time.Duration) error {
	if s.isClosed() {
		RevocationOperationsTotal.WithLabelValues("revoke", "failure").Inc()
		return ErrRevocationStoreClosed
	}

	entry.RevokedAt = time.Now()
	entry.ExpiresAt = entry.RevokedAt.Add(ttl)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal revocation entry: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(s.makeKey(entry.JTI), data).WithTTL(ttl))
	})
	if err != nil {
		RevocationOperationsTotal.WithLabelValues("revoke", "failure").Inc()
		return fmt.Errorf("store revocation: %w", err)
	}

	RevocationOperationsTotal.WithLabelValues("revoke", "success").Inc()
	return nil
}

// IsRevoked checks whether jti is revoked.
func (s *BadgerRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if s.isClosed() {
		return false, ErrRevocationStoreClosed
	}

	var revoked bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(jti))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var entry RevocationEntry
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entry); err != nil {
				return err
			}
			revoked = time.Now().Before(entry.ExpiresAt)
			return nil
		})
	})
	if err != nil {
		RevocationOperationsTotal.WithLabelValues("check", "failure").Inc()
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

// CleanupExpired deletes entries whose recorded expiry has passed. Badger
// also drops them on its own once their TTL elapses.
func (s *BadgerRevocationStore) CleanupExpired(_ context.Context) (int, error) {
	if s.isClosed() {
		return 0, ErrRevocationStoreClosed
	}

	count := 0
	now := time.Now()

	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = s.prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		var keysToDelete [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var entry RevocationEntry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				continue
			}
			if now.After(entry.ExpiresAt) {
				keysToDelete = append(keysToDelete, item.KeyCopy(nil))
			}
		}

		for _, key := range keysToDelete {
			if err := txn.Delete(key); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		RevocationOperationsTotal.WithLabelValues("cleanup", "failure").Inc()
		return 0, fmt.Errorf("cleanup revocations: %w", err)
	}

	RevocationOperationsTotal.WithLabelValues("cleanup", "success").Inc()
	return count, nil
}

// Close marks the store closed and closes the database when the store
// opened it.
func (s *BadgerRevocationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// RevocationJanitor periodically purges expired revocations. It implements
// suture.Service.
type RevocationJanitor struct {
	store    RevocationStore
	interval time.Duration
}

// NewRevocationJanitor creates a janitor running every interval.
func NewRevocationJanitor(store RevocationStore, interval time.Duration) *RevocationJanitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RevocationJanitor{store: store, interval: interval}
}

// Serve runs cleanup until ctx is canceled.
func (j *RevocationJanitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := j.store.CleanupExpired(ctx)
			if err != nil {
				logging.Error().Err(err).Msg("Token revocation cleanup failed")
				continue
			}
			if n > 0 {
				logging.Debug().Int("removed", n).Msg("Expired token revocations removed")
			}
		}
	}
}

func (j *RevocationJanitor) String() string {
	return "revocation-janitor"
}
