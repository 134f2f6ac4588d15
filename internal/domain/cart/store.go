// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// SnapshotStore persists full cart snapshots. Writes are whole-snapshot
// overwrites, last writer wins; there are no partial patches.
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	// Load returns nil, nil when no trustworthy snapshot exists: absent,
	// corrupt, or older than the configured age ceiling.
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

// redisCommands is the slice of the redis client the store needs
type redisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps snapshots in Redis under a per-session key
type RedisStore struct {
	client redisCommands
	ttl    time.Duration
	maxAge time.Duration
	logger *logrus.Logger
}

// NewRedisStore creates a snapshot store. ttl bounds how long Redis keeps
// a snapshot; maxAge bounds how old a loaded snapshot may be before it is
// discarded rather than trusted.
func NewRedisStore(client redisCommands, ttl, maxAge time.Duration, logger *logrus.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		maxAge: maxAge,
		logger: logger,
	}
}

// Save writes the snapshot atomically under the session key
func (s *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}

	if err := s.client.Set(ctx, snapshotKey(snap.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cart snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot for a session. Corrupted or stale snapshots
// are discarded and reported as absent; the engine reinitializes to an
// empty cart rather than crashing.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"session_id": sessionID,
				"error":      err.Error(),
			}).Warn("Discarding corrupted cart snapshot")
		}
		_ = s.client.Del(ctx, snapshotKey(sessionID)).Err()
		return nil, nil
	}

	if snapshotStale(snap.SavedAt, s.maxAge, time.Now().UTC()) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"session_id": sessionID,
				"saved_at":   snap.SavedAt,
			}).Info("Discarding stale cart snapshot")
		}
		_ = s.client.Del(ctx, snapshotKey(sessionID)).Err()
		return nil, nil
	}

	return &snap, nil
}

// Delete removes the persisted snapshot for a session
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, snapshotKey(sessionID)).Err()
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("cart:snapshot:%s", sessionID)
}

// snapshotStale reports whether a snapshot written at savedAt has passed
// the age ceiling. A zero timestamp is never trusted.
func snapshotStale(savedAt time.Time, maxAge time.Duration, now time.Time) bool {
	if savedAt.IsZero() {
		return true
	}
	if maxAge <= 0 {
		return false
	}
	return now.Sub(savedAt) > maxAge
}
