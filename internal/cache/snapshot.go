// Package cache mirrors the latest normalized project aggregates so cheap
// reads don't have to re-walk the relational rows. The mirror is never
// authoritative: every write replaces the full aggregate, and a miss simply
// means the caller recomputes from the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yukikurage/checkin-api/internal/dto"
)

// ErrNotCached is returned when no snapshot exists for the project.
var ErrNotCached = errors.New("project snapshot not cached")

// ProjectSnapshotStore holds the serialized mirror of normalized project
// aggregates. Saves are full-aggregate replacements, never partial updates,
// so readers never observe a torn intermediate state.
type ProjectSnapshotStore interface {
	Load(ctx context.Context, projectID uint64) (*dto.ProjectDetailDTO, error)
	Save(ctx context.Context, snapshot dto.ProjectDetailDTO) error
	Delete(ctx context.Context, projectID uint64) error
}

// RedisSnapshotStore persists snapshots in Redis.
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotStore creates a Redis-backed snapshot store.
func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

func snapshotKey(projectID uint64) string {
	return fmt.Sprintf("project:snapshot:%d", projectID)
}

// Load reads the snapshot for a project.
func (s *RedisSnapshotStore) Load(ctx context.Context, projectID uint64) (*dto.ProjectDetailDTO, error) {
	data, err := s.client.Get(ctx, snapshotKey(projectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project snapshot: %w", err)
	}

	var snapshot dto.ProjectDetailDTO
	if err := json.Unmarshal(data, &snapshot); err != nil {
		// A corrupt entry is treated as a miss; the caller recomputes.
		return nil, ErrNotCached
	}
	return &snapshot, nil
}

// Save replaces the project's snapshot.
func (s *RedisSnapshotStore) Save(ctx context.Context, snapshot dto.ProjectDetailDTO) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize project snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(snapshot.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save project snapshot: %w", err)
	}
	return nil
}

// Delete drops the project's snapshot.
func (s *RedisSnapshotStore) Delete(ctx context.Context, projectID uint64) error {
	if err := s.client.Del(ctx, snapshotKey(projectID)).Err(); err != nil {
		return fmt.Errorf("failed to delete project snapshot: %w", err)
	}
	return nil
}

// MemorySnapshotStore is an in-process snapshot store used in tests and as a
// fallback when Redis is not configured.
type MemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[uint64]dto.ProjectDetailDTO
}

// NewMemorySnapshotStore creates an empty in-memory snapshot store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{
		snapshots: make(map[uint64]dto.ProjectDetailDTO),
	}
}

// Load reads the snapshot for a project.
func (s *MemorySnapshotStore) Load(_ context.Context, projectID uint64) (*dto.ProjectDetailDTO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[projectID]
	if !ok {
		return nil, ErrNotCached
	}
	return &snapshot, nil
}

// Save replaces the project's snapshot.
func (s *MemorySnapshotStore) Save(_ context.Context, snapshot dto.ProjectDetailDTO) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.ID] = snapshot
	return nil
}

// Delete drops the project's snapshot.
func (s *MemorySnapshotStore) Delete(_ context.Context, projectID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, projectID)
	return nil
}
