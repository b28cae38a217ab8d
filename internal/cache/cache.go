// Package cache provides the local snapshot store backing offline
// operation: the last known full dataset, persisted under one key so a
// cold start renders without touching the network.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"visionpath/api/internal/store"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "visionpath:snapshot"

// SnapshotStore persists the composite dataset snapshot in Redis.
type SnapshotStore struct {
	client *redis.Client
}

func NewSnapshotStore(redisURL string) (*SnapshotStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &SnapshotStore{client: client}, nil
}

// NewSnapshotStoreWithClient creates a store from an existing Redis client
func NewSnapshotStoreWithClient(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// Save overwrites the persisted snapshot. No TTL: the snapshot lives
// until the next save.
func (s *SnapshotStore) Save(ctx context.Context, snapshot store.Snapshot) error {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey, encoded, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the last saved snapshot. The boolean is false on first
// run, before anything has been persisted.
func (s *SnapshotStore) Load(ctx context.Context) (store.Snapshot, bool, error) {
	raw, err := s.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.Snapshot{}, false, nil
	}
	if err != nil {
		return store.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	var snapshot store.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return store.Snapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snapshot, true, nil
}

// Close closes the Redis connection
func (s *SnapshotStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
