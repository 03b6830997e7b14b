// Package controlstore persists per-alert debounce state in Redis.
//
// Each alert owns one hash, debounce:<alert_id>, with fields
// validation_count and last_sent (unix seconds). HINCRBY gives the atomic
// streak increment the debounce controller relies on, so two concurrent
// advances for the same alert cannot both read-modify-write the counter.
package controlstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// ErrStoreUnavailable marks transport or storage failures talking to the
// control store. Callers treat it as retryable.
var ErrStoreUnavailable = errors.New("control store unavailable")

const (
	// keyPrefix is the Redis key prefix for per-alert debounce hashes.
	keyPrefix = "debounce:"

	fieldValidationCount = "validation_count"
	fieldLastSent        = "last_sent"
)

// Store is a Redis-backed control store.
type Store struct {
	client *redis.Client
}

// NewStore creates a control store over the given Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// stateKey builds the Redis key for an alert's debounce hash.
func stateKey(alertID string) string {
	return keyPrefix + alertID
}

// Get returns the debounce state for the alert. If no state exists yet, the
// initial state (count 0, never sent) is persisted and returned.
func (s *Store) Get(ctx context.Context, alertID string) (*model.DebounceState, error) {
	fields, err := s.client.HGetAll(ctx, stateKey(alertID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load state for alert %s: %v", ErrStoreUnavailable, alertID, err)
	}

	state := &model.DebounceState{AlertID: alertID}

	if len(fields) == 0 {
		// First touch: persist the initial state. HSETNX keeps a
		// concurrent first writer from being clobbered.
		if err := s.client.HSetNX(ctx, stateKey(alertID), fieldValidationCount, 0).Err(); err != nil {
			return nil, fmt.Errorf("%w: failed to initialize state for alert %s: %v", ErrStoreUnavailable, alertID, err)
		}
		return state, nil
	}

	if raw, ok := fields[fieldValidationCount]; ok {
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt validation count for alert %s: %q", alertID, raw)
		}
		state.ValidationCount = count
	}

	if raw, ok := fields[fieldLastSent]; ok && raw != "" {
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt last sent timestamp for alert %s: %q", alertID, raw)
		}
		sentAt := time.Unix(unix, 0).UTC()
		state.LastSent = &sentAt
	}

	return state, nil
}

// UpdateValidation atomically increments the validation streak and returns
// the new count.
func (s *Store) UpdateValidation(ctx context.Context, alertID string) (int64, error) {
	count, err := s.client.HIncrBy(ctx, stateKey(alertID), fieldValidationCount, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to increment streak for alert %s: %v", ErrStoreUnavailable, alertID, err)
	}
	return count, nil
}

// ResetValidation sets the validation streak back to zero. The last-sent
// timestamp is left untouched.
func (s *Store) ResetValidation(ctx context.Context, alertID string) error {
	if err := s.client.HSet(ctx, stateKey(alertID), fieldValidationCount, 0).Err(); err != nil {
		return fmt.Errorf("%w: failed to reset streak for alert %s: %v", ErrStoreUnavailable, alertID, err)
	}
	return nil
}

// UpdateLastSent records the time of the last notification send.
func (s *Store) UpdateLastSent(ctx context.Context, alertID string, sentAt time.Time) error {
	if err := s.client.HSet(ctx, stateKey(alertID), fieldLastSent, sentAt.Unix()).Err(); err != nil {
		return fmt.Errorf("%w: failed to record last sent for alert %s: %v", ErrStoreUnavailable, alertID, err)
	}
	return nil
}

// Delete removes an alert's debounce state. Called when the owning alert is
// deleted.
func (s *Store) Delete(ctx context.Context, alertID string) error {
	if err := s.client.Del(ctx, stateKey(alertID)).Err(); err != nil {
		return fmt.Errorf("%w: failed to delete state for alert %s: %v", ErrStoreUnavailable, alertID, err)
	}
	return nil
}
