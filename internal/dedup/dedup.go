// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dedup remembers which mailbox messages have already been scanned so
// that overlapping lookback windows publish each message once.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long we remember a scanned message ID. It must
	// outlive the scan lookback window.
	DefaultTTL = 30 * 24 * time.Hour

	// keyPrefix namespaces dedup keys in Redis.
	keyPrefix = "jobsignal:seen:"
)

// Redis is the subset of *redis.Client the filter needs.
type Redis interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Filter tracks which message IDs have already been processed.
type Filter struct {
	rdb Redis
	ttl time.Duration
}

// NewFilter creates a dedup filter backed by Redis. A non-positive ttl uses
// DefaultTTL.
func NewFilter(rdb Redis, ttl time.Duration) *Filter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Filter{
		rdb: rdb,
		ttl: ttl,
	}
}

// IsNew returns true if the message ID has NOT been seen before.
// If true, the message is marked as seen atomically (SETNX).
func (f *Filter) IsNew(ctx context.Context, messageID string) (bool, error) {
	set, err := f.rdb.SetNX(ctx, keyPrefix+messageID, 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup SETNX: %w", err)
	}
	return set, nil
}

// Forget clears the seen mark so the message is processed again on the next
// scan. Used when persisting or publishing a message failed.
func (f *Filter) Forget(ctx context.Context, messageID string) error {
	if err := f.rdb.Del(ctx, keyPrefix+messageID).Err(); err != nil {
		return fmt.Errorf("dedup DEL: %w", err)
	}
	return nil
}
