// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
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

package persistence

import (
	"context"
	"fmt"
	"time"
)

// RedisEvaler abstracts the minimal surface needed from a Redis client.
// GoRedisEvaler (clients.go) adapts a *redis.Client from
// github.com/redis/go-redis/v9 to it; it is kept as an interface so tests
// can substitute a fake without a live Redis instance.
type RedisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// RedisRecorder persists run records idempotently: each write is keyed by
// run id and tick through a Lua script so a retried write (crash, timeout,
// duplicate delivery) is a no-op rather than double-counting.
type RedisRecorder struct {
	client    RedisEvaler
	markerTTL time.Duration
}

// NewRedisRecorder constructs a RedisRecorder. markerTTL bounds how long an
// idempotency marker survives; it defaults to 24h if <= 0.
func NewRedisRecorder(client RedisEvaler, markerTTL time.Duration) *RedisRecorder {
	if markerTTL <= 0 {
		markerTTL = 24 * time.Hour
	}
	return &RedisRecorder{client: client, markerTTL: markerTTL}
}

// recordLuaScript writes a run's snapshot under a per-tick idempotency
// marker: if the marker is already set, the write is skipped entirely.
const recordLuaScript = `
local dataKey = KEYS[1]
local markerKey = KEYS[2]
local messages = tonumber(ARGV[1])
local bytes = tonumber(ARGV[2])
local ttlSeconds = tonumber(ARGV[3])
local set = redis.call('SETNX', markerKey, 1)
if set == 1 then
  redis.call('HSET', dataKey, 'messages_delivered', messages, 'bytes_transferred', bytes)
  if ttlSeconds and ttlSeconds > 0 then
    redis.call('EXPIRE', markerKey, ttlSeconds)
  end
  return 1
else
  return 0
end
`

// DataKey returns the hash key a run's snapshot is stored under.
func DataKey(runID string) string { return fmt.Sprintf("archsim:run:%s", runID) }

// MarkerKey returns the idempotency marker key for a given run/tick pair.
func MarkerKey(runID string, tick int) string { return fmt.Sprintf("archsim:marker:%s:%d", runID, tick) }

func (r *RedisRecorder) record(ctx context.Context, rec RunRecord) error {
	keys := []string{DataKey(rec.RunID), MarkerKey(rec.RunID, rec.Tick)}
	args := []interface{}{rec.MessagesDelivered, rec.BytesTransferred, int(r.markerTTL.Seconds())}
	if _, err := r.client.Eval(ctx, recordLuaScript, keys, args...); err != nil {
		return fmt.Errorf("persistence: redis eval run=%s tick=%d: %w", rec.RunID, rec.Tick, err)
	}
	return nil
}

// RecordTick persists a per-tick snapshot.
func (r *RedisRecorder) RecordTick(ctx context.Context, rec RunRecord) error { return r.record(ctx, rec) }

// RecordFinal persists the run's closing summary under the same scheme.
func (r *RedisRecorder) RecordFinal(ctx context.Context, rec RunRecord) error { return r.record(ctx, rec) }
