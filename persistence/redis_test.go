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
	"testing"
	"time"
)

type fakeRedisEvaler struct {
	calls []struct {
		script string
		keys   []string
		args   []interface{}
	}
	returnErr error
}

func (f *fakeRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	if f.returnErr != nil {
		return nil, f.returnErr
	}
	f.calls = append(f.calls, struct {
		script string
		keys   []string
		args   []interface{}
	}{script: script, keys: append([]string{}, keys...), args: append([]interface{}{}, args...)})
	return int64(1), nil
}

func TestKeyHelpers(t *testing.T) {
	if got, want := DataKey("run-1"), "archsim:run:run-1"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got, want := MarkerKey("run-1", 7), "archsim:marker:run-1:7"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestNewRedisRecorder_DefaultTTL(t *testing.T) {
	r := NewRedisRecorder(&fakeRedisEvaler{}, 0)
	if r.markerTTL != 24*time.Hour {
		t.Fatalf("expected default TTL 24h, got %v", r.markerTTL)
	}
}

func TestRedisRecorder_RecordTick_Success(t *testing.T) {
	fake := &fakeRedisEvaler{}
	r := NewRedisRecorder(fake, time.Hour)
	rec := RunRecord{RunID: "run-1", Tick: 10, MessagesDelivered: 5, BytesTransferred: 512}
	if err := r.RecordTick(context.Background(), rec); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fake.calls))
	}
	c := fake.calls[0]
	if len(c.keys) != 2 || c.keys[0] != DataKey("run-1") || c.keys[1] != MarkerKey("run-1", 10) {
		t.Fatalf("unexpected keys: %v", c.keys)
	}
}

func TestRedisRecorder_RecordFinal_PropagatesError(t *testing.T) {
	fake := &fakeRedisEvaler{returnErr: context.DeadlineExceeded}
	r := NewRedisRecorder(fake, time.Hour)
	if err := r.RecordFinal(context.Background(), RunRecord{RunID: "run-1"}); err == nil {
		t.Fatalf("expected error to propagate")
	}
}
