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

// Package persistence provides pluggable run-record adapters: a simulator
// run's final metrics summary, and optionally a per-tick snapshot stream,
// are handed to a Recorder rather than printed directly, so a run can be
// persisted to Redis (or just echoed to the console) without the
// simulator knowing which.
package persistence

import "context"

// RunRecord is one persisted snapshot of a simulator run, keyed by a
// caller-supplied run id so repeated persistence of the same run (e.g. a
// retried final flush) is idempotent.
type RunRecord struct {
	RunID             string
	Tick              int
	MessagesDelivered int
	BytesTransferred  int
}

// Recorder is the minimal API every persistence backend implements.
// RecordTick must be safe to call once per tick without materially
// affecting simulator throughput; RecordFinal is called exactly once at
// the end of a run and may block.
type Recorder interface {
	RecordTick(ctx context.Context, rec RunRecord) error
	RecordFinal(ctx context.Context, rec RunRecord) error
}
