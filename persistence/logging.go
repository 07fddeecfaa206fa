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
	"log"
)

// LoggingRecorder is the no-backend fallback: every tick and the final
// record are written through the standard logger. Used when no
// --redis-addr is configured.
type LoggingRecorder struct {
	logger *log.Logger
}

// NewLoggingRecorder constructs a LoggingRecorder writing through the
// default logger.
func NewLoggingRecorder() *LoggingRecorder {
	return &LoggingRecorder{logger: log.Default()}
}

// RecordTick logs a single per-tick snapshot.
func (r *LoggingRecorder) RecordTick(ctx context.Context, rec RunRecord) error {
	r.logger.Printf("run=%s tick=%d messages=%d bytes=%d", rec.RunID, rec.Tick, rec.MessagesDelivered, rec.BytesTransferred)
	return nil
}

// RecordFinal logs the run's closing summary.
func (r *LoggingRecorder) RecordFinal(ctx context.Context, rec RunRecord) error {
	r.logger.Printf("run=%s final tick=%d messages=%d bytes=%d", rec.RunID, rec.Tick, rec.MessagesDelivered, rec.BytesTransferred)
	return nil
}
