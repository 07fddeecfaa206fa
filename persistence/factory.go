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
	"fmt"
	"time"
)

// Options holds the CLI-level knobs for building a Recorder.
type Options struct {
	RedisAddr      string
	RedisMarkerTTL time.Duration
}

// Build constructs a Recorder from a string selector:
//   - "" or "logging": LoggingRecorder (default; no external dependency)
//   - "redis": RedisRecorder, backed by a real client at opts.RedisAddr;
//     an empty opts.RedisAddr is an error
func Build(adapter string, opts Options) (Recorder, error) {
	switch adapter {
	case "", "logging":
		return NewLoggingRecorder(), nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("persistence: redis adapter requires a --redis-addr")
		}
		evaler := NewGoRedisEvaler(opts.RedisAddr)
		return NewRedisRecorder(evaler, opts.RedisMarkerTTL), nil
	default:
		return nil, fmt.Errorf("persistence: unknown adapter %q", adapter)
	}
}
