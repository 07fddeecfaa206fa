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

import "testing"

func TestBuild_DefaultIsLogging(t *testing.T) {
	r, err := Build("", Options{})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := r.(*LoggingRecorder); !ok {
		t.Fatalf("expected *LoggingRecorder, got %T", r)
	}
}

func TestBuild_RedisRequiresAddr(t *testing.T) {
	if _, err := Build("redis", Options{}); err == nil {
		t.Fatalf("expected error when RedisAddr is empty")
	}
}

func TestBuild_RedisWithAddr(t *testing.T) {
	r, err := Build("redis", Options{RedisAddr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if _, ok := r.(*RedisRecorder); !ok {
		t.Fatalf("expected *RedisRecorder, got %T", r)
	}
}

func TestBuild_UnknownAdapter(t *testing.T) {
	if _, err := Build("postgres", Options{}); err == nil {
		t.Fatalf("expected error for unknown adapter")
	}
}
