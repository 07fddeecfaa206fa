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

package topologycfg

import (
	"path/filepath"
	"testing"
)

// Building and loading a real .so plugin requires invoking the Go
// toolchain's -buildmode=plugin, which is outside the scope of a unit
// test; this only covers LoadPlugin's own error paths.
func TestLoadPlugin_MissingFile(t *testing.T) {
	if _, err := LoadPlugin(filepath.Join(t.TempDir(), "missing.so")); err == nil {
		t.Fatalf("expected error opening a nonexistent plugin")
	}
}
