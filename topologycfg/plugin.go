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
	"fmt"
	"plugin"

	"archsim/core"
)

// BuildFunc is the symbol every topology plugin must export under the name
// "Build": the same build(topology) -> Simulator shape every builder in
// the examples package uses. This mirrors the dynamic-module
// topology-builder contract using Go's plugin package, the only
// dynamic-symbol-loading mechanism available without introducing a
// scripting-engine dependency the rest of this module never otherwise
// needs.
type BuildFunc func(*core.Topology) *core.Simulator

// LoadPlugin opens the compiled plugin at path (a .so built with
// `go build -buildmode=plugin`), resolves its "Build" symbol, and invokes
// it against a fresh topology.
func LoadPlugin(path string) (*core.Simulator, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("topologycfg: opening plugin %s: %w", path, err)
	}
	sym, err := p.Lookup("Build")
	if err != nil {
		return nil, fmt.Errorf("topologycfg: plugin %s has no Build symbol: %w", path, err)
	}
	build, ok := sym.(func(*core.Topology) *core.Simulator)
	if !ok {
		return nil, fmt.Errorf("topologycfg: plugin %s Build symbol has the wrong signature", path)
	}
	sim := build(core.NewTopology())
	if sim == nil {
		return nil, fmt.Errorf("topologycfg: plugin %s Build returned a nil Simulator", path)
	}
	return sim, nil
}
