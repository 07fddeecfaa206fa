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

package trace

import (
	"testing"

	"archsim/core"
	"archsim/examples"
)

func TestConsoleTracer_OnTick_NeverPanics(t *testing.T) {
	sim := examples.SimpleBus(core.NewTopology())
	opt := DefaultOptions()
	opt.Every = 5
	sim.Tracer = NewConsoleTracer(opt)
	sim.Run(50, false)
}

func TestDefaultOptions_PrintsEveryTick(t *testing.T) {
	opt := DefaultOptions()
	if opt.Every != 1 {
		t.Fatalf("expected DefaultOptions to print every tick, got Every=%d", opt.Every)
	}
}
