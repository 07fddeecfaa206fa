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

package resources

import (
	"testing"

	"archsim/core"
)

func TestNewArbiter_PanicsOnBadLegacyMode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for an unrecognized legacy mode")
		}
	}()
	NewArbiter("arb", "bogus")
}

func TestArbiter_RoundRobinsAcrossInputsWithoutDownstreamChannel(t *testing.T) {
	arb := NewArbiter("arb", "shared")
	arb.AddInput("in0")
	arb.AddInput("in1")
	sim := newTestSim(arb)

	arb.InQueue("in0").PushBack(core.NewMessage("a", "arb", 8, core.KindRead, nil, sim.Ticks))
	arb.InQueue("in1").PushBack(core.NewMessage("b", "arb", 8, core.KindRead, nil, sim.Ticks))

	sim.Tick()

	out := arb.OutQueue("out")
	if out.Len() != 2 {
		t.Fatalf("expected both queued messages forwarded in one tick, got %d", out.Len())
	}
}

func TestArbiter_InterleavingModePrefersChannelTransferMode(t *testing.T) {
	arb := NewArbiter("arb", "scheduled") // legacy says blocking...
	arb.AddInput("in0")
	ch := core.NewChannel("down", 64, 1, core.Interleaving) // ...but the channel says interleaving
	arb.SetDownstreamChannel(ch)
	sim := newTestSim(arb)

	arb.InQueue("in0").PushBack(core.NewMessage("a", "arb", 8, core.KindRead, nil, sim.Ticks))
	sim.Tick()

	if arb.OutQueue("out").Len() != 1 {
		t.Fatalf("expected the queued message to be admitted under interleaving mode")
	}
	if ch.ActiveCount() != 1 {
		t.Fatalf("expected interleaving admission to report one active transfer to the channel, got %d", ch.ActiveCount())
	}
}
