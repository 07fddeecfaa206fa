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

package core

import "testing"

func TestLink_NeverMovesMoreBytesThanBandwidthInOneTick(t *testing.T) {
	var order []string
	topo := NewTopology()
	src := newEchoResource("src", "src", &order)
	dst := newEchoResource("dst", "dst", &order)
	topo.Add(src, dst)
	link := topo.Connect(src, "out", dst, "in", 64, 1)
	sim := NewSimulator(topo)

	src.Send("out", NewMessage("src", "dst", 40, KindData, nil, sim.Ticks))
	src.Send("out", NewMessage("src", "dst", 40, KindData, nil, sim.Ticks))

	sim.Tick()

	admitted := 0
	for _, item := range link.Pipeline()[0].items {
		admitted += itemSize(item)
	}
	if admitted > link.Bandwidth() {
		t.Fatalf("link admitted %d bytes into its pipeline this tick, exceeding bandwidth %d", admitted, link.Bandwidth())
	}
	if src.OutQueue("out").Len() != 1 {
		t.Fatalf("expected the second 40-byte message to remain queued until bandwidth frees up, got %d items left", src.OutQueue("out").Len())
	}
}

func TestLink_ZeroLatencyDeliversWithinTheSameTickBandwidthBound(t *testing.T) {
	var order []string
	topo := NewTopology()
	src := newEchoResource("src", "src", &order)
	dst := newEchoResource("dst", "dst", &order)
	topo.Add(src, dst)
	link := topo.Connect(src, "out", dst, "in", 32, 0)
	sim := NewSimulator(topo)

	src.Send("out", NewMessage("src", "dst", 16, KindData, nil, sim.Ticks))
	sim.Tick()

	if dst.InQueue("in").Len() != 1 {
		t.Fatalf("expected a zero-latency link to deliver within the same tick, got %d items in dst's in-queue", dst.InQueue("in").Len())
	}
	if link.BytesMovedThisTick != 16 {
		t.Fatalf("expected BytesMovedThisTick=16, got %d", link.BytesMovedThisTick)
	}
}
