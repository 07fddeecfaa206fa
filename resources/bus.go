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

import "archsim/core"

// Bus aggregates several named input ports into a single "out" port,
// round-robining across inputs each tick and moving whole messages as long
// as they fit within the tick's remaining bandwidth budget. A message
// larger than the bus's bandwidth is never fragmented and never moves; it
// stays at the head of its input port.
type Bus struct {
	*core.Resource

	bandwidth int
	rrOrder   []string
	lastIdx   int
}

// NewBus constructs a Bus with the given per-tick bandwidth budget.
func NewBus(name string, bandwidth int) *Bus {
	if bandwidth <= 0 {
		panic("resources: Bus.bandwidth must be > 0")
	}
	b := &Bus{Resource: core.NewResource(name), bandwidth: bandwidth}
	b.AddPort("out", "out")
	return b
}

// AddInput registers a new round-robin input port.
func (b *Bus) AddInput(port string) {
	if _, ok := b.Inbox()[port]; ok {
		return
	}
	b.AddPort(port, "in")
	b.rrOrder = append(b.rrOrder, port)
}

func itemSize(item any) int {
	if msg, ok := item.(*core.Message); ok {
		return msg.Size
	}
	return 1
}

// Tick round-robins across the input ports in repeated passes, moving whole
// messages that fit in the remaining bandwidth budget, stopping once a full
// pass makes no further progress.
func (b *Bus) Tick(sim *core.Simulator) {
	if len(b.rrOrder) == 0 {
		return
	}
	remaining := b.bandwidth
	startIdx := b.lastIdx % len(b.rrOrder)
	idx := startIdx
	spins := 0
	movedAny := false
	for remaining > 0 && spins <= len(b.rrOrder) {
		port := b.rrOrder[idx%len(b.rrOrder)]
		q := b.InQueue(port)
		if q.Len() > 0 {
			size := itemSize(q.Front())
			if size <= remaining {
				item := q.PopFront()
				b.Send("out", item)
				remaining -= size
				movedAny = true
			}
		}
		idx++
		if (idx-startIdx)%len(b.rrOrder) == 0 {
			spins++
			if !movedAny {
				break
			}
			movedAny = false
		}
	}
	b.lastIdx = idx
}
