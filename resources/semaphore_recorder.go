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

// SemaphoreRecorder continuously waits on a semaphore index, recording the
// tick of every grant and immediately re-issuing a wait to catch the next
// signal.
type SemaphoreRecorder struct {
	*core.Resource

	station   string
	index     int
	startTick int

	armed  bool
	Grants []int
}

// NewSemaphoreRecorder constructs a recorder that arms its first wait at
// startTick.
func NewSemaphoreRecorder(name, station string, index, startTick int) *SemaphoreRecorder {
	if startTick < 0 {
		startTick = 0
	}
	r := &SemaphoreRecorder{
		Resource:  core.NewResource(name),
		station:   station,
		index:     index,
		startTick: startTick,
	}
	r.AddPort("out", "out")
	r.AddPort("in", "in")
	return r
}

func (r *SemaphoreRecorder) issueWait(sim *core.Simulator) {
	msg := core.NewMessage(r.Name(), r.station, 1, core.KindSemWait, core.SemPayload{Index: r.index}, sim.Ticks)
	r.Send("out", msg)
	r.armed = true
}

// Tick arms the first wait once startTick is reached, then records the
// tick of every grant and immediately re-arms.
func (r *SemaphoreRecorder) Tick(sim *core.Simulator) {
	if !r.armed && sim.Ticks >= r.startTick {
		r.issueWait(sim)
	}

	inq := r.InQueue("in")
	for inq.Len() > 0 {
		item := inq.PopFront()
		if msg, ok := item.(*core.Message); ok && msg.Kind == core.KindSemGranted {
			r.Grants = append(r.Grants, sim.Ticks)
			r.issueWait(sim)
		}
	}
}
