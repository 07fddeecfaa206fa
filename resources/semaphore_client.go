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

// SemaphoreClient waits on a semaphore index, counting grants. It emits a
// single sem_wait at startTick and, if period is set, re-issues one every
// period ticks thereafter; with no period it waits exactly once.
type SemaphoreClient struct {
	*core.Resource

	station   string
	index     int
	startTick int
	period    int
	hasPeriod bool

	next      int
	armed     bool
	Granted   int
}

// NewSemaphoreClient constructs a client targeting station's semaphore
// index.
func NewSemaphoreClient(name, station string, index, startTick int, period int, hasPeriod bool) *SemaphoreClient {
	if startTick < 0 {
		startTick = 0
	}
	if hasPeriod && period < 1 {
		period = 1
	}
	c := &SemaphoreClient{
		Resource:  core.NewResource(name),
		station:   station,
		index:     index,
		startTick: startTick,
		period:    period,
		hasPeriod: hasPeriod,
		next:      startTick,
		armed:     true,
	}
	c.AddPort("out", "out")
	c.AddPort("in", "in")
	return c
}

// Tick consumes grants, then emits a sem_wait once the next scheduled tick
// arrives.
func (c *SemaphoreClient) Tick(sim *core.Simulator) {
	inq := c.InQueue("in")
	for inq.Len() > 0 {
		item := inq.PopFront()
		if msg, ok := item.(*core.Message); ok && msg.Kind == core.KindSemGranted {
			c.Granted++
		}
	}

	if !c.armed {
		return
	}
	if sim.Ticks >= c.next {
		msg := core.NewMessage(c.Name(), c.station, 1, core.KindSemWait, core.SemPayload{Index: c.index}, sim.Ticks)
		c.Send("out", msg)
		if !c.hasPeriod {
			c.armed = false
		} else {
			c.next += c.period
		}
	}
}
