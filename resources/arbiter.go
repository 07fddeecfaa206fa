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

// Package resources implements the concrete simulated components built on
// top of the core kernel: arbiters, buses, memory, processing elements,
// generators, and the semaphore family.
package resources

import "archsim/core"

// activeTransfer tracks one in-flight interleaving admission.
type activeTransfer struct {
	port       string
	bufID      string
	total      int
	progressed int
	start      int
	lastUpdate int
	perShareBW int
	expected   int
}

// Arbiter merges N input ports into a single "out" port according to its
// downstream Channel's transfer mode (falling back to a legacy mode if no
// channel has been set). Messages are forwarded whole; the arbiter shapes
// admission and bandwidth sharing but never fragments a message.
type Arbiter struct {
	*core.Resource

	legacyMode string // "shared" | "scheduled", used only if no channel is set

	inputs  []string
	rrIndex int

	downstream *core.Channel

	// interleaving bookkeeping
	inflightByPort map[string]string
	active         []*activeTransfer

	// blocking bookkeeping
	activePort    string
	availableFrom int
}

// NewArbiter constructs an Arbiter with the given legacy fallback mode
// ("shared" or "scheduled"), used only until a downstream channel is set.
func NewArbiter(name, legacyMode string) *Arbiter {
	if legacyMode != "shared" && legacyMode != "scheduled" {
		panic("resources: Arbiter mode must be 'shared' or 'scheduled'")
	}
	a := &Arbiter{
		Resource:       core.NewResource(name),
		legacyMode:     legacyMode,
		inflightByPort: make(map[string]string),
	}
	a.AddPort("out", "out")
	return a
}

// AddInput registers a new input port.
func (a *Arbiter) AddInput(port string) {
	if _, ok := a.Inbox()[port]; ok {
		return
	}
	a.AddPort(port, "in")
	a.inputs = append(a.inputs, port)
}

// SetDownstreamChannel informs the arbiter which channel it feeds, for
// scheduling estimates and mode selection.
func (a *Arbiter) SetDownstreamChannel(ch *core.Channel) { a.downstream = ch }

func (a *Arbiter) nextNonEmptyFrom(start int) (int, bool) {
	n := len(a.inputs)
	if n == 0 {
		return 0, false
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if a.InQueue(a.inputs[idx]).Len() > 0 {
			return idx, true
		}
	}
	return 0, false
}

// Tick runs one pass of arbitration: clears completed transfers, then
// admits new ones according to the active channel mode.
func (a *Arbiter) Tick(sim *core.Simulator) {
	if len(a.inputs) == 0 {
		return
	}
	now := sim.Ticks

	if a.downstream != nil && a.downstream.TransferMode == core.Interleaving {
		kept := a.active[:0]
		for _, t := range a.active {
			if t.expected > now {
				kept = append(kept, t)
			}
		}
		a.active = kept
		activePorts := make(map[string]bool, len(a.active))
		for _, t := range a.active {
			activePorts[t.port] = true
		}
		for _, p := range a.inputs {
			if a.inflightByPort[p] != "" && !activePorts[p] {
				a.inflightByPort[p] = ""
			}
		}
	} else {
		if a.availableFrom <= now {
			for _, p := range a.inputs {
				a.inflightByPort[p] = ""
			}
		}
	}

	mode := core.Interleaving
	if a.downstream != nil {
		mode = a.downstream.TransferMode
	} else if a.legacyMode == "scheduled" {
		mode = core.Blocking
	}

	if mode == core.Interleaving {
		a.tickInterleaving(sim, now)
	} else {
		a.tickBlocking(sim, now)
	}
}

func (a *Arbiter) tickInterleaving(sim *core.Simulator, now int) {
	start := a.rrIndex
	idx, ok := a.nextNonEmptyFrom(start)
	visited := 0
	for ok && visited < len(a.inputs) {
		port := a.inputs[idx]
		q := a.InQueue(port)
		if q.Len() > 0 && a.inflightByPort[port] == "" {
			item := q.PopFront()
			msg, _ := item.(*core.Message)
			bufID := ""
			size := 1
			if msg != nil {
				size = msg.Size
				if bt, ok := msg.Payload.(core.BufferTransferPayload); ok && bt.Buffer != nil {
					bufID = bt.Buffer.ID
				}
			}
			inflightTag := bufID
			if inflightTag == "" {
				inflightTag = "inflight"
			}
			a.inflightByPort[port] = inflightTag

			a.active = append(a.active, &activeTransfer{
				port:       port,
				bufID:      bufID,
				total:      size,
				start:      now,
				lastUpdate: now,
				expected:   now,
			})

			a.Send("out", item)
			a.recomputeInterleaving(sim, now)
		}
		visited++
		next, has := a.nextNonEmptyFrom(idx + 1)
		if !has {
			break
		}
		idx = next
		ok = true
	}
	a.rrIndex = (start + 1) % len(a.inputs)

	if a.downstream != nil {
		expectedMax := sim.Ticks
		for _, t := range a.active {
			if t.expected > expectedMax {
				expectedMax = t.expected
			}
		}
		a.downstream.SetActiveState(sim.Ticks, len(a.active))
		_ = expectedMax
	}
}

func (a *Arbiter) recomputeInterleaving(sim *core.Simulator, now int) {
	if a.downstream == nil || len(a.active) == 0 {
		return
	}
	n := len(a.active)
	shareBW := a.downstream.Bandwidth() / n
	if shareBW < 1 {
		shareBW = 1
	}
	for _, t := range a.active {
		dt := now - t.lastUpdate
		if dt < 0 {
			dt = 0
		}
		prevBW := t.perShareBW
		if prevBW <= 0 {
			prevBW = shareBW
		}
		t.progressed += dt * prevBW
		if t.progressed > t.total {
			t.progressed = t.total
		}
		remaining := t.total - t.progressed
		if remaining < 0 {
			remaining = 0
		}
		latElapsed := now - t.start
		if latElapsed < 0 {
			latElapsed = 0
		}
		latRem := a.downstream.Latency() - latElapsed
		if latRem < 0 {
			latRem = 0
		}
		dataTicks := 0
		if shareBW > 0 {
			dataTicks = (remaining + shareBW - 1) / shareBW
		}
		t.perShareBW = shareBW
		t.lastUpdate = now
		t.expected = now + latRem + dataTicks
		if t.bufID != "" {
			sim.BufferPool.RecordExpectedArrival(t.bufID, t.expected)
		}
	}
}

func (a *Arbiter) tickBlocking(sim *core.Simulator, now int) {
	if a.activePort == "" || a.InQueue(a.activePort).Len() == 0 {
		idx, ok := a.nextNonEmptyFrom(a.rrIndex)
		if ok {
			a.activePort = a.inputs[idx]
			a.rrIndex = (idx + 1) % len(a.inputs)
		} else {
			a.activePort = ""
		}
	}
	if a.activePort == "" {
		return
	}

	q := a.InQueue(a.activePort)
	if a.availableFrom <= now && q.Len() > 0 {
		item := q.PopFront()
		if msg, ok := item.(*core.Message); ok && msg.Kind == core.KindBufferTransfer && a.downstream != nil {
			size := msg.Size
			startTime := now
			if a.availableFrom > startTime {
				startTime = a.availableFrom
			}
			duration := a.downstream.EstimateTicks(size)
			arrival := startTime + duration
			bufID := ""
			if bt, ok := msg.Payload.(core.BufferTransferPayload); ok && bt.Buffer != nil {
				bufID = bt.Buffer.ID
			}
			if bufID != "" {
				sim.BufferPool.RecordExpectedArrival(bufID, arrival)
			}
			a.availableFrom = arrival
			inflightTag := bufID
			if inflightTag == "" {
				inflightTag = "inflight"
			}
			a.inflightByPort[a.activePort] = inflightTag
		}
		a.Send("out", item)
	}

	if a.downstream != nil {
		activeCount := 0
		if a.availableFrom > now {
			activeCount = 1
		}
		a.downstream.SetActiveState(now, activeCount)
	}
}
