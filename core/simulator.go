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

// Tracer observes the simulator after every completed tick. A panic inside
// OnTick is recovered so a misbehaving tracer never aborts a run.
type Tracer interface {
	OnTick(sim *Simulator)
}

// Simulator owns the topology, the global tick counter, the metrics
// record, and the buffer pool, and drives the strict six-phase tick
// algorithm described in the component design.
type Simulator struct {
	Topology   *Topology
	Ticks      int
	Metrics    *Metrics
	BufferPool *BufferPool
	Tracer     Tracer
}

// NewSimulator constructs a Simulator over topo (a fresh Topology if nil).
func NewSimulator(topo *Topology) *Simulator {
	if topo == nil {
		topo = NewTopology()
	}
	return &Simulator{
		Topology:   topo,
		Metrics:    &Metrics{},
		BufferPool: NewBufferPool(),
	}
}

// Deliver appends msg onto resource's in-queue for port. This is the only
// sanctioned way a link (or any component acting on the simulator's
// behalf) hands an item to a resource; a resource never observes an item
// delivered this tick until its own next Tick call.
func (s *Simulator) Deliver(resource SimResource, port string, msg any) {
	resource.InQueue(port).PushBack(msg)
}

// AddResources registers resources on the topology.
func (s *Simulator) AddResources(resources ...SimResource) {
	s.Topology.Add(resources...)
}

// Tick runs one pass of the six-phase algorithm: resources tick, then
// links tick, then the tick counter increments, then the buffer pool fires
// arrivals, then finalize hooks fold stats, then the tracer observes.
func (s *Simulator) Tick() {
	for _, r := range s.Topology.Resources() {
		r.Tick(s)
	}

	for _, link := range s.Topology.Links {
		link.Tick(s)
	}

	s.Ticks++
	s.Metrics.Ticks = s.Ticks

	if s.BufferPool != nil {
		s.BufferPool.Tick(s)
	}

	for _, r := range s.Topology.Resources() {
		if f, ok := r.(Finalizer); ok {
			safeFinalize(f, s)
		}
	}

	if s.Tracer != nil {
		safeTrace(s.Tracer, s)
	}
}

// safeFinalize recovers a panicking finalize hook; simulation continuity
// takes priority over observability, matching the error-handling design.
func safeFinalize(f Finalizer, sim *Simulator) {
	defer func() { _ = recover() }()
	f.FinalizeTick(sim)
}

// safeTrace recovers a panicking tracer for the same reason.
func safeTrace(t Tracer, sim *Simulator) {
	defer func() { _ = recover() }()
	t.OnTick(sim)
}

// Run ticks the simulator up to maxTicks times, stopping early if
// untilQuiescent is true and IsQuiescent becomes true after a tick.
func (s *Simulator) Run(maxTicks int, untilQuiescent bool) {
	for i := 0; i < maxTicks; i++ {
		s.Tick()
		if untilQuiescent && s.IsQuiescent() {
			return
		}
	}
}

// IsQuiescent reports whether no in-queue, out-queue, or link pipeline
// stage contains anything, and no buffer has a future arrival scheduled —
// the global "nothing left to do" condition.
func (s *Simulator) IsQuiescent() bool {
	if s.BufferPool != nil && s.BufferPool.HasPendingArrivals() {
		return false
	}
	for _, r := range s.Topology.Resources() {
		for _, q := range r.(interface{ Inbox() map[string]*Deque }).Inbox() {
			if q.Len() > 0 {
				return false
			}
		}
		for _, q := range r.(interface{ Outbox() map[string]*Deque }).Outbox() {
			if q.Len() > 0 {
				return false
			}
		}
	}
	for _, link := range s.Topology.Links {
		for _, stage := range link.Pipeline() {
			if stage.Len() > 0 {
				return false
			}
		}
	}
	return true
}
