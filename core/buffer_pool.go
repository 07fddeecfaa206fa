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

import "fmt"

// transferMeta tracks, for a destination buffer created by ScheduleTransfer,
// which source buffer it mirrors and where it should land once arrived.
type transferMeta struct {
	SourceID         string
	DestinationPE    string
	DestinationQueue string
}

// BufferPool is the single source of truth for DataBuffer ownership,
// state, triggers, and expected-arrival scheduling. Every other component
// reads buffer state through this API and requests mutations through it;
// nothing else in the system assigns State or OwnerMemory directly.
type BufferPool struct {
	buffers      map[string]*DataBuffer
	ownerOf      map[string]string
	ownedBy      map[string]map[string]bool
	triggers     map[string][]Trigger
	expected     map[string]int
	transferMeta map[string]transferMeta
}

// NewBufferPool constructs an empty pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		buffers:      make(map[string]*DataBuffer),
		ownerOf:      make(map[string]string),
		ownedBy:      make(map[string]map[string]bool),
		triggers:     make(map[string][]Trigger),
		expected:     make(map[string]int),
		transferMeta: make(map[string]transferMeta),
	}
}

// Register adds buf to the pool (a no-op if already present) and assigns
// it the given owner (may be "" for unowned).
func (p *BufferPool) Register(buf *DataBuffer, owner string) *DataBuffer {
	if _, ok := p.buffers[buf.ID]; !ok {
		p.buffers[buf.ID] = buf
	}
	p.SetOwner(buf.ID, owner)
	if owner != "" {
		buf.OwnerMemory = owner
	}
	return p.buffers[buf.ID]
}

// Create allocates a new DataBuffer of size and registers it under owner.
func (p *BufferPool) Create(size int, owner string) *DataBuffer {
	return p.Register(NewDataBuffer(size), owner)
}

// Get returns the buffer for id, or nil if unknown.
func (p *BufferPool) Get(id string) *DataBuffer { return p.buffers[id] }

// Exists reports whether id is a known buffer.
func (p *BufferPool) Exists(id string) bool {
	_, ok := p.buffers[id]
	return ok
}

// Owner returns the current owner name for id ("" if unowned or unknown).
func (p *BufferPool) Owner(id string) string { return p.ownerOf[id] }

// SetOwner reassigns ownership of id, maintaining the owner -> {ids} index.
func (p *BufferPool) SetOwner(id, owner string) {
	prev, hadPrev := p.ownerOf[id]
	if hadPrev && prev == owner {
		if _, known := p.buffers[id]; known {
			return
		}
	}
	if hadPrev {
		if set, ok := p.ownedBy[prev]; ok {
			delete(set, id)
		}
	}
	p.ownerOf[id] = owner
	if p.ownedBy[owner] == nil {
		p.ownedBy[owner] = make(map[string]bool)
	}
	p.ownedBy[owner][id] = true
}

// Transfer reassigns ownership of a known buffer; it returns an error for
// an unknown id, since that indicates a programming bug rather than a
// condition the simulation should absorb silently.
func (p *BufferPool) Transfer(id, newOwner string) error {
	if !p.Exists(id) {
		return fmt.Errorf("core: unknown buffer id %q", id)
	}
	p.SetOwner(id, newOwner)
	return nil
}

// Delete removes a buffer entirely, clearing its ownership, triggers,
// expected-arrival, and transfer-meta entries.
func (p *BufferPool) Delete(id string) *DataBuffer {
	buf, ok := p.buffers[id]
	if !ok {
		return nil
	}
	delete(p.buffers, id)
	owner := p.ownerOf[id]
	delete(p.ownerOf, id)
	if set, ok := p.ownedBy[owner]; ok {
		delete(set, id)
	}
	delete(p.triggers, id)
	delete(p.expected, id)
	delete(p.transferMeta, id)
	return buf
}

// BytesOwned sums the size of every buffer currently owned by owner.
func (p *BufferPool) BytesOwned(owner string) int {
	total := 0
	for id := range p.ownedBy[owner] {
		if b, ok := p.buffers[id]; ok {
			total += b.Size
		}
	}
	return total
}

// TotalBytes sums the size of every buffer in the pool.
func (p *BufferPool) TotalBytes() int {
	total := 0
	for _, b := range p.buffers {
		total += b.Size
	}
	return total
}

// SetTriggers replaces the pool-level trigger list for a buffer.
func (p *BufferPool) SetTriggers(id string, triggers []Trigger) {
	cp := make([]Trigger, len(triggers))
	copy(cp, triggers)
	p.triggers[id] = cp
}

// AddTrigger appends a single trigger to the pool-level list for a buffer.
func (p *BufferPool) AddTrigger(id string, t Trigger) {
	p.triggers[id] = append(p.triggers[id], t)
}

// SetState writes buf's state, then fans out every matching trigger (pool-
// level and buffer-level, unioned) whose On equals the new state: for each,
// it resolves Station in the topology and, if found, delivers a sem_signal
// or sem_wait message to the station's "in" port. An unresolved station or
// a trigger with an invalid action is silently skipped, per the error
// handling design — robust simulation takes priority over strict trigger
// validation.
func (p *BufferPool) SetState(sim *Simulator, id string, state BufferState) {
	buf, ok := p.buffers[id]
	if !ok {
		return
	}
	buf.State = state
	if sim == nil {
		return
	}

	var fired []Trigger
	fired = append(fired, p.triggers[id]...)
	fired = append(fired, buf.Triggers...)
	if len(fired) == 0 {
		return
	}

	for _, trig := range fired {
		if trig.On != state {
			continue
		}
		var kind Kind
		switch trig.Action {
		case ActionSignal:
			kind = KindSemSignal
		case ActionWait:
			kind = KindSemWait
		default:
			continue
		}
		target, ok := sim.Topology.Lookup(trig.Station)
		if !ok {
			continue
		}
		msg := NewMessage("buffer_pool", trig.Station, 1, kind, SemPayload{
			Index:    trig.Index,
			BufferID: id,
			State:    state,
		}, sim.Ticks)
		sim.Deliver(target, "in", msg)
	}
}

// RecordExpectedArrival schedules id to transition to arrived on the given
// tick.
func (p *BufferPool) RecordExpectedArrival(id string, tick int) {
	p.expected[id] = tick
}

// HasPendingArrivals reports whether any buffer is still scheduled to
// transition to arrived on a future tick. This is pool state that no
// in-queue, out-queue, or link pipeline reflects once an Arbiter or
// OutputQueue has handed a transfer off — quiescence must account for it
// directly.
func (p *BufferPool) HasPendingArrivals() bool {
	return len(p.expected) > 0
}

// ScheduleTransfer creates a destination buffer mirroring src's size and
// content, registers it as owned by dstMemory with role destination and
// the given destination PE/queue, transitions both source and destination
// to transit, and records transfer metadata linking the destination back
// to its source. Returns nil if src is unknown.
func (p *BufferPool) ScheduleTransfer(sim *Simulator, srcID, dstMemory, dstPE, dstQueue string) *DataBuffer {
	src, ok := p.buffers[srcID]
	if !ok {
		return nil
	}
	dest := &DataBuffer{
		ID:               newID("buf"),
		Size:             src.Size,
		Content:          src.Content,
		State:            BufferAllocated,
		Role:             RoleDestination,
		DestinationPE:    dstPE,
		DestinationQueue: dstQueue,
	}
	p.Register(dest, dstMemory)
	p.SetState(sim, srcID, BufferTransit)
	p.SetState(sim, dest.ID, BufferTransit)
	p.transferMeta[dest.ID] = transferMeta{
		SourceID:         srcID,
		DestinationPE:    dstPE,
		DestinationQueue: dstQueue,
	}
	return dest
}

// Tick fires every expected arrival whose scheduled tick has been reached:
// the destination buffer transitions to arrived, its tracked source (if
// any) transitions to deallocated and is removed from the pool, and the
// destination is appended onto the named destination PE's input queue (a
// failure to resolve the PE, or the queue, is tolerated silently).
func (p *BufferPool) Tick(sim *Simulator) {
	var due []string
	for id, tick := range p.expected {
		if tick <= sim.Ticks {
			due = append(due, id)
		}
	}
	for _, id := range due {
		meta := p.transferMeta[id]
		p.SetState(sim, id, BufferArrived)
		if meta.SourceID != "" {
			if _, ok := p.buffers[meta.SourceID]; ok {
				p.SetState(sim, meta.SourceID, BufferDeallocated)
				p.Delete(meta.SourceID)
			}
		}
		if meta.DestinationPE != "" {
			if pe, ok := sim.Topology.Lookup(meta.DestinationPE); ok {
				if buf, ok := p.buffers[id]; ok {
					pe.InQueue(meta.DestinationQueue).PushBack(buf)
				}
			}
		}
		delete(p.expected, id)
	}
}
