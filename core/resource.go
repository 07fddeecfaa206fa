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

// Deque is a minimal slice-backed FIFO holding messages, buffers, or any
// other item a port needs to carry.
type Deque struct {
	items []any
}

// PushBack appends an item to the tail.
func (d *Deque) PushBack(item any) { d.items = append(d.items, item) }

// PopFront removes and returns the head item, or nil if empty.
func (d *Deque) PopFront() any {
	if len(d.items) == 0 {
		return nil
	}
	item := d.items[0]
	d.items = d.items[1:]
	return item
}

// Front returns the head item without removing it, or nil if empty.
func (d *Deque) Front() any {
	if len(d.items) == 0 {
		return nil
	}
	return d.items[0]
}

// Len reports the number of items currently queued.
func (d *Deque) Len() int { return len(d.items) }

// Tickable is implemented by every Resource; Tick is invoked once per
// simulator tick, in topology insertion order.
type Tickable interface {
	Tick(sim *Simulator)
}

// Finalizer is optionally implemented by a Resource to fold per-tick
// statistics (channel occupancy, PE utilization) after the buffer pool has
// fired arrivals for the tick.
type Finalizer interface {
	FinalizeTick(sim *Simulator)
}

// Named is implemented by every Resource; the topology indexes resources
// by this name and messages address each other by it.
type Named interface {
	Name() string
}

// SimResource is the full surface the simulator, topology, and links need
// from any participant: a name, a tick hook, and port queues. Every
// concrete resource type in this module satisfies it by embedding
// *Resource and defining its own Tick.
type SimResource interface {
	Named
	Tickable
	InQueue(port string) *Deque
	OutQueue(port string) *Deque
}

// Resource is the base abstraction every simulated component embeds: named
// ports with in/out queues and a default pass-through tick hook. Concrete
// resources embed *Resource and override Tick (and optionally
// FinalizeTick) to implement their own behavior; embedding in Go gives no
// virtual dispatch, so each concrete type must define its own Tick method
// even when it only wants the default pass-through (call
// Resource.Tick(sim) explicitly in that case).
type Resource struct {
	name   string
	inbox  map[string]*Deque
	outbox map[string]*Deque
	// ports preserves insertion order for deterministic iteration where it
	// matters (tracing output, port enumeration).
	ports []string
}

// NewResource constructs a named resource with no ports; call AddPort to
// register ports before wiring links.
func NewResource(name string) *Resource {
	return &Resource{
		name:   name,
		inbox:  make(map[string]*Deque),
		outbox: make(map[string]*Deque),
	}
}

// Name returns the resource's unique topology name.
func (r *Resource) Name() string { return r.name }

// AddPort registers a port in the given direction ("in", "out", or "both").
func (r *Resource) AddPort(port, direction string) {
	if direction == "in" || direction == "both" {
		if _, ok := r.inbox[port]; !ok {
			r.inbox[port] = &Deque{}
			r.ports = append(r.ports, port)
		}
	}
	if direction == "out" || direction == "both" {
		if _, ok := r.outbox[port]; !ok {
			r.outbox[port] = &Deque{}
		}
	}
}

// InQueue returns (creating if necessary) the in-queue for port.
func (r *Resource) InQueue(port string) *Deque {
	q, ok := r.inbox[port]
	if !ok {
		q = &Deque{}
		r.inbox[port] = q
		r.ports = append(r.ports, port)
	}
	return q
}

// OutQueue returns (creating if necessary) the out-queue for port.
func (r *Resource) OutQueue(port string) *Deque {
	q, ok := r.outbox[port]
	if !ok {
		q = &Deque{}
		r.outbox[port] = q
	}
	return q
}

// Inbox exposes the in-port map for iteration (tracing, quiescence checks).
func (r *Resource) Inbox() map[string]*Deque { return r.inbox }

// Outbox exposes the out-port map for iteration.
func (r *Resource) Outbox() map[string]*Deque { return r.outbox }

// Recv pops and returns the head message on port, or nil if empty.
func (r *Resource) Recv(port string) any { return r.InQueue(port).PopFront() }

// PeekIn returns the head of the in-queue without removing it.
func (r *Resource) PeekIn(port string) any { return r.InQueue(port).Front() }

// Send appends msg onto the out-queue for port.
func (r *Resource) Send(port string, msg any) { r.OutQueue(port).PushBack(msg) }

// OnReceive is the default per-message handler: pass through to an
// identically-named out-port if one exists. Concrete resources with richer
// behavior override Tick entirely and never call this.
func (r *Resource) OnReceive(port string, msg any, sim *Simulator) {
	if _, ok := r.outbox[port]; ok {
		r.Send(port, msg)
	}
}

// Tick is the default resource behavior: drain every in-queue through
// OnReceive. Most concrete resources define their own Tick and do not call
// this.
func (r *Resource) Tick(sim *Simulator) {
	for _, port := range r.ports {
		q := r.inbox[port]
		for q.Len() > 0 {
			msg := q.PopFront()
			r.OnReceive(port, msg, sim)
		}
	}
}
