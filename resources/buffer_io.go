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

// BufferProducer issues a single buffer_transfer to a target memory once
// the simulator reaches issueTick, registering its buffer with the pool
// first if it has not already been registered.
type BufferProducer struct {
	*core.Resource

	buffer       *core.DataBuffer
	targetMemory string
	issueTick    int
	sent         bool
}

// NewBufferProducer constructs a BufferProducer for an already-constructed
// buffer.
func NewBufferProducer(name string, buffer *core.DataBuffer, targetMemory string, issueTick int) *BufferProducer {
	if issueTick < 0 {
		issueTick = 0
	}
	p := &BufferProducer{
		Resource:     core.NewResource(name),
		buffer:       buffer,
		targetMemory: targetMemory,
		issueTick:    issueTick,
	}
	p.AddPort("out", "out")
	return p
}

// Tick issues the buffer transfer exactly once, at or after issueTick.
func (p *BufferProducer) Tick(sim *core.Simulator) {
	if p.sent || sim.Ticks < p.issueTick {
		return
	}
	if !sim.BufferPool.Exists(p.buffer.ID) {
		sim.BufferPool.Register(p.buffer, p.Name())
	}
	sim.BufferPool.SetState(sim, p.buffer.ID, core.BufferAllocated)
	msg := core.NewMessage(p.Name(), p.targetMemory, p.buffer.Size, core.KindBufferTransfer, core.BufferTransferPayload{Buffer: p.buffer}, sim.Ticks)
	p.Send("out", msg)
	sim.BufferPool.SetState(sim, p.buffer.ID, core.BufferTransit)
	p.sent = true
}

// BufferConsumer issues a single buffer_consume request for a known buffer
// id at or after consumeTick, and otherwise just drains (ignores) whatever
// arrives on its "in" port.
type BufferConsumer struct {
	*core.Resource

	bufferID     string
	targetMemory string
	consumeTick  int
	issued       bool
}

// NewBufferConsumer constructs a BufferConsumer targeting bufferID.
func NewBufferConsumer(name, bufferID, targetMemory string, consumeTick int) *BufferConsumer {
	if consumeTick < 0 {
		consumeTick = 0
	}
	c := &BufferConsumer{
		Resource:     core.NewResource(name),
		bufferID:     bufferID,
		targetMemory: targetMemory,
		consumeTick:  consumeTick,
	}
	c.AddPort("out", "out")
	c.AddPort("in", "in")
	return c
}

// Tick drains "in" unconditionally, then issues the consume request exactly
// once at or after consumeTick.
func (c *BufferConsumer) Tick(sim *core.Simulator) {
	inq := c.InQueue("in")
	for inq.Len() > 0 {
		inq.PopFront()
	}
	if c.issued || sim.Ticks < c.consumeTick {
		return
	}
	msg := core.NewMessage(c.Name(), c.targetMemory, 1, core.KindBufferConsume, core.BufferConsumePayload{BufferID: c.bufferID}, sim.Ticks)
	c.Send("out", msg)
	c.issued = true
}
