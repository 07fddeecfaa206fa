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

type scheduledConsume struct {
	dueTick  int
	bufferID string
}

// BufferGenerator periodically allocates a DataBuffer and transfers it to a
// target memory, optionally attaching triggers to every generated buffer
// and optionally scheduling an automatic buffer_consume some ticks after
// receiving a buffer_ack for it.
type BufferGenerator struct {
	*core.Resource

	period           int
	bufferSize       int
	targetMemory     string
	startTick        int
	total            int
	hasTotal         bool
	triggers         []core.Trigger
	autoConsumeAfter int
	hasAutoConsume   bool

	nextTick int
	produced int

	consumeQueue []scheduledConsume
}

// NewBufferGenerator constructs a generator. period is clamped to >= 1 and
// startTick to >= 0. If hasTotal is false, generation continues
// indefinitely.
func NewBufferGenerator(name string, period, bufferSize int, targetMemory string, startTick, total int, hasTotal bool, triggers []core.Trigger) *BufferGenerator {
	if period < 1 {
		period = 1
	}
	if startTick < 0 {
		startTick = 0
	}
	g := &BufferGenerator{
		Resource:     core.NewResource(name),
		period:       period,
		bufferSize:   bufferSize,
		targetMemory: targetMemory,
		startTick:    startTick,
		total:        total,
		hasTotal:     hasTotal,
		triggers:     append([]core.Trigger(nil), triggers...),
		nextTick:     startTick,
	}
	g.AddPort("out", "out")
	g.AddPort("in", "in")
	return g
}

// EnableAutoConsume arms automatic buffer_consume scheduling: a
// buffer_ack's buffer then gets a buffer_consume issued autoConsumeAfter
// ticks later.
func (g *BufferGenerator) EnableAutoConsume(autoConsumeAfter int) {
	g.hasAutoConsume = true
	g.autoConsumeAfter = autoConsumeAfter
}

// Tick drains acks (scheduling auto-consumes where armed), generates a new
// buffer if due and under quota, and flushes any due scheduled consumes.
func (g *BufferGenerator) Tick(sim *core.Simulator) {
	inq := g.InQueue("in")
	for inq.Len() > 0 {
		item := inq.PopFront()
		msg, ok := item.(*core.Message)
		if !ok || !g.hasAutoConsume || msg.Kind != core.KindBufferAck {
			continue
		}
		if ap, ok := msg.Payload.(core.BufferAckPayload); ok && ap.BufferID != "" {
			due := sim.Ticks + g.autoConsumeAfter
			if g.autoConsumeAfter < 0 {
				due = sim.Ticks
			}
			g.consumeQueue = append(g.consumeQueue, scheduledConsume{dueTick: due, bufferID: ap.BufferID})
		}
	}

	if !g.hasTotal || g.produced < g.total {
		if sim.Ticks >= g.nextTick {
			buf := core.NewDataBuffer(g.bufferSize)
			if len(g.triggers) > 0 {
				buf.Triggers = append([]core.Trigger(nil), g.triggers...)
			}
			sim.BufferPool.Register(buf, g.Name())
			sim.BufferPool.SetState(sim, buf.ID, core.BufferAllocated)
			msg := core.NewMessage(g.Name(), g.targetMemory, buf.Size, core.KindBufferTransfer, core.BufferTransferPayload{Buffer: buf}, sim.Ticks)
			g.Send("out", msg)
			sim.BufferPool.SetState(sim, buf.ID, core.BufferTransit)
			g.produced++
			g.nextTick += g.period
		}
	}

	for len(g.consumeQueue) > 0 && g.consumeQueue[0].dueTick <= sim.Ticks {
		due := g.consumeQueue[0]
		g.consumeQueue = g.consumeQueue[1:]
		msg := core.NewMessage(g.Name(), g.targetMemory, 1, core.KindBufferConsume, core.BufferConsumePayload{BufferID: due.bufferID}, sim.Ticks)
		g.Send("out", msg)
	}
}
