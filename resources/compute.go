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

type pendingConsume struct {
	dueTick  int
	bufferID string
}

// ComputeUnit is a ProcessingElement specialized as a request issuer: it
// either issues plain read/write requests at a fixed rate, or (in
// produce-buffer mode) allocates and transfers DataBuffers to a
// destination memory, optionally scheduling a deallocation request a fixed
// number of ticks after each buffer is issued.
type ComputeUnit struct {
	*ProcessingElement

	totalRequests  int
	requestSize    int
	issueInterval  int
	requestKind    core.Kind
	lastIssueTick  int
	issued         int
	received       int

	produceBuffers bool
	bufferSize     int
	bufferDest     string
	consumeAfter   int
	hasConsumeAfter bool

	consumeQueue []pendingConsume
}

// NewComputeUnit constructs a request-issuing compute unit in pro mode with
// a single in/out port pair.
func NewComputeUnit(name string, totalRequests, requestSize, issueInterval int, requestKind core.Kind) *ComputeUnit {
	if issueInterval < 1 {
		issueInterval = 1
	}
	c := &ComputeUnit{
		ProcessingElement: NewProcessingElement(name, 1, 1, PEPro, 2, 1, "memory", 0, nil),
		totalRequests:     totalRequests,
		requestSize:       requestSize,
		issueInterval:     issueInterval,
		requestKind:       requestKind,
		lastIssueTick:      -1_000_000_000,
	}
	return c
}

// EnableBufferProduction switches the unit into buffer-transfer-issuing
// mode: instead of plain requests, it creates and transfers DataBuffers of
// bufferSize to dest, optionally scheduling a buffer_consume consumeAfter
// ticks after each transfer.
func (c *ComputeUnit) EnableBufferProduction(bufferSize int, dest string, consumeAfter int, hasConsumeAfter bool) {
	c.produceBuffers = true
	c.bufferSize = bufferSize
	c.bufferDest = dest
	c.consumeAfter = consumeAfter
	c.hasConsumeAfter = hasConsumeAfter
}

// Progress returns (issued, received) request counts.
func (c *ComputeUnit) Progress() (int, int) { return c.issued, c.received }

// Tick drains responses on in0, then issues work according to the current
// mode, then flushes any buffer_consume requests whose due tick arrived.
func (c *ComputeUnit) Tick(sim *core.Simulator) {
	inq := c.InQueue("in0")
	for inq.Len() > 0 {
		item := inq.PopFront()
		if msg, ok := item.(*core.Message); ok && msg.Kind == core.KindResp {
			c.received++
		}
	}

	if c.produceBuffers {
		if c.issued < c.totalRequests && sim.Ticks-c.lastIssueTick >= c.issueInterval {
			buf := sim.BufferPool.Create(c.bufferSize, c.Name())
			sim.BufferPool.SetState(sim, buf.ID, core.BufferAllocated)
			msg := core.NewMessage(c.Name(), c.bufferDest, buf.Size, core.KindBufferTransfer, core.BufferTransferPayload{Buffer: buf}, sim.Ticks)
			c.Send("out0", msg)
			sim.BufferPool.SetState(sim, buf.ID, core.BufferTransit)
			c.issued++
			c.lastIssueTick = sim.Ticks
			if c.hasConsumeAfter {
				due := sim.Ticks + c.consumeAfter
				if c.consumeAfter < 0 {
					due = sim.Ticks
				}
				c.consumeQueue = append(c.consumeQueue, pendingConsume{dueTick: due, bufferID: buf.ID})
			}
		}
	} else if c.issued < c.totalRequests && sim.Ticks-c.lastIssueTick >= c.issueInterval {
		req := core.NewMessage(c.Name(), "memory", c.requestSize, c.requestKind, nil, sim.Ticks)
		c.Send("out0", req)
		c.issued++
		c.lastIssueTick = sim.Ticks
	}

	for len(c.consumeQueue) > 0 && c.consumeQueue[0].dueTick <= sim.Ticks {
		due := c.consumeQueue[0]
		c.consumeQueue = c.consumeQueue[1:]
		msg := core.NewMessage(c.Name(), c.bufferDest, 1, core.KindBufferConsume, core.BufferConsumePayload{BufferID: due.bufferID}, sim.Ticks)
		c.Send("out0", msg)
	}
}
