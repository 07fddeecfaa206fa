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

// BaseQueue is a FIFO tagged with a parent resource name, a direction, and
// a function name, addressable both by a unique uid and by the coordinate
// string "parent:direction:function".
type BaseQueue struct {
	Parent   string
	Direction string // "in" | "out"
	Function string
	UID      string
	Items    []any
}

// NewBaseQueue builds a queue; direction must be "in" or "out".
func NewBaseQueue(parent, direction, function string) *BaseQueue {
	if direction != "in" && direction != "out" {
		panic("core: queue direction must be 'in' or 'out'")
	}
	return &BaseQueue{
		Parent:    parent,
		Direction: direction,
		Function:  function,
		UID:       newID("q"),
	}
}

// Coordinate returns the "parent:direction:function" addressing string.
func (q *BaseQueue) Coordinate() string {
	return fmt.Sprintf("%s:%s:%s", q.Parent, q.Direction, q.Function)
}

// Enqueue appends an item.
func (q *BaseQueue) Enqueue(item any) { q.Items = append(q.Items, item) }

// Dequeue pops the head item, or nil if empty.
func (q *BaseQueue) Dequeue() any {
	if len(q.Items) == 0 {
		return nil
	}
	item := q.Items[0]
	q.Items = q.Items[1:]
	return item
}

// Peek returns the head item without removing it, or nil if empty.
func (q *BaseQueue) Peek() any {
	if len(q.Items) == 0 {
		return nil
	}
	return q.Items[0]
}

// Len reports the current queue length.
func (q *BaseQueue) Len() int { return len(q.Items) }

// InputQueue is a plain FIFO wrapper, kept distinct from BaseQueue for
// readability at call sites that only ever consume.
type InputQueue struct {
	*BaseQueue
}

// NewInputQueue builds an InputQueue for the given parent/function.
func NewInputQueue(parent, function string) *InputQueue {
	return &InputQueue{BaseQueue: NewBaseQueue(parent, "in", function)}
}

// transferItem is a pending buffer transfer descriptor held by an
// OutputQueue: (buffer, destination memory, destination PE, destination
// queue).
type transferItem struct {
	Buf      *DataBuffer
	DstMem   string
	DstPE    string
	DstQueue string
}

// OutputQueue can schedule chunked buffer transfers to a destination,
// respecting a channel's current bandwidth across successive Step calls.
type OutputQueue struct {
	*BaseQueue
	scheduled map[string]bool
	destMap   map[string]string
}

// NewOutputQueue builds an OutputQueue for the given parent/function.
func NewOutputQueue(parent, function string) *OutputQueue {
	return &OutputQueue{
		BaseQueue: NewBaseQueue(parent, "out", function),
		scheduled: make(map[string]bool),
		destMap:   make(map[string]string),
	}
}

// EnqueueTransfer schedules a buffer for eventual delivery to dstMemory
// (and optionally a destination PE/queue once it arrives).
func (q *OutputQueue) EnqueueTransfer(buf *DataBuffer, dstMemory, dstPE, dstQueue string) {
	if dstQueue == "" {
		dstQueue = "in0"
	}
	q.Enqueue(transferItem{Buf: buf, DstMem: dstMemory, DstPE: dstPE, DstQueue: dstQueue})
}

// bandwidthSource is satisfied by a Channel; kept minimal so Step does not
// need to import the channel type directly.
type bandwidthSource interface {
	CurrentBandwidth() int
	Latency() int
}

// Step advances the head transfer descriptor by one tick. On first touch
// the transfer is registered with the simulator's buffer pool and the
// source buffer is marked fully received (the source is assumed available
// in full). Each step, the first one included, sends min(buffering, channel bandwidth)
// bytes; when the whole buffer has been sent the destination's expected
// arrival is recorded and the descriptor is popped. A channel with zero
// current bandwidth pauses the transfer without losing state.
func (q *OutputQueue) Step(sim *Simulator, channel bandwidthSource) {
	if len(q.Items) == 0 {
		return
	}
	head, ok := q.Items[0].(transferItem)
	if !ok {
		return
	}
	buf := head.Buf
	if buf == nil {
		return
	}

	if !q.scheduled[buf.ID] {
		dest := sim.BufferPool.ScheduleTransfer(sim, buf.ID, head.DstMem, head.DstPE, head.DstQueue)
		if dest != nil {
			q.destMap[buf.ID] = dest.ID
		}
		q.scheduled[buf.ID] = true
		if buf.BytesReceived < buf.Size {
			buf.AddReceived(buf.Size - buf.BytesReceived)
		}
	}

	var capacity int
	haveCapacity := false
	if channel != nil {
		capacity = channel.CurrentBandwidth()
		haveCapacity = true
		if capacity <= 0 {
			return
		}
	}

	buffering := buf.Buffering()
	if buffering <= 0 {
		return
	}
	sendBytes := buffering
	if haveCapacity && capacity < sendBytes {
		sendBytes = capacity
	}
	buf.AddSent(sendBytes)

	if buf.BytesSent >= buf.Size {
		destID, ok := q.destMap[buf.ID]
		if ok && destID != "" {
			latency := 0
			if channel != nil {
				latency = channel.Latency()
			}
			sim.BufferPool.RecordExpectedArrival(destID, sim.Ticks+latency)
		}
		q.Items = q.Items[1:]
		delete(q.scheduled, buf.ID)
		delete(q.destMap, buf.ID)
	}
}
