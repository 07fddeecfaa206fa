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

import (
	"fmt"

	"archsim/core"
)

// ReadBus carries read requests from multiple requesters toward a single
// memory, and carries the resulting data responses back, round-robining
// request admission across requesters and bandwidth-limiting the response
// path (the request path toward memory is unbounded, matching the
// reference interconnect's design: reads are cheap to request, expensive
// to answer).
type ReadBus struct {
	*core.Resource

	requestLatency   int
	responseLatency  int
	responseBandwidth int

	requesters []string
	rrIdx      int

	reqPipeline  []core.Deque
	respPipeline []core.Deque
}

// NewReadBus constructs a ReadBus. Both latencies must be >= 0 and
// responseBandwidth must be > 0.
func NewReadBus(name string, requestLatency, responseLatency, responseBandwidth int) *ReadBus {
	if requestLatency < 0 || responseLatency < 0 {
		panic("resources: ReadBus latencies must be >= 0")
	}
	if responseBandwidth <= 0 {
		panic("resources: ReadBus.responseBandwidth must be > 0")
	}
	rb := &ReadBus{
		Resource:          core.NewResource(name),
		requestLatency:    requestLatency,
		responseLatency:   responseLatency,
		responseBandwidth: responseBandwidth,
		reqPipeline:       make([]core.Deque, maxInt(1, requestLatency)),
		respPipeline:      make([]core.Deque, maxInt(1, responseLatency)),
	}
	rb.AddPort("out_req", "out")
	rb.AddPort("in_mem_resp", "in")
	return rb
}

// AddRequester registers a new requester, adding its in_<name>/out_<name>
// port pair.
func (rb *ReadBus) AddRequester(name string) {
	for _, r := range rb.requesters {
		if r == name {
			return
		}
	}
	rb.requesters = append(rb.requesters, name)
	rb.AddPort("in_"+name, "in")
	rb.AddPort("out_"+name, "out")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (rb *ReadBus) nextNonEmptyFrom(start int) (int, bool) {
	n := len(rb.requesters)
	if n == 0 {
		return 0, false
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if rb.InQueue("in_" + rb.requesters[idx]).Len() > 0 {
			return idx, true
		}
	}
	return 0, false
}

// Tick drains the response pipeline's final stage onto per-requester
// output ports bandwidth-limited, shifts both pipelines forward, admits
// new responses unconditionally, and admits new requests round-robin into
// the request pipeline, draining its final stage onto "out_req" with no
// bandwidth limit.
func (rb *ReadBus) Tick(sim *core.Simulator) {
	last := &rb.respPipeline[len(rb.respPipeline)-1]
	capacity := rb.responseBandwidth
	for last.Len() > 0 && capacity >= itemSize(last.Front()) {
		msg := last.PopFront()
		rb.deliverByDst(msg, "out_")
		capacity -= itemSize(msg)
	}
	for i := len(rb.respPipeline) - 1; i > 0; i-- {
		prev := &rb.respPipeline[i-1]
		cur := &rb.respPipeline[i]
		for prev.Len() > 0 {
			cur.PushBack(prev.PopFront())
		}
	}
	inResp := rb.InQueue("in_mem_resp")
	for inResp.Len() > 0 {
		rb.respPipeline[0].PushBack(inResp.PopFront())
	}

	reqLast := &rb.reqPipeline[len(rb.reqPipeline)-1]
	for reqLast.Len() > 0 {
		rb.Send("out_req", reqLast.PopFront())
	}
	for i := len(rb.reqPipeline) - 1; i > 0; i-- {
		prev := &rb.reqPipeline[i-1]
		cur := &rb.reqPipeline[i]
		for prev.Len() > 0 {
			cur.PushBack(prev.PopFront())
		}
	}
	if len(rb.requesters) > 0 {
		start := rb.rrIdx
		idx, ok := rb.nextNonEmptyFrom(start)
		visited := 0
		for ok && visited < len(rb.requesters) {
			q := rb.InQueue("in_" + rb.requesters[idx])
			if q.Len() > 0 {
				rb.reqPipeline[0].PushBack(q.PopFront())
			}
			visited++
			next, has := rb.nextNonEmptyFrom(idx + 1)
			if !has {
				break
			}
			idx = next
		}
		rb.rrIdx = (start + 1) % len(rb.requesters)
	}
}

func (rb *ReadBus) deliverByDst(item any, prefix string) {
	dst := "unknown"
	if msg, ok := item.(*core.Message); ok {
		dst = msg.Dst
	}
	port := fmt.Sprintf("%s%s", prefix, dst)
	if _, ok := rb.Outbox()[port]; !ok {
		rb.AddPort(port, "out")
	}
	rb.Send(port, item)
}

// WriteBus carries write data from multiple writers toward a single
// memory, bandwidth-limited on the writer->memory path, and carries the
// resulting acks back unbounded.
type WriteBus struct {
	*core.Resource

	requestLatency  int
	bandwidth       int
	responseLatency int

	writers []string
	rrIdx   int

	reqPipeline  []core.Deque
	respPipeline []core.Deque
}

// NewWriteBus constructs a WriteBus. Both latencies must be >= 0 and
// bandwidth must be > 0.
func NewWriteBus(name string, requestLatency, bandwidth, responseLatency int) *WriteBus {
	if requestLatency < 0 || responseLatency < 0 {
		panic("resources: WriteBus latencies must be >= 0")
	}
	if bandwidth <= 0 {
		panic("resources: WriteBus.bandwidth must be > 0")
	}
	wb := &WriteBus{
		Resource:        core.NewResource(name),
		requestLatency:  requestLatency,
		bandwidth:       bandwidth,
		responseLatency: responseLatency,
		reqPipeline:     make([]core.Deque, maxInt(1, requestLatency)),
		respPipeline:    make([]core.Deque, maxInt(1, responseLatency)),
	}
	wb.AddPort("out_mem", "out")
	wb.AddPort("in_mem_resp", "in")
	return wb
}

// AddWriter registers a new writer, adding its in_<name>/out_<name> port
// pair.
func (wb *WriteBus) AddWriter(name string) {
	for _, w := range wb.writers {
		if w == name {
			return
		}
	}
	wb.writers = append(wb.writers, name)
	wb.AddPort("in_"+name, "in")
	wb.AddPort("out_"+name, "out")
}

func (wb *WriteBus) nextNonEmptyFrom(start int) (int, bool) {
	n := len(wb.writers)
	if n == 0 {
		return 0, false
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if wb.InQueue("in_" + wb.writers[idx]).Len() > 0 {
			return idx, true
		}
	}
	return 0, false
}

func (wb *WriteBus) deliverByDst(item any) {
	dst := "unknown"
	if msg, ok := item.(*core.Message); ok {
		dst = msg.Dst
	}
	port := "out_" + dst
	if _, ok := wb.Outbox()[port]; !ok {
		wb.AddPort(port, "out")
	}
	wb.Send(port, item)
}

// Tick drains the response pipeline (unbounded) to per-writer ports,
// shifts both pipelines forward, admits new responses unconditionally,
// then admits new requests round-robin and drains the request pipeline's
// final stage onto "out_mem" bandwidth-limited.
func (wb *WriteBus) Tick(sim *core.Simulator) {
	respLast := &wb.respPipeline[len(wb.respPipeline)-1]
	for respLast.Len() > 0 {
		wb.deliverByDst(respLast.PopFront())
	}
	for i := len(wb.respPipeline) - 1; i > 0; i-- {
		prev := &wb.respPipeline[i-1]
		cur := &wb.respPipeline[i]
		for prev.Len() > 0 {
			cur.PushBack(prev.PopFront())
		}
	}
	inResp := wb.InQueue("in_mem_resp")
	for inResp.Len() > 0 {
		wb.respPipeline[0].PushBack(inResp.PopFront())
	}

	reqLast := &wb.reqPipeline[len(wb.reqPipeline)-1]
	capacity := wb.bandwidth
	for reqLast.Len() > 0 && capacity >= itemSize(reqLast.Front()) {
		msg := reqLast.PopFront()
		wb.Send("out_mem", msg)
		capacity -= itemSize(msg)
	}
	for i := len(wb.reqPipeline) - 1; i > 0; i-- {
		prev := &wb.reqPipeline[i-1]
		cur := &wb.reqPipeline[i]
		for prev.Len() > 0 {
			cur.PushBack(prev.PopFront())
		}
	}
	if len(wb.writers) > 0 {
		start := wb.rrIdx
		idx, ok := wb.nextNonEmptyFrom(start)
		visited := 0
		for ok && visited < len(wb.writers) {
			q := wb.InQueue("in_" + wb.writers[idx])
			if q.Len() > 0 {
				wb.reqPipeline[0].PushBack(q.PopFront())
			}
			visited++
			next, has := wb.nextNonEmptyFrom(idx + 1)
			if !has {
				break
			}
			idx = next
		}
		wb.rrIdx = (start + 1) % len(wb.writers)
	}
}
