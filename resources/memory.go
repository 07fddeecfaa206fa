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

// inflightResp holds a reply message scheduled to be sent once its
// simulated service latency elapses.
type inflightResp struct {
	readyTick int
	msg       *core.Message
}

// Memory models an addressable store with bounded request throughput and a
// byte-occupancy watermark that drives backpressure on its registered
// inbound channels. It issues up to maxIssuePerTick requests per tick from
// its "in" queue, replies after latency ticks, and folds a fill/drain
// occupancy model every tick. Buffer ownership and lifecycle state are never
// tracked locally: every buffer_transfer/buffer_consume routes through
// sim.BufferPool, the sole source of truth for ownership and state.
type Memory struct {
	*core.Resource

	latency         int
	maxIssuePerTick int
	sizeLimit       int
	fillRate        int
	drainRate       int

	bytesCurrent  int
	backpressured bool

	inflight        []inflightResp
	inboundChannels []*core.Channel

	// lastSim caches the simulator seen at the top of the most recent Tick,
	// so TotalAllocatedBytes can query sim.BufferPool without a sim argument.
	lastSim *core.Simulator
}

// NewMemory constructs a Memory with the given service parameters. latency,
// maxIssuePerTick, fillRate, and drainRate must be >= 0; sizeLimit must be
// > 0 (an unbounded memory is expressed with a very large limit, not zero).
func NewMemory(name string, latency, maxIssuePerTick, sizeLimit, fillRate, drainRate int) *Memory {
	if sizeLimit <= 0 {
		panic("resources: Memory.sizeLimit must be > 0")
	}
	if latency < 0 || maxIssuePerTick < 0 || fillRate < 0 || drainRate < 0 {
		panic("resources: Memory rate/latency parameters must be >= 0")
	}
	m := &Memory{
		Resource:        core.NewResource(name),
		latency:         latency,
		maxIssuePerTick: maxIssuePerTick,
		sizeLimit:       sizeLimit,
		fillRate:        fillRate,
		drainRate:       drainRate,
	}
	m.AddPort("in", "in")
	m.AddPort("out", "out")
	return m
}

// RegisterInboundChannel adds ch to the set notified whenever this memory's
// backpressure state changes.
func (m *Memory) RegisterInboundChannel(ch *core.Channel) {
	m.inboundChannels = append(m.inboundChannels, ch)
}

// TotalAllocatedBytes reports the bytes sim.BufferPool currently attributes
// to this memory's ownership. It reads through the pool rather than any
// local ledger, and reports 0 before this memory has ever ticked.
func (m *Memory) TotalAllocatedBytes() int {
	if m.lastSim == nil {
		return 0
	}
	return m.lastSim.BufferPool.BytesOwned(m.Name())
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Tick issues up to maxIssuePerTick requests from "in", schedules a reply
// inflight.latency ticks out for each, emits every due reply onto "out",
// and folds the fill/drain occupancy model in the exact clamp order: fill
// bounded by fillRate then sizeLimit, drain bounded by drainRate then
// current occupancy, backpressure raised when occupancy reaches sizeLimit.
//
// buffer_transfer and buffer_consume requests are routed through
// sim.BufferPool instead of any private ledger: a transfer registers or
// re-homes the buffer to this memory and advances it to responded, replying
// with buffer_ack; a consume advances the buffer to deallocated and removes
// it from the pool, replying with buffer_freed. The deallocated transition
// is applied before the delete (rather than after, as a literal reading of
// the reference ordering would have it) so that a BufferDeallocated trigger
// registered on the buffer still finds it in the pool and actually fires —
// a trigger fired against an already-deleted buffer id is a silent no-op.
func (m *Memory) Tick(sim *core.Simulator) {
	m.lastSim = sim

	inq := m.InQueue("in")
	issued := 0
	bytesIn, bytesOut := 0, 0

	for issued < m.maxIssuePerTick || m.maxIssuePerTick == 0 {
		if inq.Len() == 0 {
			break
		}
		item := inq.PopFront()
		issued++
		msg, ok := item.(*core.Message)
		if !ok {
			continue
		}

		var reply *core.Message
		switch msg.Kind {
		case core.KindBufferTransfer:
			if bt, ok := msg.Payload.(core.BufferTransferPayload); ok && bt.Buffer != nil {
				buf := bt.Buffer
				if sim.BufferPool.Exists(buf.ID) {
					sim.BufferPool.Transfer(buf.ID, m.Name())
				} else {
					buf.OwnerMemory = m.Name()
					sim.BufferPool.Register(buf, m.Name())
				}
				sim.BufferPool.SetState(sim, buf.ID, core.BufferResponded)
				bytesIn += buf.Size
				reply = core.NewMessage(m.Name(), msg.Src, 1, core.KindBufferAck, core.BufferAckPayload{
					BufferID: buf.ID,
				}, sim.Ticks)
			}
		case core.KindBufferConsume:
			if cp, ok := msg.Payload.(core.BufferConsumePayload); ok && cp.BufferID != "" {
				if buf := sim.BufferPool.Get(cp.BufferID); buf != nil && sim.BufferPool.Owner(cp.BufferID) == m.Name() {
					sim.BufferPool.SetState(sim, cp.BufferID, core.BufferDeallocated)
					sim.BufferPool.Delete(cp.BufferID)
					bytesOut += buf.Size
				}
				reply = core.NewMessage(m.Name(), msg.Src, 1, core.KindBufferFreed, core.BufferAckPayload{
					BufferID: cp.BufferID,
				}, sim.Ticks)
			}
		default:
			bytesIn += msg.Size
			reply = core.NewMessage(m.Name(), msg.Src, msg.Size, core.KindResp, core.RespPayload{
				ReplyTo: msg.ID,
				Kind:    msg.Kind,
			}, sim.Ticks)
		}

		if reply != nil {
			m.inflight = append(m.inflight, inflightResp{readyTick: sim.Ticks + m.latency, msg: reply})
		}

		if m.maxIssuePerTick == 0 {
			break
		}
	}

	var remaining []inflightResp
	for _, r := range m.inflight {
		if r.readyTick <= sim.Ticks {
			m.Send("out", r.msg)
		} else {
			remaining = append(remaining, r)
		}
	}
	m.inflight = remaining

	fill := bytesIn
	if fill > m.fillRate {
		fill = m.fillRate
	}
	m.bytesCurrent = clampInt(m.bytesCurrent+fill, 0, m.sizeLimit)

	drain := bytesOut
	if drain > m.drainRate {
		drain = m.drainRate
	}
	if drain > m.bytesCurrent {
		drain = m.bytesCurrent
	}
	m.bytesCurrent = clampInt(m.bytesCurrent-drain, 0, m.sizeLimit)

	wasBackpressured := m.backpressured
	m.backpressured = m.bytesCurrent >= m.sizeLimit
	if wasBackpressured != m.backpressured {
		for _, ch := range m.inboundChannels {
			ch.SetBackpressure(m.backpressured)
		}
	}
}
