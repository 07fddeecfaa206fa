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

// itemSize returns the byte accounting size of anything riding a link. Only
// *Message carries an explicit size in this system; any other item (kept
// for forward compatibility) counts as a single byte.
func itemSize(item any) int {
	if m, ok := item.(*Message); ok {
		return m.Size
	}
	return 1
}

// Link is a fixed-pipeline transport between one out-port and one in-port,
// parameterized by bandwidth (bytes/tick) and latency (ticks). Messages are
// forwarded whole: a message only moves once its size fits within the
// remaining per-tick bandwidth budget. A message whose size exceeds the
// link's bandwidth will never move — it is the topology builder's
// responsibility to size messages within each link's bandwidth.
type Link struct {
	Src     SimResource
	SrcPort string
	Dst     SimResource
	DstPort string

	bandwidth int
	latency   int
	name      string

	pipeline []Deque

	BytesMovedThisTick int
	utilizationSum     int
	ticks              int
}

// NewLink constructs a Link; bandwidth must be > 0 and latency >= 0.
func NewLink(src SimResource, srcPort string, dst SimResource, dstPort string, bandwidth, latency int, name string) *Link {
	if bandwidth <= 0 {
		panic("core: Link.bandwidth must be > 0")
	}
	if latency < 0 {
		panic("core: Link.latency must be >= 0")
	}
	stages := latency
	if stages < 1 {
		stages = 1
	}
	if name == "" {
		name = fmt.Sprintf("%s:%s->%s:%s", src.Name(), srcPort, dst.Name(), dstPort)
	}
	return &Link{
		Src:       src,
		SrcPort:   srcPort,
		Dst:       dst,
		DstPort:   dstPort,
		bandwidth: bandwidth,
		latency:   latency,
		name:      name,
		pipeline:  make([]Deque, stages),
	}
}

// Name returns the link's display name.
func (l *Link) Name() string { return l.name }

// Bandwidth returns the configured bytes-per-tick capacity.
func (l *Link) Bandwidth() int { return l.bandwidth }

// Latency returns the configured propagation delay in ticks.
func (l *Link) Latency() int { return l.latency }

// Pipeline exposes the internal pipeline stages (quiescence checks, tracing).
func (l *Link) Pipeline() []Deque { return l.pipeline }

// Tick advances the link by one step: latency >= 1 first drains the last
// pipeline stage to the destination, updates metrics, shifts every stage
// forward, then admits new items from the source's out-queue into stage 0
// subject to the bandwidth budget. latency == 0 delivers directly, still
// bandwidth-bounded.
func (l *Link) Tick(sim *Simulator) {
	l.ticks++
	l.BytesMovedThisTick = 0

	if l.latency >= 1 {
		last := &l.pipeline[len(l.pipeline)-1]
		for last.Len() > 0 {
			item := last.PopFront()
			sim.Deliver(l.Dst, l.DstPort, item)
			size := itemSize(item)
			l.BytesMovedThisTick += size
			sim.Metrics.MessagesDelivered++
			sim.Metrics.BytesTransferred += size
		}
		for i := len(l.pipeline) - 1; i > 0; i-- {
			prev := &l.pipeline[i-1]
			cur := &l.pipeline[i]
			for prev.Len() > 0 {
				cur.PushBack(prev.PopFront())
			}
		}
		capacity := l.bandwidth
		outq := l.Src.OutQueue(l.SrcPort)
		for outq.Len() > 0 && capacity >= itemSize(outq.Front()) {
			item := outq.PopFront()
			l.pipeline[0].PushBack(item)
			capacity -= itemSize(item)
		}
	} else {
		capacity := l.bandwidth
		outq := l.Src.OutQueue(l.SrcPort)
		for outq.Len() > 0 && capacity >= itemSize(outq.Front()) {
			item := outq.PopFront()
			sim.Deliver(l.Dst, l.DstPort, item)
			capacity -= itemSize(item)
			size := itemSize(item)
			l.BytesMovedThisTick += size
			sim.Metrics.MessagesDelivered++
			sim.Metrics.BytesTransferred += size
		}
	}

	l.utilizationSum += l.BytesMovedThisTick
}

// Utilization reports mean bytes moved per tick relative to bandwidth,
// clamped to [0, 1].
func (l *Link) Utilization() float64 {
	if l.ticks == 0 {
		return 0
	}
	mean := float64(l.utilizationSum) / float64(l.ticks)
	u := mean / float64(l.bandwidth)
	if u > 1 {
		return 1
	}
	return u
}
