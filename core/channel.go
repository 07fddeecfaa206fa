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

// TransferMode selects how a Channel's bandwidth is scheduled among
// concurrently admitted transfers by its feeding Arbiter.
type TransferMode string

const (
	Interleaving TransferMode = "interleaving"
	Blocking     TransferMode = "blocking"
)

// channelStallTicks is the sentinel returned by EstimateTicks when the
// channel's current bandwidth is zero (effectively stalled).
const channelStallTicks = 1 << 30

// Channel is a passive transport resource whose bandwidth and latency are
// queried by an upstream Arbiter for scheduling; it does not arbitrate
// itself. Its default tick behavior is pass-through in -> out; the real
// work of admission and scheduling happens in the feeding Arbiter, which
// calls SetActiveState each tick to drive this channel's occupancy fold.
type Channel struct {
	*Resource

	bandwidth    int
	latency      int
	TransferMode TransferMode

	ticks              int
	busyTicks          int
	activeCount        int
	lastFinalizedTick  int
	backpressured      bool
}

// NewChannel constructs a Channel; bandwidth must be > 0, latency >= 0, and
// mode one of Interleaving or Blocking.
func NewChannel(name string, bandwidth, latency int, mode TransferMode) *Channel {
	if bandwidth <= 0 {
		panic("core: Channel.bandwidth must be > 0")
	}
	if latency < 0 {
		panic("core: Channel.latency must be >= 0")
	}
	if mode != Interleaving && mode != Blocking {
		panic("core: Channel.transfer_mode must be 'interleaving' or 'blocking'")
	}
	c := &Channel{
		Resource:          NewResource(name),
		bandwidth:         bandwidth,
		latency:           latency,
		TransferMode:      mode,
		lastFinalizedTick: -1,
	}
	c.AddPort("in", "in")
	c.AddPort("out", "out")
	return c
}

// Bandwidth returns the channel's nominal bytes-per-tick capacity.
func (c *Channel) Bandwidth() int { return c.bandwidth }

// Latency returns the channel's propagation delay in ticks.
func (c *Channel) Latency() int { return c.latency }

// IsInterleaving reports whether the channel schedules in interleaving mode.
func (c *Channel) IsInterleaving() bool { return c.TransferMode == Interleaving }

// IsBlocking reports whether the channel schedules in blocking mode.
func (c *Channel) IsBlocking() bool { return c.TransferMode == Blocking }

// CurrentBandwidth is Bandwidth unless the channel is backpressured, in
// which case it is 0.
func (c *Channel) CurrentBandwidth() int {
	if c.backpressured {
		return 0
	}
	return c.bandwidth
}

// SetBackpressure sets or clears the backpressure flag.
func (c *Channel) SetBackpressure(flag bool) { c.backpressured = flag }

// Backpressured reports the current backpressure flag.
func (c *Channel) Backpressured() bool { return c.backpressured }

// EstimateTicks estimates how many ticks a transfer of size bytes would
// take to cross the channel at its current bandwidth: latency plus the
// ceiling of size/bandwidth data ticks. Returns a large sentinel if the
// channel is effectively stalled (current bandwidth 0).
func (c *Channel) EstimateTicks(size int) int {
	bw := c.CurrentBandwidth()
	if bw <= 0 {
		return channelStallTicks
	}
	if size < 1 {
		size = 1
	}
	dataTicks := (size + bw - 1) / bw
	lat := c.latency
	if lat < 0 {
		lat = 0
	}
	return lat + dataTicks
}

// SetActiveState records how many transfers are concurrently occupying the
// channel this tick, called by the feeding Arbiter each tick.
func (c *Channel) SetActiveState(nowTick, activeCount int) {
	if activeCount < 0 {
		activeCount = 0
	}
	c.activeCount = activeCount
}

// Tick forwards every message waiting on "in" straight to "out".
func (c *Channel) Tick(sim *Simulator) {
	inq := c.InQueue("in")
	for inq.Len() > 0 {
		c.Send("out", inq.PopFront())
	}
}

// FinalizeTick folds one tick into the occupancy counters, idempotent per
// simulator tick (the simulator may in principle call finalize hooks more
// than once in odd topologies; this guards against double-counting).
func (c *Channel) FinalizeTick(sim *Simulator) {
	if c.lastFinalizedTick == sim.Ticks {
		return
	}
	c.ticks++
	if c.activeCount > 0 {
		c.busyTicks++
	}
	c.lastFinalizedTick = sim.Ticks
}

// AvgOccupancy is the fraction of finalized ticks during which the channel
// was active.
func (c *Channel) AvgOccupancy() float64 {
	if c.ticks == 0 {
		return 0
	}
	return float64(c.busyTicks) / float64(c.ticks)
}

// Ticks exposes the finalize-tick counter (tracing/display).
func (c *Channel) Ticks() int { return c.ticks }

// BusyTicks exposes the busy-tick counter (tracing/display).
func (c *Channel) BusyTicks() int { return c.busyTicks }

// ActiveCount exposes the current active-transfer count (tracing).
func (c *Channel) ActiveCount() int { return c.activeCount }
