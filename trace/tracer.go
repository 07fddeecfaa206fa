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

// Package trace provides a console tracer that prints per-tick queue and
// link occupancy, wired as the simulator's optional Tracer.
package trace

import (
	"fmt"
	"sort"

	"archsim/core"
)

// Options controls what ConsoleTracer prints each tick.
type Options struct {
	Every     int  // print every N ticks; <= 0 disables printing entirely
	Queues    bool // print non-empty port occupancy per resource
	Links     bool // print per-link bytes moved and pipeline occupancy
	ShowEmpty bool // include empty queues/links/channels in the listing
}

// DefaultOptions matches the reference tracer's defaults: print every tick,
// show queues and links, omit anything empty.
func DefaultOptions() Options {
	return Options{Every: 1, Queues: true, Links: true, ShowEmpty: false}
}

// ConsoleTracer prints a per-tick snapshot of topology activity to stdout.
type ConsoleTracer struct {
	Opt Options
}

// NewConsoleTracer constructs a tracer with the given options.
func NewConsoleTracer(opt Options) *ConsoleTracer { return &ConsoleTracer{Opt: opt} }

// OnTick implements core.Tracer.
func (c *ConsoleTracer) OnTick(sim *core.Simulator) {
	t := sim.Ticks
	if c.Opt.Every <= 0 || t%c.Opt.Every != 0 {
		return
	}

	fmt.Printf("[tick %d]\n", t)

	if c.Opt.Queues {
		c.printQueues(sim)
	}
	if c.Opt.Links {
		c.printLinks(sim)
	}
	c.printChannels(sim)
}

func (c *ConsoleTracer) printQueues(sim *core.Simulator) {
	for _, res := range sortedResources(sim.Topology) {
		namer, ok := res.(interface{ Name() string })
		if !ok {
			continue
		}
		inboxer, hasIn := res.(interface{ Inbox() map[string]*core.Deque })
		outboxer, hasOut := res.(interface{ Outbox() map[string]*core.Deque })
		if !hasIn || !hasOut {
			continue
		}
		var lines []string
		for port, q := range inboxer.Inbox() {
			if c.Opt.ShowEmpty || q.Len() > 0 {
				lines = append(lines, fmt.Sprintf("in:%s=%d", port, q.Len()))
			}
		}
		for port, q := range outboxer.Outbox() {
			if c.Opt.ShowEmpty || q.Len() > 0 {
				lines = append(lines, fmt.Sprintf("out:%s=%d", port, q.Len()))
			}
		}
		if len(lines) > 0 {
			sort.Strings(lines)
			fmt.Printf("  res %s: %s\n", namer.Name(), joinComma(lines))
		}
	}
}

func (c *ConsoleTracer) printLinks(sim *core.Simulator) {
	for _, lk := range sim.Topology.Links {
		occ := 0
		for _, stage := range lk.Pipeline() {
			occ += stage.Len()
		}
		moved := lk.BytesMovedThisTick
		if c.Opt.ShowEmpty || moved > 0 || occ > 0 {
			fmt.Printf("  link %s: moved=%dB, occ=%d, bw=%d, lat=%d\n", lk.Name(), moved, occ, lk.Bandwidth(), lk.Latency())
		}
	}
}

func (c *ConsoleTracer) printChannels(sim *core.Simulator) {
	for _, res := range sortedResources(sim.Topology) {
		ch, ok := res.(*core.Channel)
		if !ok {
			continue
		}
		if c.Opt.ShowEmpty || ch.ActiveCount() > 0 {
			fmt.Printf("  chan %s: active=%d, mode=%s, avg=%.2f\n", ch.Name(), ch.ActiveCount(), ch.TransferMode, ch.AvgOccupancy())
		}
	}
}

func sortedResources(topo *core.Topology) []core.SimResource {
	return topo.Resources()
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
