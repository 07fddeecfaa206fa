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
	"testing"

	"archsim/core"
)

func newTestSim(res ...core.SimResource) *core.Simulator {
	topo := core.NewTopology()
	topo.Add(res...)
	return core.NewSimulator(topo)
}

func TestSemaphoreStation_WaitBlocksThenSignalGrants(t *testing.T) {
	sem := NewSemaphoreStation("sem", 4)
	sim := newTestSim(sem)

	waitMsg := core.NewMessage("waiter", "sem", 1, core.KindSemWait, core.SemPayload{Index: 0}, sim.Ticks)
	sem.InQueue("in").PushBack(waitMsg)
	sim.Tick()

	out := sem.OutQueue("out")
	if out.Len() != 1 {
		t.Fatalf("expected only a sem_ack(wait_enqueued) for an unmet wait, got %d messages", out.Len())
	}
	ack := out.PopFront().(*core.Message)
	if ack.Kind != core.KindSemAck {
		t.Fatalf("expected sem_ack, got %s", ack.Kind)
	}
	payload := ack.Payload.(core.SemPayload)
	if payload.Action != "wait_enqueued" {
		t.Fatalf("expected action wait_enqueued, got %s", payload.Action)
	}

	signalMsg := core.NewMessage("signaler", "sem", 1, core.KindSemSignal, core.SemPayload{Index: 0}, sim.Ticks)
	sem.InQueue("in").PushBack(signalMsg)
	sim.Tick()

	var sawGranted, sawAck bool
	for out.Len() > 0 {
		m := out.PopFront().(*core.Message)
		switch m.Kind {
		case core.KindSemGranted:
			sawGranted = true
			if m.Dst != "waiter" {
				t.Fatalf("expected sem_granted to go to the waiter, got dst=%s", m.Dst)
			}
		case core.KindSemAck:
			sawAck = true
			if m.Dst != "signaler" {
				t.Fatalf("expected sem_ack to go to the signaler, got dst=%s", m.Dst)
			}
		}
	}
	if !sawGranted || !sawAck {
		t.Fatalf("expected both a sem_granted and a sem_ack after the signal, got granted=%v ack=%v", sawGranted, sawAck)
	}
}

func TestSemaphoreStation_WaitImmediateWhenCounterPositive(t *testing.T) {
	sem := NewSemaphoreStation("sem", 2)
	sim := newTestSim(sem)

	sem.InQueue("in").PushBack(core.NewMessage("signaler", "sem", 1, core.KindSemSignal, core.SemPayload{Index: 1}, sim.Ticks))
	sim.Tick()
	sem.OutQueue("out").PopFront() // drain the signal's own ack

	sem.InQueue("in").PushBack(core.NewMessage("waiter", "sem", 1, core.KindSemWait, core.SemPayload{Index: 1}, sim.Ticks))
	sim.Tick()

	out := sem.OutQueue("out")
	if out.Len() != 2 {
		t.Fatalf("expected sem_granted + sem_ack(wait_immediate), got %d messages", out.Len())
	}
}

func TestSemaphoreStation_GrantsTwoQueuedWaitersInArrivalOrder(t *testing.T) {
	sem := NewSemaphoreStation("sem", 2)
	sim := newTestSim(sem)

	sem.InQueue("in").PushBack(core.NewMessage("first", "sem", 1, core.KindSemWait, core.SemPayload{Index: 0}, sim.Ticks))
	sem.InQueue("in").PushBack(core.NewMessage("second", "sem", 1, core.KindSemWait, core.SemPayload{Index: 0}, sim.Ticks))
	sim.Tick()
	sem.OutQueue("out").PopFront() // first's wait_enqueued ack
	sem.OutQueue("out").PopFront() // second's wait_enqueued ack

	sem.InQueue("in").PushBack(core.NewMessage("signaler", "sem", 1, core.KindSemSignal, core.SemPayload{Index: 0}, sim.Ticks))
	sem.InQueue("in").PushBack(core.NewMessage("signaler", "sem", 1, core.KindSemSignal, core.SemPayload{Index: 0}, sim.Ticks))
	sim.Tick()

	out := sem.OutQueue("out")
	var grantOrder []string
	for out.Len() > 0 {
		m := out.PopFront().(*core.Message)
		if m.Kind == core.KindSemGranted {
			grantOrder = append(grantOrder, m.Dst)
		}
	}
	if len(grantOrder) != 2 || grantOrder[0] != "first" || grantOrder[1] != "second" {
		t.Fatalf("expected grants in FIFO arrival order [first second], got %v", grantOrder)
	}
}

func TestSemaphoreStation_ValueNeverNegativeAndPositiveImpliesNoWaiters(t *testing.T) {
	sem := NewSemaphoreStation("sem", 1)
	sim := newTestSim(sem)

	for i := 0; i < 3; i++ {
		sem.InQueue("in").PushBack(core.NewMessage("signaler", "sem", 1, core.KindSemSignal, core.SemPayload{Index: 0}, sim.Ticks))
	}
	sim.Tick()

	if sem.values[0] < 0 {
		t.Fatalf("expected a counting semaphore to never go negative, got %d", sem.values[0])
	}
	if sem.values[0] > 0 && len(sem.waiters[0]) != 0 {
		t.Fatalf("invariant violated: values[0]=%d > 0 but waiters[0] has %d entries", sem.values[0], len(sem.waiters[0]))
	}
}

func TestSemaphoreStation_InvalidIndexIsSilentlyDropped(t *testing.T) {
	sem := NewSemaphoreStation("sem", 2)
	sim := newTestSim(sem)

	sem.InQueue("in").PushBack(core.NewMessage("waiter", "sem", 1, core.KindSemWait, core.SemPayload{Index: 99}, sim.Ticks))
	sim.Tick()

	if sem.OutQueue("out").Len() != 0 {
		t.Fatalf("expected an out-of-range index to produce no messages at all")
	}
}
