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

// semWaiter is one queued sem_wait request awaiting a grant.
type semWaiter struct {
	requester string
	replyTo   string
}

// SemaphoreStation tracks an array of counting semaphores, each initialized
// to zero, and processes client requests against them:
//
//   - sem_signal increments semaphore i, unless a waiter is already queued
//     for i, in which case that waiter is granted instead and the counter
//     is left unchanged.
//   - sem_wait grants immediately (decrementing the counter) if
//     values[i] > 0; otherwise the request is enqueued until a future
//     signal arrives.
//
// An out-of-range index is silently dropped. Every processed request
// produces a sem_ack describing what happened; a granted wait additionally
// produces a sem_granted to the newly-woken client.
type SemaphoreStation struct {
	*core.Resource

	count   int
	values  []int
	waiters [][]semWaiter
}

// NewSemaphoreStation constructs a station with count independently counted
// semaphores. It panics if count <= 0; callers must supply a positive
// count.
func NewSemaphoreStation(name string, count int) *SemaphoreStation {
	if count <= 0 {
		panic("resources: SemaphoreStation.count must be > 0")
	}
	s := &SemaphoreStation{
		Resource: core.NewResource(name),
		count:    count,
		values:   make([]int, count),
		waiters:  make([][]semWaiter, count),
	}
	s.AddPort("in", "in")
	s.AddPort("out", "out")
	return s
}

func (s *SemaphoreStation) validIndex(i int) bool { return i >= 0 && i < s.count }

func (s *SemaphoreStation) grantWaiter(sim *core.Simulator, idx int) bool {
	q := s.waiters[idx]
	if len(q) == 0 {
		return false
	}
	w := q[0]
	s.waiters[idx] = q[1:]
	grant := core.NewMessage(s.Name(), w.requester, 1, core.KindSemGranted, core.SemPayload{
		Index:   idx,
		ReplyTo: w.replyTo,
	}, sim.Ticks)
	s.Send("out", grant)
	return true
}

// Tick drains the "in" queue, processing every sem_signal or sem_wait
// request in arrival order.
func (s *SemaphoreStation) Tick(sim *core.Simulator) {
	inq := s.InQueue("in")
	for inq.Len() > 0 {
		item := inq.PopFront()
		msg, ok := item.(*core.Message)
		if !ok {
			continue
		}
		payload, ok := msg.Payload.(core.SemPayload)
		if !ok || !s.validIndex(payload.Index) {
			continue
		}

		switch msg.Kind {
		case core.KindSemSignal:
			s.handleSignal(sim, payload.Index, msg)
		case core.KindSemWait:
			s.handleWait(sim, payload.Index, msg)
		}
	}
}

func (s *SemaphoreStation) handleSignal(sim *core.Simulator, idx int, req *core.Message) {
	if !s.grantWaiter(sim, idx) {
		s.values[idx]++
	}
	ack := core.NewMessage(s.Name(), req.Src, 1, core.KindSemAck, core.SemPayload{
		Index:   idx,
		ReplyTo: req.ID,
		Action:  "signal",
		Value:   s.values[idx],
	}, sim.Ticks)
	s.Send("out", ack)
}

func (s *SemaphoreStation) handleWait(sim *core.Simulator, idx int, req *core.Message) {
	if s.values[idx] > 0 {
		s.values[idx]--
		grant := core.NewMessage(s.Name(), req.Src, 1, core.KindSemGranted, core.SemPayload{
			Index:   idx,
			ReplyTo: req.ID,
		}, sim.Ticks)
		s.Send("out", grant)

		ack := core.NewMessage(s.Name(), req.Src, 1, core.KindSemAck, core.SemPayload{
			Index:   idx,
			ReplyTo: req.ID,
			Action:  "wait_immediate",
			Value:   s.values[idx],
		}, sim.Ticks)
		s.Send("out", ack)
		return
	}

	s.waiters[idx] = append(s.waiters[idx], semWaiter{requester: req.Src, replyTo: req.ID})
	ack := core.NewMessage(s.Name(), req.Src, 1, core.KindSemAck, core.SemPayload{
		Index:   idx,
		ReplyTo: req.ID,
		Action:  "wait_enqueued",
		Value:   s.values[idx],
	}, sim.Ticks)
	s.Send("out", ack)
}
