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
	"math/rand"

	"archsim/core"
)

// PEMode selects a ProcessingElement's scheduling discipline.
type PEMode string

const (
	// PEDummy greedily gathers the head of every input port each tick and
	// emits a single output buffer sized by in_out_ratio. No command is
	// required.
	PEDummy PEMode = "dummy"
	// PEPro drives an idle/busy/backpressured state machine keyed off a
	// command popped from the "cmd" port, consuming inputs at a
	// command-specified rate with randomized backpressure stalls.
	PEPro PEMode = "pro"
)

type peInputSlot struct {
	buf       *core.DataBuffer
	remaining int
}

// ProcessingElement is a base resource with multiple named input ports, one
// or more output ports, and an optional command port, combining gathered
// inputs into produced output buffers. dummy mode needs no command and
// converts whatever is waiting each tick; pro mode runs a command-driven
// consume/produce state machine with injectable randomized backpressure.
type ProcessingElement struct {
	*core.Resource

	mode          PEMode
	inNames       []string
	outNames      []string
	inOutRatioIn  int
	inOutRatioOut int
	outputTarget  string

	backpressureProb float64
	rng              *rand.Rand

	busyThisTick bool
	ticks        int
	busyTicks    int

	state            string // idle | busy | backpressured
	currentInputs    []peInputSlot
	consumeRate      int
	outputProgress   int
	expectedOutSize  int
}

// NewProcessingElement constructs a PE. inQueues and outQueues must each be
// >= 1; mode must be PEDummy or PEPro; inOutRatio expresses the
// output:input size ratio as a pair of positive integers; rng seeds the
// backpressure simulation (pro mode only) — callers wanting a
// reproducible run should pass a rand.New(rand.NewSource(seed)).
func NewProcessingElement(name string, inQueues, outQueues int, mode PEMode, inOutRatioIn, inOutRatioOut int, outputTarget string, backpressureProb float64, rng *rand.Rand) *ProcessingElement {
	if inQueues <= 0 || outQueues <= 0 {
		panic("resources: ProcessingElement requires at least one input and one output queue")
	}
	if mode != PEDummy && mode != PEPro {
		panic("resources: ProcessingElement mode must be 'dummy' or 'pro'")
	}
	if inOutRatioIn <= 0 {
		inOutRatioIn = 1
	}
	if backpressureProb < 0 {
		backpressureProb = 0
	}
	if backpressureProb > 1 {
		backpressureProb = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	pe := &ProcessingElement{
		Resource:         core.NewResource(name),
		mode:             mode,
		inOutRatioIn:     inOutRatioIn,
		inOutRatioOut:    inOutRatioOut,
		outputTarget:     outputTarget,
		backpressureProb: backpressureProb,
		rng:              rng,
		state:            "idle",
	}
	for i := 0; i < inQueues; i++ {
		n := fmt.Sprintf("in%d", i)
		pe.inNames = append(pe.inNames, n)
		pe.AddPort(n, "in")
	}
	for i := 0; i < outQueues; i++ {
		n := fmt.Sprintf("out%d", i)
		pe.outNames = append(pe.outNames, n)
		pe.AddPort(n, "out")
	}
	pe.AddPort("cmd", "in")
	return pe
}

func itemSizeAndBuffer(item any) (int, *core.DataBuffer) {
	switch v := item.(type) {
	case *core.DataBuffer:
		return v.Size, v
	case *core.Message:
		if bt, ok := v.Payload.(core.BufferTransferPayload); ok && bt.Buffer != nil {
			return bt.Buffer.Size, bt.Buffer
		}
		return v.Size, nil
	default:
		return 1, nil
	}
}

func (pe *ProcessingElement) gatherInputs() []any {
	var gathered []any
	for _, n := range pe.inNames {
		q := pe.InQueue(n)
		if q.Len() > 0 {
			gathered = append(gathered, q.PopFront())
		}
	}
	return gathered
}

func (pe *ProcessingElement) emitOutput(sim *core.Simulator, buf *core.DataBuffer) {
	dst := pe.outputTarget
	if dst == "" {
		dst = "memory"
	}
	msg := core.NewMessage(pe.Name(), dst, buf.Size, core.KindBufferTransfer, core.BufferTransferPayload{Buffer: buf}, sim.Ticks)
	pe.Send(pe.outNames[0], msg)
}

func (pe *ProcessingElement) dummyProcess(sim *core.Simulator) {
	inputs := pe.gatherInputs()
	if len(inputs) == 0 {
		return
	}
	total := 0
	for _, item := range inputs {
		size, _ := itemSizeAndBuffer(item)
		total += size
	}
	outSize := total * pe.inOutRatioOut / pe.inOutRatioIn
	if outSize < 1 {
		outSize = 1
	}

	buf := sim.BufferPool.Create(outSize, pe.Name())
	sim.BufferPool.SetState(sim, buf.ID, core.BufferAllocated)
	pe.emitOutput(sim, buf)
	sim.BufferPool.SetState(sim, buf.ID, core.BufferTransit)
	pe.busyThisTick = true
}

func (pe *ProcessingElement) startCommandIfReady() {
	cmdq := pe.InQueue("cmd")
	if cmdq.Len() == 0 {
		return
	}
	for _, n := range pe.inNames {
		if pe.InQueue(n).Len() == 0 {
			return
		}
	}
	cmdItem := cmdq.PopFront()
	rate := 64
	if cmdMsg, ok := cmdItem.(*core.Message); ok {
		if sp, ok := cmdMsg.Payload.(core.SemPayload); ok && sp.Value > 0 {
			rate = sp.Value
		}
	}
	if rate < 1 {
		rate = 1
	}

	pe.currentInputs = nil
	totalIn := 0
	for _, n := range pe.inNames {
		item := pe.InQueue(n).PopFront()
		size, buf := itemSizeAndBuffer(item)
		pe.currentInputs = append(pe.currentInputs, peInputSlot{buf: buf, remaining: size})
		totalIn += size
	}
	pe.consumeRate = rate
	pe.expectedOutSize = totalIn * pe.inOutRatioOut / pe.inOutRatioIn
	if pe.expectedOutSize < 1 {
		pe.expectedOutSize = 1
	}
	pe.outputProgress = 0
	pe.state = "busy"
}

func (pe *ProcessingElement) simulateBackpressure() bool { return pe.rng.Float64() < pe.backpressureProb }
func (pe *ProcessingElement) relieveBackpressure() bool   { return pe.rng.Float64() < 0.5 }

func (pe *ProcessingElement) allInputsConsumed() bool {
	for _, slot := range pe.currentInputs {
		if slot.remaining > 0 {
			return false
		}
	}
	return true
}

func (pe *ProcessingElement) finishBatch(sim *core.Simulator) {
	buf := sim.BufferPool.Create(pe.expectedOutSize, pe.Name())
	buf.Role = core.RoleDestination
	buf.OwnerMemory = pe.Name()
	sim.BufferPool.SetState(sim, buf.ID, core.BufferAllocated)
	pe.emitOutput(sim, buf)
	sim.BufferPool.SetState(sim, buf.ID, core.BufferTransit)

	for _, slot := range pe.currentInputs {
		if slot.buf != nil && sim.BufferPool.Exists(slot.buf.ID) {
			sim.BufferPool.SetState(sim, slot.buf.ID, core.BufferDeallocated)
			sim.BufferPool.Delete(slot.buf.ID)
		}
	}
	pe.currentInputs = nil
	pe.state = "idle"
}

// Tick runs one scheduling pass per mode, tracking whether the PE did any
// work this tick for utilization accounting.
func (pe *ProcessingElement) Tick(sim *core.Simulator) {
	pe.busyThisTick = false

	if pe.mode == PEDummy {
		pe.dummyProcess(sim)
		return
	}

	if pe.state == "idle" {
		pe.startCommandIfReady()
	}
	if pe.state == "backpressured" {
		if pe.relieveBackpressure() {
			pe.state = "busy"
		} else {
			return
		}
	}
	if pe.state != "busy" {
		return
	}
	if pe.simulateBackpressure() {
		pe.state = "backpressured"
		return
	}
	if len(pe.currentInputs) == 0 {
		pe.state = "idle"
		return
	}

	budget := pe.consumeRate
	consumed := 0
	for i := range pe.currentInputs {
		if budget <= 0 {
			break
		}
		rem := pe.currentInputs[i].remaining
		if rem <= 0 {
			continue
		}
		take := rem
		if take > budget {
			take = budget
		}
		pe.currentInputs[i].remaining = rem - take
		budget -= take
		consumed += take
	}
	pe.outputProgress += consumed
	pe.busyThisTick = consumed > 0

	if pe.allInputsConsumed() {
		pe.finishBatch(sim)
	}
}

// FinalizeTick folds busy/idle accounting for AvgUtilization.
func (pe *ProcessingElement) FinalizeTick(sim *core.Simulator) {
	pe.ticks++
	if pe.busyThisTick {
		pe.busyTicks++
	}
}

// AvgUtilization is the fraction of finalized ticks during which the PE did
// work.
func (pe *ProcessingElement) AvgUtilization() float64 {
	if pe.ticks == 0 {
		return 0
	}
	return float64(pe.busyTicks) / float64(pe.ticks)
}

// State exposes the pro-mode state machine's current state for tracing.
func (pe *ProcessingElement) State() string { return pe.state }
