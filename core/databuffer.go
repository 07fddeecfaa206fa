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

import "crypto/rand"

// BufferState is the stable wire representation of a DataBuffer's lifecycle
// stage. Transitions are driven exclusively through BufferPool.SetState.
type BufferState string

const (
	BufferAllocated   BufferState = "allocated"
	BufferTransit     BufferState = "transit"
	BufferArrived     BufferState = "arrived"
	BufferResponded   BufferState = "responded"
	BufferInUse       BufferState = "inuse"
	BufferDeallocated BufferState = "deallocated"
)

// BufferRole distinguishes the two ends of a buffer transfer.
type BufferRole string

const (
	RoleSource      BufferRole = "source"
	RoleDestination BufferRole = "destination"
)

// TriggerAction is the closed set of actions a Trigger may fire.
type TriggerAction string

const (
	ActionSignal TriggerAction = "signal"
	ActionWait   TriggerAction = "wait"
)

// Trigger fires a semaphore operation when a buffer transitions into the
// state named by On.
type Trigger struct {
	On      BufferState
	Action  TriggerAction
	Station string
	Index   int
}

// DataBuffer is the identified unit of payload moved between memories over
// buses, channels, and links. It is owned by exactly one resource at a time
// (tracked by BufferPool, never by the buffer itself); nothing outside
// BufferPool may mutate State, OwnerMemory, Role, or the destination fields.
// AddReceived/AddSent are the sole exception, advanced by output-queue
// transfer logic as bytes move.
type DataBuffer struct {
	ID                string
	Size              int
	Content           []byte
	State             BufferState
	OwnerMemory       string
	Role              BufferRole
	DestinationPE     string
	DestinationQueue  string
	BytesReceived     int
	BytesSent         int
	Triggers          []Trigger
}

const maxGeneratedContent = 1_000_000

// NewDataBuffer allocates a DataBuffer of the given size with Content of
// length size. Only the first maxGeneratedContent bytes are filled with
// random data; any bytes beyond that stay zero.
func NewDataBuffer(size int) *DataBuffer {
	if size <= 0 {
		panic("core: DataBuffer.Size must be > 0")
	}
	cap := size
	if cap > maxGeneratedContent {
		cap = maxGeneratedContent
	}
	content := make([]byte, size)
	if _, err := rand.Read(content[:cap]); err != nil {
		// content is cosmetic; a read failure just leaves zero bytes
	}
	return &DataBuffer{
		ID:      newID("buf"),
		Size:    size,
		Content: content,
		State:   BufferAllocated,
		Role:    RoleSource,
	}
}

// Buffering is the derived in-flight byte count: bytes staged for sending
// that have not yet been sent.
func (b *DataBuffer) Buffering() int {
	v := b.BytesReceived - b.BytesSent
	if v < 0 {
		return 0
	}
	return v
}

// AddReceived saturates BytesReceived to [0, Size].
func (b *DataBuffer) AddReceived(amount int) {
	b.BytesReceived = clamp(b.BytesReceived+amount, 0, b.Size)
}

// AddSent saturates BytesSent to [0, Size].
func (b *DataBuffer) AddSent(amount int) {
	b.BytesSent = clamp(b.BytesSent+amount, 0, b.Size)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DataBufferDTO is the serializable projection of a DataBuffer, used for
// round-tripping buffers across the wire (payloads crossing resource
// boundaries carry a *DataBuffer by reference in this Go translation, but
// the DTO exists so cross-process or on-disk representations remain
// possible without reopening the pool's ownership rules).
type DataBufferDTO struct {
	ID               string
	Size             int
	Content          []byte
	State            BufferState
	OwnerMemory      string
	Role             BufferRole
	DestinationPE    string
	DestinationQueue string
	BytesReceived    int
	BytesSent        int
	Triggers         []Trigger
}

// ToDTO projects the buffer into its serializable form.
func (b *DataBuffer) ToDTO() DataBufferDTO {
	triggers := make([]Trigger, len(b.Triggers))
	copy(triggers, b.Triggers)
	return DataBufferDTO{
		ID:               b.ID,
		Size:             b.Size,
		Content:          b.Content,
		State:            b.State,
		OwnerMemory:      b.OwnerMemory,
		Role:             b.Role,
		DestinationPE:    b.DestinationPE,
		DestinationQueue: b.DestinationQueue,
		BytesReceived:    b.BytesReceived,
		BytesSent:        b.BytesSent,
		Triggers:         triggers,
	}
}

// DataBufferFromDTO reconstructs a DataBuffer from its serializable form.
// If id is empty a fresh one is generated, mirroring the reference
// implementation's from_dict fallback.
func DataBufferFromDTO(d DataBufferDTO) *DataBuffer {
	id := d.ID
	if id == "" {
		id = newID("buf")
	}
	triggers := make([]Trigger, len(d.Triggers))
	copy(triggers, d.Triggers)
	return &DataBuffer{
		ID:               id,
		Size:             d.Size,
		Content:          d.Content,
		State:            d.State,
		OwnerMemory:      d.OwnerMemory,
		Role:             d.Role,
		DestinationPE:    d.DestinationPE,
		DestinationQueue: d.DestinationQueue,
		BytesReceived:    d.BytesReceived,
		BytesSent:        d.BytesSent,
		Triggers:         triggers,
	}
}
