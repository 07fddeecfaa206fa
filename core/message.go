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

// Package core implements the discrete-event simulation kernel: messages,
// data buffers, queues, the resource/link/channel transport model, the
// topology registry, the global buffer pool, and the tick-driven simulator.
package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Kind tags the shape of a Message's payload. The wire values are stable
// strings per the external interface contract; callers should not assume
// any ordering relationship between kinds.
type Kind string

const (
	KindRead            Kind = "read"
	KindWrite           Kind = "write"
	KindResp            Kind = "resp"
	KindData            Kind = "data"
	KindBufferTransfer  Kind = "buffer_transfer"
	KindBufferConsume   Kind = "buffer_consume"
	KindBufferAck       Kind = "buffer_ack"
	KindBufferFreed     Kind = "buffer_freed"
	KindSemSignal       Kind = "sem_signal"
	KindSemWait         Kind = "sem_wait"
	KindSemGranted      Kind = "sem_granted"
	KindSemAck          Kind = "sem_ack"
)

// BufferTransferPayload accompanies a KindBufferTransfer message.
type BufferTransferPayload struct {
	Buffer *DataBuffer
}

// BufferConsumePayload accompanies a KindBufferConsume message.
type BufferConsumePayload struct {
	BufferID string
}

// BufferAckPayload accompanies KindBufferAck / KindBufferFreed messages.
type BufferAckPayload struct {
	BufferID string
}

// RespPayload accompanies a KindResp message.
type RespPayload struct {
	ReplyTo string
	Kind    Kind
}

// SemPayload accompanies sem_signal/sem_wait/sem_granted/sem_ack messages.
type SemPayload struct {
	Index    int
	ReplyTo  string
	Action   string // "signal" | "wait_immediate" | "wait_enqueued"
	Value    int
	BufferID string
	State    BufferState
}

// Message is a tagged transport unit moved through links and channels.
// It is treated as immutable once sent; nothing in this package mutates a
// Message after it has been enqueued onto an out-port.
type Message struct {
	Src       string
	Dst       string
	Size      int
	Kind      Kind
	Payload   any
	CreatedAt int
	ID        string
	ReplyTo   string
}

// NewMessage constructs a Message, assigning it a unique id. It panics if
// size <= 0, matching the construction-time failure policy for malformed
// messages: a size-less message can never make progress through a link.
func NewMessage(src, dst string, size int, kind Kind, payload any, createdAt int) *Message {
	if size <= 0 {
		panic("core: Message.Size must be > 0")
	}
	return &Message{
		Src:       src,
		Dst:       dst,
		Size:      size,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: createdAt,
		ID:        newID("msg"),
	}
}

func newID(prefix string) string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is not something callers can recover from
		// meaningfully here; fall back to a fixed suffix rather than panic,
		// since an id collision in a single run is harmless.
		return fmt.Sprintf("%s-00000000", prefix)
	}
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(buf[:]))
}
