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

import "testing"

func TestBufferPool_EveryRegisteredBufferHasExactlyOneOwner(t *testing.T) {
	p := NewBufferPool()
	b := p.Create(64, "mem0")

	if owner := p.Owner(b.ID); owner != "mem0" {
		t.Fatalf("expected owner mem0, got %q", owner)
	}
	count := 0
	for owner := range map[string]bool{"mem0": true, "mem1": true} {
		if _, ok := ownedSet(p, owner)[b.ID]; ok {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected the buffer to appear in exactly one owned_by set, appeared in %d", count)
	}

	if err := p.Transfer(b.ID, "mem1"); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if owner := p.Owner(b.ID); owner != "mem1" {
		t.Fatalf("expected owner mem1 after transfer, got %q", owner)
	}
	if _, ok := ownedSet(p, "mem0")[b.ID]; ok {
		t.Fatalf("expected the buffer to be removed from mem0's owned set after transfer")
	}
	if _, ok := ownedSet(p, "mem1")[b.ID]; !ok {
		t.Fatalf("expected the buffer to appear in mem1's owned set after transfer")
	}
}

func ownedSet(p *BufferPool, owner string) map[string]bool {
	if p.ownedBy[owner] == nil {
		return map[string]bool{}
	}
	return p.ownedBy[owner]
}

func TestBufferPool_TransferOfUnknownBufferReturnsError(t *testing.T) {
	p := NewBufferPool()
	if err := p.Transfer("no-such-id", "mem0"); err == nil {
		t.Fatalf("expected an error transferring an unknown buffer id")
	}
}

func TestBufferPool_DeleteClearsAllTrackingState(t *testing.T) {
	p := NewBufferPool()
	b := p.Create(64, "mem0")
	p.SetTriggers(b.ID, []Trigger{{On: BufferArrived, Action: ActionSignal, Station: "sem", Index: 0}})
	p.RecordExpectedArrival(b.ID, 5)

	p.Delete(b.ID)

	if p.Exists(b.ID) {
		t.Fatalf("expected the buffer to no longer exist after Delete")
	}
	if p.Owner(b.ID) != "" {
		t.Fatalf("expected no owner recorded after Delete")
	}
	if _, ok := ownedSet(p, "mem0")[b.ID]; ok {
		t.Fatalf("expected the deleted buffer to be removed from its owner's set")
	}
	if p.HasPendingArrivals() {
		t.Fatalf("expected Delete to clear the buffer's expected-arrival entry")
	}
}
