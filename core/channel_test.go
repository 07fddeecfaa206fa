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

func TestNewChannel_PanicsOnBadTransferMode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for an unrecognized transfer mode")
		}
	}()
	NewChannel("ch", 64, 1, "bogus")
}

func TestChannel_ZeroCurrentBandwidthStallsThenRecoversOnceRestored(t *testing.T) {
	ch := NewChannel("ch", 64, 1, Interleaving)

	if ch.CurrentBandwidth() != 64 {
		t.Fatalf("expected full bandwidth before any backpressure, got %d", ch.CurrentBandwidth())
	}

	ch.SetBackpressure(true)
	if ch.CurrentBandwidth() != 0 {
		t.Fatalf("expected CurrentBandwidth=0 while backpressured, got %d", ch.CurrentBandwidth())
	}
	if ch.EstimateTicks(32) != channelStallTicks {
		t.Fatalf("expected a stalled estimate while backpressured, got %d", ch.EstimateTicks(32))
	}

	ch.SetBackpressure(false)
	if ch.CurrentBandwidth() != 64 {
		t.Fatalf("expected bandwidth restored once backpressure clears, got %d", ch.CurrentBandwidth())
	}
	if got := ch.EstimateTicks(32); got == channelStallTicks {
		t.Fatalf("expected a finite estimate once bandwidth is restored, got the stall sentinel")
	}
}
