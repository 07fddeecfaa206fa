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

// Metrics is the plain run-summary record incremented by Link on every
// delivery and copied from the simulator's tick counter each tick. It
// carries no behavior of its own; metrics.Exporter (a separate package)
// mirrors it as Prometheus instruments for processes that want to export
// it, but the kernel itself only ever writes to these three fields.
type Metrics struct {
	Ticks             int
	MessagesDelivered int
	BytesTransferred  int
}

// Summary returns the metrics as a plain map, matching the external
// interface contract's summary() shape.
func (m *Metrics) Summary() map[string]int {
	return map[string]int{
		"ticks":              m.Ticks,
		"messages_delivered": m.MessagesDelivered,
		"bytes_transferred":  m.BytesTransferred,
	}
}
