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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"archsim/core"
)

func TestExporter_Sample_ReflectsMetrics(t *testing.T) {
	e := NewExporter()
	e.Sample(&core.Metrics{Ticks: 42, MessagesDelivered: 7, BytesTransferred: 2048})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	e.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		"archsim_ticks 42",
		"archsim_messages_delivered_total 7",
		"archsim_bytes_transferred_total 2048",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %q, got:\n%s", want, body)
		}
	}
}

func TestExporter_TwoInstancesDoNotCollide(t *testing.T) {
	e1 := NewExporter()
	e2 := NewExporter()
	e1.Sample(&core.Metrics{Ticks: 1})
	e2.Sample(&core.Metrics{Ticks: 2})

	rec1 := httptest.NewRecorder()
	e1.Handler().ServeHTTP(rec1, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	rec2 := httptest.NewRecorder()
	e2.Handler().ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rec1.Body.String(), "archsim_ticks 1") {
		t.Fatalf("exporter 1 did not report its own value")
	}
	if !strings.Contains(rec2.Body.String(), "archsim_ticks 2") {
		t.Fatalf("exporter 2 did not report its own value")
	}
}
