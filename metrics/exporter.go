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

// Package metrics mirrors a simulator's run summary as Prometheus
// instruments, for processes that want to expose /metrics while a run is
// in progress rather than just print a final summary.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"archsim/core"
)

// Exporter copies a *core.Metrics snapshot into a private Prometheus
// registry on every Sample call and optionally serves it over HTTP. One Exporter per
// simulator run — each gets its own registry so two concurrent runs in the
// same process never collide on metric names.
type Exporter struct {
	registry *prometheus.Registry

	ticks             prometheus.Gauge
	messagesDelivered prometheus.Gauge
	bytesTransferred  prometheus.Gauge

	server *http.Server
}

// NewExporter constructs an Exporter with its own registry and registers
// the three gauges mirroring core.Metrics.
func NewExporter() *Exporter {
	reg := prometheus.NewRegistry()
	e := &Exporter{
		registry: reg,
		ticks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "archsim_ticks",
			Help: "Current simulator tick count.",
		}),
		messagesDelivered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "archsim_messages_delivered_total",
			Help: "Cumulative count of messages delivered across every link.",
		}),
		bytesTransferred: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "archsim_bytes_transferred_total",
			Help: "Cumulative bytes transferred across every link.",
		}),
	}
	reg.MustRegister(e.ticks, e.messagesDelivered, e.bytesTransferred)
	return e
}

// Sample copies m's current values into the exporter's gauges. Call this
// after every tick, or on whatever cadence the caller finds acceptable.
func (e *Exporter) Sample(m *core.Metrics) {
	e.ticks.Set(float64(m.Ticks))
	e.messagesDelivered.Set(float64(m.MessagesDelivered))
	e.bytesTransferred.Set(float64(m.BytesTransferred))
}

// Handler returns the http.Handler serving this exporter's registry in the
// Prometheus text exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve starts a background HTTP server exposing /metrics on addr. It
// returns immediately; call Shutdown to stop it.
func (e *Exporter) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	e.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = e.server.ListenAndServe()
	}()
}

// Shutdown gracefully stops the background HTTP server, if one was started.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e.server == nil {
		return nil
	}
	return e.server.Shutdown(ctx)
}
