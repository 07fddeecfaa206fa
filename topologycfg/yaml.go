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

// Package topologycfg builds a runnable *core.Simulator from a declarative
// description: either a YAML file (this file) or a compiled Go plugin
// (plugin.go), both satisfying the same build(topology) -> Simulator
// contract the CLI expects from --config.
package topologycfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"archsim/core"
	"archsim/resources"
)

// Doc is the top-level YAML shape: a flat list of resources and a flat
// list of links connecting them by name.
type Doc struct {
	Resources []ResourceSpec `yaml:"resources"`
	Links     []LinkSpec     `yaml:"links"`
}

// ResourceSpec declares one resource by kind, with kind-specific fields
// left as zero-valued unless that kind reads them.
type ResourceSpec struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`

	// memory
	Latency         int `yaml:"latency"`
	MaxIssuePerTick int `yaml:"max_issue_per_tick"`
	SizeLimit       int `yaml:"size_limit"`
	FillRate        int `yaml:"fill_rate"`
	DrainRate       int `yaml:"drain_rate"`

	// channel
	Bandwidth    int    `yaml:"bandwidth"`
	TransferMode string `yaml:"transfer_mode"`

	// bus
	Inputs []string `yaml:"inputs"`

	// semaphore_station
	Count int `yaml:"count"`

	// generator
	Period       int    `yaml:"period"`
	BufferSize   int    `yaml:"buffer_size"`
	TargetMemory string `yaml:"target_memory"`
	StartTick    int    `yaml:"start_tick"`
	Total        int    `yaml:"total"`
	HasTotal     bool   `yaml:"has_total"`

	// semaphore_client / semaphore_recorder
	Station string `yaml:"station"`
	Index   int    `yaml:"index"`

	// compute
	TotalRequests int    `yaml:"total_requests"`
	RequestSize   int    `yaml:"request_size"`
	IssueInterval int    `yaml:"issue_interval"`
	RequestKind   string `yaml:"request_kind"`
}

// LinkSpec declares one link between two already-declared resources.
type LinkSpec struct {
	Src       string `yaml:"src"`
	SrcPort   string `yaml:"src_port"`
	Dst       string `yaml:"dst"`
	DstPort   string `yaml:"dst_port"`
	Bandwidth int    `yaml:"bandwidth"`
	Latency   int    `yaml:"latency"`
}

// LoadYAML reads path, parses it, and builds a Simulator whose topology
// matches the declared resources and links.
func LoadYAML(path string) (*core.Simulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("topologycfg: reading %s: %w", path, err)
	}
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("topologycfg: parsing %s: %w", path, err)
	}
	return Build(doc)
}

// Build constructs a Simulator from an already-parsed Doc.
func Build(doc Doc) (*core.Simulator, error) {
	topo := core.NewTopology()
	sim := core.NewSimulator(topo)

	for _, spec := range doc.Resources {
		res, err := buildResource(spec)
		if err != nil {
			return nil, err
		}
		topo.Add(res)
	}

	for _, lk := range doc.Links {
		src, ok := topo.Lookup(lk.Src)
		if !ok {
			return nil, fmt.Errorf("topologycfg: link references unknown src %q", lk.Src)
		}
		dst, ok := topo.Lookup(lk.Dst)
		if !ok {
			return nil, fmt.Errorf("topologycfg: link references unknown dst %q", lk.Dst)
		}
		topo.Connect(src, lk.SrcPort, dst, lk.DstPort, lk.Bandwidth, lk.Latency)
	}

	return sim, nil
}

func buildResource(spec ResourceSpec) (core.SimResource, error) {
	switch spec.Kind {
	case "memory":
		return resources.NewMemory(spec.Name, spec.Latency, spec.MaxIssuePerTick, spec.SizeLimit, spec.FillRate, spec.DrainRate), nil
	case "channel":
		mode := core.Interleaving
		if spec.TransferMode == "blocking" {
			mode = core.Blocking
		}
		return core.NewChannel(spec.Name, spec.Bandwidth, spec.Latency, mode), nil
	case "arbiter":
		legacy := "shared"
		if spec.TransferMode == "blocking" {
			legacy = "scheduled"
		}
		arb := resources.NewArbiter(spec.Name, legacy)
		for _, in := range spec.Inputs {
			arb.AddInput(in)
		}
		return arb, nil
	case "bus":
		bus := resources.NewBus(spec.Name, spec.Bandwidth)
		for _, in := range spec.Inputs {
			bus.AddInput(in)
		}
		return bus, nil
	case "semaphore_station":
		count := spec.Count
		if count <= 0 {
			count = 32
		}
		return resources.NewSemaphoreStation(spec.Name, count), nil
	case "semaphore_client":
		return resources.NewSemaphoreClient(spec.Name, spec.Station, spec.Index, spec.StartTick, spec.Period, spec.Period > 0), nil
	case "semaphore_recorder":
		return resources.NewSemaphoreRecorder(spec.Name, spec.Station, spec.Index, spec.StartTick), nil
	case "generator":
		return resources.NewBufferGenerator(spec.Name, spec.Period, spec.BufferSize, spec.TargetMemory, spec.StartTick, spec.Total, spec.HasTotal, nil), nil
	case "compute":
		kind := core.Kind(spec.RequestKind)
		if kind == "" {
			kind = core.KindRead
		}
		return resources.NewComputeUnit(spec.Name, spec.TotalRequests, spec.RequestSize, spec.IssueInterval, kind), nil
	default:
		return nil, fmt.Errorf("topologycfg: unknown resource kind %q for %q", spec.Kind, spec.Name)
	}
}
