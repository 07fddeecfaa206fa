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

package topologycfg

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestBuild_SimpleMemoryAndComputeTopology(t *testing.T) {
	doc := Doc{
		Resources: []ResourceSpec{
			{Name: "cpu0", Kind: "compute", TotalRequests: 5, RequestSize: 64, IssueInterval: 1, RequestKind: "read"},
			{Name: "memory", Kind: "memory", Latency: 10, MaxIssuePerTick: 1, SizeLimit: 1 << 20, FillRate: 1 << 20, DrainRate: 1 << 20},
		},
		Links: []LinkSpec{
			{Src: "cpu0", SrcPort: "out0", Dst: "memory", DstPort: "in", Bandwidth: 128, Latency: 1},
			{Src: "memory", SrcPort: "out", Dst: "cpu0", DstPort: "in0", Bandwidth: 128, Latency: 0},
		},
	}

	sim, err := Build(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim == nil {
		t.Fatalf("expected non-nil simulator")
	}
	if _, ok := sim.Topology.Lookup("cpu0"); !ok {
		t.Fatalf("expected cpu0 to be present in topology")
	}
	if _, ok := sim.Topology.Lookup("memory"); !ok {
		t.Fatalf("expected memory to be present in topology")
	}
}

func TestBuild_UnknownResourceKind(t *testing.T) {
	doc := Doc{Resources: []ResourceSpec{{Name: "x", Kind: "nonsense"}}}
	if _, err := Build(doc); err == nil {
		t.Fatalf("expected error for unknown resource kind")
	}
}

func TestBuild_LinkReferencesUnknownResource(t *testing.T) {
	doc := Doc{
		Resources: []ResourceSpec{{Name: "memory", Kind: "memory", Latency: 1, MaxIssuePerTick: 1, SizeLimit: 1024, FillRate: 1024, DrainRate: 1024}},
		Links:     []LinkSpec{{Src: "ghost", SrcPort: "out", Dst: "memory", DstPort: "in"}},
	}
	if _, err := Build(doc); err == nil {
		t.Fatalf("expected error for link referencing unknown src")
	}
}

func TestLoadYAML_ParsesFileAndBuilds(t *testing.T) {
	doc := Doc{
		Resources: []ResourceSpec{
			{Name: "sem", Kind: "semaphore_station", Count: 4},
			{Name: "client", Kind: "semaphore_client", Station: "sem", Index: 0},
		},
		Links: []LinkSpec{
			{Src: "client", SrcPort: "out", Dst: "sem", DstPort: "in", Bandwidth: 1, Latency: 0},
			{Src: "sem", SrcPort: "out", Dst: "client", DstPort: "in", Bandwidth: 1, Latency: 0},
		},
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "topology.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sim, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim == nil {
		t.Fatalf("expected non-nil simulator")
	}
}

func TestLoadYAML_MissingFile(t *testing.T) {
	if _, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
