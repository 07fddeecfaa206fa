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

// Package display pretty-prints a topology's resources and links, used by
// the CLI's --show-topology flag.
package display

import (
	"fmt"
	"reflect"

	"archsim/core"
)

// ShowTopology prints every resource (by dynamic type name) and every link
// to stdout.
func ShowTopology(topo *core.Topology) {
	fmt.Println("archsim topology:")

	fmt.Println("- resources:")
	for _, res := range topo.Resources() {
		kind := reflect.TypeOf(res).Elem().Name()
		extra := ""
		if ch, ok := res.(*core.Channel); ok {
			extra = fmt.Sprintf(" (bw=%d, lat=%d, mode=%s)", ch.Bandwidth(), ch.Latency(), ch.TransferMode)
		}
		fmt.Printf("  - %s: %s%s\n", res.Name(), kind, extra)
	}

	fmt.Println("- links:")
	for _, lk := range topo.Links {
		fmt.Printf("  - %s:%s -> %s:%s (bw=%d, lat=%d)\n", lk.Src.Name(), lk.SrcPort, lk.Dst.Name(), lk.DstPort, lk.Bandwidth(), lk.Latency())
	}
}
