// Copyright 2024 Intel Corporation. All Rights Reserved.
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

// Package memdb keeps the registry of memory modules the daemon has seen
// errors on, keyed by their (socket, channel, slot) location.
package memdb

import "fmt"

// DIMM is one memory module.
type DIMM struct {
	Socket  int
	Channel int
	Slot    int
}

// Location renders the module location for log messages and trigger
// environments. Unknown coordinates are reported as '?'.
func (d *DIMM) Location() string {
	return fmt.Sprintf("SOCKET %s CHANNEL %s DIMM %s",
		coord(d.Socket), coord(d.Channel), coord(d.Slot))
}

func coord(n int) string {
	if n < 0 {
		return "?"
	}
	return fmt.Sprintf("%d", n)
}

// DB is the module registry.
type DB struct {
	dimms map[key]*DIMM
}

type key struct {
	socket, channel, slot int
}

// New creates an empty registry.
func New() *DB {
	return &DB{dimms: make(map[key]*DIMM)}
}

// Get looks up the DIMM at the given location, creating it when create is
// set. Returns nil for an unknown location without create.
func (db *DB) Get(socket, channel, slot int, create bool) *DIMM {
	k := key{socket, channel, slot}
	if d, ok := db.dimms[k]; ok {
		return d
	}
	if !create {
		return nil
	}

	d := &DIMM{Socket: socket, Channel: channel, Slot: slot}
	db.dimms[k] = d

	return d
}

// Len returns the number of registered modules.
func (db *DB) Len() int {
	return len(db.dimms)
}
