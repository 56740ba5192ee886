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

// Package page implements per-page corrected memory error accounting: a
// bounded table of error counters over 4 KiB physical pages, leaky-bucket
// thresholds on each counter, and page offlining through the kernel sysfs
// interface when a page keeps misbehaving.
package page

import "github.com/AnkitSaxena114/mcelog/pkg/bucket"

// Accounting works on 2^12 = 4 KiB pages.
const (
	PageShift = 12
	PageSize  = uint64(1) << PageShift
)

// State is the offline state of a tracked page.
type State uint8

const (
	// Online pages are still handed out by the kernel.
	Online State = iota
	// Offline pages were successfully retired.
	Offline
	// OfflineFailed pages could not be retired.
	OfflineFailed
)

var stateNames = map[State]string{
	Online:        "online",
	Offline:       "offline",
	OfflineFailed: "offline-failed",
}

func (s State) String() string {
	return stateNames[s]
}

// PageRecord is the accounting state of one tracked page. Records live in
// cluster slots owned by the pool; the address index refers to them by
// pointer. A record not present in the index is dead storage awaiting
// reuse.
type PageRecord struct {
	addr      uint64 // page aligned physical address
	state     State
	triggered bool // latches once the per-page threshold ever fired
	count     uint64
	ce        bucket.Bucket
	owner     *cluster
}

// Addr returns the page aligned physical address of the record.
func (r *PageRecord) Addr() uint64 {
	return r.addr
}

// State returns the offline state of the page.
func (r *PageRecord) State() State {
	return r.state
}

// Triggered reports whether the per-page threshold has ever fired for
// this record. The flag is a latch: it records that the page was acted
// on at least once, not a current state.
func (r *PageRecord) Triggered() bool {
	return r.triggered
}

// Count returns the corrected error total since the record was
// (re)initialized.
func (r *PageRecord) Count() uint64 {
	return r.count
}
