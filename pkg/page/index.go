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

package page

import (
	"github.com/google/btree"
)

// addrIndex maps page aligned physical addresses to their records,
// ordered so iteration yields ascending addresses. Invariant: every
// indexed record is keyed under its own addr field.
type addrIndex struct {
	tree *btree.BTreeG[*PageRecord]
}

func newAddrIndex() *addrIndex {
	return &addrIndex{
		tree: btree.NewG(8, func(a, b *PageRecord) bool {
			return a.addr < b.addr
		}),
	}
}

// lookup returns the record bound to addr, nil when none is.
func (ix *addrIndex) lookup(addr uint64) *PageRecord {
	r, ok := ix.tree.Get(&PageRecord{addr: addr})
	if !ok {
		return nil
	}
	return r
}

// insert binds addr to the record. If the address is already bound the
// existing record is returned and the index is left unchanged.
func (ix *addrIndex) insert(addr uint64, r *PageRecord) *PageRecord {
	if existing := ix.lookup(addr); existing != nil {
		return existing
	}
	r.addr = addr
	ix.tree.ReplaceOrInsert(r)
	return nil
}

// remove unbinds the record from its current address.
func (ix *addrIndex) remove(r *PageRecord) {
	ix.tree.Delete(r)
}

// rebind moves the record from its current address to addr. The entry
// under the old address disappears and the record is reindexed in one
// step, keeping the key == addr invariant.
func (ix *addrIndex) rebind(addr uint64, r *PageRecord) {
	ix.tree.Delete(r)
	r.addr = addr
	ix.tree.ReplaceOrInsert(r)
}

// ascend walks the records in ascending address order until fn returns
// false.
func (ix *addrIndex) ascend(fn func(*PageRecord) bool) {
	ix.tree.Ascend(fn)
}

// len returns the number of indexed records.
func (ix *addrIndex) len() int {
	return ix.tree.Len()
}
