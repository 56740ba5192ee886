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
	"container/list"
	"unsafe"
)

// slotsPerCluster is how many records fit a page-sized backing region
// next to the LRU link, the same packing the record table is sized
// against at setup.
var slotsPerCluster = int((PageSize - uint64(unsafe.Sizeof(list.Element{}))) /
	uint64(unsafe.Sizeof(PageRecord{})))

// cluster groups records allocated temporally close. Reclamation picks a
// whole cluster (the LRU tail), but its records are evicted one slot at a
// time as each slot is reused; until then they stay indexed.
type cluster struct {
	records []PageRecord
	used    int
	elem    *list.Element // position on the pool LRU list
}

// clusterPool hands out record slots from page-sized clusters and keeps
// the clusters on an LRU list for eviction. Exactly one cluster is the
// current append target.
type clusterPool struct {
	current *cluster
	lru     *list.List // front is the most recently touched cluster
}

func newClusterPool() *clusterPool {
	return &clusterPool{lru: list.New()}
}

// newCluster allocates a cluster and places it at the LRU head.
func (p *clusterPool) newCluster() *cluster {
	c := &cluster{records: make([]PageRecord, slotsPerCluster)}
	c.elem = p.lru.PushFront(c)
	for i := range c.records {
		c.records[i].owner = c
	}
	return c
}

// alloc returns the next free slot, growing the pool by one cluster when
// the current one is full. Only called while the record table is under
// its configured bound.
func (p *clusterPool) alloc() *PageRecord {
	if p.current == nil || p.current.used == slotsPerCluster {
		p.current = p.newCluster()
	}

	r := &p.current.records[p.current.used]
	p.current.used++

	return r
}

// replace reclaims a slot for reuse. While the current cluster has
// unrecycled slots the next one is used; otherwise the LRU tail cluster
// is adopted as the current cluster and its slots get recycled oldest
// first. The evict callback runs on the slot's previous occupant before
// the slot is handed out, so the caller can drop it from the address
// index; a slot is never reused while its old record is still reachable.
func (p *clusterPool) replace(evict func(*PageRecord)) *PageRecord {
	if p.current.used == slotsPerCluster {
		tail := p.lru.Back().Value.(*cluster)
		tail.used = 0
		p.current = tail
	}

	r := &p.current.records[p.current.used]
	p.current.used++

	evict(r)

	r.state = Online
	r.triggered = false
	r.count = 0

	return r
}

// touch moves the record's cluster to the LRU head unless it is there
// already.
func (p *clusterPool) touch(r *PageRecord) {
	c := r.owner
	if p.lru.Front() != c.elem {
		p.lru.MoveToFront(c.elem)
	}
}

// clusters returns the number of allocated clusters.
func (p *clusterPool) clusters() int {
	return p.lru.Len()
}
