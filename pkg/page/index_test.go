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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexInsertLookup(t *testing.T) {
	ix := newAddrIndex()

	require.Nil(t, ix.lookup(0x1000))

	r := &PageRecord{}
	require.Nil(t, ix.insert(0x1000, r))
	require.Equal(t, uint64(0x1000), r.addr)
	require.Same(t, r, ix.lookup(0x1000))
	require.Equal(t, 1, ix.len())

	// a second insert under the same address yields the existing record
	other := &PageRecord{}
	require.Same(t, r, ix.insert(0x1000, other))
	require.Equal(t, 1, ix.len())
}

func TestIndexRebind(t *testing.T) {
	ix := newAddrIndex()

	r := &PageRecord{}
	ix.insert(0x1000, r)
	ix.rebind(0x2000, r)

	require.Nil(t, ix.lookup(0x1000))
	require.Same(t, r, ix.lookup(0x2000))
	require.Equal(t, uint64(0x2000), r.addr)
	require.Equal(t, 1, ix.len())
}

func TestIndexRemove(t *testing.T) {
	ix := newAddrIndex()

	r := &PageRecord{}
	ix.insert(0x1000, r)
	ix.remove(r)

	require.Nil(t, ix.lookup(0x1000))
	require.Equal(t, 0, ix.len())
}

func TestIndexAscendsInAddressOrder(t *testing.T) {
	ix := newAddrIndex()

	for _, addr := range []uint64{0x5000, 0x1000, 0x9000, 0x3000} {
		ix.insert(addr, &PageRecord{})
	}

	var got []uint64
	ix.ascend(func(r *PageRecord) bool {
		got = append(got, r.addr)
		return true
	})
	require.Equal(t, []uint64{0x1000, 0x3000, 0x5000, 0x9000}, got)
}
