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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AnkitSaxena114/mcelog/pkg/mce"
)

func TestDumpEmpty(t *testing.T) {
	env := newTestEnv(t, mce.CPUGeneric, map[string]string{
		"memory-ce":        "10 / 24h",
		"memory-ce-action": "account",
	})

	buf := &bytes.Buffer{}
	env.tracker.DumpErrors(buf)
	require.Empty(t, buf.String())
}

func TestDumpFormat(t *testing.T) {
	env := newTestEnv(t, mce.CPUGeneric, map[string]string{
		"memory-ce":        "2 / 24h",
		"memory-ce-action": "account",
	})

	// 0xb000 gets one error, 0xa000 crosses the threshold
	env.tracker.Account(ce(0xb000, 1))
	env.tracker.Account(ce(0xa000, 2))
	env.tracker.Account(ce(0xa000, 3))

	buf := &bytes.Buffer{}
	env.tracker.DumpErrors(buf)

	expected := "Per page corrected memory statistics:\n" +
		"a000: total 2 seen \"2 in 24h\" online triggered\n" +
		"\n" +
		"b000: total 1 seen \"1 in 24h\" online\n" +
		"\n"
	require.Equal(t, expected, buf.String())
}
