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

package trigger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvBlock(t *testing.T) {
	e := &Env{
		Threshold:      "12 in 24h",
		TotalCount:     34,
		LastEvent:      1715000000,
		AgeTime:        86400,
		Message:        "corrected memory errors exceed threshold",
		ThresholdCount: 2,
		Location:       "SOCKET 0 CHANNEL 1 DIMM 2",
	}

	block := e.Block()
	require.ElementsMatch(t, []string{
		"THRESHOLD=12 in 24h",
		"TOTALCOUNT=34",
		"LASTEVENT=1715000000",
		"AGETIME=86400",
		"MESSAGE=corrected memory errors exceed threshold",
		"THRESHOLD_COUNT=2",
		"LOCATION=SOCKET 0 CHANNEL 1 DIMM 2",
	}, block)
}

func TestEnvBlockOmitsUnknowns(t *testing.T) {
	e := &Env{
		Threshold:      "1 in 1h",
		TotalCount:     1,
		AgeTime:        3600,
		Message:        "msg",
		ThresholdCount: 0,
	}

	block := e.Block()
	require.NotContains(t, block, "LASTEVENT=0")
	for _, kv := range block {
		require.NotContains(t, kv, "LOCATION=")
	}
}

func TestCheck(t *testing.T) {
	require.NoError(t, Check("/bin/true"))
	require.Error(t, Check("/nonexistent/trigger"))
	require.Error(t, Check("/etc/passwd"))
}
