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

import "fmt"

// Env describes one threshold crossing. Block renders it into the
// environment handed to the trigger command.
type Env struct {
	// Threshold is the rendered bucket state, "12 in 24h" style.
	Threshold string
	// TotalCount is the total event count behind the crossing.
	TotalCount uint64
	// LastEvent is the unix time of the last contributing event, 0 if unknown.
	LastEvent uint64
	// AgeTime is the bucket window in seconds.
	AgeTime uint64
	// Message is the full log message describing the crossing.
	Message string
	// ThresholdCount is the in-window count of the bucket.
	ThresholdCount uint64
	// Location optionally names the DIMM the errors were observed on.
	Location string
}

// Block renders the KEY=value environment entries. LASTEVENT and LOCATION
// are only present when known; key order carries no meaning.
func (e *Env) Block() []string {
	env := []string{
		fmt.Sprintf("THRESHOLD=%s", e.Threshold),
		fmt.Sprintf("TOTALCOUNT=%d", e.TotalCount),
	}
	if e.LastEvent != 0 {
		env = append(env, fmt.Sprintf("LASTEVENT=%d", e.LastEvent))
	}
	env = append(env,
		fmt.Sprintf("AGETIME=%d", e.AgeTime),
		fmt.Sprintf("MESSAGE=%s", e.Message),
		fmt.Sprintf("THRESHOLD_COUNT=%d", e.ThresholdCount),
	)
	if e.Location != "" {
		env = append(env, fmt.Sprintf("LOCATION=%s", e.Location))
	}

	return env
}
