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

// Package bucket implements the leaky-bucket rate/threshold primitive used
// for per-page corrected error accounting. A bucket collects timestamped
// increments, leaks them out over a configured age time, and signals when
// the amount left in the bucket reaches the configured capacity.
package bucket

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Conf holds the tunables of one bucket: how many events within which
// window constitute a threshold crossing, and what to do about it.
type Conf struct {
	// Capacity is the number of events that fills the bucket. 0 disables it.
	Capacity uint64
	// AgeTime is the window, in seconds, over which the bucket drains fully.
	AgeTime uint64
	// Trigger is an optional command to run on a threshold crossing.
	Trigger string
	// Log requests a log message on a threshold crossing.
	Log bool
}

// Bucket is the mutable state of one leaky bucket.
type Bucket struct {
	// Count is the amount currently in the bucket.
	Count uint64
	// Excess accumulates amounts drained by threshold crossings since the
	// last aging.
	Excess uint64
	// Tstamp is the time of the last aging, in seconds.
	Tstamp uint64
}

// Init resets the bucket to empty.
func (b *Bucket) Init() {
	*b = Bucket{}
}

// age leaks out the credits accumulated before the window reaching
// back agetime from now. Timestamps running backwards are treated as now.
func (b *Bucket) age(c *Conf, now uint64) {
	if now <= b.Tstamp {
		return
	}
	diff := now - b.Tstamp
	if diff < c.AgeTime {
		return
	}

	leaked := uint64(float64(diff) / float64(c.AgeTime) * float64(c.Capacity))
	b.Tstamp = now
	b.Excess = 0
	if leaked > b.Count {
		b.Count = 0
	} else {
		b.Count -= leaked
	}
}

// Account adds inc events at time now and reports whether the bucket
// crossed its capacity. On a crossing the bucket drains into Excess, so
// the next crossing requires another full capacity worth of events.
func (b *Bucket) Account(c *Conf, inc, now uint64) bool {
	if c.Capacity == 0 {
		return false
	}
	b.age(c, now)
	if b.Tstamp == 0 {
		b.Tstamp = now
	}

	b.Count += inc
	if b.Count >= c.Capacity {
		b.Excess += b.Count
		b.Count = 0
		return true
	}

	return false
}

// Total returns the number of events seen in the current window,
// including those drained by crossings.
func (b *Bucket) Total() uint64 {
	return b.Count + b.Excess
}

// Output renders a short human readable summary of the bucket state,
// "N in 24h" style.
func (b *Bucket) Output(c *Conf) string {
	if c.Capacity == 0 {
		return "not enabled"
	}
	return fmt.Sprintf("%d in %s", b.Total(), timeString(c.AgeTime))
}

// CapacityString renders the configured threshold, "N / 24h" style.
func (c *Conf) CapacityString() string {
	if c.Capacity == 0 {
		return "not enabled"
	}
	return fmt.Sprintf("%d / %s", c.Capacity, timeString(c.AgeTime))
}

var timeUnits = []struct {
	suffix  string
	seconds uint64
}{
	{"d", 24 * 3600},
	{"h", 3600},
	{"m", 60},
	{"s", 1},
}

// timeString formats a second count with the largest of h, m and s that
// divides it. Days are rendered in hours ("24h", "168h").
func timeString(seconds uint64) string {
	for _, u := range timeUnits {
		if u.suffix == "d" {
			continue
		}
		if seconds >= u.seconds && seconds%u.seconds == 0 {
			return fmt.Sprintf("%d%s", seconds/u.seconds, u.suffix)
		}
	}
	return fmt.Sprintf("%ds", seconds)
}

func parseTime(value string) (uint64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, bucketError("empty time value")
	}

	mult := uint64(1)
	for _, u := range timeUnits {
		if strings.HasSuffix(value, u.suffix) {
			mult = u.seconds
			value = strings.TrimSpace(strings.TrimSuffix(value, u.suffix))
			break
		}
	}

	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid time value '%s'", value)
	}

	return n * mult, nil
}

// ParseRate parses a "COUNT / TIME" threshold specification, for example
// "10 / 24h". TIME accepts s, m, h and d suffixes and defaults to seconds.
// The literal "off" yields a disabled bucket.
func ParseRate(rate string) (Conf, error) {
	c := Conf{}

	rate = strings.TrimSpace(rate)
	if rate == "" || rate == "off" {
		return c, nil
	}

	fields := strings.SplitN(rate, "/", 2)
	if len(fields) != 2 {
		return c, bucketError("invalid rate '%s', expecting COUNT / TIME", rate)
	}

	capacity, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return c, errors.Wrapf(err, "invalid rate count in '%s'", rate)
	}

	agetime, err := parseTime(fields[1])
	if err != nil {
		return c, errors.Wrapf(err, "invalid rate time in '%s'", rate)
	}

	if capacity > 0 && agetime == 0 {
		return c, bucketError("rate '%s' has zero age time", rate)
	}

	c.Capacity = capacity
	c.AgeTime = agetime

	return c, nil
}

func bucketError(format string, args ...interface{}) error {
	return fmt.Errorf("bucket: "+format, args...)
}
