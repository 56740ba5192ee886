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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollector(t *testing.T) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "metrics_test_events_total",
		Help: "Test counter.",
	})
	init := func() (prometheus.Collector, error) {
		return counter, nil
	}

	require.NoError(t, RegisterCollector("metrics-test", init))
	require.Error(t, RegisterCollector("metrics-test", init))

	counter.Add(3)

	gatherer, err := NewMetricGatherer()
	require.NoError(t, err)

	families, err := gatherer.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "metrics_test_events_total" {
			found = true
			require.Equal(t, float64(3), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	require.True(t, found)
}
