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
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AnkitSaxena114/mcelog/pkg/metrics"
)

// pageMetrics exports the accounting counters. All trackers of a process
// feed the same collector.
type pageMetrics struct {
	tracked      prometheus.Gauge
	ceEvents     prometheus.Counter
	replacements prometheus.Counter
	triggers     prometheus.Counter
	offlines     *prometheus.CounterVec
}

var pm = newPageMetrics()

func newPageMetrics() *pageMetrics {
	return &pageMetrics{
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mcelog_page_tracked_total",
			Help: "Number of pages currently tracked for corrected errors.",
		}),
		ceEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcelog_page_corrected_errors_total",
			Help: "Corrected memory errors accounted per page.",
		}),
		replacements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcelog_page_counter_replacements_total",
			Help: "Page error counters recycled because the table was full.",
		}),
		triggers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcelog_page_threshold_triggers_total",
			Help: "Per-page error threshold crossings acted upon.",
		}),
		offlines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcelog_page_offline_attempts_total",
			Help: "Page offline attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// Describe implements prometheus.Collector.
func (m *pageMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.tracked.Describe(ch)
	m.ceEvents.Describe(ch)
	m.replacements.Describe(ch)
	m.triggers.Describe(ch)
	m.offlines.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *pageMetrics) Collect(ch chan<- prometheus.Metric) {
	m.tracked.Collect(ch)
	m.ceEvents.Collect(ch)
	m.replacements.Collect(ch)
	m.triggers.Collect(ch)
	m.offlines.Collect(ch)
}

func init() {
	_ = metrics.RegisterCollector("page", func() (prometheus.Collector, error) {
		return pm, nil
	})
}
