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

// Package metrics collects the daemon's Prometheus collectors behind a
// named registry so packages can contribute collectors without depending
// on each other.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	logger "github.com/AnkitSaxena114/mcelog/pkg/log"
)

var log = logger.NewLogger("metrics")

// InitCollector is the type for functions that initialize collectors.
type InitCollector func() (prometheus.Collector, error)

var collectors = make(map[string]InitCollector)

// RegisterCollector registers the named prometheus.Collector for metrics collection.
func RegisterCollector(name string, init InitCollector) error {
	if _, found := collectors[name]; found {
		return metricsError("collector %s already registered", name)
	}

	log.Debug("registered collector %s", name)
	collectors[name] = init

	return nil
}

// NewMetricGatherer creates a new prometheus.Gatherer with all registered collectors.
func NewMetricGatherer() (prometheus.Gatherer, error) {
	reg := prometheus.NewPedanticRegistry()

	for name, init := range collectors {
		c, err := init()
		if err != nil {
			log.Error("failed to initialize collector '%s': %v, skipping it", name, err)
			continue
		}
		if err := reg.Register(c); err != nil {
			return nil, metricsError("failed to register collector '%s': %v", name, err)
		}
	}

	return reg, nil
}

func metricsError(format string, args ...interface{}) error {
	return fmt.Errorf("metrics: "+format, args...)
}
