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

// mcelogd accounts corrected memory errors per 4 KiB page and retires
// pages that keep producing them. It consumes already-decoded machine
// check events as JSON lines, one event per line, from stdin or a unix
// socket:
//
//	{"addr":288230376151711744,"status":288230376151711744,"time":1715000000,...}
//
// On SIGUSR1 the per-page statistics are dumped to stderr. With
// -metrics-addr set the accounting counters are exported in Prometheus
// format.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sys/unix"

	"github.com/AnkitSaxena114/mcelog/pkg/config"
	logger "github.com/AnkitSaxena114/mcelog/pkg/log"
	"github.com/AnkitSaxena114/mcelog/pkg/mce"
	"github.com/AnkitSaxena114/mcelog/pkg/metrics"
	"github.com/AnkitSaxena114/mcelog/pkg/page"
)

var log = logger.NewLogger("mcelogd")

var cpuModels = map[string]mce.CPUModel{
	"generic":        mce.CPUGeneric,
	"sandybridge-ep": mce.CPUSandyBridgeEP,
}

func main() {
	var (
		configPath  string
		socketPath  string
		metricsAddr string
		cpuName     string
		debug       bool
	)

	flag.StringVar(&configPath, "config", "", "YAML configuration file")
	flag.StringVar(&socketPath, "socket", "", "unix socket to read decoded events from (default stdin)")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on")
	flag.StringVar(&cpuName, "cpu", "generic", "CPU model the events originate from")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	if debug {
		logger.SetLevel(logger.LevelDebug)
		logger.EnableDebug("page", true)
		logger.EnableDebug("trigger", true)
	}

	cpuModel, ok := cpuModels[cpuName]
	if !ok {
		log.Fatal("unknown CPU model %q", cpuName)
	}

	cfg := config.New()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			log.Fatal("%v", err)
		}
	}

	tracker, err := page.Setup(page.Options{
		Config:   cfg,
		CPUModel: cpuModel,
	})
	if err != nil {
		log.Fatal("%v", err)
	}

	if metricsAddr != "" {
		serveMetrics(metricsAddr)
	}

	events := make(chan *mce.Event, 64)
	if socketPath != "" {
		go serveSocket(socketPath, events)
	} else {
		go readEvents(os.Stdin, events)
	}

	dump := make(chan os.Signal, 1)
	signal.Notify(dump, unix.SIGUSR1)

	// Single owner loop: every tracker mutation happens here.
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				log.Info("event stream closed, exiting")
				return
			}
			tracker.Account(ev)
		case <-dump:
			tracker.DumpErrors(os.Stderr)
		}
	}
}

// readEvents decodes JSON events line by line and forwards them. The
// channel is closed when the stream ends.
func readEvents(f *os.File, events chan<- *mce.Event) {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		ev := &mce.Event{}
		if err := json.Unmarshal(line, ev); err != nil {
			log.Warn("dropping undecodable event: %v", err)
			continue
		}
		events <- ev
	}
	if err := scanner.Err(); err != nil {
		log.Error("event stream read failed: %v", err)
	}
	close(events)
}

// serveSocket accepts one client at a time on a unix socket and feeds
// its events into the accounting loop.
func serveSocket(path string, events chan<- *mce.Event) {
	os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		log.Fatal("failed to listen on %s: %v", path, err)
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Error("accept failed on %s: %v", path, err)
			continue
		}

		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			ev := &mce.Event{}
			if err := json.Unmarshal(line, ev); err != nil {
				log.Warn("dropping undecodable event: %v", err)
				continue
			}
			events <- ev
		}
		conn.Close()
	}
}

func serveMetrics(addr string) {
	gatherer, err := metrics.NewMetricGatherer()
	if err != nil {
		log.Fatal("%v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("metrics server failed: %v", err)
		}
	}()
}
