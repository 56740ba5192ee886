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
	"fmt"
	"strconv"

	"github.com/AnkitSaxena114/mcelog/pkg/bucket"
	logger "github.com/AnkitSaxena114/mcelog/pkg/log"
	"github.com/AnkitSaxena114/mcelog/pkg/mce"
	"github.com/AnkitSaxena114/mcelog/pkg/memdb"
	"github.com/AnkitSaxena114/mcelog/pkg/trigger"
)

// replacementMonitor watches how often record slots get recycled. A high
// replacement rate means the table is undersized for the error load.
type replacementMonitor struct {
	count  uint64
	bucket bucket.Bucket
}

// Tracker owns all per-page accounting state: the cluster pool, the
// address index, the replacement monitor and the resolved configuration.
// A single goroutine feeds it events; nothing here locks.
type Tracker struct {
	log logger.Logger

	pageConf        bucket.Conf
	replacementConf bucket.Conf
	preSoftTrigger  string
	postSoftTrigger string
	maxRecords      int
	cpuModel        mce.CPUModel

	pool    *clusterPool
	index   *addrIndex
	monitor replacementMonitor
	live    int // records currently indexed, bounded by maxRecords

	offliner *offliner
	runner   trigger.Runner
	dimms    *memdb.DB
}

// Mode returns the effective offline mode, after any setup demotion.
func (t *Tracker) Mode() OfflineMode {
	return t.offliner.mode
}

// Tracked returns the number of pages currently accounted.
func (t *Tracker) Tracked() int {
	return t.index.len()
}

// Replacements returns how many counter replacements have happened since
// startup.
func (t *Tracker) Replacements() uint64 {
	return t.monitor.count
}

// Account ingests one decoded corrected error event: filters it, finds or
// creates the page record, bumps its counters and acts on a threshold
// crossing by running triggers and offlining the page.
func (t *Tracker) Account(ev *mce.Event) {
	if t.offliner.mode == OfflineOff {
		return
	}
	if !ev.AddrValid() || ev.Uncorrected() {
		return
	}

	// On SNB-EP corrected errors reported in bank 5 get duplicated by the
	// firmware-first APEI path as a fake CPU 0 bank 1 record. Drop the
	// duplicate so errors are not counted twice.
	if t.cpuModel == mce.CPUSandyBridgeEP && ev.Bank == 1 && ev.EffectiveCPU() == 0 {
		return
	}

	now := ev.Time
	addr := ev.Addr &^ (PageSize - 1)

	rec := t.index.lookup(addr)
	switch {
	case rec != nil:
		t.pool.touch(rec)

	case t.live < t.maxRecords:
		rec = t.pool.alloc()
		rec.ce.Init()
		t.index.insert(addr, rec)
		t.pool.touch(rec)
		t.live++
		pm.tracked.Inc()

	default:
		rec = t.pool.replace(func(old *PageRecord) {
			// Fresh slots and slots recycled earlier are not indexed
			// anymore; only evict a slot whose record is still bound.
			if t.index.lookup(old.addr) == old {
				t.index.remove(old)
				t.live--
				pm.tracked.Dec()
			}
		})
		rec.ce.Init()
		t.index.rebind(addr, rec)
		t.pool.touch(rec)
		t.live++
		pm.tracked.Inc()

		t.monitor.count++
		pm.replacements.Inc()
		if t.monitor.bucket.Account(&t.replacementConf, 1, now) {
			t.replacementTrigger(now)
		}
	}

	rec.count++
	pm.ceEvents.Inc()

	if !rec.ce.Account(&t.pageConf, 1, now) {
		return
	}
	// Pages already offlined, or failed to offline, are left alone. In
	// account mode the state stays online, so every crossing triggers.
	if rec.state != Online {
		return
	}

	thresh := rec.ce.Output(&t.pageConf)
	dimm := t.dimms.Get(ev.SocketID, ev.Channel, ev.DIMM, true)
	msg := fmt.Sprintf("Corrected memory errors on page %x exceed threshold %s", addr, thresh)

	t.pageTrigger(msg, thresh, dimm, now, rec)
	rec.triggered = true
	pm.triggers.Inc()

	if t.offliner.mode == OfflineSoft || t.offliner.mode == OfflineSoftThenHard {
		addrArg := strconv.FormatUint(addr, 10)
		t.runSoftTrigger(t.preSoftTrigger, "page_pre_soft", addrArg, addr)
		t.offlineAction(rec, addr)
		t.runSoftTrigger(t.postSoftTrigger, "page_post_soft", addrArg, addr)
	} else {
		t.offlineAction(rec, addr)
	}
}

// offlineAction asks the kernel to retire the page and records the
// outcome. No-op below the soft mode; the record's current state is not
// checked here.
func (t *Tracker) offlineAction(rec *PageRecord, addr uint64) {
	if t.offliner.mode <= OfflineAccount {
		return
	}

	t.log.Info("offlining page %x", addr)
	if err := t.offliner.offline(addr); err != nil {
		t.log.Error("offlining page %x failed: %v", addr, err)
		rec.state = OfflineFailed
		pm.offlines.WithLabelValues("failed").Inc()
	} else {
		rec.state = Offline
		pm.offlines.WithLabelValues("ok").Inc()
	}
}

// pageTrigger logs the threshold crossing and dispatches the configured
// page trigger command asynchronously.
func (t *Tracker) pageTrigger(msg, thresh string, dimm *memdb.DIMM, now uint64, rec *PageRecord) {
	if t.pageConf.Log {
		t.log.Warn("%s", msg)
	}
	if t.pageConf.Trigger == "" {
		return
	}

	env := trigger.Env{
		Threshold:      thresh,
		TotalCount:     rec.count,
		LastEvent:      now,
		AgeTime:        t.pageConf.AgeTime,
		Message:        msg,
		ThresholdCount: rec.ce.Count,
		Location:       dimm.Location(),
	}
	if err := t.runner.Run(t.pageConf.Trigger, nil, env.Block(), false, "page"); err != nil {
		t.log.Warn("page trigger failed: %v", err)
	}
}

// replacementTrigger reacts to the replacement rate itself crossing its
// threshold, a sign the record table is undersized.
func (t *Tracker) replacementTrigger(now uint64) {
	thresh := t.monitor.bucket.Output(&t.replacementConf)
	msg := fmt.Sprintf("Replacements of page correctable error counter exceed threshold %s", thresh)

	if t.replacementConf.Log {
		t.log.Warn("%s", msg)
	}
	if t.replacementConf.Trigger == "" {
		return
	}

	env := trigger.Env{
		Threshold:      thresh,
		TotalCount:     t.monitor.count,
		LastEvent:      now,
		AgeTime:        t.replacementConf.AgeTime,
		Message:        msg,
		ThresholdCount: t.monitor.bucket.Count,
	}
	if err := t.runner.Run(t.replacementConf.Trigger, nil, env.Block(), false, "page-error-counter"); err != nil {
		t.log.Warn("page-error-counter trigger failed: %v", err)
	}
}

// runSoftTrigger runs the pre or post soft offline user command
// synchronously with the page address, in decimal, as its argument.
func (t *Tracker) runSoftTrigger(path, reason, addrArg string, addr uint64) {
	if path == "" {
		return
	}

	t.log.Info("%s trigger run for page %x", reason, addr)
	if err := t.runner.Run(path, []string{addrArg}, nil, true, reason); err != nil {
		t.log.Warn("%s trigger failed: %v", reason, err)
	}
}
