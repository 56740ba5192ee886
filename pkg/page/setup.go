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
	"github.com/pkg/errors"

	"github.com/AnkitSaxena114/mcelog/pkg/bucket"
	"github.com/AnkitSaxena114/mcelog/pkg/config"
	logger "github.com/AnkitSaxena114/mcelog/pkg/log"
	"github.com/AnkitSaxena114/mcelog/pkg/mce"
	"github.com/AnkitSaxena114/mcelog/pkg/memdb"
	"github.com/AnkitSaxena114/mcelog/pkg/sysfs"
	"github.com/AnkitSaxena114/mcelog/pkg/trigger"
)

const (
	// configSection is the configuration section all page keys live in.
	configSection = "page"

	// defaultMaxRecords bounds the record table when
	// memory-page-max-records is not configured.
	defaultMaxRecords = 8 * 1024
)

var pageKeys = []string{
	"memory-ce",
	"memory-ce-trigger",
	"memory-ce-log",
	"memory-ce-counter-replacement",
	"memory-ce-counter-replacement-trigger",
	"memory-ce-counter-replacement-log",
	"memory-ce-action",
	"memory-ce-row-pages",
	"memory-pre-sync-soft-ce-trigger",
	"memory-post-sync-soft-ce-trigger",
	"memory-page-max-records",
}

// Options carries everything Setup needs. Config and DIMMs default to
// empty instances, SysfsWriter and TriggerRunner to the real kernel
// interface and process spawner.
type Options struct {
	Config        *config.Config
	CPUModel      mce.CPUModel
	DIMMs         *memdb.DB
	SysfsWriter   sysfs.Writer
	TriggerRunner trigger.Runner
}

// Setup resolves the page section of the configuration and builds the
// Tracker. A missing or non-executable pre/post-soft trigger is a hard
// error; an unavailable kernel offline interface only demotes the mode
// to account with a notice.
func Setup(opts Options) (*Tracker, error) {
	log := logger.NewLogger("page")

	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}

	t := &Tracker{
		log:      log,
		cpuModel: opts.CPUModel,
		pool:     newClusterPool(),
		index:    newAddrIndex(),
		dimms:    opts.DIMMs,
		runner:   opts.TriggerRunner,
	}
	if t.dimms == nil {
		t.dimms = memdb.New()
	}
	if t.runner == nil {
		t.runner = trigger.NewRunner()
	}

	sysfsWriter := opts.SysfsWriter
	if sysfsWriter == nil {
		sysfsWriter = sysfs.NewWriter()
	}

	var err error
	if t.pageConf, err = triggerConf(cfg, "memory-ce"); err != nil {
		return nil, err
	}
	if t.replacementConf, err = triggerConf(cfg, "memory-ce-counter-replacement"); err != nil {
		return nil, err
	}

	mode, err := cfg.GetChoice(configSection, "memory-ce-action",
		int(OfflineOff), OfflineChoices)
	if err != nil {
		return nil, err
	}

	rowPages, err := cfg.GetInt(configSection, "memory-ce-row-pages", 0)
	if err != nil {
		return nil, err
	}
	if rowPages < 0 {
		return nil, errors.Errorf("page: invalid memory-ce-row-pages %d", rowPages)
	}

	t.offliner = &offliner{
		mode:     OfflineMode(mode),
		rowPages: rowPages,
		sysfs:    sysfsWriter,
		log:      log,
	}

	if path, ok := kernelOffline[t.offliner.mode]; t.offliner.mode > OfflineAccount && ok {
		if !sysfsWriter.Writable(path) {
			log.Warn("kernel does not support page offline interface")
			t.offliner.mode = OfflineAccount
		}
	}

	if t.preSoftTrigger, err = softTrigger(cfg, "memory-pre-sync-soft-ce-trigger"); err != nil {
		return nil, err
	}
	if t.postSoftTrigger, err = softTrigger(cfg, "memory-post-sync-soft-ce-trigger"); err != nil {
		return nil, err
	}

	maxRecords, err := cfg.GetInt(configSection, "memory-page-max-records", defaultMaxRecords)
	if err != nil {
		return nil, err
	}
	if maxRecords <= 0 {
		return nil, errors.Errorf("page: invalid memory-page-max-records %d", maxRecords)
	}
	t.maxRecords = roundup(maxRecords, slotsPerCluster)
	if t.maxRecords != maxRecords {
		log.Info("round up max page records from %d to %d", maxRecords, t.maxRecords)
	}

	t.monitor.bucket.Init()

	cfg.WarnUnknown(configSection, pageKeys)

	log.Info("page error accounting: mode %s, thresholds %s (page), %s (replacement), %d records max",
		t.offliner.mode, t.pageConf.CapacityString(), t.replacementConf.CapacityString(),
		t.maxRecords)

	return t, nil
}

// triggerConf resolves one bucket configuration: "<base>" holds the
// COUNT / TIME rate, "<base>-trigger" the command to run on a crossing
// and "<base>-log" whether crossings get logged.
func triggerConf(cfg *config.Config, base string) (bucket.Conf, error) {
	conf := bucket.Conf{}

	if rate, ok := cfg.GetString(configSection, base); ok {
		var err error
		if conf, err = bucket.ParseRate(rate); err != nil {
			return conf, errors.Wrapf(err, "page: invalid %s", base)
		}
	}

	if path, ok := cfg.GetString(configSection, base+"-trigger"); ok {
		conf.Trigger = path
	}
	if value, ok := cfg.GetString(configSection, base+"-log"); ok {
		conf.Log = value == "yes" || value == "true"
	} else {
		conf.Log = true
	}

	return conf, nil
}

// softTrigger resolves a pre/post-soft trigger path, requiring it to be
// executable when configured.
func softTrigger(cfg *config.Config, key string) (string, error) {
	path, ok := cfg.GetString(configSection, key)
	if !ok || path == "" {
		return "", nil
	}
	if err := trigger.Check(path); err != nil {
		return "", errors.Wrapf(err, "page: cannot access %s", key)
	}
	return path, nil
}

func roundup(n, unit int) int {
	return ((n + unit - 1) / unit) * unit
}
