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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AnkitSaxena114/mcelog/pkg/config"
	"github.com/AnkitSaxena114/mcelog/pkg/mce"
)

// fakeSysfs records offline writes instead of touching the kernel.
type sysfsWrite struct {
	path  string
	value string
}

type fakeSysfs struct {
	unwritable map[string]bool
	fail       map[string]error
	writes     []sysfsWrite
}

func newFakeSysfs() *fakeSysfs {
	return &fakeSysfs{
		unwritable: make(map[string]bool),
		fail:       make(map[string]error),
	}
}

func (f *fakeSysfs) Write(path, format string, args ...interface{}) error {
	f.writes = append(f.writes, sysfsWrite{path, fmt.Sprintf(format, args...)})
	if err, ok := f.fail[path]; ok {
		return err
	}
	return nil
}

func (f *fakeSysfs) Writable(path string) bool {
	return !f.unwritable[path]
}

// fakeRunner records trigger dispatches instead of spawning processes.
type triggerRun struct {
	path   string
	argv   []string
	env    []string
	sync   bool
	reason string
}

type fakeRunner struct {
	runs []triggerRun
}

func (f *fakeRunner) Run(path string, argv []string, env []string, sync bool, reason string) error {
	f.runs = append(f.runs, triggerRun{path, argv, env, sync, reason})
	return nil
}

func (f *fakeRunner) byReason(reason string) []triggerRun {
	var runs []triggerRun
	for _, r := range f.runs {
		if r.reason == reason {
			runs = append(runs, r)
		}
	}
	return runs
}

// testEnv bundles a tracker with its recording fakes.
type testEnv struct {
	tracker *Tracker
	sysfs   *fakeSysfs
	runner  *fakeRunner
}

func newTestEnv(t *testing.T, model mce.CPUModel, settings map[string]string) *testEnv {
	cfg := config.New()
	for key, value := range settings {
		cfg.Set("page", key, value)
	}

	env := &testEnv{
		sysfs:  newFakeSysfs(),
		runner: &fakeRunner{},
	}

	tracker, err := Setup(Options{
		Config:        cfg,
		CPUModel:      model,
		SysfsWriter:   env.sysfs,
		TriggerRunner: env.runner,
	})
	require.NoError(t, err)
	env.tracker = tracker

	return env
}

// ce builds a corrected error event with a valid address.
func ce(addr, now uint64) *mce.Event {
	return &mce.Event{
		Addr:   addr,
		Status: mce.StatusADDRV,
		Time:   now,
	}
}
