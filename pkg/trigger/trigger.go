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

// Package trigger dispatches user-defined commands in reaction to
// threshold crossings. A trigger runs with an environment block describing
// the crossing, either synchronously (the caller waits) or asynchronously
// (a reaper goroutine collects the child).
package trigger

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	logger "github.com/AnkitSaxena114/mcelog/pkg/log"
)

var log = logger.NewLogger("trigger")

// Runner spawns trigger commands. The production Runner executes real
// processes; tests substitute a recording fake.
type Runner interface {
	// Run executes path with the given argv and environment appended to
	// the daemon's own. With sync set it waits for the child to exit and
	// returns its outcome; otherwise the child is reaped in the background
	// and Run only reports spawn failures.
	Run(path string, argv []string, env []string, sync bool, reason string) error
}

// execRunner is the Runner backed by os/exec.
type execRunner struct{}

// NewRunner returns the process-spawning Runner.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(path string, argv []string, env []string, sync bool, reason string) error {
	cmd := exec.Command(path, argv...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	log.Debug("running %s trigger %s", reason, path)

	if sync {
		if err := cmd.Run(); err != nil {
			return errors.Wrapf(err, "trigger %q (%s) failed", path, reason)
		}
		return nil
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start trigger %q (%s)", path, reason)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Warn("%s trigger %s exited: %v", reason, path, err)
		}
	}()

	return nil
}

// Check verifies that path names an executable the daemon can run.
func Check(path string) error {
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return errors.Wrapf(err, "trigger %q is not executable", path)
	}
	return nil
}
