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

// Package sysfs provides the small set of sysfs primitives the daemon
// needs: formatted writes to kernel control files and writability probes.
package sysfs

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Writer writes a formatted value to a sysfs entry. The kernel interface
// is trivially mockable through this for tests.
type Writer interface {
	// Write formats the arguments and writes the result to path.
	Write(path, format string, args ...interface{}) error
	// Writable checks whether path exists and accepts writes.
	Writable(path string) bool
}

// fsWriter is the Writer backed by the real /sys filesystem.
type fsWriter struct{}

// NewWriter returns a Writer against the host sysfs.
func NewWriter() Writer {
	return fsWriter{}
}

func (fsWriter) Write(path, format string, args ...interface{}) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return sysfsError(path, "failed to open sysfs entry: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString(fmt.Sprintf(format, args...)); err != nil {
		return sysfsError(path, "failed to write sysfs entry: %v", err)
	}

	return nil
}

func (fsWriter) Writable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}

// ReadEntry reads a sysfs entry and returns its content with the
// trailing newline trimmed.
func ReadEntry(path string) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", sysfsError(path, "failed to read sysfs entry: %v", err)
	}
	return strings.Trim(string(blob), "\n"), nil
}

// sysfsError returns a formatted sysfs-specific error.
func sysfsError(path string, format string, args ...interface{}) error {
	return fmt.Errorf("sysfs: %q: %s", path, fmt.Sprintf(format, args...))
}
