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
	"github.com/hashicorp/go-multierror"

	"github.com/AnkitSaxena114/mcelog/pkg/config"
	logger "github.com/AnkitSaxena114/mcelog/pkg/log"
	"github.com/AnkitSaxena114/mcelog/pkg/sysfs"
)

// OfflineMode selects what a threshold crossing does to the page.
type OfflineMode int

const (
	// OfflineOff disables page error accounting altogether.
	OfflineOff OfflineMode = iota
	// OfflineAccount tracks counts but never touches the kernel.
	OfflineAccount
	// OfflineSoft asks the kernel to migrate users away and retire the page.
	OfflineSoft
	// OfflineHard forcibly retires the page, possibly killing users.
	OfflineHard
	// OfflineSoftThenHard tries a soft offline, falling back to hard once.
	OfflineSoftThenHard
)

// OfflineChoices are the accepted memory-ce-action configuration values.
var OfflineChoices = []config.Choice{
	{Name: "off", Value: int(OfflineOff)},
	{Name: "account", Value: int(OfflineAccount)},
	{Name: "soft", Value: int(OfflineSoft)},
	{Name: "hard", Value: int(OfflineHard)},
	{Name: "soft-then-hard", Value: int(OfflineSoftThenHard)},
}

var offlineModeNames = map[OfflineMode]string{
	OfflineOff:          "off",
	OfflineAccount:      "account",
	OfflineSoft:         "soft",
	OfflineHard:         "hard",
	OfflineSoftThenHard: "soft-then-hard",
}

func (m OfflineMode) String() string {
	return offlineModeNames[m]
}

// Kernel page offlining interfaces.
const (
	softOfflinePath = "/sys/devices/system/memory/soft_offline_page"
	hardOfflinePath = "/sys/devices/system/memory/hard_offline_page"
)

var kernelOffline = map[OfflineMode]string{
	OfflineSoft:         softOfflinePath,
	OfflineHard:         hardOfflinePath,
	OfflineSoftThenHard: softOfflinePath,
}

// offliner turns threshold crossings into kernel page offline requests.
type offliner struct {
	mode     OfflineMode
	rowPages int // neighbour pages to retire on each side of the target
	sysfs    sysfs.Writer
	log      logger.Logger
}

// write asks the kernel to offline the page at addr with the given mode's
// interface.
func (o *offliner) write(addr uint64, mode OfflineMode) error {
	return o.sysfs.Write(kernelOffline[mode], "%#x", addr)
}

// offlineRow retires the target page and rowPages neighbours on each
// side. A failing neighbour does not stop the row: failures are
// accumulated and the remaining pages still attempted.
func (o *offliner) offlineRow(addr uint64, mode OfflineMode) error {
	var errs *multierror.Error

	if err := o.write(addr, mode); err != nil {
		o.log.Warn("offlining base page %x failed: %v", addr, err)
		errs = multierror.Append(errs, err)
	}

	for i := 1; i <= o.rowPages; i++ {
		above := addr + uint64(i)*PageSize
		if err := o.write(above, mode); err != nil {
			o.log.Warn("offlining page %x above %x failed: %v", above, addr, err)
			errs = multierror.Append(errs, err)
		}

		below := addr - uint64(i)*PageSize
		if below > addr {
			continue // wrapped below zero
		}
		if err := o.write(below, mode); err != nil {
			o.log.Warn("offlining page %x below %x failed: %v", below, addr, err)
			errs = multierror.Append(errs, err)
		}
	}

	return errs.ErrorOrNil()
}

// offline retires the page at addr according to the configured mode.
// Soft-then-hard makes exactly one hard attempt after a failed soft one
// and reports the hard outcome.
func (o *offliner) offline(addr uint64) error {
	switch o.mode {
	case OfflineOff, OfflineAccount:
		return nil
	case OfflineSoftThenHard:
		if err := o.write(addr, OfflineSoft); err != nil {
			o.log.Warn("soft offlining of page %x failed, trying hard offlining: %v", addr, err)
			return o.write(addr, OfflineHard)
		}
		return nil
	}

	if o.rowPages > 0 {
		return o.offlineRow(addr, o.mode)
	}

	return o.write(addr, o.mode)
}
