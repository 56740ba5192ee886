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

package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// fmtBackend is the default Backend, emitting plain formatted lines.
type fmtBackend struct {
	sync.Mutex
	out io.Writer
}

var levelTag = map[Level]string{
	LevelDebug: "D:",
	LevelInfo:  "I:",
	LevelWarn:  "W:",
	LevelError: "E:",
}

func (f *fmtBackend) Name() string {
	return "fmt"
}

func (f *fmtBackend) Log(l Level, source, message string) {
	f.Lock()
	defer f.Unlock()

	for _, line := range strings.Split(message, "\n") {
		fmt.Fprintf(f.out, "%s [%s] %s\n", levelTag[l], source, line)
	}
}
