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
	"testing"

	"github.com/stretchr/testify/require"
)

// recordBackend captures emitted messages for inspection.
type recordBackend struct {
	messages []string
	levels   []Level
}

func (r *recordBackend) Name() string {
	return "record"
}

func (r *recordBackend) Log(l Level, source, message string) {
	r.levels = append(r.levels, l)
	r.messages = append(r.messages, "["+source+"] "+message)
}

func TestLevelsAndSources(t *testing.T) {
	rec := &recordBackend{}
	old := SetBackend(rec)
	defer SetBackend(old)
	SetLevel(LevelInfo)

	l := NewLogger("test-source")
	require.Same(t, l, NewLogger("test-source"))
	require.Equal(t, "test-source", l.Source())

	l.Debug("suppressed %d", 1)
	l.Info("hello %s", "world")
	l.Warn("watch out")
	l.Error("broken")

	require.Equal(t, []string{
		"[test-source] hello world",
		"[test-source] watch out",
		"[test-source] broken",
	}, rec.messages)
	require.Equal(t, []Level{LevelInfo, LevelWarn, LevelError}, rec.levels)
}

func TestEnableDebug(t *testing.T) {
	rec := &recordBackend{}
	old := SetBackend(rec)
	defer SetBackend(old)
	SetLevel(LevelInfo)

	l := NewLogger("debug-source")
	require.False(t, l.DebugEnabled())
	l.Debug("dropped")
	require.Empty(t, rec.messages)

	require.False(t, l.EnableDebug(true))
	require.True(t, l.DebugEnabled())
	l.Debug("kept")
	require.Equal(t, []string{"[debug-source] kept"}, rec.messages)

	require.True(t, l.EnableDebug(false))
	SetLevel(LevelInfo)
}
