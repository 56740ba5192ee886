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
	"io"
)

// DumpErrors writes one line per tracked page in ascending address
// order: the page address in hex, the error total, the bucket window
// summary, the offline state and a "triggered" suffix for pages whose
// threshold ever fired. Nothing is written when no pages are tracked.
func (t *Tracker) DumpErrors(w io.Writer) {
	k := 0
	t.index.ascend(func(r *PageRecord) bool {
		if k == 0 {
			fmt.Fprintf(w, "Per page corrected memory statistics:\n")
		}
		k++

		suffix := ""
		if r.triggered {
			suffix = " triggered"
		}
		fmt.Fprintf(w, "%x: total %d seen \"%s\" %s%s\n",
			r.addr, r.count, r.ce.Output(&t.pageConf), r.state, suffix)
		fmt.Fprintln(w)

		return true
	})
}
