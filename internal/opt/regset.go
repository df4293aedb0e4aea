/*
 * Copyright 2021 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package opt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/dexopt/ir"
)

type (
	RegSet map[ir.Reg]struct{}
)

func (self RegSet) add(r ir.Reg) bool {
	if _, ok := self[r]; ok {
		return false
	} else {
		self[r] = struct{}{}
		return true
	}
}

func (self RegSet) clone() (rs RegSet) {
	rs = make(RegSet, len(self))
	for r := range self {
		rs.add(r)
	}
	return
}

func (self RegSet) remove(r ir.Reg) bool {
	if _, ok := self[r]; !ok {
		return false
	} else {
		delete(self, r)
		return true
	}
}

func (self RegSet) Contains(r ir.Reg) bool {
	_, ok := self[r]
	return ok
}

func (self RegSet) equal(other RegSet) bool {
	if len(self) != len(other) {
		return false
	}
	for r := range self {
		if _, ok := other[r]; !ok {
			return false
		}
	}
	return true
}

func (self RegSet) String() string {
	nb := len(self)
	rs := make([]string, 0, nb)
	rr := make([]ir.Reg, 0, nb)

	/* extract all registers */
	for r := range self {
		rr = append(rr, r)
	}

	/* sort by register ID */
	sort.Slice(rr, func(i int, j int) bool {
		return rr[i] < rr[j]
	})

	/* convert every register */
	for _, r := range rr {
		rs = append(rs, r.String())
	}

	/* join them together */
	return fmt.Sprintf(
		"{%s}",
		strings.Join(rs, ", "),
	)
}
