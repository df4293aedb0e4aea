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

package debug

import (
	"sync/atomic"

	"github.com/cloudwego/dexopt/internal/opt"
)

// A Stats records statistics about the optimization passes.
type Stats struct {
	CopyProp    CopyPropStats
	FinalInline FinalInlineStats
}

// A CopyPropStats records statistics about copy propagation.
type CopyPropStats struct {
	Methods  int
	Rewrites int
	Deletes  int
}

// A FinalInlineStats records statistics about static final field propagation.
type FinalInlineStats struct {
	Fields  int
	Removed int
}

// GetStats returns statistics of all the passes run so far.
func GetStats() Stats {
	return Stats{
		CopyProp: CopyPropStats{
			Methods:  int(atomic.LoadUint64(&opt.CopyPropMethods)),
			Rewrites: int(atomic.LoadUint64(&opt.CopyPropRewrites)),
			Deletes:  int(atomic.LoadUint64(&opt.CopyPropDeletes)),
		},
		FinalInline: FinalInlineStats{
			Fields:  int(atomic.LoadUint64(&opt.FinalInlineFields)),
			Removed: int(atomic.LoadUint64(&opt.FinalInlineRemoved)),
		},
	}
}
