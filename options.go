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

package dexopt

import (
	"fmt"

	"github.com/cloudwego/dexopt/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithAllTransitives makes copy propagation also remove copies whose
// destination is never read after all its uses were rewritten.
//
// The default value of this option is "false".
func WithAllTransitives(v bool) Option {
	return func(o *opts.Options) { o.AllTransitives = v }
}

// WithDeleteRedundant makes copy propagation remove copies whose destination
// already holds the same value as the source, not only self-moves.
//
// The default value of this option is "false".
func WithDeleteRedundant(v bool) Option {
	return func(o *opts.Options) { o.DeleteRedundant = v }
}

// WithMaxWorkers sets the number of method bodies optimized concurrently.
//
// The default value of this option is the number of logical CPU cores.
func WithMaxWorkers(n int) Option {
	if n <= 0 {
		panic(fmt.Sprintf("dexopt: invalid worker count: %d", n))
	} else {
		return func(o *opts.Options) { o.MaxWorkers = n }
	}
}

// SetAllTransitives sets the default value of the AllTransitives option from
// now on.
//
// This value can also be configured with the `DEXOPT_COPYPROP_ALL_TRANSITIVES`
// environment variable.
//
// Returns the old opts.AllTransitives value.
func SetAllTransitives(v bool) bool {
	v, opts.AllTransitives = opts.AllTransitives, v
	return v
}

// SetDeleteRedundant sets the default value of the DeleteRedundant option
// from now on.
//
// This value can also be configured with the `DEXOPT_COPYPROP_DELETE_REDUNDANT`
// environment variable.
//
// Returns the old opts.DeleteRedundant value.
func SetDeleteRedundant(v bool) bool {
	v, opts.DeleteRedundant = opts.DeleteRedundant, v
	return v
}

// SetMaxWorkers sets the default number of workers from now on.
//
// This value can also be configured with the `DEXOPT_MAX_WORKERS` environment
// variable.
//
// Returns the old opts.MaxWorkers value.
func SetMaxWorkers(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("dexopt: invalid worker count: %d", n))
	}
	n, opts.MaxWorkers = opts.MaxWorkers, n
	return n
}
