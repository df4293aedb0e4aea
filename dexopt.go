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

// Package dexopt implements two optimization passes over a register based
// bytecode IR: copy propagation within method bodies, and constant
// propagation through static final fields across class initializers.
package dexopt

import (
	"github.com/cloudwego/dexopt/internal/opt"
	"github.com/cloudwego/dexopt/internal/opts"
	"github.com/cloudwego/dexopt/ir"
)

func makeOptions(options []Option) opts.Options {
	o := opts.GetDefaultOptions()
	for _, fn := range options {
		fn(&o)
	}
	return o
}

// Optimize runs constant field propagation over the whole scope, then copy
// propagation over every method body concurrently.
//
// The scope is modified in place. Invariant violations found in the input
// panic with an InvariantError.
func Optimize(scope ir.Scope, options ...Option) {
	opt.Optimize(scope, makeOptions(options))
}

// PropagateCopies runs copy propagation over a single method body.
func PropagateCopies(code *ir.Code, options ...Option) CopyStats {
	o := makeOptions(options)
	p := opt.CopyProp{AllTransitives: o.AllTransitives, DeleteRedundant: o.DeleteRedundant}
	return p.Run(code)
}

// PropagateConstants resolves static final fields initialized from other
// static final fields, rewriting field values and class initializers.
func PropagateConstants(scope ir.Scope) ConstStats {
	return opt.FinalInline{}.Run(scope)
}

// CopyStats reports what PropagateCopies changed.
type CopyStats = opt.CopyPropStats

// ConstStats reports what PropagateConstants changed.
type ConstStats = opt.FinalInlineStats
