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
    `sync`
    `sync/atomic`

    `github.com/bytedance/gopkg/util/gopool`
    `github.com/cloudwego/dexopt/internal/opts`
    `github.com/cloudwego/dexopt/ir`
    `github.com/tliron/commonlog`
)

var log = commonlog.GetLogger("dexopt.opt")

var (
    CopyPropMethods    uint64 = 0
    CopyPropRewrites   uint64 = 0
    CopyPropDeletes    uint64 = 0
    FinalInlineFields  uint64 = 0
    FinalInlineRemoved uint64 = 0
)

// MethodPass transforms one method body. Method passes own the body they are
// given and nothing else, so they may run on many methods concurrently.
type MethodPass interface {
    Apply(code *ir.Code)
}

// ScopePass transforms the whole class set and needs exclusive access to it.
type ScopePass interface {
    Apply(scope ir.Scope)
}

type MethodPassDescriptor struct {
    Pass MethodPass
    Desc string
}

type ScopePassDescriptor struct {
    Pass ScopePass
    Desc string
}

func ScopePasses(o opts.Options) []ScopePassDescriptor {
    return []ScopePassDescriptor {
        { Desc: "Final Field Constant Propagation", Pass: new(FinalInline) },
    }
}

func MethodPasses(o opts.Options) []MethodPassDescriptor {
    return []MethodPassDescriptor {
        { Desc: "Copy Propagation", Pass: CopyProp{AllTransitives: o.AllTransitives, DeleteRedundant: o.DeleteRedundant} },
    }
}

// Optimize runs the scope passes over the class set, then every method pass
// over every method body.
func Optimize(scope ir.Scope, o opts.Options) {
    for _, p := range ScopePasses(o) {
        log.Infof("running %s over %d classes", p.Desc, len(scope))
        p.Pass.Apply(scope)
    }
    RunMethodPasses(scope, MethodPasses(o), o.Workers())
}

// RunMethodPasses applies the passes to all method bodies on a pool of
// workers. A panic raised while processing any method is raised again on the
// calling goroutine once all the workers are done.
func RunMethodPasses(scope ir.Scope, passes []MethodPassDescriptor, workers int) {
    var wg sync.WaitGroup
    var nb int64
    var failed atomic.Value

    /* create the worker pool */
    pool := gopool.NewPool("dexopt", int32(workers), gopool.NewConfig())
    log.Infof("running %d method passes with %d workers", len(passes), workers)

    /* submit every method body */
    scope.Methods(func(cls *ir.Class, m *ir.Method) {
        wg.Add(1)
        pool.Go(func() {
            defer wg.Done()
            defer func() {
                if v := recover(); v != nil {
                    failed.CompareAndSwap(nil, _Failure{v})
                }
            }()

            /* apply all the passes in order */
            for _, p := range passes {
                p.Pass.Apply(m.Code)
            }

            /* count the processed method */
            atomic.AddInt64(&nb, 1)
        })
    })

    /* wait for all the methods */
    wg.Wait()
    log.Infof("processed %d methods", atomic.LoadInt64(&nb))

    /* re-raise the first failure */
    if v := failed.Load(); v != nil {
        panic(v.(_Failure).v)
    }
}

type _Failure struct {
    v interface{}
}
