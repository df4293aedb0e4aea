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
    `sync/atomic`

    `github.com/cloudwego/dexopt/ir`
)

// FinalInline resolves static final fields initialized by copying another
// static final field, and turns them into fields with an encoded value.
type FinalInline struct{}

type FinalInlineStats struct {
    Resolved   int
    Unresolved int
    Removed    int
}

func (self FinalInline) Apply(scope ir.Scope) {
    st := self.Run(scope)
    atomic.AddUint64(&FinalInlineFields, uint64(st.Resolved))
    atomic.AddUint64(&FinalInlineRemoved, uint64(st.Removed))
}

// Run applies the pass to the scope and reports what it changed. Chains of
// any depth resolve in a single run, fields on dependency cycles keep their
// original values.
func (self FinalInline) Run(scope ir.Scope) (st FinalInlineStats) {
    fg := BuildFieldGraph(scope, ir.NewResolver(scope))
    order, cycles := fg.Order()

    /* report all the cycles */
    for _, c := range cycles {
        log.Warningf("static field initializers form a cycle: %v", c)
    }

    /* parents always come before their children */
    dead := make(map[*ir.Code]map[*ir.Instr]bool)
    for _, f := range order {
        p := fg.parent[f]
        if p == nil {
            continue
        }

        /* the parent must have a known value by now */
        v, ok := fg.values[p]
        if !ok {
            st.Unresolved++
            log.Debugf("%s left untouched: %s has no constant value", f, p)
            continue
        }

        /* copy the value verbatim */
        f.Value = v.Clone()
        fg.values[f] = f.Value
        st.Resolved++

        /* mark the initializing instructions as dead */
        site := fg.sites[f]
        if dead[site.code] == nil {
            dead[site.code] = make(map[*ir.Instr]bool)
        }
        dead[site.code][site.get] = true
        dead[site.code][site.put] = true
    }

    /* children of cyclic fields never see a parent value */
    for _, c := range cycles {
        st.Unresolved += len(c)
    }

    /* remove the initializing instructions, empty initializers are kept */
    for code, set := range dead {
        st.Removed += code.Remove(set)
    }

    /* all done */
    log.Infof("final field propagation: %d fields resolved, %d left untouched, %d instructions removed", st.Resolved, st.Unresolved, st.Removed)
    return
}
