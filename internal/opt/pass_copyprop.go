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

    `github.com/cloudwego/dexopt/internal/cfg`
    `github.com/cloudwego/dexopt/internal/dataflow`
    `github.com/cloudwego/dexopt/ir`
)

// CopyProp rewrites register uses to the representative of their alias
// class, and removes copies that became no-ops.
type CopyProp struct {
    AllTransitives  bool
    DeleteRedundant bool
}

type CopyPropStats struct {
    Rewrites int
    Deletes  int
}

func (self CopyProp) Apply(code *ir.Code) {
    st := self.Run(code)
    atomic.AddUint64(&CopyPropMethods, 1)
    atomic.AddUint64(&CopyPropRewrites, uint64(st.Rewrites))
    atomic.AddUint64(&CopyPropDeletes, uint64(st.Deletes))
}

// Run applies the pass to a method body and reports what it changed.
//
// With AllTransitives, rewriting and dead copy removal alternate until a
// round removes no dead copy.
func (self CopyProp) Run(code *ir.Code) (st CopyPropStats) {
    for {
        self.propagate(code, &st)
        if !self.AllTransitives {
            return
        }

        /* Phase 3: Remove copies that nothing reads any more */
        n := 0
        for d := eliminateDeadCopies(code); d != 0; d = eliminateDeadCopies(code) {
            n += d
        }

        /* nothing new to rewrite */
        st.Deletes += n
        if n == 0 {
            return
        }
    }
}

func (self CopyProp) propagate(code *ir.Code, st *CopyPropStats) {
    g := cfg.Build(code)
    if g.Root == nil {
        return
    }

    /* Phase 1: Find the alias classes at every block entry */
    res := dataflow.Solve(g, dataflow.Problem[*AliasGroups] {
        Direction : dataflow.Forward,
        Height    : 2 * code.Regs,
        Boundary  : func() *AliasGroups { return NewAliasGroups(code.Regs) },
        Meet      : func(states []*AliasGroups) *AliasGroups { return Intersect(states...) },
        Transfer  : transferAliases,
        Equal     : (*AliasGroups).Equal,
    })

    /* Phase 2: Replay every block and rewrite the uses */
    dead := make(map[*ir.Instr]bool)
    for _, bb := range g.Blocks {
        aa := res.In(bb).Clone()
        for _, p := range bb.Ins {
            if !p.IsCopy() {
                st.Rewrites += rewriteUses(aa, p)
                aliasStep(aa, p)
                continue
            }

            /* self-moves are never rewritten */
            src := p.Srcs[0]
            wide := p.DestKind() == ir.KindWide
            if p.Dest == src {
                dead[p] = true
                continue
            }

            /* copies that became no-ops */
            st.Rewrites += rewriteUses(aa, p)
            if p.Dest == p.Srcs[0] || (self.DeleteRedundant && aa.Bound(p.Dest, src, wide)) {
                dead[p] = true
            }

            /* the state advances with the original source, the rewritten
             * one may overlap the destination of a wide copy */
            aa.Bind(p.Dest, src, wide)
        }
    }

    /* remove the no-op copies */
    st.Deletes += code.Remove(dead)
    log.Debugf("copy propagation: %d uses rewritten, %d no-op copies removed", st.Rewrites, st.Deletes)
}

func transferAliases(bb *cfg.BasicBlock, in *AliasGroups) *AliasGroups {
    ret := in.Clone()
    for _, p := range bb.Ins {
        aliasStep(ret, p)
    }
    return ret
}

func aliasStep(aa *AliasGroups, p *ir.Instr) {
    if p.IsCopy() {
        aa.Bind(p.Dest, p.Srcs[0], p.DestKind() == ir.KindWide)
    } else if k := p.DestKind(); k != ir.KindNone {
        aa.Kill(p.Dest, k == ir.KindWide)
    }
}

// rewriteUses replaces the source operands of p with their representatives,
// and returns the number of operands replaced.
func rewriteUses(aa *AliasGroups, p *ir.Instr) int {
    if len(p.Srcs) == 0 || p.Op.Is(ir.FlagMonitor) || p.RangeEligible() {
        return 0
    }

    /* compute the replacements */
    nb := 0
    rs := make([]ir.Reg, len(p.Srcs))
    for i, r := range p.Srcs {
        rs[i] = r
        q := aa.Find(r)

        /* wide uses only go through wide classes and vice versa */
        if q != r && aa.IsWide(r) == (p.SrcKind(i) == ir.KindWide) {
            rs[i] = q
            nb++
        }
    }

    /* nothing to replace */
    if nb == 0 {
        return 0
    }

    /* the replacement must not force the range form */
    if p.Op.Is(ir.FlagRange) && (&ir.Instr{Op: p.Op, Srcs: rs, Method: p.Method, Str: p.Str}).RangeEligible() {
        return 0
    }

    /* update the operands */
    copy(p.Srcs, rs)
    return nb
}

// eliminateDeadCopies removes copies whose destination is never read before
// being redefined.
func eliminateDeadCopies(code *ir.Code) int {
    g := cfg.Build(code)
    if g.Root == nil {
        return 0
    }

    /* find all the dead copies */
    res := Liveness(g)
    dead := make(map[*ir.Instr]bool)
    for _, bb := range g.Blocks {
        live := res.Out(bb).clone()
        for i := len(bb.Ins) - 1; i >= 0; i-- {
            if p := bb.Ins[i]; p.IsCopy() && !liveAfter(live, p) {
                dead[p] = true
            } else {
                liveStep(live, p)
            }
        }
    }

    /* remove all of them */
    return code.Remove(dead)
}
