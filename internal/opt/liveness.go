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
    `github.com/cloudwego/dexopt/internal/cfg`
    `github.com/cloudwego/dexopt/internal/dataflow`
    `github.com/cloudwego/dexopt/ir`
)

// Liveness computes the registers live at block boundaries. A wide value
// keeps both halves of it's register pair alive.
func Liveness(g *cfg.CFG) *dataflow.Result[RegSet] {
    return dataflow.Solve(g, dataflow.Problem[RegSet] {
        Direction : dataflow.Backward,
        Height    : g.Code.Regs,
        Boundary  : func() RegSet { return make(RegSet) },
        Meet      : unionRegSets,
        Transfer  : transferLiveness,
        Equal     : RegSet.equal,
    })
}

func unionRegSets(states []RegSet) RegSet {
    ret := states[0].clone()
    for _, st := range states[1:] {
        for r := range st {
            ret.add(r)
        }
    }
    return ret
}

func transferLiveness(bb *cfg.BasicBlock, out RegSet) RegSet {
    ret := out.clone()
    for i := len(bb.Ins) - 1; i >= 0; i-- {
        liveStep(ret, bb.Ins[i])
    }
    return ret
}

// liveStep moves the live set from after p to before p.
func liveStep(live RegSet, p *ir.Instr) {
    if k := p.DestKind(); k != ir.KindNone {
        live.remove(p.Dest)
        if k == ir.KindWide {
            live.remove(p.Dest + 1)
        }
    }
    for i, r := range p.Srcs {
        live.add(r)
        if p.SrcKind(i) == ir.KindWide {
            live.add(r + 1)
        }
    }
}

// liveAfter reports whether the value p defines is read before being
// redefined.
func liveAfter(live RegSet, p *ir.Instr) bool {
    if live.Contains(p.Dest) {
        return true
    } else {
        return p.DestKind() == ir.KindWide && live.Contains(p.Dest + 1)
    }
}
