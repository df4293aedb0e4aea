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

package cfg

import (
    `github.com/cloudwego/dexopt/ir`
)

// GraphBuilder discovers basic blocks starting from the entry, so that
// unreachable instructions never become a part of the graph.
type GraphBuilder struct {
    Pin   map[*ir.Instr]bool
    Index map[*ir.Instr]int
    Graph map[int]*BasicBlock
    code  *ir.Code
    cfg   *CFG
}

func CreateGraphBuilder(code *ir.Code) *GraphBuilder {
    return &GraphBuilder {
        Pin   : make(map[*ir.Instr]bool),
        Index : make(map[*ir.Instr]int, len(code.Ins)),
        Graph : make(map[int]*BasicBlock),
        code  : code,
        cfg   : &CFG{Code: code},
    }
}

func (self *GraphBuilder) scan() {
    for i, v := range self.code.Ins {
        self.Index[v] = i
    }

    /* every branch target starts a new block */
    for _, v := range self.code.Ins {
        for _, lb := range v.Targets() {
            if lb == nil || !lb.IsLabel() {
                ir.Invariant("cfg", "%s: branch to a non-label instruction", v)
            } else if _, ok := self.Index[lb]; !ok {
                ir.Invariant("cfg", "%s: branch to undefined label :%s", v, lb.Str)
            } else {
                self.Pin[lb] = true
            }
        }
    }
}

func (self *GraphBuilder) check(p *ir.Instr) {
    if k := p.DestKind(); k != ir.KindNone && int(p.Dest) + k.Width() > self.code.Regs {
        ir.Invariant("cfg", "%s: use of undefined register: %s", p, p.Dest)
    }
    for i, r := range p.Srcs {
        if int(r) + p.SrcKind(i).Width() > self.code.Regs {
            ir.Invariant("cfg", "%s: use of undefined register: %s", p, r)
        }
    }
}

func (self *GraphBuilder) block(i int, bb *BasicBlock) {
    var p *ir.Instr
    ins := self.code.Ins

    /* traverse down until it hits a block terminator */
    for ; i < len(ins); i++ {
        p = ins[i]
        self.check(p)
        bb.Ins = append(bb.Ins, p)

        /* end of basic block */
        if p.Ends() {
            break
        }

        /* hit a merge point, merge with existing block */
        if i + 1 < len(ins) && self.Pin[ins[i + 1]] {
            bb.link(self.branch(i + 1))
            return
        }
    }

    /* fell off the end of the method */
    if i >= len(ins) {
        return
    }

    /* conditional branches and switches fall through */
    if p.Falls() && i + 1 < len(ins) {
        bb.link(self.branch(i + 1))
    }

    /* add every branch target */
    for _, lb := range p.Targets() {
        bb.link(self.branch(self.Index[lb]))
    }
}

func (self *GraphBuilder) branch(i int) *BasicBlock {
    var ok bool
    var bb *BasicBlock

    /* check for existing basic blocks */
    if bb, ok = self.Graph[i]; ok {
        return bb
    }

    /* create a new block */
    bb = &BasicBlock{Id: len(self.cfg.Blocks)}
    self.cfg.Blocks = append(self.cfg.Blocks, bb)

    /* process the new block */
    self.Graph[i] = bb
    self.block(i, bb)
    return bb
}

func (self *GraphBuilder) Build() *CFG {
    self.scan()

    /* empty method body */
    if len(self.code.Ins) == 0 {
        return self.cfg
    }

    /* discover all the blocks starting from the entry */
    self.cfg.Root = self.branch(0)
    log.Debugf("built CFG with %d blocks over %d instructions", len(self.cfg.Blocks), len(self.code.Ins))
    return self.cfg
}
