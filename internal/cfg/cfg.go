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
    `fmt`
    `strings`

    `github.com/cloudwego/dexopt/ir`
    `github.com/oleiade/lane`
    `github.com/tliron/commonlog`
)

var log = commonlog.GetLogger("dexopt.cfg")

type BasicBlock struct {
    Id   int
    Ins  []*ir.Instr
    Pred []*BasicBlock
    Succ []*BasicBlock
}

func (self *BasicBlock) link(to *BasicBlock) {
    for _, p := range self.Succ {
        if p == to {
            return
        }
    }
    self.Succ = append(self.Succ, to)
    to.Pred = append(to.Pred, self)
}

func (self *BasicBlock) String() string {
    buf := make([]string, 0, len(self.Ins) + 1)
    buf = append(buf, fmt.Sprintf("bb_%d:", self.Id))
    for _, v := range self.Ins {
        buf = append(buf, "    " + v.String())
    }
    return strings.Join(buf, "\n")
}

// CFG is the control flow graph of a method body. Only blocks reachable
// from the entry are present, Blocks is indexed by block ID.
type CFG struct {
    Root   *BasicBlock
    Code   *ir.Code
    Blocks []*BasicBlock
}

// Build constructs the CFG of a method body. A body without instructions
// has no blocks at all.
func Build(code *ir.Code) *CFG {
    return CreateGraphBuilder(code).Build()
}

// Exits returns all the blocks that leave the method.
func (self *CFG) Exits() []*BasicBlock {
    var ret []*BasicBlock
    for _, bb := range self.Blocks {
        if len(bb.Succ) == 0 {
            ret = append(ret, bb)
        }
    }
    return ret
}

// PostOrder returns all the blocks in depth-first post order.
func (self *CFG) PostOrder() []*BasicBlock {
    if self.Root == nil {
        return nil
    }

    /* iterative depth-first search */
    s := lane.NewStack()
    v := make([]bool, len(self.Blocks))
    r := make([]*BasicBlock, 0, len(self.Blocks))

    /* start from the entry block */
    s.Push(self.Root)
    v[self.Root.Id] = true

    /* scan until the stack is empty */
    for !s.Empty() {
        tail := true
        this := s.Head().(*BasicBlock)

        /* add the first unvisited successor */
        for _, p := range this.Succ {
            if !v[p.Id] {
                tail = false
                v[p.Id] = true
                s.Push(p)
                break
            }
        }

        /* all the successors are visited, pop the current node */
        if tail {
            r = append(r, s.Pop().(*BasicBlock))
        }
    }

    /* all done */
    return r
}

// ReversePostOrder returns all the blocks in reversed depth-first post
// order, the entry block comes first.
func (self *CFG) ReversePostOrder() []*BasicBlock {
    ret := self.PostOrder()
    for i, j := 0, len(ret) - 1; i < j; i, j = i + 1, j - 1 {
        ret[i], ret[j] = ret[j], ret[i]
    }
    return ret
}

func (self *CFG) String() string {
    buf := make([]string, 0, len(self.Blocks))
    for _, bb := range self.Blocks {
        succ := make([]string, len(bb.Succ))
        for i, p := range bb.Succ {
            succ[i] = fmt.Sprintf("bb_%d", p.Id)
        }
        buf = append(buf, fmt.Sprintf("%s\n    ; -> {%s}", bb, strings.Join(succ, ", ")))
    }
    return strings.Join(buf, "\n")
}
