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

// Package dataflow is a monotone fixpoint solver over basic blocks.
package dataflow

import (
    `github.com/cloudwego/dexopt/internal/cfg`
    `github.com/cloudwego/dexopt/ir`
    `github.com/oleiade/lane`
)

type Direction uint8

const (
    Forward Direction = iota
    Backward
)

// Problem describes a dataflow analysis over states of type S.
//
// Meet receives the states of every already visited neighbour at once, a
// neighbour that has not been visited yet is the lattice top and does not
// contribute. In the backward direction, exits and blocks without any visited
// successor start from Boundary. Transfer must not modify its input state.
type Problem[S any] struct {
    Direction Direction
    Height    int
    Boundary  func() S
    Meet      func(states []S) S
    Transfer  func(bb *cfg.BasicBlock, in S) S
    Equal     func(a S, b S) bool
}

// Result holds the fixpoint states at the entry and exit of every block.
type Result[S any] struct {
    in     []S
    out    []S
    seen   []bool
    Visits int
}

// In is the state at the entry of the block.
func (self *Result[S]) In(bb *cfg.BasicBlock) S {
    return self.in[bb.Id]
}

// Out is the state at the exit of the block.
func (self *Result[S]) Out(bb *cfg.BasicBlock) S {
    return self.out[bb.Id]
}

// Reached reports whether the solver ever computed a state for the block.
func (self *Result[S]) Reached(bb *cfg.BasicBlock) bool {
    return self.seen[bb.Id]
}

type _Solver[S any] struct {
    g      *cfg.CFG
    p      *Problem[S]
    r      *Result[S]
    q      *lane.PQueue
    prio   []int
    queued []bool
}

// Solve iterates the problem to its fixpoint. The number of block visits is
// capped at blocks × (Height + 2), a monotone problem whose lattice height is
// at most Height never gets there.
func Solve[S any](g *cfg.CFG, p Problem[S]) *Result[S] {
    nb := len(g.Blocks)
    sv := &_Solver[S] {
        g      : g,
        p      : &p,
        q      : lane.NewPQueue(lane.MINPQ),
        prio   : make([]int, nb),
        queued : make([]bool, nb),
        r      : &Result[S] {
            in   : make([]S, nb),
            out  : make([]S, nb),
            seen : make([]bool, nb),
        },
    }

    /* process blocks in the natural order of the direction */
    order := g.ReversePostOrder()
    if p.Direction == Backward {
        order = g.PostOrder()
    }

    /* initialize the worklist */
    for i, bb := range order {
        sv.prio[bb.Id] = i
        sv.push(bb)
    }

    /* iterate until fixpoint */
    sv.run(nb * (p.Height + 2))
    return sv.r
}

func (self *_Solver[S]) push(bb *cfg.BasicBlock) {
    if !self.queued[bb.Id] {
        self.queued[bb.Id] = true
        self.q.Push(bb, self.prio[bb.Id])
    }
}

func (self *_Solver[S]) run(limit int) {
    for !self.q.Empty() {
        v, _ := self.q.Pop()
        bb := v.(*cfg.BasicBlock)
        self.queued[bb.Id] = false

        /* check for the visit limit */
        if self.r.Visits++; self.r.Visits > limit {
            ir.Invariant("dataflow", "no fixpoint after %d block visits", limit)
        }

        /* visit the block */
        if self.p.Direction == Forward {
            self.forward(bb)
        } else {
            self.backward(bb)
        }
    }
}

func (self *_Solver[S]) forward(bb *cfg.BasicBlock) {
    var ins []S

    /* the entry block receives the boundary state */
    if bb == self.g.Root {
        ins = append(ins, self.p.Boundary())
    }

    /* visited predecessors */
    for _, p := range bb.Pred {
        if self.r.seen[p.Id] {
            ins = append(ins, self.r.out[p.Id])
        }
    }

    /* nothing flows in yet */
    if len(ins) == 0 {
        return
    }

    /* apply the transfer function */
    in := self.p.Meet(ins)
    out := self.p.Transfer(bb, in)
    self.r.in[bb.Id] = in

    /* propagate to successors if changed */
    if !self.r.seen[bb.Id] || !self.p.Equal(out, self.r.out[bb.Id]) {
        self.r.out[bb.Id] = out
        self.r.seen[bb.Id] = true
        for _, p := range bb.Succ {
            self.push(p)
        }
    }
}

func (self *_Solver[S]) backward(bb *cfg.BasicBlock) {
    var ins []S

    /* visited successors */
    for _, p := range bb.Succ {
        if self.r.seen[p.Id] {
            ins = append(ins, self.r.in[p.Id])
        }
    }

    /* exits and blocks waiting for their successors start from the boundary */
    if len(bb.Succ) == 0 || len(ins) == 0 {
        ins = append(ins, self.p.Boundary())
    }

    /* apply the transfer function */
    out := self.p.Meet(ins)
    in := self.p.Transfer(bb, out)
    self.r.out[bb.Id] = out

    /* propagate to predecessors if changed */
    if !self.r.seen[bb.Id] || !self.p.Equal(in, self.r.in[bb.Id]) {
        self.r.in[bb.Id] = in
        self.r.seen[bb.Id] = true
        for _, p := range bb.Pred {
            self.push(p)
        }
    }
}
