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
    `gonum.org/v1/gonum/graph`
    `gonum.org/v1/gonum/graph/simple`
    `gonum.org/v1/gonum/graph/topo`
)

type _Accessor struct {
    get ir.OpCode
    put ir.OpCode
}

// Field types whose values can be copied between static fields, and the
// instructions that load and store them.
var _Accessors = map[string]_Accessor {
    "I"                  : { ir.OP_sget         , ir.OP_sput },
    "F"                  : { ir.OP_sget         , ir.OP_sput },
    "Z"                  : { ir.OP_sget_boolean , ir.OP_sput_boolean },
    "B"                  : { ir.OP_sget_byte    , ir.OP_sput_byte },
    "C"                  : { ir.OP_sget_char    , ir.OP_sput_char },
    "S"                  : { ir.OP_sget_short   , ir.OP_sput_short },
    "J"                  : { ir.OP_sget_wide    , ir.OP_sput_wide },
    "D"                  : { ir.OP_sget_wide    , ir.OP_sput_wide },
    "Ljava/lang/String;" : { ir.OP_sget_object  , ir.OP_sput_object },
}

func isStaticGet(op ir.OpCode) bool {
    return op >= ir.OP_sget && op <= ir.OP_sget_short
}

func isStaticPut(op ir.OpCode) bool {
    return op >= ir.OP_sput && op <= ir.OP_sput_short
}

// _Site is the "sget vX P; sput vX F" pair that initializes F.
type _Site struct {
    code *ir.Code
    get  *ir.Instr
    put  *ir.Instr
}

// FieldGraph has an edge P -> F for every static final field F whose class
// initializer does nothing to F but copy the value of static final field P.
type FieldGraph struct {
    g      *simple.DirectedGraph
    ids    map[*ir.Field]int64
    fields []*ir.Field
    parent map[*ir.Field]*ir.Field
    sites  map[*ir.Field]_Site
    values map[*ir.Field]*ir.EncodedValue
}

// BuildFieldGraph scans the class initializers of the scope.
func BuildFieldGraph(scope ir.Scope, res *ir.Resolver) *FieldGraph {
    ret := &FieldGraph {
        g      : simple.NewDirectedGraph(),
        ids    : make(map[*ir.Field]int64),
        parent : make(map[*ir.Field]*ir.Field),
        sites  : make(map[*ir.Field]_Site),
        values : make(map[*ir.Field]*ir.EncodedValue),
    }

    /* find all the copy patterns */
    for _, cls := range scope {
        ret.scanClinit(cls, res)
    }

    /* then everything else written by initializers */
    dirty := ret.markDirty(scope, res)

    /* fields with a known value that no initializer touches */
    for _, cls := range scope {
        for _, f := range cls.Fields {
            if f.Value != nil && f.IsStaticFinal() && !dirty[f] && ret.parent[f] == nil {
                ret.values[f] = f.Value
            }
        }
    }

    /* add every edge in scope order */
    for _, cls := range scope {
        for _, f := range cls.Fields {
            if p := ret.parent[f]; p != nil {
                ret.g.SetEdge(simple.Edge{F: ret.node(p), T: ret.node(f)})
            }
        }
    }

    /* all done */
    return ret
}

func (self *FieldGraph) node(f *ir.Field) graph.Node {
    if id, ok := self.ids[f]; ok {
        return simple.Node(id)
    }

    /* allocate a new node */
    id := int64(len(self.fields))
    self.ids[f] = id
    self.fields = append(self.fields, f)

    /* add to graph */
    nd := simple.Node(id)
    self.g.AddNode(nd)
    return nd
}

// Len is the number of fields in the graph.
func (self *FieldGraph) Len() int {
    return len(self.fields)
}

// Parent returns the field F is copied from, if any.
func (self *FieldGraph) Parent(f *ir.Field) *ir.Field {
    return self.parent[f]
}

// Root reports whether the value of f is known without running any code.
func (self *FieldGraph) Root(f *ir.Field) bool {
    _, ok := self.values[f]
    return ok
}

// Order returns the fields in dependency order, parents before children.
// Fields on a dependency cycle are left out, with the cyclic components
// returned separately.
func (self *FieldGraph) Order() ([]*ir.Field, [][]*ir.Field) {
    var cyc [][]*ir.Field
    nodes, err := topo.SortStabilized(self.g, nil)

    /* collect the cyclic components */
    if uo, ok := err.(topo.Unorderable); ok {
        for _, c := range uo {
            fv := make([]*ir.Field, len(c))
            for i, nd := range c {
                fv[i] = self.fields[nd.ID()]
            }
            cyc = append(cyc, fv)
        }
    }

    /* cyclic components are marked as nil */
    ret := make([]*ir.Field, 0, len(nodes))
    for _, nd := range nodes {
        if nd != nil {
            ret = append(ret, self.fields[nd.ID()])
        }
    }

    /* all done */
    return ret, cyc
}

func (self *FieldGraph) scanClinit(cls *ir.Class, res *ir.Resolver) {
    m := cls.Clinit()
    if m == nil || m.Code == nil {
        return
    }

    /* count every access to a static field */
    code := m.Code
    reads := make(map[*ir.Field]int)
    writes := make(map[*ir.Field]int)
    for _, p := range code.Ins {
        if p.Field == nil {
            continue
        }
        if f := res.ResolveStaticField(*p.Field); f == nil {
            continue
        } else if isStaticGet(p.Op) {
            reads[f]++
        } else if isStaticPut(p.Op) {
            writes[f]++
        }
    }

    /* find all the copy patterns in reachable code */
    if g := cfg.Build(code); g.Root != nil {
        self.scanPatterns(cls, res, g, reads, writes)
    }
}

// markDirty finds the fields written by anything other than their own copy
// pattern. Such fields lose their pattern and never become roots.
func (self *FieldGraph) markDirty(scope ir.Scope, res *ir.Resolver) map[*ir.Field]bool {
    ret := make(map[*ir.Field]bool)
    for _, cls := range scope {
        if m := cls.Clinit(); m != nil && m.Code != nil {
            for _, p := range m.Code.Ins {
                if !isStaticPut(p.Op) {
                    continue
                }
                if f := res.ResolveStaticField(*p.Field); f != nil && self.sites[f].put != p {
                    ret[f] = true
                }
            }
        }
    }

    /* drop the patterns of dirty fields */
    for f := range ret {
        if self.parent[f] != nil {
            log.Debugf("%s is also written outside of its initializer pattern", f)
            delete(self.parent, f)
            delete(self.sites, f)
        }
    }
    return ret
}

func (self *FieldGraph) scanPatterns(cls *ir.Class, res *ir.Resolver, g *cfg.CFG, reads map[*ir.Field]int, writes map[*ir.Field]int) {
    dom := cfg.BuildDominatorTree(g)
    exits := g.Exits()
    live := Liveness(g)

    /* check every adjacent pair in blocks that run whenever the initializer completes */
    for _, bb := range g.Blocks {
        if !dominatesAll(dom, bb, exits) {
            continue
        }
        for i := 0; i + 1 < len(bb.Ins); i++ {
            get, put := bb.Ins[i], bb.Ins[i + 1]
            if f, p := self.matchCopy(cls, res, get, put, reads, writes); f != nil && !liveAt(live, bb, i + 1, get) {
                self.parent[f] = p
                self.sites[f] = _Site{code: g.Code, get: get, put: put}
                log.Debugf("%s is initialized from %s", f, p)
            }
        }
    }
}

func (self *FieldGraph) matchCopy(cls *ir.Class, res *ir.Resolver, get *ir.Instr, put *ir.Instr, reads map[*ir.Field]int, writes map[*ir.Field]int) (*ir.Field, *ir.Field) {
    if !isStaticGet(get.Op) || !isStaticPut(put.Op) || put.Srcs[0] != get.Dest {
        return nil, nil
    }

    /* resolve both fields */
    p := res.ResolveStaticField(*get.Field)
    f := res.ResolveStaticField(*put.Field)

    /* both fields must be static final, and F belongs to this class */
    if p == nil || f == nil || p == f || !p.IsStaticFinal() || !f.IsStaticFinal() || f.Ref.Class != cls.Type {
        return nil, nil
    }

    /* types must match exactly, and so must the accessors */
    acc, ok := _Accessors[f.Ref.Type]
    if !ok || p.Ref.Type != f.Ref.Type || get.Op != acc.get || put.Op != acc.put {
        return nil, nil
    }

    /* F is written exactly once and never read during initialization */
    if writes[f] != 1 || reads[f] != 0 {
        return nil, nil
    }

    /* P must not change while this initializer runs */
    if p.Ref.Class == cls.Type && writes[p] != 0 {
        return nil, nil
    }

    /* all checked */
    return f, p
}

func dominatesAll(dom cfg.DominatorTree, bb *cfg.BasicBlock, exits []*cfg.BasicBlock) bool {
    if len(exits) == 0 {
        return false
    }
    for _, e := range exits {
        if !dom.Dominates(bb, e) {
            return false
        }
    }
    return true
}

// liveAt reports whether the value defined by p is still live after the
// i-th instruction of the block.
func liveAt(live *dataflow.Result[RegSet], bb *cfg.BasicBlock, i int, p *ir.Instr) bool {
    rs := live.Out(bb).clone()
    for j := len(bb.Ins) - 1; j > i; j-- {
        liveStep(rs, bb.Ins[j])
    }
    return liveAfter(rs, p)
}
