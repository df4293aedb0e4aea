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
    `fmt`
    `sort`
    `strings`

    `github.com/cloudwego/dexopt/ir`
)

// AliasGroups partitions the registers of a method into classes of
// registers known to hold the same value. Storage is indexed by register
// number, rep[r] is the representative of the class r belongs to, and the
// size and width of a class are kept on its representative.
type AliasGroups struct {
    rep  []ir.Reg
    size []int32
    wide []bool
}

// NewAliasGroups creates a partition of n registers, each in its own class.
func NewAliasGroups(n int) *AliasGroups {
    ret := &AliasGroups {
        rep  : make([]ir.Reg, n),
        size : make([]int32, n),
        wide : make([]bool, n),
    }
    for i := range ret.rep {
        ret.rep[i] = ir.Reg(i)
        ret.size[i] = 1
    }
    return ret
}

func (self *AliasGroups) Len() int {
    return len(self.rep)
}

func (self *AliasGroups) Clone() *AliasGroups {
    return &AliasGroups {
        rep  : append([]ir.Reg(nil), self.rep...),
        size : append([]int32(nil), self.size...),
        wide : append([]bool(nil), self.wide...),
    }
}

// Find returns the representative of the class r belongs to.
func (self *AliasGroups) Find(r ir.Reg) ir.Reg {
    return self.rep[r]
}

// Aliased reports whether a and b are known to hold the same value.
func (self *AliasGroups) Aliased(a ir.Reg, b ir.Reg) bool {
    return self.rep[a] == self.rep[b]
}

// IsWide reports whether r belongs to a class of wide register pairs.
func (self *AliasGroups) IsWide(r ir.Reg) bool {
    p := self.rep[r]
    return self.size[p] > 1 && self.wide[p]
}

// Bound reports whether a copy of the given width from src to dst would be
// a no-op.
func (self *AliasGroups) Bound(dst ir.Reg, src ir.Reg, wide bool) bool {
    if dst == src {
        return true
    } else {
        return self.Aliased(dst, src) && self.IsWide(src) == wide
    }
}

// Bind records the copy dst <- src. It returns true if the copy was
// already known to be a no-op.
func (self *AliasGroups) Bind(dst ir.Reg, src ir.Reg, wide bool) bool {
    if self.Bound(dst, src, wide) {
        return true
    }

    /* overlapping register pairs are plain writes */
    if wide && (dst == src + 1 || src == dst + 1) {
        self.Kill(dst, true)
        return false
    }

    /* a copy of a different width is a plain write */
    if p := self.rep[src]; self.size[p] > 1 && self.wide[p] != wide {
        self.Kill(dst, wide)
        return false
    }

    /* dst gets a new value, which might also elect a new representative
     * for src if dst was the representative of the same class */
    self.Kill(dst, wide)
    p := self.rep[src]

    /* a singleton becomes a class of the copy's width */
    if self.size[p] == 1 {
        self.wide[p] = wide
    }

    /* join the class of src, keeping it's representative */
    self.rep[dst] = p
    self.size[p]++
    return false
}

// Kill records a redefinition of r (and r+1 for wide values) by anything
// other than a tracked copy.
func (self *AliasGroups) Kill(r ir.Reg, wide bool) {
    self.detach(r)

    /* the high half of the pair is also overwritten */
    if wide {
        self.detach(r + 1)
    }

    /* r might be the high half of a wide value held in r-1 */
    if r > 0 && self.IsWide(r - 1) {
        self.detach(r - 1)
    }
}

func (self *AliasGroups) detach(r ir.Reg) {
    p := self.rep[r]
    n := self.size[p]

    /* already a singleton */
    if n == 1 {
        return
    }

    /* removing an ordinary member */
    if p != r {
        self.size[p]--
        self.rep[r] = r
        self.size[r] = 1
        self.wide[r] = false
        return
    }

    /* the lowest remaining member succeeds the representative */
    q := ir.Reg(len(self.rep))
    for i, v := range self.rep {
        if v == r && ir.Reg(i) != r {
            q = ir.Reg(i)
            break
        }
    }

    /* move every member over */
    for i, v := range self.rep {
        if v == r {
            self.rep[i] = q
        }
    }

    /* update the class attributes */
    self.size[q] = n - 1
    self.wide[q] = self.wide[r]
    self.rep[r] = r
    self.size[r] = 1
    self.wide[r] = false
}

// Equal reports whether both partitions and their representatives agree.
func (self *AliasGroups) Equal(other *AliasGroups) bool {
    if len(self.rep) != len(other.rep) {
        return false
    }
    for i, p := range self.rep {
        if other.rep[i] != p {
            return false
        }
        if ir.Reg(i) == p && self.size[p] > 1 && self.wide[p] != other.wide[p] {
            return false
        }
    }
    return true
}

// Intersect computes the meet of the states flowing into a join point: two
// registers stay aliased only if they are aliased in every state. A class
// keeps its representative when all the states agree on it, otherwise the
// lowest member is chosen. The result does not depend on the order of the
// states.
func Intersect(states ...*AliasGroups) *AliasGroups {
    if len(states) == 0 {
        panic("intersect of nothing")
    } else if len(states) == 1 {
        return states[0].Clone()
    }

    /* refine the partition of the first state by every other state */
    n := states[0].Len()
    group := make([]int, n)
    for i, p := range states[0].rep {
        group[i] = int(p)
    }

    /* split groups whose members disagree in any state */
    for _, st := range states[1:] {
        ids := make(map[[2]int]int, n)
        for i := range group {
            key := [2]int{group[i], int(st.rep[i])}
            if id, ok := ids[key]; ok {
                group[i] = id
            } else {
                group[i] = len(ids)
                ids[key] = group[i]
            }
        }
    }

    /* collect the members of every group, lowest register first */
    members := make(map[int][]ir.Reg, n)
    for i, g := range group {
        members[g] = append(members[g], ir.Reg(i))
    }

    /* build the resulting partition */
    ret := NewAliasGroups(n)
    for _, m := range members {
        if len(m) > 1 {
            joinGroup(ret, states, m)
        }
    }

    /* all done */
    return ret
}

func joinGroup(ret *AliasGroups, states []*AliasGroups, m []ir.Reg) {
    wide := states[0].IsWide(m[0])
    rep := states[0].Find(m[0])

    /* every state must agree on the class width */
    for _, st := range states[1:] {
        if st.IsWide(m[0]) != wide {
            return
        }
        if st.Find(m[0]) != rep {
            rep = m[0]
        }
    }

    /* link all the members */
    for _, r := range m {
        ret.rep[r] = rep
    }

    /* update the class attributes */
    ret.size[rep] = int32(len(m))
    ret.wide[rep] = wide
}

func (self *AliasGroups) String() string {
    var keys []int
    groups := make(map[ir.Reg][]string)

    /* collect all the non-trivial classes */
    for i, p := range self.rep {
        if self.size[p] > 1 {
            if _, ok := groups[p]; !ok {
                keys = append(keys, int(p))
            }
            groups[p] = append(groups[p], ir.Reg(i).String())
        }
    }

    /* dump every class */
    sort.Ints(keys)
    buf := make([]string, 0, len(keys))
    for _, k := range keys {
        p := ir.Reg(k)
        tag := ""
        if self.wide[p] {
            tag = " (wide)"
        }
        buf = append(buf, fmt.Sprintf("%s: {%s}%s", p, strings.Join(groups[p], ", "), tag))
    }

    /* join them together */
    return "{" + strings.Join(buf, "; ") + "}"
}
