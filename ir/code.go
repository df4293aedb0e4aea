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

package ir

import (
    `strings`
)

// Code is a method body: an ordered instruction list over a register frame
// of Regs slots.
type Code struct {
    Regs int
    Ins  []*Instr
}

// Count returns the number of real instructions, not counting labels.
func (self *Code) Count() int {
    ret := 0
    for _, v := range self.Ins {
        if !v.IsLabel() {
            ret++
        }
    }
    return ret
}

// Remove deletes every instruction in the set, keeping the order of the
// rest. It returns the number of removed instructions.
func (self *Code) Remove(dead map[*Instr]bool) int {
    if len(dead) == 0 {
        return 0
    }

    /* compact the instruction list */
    i := 0
    for _, v := range self.Ins {
        if !dead[v] {
            self.Ins[i] = v
            i++
        }
    }

    /* clear the tail to release references */
    for j := i; j < len(self.Ins); j++ {
        self.Ins[j] = nil
    }

    /* update the instruction list */
    nb := len(self.Ins) - i
    self.Ins = self.Ins[:i]
    return nb
}

// Clone makes a deep copy of the body, relinking branches to the copied
// labels.
func (self *Code) Clone() *Code {
    ret := &Code{Regs: self.Regs, Ins: make([]*Instr, len(self.Ins))}
    lbs := make(map[*Instr]*Instr)

    /* copy every instruction */
    for i, v := range self.Ins {
        p := *v
        p.Srcs = append([]Reg(nil), v.Srcs...)
        ret.Ins[i] = &p

        /* remember the label mapping */
        if v.IsLabel() {
            lbs[v] = &p
        }
    }

    /* relink the branch targets */
    for _, p := range ret.Ins {
        if p.Br != nil {
            p.Br = relink(lbs, p.Br)
        }

        /* relink switch targets */
        if p.Sw != nil {
            sw := make([]*Instr, len(p.Sw))
            for i, lb := range p.Sw {
                sw[i] = relink(lbs, lb)
            }
            p.Sw = sw
        }
    }

    /* all done */
    return ret
}

func (self *Code) String() string {
    buf := make([]string, 0, len(self.Ins) + 2)
    buf = append(buf, "(")

    /* dump every instruction */
    for _, v := range self.Ins {
        buf = append(buf, "  " + v.String())
    }

    /* close the list */
    buf = append(buf, ")")
    return strings.Join(buf, "\n")
}

func relink(lbs map[*Instr]*Instr, lb *Instr) *Instr {
    if p, ok := lbs[lb]; ok {
        return p
    } else {
        return lb
    }
}
