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
    `fmt`
    `strconv`
    `strings`
)

// Instr is a single instruction of a method body. Labels are pseudo
// instructions (OP_label) that branches point at, so the instruction list
// stays linked when other instructions are removed.
type Instr struct {
    Op     OpCode
    Dest   Reg
    Srcs   []Reg
    Lit    int64
    Str    string
    Field  *FieldRef
    Method *MethodRef
    Br     *Instr
    Sw     []*Instr
}

func NewLabel(name string) *Instr {
    return &Instr{Op: OP_label, Str: name}
}

func (self *Instr) Info() *OpInfo {
    return self.Op.Info()
}

func (self *Instr) IsLabel() bool {
    return self.Op == OP_label
}

func (self *Instr) HasDest() bool {
    return self.Op.Info().Dest != KindNone
}

func (self *Instr) DestKind() Kind {
    return self.Op.Info().Dest
}

// SrcKind returns the kind of the i-th source operand.
func (self *Instr) SrcKind(i int) Kind {
    switch self.Op {
        case OP_invoke_static: {
            return self.Method.ArgKinds(true)[i]
        }
        case OP_invoke_virtual, OP_invoke_super, OP_invoke_direct, OP_invoke_interface: {
            return self.Method.ArgKinds(false)[i]
        }
        case OP_filled_new_array: {
            return TypeKind(strings.TrimPrefix(self.Str, "["))
        }
        default: {
            return self.Op.Info().Srcs[i]
        }
    }
}

// Words is the number of register slots read by the instruction.
func (self *Instr) Words() int {
    ret := 0
    for i := range self.Srcs {
        ret += self.SrcKind(i).Width()
    }
    return ret
}

// IsCopy reports whether the instruction is a register-to-register move.
func (self *Instr) IsCopy() bool {
    return self.Op.Is(FlagMove)
}

// IsBranch reports whether the instruction transfers control somewhere
// other than the next instruction.
func (self *Instr) IsBranch() bool {
    return self.Op.Is(FlagBranch | FlagGoto | FlagSwitch)
}

// Falls reports whether control may continue with the next instruction.
func (self *Instr) Falls() bool {
    return !self.Op.Is(FlagGoto | FlagReturn | FlagThrow)
}

// Ends reports whether the instruction terminates its basic block.
func (self *Instr) Ends() bool {
    return self.Op.Is(FlagBranch | FlagGoto | FlagSwitch | FlagReturn | FlagThrow)
}

// RangeEligible reports whether the instruction must be lowered into its
// "/range" encoding, which requires its operands to stay contiguous.
func (self *Instr) RangeEligible() bool {
    if !self.Op.Is(FlagRange) {
        return false
    }

    /* too many argument words for the short form */
    if self.Words() > 5 {
        return true
    }

    /* the short form encodes registers in 4 bits */
    for _, r := range self.Srcs {
        if r > 15 {
            return true
        }
    }

    /* fits into the short form */
    return false
}

// Targets returns the labels this instruction may branch to.
func (self *Instr) Targets() []*Instr {
    switch {
        case self.Op.Is(FlagSwitch) : return self.Sw
        case self.Br != nil         : return []*Instr{self.Br}
        default                     : return nil
    }
}

func (self *Instr) String() string {
    switch self.Info().Form {
        case F_label  : return ":" + self.Str
        case F_none   : return fmt.Sprintf("(%s)", self.Op)
        case F_d      : return fmt.Sprintf("(%s %s)", self.Op, self.Dest)
        case F_s      : return fmt.Sprintf("(%s %s)", self.Op, self.Srcs[0])
        case F_ds     : return fmt.Sprintf("(%s %s %s)", self.Op, self.Dest, self.Srcs[0])
        case F_dsl    : return fmt.Sprintf("(%s %s %s %d)", self.Op, self.Dest, self.Srcs[0], self.Lit)
        case F_dl     : return fmt.Sprintf("(%s %s %d)", self.Op, self.Dest, self.Lit)
        case F_dstr   : return fmt.Sprintf("(%s %s %s)", self.Op, self.Dest, strconv.Quote(self.Str))
        case F_dt     : return fmt.Sprintf("(%s %s %s)", self.Op, self.Dest, strconv.Quote(self.Str))
        case F_dst    : return fmt.Sprintf("(%s %s %s %s)", self.Op, self.Dest, self.Srcs[0], strconv.Quote(self.Str))
        case F_df     : return fmt.Sprintf("(%s %s %s)", self.Op, self.Dest, strconv.Quote(self.Field.String()))
        case F_sf     : return fmt.Sprintf("(%s %s %s)", self.Op, self.Srcs[0], strconv.Quote(self.Field.String()))
        case F_dsf    : return fmt.Sprintf("(%s %s %s %s)", self.Op, self.Dest, self.Srcs[0], strconv.Quote(self.Field.String()))
        case F_ssf    : return fmt.Sprintf("(%s %s %s %s)", self.Op, self.Srcs[0], self.Srcs[1], strconv.Quote(self.Field.String()))
        case F_sb     : return fmt.Sprintf("(%s %s :%s)", self.Op, self.Srcs[0], self.Br.Str)
        case F_ssb    : return fmt.Sprintf("(%s %s %s :%s)", self.Op, self.Srcs[0], self.Srcs[1], self.Br.Str)
        case F_b      : return fmt.Sprintf("(%s :%s)", self.Op, self.Br.Str)
        case F_sw     : return fmt.Sprintf("(%s %s (%s))", self.Op, self.Srcs[0], self.formatSwitch())
        case F_invoke : return fmt.Sprintf("(%s (%s) %s)", self.Op, self.formatRegs(), strconv.Quote(self.Method.String()))
        case F_fill   : return fmt.Sprintf("(%s (%s) %s)", self.Op, self.formatRegs(), strconv.Quote(self.Str))
        default       : return self.formatGeneric()
    }
}

func (self *Instr) formatRegs() string {
    ret := make([]string, len(self.Srcs))
    for i, r := range self.Srcs {
        ret[i] = r.String()
    }
    return strings.Join(ret, " ")
}

func (self *Instr) formatSwitch() string {
    ret := make([]string, len(self.Sw))
    for i, lb := range self.Sw {
        ret[i] = ":" + lb.Str
    }
    return strings.Join(ret, " ")
}

func (self *Instr) formatGeneric() string {
    if dk := self.DestKind(); dk == KindNone {
        return fmt.Sprintf("(%s %s)", self.Op, self.formatRegs())
    } else {
        return fmt.Sprintf("(%s %s %s)", self.Op, self.Dest, self.formatRegs())
    }
}
