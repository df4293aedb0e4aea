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
    `testing`

    `github.com/stretchr/testify/require`
)

func regs(rs ...Reg) []Reg {
    return rs
}

func TestInstr_RangeEligible(t *testing.T) {
    five := &MethodRef{Class: "LFoo;", Name: "f", Args: []string{"I", "I", "I", "I", "I"}, Ret: "V"}
    wide := &MethodRef{Class: "LFoo;", Name: "g", Args: []string{"J", "J", "I"}, Ret: "V"}
    p := &Instr{Op: OP_invoke_static, Method: five, Srcs: regs(0, 1, 2, 3, 4)}
    require.Equal(t, 5, p.Words())
    require.False(t, p.RangeEligible())
    p.Srcs[4] = 16
    require.True(t, p.RangeEligible())
    p = &Instr{Op: OP_invoke_static, Method: wide, Srcs: regs(0, 2, 4)}
    require.Equal(t, 5, p.Words())
    require.Equal(t, KindWide, p.SrcKind(1))
    require.False(t, p.RangeEligible())
    p = &Instr{Op: OP_invoke_virtual, Method: wide, Srcs: regs(6, 0, 2, 4)}
    require.Equal(t, KindObject, p.SrcKind(0))
    require.Equal(t, 6, p.Words())
    require.True(t, p.RangeEligible())
    p = &Instr{Op: OP_add_int, Dest: 20, Srcs: regs(17, 18)}
    require.False(t, p.RangeEligible())
    p = &Instr{Op: OP_filled_new_array, Str: "[J", Srcs: regs(0, 2, 4)}
    require.Equal(t, KindWide, p.SrcKind(2))
    require.True(t, p.RangeEligible())
}

func TestInstr_ControlFlow(t *testing.T) {
    lb := NewLabel("L0")
    br := &Instr{Op: OP_if_eqz, Srcs: regs(0), Br: lb}
    jmp := &Instr{Op: OP_goto, Br: lb}
    ret := &Instr{Op: OP_return_void}
    sw := &Instr{Op: OP_packed_switch, Srcs: regs(0), Sw: []*Instr{lb, lb}}
    mov := &Instr{Op: OP_move_wide, Dest: 0, Srcs: regs(2)}
    require.True(t, br.IsBranch() && br.Falls() && br.Ends())
    require.True(t, jmp.IsBranch() && !jmp.Falls() && jmp.Ends())
    require.True(t, !ret.IsBranch() && !ret.Falls() && ret.Ends())
    require.Equal(t, []*Instr{lb, lb}, sw.Targets())
    require.Equal(t, []*Instr{lb}, br.Targets())
    require.Nil(t, ret.Targets())
    require.True(t, mov.IsCopy())
    require.Equal(t, KindWide, mov.DestKind())
    require.False(t, lb.HasDest())
}

func TestInstr_String(t *testing.T) {
    lb := NewLabel("exit")
    fr := &FieldRef{Class: "LFoo;", Name: "X", Type: "I"}
    require.Equal(t, ":exit", lb.String())
    require.Equal(t, "(move v1 v0)", (&Instr{Op: OP_move, Dest: 1, Srcs: regs(0)}).String())
    require.Equal(t, "(const v0 -5)", (&Instr{Op: OP_const, Dest: 0, Lit: -5}).String())
    require.Equal(t, "(if-ne v0 v1 :exit)", (&Instr{Op: OP_if_ne, Srcs: regs(0, 1), Br: lb}).String())
    require.Equal(t, `(sput v3 "LFoo;.X:I")`, (&Instr{Op: OP_sput, Srcs: regs(3), Field: fr}).String())
    require.Equal(t, `(const-string v0 "a\"b")`, (&Instr{Op: OP_const_string, Str: `a"b`}).String())
    require.Equal(t, "(return-void)", (&Instr{Op: OP_return_void}).String())
}

func TestCode_RemoveAndClone(t *testing.T) {
    lb := NewLabel("L")
    a := &Instr{Op: OP_const, Dest: 0, Lit: 1}
    b := &Instr{Op: OP_move, Dest: 1, Srcs: regs(0)}
    c := &Instr{Op: OP_goto, Br: lb}
    code := &Code{Regs: 2, Ins: []*Instr{lb, a, b, c}}
    dup := code.Clone()
    require.Equal(t, 3, code.Count())
    require.Equal(t, 1, code.Remove(map[*Instr]bool{b: true}))
    require.Equal(t, []*Instr{lb, a, c}, code.Ins)
    require.Equal(t, 0, code.Remove(nil))
    require.Len(t, dup.Ins, 4)
    require.Same(t, dup.Ins[0], dup.Ins[3].Br)
    require.NotSame(t, lb, dup.Ins[0])
    dup.Ins[2].Srcs[0] = 7
    require.Equal(t, Reg(0), b.Srcs[0])
}
