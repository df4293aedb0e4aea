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

package asm

import (
    `strconv`
    `strings`

    `github.com/alecthomas/participle/v2/lexer`
    `github.com/cloudwego/dexopt/ir`
)

var _Shapes = [...]string {
    ir.F_none   : "",
    ir.F_d      : "d",
    ir.F_s      : "s",
    ir.F_ds     : "ds",
    ir.F_dss    : "dss",
    ir.F_dsl    : "dsn",
    ir.F_dl     : "dn",
    ir.F_dstr   : "dq",
    ir.F_dt     : "dt",
    ir.F_dst    : "dst",
    ir.F_df     : "df",
    ir.F_sf     : "sf",
    ir.F_dsf    : "dsf",
    ir.F_ssf    : "ssf",
    ir.F_sb     : "sb",
    ir.F_ssb    : "ssb",
    ir.F_b      : "b",
    ir.F_sw     : "sB",
    ir.F_invoke : "Rm",
    ir.F_fill   : "Rt",
}

type _Pending struct {
    pos lexer.Position
    set func(lb *ir.Instr)
}

type _Assembler struct {
    regs  int
    refs  map[string]*ir.Instr
    names []string
    pends map[string][]_Pending
}

func newAssembler() *_Assembler {
    return &_Assembler {
        refs  : make(map[string]*ir.Instr),
        pends : make(map[string][]_Pending),
    }
}

// Parse assembles a method body written as a list of instructions.
func Parse(src string) (*ir.Code, error) {
    doc, err := _Parser.ParseString("", src)
    if err != nil {
        return nil, convertError(err)
    }

    /* the body is exactly one list */
    if len(doc.Items) != 1 || !doc.Items[0].List {
        return nil, errorf(lexer.Position{Line: 1, Column: 1}, "expected exactly one instruction list")
    }

    /* assemble the instructions */
    return assembleCode(doc.Items[0])
}

// MustParse is like Parse but panics on errors.
func MustParse(src string) *ir.Code {
    if ret, err := Parse(src); err != nil {
        panic(err)
    } else {
        return ret
    }
}

func assembleCode(node *_Node) (*ir.Code, error) {
    asm := newAssembler()
    ret := &ir.Code{Ins: make([]*ir.Instr, 0, len(node.Items))}

    /* assemble every instruction */
    for _, v := range node.Items {
        if p, err := asm.instr(v); err != nil {
            return nil, err
        } else {
            ret.Ins = append(ret.Ins, p)
        }
    }

    /* check for unresolved labels */
    if err := asm.finish(); err != nil {
        return nil, err
    }

    /* the frame covers every referenced register */
    ret.Regs = asm.regs
    return ret, nil
}

func (self *_Assembler) finish() error {
    for _, name := range self.names {
        if v := self.pends[name]; len(v) != 0 {
            return errorf(v[0].pos, "undefined label :%s", name)
        }
    }
    return nil
}

func (self *_Assembler) label(node *_Node) (*ir.Instr, error) {
    name := (*node.Label)[1:]

    /* check for duplications */
    if _, ok := self.refs[name]; ok {
        return nil, errorf(node.Pos, "label :%s has already been defined", name)
    }

    /* patch all the pending jumps */
    lb := ir.NewLabel(name)
    for _, v := range self.pends[name] {
        v.set(lb)
    }

    /* mark the label as resolved */
    self.refs[name] = lb
    delete(self.pends, name)
    return lb, nil
}

func (self *_Assembler) jump(node *_Node, set func(lb *ir.Instr)) error {
    if node.Label == nil {
        return errorf(node.Pos, "expected label, got %s", node.describe())
    }

    /* backward jumps are resolved immediately */
    name := (*node.Label)[1:]
    if lb, ok := self.refs[name]; ok {
        set(lb)
        return nil
    }

    /* forward jumps wait for the label */
    if _, ok := self.pends[name]; !ok {
        self.names = append(self.names, name)
    }

    /* add to pending list */
    self.pends[name] = append(self.pends[name], _Pending{pos: node.Pos, set: set})
    return nil
}

func (self *_Assembler) instr(node *_Node) (*ir.Instr, error) {
    if node.Label != nil {
        return self.label(node)
    }

    /* instructions are lists led by the opcode */
    name := node.head()
    if name == "" {
        return nil, errorf(node.Pos, "expected instruction, got %s", node.describe())
    }

    /* look up the opcode */
    op, ok := ir.LookupOpCode(name)
    if !ok {
        return nil, errorf(node.Pos, "unknown opcode: %s", name)
    }

    /* instructions without destination read every register operand */
    p := &ir.Instr{Op: op}
    shape := _Shapes[op.Info().Form]
    if op.Info().Dest == ir.KindNone {
        shape = strings.ReplaceAll(shape, "d", "s")
    }

    /* check operand count */
    args := node.Items[1:]
    if len(args) != len(shape) {
        return nil, errorf(node.Pos, "%s expects %d operands, got %d", name, len(shape), len(args))
    }

    /* parse every operand */
    for i, v := range args {
        if err := self.operand(p, shape[i], v); err != nil {
            return nil, err
        }
    }

    /* invocations must agree with the prototype */
    if p.Method != nil {
        if nb := len(p.Method.ArgKinds(op == ir.OP_invoke_static)); nb != len(p.Srcs) {
            return nil, errorf(node.Pos, "%s expects %d argument registers, got %d", p.Method, nb, len(p.Srcs))
        }
    }

    /* update the register frame size */
    self.frame(p)
    return p, nil
}

func (self *_Assembler) frame(p *ir.Instr) {
    if k := p.DestKind(); k != ir.KindNone {
        self.grow(int(p.Dest) + k.Width())
    }
    for i, r := range p.Srcs {
        self.grow(int(r) + p.SrcKind(i).Width())
    }
}

func (self *_Assembler) grow(n int) {
    if n > self.regs {
        self.regs = n
    }
}

func (self *_Assembler) operand(p *ir.Instr, kind byte, node *_Node) (err error) {
    var r ir.Reg
    var s string

    /* parse the operand by it's kind */
    switch kind {
        case 'd': {
            p.Dest, err = parseReg(node)
        }
        case 's': {
            if r, err = parseReg(node); err == nil {
                p.Srcs = append(p.Srcs, r)
            }
        }
        case 'R': {
            if !node.List {
                return errorf(node.Pos, "expected register list, got %s", node.describe())
            }
            p.Srcs = make([]ir.Reg, 0, len(node.Items))
            for _, v := range node.Items {
                if r, err = parseReg(v); err != nil {
                    return
                }
                p.Srcs = append(p.Srcs, r)
            }
        }
        case 'n': {
            p.Lit, err = parseInt(node)
        }
        case 'q', 't': {
            p.Str, err = parseString(node)
        }
        case 'f': {
            if s, err = parseString(node); err == nil {
                var ref ir.FieldRef
                if ref, err = ir.ParseFieldRef(s); err != nil {
                    return errorf(node.Pos, "%v", err)
                }
                p.Field = &ref
            }
        }
        case 'm': {
            if s, err = parseString(node); err == nil {
                var ref ir.MethodRef
                if ref, err = ir.ParseMethodRef(s); err != nil {
                    return errorf(node.Pos, "%v", err)
                }
                p.Method = &ref
            }
        }
        case 'b': {
            err = self.jump(node, func(lb *ir.Instr) { p.Br = lb })
        }
        case 'B': {
            if !node.List {
                return errorf(node.Pos, "expected label list, got %s", node.describe())
            }
            p.Sw = make([]*ir.Instr, len(node.Items))
            for i, v := range node.Items {
                i := i
                if err = self.jump(v, func(lb *ir.Instr) { p.Sw[i] = lb }); err != nil {
                    return
                }
            }
        }
        default: {
            panic("invalid operand kind: " + string(kind))
        }
    }

    /* all done */
    return
}

func parseReg(node *_Node) (ir.Reg, error) {
    if node.Reg == nil {
        return 0, errorf(node.Pos, "expected register, got %s", node.describe())
    } else if v, err := strconv.ParseUint((*node.Reg)[1:], 10, 32); err != nil {
        return 0, errorf(node.Pos, "invalid register %s", *node.Reg)
    } else {
        return ir.Reg(v), nil
    }
}

func parseInt(node *_Node) (int64, error) {
    if node.Number == nil {
        return 0, errorf(node.Pos, "expected integer, got %s", node.describe())
    } else if v, err := strconv.ParseInt(*node.Number, 0, 64); err == nil {
        return v, nil
    } else if u, err := strconv.ParseUint(*node.Number, 0, 64); err == nil {
        return int64(u), nil
    } else {
        return 0, errorf(node.Pos, "invalid integer %s", *node.Number)
    }
}

func parseString(node *_Node) (string, error) {
    if node.Str == nil {
        return "", errorf(node.Pos, "expected string, got %s", node.describe())
    } else {
        return *node.Str, nil
    }
}
