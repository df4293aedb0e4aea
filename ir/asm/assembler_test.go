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
    `errors`
    `testing`

    `github.com/cloudwego/dexopt/ir`
    `github.com/davecgh/go-spew/spew`
    `github.com/stretchr/testify/require`
)

const _TestBody = `(
  (load-param v3)
  (load-param-wide v4)
  (const v0 0)
  :loop
  (if-ge v0 v3 :done)
  (add-int/lit8 v0 v0 1)
  (packed-switch v0 (:loop :done))
  (goto :loop)
  :done
  (invoke-static (v0 v4) "LFoo;.bar:(IJ)V")
  (sput-wide v4 "LFoo;.W:J")
  (const-string v1 "hello\n")
  (return-void)
)`

func TestAssembler_Parse(t *testing.T) {
    code, err := Parse(_TestBody)
    require.NoError(t, err)
    require.Equal(t, 6, code.Regs)
    require.Len(t, code.Ins, 13)
    require.Equal(t, 11, code.Count())
    require.Same(t, code.Ins[8], code.Ins[4].Br)
    require.Same(t, code.Ins[3], code.Ins[7].Br)
    require.Equal(t, []*ir.Instr{code.Ins[3], code.Ins[8]}, code.Ins[6].Sw)
    require.Equal(t, "hello\n", code.Ins[11].Str)
    require.Equal(t, int64(1), code.Ins[5].Lit)
    require.Equal(t, ir.FieldRef{Class: "LFoo;", Name: "W", Type: "J"}, *code.Ins[10].Field)
}

func TestAssembler_RoundTrip(t *testing.T) {
    code := MustParse(_TestBody)
    text := Format(code)
    spew.Dump(text)
    again, err := Parse(text)
    require.NoError(t, err)
    require.Equal(t, text, Format(again))
    require.Equal(t, code.Regs, again.Regs)
}

func TestAssembler_Errors(t *testing.T) {
    tests := []struct {
        name   string
        src    string
        line   int
        reason string
    } {
        { name: "unknown opcode"    , src: "(\n  (frobnicate v0))"                         , line: 2, reason: "unknown opcode: frobnicate" },
        { name: "operand count"     , src: "(\n  (move v0))"                               , line: 2, reason: "move expects 2 operands, got 1" },
        { name: "undefined label"   , src: "(\n  (goto :nowhere)\n  (return-void))"       , line: 2, reason: "undefined label :nowhere" },
        { name: "duplicated label"  , src: "(\n  :a\n  :a\n  (return-void))"              , line: 3, reason: "label :a has already been defined" },
        { name: "register expected" , src: "(\n  (move v0 5))"                             , line: 2, reason: "expected register, got number 5" },
        { name: "argument count"    , src: "(\n  (invoke-static (v0) \"LFoo;.f:(II)V\"))" , line: 2 },
        { name: "bad field"         , src: "(\n  (sget v0 \"LFoo;X:I\"))"                 , line: 2 },
        { name: "unbalanced"        , src: "(\n  (move v0 v1)"                             , line: 2 },
        { name: "invalid token"     , src: "(\n  (.label))"                                , line: 2 },
    }
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            _, err := Parse(tc.src)
            require.Error(t, err)
            var se SyntaxError
            require.True(t, errors.As(err, &se), "%T: %v", err, err)
            require.GreaterOrEqual(t, se.Pos.Line, tc.line)
            if tc.reason != "" {
                require.Equal(t, tc.reason, se.Reason)
                require.Equal(t, tc.line, se.Pos.Line)
            }
        })
    }
}

func TestAssembler_MustParsePanics(t *testing.T) {
    require.Panics(t, func() { MustParse("(move v0 v1)") })
    require.Panics(t, func() { MustParse("") })
}
