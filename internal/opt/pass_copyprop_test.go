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
    `strings`
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/cloudwego/dexopt/ir`
    `github.com/cloudwego/dexopt/ir/asm`
    `github.com/davecgh/go-spew/spew`
    `github.com/stretchr/testify/require`
)

func propagate(t *testing.T, p CopyProp, src string, expected string) CopyPropStats {
    code := asm.MustParse(src)
    st := p.Run(code)
    require.Equal(t, asm.Format(asm.MustParse(expected)), asm.Format(code))
    return st
}

func TestCopyProp_Simple(t *testing.T) {
    st := propagate(t, CopyProp{}, `(
      (const v0 0)
      (move v1 v0)
      (move v2 v1)
      (return v2)
    )`, `(
      (const v0 0)
      (move v1 v0)
      (move v2 v0)
      (return v0)
    )`)
    require.Equal(t, CopyPropStats{Rewrites: 2}, st)
}

func TestCopyProp_DeleteRepeatedMove(t *testing.T) {
    src := `(
      (const v0 0)
      (move-object v1 v0)
      (move-object v1 v0)
      (monitor-enter v1)
      (monitor-exit v1)
      (return v1)
    )`
    propagate(t, CopyProp{}, src, `(
      (const v0 0)
      (move-object v1 v0)
      (move-object v1 v0)
      (monitor-enter v1)
      (monitor-exit v1)
      (return v0)
    )`)
    st := propagate(t, CopyProp{DeleteRedundant: true}, src, `(
      (const v0 0)
      (move-object v1 v0)
      (monitor-enter v1)
      (monitor-exit v1)
      (return v0)
    )`)
    require.Equal(t, CopyPropStats{Rewrites: 1, Deletes: 1}, st)
}

func TestCopyProp_Monitor(t *testing.T) {
    propagate(t, CopyProp{}, `(
      (new-instance v0 "Ljava/lang/Object;")
      (move-object v1 v0)
      (monitor-enter v1)
      (monitor-exit v1)
      (return-object v1)
    )`, `(
      (new-instance v0 "Ljava/lang/Object;")
      (move-object v1 v0)
      (monitor-enter v1)
      (monitor-exit v1)
      (return-object v0)
    )`)
}

func TestCopyProp_NoRemapRange(t *testing.T) {
    propagate(t, CopyProp{}, `(
      (const v0 0)
      (move-object v1 v0)
      (invoke-static (v1 v2 v3 v4 v5 v6) "LFoo;.bar:(IIIIII)V")
      (return v1)
    )`, `(
      (const v0 0)
      (move-object v1 v0)
      (invoke-static (v1 v2 v3 v4 v5 v6) "LFoo;.bar:(IIIIII)V")
      (return v0)
    )`)
}

func TestCopyProp_NoRemapIntoRange(t *testing.T) {
    propagate(t, CopyProp{}, `(
      (const v20 7)
      (move v1 v20)
      (invoke-static (v1) "LFoo;.f:(I)V")
      (add-int v2 v1 v1)
      (return v2)
    )`, `(
      (const v20 7)
      (move v1 v20)
      (invoke-static (v1) "LFoo;.f:(I)V")
      (add-int v2 v20 v20)
      (return v2)
    )`)
}

func TestCopyProp_DeleteSelfMove(t *testing.T) {
    st := propagate(t, CopyProp{}, `(
      (const v1 0)
      (move v0 v0)
    )`, `(
      (const v1 0)
    )`)
    require.Equal(t, CopyPropStats{Deletes: 1}, st)
}

func TestCopyProp_Representative(t *testing.T) {
    propagate(t, CopyProp{}, `(
      (const v0 0)
      (move v1 v0)
      (invoke-static (v0) "Lcls;.foo:(I)V")
      (invoke-static (v1) "Lcls;.bar:(I)V")
    )`, `(
      (const v0 0)
      (move v1 v0)
      (invoke-static (v0) "Lcls;.foo:(I)V")
      (invoke-static (v0) "Lcls;.bar:(I)V")
    )`)
}

func TestCopyProp_RedefinedRepresentative(t *testing.T) {
    propagate(t, CopyProp{}, `(
      (load-param v0)
      (move v1 v0)
      (move v2 v0)
      (const v0 5)
      (add-int v3 v2 v1)
      (return v3)
    )`, `(
      (load-param v0)
      (move v1 v0)
      (move v2 v0)
      (const v0 5)
      (add-int v3 v1 v1)
      (return v3)
    )`)
}

func TestCopyProp_VerifyEnabled(t *testing.T) {
    src := `(
      (const v0 0)
      (int-to-float v1 v0)
      (const v0 0)
      (float-to-int v1 v0)
    )`
    st := propagate(t, CopyProp{DeleteRedundant: true}, src, src)
    require.Zero(t, st)
}

func TestCopyProp_CliqueAliasing(t *testing.T) {
    src := `(
      (move v1 v2)
      (move v0 v1)
      (move v1 v3)
      (move v0 v2)
      (return v0)
    )`
    propagate(t, CopyProp{DeleteRedundant: true}, src, `(
      (move v1 v2)
      (move v0 v2)
      (move v1 v3)
      (return v2)
    )`)
    st := propagate(t, CopyProp{AllTransitives: true}, src, `(
      (return v2)
    )`)
    require.Equal(t, 4, st.Deletes)

    /* nothing reads any of the copies */
    st = propagate(t, CopyProp{AllTransitives: true}, `(
      (move v1 v2)
      (move v0 v1)
      (move v1 v3)
      (move v0 v2)
    )`, `()`)
    require.Equal(t, CopyPropStats{Rewrites: 1, Deletes: 4}, st)
}

func TestCopyProp_AllTransitivesRepeat(t *testing.T) {
    src := `(
      (load-param v0)
      (load-param v5)
      (move v1 v0)
      (move v0 v5)
      (return v1)
    )`
    st := propagate(t, CopyProp{AllTransitives: true}, src, `(
      (load-param v0)
      (load-param v5)
      (return v0)
    )`)
    require.Equal(t, CopyPropStats{Rewrites: 1, Deletes: 2}, st)

    /* a second run finds nothing left to do */
    code := asm.MustParse(src)
    CopyProp{AllTransitives: true}.Run(code)
    require.Zero(t, CopyProp{AllTransitives: true}.Run(code))
}

func TestCopyProp_LoopNoChange(t *testing.T) {
    src := `(
      (const v0 0)
      (const v1 10)
      :loop
      (if-eq v0 v1 :end)
      (add-int/lit8 v0 v0 1)
      (goto :loop)
      :end
      (return-void)
    )`
    propagate(t, CopyProp{}, src, src)
}

func TestCopyProp_LoopInvariantCopy(t *testing.T) {
    propagate(t, CopyProp{}, `(
      (load-param v0)
      (move v1 v0)
      :loop
      (if-eqz v1 :end)
      (add-int/lit8 v2 v1 -1)
      (goto :loop)
      :end
      (return v1)
    )`, `(
      (load-param v0)
      (move v1 v0)
      :loop
      (if-eqz v0 :end)
      (add-int/lit8 v2 v0 -1)
      (goto :loop)
      :end
      (return v0)
    )`)
}

func TestCopyProp_LoopKilledCopy(t *testing.T) {
    src := `(
      (load-param v0)
      (move v1 v0)
      :loop
      (if-eqz v1 :end)
      (add-int/lit8 v1 v1 -1)
      (goto :loop)
      :end
      (return v1)
    )`
    propagate(t, CopyProp{}, src, src)
}

func TestCopyProp_BranchNoChange(t *testing.T) {
    src := `(
      (if-eqz v0 :true)
      (move v1 v2)
      (goto :end)
      :true
      (move v3 v2)
      :end
      (move v1 v3)
      (return-void)
    )`
    propagate(t, CopyProp{DeleteRedundant: true}, src, src)
}

func TestCopyProp_Intersect(t *testing.T) {
    src := `(
      (if-eqz v0 :true)
      (move v1 v2)
      (goto :end)
      :true
      (move v1 v2)
      :end
      (move v1 v2)
      (return-void)
    )`
    propagate(t, CopyProp{}, src, src)
    propagate(t, CopyProp{DeleteRedundant: true}, src, `(
      (if-eqz v0 :true)
      (move v1 v2)
      (goto :end)
      :true
      (move v1 v2)
      :end
      (return-void)
    )`)
}

func TestCopyProp_Wide(t *testing.T) {
    propagate(t, CopyProp{}, `(
      (const-wide v0 1)
      (move-wide v2 v0)
      (return-wide v2)
    )`, `(
      (const-wide v0 1)
      (move-wide v2 v0)
      (return-wide v0)
    )`)
    clobbered := `(
      (const-wide v0 1)
      (move-wide v2 v0)
      (const v1 5)
      (return-wide v2)
    )`
    propagate(t, CopyProp{}, clobbered, clobbered)
    overlapped := `(
      (const-wide v0 1)
      (move-wide v1 v0)
      (return-wide v1)
    )`
    propagate(t, CopyProp{}, overlapped, overlapped)
}

func TestCopyProp_WideNarrowUse(t *testing.T) {
    src := `(
      (const-wide v0 1)
      (move-wide v2 v0)
      (long-to-int v4 v2)
      (move v5 v4)
      (add-int v4 v5 v5)
      (return v4)
    )`
    propagate(t, CopyProp{}, src, `(
      (const-wide v0 1)
      (move-wide v2 v0)
      (long-to-int v4 v0)
      (move v5 v4)
      (add-int v4 v4 v4)
      (return v4)
    )`)
}

func TestCopyProp_Empty(t *testing.T) {
    code := &ir.Code{}
    require.Zero(t, CopyProp{AllTransitives: true}.Run(code))
}

/** Randomized programs **/

const _RandomRegs = 6

func randomBody(f *gofakeit.Faker) string {
    var sb strings.Builder
    sb.WriteString("(\n")

    /* define every register first */
    for r := 0; r < _RandomRegs; r++ {
        fmt.Fprintf(&sb, "  (load-param v%d)\n", r)
    }

    /* forward branches only, so every program terminates */
    for seg := 0; seg <= 3; seg++ {
        if seg != 0 {
            fmt.Fprintf(&sb, "  :L%d\n", seg)
        }
        for i, n := 0, f.IntRange(2, 6); i < n; i++ {
            d := f.IntRange(0, _RandomRegs - 1)
            a := f.IntRange(0, _RandomRegs - 1)
            b := f.IntRange(0, _RandomRegs - 1)
            switch k := f.IntRange(0, 9); {
                case k < 5            : fmt.Fprintf(&sb, "  (move v%d v%d)\n", d, a)
                case k < 6            : fmt.Fprintf(&sb, "  (const v%d %d)\n", d, f.IntRange(-1, 1))
                case k < 8            : fmt.Fprintf(&sb, "  (add-int v%d v%d v%d)\n", d, a, b)
                case seg < 3 && k < 9 : fmt.Fprintf(&sb, "  (if-eqz v%d :L%d)\n", a, f.IntRange(seg + 1, 3))
                case seg < 3          : fmt.Fprintf(&sb, "  (goto :L%d)\n", f.IntRange(seg + 1, 3))
                default               : fmt.Fprintf(&sb, "  (move v%d v%d)\n", d, a)
            }
        }
    }

    /* return any of the registers */
    fmt.Fprintf(&sb, "  (return v%d)\n)", f.IntRange(0, _RandomRegs - 1))
    return sb.String()
}

func interpret(code *ir.Code, args []int32) int32 {
    np := 0
    pc := 0
    regs := make([]int32, code.Regs)
    index := make(map[*ir.Instr]int, len(code.Ins))

    /* locate all the labels */
    for i, p := range code.Ins {
        index[p] = i
    }

    /* execute until it returns */
    for {
        p := code.Ins[pc]
        pc++

        /* interpret the instruction */
        switch p.Op {
            case ir.OP_label      : break
            case ir.OP_load_param : regs[p.Dest] = args[np]; np++
            case ir.OP_const      : regs[p.Dest] = int32(p.Lit)
            case ir.OP_move       : regs[p.Dest] = regs[p.Srcs[0]]
            case ir.OP_add_int    : regs[p.Dest] = regs[p.Srcs[0]] + regs[p.Srcs[1]]
            case ir.OP_goto       : pc = index[p.Br]
            case ir.OP_return     : return regs[p.Srcs[0]]
            case ir.OP_if_eqz     : if regs[p.Srcs[0]] == 0 { pc = index[p.Br] }
            default               : panic("unexpected instruction: " + p.String())
        }
    }
}

func TestCopyProp_RandomPrograms(t *testing.T) {
    for i := 0; i < 500; i++ {
        f := gofakeit.New(int64(i))
        src := randomBody(f)
        pass := CopyProp{AllTransitives: f.Bool(), DeleteRedundant: f.Bool()}

        /* run the pass over a copy of the program */
        orig := asm.MustParse(src)
        code := orig.Clone()
        pass.Run(code)

        /* the optimized program computes the same results */
        for j := 0; j < 8; j++ {
            args := make([]int32, _RandomRegs)
            for r := range args {
                args[r] = int32(f.IntRange(-1, 1))
            }
            if want, got := interpret(orig, args), interpret(code, args); want != got {
                spew.Dump(pass, args)
                t.Fatalf("program %d:\n%s\noptimized into:\n%s\nreturns %d instead of %d", i, src, asm.Format(code), got, want)
            }
        }

        /* running it again changes nothing */
        text := asm.Format(code)
        require.Zero(t, pass.Run(code), "program %d:\n%s", i, src)
        require.Equal(t, text, asm.Format(code))
    }
}
