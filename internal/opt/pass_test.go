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
    `sync/atomic`
    `testing`

    `github.com/cloudwego/dexopt/internal/opts`
    `github.com/cloudwego/dexopt/ir`
    `github.com/cloudwego/dexopt/ir/asm`
    `github.com/stretchr/testify/require`
)

func chainScope(nb int) ir.Scope {
    var sb strings.Builder
    for i := 0; i < nb; i++ {
        fmt.Fprintf(&sb, `(class "LC%d;"
          (method "LC%d;.f:(I)I" (access public static)
            (
              (load-param v0)
              (move v1 v0)
              (move v2 v1)
              (move v2 v2)
              (return v2)
            )))
        `, i, i)
    }
    return asm.MustParseScope(sb.String())
}

func TestPass_Optimize(t *testing.T) {
    scope := chainScope(64)
    methods := atomic.LoadUint64(&CopyPropMethods)
    rewrites := atomic.LoadUint64(&CopyPropRewrites)
    deletes := atomic.LoadUint64(&CopyPropDeletes)
    Optimize(scope, opts.Options{MaxWorkers: 4})
    for _, cls := range scope {
        require.Equal(t, asm.Format(asm.MustParse(`(
          (load-param v0)
          (move v1 v0)
          (move v2 v0)
          (return v0)
        )`)), asm.Format(cls.Methods[0].Code))
    }
    require.Equal(t, uint64(64), atomic.LoadUint64(&CopyPropMethods) - methods)
    require.Equal(t, uint64(2 * 64), atomic.LoadUint64(&CopyPropRewrites) - rewrites)
    require.Equal(t, uint64(64), atomic.LoadUint64(&CopyPropDeletes) - deletes)
}

func TestPass_OptimizeAllTransitives(t *testing.T) {
    scope := chainScope(8)
    Optimize(scope, opts.Options{AllTransitives: true, MaxWorkers: 2})
    for _, cls := range scope {
        require.Equal(t, 2, cls.Methods[0].Code.Count())
    }
}

func TestPass_PanicPropagation(t *testing.T) {
    scope := chainScope(16)
    lb := ir.NewLabel("nowhere")
    bad := scope[7].Methods[0].Code
    bad.Ins = append([]*ir.Instr{{Op: ir.OP_goto, Br: lb}}, bad.Ins...)
    defer func() {
        v := recover()
        require.IsType(t, ir.InvariantError{}, v)
        require.Contains(t, v.(ir.InvariantError).Error(), ":nowhere")
    }()
    RunMethodPasses(scope, MethodPasses(opts.Options{}), 4)
    t.Fatal("the invariant violation should have been raised again")
}

func TestPass_Descriptors(t *testing.T) {
    o := opts.Options{AllTransitives: true, DeleteRedundant: true}
    mp := MethodPasses(o)
    require.Len(t, mp, 1)
    require.Equal(t, CopyProp{AllTransitives: true, DeleteRedundant: true}, mp[0].Pass)
    sp := ScopePasses(o)
    require.Len(t, sp, 1)
    require.IsType(t, new(FinalInline), sp[0].Pass)
}
