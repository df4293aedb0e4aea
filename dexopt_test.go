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

package dexopt

import (
	"testing"

	"github.com/cloudwego/dexopt/debug"
	"github.com/cloudwego/dexopt/internal/opts"
	"github.com/cloudwego/dexopt/ir"
	"github.com/cloudwego/dexopt/ir/asm"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

const testScope = `
(class "Lcom/example/Parent;"
  (field "Lcom/example/Parent;.CONST:I" (access public static final) (value 12345))
  (method "Lcom/example/Parent;.<clinit>:()V" (access static constructor) ()))

(class "Lcom/example/Child;"
  (field "Lcom/example/Child;.CONST:I" (access public static final))
  (method "Lcom/example/Child;.<clinit>:()V" (access static constructor)
    (
      (sget v0 "Lcom/example/Parent;.CONST:I")
      (sput v0 "Lcom/example/Child;.CONST:I")
    ))
  (method "Lcom/example/Child;.twice:(I)I" (access public static)
    (
      (load-param v0)
      (move v1 v0)
      (move v2 v1)
      (add-int v3 v2 v1)
      (return v3)
    )))
`

func TestOptimize(t *testing.T) {
	before := debug.GetStats()
	scope := asm.MustParseScope(testScope)
	Optimize(scope, WithMaxWorkers(2))
	after := debug.GetStats()
	spew.Dump(after)

	/* the constant is propagated */
	child := scope[1]
	require.Equal(t, uint64(12345), child.Fields[0].Value.Bits)
	require.Zero(t, child.Clinit().Code.Count())
	require.Equal(t, 1, after.FinalInline.Fields-before.FinalInline.Fields)
	require.Equal(t, 2, after.FinalInline.Removed-before.FinalInline.Removed)

	/* every use goes through the representative */
	require.Equal(t, asm.Format(asm.MustParse(`(
		(load-param v0)
		(move v1 v0)
		(move v2 v0)
		(add-int v3 v0 v0)
		(return v3)
	)`)), asm.Format(child.Methods[1].Code))
	require.Equal(t, 3, after.CopyProp.Methods-before.CopyProp.Methods)
	require.Equal(t, 3, after.CopyProp.Rewrites-before.CopyProp.Rewrites)
}

func TestOptimize_AllTransitives(t *testing.T) {
	scope := asm.MustParseScope(testScope)
	Optimize(scope, WithAllTransitives(true), WithMaxWorkers(1))
	require.Equal(t, asm.Format(asm.MustParse(`(
		(load-param v0)
		(add-int v3 v0 v0)
		(return v3)
	)`)), asm.Format(scope[1].Methods[1].Code))
}

func TestOptimize_InvariantViolation(t *testing.T) {
	scope := asm.MustParseScope(testScope)
	scope[1].Methods[1].Code.Regs = 2
	require.Panics(t, func() { Optimize(scope) })
	defer func() {
		require.IsType(t, InvariantError{}, recover())
	}()
	Optimize(scope)
}

func TestPropagateCopies(t *testing.T) {
	code := asm.MustParse(`(
		(const v0 0)
		(move v1 v0)
		(move v1 v0)
		(move v2 v2)
		(return v1)
	)`)
	st := PropagateCopies(code, WithDeleteRedundant(true))
	require.Equal(t, CopyStats{Rewrites: 1, Deletes: 2}, st)
	require.Equal(t, 3, code.Count())
}

func TestPropagateConstants(t *testing.T) {
	scope := asm.MustParseScope(testScope)
	st := PropagateConstants(scope)
	require.Equal(t, ConstStats{Resolved: 1, Removed: 2}, st)
	require.Equal(t, "12345", scope[1].Fields[0].Value.Literal())
	require.Equal(t, 5, scope[1].Methods[1].Code.Count())
}

func TestOptions(t *testing.T) {
	o := makeOptions([]Option{WithAllTransitives(true), WithDeleteRedundant(true), WithMaxWorkers(7)})
	require.Equal(t, opts.Options{AllTransitives: true, DeleteRedundant: true, MaxWorkers: 7}, o)
	require.Panics(t, func() { WithMaxWorkers(0) })
	require.Panics(t, func() { SetMaxWorkers(-1) })

	/* change the defaults and restore them */
	old := SetAllTransitives(true)
	require.True(t, makeOptions(nil).AllTransitives)
	require.True(t, SetAllTransitives(old))
	old = SetDeleteRedundant(true)
	require.True(t, makeOptions(nil).DeleteRedundant)
	require.True(t, SetDeleteRedundant(old))
	n := SetMaxWorkers(5)
	require.Equal(t, 5, makeOptions(nil).MaxWorkers)
	require.Equal(t, 5, SetMaxWorkers(n))
}

func TestErrors(t *testing.T) {
	_, err := asm.ParseScope(`(class "LFoo;" (field 1))`)
	require.IsType(t, SyntaxError{}, err)
	require.Contains(t, err.Error(), "Syntax error at 1:")
	require.Equal(t, "invariant violation in cfg: bad", (ir.InvariantError{Where: "cfg", Reason: "bad"}).Error())
}
