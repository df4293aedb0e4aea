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

package debug

import (
	"sync/atomic"
	"testing"

	"github.com/cloudwego/dexopt/internal/opt"
	"github.com/cloudwego/dexopt/ir/asm"
	"github.com/stretchr/testify/require"
)

func TestGetStats(t *testing.T) {
	before := GetStats()
	opt.CopyProp{}.Apply(asm.MustParse(`(
		(const v0 1)
		(move v1 v0)
		(move v1 v1)
		(return v1)
	)`))
	atomic.AddUint64(&opt.FinalInlineFields, 2)
	after := GetStats()
	require.Equal(t, before.CopyProp.Methods+1, after.CopyProp.Methods)
	require.Equal(t, before.CopyProp.Rewrites+1, after.CopyProp.Rewrites)
	require.Equal(t, before.CopyProp.Deletes+1, after.CopyProp.Deletes)
	require.Equal(t, before.FinalInline.Fields+2, after.FinalInline.Fields)
	require.Equal(t, before.FinalInline.Removed, after.FinalInline.Removed)
}
