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
    `github.com/cloudwego/dexopt/ir`
    `github.com/cloudwego/dexopt/ir/asm`
)

// InvariantError is the panic value raised when the input IR is malformed,
// such as a branch to an undefined label or a use of a register outside of
// the register frame.
type InvariantError = ir.InvariantError

// SyntaxError occures when failed to parse the textual IR.
type SyntaxError = asm.SyntaxError
