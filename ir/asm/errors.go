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
    `fmt`

    `github.com/alecthomas/participle/v2`
    `github.com/alecthomas/participle/v2/lexer`
)

// SyntaxError occures when failed to assemble the textual IR.
type SyntaxError struct {
    Pos    lexer.Position
    Reason string
}

func (self SyntaxError) Error() string {
    return fmt.Sprintf("Syntax error at %s: %s", self.Pos, self.Reason)
}

func errorf(pos lexer.Position, format string, args ...interface{}) error {
    return SyntaxError {
        Pos    : pos,
        Reason : fmt.Sprintf(format, args...),
    }
}

func convertError(err error) error {
    if pe, ok := err.(participle.Error); ok {
        return SyntaxError{Pos: pe.Position(), Reason: pe.Message()}
    } else {
        return err
    }
}
