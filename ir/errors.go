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
)

// InvariantError is the panic value raised when a pass finds its input in
// a state that a well-formed method body can never be in.
type InvariantError struct {
    Where  string
    Reason string
}

func (self InvariantError) Error() string {
    if self.Where == "" {
        return "invariant violation: " + self.Reason
    } else {
        return fmt.Sprintf("invariant violation in %s: %s", self.Where, self.Reason)
    }
}

// Invariant panics with an InvariantError.
func Invariant(where string, format string, args ...interface{}) {
    panic(InvariantError {
        Where  : where,
        Reason : fmt.Sprintf(format, args...),
    })
}
