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
    `math`
    `strconv`
)

type ValueKind uint8

const (
    V_null ValueKind = iota
    V_boolean
    V_byte
    V_short
    V_char
    V_int
    V_long
    V_float
    V_double
    V_string
)

var _ValueKindNames = map[ValueKind]string {
    V_null    : "null",
    V_boolean : "boolean",
    V_byte    : "byte",
    V_short   : "short",
    V_char    : "char",
    V_int     : "int",
    V_long    : "long",
    V_float   : "float",
    V_double  : "double",
    V_string  : "string",
}

func (self ValueKind) String() string {
    if v, ok := _ValueKindNames[self]; ok {
        return v
    } else {
        return fmt.Sprintf("ValueKind(%d)", self)
    }
}

// EncodedValue is the static initial value of a field. Primitive values are
// stored as raw bits, floating point values in their IEEE-754 encoding.
type EncodedValue struct {
    Kind ValueKind
    Bits uint64
    Str  string
}

// ZeroFor returns the default value for a field of the given type, or nil
// when the type has no encodable value.
func ZeroFor(desc string) *EncodedValue {
    switch desc {
        case "Z"                  : return &EncodedValue{Kind: V_boolean}
        case "B"                  : return &EncodedValue{Kind: V_byte}
        case "S"                  : return &EncodedValue{Kind: V_short}
        case "C"                  : return &EncodedValue{Kind: V_char}
        case "I"                  : return &EncodedValue{Kind: V_int}
        case "J"                  : return &EncodedValue{Kind: V_long}
        case "F"                  : return &EncodedValue{Kind: V_float}
        case "D"                  : return &EncodedValue{Kind: V_double}
    }
    if TypeKind(desc) == KindObject {
        return &EncodedValue{Kind: V_null}
    } else {
        return nil
    }
}

// Value returns the raw bits of the value.
func (self *EncodedValue) Value() uint64 {
    return self.Bits
}

func (self *EncodedValue) Clone() *EncodedValue {
    ret := *self
    return &ret
}

func (self *EncodedValue) Equal(other *EncodedValue) bool {
    if self == nil || other == nil {
        return self == other
    } else {
        return *self == *other
    }
}

// Literal renders the value the way the assembler reads it back.
func (self *EncodedValue) Literal() string {
    switch self.Kind {
        case V_null    : return "null"
        case V_boolean : return strconv.FormatBool(self.Bits != 0)
        case V_long    : return strconv.FormatInt(int64(self.Bits), 10)
        case V_float   : return strconv.FormatFloat(float64(math.Float32frombits(uint32(self.Bits))), 'g', -1, 32) + "f"
        case V_double  : return strconv.FormatFloat(math.Float64frombits(self.Bits), 'g', -1, 64) + "d"
        case V_string  : return strconv.Quote(self.Str)
        default        : return strconv.FormatInt(int64(int32(self.Bits)), 10)
    }
}

func (self *EncodedValue) String() string {
    return fmt.Sprintf("%s(%s)", self.Kind, self.Literal())
}
