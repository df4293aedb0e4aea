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
    `strings`
)

// Reg is a virtual register within one method body. A wide value held in
// vN also occupies vN+1.
type Reg uint32

func (self Reg) String() string {
    return fmt.Sprintf("v%d", uint32(self))
}

// Kind is the operand category of a register access.
type Kind uint8

const (
    KindNone Kind = iota
    KindNarrow
    KindWide
    KindObject
)

func (self Kind) Width() int {
    switch self {
        case KindNone : return 0
        case KindWide : return 2
        default       : return 1
    }
}

func (self Kind) String() string {
    switch self {
        case KindNone   : return "none"
        case KindNarrow : return "narrow"
        case KindWide   : return "wide"
        case KindObject : return "object"
        default         : return fmt.Sprintf("Kind(%d)", self)
    }
}

// TypeKind maps a type descriptor to the register kind that holds it.
func TypeKind(desc string) Kind {
    switch {
        case desc == ""                                    : return KindNone
        case desc == "V"                                   : return KindNone
        case desc == "J" || desc == "D"                    : return KindWide
        case desc[0] == 'L' || desc[0] == '['              : return KindObject
        default                                            : return KindNarrow
    }
}

// FieldRef identifies a field by declaring class, name and type, written as
// "LFoo;.NAME:I".
type FieldRef struct {
    Class string
    Name  string
    Type  string
}

func ParseFieldRef(s string) (FieldRef, error) {
    cls, rest, ok := splitMember(s)
    if !ok {
        return FieldRef{}, fmt.Errorf("malformed field reference: %q", s)
    }

    /* split the name and the type */
    i := strings.IndexByte(rest, ':')
    if i <= 0 || i == len(rest) - 1 {
        return FieldRef{}, fmt.Errorf("malformed field reference: %q", s)
    }

    /* check the field type */
    ret := FieldRef{Class: cls, Name: rest[:i], Type: rest[i + 1:]}
    if _, err := parseTypeList(ret.Type); err != nil || TypeKind(ret.Type) == KindNone {
        return FieldRef{}, fmt.Errorf("malformed field type: %q", s)
    }
    return ret, nil
}

func (self FieldRef) String() string {
    return self.Class + "." + self.Name + ":" + self.Type
}

// MethodRef identifies a method by declaring class, name and prototype,
// written as "LFoo;.bar:(IJ)V".
type MethodRef struct {
    Class string
    Name  string
    Args  []string
    Ret   string
}

func ParseMethodRef(s string) (MethodRef, error) {
    cls, rest, ok := splitMember(s)
    if !ok {
        return MethodRef{}, fmt.Errorf("malformed method reference: %q", s)
    }

    /* find the prototype */
    i := strings.IndexByte(rest, ':')
    if i <= 0 || !strings.HasPrefix(rest[i + 1:], "(") {
        return MethodRef{}, fmt.Errorf("malformed method reference: %q", s)
    }

    /* split arguments from the return type */
    proto := rest[i + 2:]
    j := strings.IndexByte(proto, ')')
    if j < 0 || j == len(proto) - 1 {
        return MethodRef{}, fmt.Errorf("malformed method prototype: %q", s)
    }

    /* parse the argument types */
    args, err := parseTypeList(proto[:j])
    if err != nil {
        return MethodRef{}, fmt.Errorf("malformed method prototype: %q: %v", s, err)
    }

    /* the return type is exactly one type */
    ret := proto[j + 1:]
    if rt, err := parseTypeList(ret); err != nil || len(rt) != 1 {
        return MethodRef{}, fmt.Errorf("malformed return type: %q", s)
    }

    /* construct the reference */
    return MethodRef {
        Class : cls,
        Name  : rest[:i],
        Args  : args,
        Ret   : ret,
    }, nil
}

func (self MethodRef) String() string {
    return self.Class + "." + self.Name + ":(" + strings.Join(self.Args, "") + ")" + self.Ret
}

// ArgKinds returns the register kind of every argument register, including
// the implicit receiver of instance methods.
func (self MethodRef) ArgKinds(static bool) []Kind {
    ret := make([]Kind, 0, len(self.Args) + 1)

    /* instance methods take the receiver first */
    if !static {
        ret = append(ret, KindObject)
    }

    /* add every declared argument */
    for _, v := range self.Args {
        ret = append(ret, TypeKind(v))
    }
    return ret
}

func splitMember(s string) (string, string, bool) {
    if i := strings.Index(s, ";."); i <= 0 {
        return "", "", false
    } else if s[i + 2:] == "" {
        return "", "", false
    } else {
        return s[:i + 1], s[i + 2:], true
    }
}

func parseTypeList(s string) ([]string, error) {
    var i int
    var ret []string

    /* scan every type descriptor */
    for i < len(s) {
        p := i

        /* skip array dimensions */
        for i < len(s) && s[i] == '[' {
            i++
        }

        /* dangling array prefix */
        if i == len(s) {
            return nil, fmt.Errorf("unexpected end of type list %q", s)
        }

        /* parse the element type */
        switch s[i] {
            case 'Z', 'B', 'C', 'S', 'I', 'J', 'F', 'D', 'V': {
                i++
            }
            case 'L': {
                if j := strings.IndexByte(s[i:], ';'); j < 0 {
                    return nil, fmt.Errorf("unterminated class type in %q", s)
                } else {
                    i += j + 1
                }
            }
            default: {
                return nil, fmt.Errorf("invalid type character %q in %q", s[i], s)
            }
        }

        /* add to the result */
        ret = append(ret, s[p:i])
    }

    /* all done */
    return ret, nil
}
