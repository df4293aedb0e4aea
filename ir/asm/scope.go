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
    `math`
    `strconv`
    `strings`

    `github.com/cloudwego/dexopt/ir`
)

// ParseScope assembles a set of class definitions.
func ParseScope(src string) (ir.Scope, error) {
    return ParseScopeFile("", src)
}

// ParseScopeFile is like ParseScope, positions in errors carry the file name.
func ParseScopeFile(filename string, src string) (ir.Scope, error) {
    doc, err := _Parser.ParseString(filename, src)
    if err != nil {
        return nil, convertError(err)
    }

    /* assemble every class */
    ret := make(ir.Scope, 0, len(doc.Items))
    for _, v := range doc.Items {
        if cls, err := assembleClass(v); err != nil {
            return nil, err
        } else {
            ret = append(ret, cls)
        }
    }

    /* all done */
    return ret, nil
}

// MustParseScope is like ParseScope but panics on errors.
func MustParseScope(src string) ir.Scope {
    if ret, err := ParseScope(src); err != nil {
        panic(err)
    } else {
        return ret
    }
}

func assembleClass(node *_Node) (*ir.Class, error) {
    if node.head() != "class" || len(node.Items) < 2 {
        return nil, errorf(node.Pos, "expected class definition, got %s", node.describe())
    }

    /* class type */
    desc, err := parseString(node.Items[1])
    if err != nil {
        return nil, err
    }

    /* check the class type */
    if ir.TypeKind(desc) != ir.KindObject || desc[0] != 'L' {
        return nil, errorf(node.Items[1].Pos, "invalid class type: %q", desc)
    }

    /* parse the class members */
    cls := &ir.Class{Type: desc}
    for _, v := range node.Items[2:] {
        switch v.head() {
            case "super": {
                if cls.Super, err = parseSingle(v); err != nil {
                    return nil, err
                }
            }
            case "access": {
                if cls.Access, err = parseAccess(v); err != nil {
                    return nil, err
                }
            }
            case "field": {
                if fv, err := assembleField(cls, v); err != nil {
                    return nil, err
                } else {
                    cls.Fields = append(cls.Fields, fv)
                }
            }
            case "method": {
                if mv, err := assembleMethod(cls, v); err != nil {
                    return nil, err
                } else {
                    cls.Methods = append(cls.Methods, mv)
                }
            }
            default: {
                return nil, errorf(v.Pos, "unexpected %s in class %s", v.describe(), desc)
            }
        }
    }

    /* all done */
    return cls, nil
}

func assembleField(cls *ir.Class, node *_Node) (*ir.Field, error) {
    if len(node.Items) < 2 {
        return nil, errorf(node.Pos, "missing field reference")
    }

    /* parse the field reference */
    s, err := parseString(node.Items[1])
    if err != nil {
        return nil, err
    }

    /* must be declared by this class */
    ref, err := ir.ParseFieldRef(s)
    if err != nil {
        return nil, errorf(node.Items[1].Pos, "%v", err)
    } else if ref.Class != cls.Type {
        return nil, errorf(node.Items[1].Pos, "field %s is not declared by %s", ref, cls.Type)
    } else if cls.Field(ref.Name, ref.Type) != nil {
        return nil, errorf(node.Items[1].Pos, "duplicated field %s", ref)
    }

    /* parse the attributes */
    ret := &ir.Field{Ref: ref}
    for _, v := range node.Items[2:] {
        switch v.head() {
            case "access": {
                if ret.Access, err = parseAccess(v); err != nil {
                    return nil, err
                }
            }
            case "value": {
                if len(v.Items) != 2 {
                    return nil, errorf(v.Pos, "value expects exactly one literal")
                } else if ret.Value, err = parseValue(ref.Type, v.Items[1]); err != nil {
                    return nil, err
                }
            }
            default: {
                return nil, errorf(v.Pos, "unexpected %s in field %s", v.describe(), ref)
            }
        }
    }

    /* all done */
    return ret, nil
}

func assembleMethod(cls *ir.Class, node *_Node) (*ir.Method, error) {
    if len(node.Items) < 2 {
        return nil, errorf(node.Pos, "missing method reference")
    }

    /* parse the method reference */
    s, err := parseString(node.Items[1])
    if err != nil {
        return nil, err
    }

    /* must be declared by this class */
    ref, err := ir.ParseMethodRef(s)
    if err != nil {
        return nil, errorf(node.Items[1].Pos, "%v", err)
    } else if ref.Class != cls.Type {
        return nil, errorf(node.Items[1].Pos, "method %s is not declared by %s", ref, cls.Type)
    }

    /* parse the attributes and the body */
    ret := &ir.Method{Ref: ref}
    for _, v := range node.Items[2:] {
        switch {
            case v.head() == "access": {
                if ret.Access, err = parseAccess(v); err != nil {
                    return nil, err
                }
            }
            case v.List && v.head() == "" && ret.Code == nil: {
                if ret.Code, err = assembleCode(v); err != nil {
                    return nil, err
                }
            }
            default: {
                return nil, errorf(v.Pos, "unexpected %s in method %s", v.describe(), ref)
            }
        }
    }

    /* all done */
    return ret, nil
}

func parseSingle(node *_Node) (string, error) {
    if len(node.Items) != 2 {
        return "", errorf(node.Pos, "%s expects exactly one argument", node.head())
    } else {
        return parseString(node.Items[1])
    }
}

func parseAccess(node *_Node) (ir.AccessFlags, error) {
    var ret ir.AccessFlags
    for _, v := range node.Items[1:] {
        if v.Symbol == nil {
            return 0, errorf(v.Pos, "expected access flag, got %s", v.describe())
        } else if fv, ok := ir.LookupAccess(*v.Symbol); !ok {
            return 0, errorf(v.Pos, "unknown access flag: %s", *v.Symbol)
        } else {
            ret |= fv
        }
    }
    return ret, nil
}

func parseValue(desc string, node *_Node) (*ir.EncodedValue, error) {
    ret := ir.ZeroFor(desc)
    if ret == nil {
        return nil, errorf(node.Pos, "type %s can not have a static value", desc)
    }

    /* boolean literals */
    if desc == "Z" && (node.isSymbol("true") || node.isSymbol("false")) {
        if node.isSymbol("true") {
            ret.Bits = 1
        }
        return ret, nil
    }

    /* reference types */
    if ret.Kind == ir.V_null {
        if node.isSymbol("null") {
            return ret, nil
        } else if desc != "Ljava/lang/String;" || node.Str == nil {
            return nil, errorf(node.Pos, "invalid value for %s: %s", desc, node.describe())
        } else {
            ret.Kind, ret.Str = ir.V_string, *node.Str
            return ret, nil
        }
    }

    /* primitive types are all numbers */
    if node.Number == nil {
        return nil, errorf(node.Pos, "invalid value for %s: %s", desc, node.describe())
    }

    /* floating point literals */
    lit := *node.Number
    switch ret.Kind {
        case ir.V_float: {
            if fv, err := strconv.ParseFloat(strings.TrimRight(lit, "fF"), 32); err != nil {
                return nil, errorf(node.Pos, "invalid float literal: %s", lit)
            } else {
                ret.Bits = uint64(math.Float32bits(float32(fv)))
                return ret, nil
            }
        }
        case ir.V_double: {
            if fv, err := strconv.ParseFloat(strings.TrimRight(lit, "dD"), 64); err != nil {
                return nil, errorf(node.Pos, "invalid double literal: %s", lit)
            } else {
                ret.Bits = math.Float64bits(fv)
                return ret, nil
            }
        }
    }

    /* integer literals */
    iv, err := parseInt(node)
    if err != nil {
        return nil, err
    }

    /* narrow values are stored sign-extended */
    if ret.Kind == ir.V_long {
        ret.Bits = uint64(iv)
    } else if iv < math.MinInt32 || iv > math.MaxUint32 {
        return nil, errorf(node.Pos, "value out of range for %s: %s", desc, lit)
    } else {
        ret.Bits = uint64(int64(int32(iv)))
    }

    /* all done */
    return ret, nil
}
