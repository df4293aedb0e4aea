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
    `strconv`
    `strings`

    `github.com/cloudwego/dexopt/ir`
)

// Format prints a method body in the syntax accepted by Parse.
func Format(code *ir.Code) string {
    var sb strings.Builder
    formatCode(&sb, code, "")
    return sb.String()
}

// FormatScope prints a set of classes in the syntax accepted by ParseScope.
func FormatScope(scope ir.Scope) string {
    var sb strings.Builder
    for i, cls := range scope {
        if i != 0 {
            sb.WriteString("\n")
        }
        formatClass(&sb, cls)
    }
    return sb.String()
}

func formatCode(sb *strings.Builder, code *ir.Code, indent string) {
    sb.WriteString(indent + "(\n")
    for _, v := range code.Ins {
        sb.WriteString(indent + "  " + v.String() + "\n")
    }
    sb.WriteString(indent + ")")
}

func formatAccess(flags ir.AccessFlags) string {
    return "(access " + flags.String() + ")"
}

func formatClass(sb *strings.Builder, cls *ir.Class) {
    sb.WriteString("(class " + strconv.Quote(cls.Type))

    /* super class and access flags */
    if cls.Super != "" {
        sb.WriteString("\n  (super " + strconv.Quote(cls.Super) + ")")
    }
    if cls.Access != 0 {
        sb.WriteString("\n  " + formatAccess(cls.Access))
    }

    /* dump all the fields */
    for _, f := range cls.Fields {
        sb.WriteString("\n  (field " + strconv.Quote(f.Ref.String()))
        if f.Access != 0 {
            sb.WriteString(" " + formatAccess(f.Access))
        }
        if f.Value != nil {
            sb.WriteString(" (value " + f.Value.Literal() + ")")
        }
        sb.WriteString(")")
    }

    /* dump all the methods */
    for _, m := range cls.Methods {
        sb.WriteString("\n  (method " + strconv.Quote(m.Ref.String()))
        if m.Access != 0 {
            sb.WriteString(" " + formatAccess(m.Access))
        }
        if m.Code != nil {
            sb.WriteString("\n")
            formatCode(sb, m.Code, "    ")
        }
        sb.WriteString(")")
    }

    /* close the class */
    sb.WriteString(")\n")
}
