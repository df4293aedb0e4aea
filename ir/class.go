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

type AccessFlags uint32

const (
    ACC_PUBLIC AccessFlags = 1 << iota
    ACC_PRIVATE
    ACC_PROTECTED
    ACC_STATIC
    ACC_FINAL
    ACC_SYNCHRONIZED
    ACC_VOLATILE
    ACC_TRANSIENT
    ACC_NATIVE
    ACC_INTERFACE
    ACC_ABSTRACT
    ACC_SYNTHETIC
    ACC_ENUM
    ACC_CONSTRUCTOR
)

var _AccessNames = [...]string {
    "public",
    "private",
    "protected",
    "static",
    "final",
    "synchronized",
    "volatile",
    "transient",
    "native",
    "interface",
    "abstract",
    "synthetic",
    "enum",
    "constructor",
}

// LookupAccess finds an access flag by its keyword.
func LookupAccess(name string) (AccessFlags, bool) {
    for i, v := range _AccessNames {
        if v == name {
            return 1 << i, true
        }
    }
    return 0, false
}

func (self AccessFlags) Is(mask AccessFlags) bool {
    return self & mask == mask
}

func (self AccessFlags) Names() []string {
    var ret []string
    for i, v := range _AccessNames {
        if self & (1 << i) != 0 {
            ret = append(ret, v)
        }
    }
    return ret
}

func (self AccessFlags) String() string {
    return strings.Join(self.Names(), " ")
}

type Field struct {
    Ref    FieldRef
    Access AccessFlags
    Value  *EncodedValue
}

func (self *Field) IsStaticFinal() bool {
    return self.Access.Is(ACC_STATIC | ACC_FINAL)
}

func (self *Field) String() string {
    return self.Ref.String()
}

type Method struct {
    Ref    MethodRef
    Access AccessFlags
    Code   *Code
}

func (self *Method) IsStatic() bool {
    return self.Access.Is(ACC_STATIC)
}

func (self *Method) String() string {
    return self.Ref.String()
}

type Class struct {
    Type    string
    Super   string
    Access  AccessFlags
    Fields  []*Field
    Methods []*Method
}

// Clinit returns the class initializer, or nil if the class has none.
func (self *Class) Clinit() *Method {
    for _, m := range self.Methods {
        if m.Ref.Name == "<clinit>" && m.IsStatic() {
            return m
        }
    }
    return nil
}

// Field finds a field declared by this class.
func (self *Class) Field(name string, desc string) *Field {
    for _, f := range self.Fields {
        if f.Ref.Name == name && f.Ref.Type == desc {
            return f
        }
    }
    return nil
}

func (self *Class) String() string {
    return self.Type
}

// Scope is the whole-program set of classes a pass works on.
type Scope []*Class

// Methods calls fn on every method that has a body.
func (self Scope) Methods(fn func(cls *Class, m *Method)) {
    for _, c := range self {
        for _, m := range c.Methods {
            if m.Code != nil {
                fn(c, m)
            }
        }
    }
}

// Resolver looks up symbols across a scope.
type Resolver struct {
    classes map[string]*Class
}

func NewResolver(scope Scope) *Resolver {
    ret := &Resolver{classes: make(map[string]*Class, len(scope))}
    for _, c := range scope {
        if _, ok := ret.classes[c.Type]; ok {
            panic(fmt.Sprintf("duplicated class definition: %s", c.Type))
        }
        ret.classes[c.Type] = c
    }
    return ret
}

func (self *Resolver) Class(desc string) *Class {
    return self.classes[desc]
}

// ResolveStaticField finds the static field a reference designates,
// searching the referenced class first and then its superclasses.
func (self *Resolver) ResolveStaticField(ref FieldRef) *Field {
    seen := make(map[string]bool)

    /* walk up the superclass chain */
    for t := ref.Class; t != "" && !seen[t]; {
        cls := self.classes[t]
        seen[t] = true

        /* class outside of the scope */
        if cls == nil {
            return nil
        }

        /* check for the field definition */
        if f := cls.Field(ref.Name, ref.Type); f != nil && f.Access.Is(ACC_STATIC) {
            return f
        }

        /* move to the super class */
        t = cls.Super
    }

    /* not found */
    return nil
}
