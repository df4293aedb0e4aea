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
    `github.com/alecthomas/participle/v2`
    `github.com/alecthomas/participle/v2/lexer`
)

var _Lexer = lexer.MustStateful(lexer.Rules {
    "Root": {
        { "Comment"    , `;[^\n]*`                                                              , nil },
        { "Whitespace" , `[ \t\r\n]+`                                                           , nil },
        { "String"     , `"(?:\\.|[^"\\])*"`                                                    , nil },
        { "Label"      , `:[A-Za-z0-9_$\-]+`                                                    , nil },
        { "Reg"        , `v[0-9]+\b`                                                            , nil },
        { "Number"     , `[-+]?(?:0[xX][0-9a-fA-F]+|[0-9]+(?:\.[0-9]+)?(?:[eE][-+]?[0-9]+)?)[fFdD]?` , nil },
        { "Symbol"     , `[A-Za-z_<][A-Za-z0-9_\-/<>$]*`                                       , nil },
        { "Punct"      , `[()]`                                                                 , nil },
    },
})

// _Node is one s-expression: either a parenthesized list or an atom.
type _Node struct {
    Pos    lexer.Position
    List   bool     `(  @"("`
    Items  []*_Node `   @@* ")"`
    Label  *string  `|  @Label`
    Reg    *string  `|  @Reg`
    Str    *string  `|  @String`
    Number *string  `|  @Number`
    Symbol *string  `|  @Symbol )`
}

type _Document struct {
    Items []*_Node `@@*`
}

var _Parser = participle.MustBuild[_Document](
    participle.Lexer(_Lexer),
    participle.Elide("Comment", "Whitespace"),
    participle.Unquote("String"),
)

func (self *_Node) isSymbol(name string) bool {
    return self.Symbol != nil && *self.Symbol == name
}

// head returns the leading symbol of a list node.
func (self *_Node) head() string {
    if !self.List || len(self.Items) == 0 || self.Items[0].Symbol == nil {
        return ""
    } else {
        return *self.Items[0].Symbol
    }
}

func (self *_Node) describe() string {
    switch {
        case self.List           : return "list"
        case self.Label != nil   : return "label " + *self.Label
        case self.Reg != nil     : return "register " + *self.Reg
        case self.Str != nil     : return "string"
        case self.Number != nil  : return "number " + *self.Number
        case self.Symbol != nil  : return "symbol " + *self.Symbol
        default                  : return "nothing"
    }
}
