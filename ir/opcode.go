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

type OpCode uint16

const (
    OP_nop OpCode = iota
    OP_label
    OP_load_param
    OP_load_param_wide
    OP_load_param_object
    OP_const
    OP_const_wide
    OP_const_string
    OP_const_class
    OP_move
    OP_move_wide
    OP_move_object
    OP_move_result
    OP_move_result_wide
    OP_move_result_object
    OP_move_exception
    OP_return_void
    OP_return
    OP_return_wide
    OP_return_object
    OP_monitor_enter
    OP_monitor_exit
    OP_check_cast
    OP_instance_of
    OP_throw
    OP_goto
    OP_packed_switch
    OP_if_eq
    OP_if_ne
    OP_if_lt
    OP_if_ge
    OP_if_gt
    OP_if_le
    OP_if_eqz
    OP_if_nez
    OP_if_ltz
    OP_if_gez
    OP_if_gtz
    OP_if_lez
    OP_new_instance
    OP_new_array
    OP_array_length
    OP_filled_new_array
    OP_aget
    OP_aget_wide
    OP_aget_object
    OP_aput
    OP_aput_wide
    OP_aput_object
    OP_iget
    OP_iget_wide
    OP_iget_object
    OP_iput
    OP_iput_wide
    OP_iput_object
    OP_sget
    OP_sget_wide
    OP_sget_object
    OP_sget_boolean
    OP_sget_byte
    OP_sget_char
    OP_sget_short
    OP_sput
    OP_sput_wide
    OP_sput_object
    OP_sput_boolean
    OP_sput_byte
    OP_sput_char
    OP_sput_short
    OP_invoke_virtual
    OP_invoke_super
    OP_invoke_direct
    OP_invoke_static
    OP_invoke_interface
    OP_neg_int
    OP_not_int
    OP_neg_long
    OP_int_to_long
    OP_int_to_float
    OP_int_to_double
    OP_long_to_int
    OP_float_to_int
    OP_double_to_int
    OP_int_to_byte
    OP_int_to_char
    OP_int_to_short
    OP_cmp_long
    OP_add_int
    OP_sub_int
    OP_mul_int
    OP_div_int
    OP_rem_int
    OP_and_int
    OP_or_int
    OP_xor_int
    OP_shl_int
    OP_shr_int
    OP_ushr_int
    OP_add_long
    OP_sub_long
    OP_mul_long
    OP_div_long
    OP_add_float
    OP_mul_float
    OP_add_double
    OP_mul_double
    OP_add_int_lit16
    OP_mul_int_lit16
    OP_add_int_lit8
    OP_mul_int_lit8
    OP_and_int_lit8
    OP_shl_int_lit8
    _OP_max
)

// Format describes the operand shape of an opcode in textual form.
type Format uint8

const (
    F_none   Format = iota // (op)
    F_d                    // (op vD)
    F_s                    // (op vS)
    F_ds                   // (op vD vS)
    F_dss                  // (op vD vS vT)
    F_dsl                  // (op vD vS lit)
    F_dl                   // (op vD lit)
    F_dstr                 // (op vD "string")
    F_dt                   // (op vD "Type")
    F_dst                  // (op vD vS "Type")
    F_df                   // (op vD "LCls;.name:T")
    F_sf                   // (op vS "LCls;.name:T")
    F_dsf                  // (op vD vS "LCls;.name:T")
    F_ssf                  // (op vS vT "LCls;.name:T")
    F_sb                   // (op vS :label)
    F_ssb                  // (op vS vT :label)
    F_b                    // (op :label)
    F_sw                   // (op vS (:l0 :l1 ...))
    F_invoke               // (op (vA ...) "LCls;.name:(Args)Ret")
    F_fill                 // (op (vA ...) "[Type")
    F_label                // :label
)

type Flags uint16

const (
    FlagBranch Flags = 1 << iota
    FlagGoto
    FlagSwitch
    FlagReturn
    FlagThrow
    FlagMove
    FlagMonitor
    FlagRange
    FlagInvoke
)

type OpInfo struct {
    Name  string
    Form  Format
    Dest  Kind
    Srcs  []Kind
    Flags Flags
}

const (
    _N = KindNarrow
    _W = KindWide
    _O = KindObject
)

var _OpTab = [_OP_max]OpInfo {
    OP_nop                 : { "nop"                , F_none   , KindNone, nil                 , 0 },
    OP_label               : { ".label"             , F_label  , KindNone, nil                 , 0 },
    OP_load_param          : { "load-param"         , F_d      , _N      , nil                 , 0 },
    OP_load_param_wide     : { "load-param-wide"    , F_d      , _W      , nil                 , 0 },
    OP_load_param_object   : { "load-param-object"  , F_d      , _O      , nil                 , 0 },
    OP_const               : { "const"              , F_dl     , _N      , nil                 , 0 },
    OP_const_wide          : { "const-wide"         , F_dl     , _W      , nil                 , 0 },
    OP_const_string        : { "const-string"       , F_dstr   , _O      , nil                 , 0 },
    OP_const_class         : { "const-class"        , F_dt     , _O      , nil                 , 0 },
    OP_move                : { "move"               , F_ds     , _N      , []Kind{_N}          , FlagMove },
    OP_move_wide           : { "move-wide"          , F_ds     , _W      , []Kind{_W}          , FlagMove },
    OP_move_object         : { "move-object"        , F_ds     , _O      , []Kind{_O}          , FlagMove },
    OP_move_result         : { "move-result"        , F_d      , _N      , nil                 , 0 },
    OP_move_result_wide    : { "move-result-wide"   , F_d      , _W      , nil                 , 0 },
    OP_move_result_object  : { "move-result-object" , F_d      , _O      , nil                 , 0 },
    OP_move_exception      : { "move-exception"     , F_d      , _O      , nil                 , 0 },
    OP_return_void         : { "return-void"        , F_none   , KindNone, nil                 , FlagReturn },
    OP_return              : { "return"             , F_s      , KindNone, []Kind{_N}          , FlagReturn },
    OP_return_wide         : { "return-wide"        , F_s      , KindNone, []Kind{_W}          , FlagReturn },
    OP_return_object       : { "return-object"      , F_s      , KindNone, []Kind{_O}          , FlagReturn },
    OP_monitor_enter       : { "monitor-enter"      , F_s      , KindNone, []Kind{_O}          , FlagMonitor },
    OP_monitor_exit        : { "monitor-exit"       , F_s      , KindNone, []Kind{_O}          , FlagMonitor },
    OP_check_cast          : { "check-cast"         , F_dst    , _O      , []Kind{_O}          , 0 },
    OP_instance_of         : { "instance-of"        , F_dst    , _N      , []Kind{_O}          , 0 },
    OP_throw               : { "throw"              , F_s      , KindNone, []Kind{_O}          , FlagThrow },
    OP_goto                : { "goto"               , F_b      , KindNone, nil                 , FlagGoto },
    OP_packed_switch       : { "packed-switch"      , F_sw     , KindNone, []Kind{_N}          , FlagSwitch },
    OP_if_eq               : { "if-eq"              , F_ssb    , KindNone, []Kind{_N, _N}      , FlagBranch },
    OP_if_ne               : { "if-ne"              , F_ssb    , KindNone, []Kind{_N, _N}      , FlagBranch },
    OP_if_lt               : { "if-lt"              , F_ssb    , KindNone, []Kind{_N, _N}      , FlagBranch },
    OP_if_ge               : { "if-ge"              , F_ssb    , KindNone, []Kind{_N, _N}      , FlagBranch },
    OP_if_gt               : { "if-gt"              , F_ssb    , KindNone, []Kind{_N, _N}      , FlagBranch },
    OP_if_le               : { "if-le"              , F_ssb    , KindNone, []Kind{_N, _N}      , FlagBranch },
    OP_if_eqz              : { "if-eqz"             , F_sb     , KindNone, []Kind{_N}          , FlagBranch },
    OP_if_nez              : { "if-nez"             , F_sb     , KindNone, []Kind{_N}          , FlagBranch },
    OP_if_ltz              : { "if-ltz"             , F_sb     , KindNone, []Kind{_N}          , FlagBranch },
    OP_if_gez              : { "if-gez"             , F_sb     , KindNone, []Kind{_N}          , FlagBranch },
    OP_if_gtz              : { "if-gtz"             , F_sb     , KindNone, []Kind{_N}          , FlagBranch },
    OP_if_lez              : { "if-lez"             , F_sb     , KindNone, []Kind{_N}          , FlagBranch },
    OP_new_instance        : { "new-instance"       , F_dt     , _O      , nil                 , 0 },
    OP_new_array           : { "new-array"          , F_dst    , _O      , []Kind{_N}          , 0 },
    OP_array_length        : { "array-length"       , F_ds     , _N      , []Kind{_O}          , 0 },
    OP_filled_new_array    : { "filled-new-array"   , F_fill   , KindNone, nil                 , FlagRange },
    OP_aget                : { "aget"               , F_dss    , _N      , []Kind{_O, _N}      , 0 },
    OP_aget_wide           : { "aget-wide"          , F_dss    , _W      , []Kind{_O, _N}      , 0 },
    OP_aget_object         : { "aget-object"        , F_dss    , _O      , []Kind{_O, _N}      , 0 },
    OP_aput                : { "aput"               , F_dss    , KindNone, []Kind{_N, _O, _N}  , 0 },
    OP_aput_wide           : { "aput-wide"          , F_dss    , KindNone, []Kind{_W, _O, _N}  , 0 },
    OP_aput_object         : { "aput-object"        , F_dss    , KindNone, []Kind{_O, _O, _N}  , 0 },
    OP_iget                : { "iget"               , F_dsf    , _N      , []Kind{_O}          , 0 },
    OP_iget_wide           : { "iget-wide"          , F_dsf    , _W      , []Kind{_O}          , 0 },
    OP_iget_object         : { "iget-object"        , F_dsf    , _O      , []Kind{_O}          , 0 },
    OP_iput                : { "iput"               , F_ssf    , KindNone, []Kind{_N, _O}      , 0 },
    OP_iput_wide           : { "iput-wide"          , F_ssf    , KindNone, []Kind{_W, _O}      , 0 },
    OP_iput_object         : { "iput-object"        , F_ssf    , KindNone, []Kind{_O, _O}      , 0 },
    OP_sget                : { "sget"               , F_df     , _N      , nil                 , 0 },
    OP_sget_wide           : { "sget-wide"          , F_df     , _W      , nil                 , 0 },
    OP_sget_object         : { "sget-object"        , F_df     , _O      , nil                 , 0 },
    OP_sget_boolean        : { "sget-boolean"       , F_df     , _N      , nil                 , 0 },
    OP_sget_byte           : { "sget-byte"          , F_df     , _N      , nil                 , 0 },
    OP_sget_char           : { "sget-char"          , F_df     , _N      , nil                 , 0 },
    OP_sget_short          : { "sget-short"         , F_df     , _N      , nil                 , 0 },
    OP_sput                : { "sput"               , F_sf     , KindNone, []Kind{_N}          , 0 },
    OP_sput_wide           : { "sput-wide"          , F_sf     , KindNone, []Kind{_W}          , 0 },
    OP_sput_object         : { "sput-object"        , F_sf     , KindNone, []Kind{_O}          , 0 },
    OP_sput_boolean        : { "sput-boolean"       , F_sf     , KindNone, []Kind{_N}          , 0 },
    OP_sput_byte           : { "sput-byte"          , F_sf     , KindNone, []Kind{_N}          , 0 },
    OP_sput_char           : { "sput-char"          , F_sf     , KindNone, []Kind{_N}          , 0 },
    OP_sput_short          : { "sput-short"         , F_sf     , KindNone, []Kind{_N}          , 0 },
    OP_invoke_virtual      : { "invoke-virtual"     , F_invoke , KindNone, nil                 , FlagRange | FlagInvoke },
    OP_invoke_super        : { "invoke-super"       , F_invoke , KindNone, nil                 , FlagRange | FlagInvoke },
    OP_invoke_direct       : { "invoke-direct"      , F_invoke , KindNone, nil                 , FlagRange | FlagInvoke },
    OP_invoke_static       : { "invoke-static"      , F_invoke , KindNone, nil                 , FlagRange | FlagInvoke },
    OP_invoke_interface    : { "invoke-interface"   , F_invoke , KindNone, nil                 , FlagRange | FlagInvoke },
    OP_neg_int             : { "neg-int"            , F_ds     , _N      , []Kind{_N}          , 0 },
    OP_not_int             : { "not-int"            , F_ds     , _N      , []Kind{_N}          , 0 },
    OP_neg_long            : { "neg-long"           , F_ds     , _W      , []Kind{_W}          , 0 },
    OP_int_to_long         : { "int-to-long"        , F_ds     , _W      , []Kind{_N}          , 0 },
    OP_int_to_float        : { "int-to-float"       , F_ds     , _N      , []Kind{_N}          , 0 },
    OP_int_to_double       : { "int-to-double"      , F_ds     , _W      , []Kind{_N}          , 0 },
    OP_long_to_int         : { "long-to-int"        , F_ds     , _N      , []Kind{_W}          , 0 },
    OP_float_to_int        : { "float-to-int"       , F_ds     , _N      , []Kind{_N}          , 0 },
    OP_double_to_int       : { "double-to-int"      , F_ds     , _N      , []Kind{_W}          , 0 },
    OP_int_to_byte         : { "int-to-byte"        , F_ds     , _N      , []Kind{_N}          , 0 },
    OP_int_to_char         : { "int-to-char"        , F_ds     , _N      , []Kind{_N}          , 0 },
    OP_int_to_short        : { "int-to-short"       , F_ds     , _N      , []Kind{_N}          , 0 },
    OP_cmp_long            : { "cmp-long"           , F_dss    , _N      , []Kind{_W, _W}      , 0 },
    OP_add_int             : { "add-int"            , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_sub_int             : { "sub-int"            , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_mul_int             : { "mul-int"            , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_div_int             : { "div-int"            , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_rem_int             : { "rem-int"            , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_and_int             : { "and-int"            , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_or_int              : { "or-int"             , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_xor_int             : { "xor-int"            , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_shl_int             : { "shl-int"            , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_shr_int             : { "shr-int"            , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_ushr_int            : { "ushr-int"           , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_add_long            : { "add-long"           , F_dss    , _W      , []Kind{_W, _W}      , 0 },
    OP_sub_long            : { "sub-long"           , F_dss    , _W      , []Kind{_W, _W}      , 0 },
    OP_mul_long            : { "mul-long"           , F_dss    , _W      , []Kind{_W, _W}      , 0 },
    OP_div_long            : { "div-long"           , F_dss    , _W      , []Kind{_W, _W}      , 0 },
    OP_add_float           : { "add-float"          , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_mul_float           : { "mul-float"          , F_dss    , _N      , []Kind{_N, _N}      , 0 },
    OP_add_double          : { "add-double"         , F_dss    , _W      , []Kind{_W, _W}      , 0 },
    OP_mul_double          : { "mul-double"         , F_dss    , _W      , []Kind{_W, _W}      , 0 },
    OP_add_int_lit16       : { "add-int/lit16"      , F_dsl    , _N      , []Kind{_N}          , 0 },
    OP_mul_int_lit16       : { "mul-int/lit16"      , F_dsl    , _N      , []Kind{_N}          , 0 },
    OP_add_int_lit8        : { "add-int/lit8"       , F_dsl    , _N      , []Kind{_N}          , 0 },
    OP_mul_int_lit8        : { "mul-int/lit8"       , F_dsl    , _N      , []Kind{_N}          , 0 },
    OP_and_int_lit8        : { "and-int/lit8"       , F_dsl    , _N      , []Kind{_N}          , 0 },
    OP_shl_int_lit8        : { "shl-int/lit8"       , F_dsl    , _N      , []Kind{_N}          , 0 },
}

var _OpNames = func() map[string]OpCode {
    ret := make(map[string]OpCode, _OP_max)
    for op := OP_nop; op < _OP_max; op++ {
        ret[_OpTab[op].Name] = op
    }
    return ret
}()

// LookupOpCode finds an opcode by its mnemonic.
func LookupOpCode(name string) (OpCode, bool) {
    op, ok := _OpNames[name]
    return op, ok && op != OP_label
}

func (self OpCode) Info() *OpInfo {
    if self >= _OP_max {
        panic(fmt.Sprintf("invalid opcode: %d", self))
    } else {
        return &_OpTab[self]
    }
}

func (self OpCode) String() string {
    if self >= _OP_max {
        return fmt.Sprintf("OpCode(%d)", self)
    } else {
        return _OpTab[self].Name
    }
}

func (self OpCode) Is(f Flags) bool {
    return self.Info().Flags & f != 0
}
