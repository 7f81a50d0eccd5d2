// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package fcjson

import (
	"encoding/json"
	"fmt"
)

// FromInterface builds a Value from the generic Go types produced by
// encoding/json and similar decoders: nil, bool, the integer and float kinds,
// string, []byte (as Binary), json.Number, []interface{},
// map[string]interface{} and *Value (cloned).  Other types return
// ErrUnsupported.
func FromInterface(x interface{}) (*Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case *Value:
		return t.Clone(), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Uint(uint64(t)), nil
	case uint8:
		return Uint(uint64(t)), nil
	case uint16:
		return Uint(uint64(t)), nil
	case uint32:
		return Uint(uint64(t)), nil
	case uint64:
		return Uint(t), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	case []byte:
		return Binary(t), nil
	case json.Number:
		v, err := ParseString(string(t))
		if err != nil || !v.IsNumber() {
			return nil, fmt.Errorf("%w: invalid json.Number %q", ErrUnsupported, string(t))
		}
		return v, nil
	case []interface{}:
		arr := New(TypeArray)
		for i, item := range t {
			child, err := FromInterface(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr.arr = append(arr.arr, child)
		}
		return arr, nil
	case map[string]interface{}:
		obj := New(TypeObject)
		for k, item := range t {
			child, err := FromInterface(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			obj.obj[k] = child
		}
		return obj, nil
	}
	return nil, fmt.Errorf("%w: Go type %T", ErrUnsupported, x)
}

// Interface converts v to generic Go values: nil, bool, int64, uint64,
// float64, string, []byte, []interface{} or map[string]interface{}.
func (v *Value) Interface() interface{} {
	switch v.typ {
	case TypeBool:
		return v.b
	case TypeInt:
		return v.i
	case TypeUint:
		return v.u
	case TypeFloat:
		return v.f
	case TypeString:
		return v.s
	case TypeBinary:
		return cloneBytes(v.bin)
	case TypeArray:
		out := make([]interface{}, len(v.arr))
		for i, child := range v.arr {
			out[i] = child.Interface()
		}
		return out
	case TypeObject:
		out := make(map[string]interface{}, len(v.obj))
		for k, child := range v.obj {
			out[k] = child.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON returns the compact JSON text of v.
func (v *Value) MarshalJSON() ([]byte, error) {
	return v.AppendDump(nil, 0, false), nil
}

// UnmarshalJSON replaces v with the parsed document.
func (v *Value) UnmarshalJSON(data []byte) error {
	return v.Parse(data)
}
