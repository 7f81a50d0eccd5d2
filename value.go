// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package fcjson

import (
	"bytes"
	"math"
	"sort"
)

// Type identifies the active variant of a Value.
type Type uint8

const (
	TypeNull Type = iota
	TypeBool
	TypeInt
	TypeUint
	TypeFloat
	TypeString
	TypeObject
	TypeArray
	TypeBinary
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "Null"
	case TypeBool:
		return "Bool"
	case TypeInt:
		return "Integer"
	case TypeUint:
		return "Unsigned Integer"
	case TypeFloat:
		return "Float"
	case TypeString:
		return "String"
	case TypeObject:
		return "Object"
	case TypeArray:
		return "Array"
	case TypeBinary:
		return "Binary"
	default:
		return "None"
	}
}

// Value is a JSON document node.  Exactly one variant is active at a time.
// The zero Value is Null and ready to use.
//
// String, Object, Array and Binary payloads are owned by the Value that holds
// them: Set and Clone copy them deeply and Take moves them out.  A Value must
// not be copied by assignment once it holds a composite payload; use Clone.
//
// Values are not safe for concurrent mutation.
type Value struct {
	typ Type

	b   bool
	i   int64
	u   uint64
	f   float64
	s   string
	obj map[string]*Value
	arr []*Value
	bin []byte

	// detached values are returned by Key and Index on the wrong variant.
	// They read as Null and ignore writes.
	detached bool
}

// Member is a key and value pair for building objects.
type Member struct {
	Key   string
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{}
}

// Bool creates a boolean value.
func Bool(b bool) *Value {
	return &Value{typ: TypeBool, b: b}
}

// Int creates a signed integer value.
func Int(i int64) *Value {
	return &Value{typ: TypeInt, i: i}
}

// Uint creates an unsigned integer value.  Values that fit int64 are stored as
// Int, the same way the parser reads them, so Uint(5) equals Int(5).
func Uint(u uint64) *Value {
	if u <= math.MaxInt64 {
		return &Value{typ: TypeInt, i: int64(u)}
	}
	return &Value{typ: TypeUint, u: u}
}

// Float creates a floating point value.
func Float(f float64) *Value {
	return &Value{typ: TypeFloat, f: f}
}

// String creates a string value.
func String(s string) *Value {
	return &Value{typ: TypeString, s: s}
}

// Binary creates a binary value holding a copy of b.
func Binary(b []byte) *Value {
	return &Value{typ: TypeBinary, bin: cloneBytes(b)}
}

// Array creates an array value.  The items become owned by the array; nil
// items are stored as Null.
func Array(items ...*Value) *Value {
	v := New(TypeArray)
	for _, item := range items {
		if item == nil {
			item = Null()
		}
		v.arr = append(v.arr, item)
	}
	return v
}

// Object creates an object value.  Later members replace earlier members with
// the same key.  Nil values are stored as Null.
func Object(members ...Member) *Value {
	v := New(TypeObject)
	for _, m := range members {
		if m.Value == nil {
			m.Value = Null()
		}
		v.obj[m.Key] = m.Value
	}
	return v
}

// New creates an empty value of type t: false, zero, "", {}, [] or an empty
// blob.
func New(t Type) *Value {
	v := &Value{}
	v.reset(t)
	return v
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ============================================================
// Assignment
// ============================================================

// reset drops the current payload and makes v an empty value of type t.
func (v *Value) reset(t Type) {
	*v = Value{typ: t}
	switch t {
	case TypeObject:
		v.obj = make(map[string]*Value)
	case TypeArray:
		v.arr = []*Value{}
	case TypeBinary:
		v.bin = []byte{}
	}
}

// Reset replaces the value with an empty value of type t.
func (v *Value) Reset(t Type) {
	if v.detached {
		return
	}
	v.reset(t)
}

// Clear releases the payload and makes the value Null.
func (v *Value) Clear() {
	v.Reset(TypeNull)
}

// SetNull makes the value Null.
func (v *Value) SetNull() { v.Clear() }

// SetBool replaces the value with a boolean.
func (v *Value) SetBool(b bool) {
	if v.detached {
		return
	}
	v.reset(TypeBool)
	v.b = b
}

// SetInt replaces the value with a signed integer.
func (v *Value) SetInt(i int64) {
	if v.detached {
		return
	}
	v.reset(TypeInt)
	v.i = i
}

// SetUint replaces the value with an unsigned integer, stored as Int when it
// fits int64.
func (v *Value) SetUint(u uint64) {
	if v.detached {
		return
	}
	if u <= math.MaxInt64 {
		v.reset(TypeInt)
		v.i = int64(u)
		return
	}
	v.reset(TypeUint)
	v.u = u
}

// SetFloat replaces the value with a float.
func (v *Value) SetFloat(f float64) {
	if v.detached {
		return
	}
	v.reset(TypeFloat)
	v.f = f
}

// SetString replaces the value with a string.
func (v *Value) SetString(s string) {
	if v.detached {
		return
	}
	v.reset(TypeString)
	v.s = s
}

// SetBinary replaces the value with a copy of b.
func (v *Value) SetBinary(b []byte) {
	if v.detached {
		return
	}
	v.reset(TypeBinary)
	v.bin = cloneBytes(b)
}

// Set replaces the value with a deep copy of o.  A nil or detached o sets
// Null.
func (v *Value) Set(o *Value) {
	if v.detached || v == o {
		return
	}
	if o == nil || o.detached {
		v.reset(TypeNull)
		return
	}
	*v = *o.Clone()
}

// Take moves the payload into a new Value and leaves v Null.  Taking from a
// detached value returns Null.
func (v *Value) Take() *Value {
	if v.detached {
		return Null()
	}
	out := &Value{}
	*out = *v
	*v = Value{}
	return out
}

// Clone returns a deep copy of v.  Cloning a detached value returns Null.
func (v *Value) Clone() *Value {
	if v == nil || v.detached {
		return Null()
	}
	out := &Value{typ: v.typ, b: v.b, i: v.i, u: v.u, f: v.f, s: v.s}
	switch v.typ {
	case TypeObject:
		out.obj = make(map[string]*Value, len(v.obj))
		for k, child := range v.obj {
			out.obj[k] = child.Clone()
		}
	case TypeArray:
		out.arr = make([]*Value, len(v.arr))
		for i, child := range v.arr {
			out.arr[i] = child.Clone()
		}
	case TypeBinary:
		out.bin = cloneBytes(v.bin)
	}
	return out
}

// ============================================================
// Type checks
// ============================================================

// Type returns the active variant.  Detached values report TypeNull.
func (v *Value) Type() Type { return v.typ }

// TypeName returns the variant name, or "None" for a detached value.
func (v *Value) TypeName() string {
	if v.detached {
		return "None"
	}
	return v.typ.String()
}

// IsDetached reports whether v was returned by indexing the wrong variant.
// Detached values are not part of any document and ignore writes.
func (v *Value) IsDetached() bool { return v.detached }

// IsNull reports whether the value is Null.  Detached values are Null too.
func (v *Value) IsNull() bool { return v.typ == TypeNull }

// IsBool reports whether the value is a boolean.
func (v *Value) IsBool() bool { return v.typ == TypeBool }

// IsUint reports whether the value is an unsigned integer above the int64
// range.
func (v *Value) IsUint() bool { return v.typ == TypeUint }

// IsFloat reports whether the value is a float.
func (v *Value) IsFloat() bool { return v.typ == TypeFloat }

// IsString reports whether the value is a string.
func (v *Value) IsString() bool { return v.typ == TypeString }

// IsObject reports whether the value is an object.
func (v *Value) IsObject() bool { return v.typ == TypeObject }

// IsArray reports whether the value is an array.
func (v *Value) IsArray() bool { return v.typ == TypeArray }

// IsBinary reports whether the value is a binary blob.
func (v *Value) IsBinary() bool { return v.typ == TypeBinary }

// IsInt reports whether the value is a signed or unsigned integer.
func (v *Value) IsInt() bool { return v.typ == TypeInt || v.typ == TypeUint }

// IsNumber reports whether the value is an integer or a float.
func (v *Value) IsNumber() bool { return v.IsInt() || v.typ == TypeFloat }

// ============================================================
// Accessors
// ============================================================

func (v *Value) mismatch(want Type) error {
	return &TypeError{Want: want, Got: v.typ}
}

// AsBool returns the boolean payload.
func (v *Value) AsBool() (bool, error) {
	if v.typ != TypeBool {
		return false, v.mismatch(TypeBool)
	}
	return v.b, nil
}

// AsInt returns the value as int64.  Unsigned values are accepted when they
// fit.
func (v *Value) AsInt() (int64, error) {
	switch v.typ {
	case TypeInt:
		return v.i, nil
	case TypeUint:
		if v.u > math.MaxInt64 {
			return 0, &TypeError{Want: TypeInt, Got: v.typ, note: "value out of range"}
		}
		return int64(v.u), nil
	}
	return 0, v.mismatch(TypeInt)
}

// AsUint returns the value as uint64.  Signed values are accepted when they
// are not negative.
func (v *Value) AsUint() (uint64, error) {
	switch v.typ {
	case TypeUint:
		return v.u, nil
	case TypeInt:
		if v.i < 0 {
			return 0, &TypeError{Want: TypeUint, Got: v.typ, note: "value out of range"}
		}
		return uint64(v.i), nil
	}
	return 0, v.mismatch(TypeUint)
}

// AsFloat returns the float payload.
func (v *Value) AsFloat() (float64, error) {
	if v.typ != TypeFloat {
		return 0, v.mismatch(TypeFloat)
	}
	return v.f, nil
}

// AsNumber converts any numeric variant to float64.  Large integers may lose
// precision.
func (v *Value) AsNumber() (float64, error) {
	switch v.typ {
	case TypeInt:
		return float64(v.i), nil
	case TypeUint:
		return float64(v.u), nil
	case TypeFloat:
		return v.f, nil
	}
	return 0, v.mismatch(TypeFloat)
}

// AsString returns the string payload.
func (v *Value) AsString() (string, error) {
	if v.typ != TypeString {
		return "", v.mismatch(TypeString)
	}
	return v.s, nil
}

// AsBinary returns the blob payload.  The slice is owned by the value.
func (v *Value) AsBinary() ([]byte, error) {
	if v.typ != TypeBinary {
		return nil, v.mismatch(TypeBinary)
	}
	return v.bin, nil
}

// AsArray returns the array elements.  The elements are owned by the value
// and may be mutated in place.
func (v *Value) AsArray() ([]*Value, error) {
	if v.typ != TypeArray {
		return nil, v.mismatch(TypeArray)
	}
	return v.arr, nil
}

// AsObject returns the object members.  The map is owned by the value and
// may be mutated in place; stored values must not be nil.
func (v *Value) AsObject() (map[string]*Value, error) {
	if v.typ != TypeObject {
		return nil, v.mismatch(TypeObject)
	}
	return v.obj, nil
}

// ============================================================
// Indexing
// ============================================================

func detachedValue() *Value {
	return &Value{detached: true}
}

// Key returns the member called name, inserting a Null member if it is
// absent.  A Null value first becomes an empty object.  On any other variant
// Key returns a detached value, so chained writes are silently dropped.
func (v *Value) Key(name string) *Value {
	if v.detached {
		return detachedValue()
	}
	if v.typ == TypeNull {
		v.reset(TypeObject)
	}
	if v.typ != TypeObject {
		return detachedValue()
	}
	if child, ok := v.obj[name]; ok {
		return child
	}
	child := Null()
	v.obj[name] = child
	return child
}

// Index returns element i, growing the array with Null elements if needed.
// A Null value first becomes an empty array.  On any other variant, or for a
// negative index, Index returns a detached value.
func (v *Value) Index(i int) *Value {
	if v.detached || i < 0 {
		return detachedValue()
	}
	if v.typ == TypeNull {
		v.reset(TypeArray)
	}
	if v.typ != TypeArray {
		return detachedValue()
	}
	for len(v.arr) <= i {
		v.arr = append(v.arr, Null())
	}
	return v.arr[i]
}

// Get looks up a member without inserting it.
func (v *Value) Get(name string) (*Value, bool) {
	if v.typ != TypeObject {
		return nil, false
	}
	child, ok := v.obj[name]
	return child, ok
}

// At looks up an element without growing the array.
func (v *Value) At(i int) (*Value, bool) {
	if v.typ != TypeArray || i < 0 || i >= len(v.arr) {
		return nil, false
	}
	return v.arr[i], true
}

// Has reports whether the value is an object with a member called name.
func (v *Value) Has(name string) bool {
	_, ok := v.Get(name)
	return ok
}

// Remove deletes the member called name and reports whether it existed.
func (v *Value) Remove(name string) bool {
	if v.typ != TypeObject {
		return false
	}
	if _, ok := v.obj[name]; !ok {
		return false
	}
	delete(v.obj, name)
	return true
}

// RemoveIndex deletes element i, shifting later elements down, and reports
// whether it existed.
func (v *Value) RemoveIndex(i int) bool {
	if v.typ != TypeArray || i < 0 || i >= len(v.arr) {
		return false
	}
	copy(v.arr[i:], v.arr[i+1:])
	v.arr[len(v.arr)-1] = nil
	v.arr = v.arr[:len(v.arr)-1]
	return true
}

// Count returns the number of members or elements of an object or array, 1
// for any other value including Null, and 0 for detached values.
func (v *Value) Count() int {
	switch {
	case v.detached:
		return 0
	case v.typ == TypeObject:
		return len(v.obj)
	case v.typ == TypeArray:
		return len(v.arr)
	default:
		return 1
	}
}

// CountKey returns Count of the member called name, or 0 if it is absent.
func (v *Value) CountKey(name string) int {
	child, ok := v.Get(name)
	if !ok {
		return 0
	}
	return child.Count()
}

// Keys returns the object member names in iteration order, which is
// byte-wise ascending.  It returns nil for other variants.
func (v *Value) Keys() []string {
	if v.typ != TypeObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Range calls fn for each object member in key order until fn returns false.
func (v *Value) Range(fn func(key string, child *Value) bool) {
	for _, k := range v.Keys() {
		if !fn(k, v.obj[k]) {
			return
		}
	}
}

// Equal reports whether v and o have the same variant and structurally equal
// payloads.  Int and Uint values never compare equal to each other.  Floats
// compare by value, so NaN is never equal.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case TypeNull:
		return true
	case TypeBool:
		return v.b == o.b
	case TypeInt:
		return v.i == o.i
	case TypeUint:
		return v.u == o.u
	case TypeFloat:
		return v.f == o.f
	case TypeString:
		return v.s == o.s
	case TypeBinary:
		return bytes.Equal(v.bin, o.bin)
	case TypeArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, child := range v.obj {
			other, ok := o.obj[k]
			if !ok || !child.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns the compact JSON text of the value.
func (v *Value) String() string {
	return v.Dump(0, false)
}
