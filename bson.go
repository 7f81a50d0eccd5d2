// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package fcjson

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// MarshalBSON encodes an Object value as a BSON document.  Integers become
// int32 when they fit and int64 otherwise; blobs become generic binary
// (subtype 0).  Non-object roots, unsigned values above MaxInt64 and keys
// containing NUL have no BSON form and return ErrUnsupported.
func (v *Value) MarshalBSON() ([]byte, error) {
	if v.typ != TypeObject {
		return nil, fmt.Errorf("%w: BSON document root must be an Object, not %s", ErrUnsupported, v.TypeName())
	}
	return appendBSONDocument(nil, v)
}

func appendBSONDocument(out []byte, v *Value) ([]byte, error) {
	idx, out := bsoncore.AppendDocumentStart(out)
	var err error
	for _, k := range v.Keys() {
		if strings.IndexByte(k, 0) >= 0 {
			return nil, fmt.Errorf("%w: BSON key %q contains NUL", ErrUnsupported, k)
		}
		if out, err = appendBSONElement(out, k, v.obj[k]); err != nil {
			return nil, err
		}
	}
	return bsoncore.AppendDocumentEnd(out, idx)
}

func appendBSONElement(out []byte, key string, v *Value) ([]byte, error) {
	switch v.typ {
	case TypeNull:
		return bsoncore.AppendNullElement(out, key), nil
	case TypeBool:
		return bsoncore.AppendBooleanElement(out, key, v.b), nil
	case TypeInt:
		return appendBSONInt(out, key, v.i), nil
	case TypeUint:
		// Uint only holds values above the int64 range
		return nil, fmt.Errorf("%w: %d overflows BSON int64", ErrUnsupported, v.u)
	case TypeFloat:
		return bsoncore.AppendDoubleElement(out, key, v.f), nil
	case TypeString:
		return bsoncore.AppendStringElement(out, key, v.s), nil
	case TypeBinary:
		return bsoncore.AppendBinaryElement(out, key, 0, v.bin), nil
	case TypeObject:
		out = append(out, byte(bsontype.EmbeddedDocument))
		out = bsoncore.AppendKey(out, key)
		return appendBSONDocument(out, v)
	case TypeArray:
		idx, out := bsoncore.AppendArrayElementStart(out, key)
		var err error
		for i, child := range v.arr {
			if out, err = appendBSONElement(out, strconv.Itoa(i), child); err != nil {
				return nil, err
			}
		}
		return bsoncore.AppendArrayEnd(out, idx)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, v.TypeName())
}

func appendBSONInt(out []byte, key string, n int64) []byte {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return bsoncore.AppendInt32Element(out, key, int32(n))
	}
	return bsoncore.AppendInt64Element(out, key, n)
}

// ParseBSON converts a BSON document to an Object value.
func ParseBSON(data []byte) (*Value, error) {
	doc := bson.Raw(data)
	if err := doc.Validate(); err != nil {
		return Null(), fmt.Errorf("invalid BSON document: %w", err)
	}
	v, err := convertBSONDocument(doc)
	if err != nil {
		return Null(), err
	}
	return v, nil
}

// UnmarshalBSON replaces v with the Object decoded from a BSON document.
// Doubles, strings, documents, arrays, generic binary, booleans, nulls and
// 32 and 64-bit integers map to their natural variants.  DateTime becomes
// milliseconds since the epoch, ObjectID its hex string and undefined Null.
// Other BSON types return ErrUnsupported.
func (v *Value) UnmarshalBSON(data []byte) error {
	nv, err := ParseBSON(data)
	if !v.detached {
		*v = *nv
	}
	return err
}

func convertBSONDocument(doc bson.Raw) (*Value, error) {
	elems, err := doc.Elements()
	if err != nil {
		return nil, err
	}
	obj := New(TypeObject)
	for _, elem := range elems {
		child, err := convertBSONValue(elem.Value())
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", elem.Key(), err)
		}
		obj.obj[elem.Key()] = child
	}
	return obj, nil
}

func convertBSONValue(rv bson.RawValue) (*Value, error) {
	switch rv.Type {
	case bsontype.Null, bsontype.Undefined:
		return Null(), nil
	case bsontype.Boolean:
		return Bool(rv.Boolean()), nil
	case bsontype.Int32:
		return Int(int64(rv.Int32())), nil
	case bsontype.Int64:
		return Int(rv.Int64()), nil
	case bsontype.DateTime:
		return Int(rv.DateTime()), nil
	case bsontype.Double:
		return Float(rv.Double()), nil
	case bsontype.String:
		return String(rv.StringValue()), nil
	case bsontype.ObjectID:
		return String(rv.ObjectID().Hex()), nil
	case bsontype.Binary:
		_, data := rv.Binary()
		return Binary(data), nil
	case bsontype.EmbeddedDocument:
		return convertBSONDocument(rv.Document())
	case bsontype.Array:
		values, err := rv.Array().Values()
		if err != nil {
			return nil, err
		}
		arr := New(TypeArray)
		for _, item := range values {
			child, err := convertBSONValue(item)
			if err != nil {
				return nil, err
			}
			arr.arr = append(arr.arr, child)
		}
		return arr, nil
	}
	return nil, fmt.Errorf("%w: BSON type %s", ErrUnsupported, rv.Type)
}
