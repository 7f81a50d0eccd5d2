// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package fcjson

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Binary format tags.  Every encoded value starts with one tag byte.  Integer
// and length fields are little-endian and use the smallest width that holds
// the value.
const (
	tagNull  byte = 0x10
	tagFalse byte = 0x20
	tagTrue  byte = 0x30

	tagInt8  byte = 0x40
	tagInt16 byte = 0x41
	tagInt32 byte = 0x42
	tagInt64 byte = 0x43

	tagUint8  byte = 0x50
	tagUint16 byte = 0x51
	tagUint32 byte = 0x52
	tagUint64 byte = 0x53

	tagFloat byte = 0x60

	tagStringEmpty byte = 0xA0
	tagString8     byte = 0xA1
	tagString16    byte = 0xA2
	tagString32    byte = 0xA3

	tagObjectEmpty byte = 0xB0
	tagObjectBegin byte = 0xB1
	tagObjectEnd   byte = 0xBF

	tagArrayEmpty byte = 0xC0
	tagArrayBegin byte = 0xC1
	tagArrayEnd   byte = 0xCF

	tagBinaryEmpty byte = 0xE0
	tagBinary8     byte = 0xE1
	tagBinary16    byte = 0xE2
	tagBinary32    byte = 0xE3
)

// MarshalBinary encodes v in the tagged binary format.
func (v *Value) MarshalBinary() ([]byte, error) {
	return v.AppendBinary(nil)
}

// AppendBinary appends the binary encoding of v to dst.  It fails only for
// strings or blobs longer than 4 GiB.
func (v *Value) AppendBinary(dst []byte) ([]byte, error) {
	return appendBinaryValue(dst, v)
}

func appendBinaryValue(out []byte, v *Value) ([]byte, error) {
	var err error
	switch v.typ {
	case TypeBool:
		if v.b {
			return append(out, tagTrue), nil
		}
		return append(out, tagFalse), nil
	case TypeInt:
		return appendInt(out, v.i), nil
	case TypeUint:
		return appendUint(out, v.u), nil
	case TypeFloat:
		out = append(out, tagFloat)
		return binary.LittleEndian.AppendUint64(out, math.Float64bits(v.f)), nil
	case TypeString:
		return appendSized(out, tagStringEmpty, []byte(v.s))
	case TypeBinary:
		return appendSized(out, tagBinaryEmpty, v.bin)
	case TypeObject:
		if len(v.obj) == 0 {
			return append(out, tagObjectEmpty), nil
		}
		out = append(out, tagObjectBegin)
		for _, k := range v.Keys() {
			if out, err = appendSized(out, tagStringEmpty, []byte(k)); err != nil {
				return nil, err
			}
			if out, err = appendBinaryValue(out, v.obj[k]); err != nil {
				return nil, err
			}
		}
		return append(out, tagObjectEnd), nil
	case TypeArray:
		if len(v.arr) == 0 {
			return append(out, tagArrayEmpty), nil
		}
		out = append(out, tagArrayBegin)
		for _, child := range v.arr {
			if out, err = appendBinaryValue(out, child); err != nil {
				return nil, err
			}
		}
		return append(out, tagArrayEnd), nil
	default:
		return append(out, tagNull), nil
	}
}

func appendInt(out []byte, n int64) []byte {
	switch {
	case n >= math.MinInt8 && n <= math.MaxInt8:
		return append(out, tagInt8, byte(n))
	case n >= math.MinInt16 && n <= math.MaxInt16:
		return binary.LittleEndian.AppendUint16(append(out, tagInt16), uint16(n))
	case n >= math.MinInt32 && n <= math.MaxInt32:
		return binary.LittleEndian.AppendUint32(append(out, tagInt32), uint32(n))
	default:
		return binary.LittleEndian.AppendUint64(append(out, tagInt64), uint64(n))
	}
}

func appendUint(out []byte, n uint64) []byte {
	switch {
	case n <= math.MaxUint8:
		return append(out, tagUint8, byte(n))
	case n <= math.MaxUint16:
		return binary.LittleEndian.AppendUint16(append(out, tagUint16), uint16(n))
	case n <= math.MaxUint32:
		return binary.LittleEndian.AppendUint32(append(out, tagUint32), uint32(n))
	default:
		return binary.LittleEndian.AppendUint64(append(out, tagUint64), n)
	}
}

// appendSized writes a string or blob.  base is the empty tag; base+1 to
// base+3 select an 8, 16 or 32-bit length field.
func appendSized(out []byte, base byte, b []byte) ([]byte, error) {
	n := uint64(len(b))
	switch {
	case n == 0:
		return append(out, base), nil
	case n <= math.MaxUint8:
		out = append(out, base+1, byte(n))
	case n <= math.MaxUint16:
		out = binary.LittleEndian.AppendUint16(append(out, base+2), uint16(n))
	case n <= math.MaxUint32:
		out = binary.LittleEndian.AppendUint32(append(out, base+3), uint32(n))
	default:
		return nil, fmt.Errorf("%w: %d byte payload exceeds the 32-bit length field", ErrUnsupported, n)
	}
	return append(out, b...), nil
}

// BinaryDecoder decodes one value from the tagged binary format.
type BinaryDecoder struct {
	data     []byte
	pos      int
	curDepth int
	maxDepth int
}

// NewBinaryDecoder returns a decoder for data.
func NewBinaryDecoder(data []byte) *BinaryDecoder {
	return &BinaryDecoder{
		data:     data,
		maxDepth: DefaultMaxDepth,
	}
}

// MaxDepth sets the maximum allowed nesting of objects and arrays.  The
// default is 200.
func (d *BinaryDecoder) MaxDepth(n int) *BinaryDecoder {
	d.maxDepth = n
	return d
}

// Decode decodes the whole input as one value.  Unknown tags, truncated
// fields, stray end tags and trailing bytes are errors.  On error the
// returned value is Null and the error is a *ParseError.
func (d *BinaryDecoder) Decode() (*Value, error) {
	d.pos = 0
	d.curDepth = 0
	v, err := d.decodeValue()
	if err != nil {
		return Null(), err
	}
	if d.pos != len(d.data) {
		return Null(), d.decodeError("unexpected data after top-level value")
	}
	return v, nil
}

// ParseBinary decodes binary data with the default settings.
func ParseBinary(data []byte) (*Value, error) {
	return NewBinaryDecoder(data).Decode()
}

// UnmarshalBinary replaces v with the value decoded from data.  On failure v
// is left Null.
func (v *Value) UnmarshalBinary(data []byte) error {
	nv, err := ParseBinary(data)
	if !v.detached {
		*v = *nv
	}
	return err
}

func (d *BinaryDecoder) readTag() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, d.decodeError("unexpected end of input")
	}
	tag := d.data[d.pos]
	d.pos++
	return tag, nil
}

func (d *BinaryDecoder) next(n uint64) ([]byte, error) {
	if n > uint64(len(d.data)-d.pos) {
		return nil, d.decodeError("truncated field")
	}
	b := d.data[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return b, nil
}

func (d *BinaryDecoder) decodeValue() (*Value, error) {
	tag, err := d.readTag()
	if err != nil {
		return nil, err
	}
	return d.decodeTagged(tag)
}

func (d *BinaryDecoder) decodeTagged(tag byte) (*Value, error) {
	switch tag {
	case tagNull:
		return Null(), nil
	case tagFalse:
		return Bool(false), nil
	case tagTrue:
		return Bool(true), nil
	case tagInt8, tagInt16, tagInt32, tagInt64:
		b, err := d.next(1 << (tag - tagInt8))
		if err != nil {
			return nil, err
		}
		return Int(signExtend(b)), nil
	case tagUint8, tagUint16, tagUint32, tagUint64:
		b, err := d.next(1 << (tag - tagUint8))
		if err != nil {
			return nil, err
		}
		return Uint(readUint(b)), nil
	case tagFloat:
		b, err := d.next(8)
		if err != nil {
			return nil, err
		}
		return Float(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil
	case tagStringEmpty, tagString8, tagString16, tagString32:
		start := d.pos
		b, err := d.decodeSized(tag, tagStringEmpty)
		if err != nil {
			return nil, err
		}
		if !ValidUTF8(b) {
			return nil, newParseError(start, "invalid UTF-8 in string")
		}
		return String(string(b)), nil
	case tagBinaryEmpty, tagBinary8, tagBinary16, tagBinary32:
		b, err := d.decodeSized(tag, tagBinaryEmpty)
		if err != nil {
			return nil, err
		}
		return Binary(b), nil
	case tagObjectEmpty:
		return New(TypeObject), nil
	case tagObjectBegin:
		return d.decodeObject()
	case tagArrayEmpty:
		return New(TypeArray), nil
	case tagArrayBegin:
		return d.decodeArray()
	case tagObjectEnd, tagArrayEnd:
		return nil, newParseError(d.pos-1, "unexpected end tag")
	default:
		return nil, newParseError(d.pos-1, fmt.Sprintf("unknown tag 0x%02X", tag))
	}
}

// decodeSized reads the length field selected by tag and returns the
// payload.  The slice aliases the input.
func (d *BinaryDecoder) decodeSized(tag, base byte) ([]byte, error) {
	if tag == base {
		return []byte{}, nil
	}
	lb, err := d.next(1 << (tag - base - 1))
	if err != nil {
		return nil, err
	}
	return d.next(readUint(lb))
}

func (d *BinaryDecoder) enter() error {
	d.curDepth++
	if d.curDepth > d.maxDepth {
		return newParseError(d.pos-1, "maximum depth exceeded")
	}
	return nil
}

func (d *BinaryDecoder) decodeObject() (*Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.curDepth-- }()

	obj := New(TypeObject)
	for {
		keyPos := d.pos
		tag, err := d.readTag()
		if err != nil {
			return nil, err
		}
		if tag == tagObjectEnd {
			return obj, nil
		}
		if tag < tagStringEmpty || tag > tagString32 {
			return nil, newParseError(keyPos, "expecting string key")
		}
		key, err := d.decodeSized(tag, tagStringEmpty)
		if err != nil {
			return nil, err
		}
		if !ValidUTF8(key) {
			return nil, newParseError(keyPos, "invalid UTF-8 in key")
		}
		child, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		obj.obj[string(key)] = child
	}
}

func (d *BinaryDecoder) decodeArray() (*Value, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.curDepth-- }()

	arr := New(TypeArray)
	for {
		tag, err := d.readTag()
		if err != nil {
			return nil, err
		}
		if tag == tagArrayEnd {
			return arr, nil
		}
		child, err := d.decodeTagged(tag)
		if err != nil {
			return nil, err
		}
		arr.arr = append(arr.arr, child)
	}
}

func (d *BinaryDecoder) decodeError(msg string) error {
	return newParseError(d.pos, msg)
}

// readUint reads a 1, 2, 4 or 8 byte little-endian unsigned integer.
func readUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}

func signExtend(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	default:
		return int64(binary.LittleEndian.Uint64(b))
	}
}
