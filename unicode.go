// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package fcjson

import (
	"bytes"
	"encoding/binary"
)

const (
	maxRune       = 0x10FFFF
	runeError     = 0xFFFD
	surrHighMin   = 0xD800
	surrHighMax   = 0xDBFF
	surrLowMin    = 0xDC00
	surrLowMax    = 0xDFFF
	surrSelf      = 0x10000
	byteOrderMark = 0xFEFF
	swappedBOM    = 0xFFFE
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}

	// U+FFFD in UTF-8
	replacementChar = []byte{0xEF, 0xBF, 0xBD}
)

// DecodeRune decodes the UTF-8 sequence at the start of src and returns the
// code point and its length in bytes.  The sequence length comes from the
// lead byte and covers the legacy 5- and 6-byte forms, so code points up to
// 0x7FFFFFFF are accepted.  Every continuation byte must match 10xxxxxx.  On
// failure the returned length is 0.
func DecodeRune(src []byte) (rune, int) {
	if len(src) == 0 {
		return runeError, 0
	}

	lead := src[0]
	var n int
	var r rune
	switch {
	case lead < 0x80:
		return rune(lead), 1
	case lead < 0xC0:
		// continuation byte without a lead
		return runeError, 0
	case lead < 0xE0:
		n, r = 2, rune(lead&0x1F)
	case lead < 0xF0:
		n, r = 3, rune(lead&0x0F)
	case lead < 0xF8:
		n, r = 4, rune(lead&0x07)
	case lead < 0xFC:
		n, r = 5, rune(lead&0x03)
	case lead < 0xFE:
		n, r = 6, rune(lead&0x01)
	default:
		return runeError, 0
	}

	if len(src) < n {
		return runeError, 0
	}
	for _, c := range src[1:n] {
		if c&0xC0 != 0x80 {
			return runeError, 0
		}
		r = r<<6 | rune(c&0x3F)
	}
	return r, n
}

// AppendRune appends the UTF-8 encoding of r to dst.  Values above U+1FFFFF
// use the legacy 5- and 6-byte forms.  Negative values append U+FFFD.
func AppendRune(dst []byte, r rune) []byte {
	switch cp := uint32(r); {
	case cp <= 0x7F:
		return append(dst, byte(cp))
	case cp <= 0x7FF:
		return append(dst,
			0xC0|byte(cp>>6),
			0x80|byte(cp)&0x3F)
	case cp <= 0xFFFF:
		return append(dst,
			0xE0|byte(cp>>12),
			0x80|byte(cp>>6)&0x3F,
			0x80|byte(cp)&0x3F)
	case cp <= 0x1FFFFF:
		return append(dst,
			0xF0|byte(cp>>18),
			0x80|byte(cp>>12)&0x3F,
			0x80|byte(cp>>6)&0x3F,
			0x80|byte(cp)&0x3F)
	case cp <= 0x3FFFFFF:
		return append(dst,
			0xF8|byte(cp>>24),
			0x80|byte(cp>>18)&0x3F,
			0x80|byte(cp>>12)&0x3F,
			0x80|byte(cp>>6)&0x3F,
			0x80|byte(cp)&0x3F)
	case cp <= 0x7FFFFFFF:
		return append(dst,
			0xFC|byte(cp>>30),
			0x80|byte(cp>>24)&0x3F,
			0x80|byte(cp>>18)&0x3F,
			0x80|byte(cp>>12)&0x3F,
			0x80|byte(cp>>6)&0x3F,
			0x80|byte(cp)&0x3F)
	default:
		return AppendRune(dst, runeError)
	}
}

// EncodeSurrogates splits an astral code point (U+10000 to U+10FFFF) into a
// UTF-16 high and low surrogate.
func EncodeSurrogates(r rune) (hi, lo uint16) {
	r -= surrSelf
	return surrHighMin + uint16(r>>10)&0x3FF, surrLowMin + uint16(r)&0x3FF
}

// DecodeSurrogates combines a high and low surrogate into a code point.
func DecodeSurrogates(hi, lo uint16) rune {
	return surrSelf + (rune(hi-surrHighMin)<<10 | rune(lo-surrLowMin))
}

func isHighSurrogate(u uint16) bool { return u >= surrHighMin && u <= surrHighMax }
func isLowSurrogate(u uint16) bool  { return u >= surrLowMin && u <= surrLowMax }

// ValidUTF8 reports whether src is entirely made of well-formed UTF-8
// sequences, legacy 5- and 6-byte forms included.
func ValidUTF8(src []byte) bool {
	for i := 0; i < len(src); {
		_, n := DecodeRune(src[i:])
		if n == 0 {
			return false
		}
		i += n
	}
	return true
}

// UTF8ToUTF16 converts UTF-8 text to UTF-16 code units.  A leading BOM is
// dropped.  Malformed sequences and code points beyond U+10FFFF are errors.
func UTF8ToUTF16(src []byte) ([]uint16, error) {
	out := make([]uint16, 0, len(src))
	i := 0
	if bytes.HasPrefix(src, utf8BOM) {
		i = len(utf8BOM)
	}
	for i < len(src) {
		r, n := DecodeRune(src[i:])
		if n == 0 {
			return nil, newParseError(i, "invalid UTF-8 sequence")
		}
		switch {
		case r > maxRune:
			return nil, newParseError(i, "code point has no UTF-16 form")
		case r >= surrSelf:
			hi, lo := EncodeSurrogates(r)
			out = append(out, hi, lo)
		default:
			out = append(out, uint16(r))
		}
		i += n
	}
	return out, nil
}

// UTF16ToUTF8 converts UTF-16 code units to UTF-8.  If the first unit is a
// byte-order mark it is dropped; a swapped mark (0xFFFE) means every
// following unit is byte-swapped.  A high surrogate must be immediately
// followed by a low surrogate; any other surrogate ordering is an error.
// Error offsets are byte offsets (two per unit).
func UTF16ToUTF8(src []uint16) ([]byte, error) {
	out := make([]byte, 0, len(src))
	swap := false
	i := 0
	if len(src) > 0 {
		switch src[0] {
		case byteOrderMark:
			i = 1
		case swappedBOM:
			swap = true
			i = 1
		}
	}

	unit := func(k int) uint16 {
		u := src[k]
		if swap {
			u = u>>8 | u<<8
		}
		return u
	}

	for ; i < len(src); i++ {
		u := unit(i)
		switch {
		case isHighSurrogate(u):
			if i+1 >= len(src) {
				return nil, newParseError(2*i, "unpaired high surrogate")
			}
			lo := unit(i + 1)
			if !isLowSurrogate(lo) {
				return nil, newParseError(2*(i+1), "high surrogate not followed by low surrogate")
			}
			out = AppendRune(out, DecodeSurrogates(u, lo))
			i++
		case isLowSurrogate(u):
			return nil, newParseError(2*i, "unexpected low surrogate")
		default:
			out = AppendRune(out, rune(u))
		}
	}
	return out, nil
}

// BytesToUTF16 reads little-endian UTF-16 code units from b.  A big-endian
// stream reads as a swapped BOM, which UTF16ToUTF8 handles.
func BytesToUTF16(b []byte) ([]uint16, error) {
	if len(b)%2 != 0 {
		return nil, newParseError(len(b)-1, "odd byte length for UTF-16 text")
	}
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return out, nil
}

// UTF16ToBytes writes code units in little-endian byte order.
func UTF16ToBytes(u []uint16) []byte {
	out := make([]byte, 2*len(u))
	for i, c := range u {
		binary.LittleEndian.PutUint16(out[2*i:], c)
	}
	return out
}

// DecodeText detects the encoding of raw file content and returns it as
// UTF-8 without a byte-order mark.  Content starting with a UTF-16 BOM is
// decoded as UTF-16.  Otherwise UTF-8 is tried first and UTF-16 (little-endian
// unless marked) second.  UTF-8 counts only when every code point has a UTF-16
// form, so legacy sequences beyond U+10FFFF are rejected.  If neither works
// the content is invalid.
func DecodeText(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, utf16LEBOM) || bytes.HasPrefix(data, utf16BEBOM) {
		return decodeUTF16Bytes(data)
	}
	if _, err := UTF8ToUTF16(data); err == nil {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}
	if text, err := decodeUTF16Bytes(data); err == nil {
		return text, nil
	}
	return nil, newParseError(0, "text is neither UTF-8 nor UTF-16")
}

func decodeUTF16Bytes(data []byte) ([]byte, error) {
	units, err := BytesToUTF16(data)
	if err != nil {
		return nil, err
	}
	return UTF16ToUTF8(units)
}

// encodeUTF16Text converts UTF-8 text to little-endian UTF-16 bytes with a
// leading byte-order mark.
func encodeUTF16Text(text []byte) ([]byte, error) {
	units, err := UTF8ToUTF16(text)
	if err != nil {
		return nil, err
	}
	return UTF16ToBytes(append([]uint16{byteOrderMark}, units...)), nil
}
