// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package fcjson

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// dumper holds the settings of one Dump call.  Indent strings are built once
// per depth and reused.
type dumper struct {
	indent  int
	escape  bool
	indents []string
}

// Dump returns the JSON text of v.  With indent > 0 every member and element
// goes on its own line indented by depth*indent spaces; otherwise the output
// is compact.  With escapeNonASCII every code point from U+0080 up is written
// as a \uXXXX escape, using a surrogate pair above U+FFFF.
func (v *Value) Dump(indent int, escapeNonASCII bool) string {
	return string(v.AppendDump(nil, indent, escapeNonASCII))
}

// AppendDump appends the JSON text of v to dst, like Dump.
func (v *Value) AppendDump(dst []byte, indent int, escapeNonASCII bool) []byte {
	d := &dumper{indent: indent, escape: escapeNonASCII}
	return d.dumpValue(dst, v, 1)
}

func (d *dumper) indentString(depth int) string {
	for len(d.indents) <= depth {
		d.indents = append(d.indents, strings.Repeat(" ", len(d.indents)*d.indent))
	}
	return d.indents[depth]
}

func (d *dumper) dumpValue(out []byte, v *Value, depth int) []byte {
	switch v.typ {
	case TypeBool:
		return strconv.AppendBool(out, v.b)
	case TypeInt:
		return strconv.AppendInt(out, v.i, 10)
	case TypeUint:
		return strconv.AppendUint(out, v.u, 10)
	case TypeFloat:
		return appendFloat(out, v.f)
	case TypeString:
		return d.dumpString(out, v.s)
	case TypeBinary:
		out = append(out, '"')
		out = append(out, base64.StdEncoding.EncodeToString(v.bin)...)
		return append(out, '"')
	case TypeObject:
		return d.dumpObject(out, v, depth)
	case TypeArray:
		return d.dumpArray(out, v, depth)
	default:
		return append(out, "null"...)
	}
}

func (d *dumper) dumpObject(out []byte, v *Value, depth int) []byte {
	if len(v.obj) == 0 {
		return append(out, "{}"...)
	}

	out = append(out, '{')
	for i, k := range v.Keys() {
		if i > 0 {
			out = append(out, ',')
		}
		if d.indent > 0 {
			out = append(out, '\n')
			out = append(out, d.indentString(depth)...)
		}
		out = d.dumpString(out, k)
		out = append(out, ':')
		if d.indent > 0 {
			out = append(out, ' ')
		}
		out = d.dumpValue(out, v.obj[k], depth+1)
	}
	if d.indent > 0 {
		out = append(out, '\n')
		out = append(out, d.indentString(depth-1)...)
	}
	return append(out, '}')
}

func (d *dumper) dumpArray(out []byte, v *Value, depth int) []byte {
	if len(v.arr) == 0 {
		return append(out, "[]"...)
	}

	out = append(out, '[')
	for i, child := range v.arr {
		if i > 0 {
			out = append(out, ',')
		}
		if d.indent > 0 {
			out = append(out, '\n')
			out = append(out, d.indentString(depth)...)
		}
		out = d.dumpValue(out, child, depth+1)
	}
	if d.indent > 0 {
		out = append(out, '\n')
		out = append(out, d.indentString(depth-1)...)
	}
	return append(out, ']')
}

// appendFloat writes 16 significant digits, or 17 when 16 do not read back
// as the same double.  A ".0" suffix keeps integral values floats.  NaN and
// infinities have no JSON form and are written as null.
func appendFloat(out []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(out, "null"...)
	}
	start := len(out)
	out = strconv.AppendFloat(out, f, 'g', 16, 64)
	if back, err := strconv.ParseFloat(string(out[start:]), 64); err != nil || back != f {
		out = strconv.AppendFloat(out[:start], f, 'g', 17, 64)
	}
	for _, c := range out[start:] {
		if c == '.' || c == 'e' {
			return out
		}
	}
	return append(out, ".0"...)
}

func (d *dumper) dumpString(out []byte, s string) []byte {
	out = append(out, '"')
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"':
			out = append(out, '\\', '"')
		case c == '\\':
			out = append(out, '\\', '\\')
		case c == '\b':
			out = append(out, '\\', 'b')
		case c == '\f':
			out = append(out, '\\', 'f')
		case c == '\n':
			out = append(out, '\\', 'n')
		case c == '\r':
			out = append(out, '\\', 'r')
		case c == '\t':
			out = append(out, '\\', 't')
		case c < 0x20:
			out = appendEscape(out, uint16(c))
		case c >= 0x80:
			r, n := DecodeRune([]byte(s[i:min(i+6, len(s))]))
			switch {
			case n == 0:
				// not UTF-8; write the byte as a replacement character
				n = 1
				if d.escape {
					out = appendEscape(out, runeError)
				} else {
					out = append(out, replacementChar...)
				}
			case d.escape:
				out = appendRuneEscape(out, r)
			default:
				out = append(out, s[i:i+n]...)
			}
			i += n
			continue
		default:
			out = append(out, c)
		}
		i++
	}
	return append(out, '"')
}

// appendRuneEscape writes r as one \uXXXX escape, or a surrogate pair above
// U+FFFF.  Code points beyond U+10FFFF are written as U+FFFD.
func appendRuneEscape(out []byte, r rune) []byte {
	switch {
	case r > maxRune:
		return appendEscape(out, runeError)
	case r >= surrSelf:
		hi, lo := EncodeSurrogates(r)
		return appendEscape(appendEscape(out, hi), lo)
	default:
		return appendEscape(out, uint16(r))
	}
}

func appendEscape(out []byte, u uint16) []byte {
	return append(out, '\\', 'u',
		hexDigits[u>>12&0xF],
		hexDigits[u>>8&0xF],
		hexDigits[u>>4&0xF],
		hexDigits[u&0xF])
}
