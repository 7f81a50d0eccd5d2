// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package fcjson

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// DefaultMaxDepth is the default nesting limit for the text parser and the
// binary decoder.
const DefaultMaxDepth = 200

// Parser decodes a single JSON document held in memory.
type Parser struct {
	json     []byte
	pos      int
	curDepth int
	maxDepth int
}

// NewParser returns a parser for data.  A UTF-8 byte-order-mark is skipped.
// Data starting with a UTF-16 byte-order-mark is converted to UTF-8 before
// parsing, and error offsets then refer to the converted text.
func NewParser(data []byte) *Parser {
	return &Parser{
		json:     data,
		maxDepth: DefaultMaxDepth,
	}
}

// MaxDepth sets the maximum allowed nesting of objects and arrays.  The
// default is 200.
func (p *Parser) MaxDepth(n int) *Parser {
	p.maxDepth = n
	return p
}

// Parse decodes the document.  Any error fails the whole document: the
// returned value is Null and the error is a *ParseError.
func (p *Parser) Parse() (*Value, error) {
	if err := p.handleBOM(); err != nil {
		return Null(), err
	}
	p.curDepth = 0

	v, err := p.convertValue()
	if err != nil {
		return Null(), err
	}

	p.skipWS()
	if p.pos < len(p.json) {
		return Null(), p.parseError("unexpected data after top-level value")
	}
	return v, nil
}

// Parse decodes a JSON document with the default settings.
func Parse(data []byte) (*Value, error) {
	return NewParser(data).Parse()
}

// ParseString decodes a JSON document held in a string.
func ParseString(s string) (*Value, error) {
	return NewParser([]byte(s)).Parse()
}

// Parse replaces v with the document decoded from data.  On failure v is
// left Null.
func (v *Value) Parse(data []byte) error {
	nv, err := Parse(data)
	if !v.detached {
		*v = *nv
	}
	return err
}

func (p *Parser) handleBOM() error {
	p.pos = 0
	switch {
	case bytes.HasPrefix(p.json, utf16LEBOM) || bytes.HasPrefix(p.json, utf16BEBOM):
		text, err := decodeUTF16Bytes(p.json)
		if err != nil {
			return err
		}
		p.json = text
	case bytes.HasPrefix(p.json, utf8BOM):
		p.pos = len(utf8BOM)
	}
	return nil
}

func (p *Parser) convertValue() (*Value, error) {
	ch, ok := p.peekAfterWS()
	if !ok {
		return nil, p.parseError("unexpected end of input")
	}

	switch ch {
	case '{':
		return p.convertObject()
	case '[':
		return p.convertArray()
	case '"':
		s, err := p.convertString()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case 't':
		if err := p.readLiteral("true"); err != nil {
			return nil, err
		}
		return Bool(true), nil
	case 'f':
		if err := p.readLiteral("false"); err != nil {
			return nil, err
		}
		return Bool(false), nil
	case 'n':
		if err := p.readLiteral("null"); err != nil {
			return nil, err
		}
		return Null(), nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return p.convertNumber()
	default:
		return nil, p.parseError(fmt.Sprintf("unexpected character %q", ch))
	}
}

func (p *Parser) enter() error {
	p.curDepth++
	if p.curDepth > p.maxDepth {
		return p.parseError("maximum depth exceeded")
	}
	return nil
}

func (p *Parser) convertObject() (*Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.curDepth-- }()

	// consume '{'
	p.pos++
	obj := New(TypeObject)

	ch, ok := p.peekAfterWS()
	if !ok {
		return nil, p.parseError("unexpected end of input in object")
	}
	if ch == '}' {
		p.pos++
		return obj, nil
	}

	for {
		ch, ok = p.peekAfterWS()
		if !ok {
			return nil, p.parseError("unexpected end of input in object")
		}
		if ch != '"' {
			return nil, p.parseError("expecting key")
		}
		key, err := p.convertString()
		if err != nil {
			return nil, err
		}

		if err = p.readNameSeparator(); err != nil {
			return nil, err
		}

		child, err := p.convertValue()
		if err != nil {
			return nil, err
		}
		// A repeated key replaces the earlier value.
		obj.obj[key] = child

		ch, ok = p.peekAfterWS()
		if !ok {
			return nil, p.parseError("unexpected end of input in object")
		}
		switch ch {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return obj, nil
		default:
			return nil, p.parseError("expecting value-separator or end of object")
		}
	}
}

func (p *Parser) convertArray() (*Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.curDepth-- }()

	// consume '['
	p.pos++
	arr := New(TypeArray)

	ch, ok := p.peekAfterWS()
	if !ok {
		return nil, p.parseError("unexpected end of input in array")
	}
	if ch == ']' {
		p.pos++
		return arr, nil
	}

	for {
		child, err := p.convertValue()
		if err != nil {
			return nil, err
		}
		arr.arr = append(arr.arr, child)

		ch, ok = p.peekAfterWS()
		if !ok {
			return nil, p.parseError("unexpected end of input in array")
		}
		switch ch {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return arr, nil
		default:
			return nil, p.parseError("expecting value-separator or end of array")
		}
	}
}

func (p *Parser) readLiteral(lit string) error {
	end := p.pos + len(lit)
	if end > len(p.json) || string(p.json[p.pos:end]) != lit {
		return p.parseError("expecting " + lit)
	}
	p.pos = end
	return nil
}

// convertNumber scans -?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?.  Literals with
// a fraction or exponent are floats.  Other literals are Int when they fit
// int64, Uint when unsigned and fitting uint64, and Float otherwise.
func (p *Parser) convertNumber() (*Value, error) {
	start := p.pos
	isFloat := false
	negative := false

	if p.json[p.pos] == '-' {
		negative = true
		p.pos++
	}
	if p.digits() == 0 {
		return nil, p.parseError("expecting digit")
	}
	if p.pos < len(p.json) && p.json[p.pos] == '.' {
		isFloat = true
		p.pos++
		if p.digits() == 0 {
			return nil, p.parseError("expecting digit after decimal point")
		}
	}
	if p.pos < len(p.json) && (p.json[p.pos] == 'e' || p.json[p.pos] == 'E') {
		isFloat = true
		p.pos++
		if p.pos < len(p.json) && (p.json[p.pos] == '+' || p.json[p.pos] == '-') {
			p.pos++
		}
		if p.digits() == 0 {
			return nil, p.parseError("expecting digit in exponent")
		}
	}

	lit := string(p.json[start:p.pos])
	if !isFloat {
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Int(n), nil
		}
		if !negative {
			if n, err := strconv.ParseUint(lit, 10, 64); err == nil {
				return Uint(n), nil
			}
		}
	}
	return p.convertFloat(start, lit)
}

func (p *Parser) convertFloat(start int, lit string) (*Value, error) {
	n, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsInf(n, 0) {
		return nil, newParseError(start, "number out of range")
	}
	return Float(n), nil
}

func (p *Parser) digits() int {
	n := 0
	for p.pos < len(p.json) && p.json[p.pos] >= '0' && p.json[p.pos] <= '9' {
		p.pos++
		n++
	}
	return n
}

// convertString reads a quoted string starting at the opening quote and
// returns its unescaped UTF-8 content.
func (p *Parser) convertString() (string, error) {
	// consume '"'
	p.pos++
	var out []byte

	for {
		// copy the run of plain ASCII up to the next byte needing attention
		start := p.pos
		for p.pos < len(p.json) {
			c := p.json[p.pos]
			if c == '"' || c == '\\' || c < 0x20 || c >= 0x80 {
				break
			}
			p.pos++
		}
		out = append(out, p.json[start:p.pos]...)

		if p.pos >= len(p.json) {
			return "", p.parseError("unterminated string")
		}

		c := p.json[p.pos]
		switch {
		case c == '"':
			p.pos++
			return string(out), nil
		case c == '\\':
			var err error
			out, err = p.convertEscape(out)
			if err != nil {
				return "", err
			}
		case c < 0x20:
			return "", p.parseError("control character in string")
		default:
			_, n := DecodeRune(p.json[p.pos:])
			if n == 0 {
				return "", p.parseError("invalid UTF-8 in string")
			}
			out = append(out, p.json[p.pos:p.pos+n]...)
			p.pos += n
		}
	}
}

func (p *Parser) convertEscape(out []byte) ([]byte, error) {
	if p.pos+1 >= len(p.json) {
		return nil, p.parseError("unterminated string")
	}
	esc := p.json[p.pos+1]
	switch esc {
	case '"', '\\', '/':
		out = append(out, esc)
	case 'b':
		out = append(out, '\b')
	case 'f':
		out = append(out, '\f')
	case 'n':
		out = append(out, '\n')
	case 'r':
		out = append(out, '\r')
	case 't':
		out = append(out, '\t')
	case 'u':
		return p.convertUnicodeEscape(out)
	default:
		return nil, p.parseError(fmt.Sprintf("unknown escape '\\%c'", esc))
	}
	p.pos += 2
	return out, nil
}

// convertUnicodeEscape handles \uXXXX at p.pos.  A high surrogate must be
// followed directly by a \uXXXX low surrogate.
func (p *Parser) convertUnicodeEscape(out []byte) ([]byte, error) {
	start := p.pos
	hi, err := p.readHex4()
	if err != nil {
		return nil, err
	}

	switch {
	case isLowSurrogate(hi):
		return nil, newParseError(start, "unexpected low surrogate escape")
	case isHighSurrogate(hi):
		if p.pos+1 >= len(p.json) || p.json[p.pos] != '\\' || p.json[p.pos+1] != 'u' {
			return nil, p.parseError("high surrogate escape not followed by low surrogate")
		}
		lo, err := p.readHex4()
		if err != nil {
			return nil, err
		}
		if !isLowSurrogate(lo) {
			return nil, newParseError(p.pos-6, "high surrogate escape not followed by low surrogate")
		}
		return AppendRune(out, DecodeSurrogates(hi, lo)), nil
	default:
		return AppendRune(out, rune(hi)), nil
	}
}

// readHex4 reads "\uXXXX" at p.pos.
func (p *Parser) readHex4() (uint16, error) {
	if p.pos+6 > len(p.json) {
		return 0, p.parseError("truncated unicode escape")
	}
	n, err := strconv.ParseUint(string(p.json[p.pos+2:p.pos+6]), 16, 16)
	if err != nil {
		return 0, p.parseError("invalid unicode escape")
	}
	p.pos += 6
	return uint16(n), nil
}

func (p *Parser) skipWS() {
	for p.pos < len(p.json) && p.json[p.pos] <= ' ' {
		p.pos++
	}
}

// peekAfterWS skips white space and returns the next byte without consuming
// it.
func (p *Parser) peekAfterWS() (byte, bool) {
	p.skipWS()
	if p.pos >= len(p.json) {
		return 0, false
	}
	return p.json[p.pos], true
}

func (p *Parser) readNameSeparator() error {
	ch, ok := p.peekAfterWS()
	if !ok {
		return p.parseError("unexpected end of input in object")
	}
	if ch != ':' {
		return p.parseError("expecting ':'")
	}
	p.pos++
	return nil
}

func (p *Parser) parseError(msg string) error {
	return newParseError(p.pos, msg)
}
