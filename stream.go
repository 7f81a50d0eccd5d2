// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package fcjson

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder reads successive JSON values from an input stream.  Values may be
// separated by optional white space or may be the elements of a single
// top-level array.
//
// A UTF-8 byte-order mark is stripped.  A UTF-16 byte-order mark switches the
// stream to UTF-16, in which case unpaired surrogates are replaced with U+FFFD
// rather than reported.  Error offsets count bytes of UTF-8 text from the
// start of the stream.
type Decoder struct {
	arrayFinished bool
	arrayStarted  bool
	started       bool
	json          *bufio.Reader
	maxDepth      int
	offset        int
	buf           []byte
}

// NewDecoder returns a new decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		json:     bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop))),
		maxDepth: DefaultMaxDepth,
	}
}

// MaxDepth sets the maximum nesting depth of each value.  The default is
// DefaultMaxDepth.
func (d *Decoder) MaxDepth(n int) *Decoder {
	d.maxDepth = n
	return d
}

// Decode returns the next value in the stream.  It returns io.EOF when no
// values remain.
func (d *Decoder) Decode() (*Value, error) {
	if d.arrayFinished {
		return nil, io.EOF
	}

	ch, err := d.readAfterWS()
	if err != nil {
		// Between values, EOF is valid.
		if err == io.EOF && !d.arrayStarted {
			return nil, err
		}
		return nil, d.readError(err)
	}

	if !d.started {
		d.started = true
		if ch == '[' {
			d.arrayStarted = true
			ch, err = d.readAfterWS()
			if err != nil {
				return nil, d.readError(err)
			}
		}
	}
	if d.arrayStarted && ch == ']' {
		d.arrayFinished = true
		return nil, io.EOF
	}

	start := d.offset - 1
	raw, err := d.readRaw(ch)
	if err != nil {
		return nil, err
	}
	v, err := NewParser(raw).MaxDepth(d.maxDepth).Parse()
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Offset += start
		}
		return nil, err
	}

	if d.arrayStarted {
		ch, err := d.readAfterWS()
		if err != nil {
			return nil, d.readError(err)
		}

		switch ch {
		case ',':
			// nothing
		case ']':
			d.arrayFinished = true
		default:
			return nil, d.parseError("expecting value-separator or end of array")
		}
	}

	return v, nil
}

// readRaw collects the bytes of one value starting with first.  Containers
// and strings are delimited by their closing bytes; literals and numbers run
// until the next delimiter.  The parser validates the result.
func (d *Decoder) readRaw(first byte) ([]byte, error) {
	d.buf = append(d.buf[:0], first)

	switch first {
	case '{', '[', '"':
		depth := 0
		inString := first == '"'
		if !inString {
			depth = 1
		}
		escaped := false
		for depth > 0 || inString {
			ch, err := d.readByte()
			if err != nil {
				return nil, d.readError(err)
			}
			d.buf = append(d.buf, ch)
			switch {
			case inString && escaped:
				escaped = false
			case inString && ch == '\\':
				escaped = true
			case inString && ch == '"':
				inString = false
			case inString:
			case ch == '"':
				inString = true
			case ch == '{' || ch == '[':
				depth++
			case ch == '}' || ch == ']':
				depth--
			}
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 't', 'f', 'n':
		for {
			ch, err := d.readByte()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, d.readError(err)
			}
			if isDelimiter(ch) {
				d.unreadByte()
				break
			}
			d.buf = append(d.buf, ch)
		}
	default:
		return nil, d.parseError(fmt.Sprintf("unexpected character %q", first))
	}

	return d.buf, nil
}

func isDelimiter(ch byte) bool {
	switch ch {
	case ',', ']', '}', '[', '{', '"':
		return true
	}
	return ch <= ' '
}

func (d *Decoder) readByte() (byte, error) {
	ch, err := d.json.ReadByte()
	if err == nil {
		d.offset++
	}
	return ch, err
}

func (d *Decoder) unreadByte() {
	if d.json.UnreadByte() == nil {
		d.offset--
	}
}

func (d *Decoder) readAfterWS() (byte, error) {
	for {
		ch, err := d.readByte()
		if err != nil {
			return 0, err
		}
		if ch > ' ' {
			return ch, nil
		}
	}
}

func (d *Decoder) parseError(msg string) error {
	return newParseError(d.offset-1, msg)
}

// readError is used when we expect to be able to read and fail.  EOF becomes
// a parse error because we aren't between top-level values.
func (d *Decoder) readError(err error) error {
	if err == io.EOF {
		return newParseError(d.offset, "unexpected end of input")
	}
	return fmt.Errorf("error reading json: %w", err)
}
