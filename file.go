// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package fcjson

import (
	"fmt"
	"os"
)

// Encoding selects the text encoding of files written by DumpFile.
type Encoding int

const (
	// EncodingAuto writes the internal representation, which is UTF-8.
	EncodingAuto Encoding = iota
	// EncodingUTF8 writes UTF-8 without a byte-order mark.
	EncodingUTF8
	// EncodingUTF16 writes little-endian UTF-16 with a byte-order mark.
	EncodingUTF16
)

func (e Encoding) String() string {
	switch e {
	case EncodingAuto:
		return "auto"
	case EncodingUTF8:
		return "utf8"
	case EncodingUTF16:
		return "utf16"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

const fileMode = 0o644

// ParseFile reads a JSON text file and parses it.  UTF-8 and UTF-16 content
// are detected as by DecodeText.  On any failure the value is Null.
func ParseFile(path string) (*Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Null(), fmt.Errorf("reading json file: %w", err)
	}
	text, err := DecodeText(data)
	if err != nil {
		return Null(), fmt.Errorf("decoding %s: %w", path, err)
	}
	return Parse(text)
}

// DumpFile writes the JSON text of v to path, replacing any existing file.
func (v *Value) DumpFile(path string, indent int, escapeNonASCII bool, enc Encoding) error {
	out := v.AppendDump(nil, indent, escapeNonASCII)
	if enc == EncodingUTF16 {
		var err error
		out, err = encodeUTF16Text(out)
		if err != nil {
			return fmt.Errorf("encoding %s as UTF-16: %w", path, err)
		}
	}
	if err := os.WriteFile(path, out, fileMode); err != nil {
		return fmt.Errorf("writing json file: %w", err)
	}
	return nil
}

// ParseBinaryFile reads and decodes a binary-format file.
func ParseBinaryFile(path string) (*Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Null(), fmt.Errorf("reading binary file: %w", err)
	}
	return ParseBinary(data)
}

// DumpBinaryFile writes the binary encoding of v to path, replacing any
// existing file.
func (v *Value) DumpBinaryFile(path string) error {
	out, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, fileMode); err != nil {
		return fmt.Errorf("writing binary file: %w", err)
	}
	return nil
}
