// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package fcjson is an in-memory JSON document model with a text parser, a
// pretty-printing text dumper and a compact tagged binary encoding.
//
// A Value holds exactly one of Null, Bool, Int, Uint, Float, String, Object,
// Array or Binary.  Objects keep unique keys and iterate, dump and encode in
// byte-wise key order.  Indexing with Key or Index creates missing members
// and elements on the fly, so
//
//	v := fcjson.Null()
//	v.Key("a").Index(2).SetInt(5)
//
// yields {"a":[null,null,5]}.  Indexing the wrong variant returns a detached
// value that reads as Null and ignores writes.
//
// Parsing
//
// Parse accepts RFC 8259 JSON with a leading byte-order mark skipped.  Input
// starting with a UTF-16 byte-order mark is transcoded to UTF-8 first.
// Integer literals become Int when they fit int64, Uint when they are
// unsigned and fit uint64, and Float otherwise.  Duplicate keys keep the last
// value.  Errors fail the whole document and are reported as *ParseError with
// the byte offset where they were detected.  Nesting is limited to 200 levels
// by default; see Parser.MaxDepth.
//
// Streaming
//
// Decoder reads a sequence of values from an io.Reader, separated by white
// space or held in one top-level array, and returns io.EOF after the last.
//
// Binary format
//
// Every encoded value starts with a tag byte.  Integers, string lengths and
// blob lengths use the smallest of 8, 16, 32 or 64 bits that holds them, in
// little-endian order.  Objects and arrays are framed by begin and end tags
// with no child count.  See MarshalBinary and BinaryDecoder.
//
// Text encoding
//
// Strings are stored as UTF-8.  The transcoder functions (UTF8ToUTF16,
// UTF16ToUTF8 and friends) accept the legacy 5- and 6-byte UTF-8 forms and
// fail hard on malformed input rather than substituting U+FFFD.  ParseFile
// detects UTF-8 or UTF-16 file content; DumpFile can write either.
//
// Testing
//
// Parser results are compared against encoding/json and BSON conversion
// against the MongoDB Go driver.  The transcoder is checked against
// golang.org/x/text.  Fuzzing harnesses live under testdata/fuzzing.
package fcjson
