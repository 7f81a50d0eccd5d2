package fcjson

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

type parseTestCase struct {
	label  string
	input  string
	output string
	errStr string
}

// testWithParse parses each input and compares the compact dump of the
// result with output, or checks that parsing fails with errStr.
func testWithParse(t *testing.T, cases []parseTestCase) {
	t.Helper()

	for _, c := range cases {
		c := c
		t.Run(c.label, func(t *testing.T) {
			t.Parallel()

			v, err := ParseString(c.input)
			if c.errStr != "" {
				var got string
				if err != nil {
					got = err.Error()
				}
				if !strings.Contains(got, c.errStr) {
					t.Errorf("expected error with '%s', but got %v", c.errStr, got)
				}
				if !v.IsNull() {
					t.Errorf("expected Null after failed parse, but got %s", v.TypeName())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := v.Dump(0, false); got != c.output {
				t.Fatalf("Parse doesn't match expected:\nGot:    %s\nExpect: %s", got, c.output)
			}
		})
	}
}

type binaryTestCase struct {
	label  string
	input  string
	output string
	errStr string
}

// testWithBinary parses each JSON input, encodes it and compares against the
// hex output, then decodes the bytes back and checks the value survived.
func testWithBinary(t *testing.T, cases []binaryTestCase) {
	t.Helper()

	for _, c := range cases {
		c := c
		t.Run(c.label, func(t *testing.T) {
			t.Parallel()

			v, err := ParseString(c.input)
			if err != nil {
				t.Fatalf("error parsing test input: %v", err)
			}
			buf, err := v.MarshalBinary()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			expect := decodeHex(t, c.output)
			if !bytes.Equal(expect, buf) {
				t.Fatalf("MarshalBinary doesn't match expected:\nGot:    %v\nExpect: %v", hex.EncodeToString(buf), strings.ToLower(c.output))
			}
			back, err := ParseBinary(buf)
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !back.Equal(v) {
				t.Fatalf("binary round trip changed value:\nGot:    %s\nExpect: %s", back, v)
			}
		})
	}
}

// testWithBinaryDecode decodes hex input and compares the compact dump with
// output, or checks that decoding fails with errStr.
func testWithBinaryDecode(t *testing.T, cases []binaryTestCase) {
	t.Helper()

	for _, c := range cases {
		c := c
		t.Run(c.label, func(t *testing.T) {
			t.Parallel()

			v, err := ParseBinary(decodeHex(t, c.input))
			if c.errStr != "" {
				var got string
				if err != nil {
					got = err.Error()
				}
				if !strings.Contains(got, c.errStr) {
					t.Errorf("expected error with '%s', but got %v", c.errStr, got)
				}
				if !v.IsNull() {
					t.Errorf("expected Null after failed decode, but got %s", v.TypeName())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := v.Dump(0, false); got != c.output {
				t.Fatalf("ParseBinary doesn't match expected:\nGot:    %s\nExpect: %s", got, c.output)
			}
		})
	}
}

func decodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ToLower(strings.ReplaceAll(s, " ", "")))
	if err != nil {
		t.Fatalf("error decoding test hex: %v", err)
	}
	return b
}

func getTestFiles(t *testing.T, dir, prefix, suffix string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	keep := make([]string, 0)
	for _, entry := range entries {
		name := entry.Name()
		if prefix != "" {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
		}
		if suffix != "" {
			if !strings.HasSuffix(name, suffix) {
				continue
			}
		}
		keep = append(keep, name)
	}

	return keep
}

// convertWithStdlib parses input with encoding/json, keeping numbers exact,
// and builds the equivalent Value.
func convertWithStdlib(input []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()
	var x interface{}
	if err := dec.Decode(&x); err != nil {
		return nil, err
	}
	return FromInterface(x)
}

func convertWithGoDriver(input []byte) ([]byte, error) {
	var got bson.Raw
	err := bson.UnmarshalExtJSON(input, false, &got)
	return got, err
}
