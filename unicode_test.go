package fcjson

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

var transcodeSamples = []string{
	"",
	"abc",
	"caf\xc3\xa9",
	"\xe2\x98\x86 star",
	"\U0001F30D globe \U0001D11E",
	"\x00\x7f\xc2\x80\xef\xbf\xbf\xf4\x8f\xbf\xbf",
}

func TestDecodeRune(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label string
		input string
		r     rune
		n     int
	}{
		{"ASCII", "A", 'A', 1},
		{"two-byte", "\xc3\xa9", 0xE9, 2},
		{"three-byte", "\xe2\x98\x86", 0x2606, 3},
		{"four-byte", "\xf0\x9f\x8c\x8d", 0x1F30D, 4},
		{"five-byte legacy", "\xf8\x88\x80\x80\x80", 0x200000, 5},
		{"six-byte legacy", "\xfc\x84\x80\x80\x80\x80", 0x4000000, 6},
		{"trailing bytes ignored", "\xc3\xa9zz", 0xE9, 2},
		{"empty", "", runeError, 0},
		{"lone continuation", "\x80", runeError, 0},
		{"truncated", "\xe2\x98", runeError, 0},
		{"bad continuation", "\xc3\x41", runeError, 0},
		{"invalid lead FE", "\xfe\x80", runeError, 0},
		{"invalid lead FF", "\xff", runeError, 0},
	}
	for _, c := range cases {
		r, n := DecodeRune([]byte(c.input))
		if r != c.r || n != c.n {
			t.Errorf("%s: expected (%U, %d), got (%U, %d)", c.label, c.r, c.n, r, n)
		}
	}
}

func TestAppendRune(t *testing.T) {
	t.Parallel()

	for _, r := range []rune{0, 'A', 0x7F, 0x80, 0x7FF, 0x800, 0xFFFF, 0x10000, 0x10FFFF, 0x1FFFFF, 0x200000, 0x3FFFFFF, 0x4000000, 0x7FFFFFFF} {
		enc := AppendRune(nil, r)
		got, n := DecodeRune(enc)
		if got != r || n != len(enc) {
			t.Errorf("%U: encoded as %x, decoded (%U, %d)", r, enc, got, n)
		}
	}

	if got := AppendRune([]byte("x"), -1); !bytes.Equal(got, []byte("x\xef\xbf\xbd")) {
		t.Errorf("negative rune: got %x", got)
	}
	if got := AppendRune(nil, 0x200000); !bytes.Equal(got, []byte("\xf8\x88\x80\x80\x80")) {
		t.Errorf("five-byte form: got %x", got)
	}
}

func TestSurrogates(t *testing.T) {
	t.Parallel()

	hi, lo := EncodeSurrogates(0x1F30D)
	if hi != 0xD83C || lo != 0xDF0D {
		t.Errorf("expected D83C DF0D, got %X %X", hi, lo)
	}
	for _, r := range []rune{0x10000, 0x1F30D, 0x10FFFF} {
		hi, lo := EncodeSurrogates(r)
		if !isHighSurrogate(hi) || !isLowSurrogate(lo) {
			t.Errorf("%U: bad surrogates %X %X", r, hi, lo)
		}
		if got := DecodeSurrogates(hi, lo); got != r {
			t.Errorf("%U: decoded as %U", r, got)
		}
	}
}

func TestValidUTF8(t *testing.T) {
	t.Parallel()

	for _, s := range transcodeSamples {
		if !ValidUTF8([]byte(s)) {
			t.Errorf("%q: expected valid", s)
		}
	}
	if !ValidUTF8([]byte("\xf8\x88\x80\x80\x80")) {
		t.Error("legacy five-byte form should be valid")
	}
	for _, s := range []string{"\xff", "a\x80", "\xe2\x98", "\xc3\xa9\xc3"} {
		if ValidUTF8([]byte(s)) {
			t.Errorf("%q: expected invalid", s)
		}
	}
}

func TestUTF8ToUTF16(t *testing.T) {
	t.Parallel()

	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	for _, s := range transcodeSamples {
		units, err := UTF8ToUTF16([]byte(s))
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", s, err)
		}
		want, err := enc.Bytes([]byte(s))
		if err != nil {
			t.Fatalf("%q: x/text error: %v", s, err)
		}
		if got := UTF16ToBytes(units); !bytes.Equal(got, want) {
			t.Errorf("%q: expected %x, got %x", s, want, got)
		}
	}

	units, err := UTF8ToUTF16([]byte("\xef\xbb\xbfa"))
	if err != nil || len(units) != 1 || units[0] != 'a' {
		t.Errorf("BOM not dropped: %v %v", units, err)
	}
}

func TestUTF8ToUTF16Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input  string
		errStr string
		offset int
	}{
		{"ab\xff", "invalid UTF-8 sequence", 2},
		{"\xe2\x98", "invalid UTF-8 sequence", 0},
		{"a\xf8\x88\x80\x80\x80", "code point has no UTF-16 form", 1},
	}
	for _, c := range cases {
		_, err := UTF8ToUTF16([]byte(c.input))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%q: expected ParseError, got %v", c.input, err)
			continue
		}
		if !strings.Contains(pe.Error(), c.errStr) || pe.Offset != c.offset {
			t.Errorf("%q: expected %q at %d, got %v", c.input, c.errStr, c.offset, pe)
		}
	}
}

func TestUTF16ToUTF8(t *testing.T) {
	t.Parallel()

	for _, endian := range []unicode.Endianness{unicode.LittleEndian, unicode.BigEndian} {
		enc := unicode.UTF16(endian, unicode.UseBOM).NewEncoder()
		for _, s := range transcodeSamples {
			raw, err := enc.Bytes([]byte(s))
			if err != nil {
				t.Fatalf("%q: x/text error: %v", s, err)
			}
			units, err := BytesToUTF16(raw)
			if err != nil {
				t.Fatalf("%q: unexpected error: %v", s, err)
			}
			got, err := UTF16ToUTF8(units)
			if err != nil {
				t.Fatalf("%q: unexpected error: %v", s, err)
			}
			if string(got) != s {
				t.Errorf("%q: got %q", s, got)
			}
		}
	}
}

func TestUTF16ToUTF8Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label  string
		input  []uint16
		errStr string
		offset int
	}{
		{"unpaired high at end", []uint16{'a', 0xD83C}, "unpaired high surrogate", 2},
		{"high then BMP", []uint16{0xD83C, 'a'}, "high surrogate not followed by low surrogate", 2},
		{"high then high", []uint16{0xD83C, 0xD83C, 0xDF0D}, "high surrogate not followed by low surrogate", 2},
		{"lone low", []uint16{0xDF0D}, "unexpected low surrogate", 0},
		{"reversed pair", []uint16{0xDF0D, 0xD83C}, "unexpected low surrogate", 0},
		{"swapped order lone low", []uint16{0xFFFE, 0x0DDF}, "unexpected low surrogate", 2},
	}
	for _, c := range cases {
		_, err := UTF16ToUTF8(c.input)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s: expected ParseError, got %v", c.label, err)
			continue
		}
		if !strings.Contains(pe.Error(), c.errStr) || pe.Offset != c.offset {
			t.Errorf("%s: expected %q at %d, got %v", c.label, c.errStr, c.offset, pe)
		}
	}
}

func TestUTF16ByteOrderMark(t *testing.T) {
	t.Parallel()

	got, err := UTF16ToUTF8([]uint16{0xFEFF, 'h', 'i'})
	if err != nil || string(got) != "hi" {
		t.Errorf("little-endian BOM: got %q, %v", got, err)
	}
	got, err = UTF16ToUTF8([]uint16{0xFFFE, 0x6800, 0x6900, 0x3CD8, 0x0DDF})
	if err != nil || string(got) != "hi\U0001F30D" {
		t.Errorf("swapped BOM: got %q, %v", got, err)
	}
	got, err = UTF16ToUTF8([]uint16{'a', 0xFEFF})
	if err != nil || string(got) != "a\xef\xbb\xbf" {
		t.Errorf("BOM after first unit should be kept: got %q, %v", got, err)
	}
}

func TestBytesToUTF16(t *testing.T) {
	t.Parallel()

	units, err := BytesToUTF16([]byte{0x61, 0x00, 0x3C, 0xD8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 2 || units[0] != 'a' || units[1] != 0xD83C {
		t.Errorf("unexpected units %X", units)
	}
	if got := UTF16ToBytes(units); !bytes.Equal(got, []byte{0x61, 0x00, 0x3C, 0xD8}) {
		t.Errorf("unexpected bytes %x", got)
	}
	if _, err := BytesToUTF16([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for odd length")
	}
}

func TestDecodeText(t *testing.T) {
	t.Parallel()

	le := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	be := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	noBOM := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	text := "{\"k\":\"caf\xc3\xa9\"}"

	mustEncode := func(e interface{ Bytes([]byte) ([]byte, error) }, s string) []byte {
		b, err := e.Bytes([]byte(s))
		if err != nil {
			t.Fatalf("x/text error: %v", err)
		}
		return b
	}

	cases := []struct {
		label string
		input []byte
	}{
		{"UTF-8", []byte(text)},
		{"UTF-8 with BOM", append([]byte("\xef\xbb\xbf"), text...)},
		{"UTF-16LE with BOM", mustEncode(le, text)},
		{"UTF-16BE with BOM", mustEncode(be, text)},
		{"UTF-16LE without BOM", mustEncode(noBOM, "caf\xc3\xa9")},
	}
	for _, c := range cases {
		got, err := DecodeText(c.input)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", c.label, err)
			continue
		}
		want := text
		if c.label == "UTF-16LE without BOM" {
			want = "caf\xc3\xa9"
		}
		if string(got) != want {
			t.Errorf("%s: expected %q, got %q", c.label, want, got)
		}
	}

	// The last entry is a five-byte sequence beyond U+10FFFF.
	for _, bad := range [][]byte{{0xff}, {0x00, 0xD8}, {0xff, 0xfe, 0x00}, {0xf8, 0x88, 0x80, 0x80, 0x80}} {
		if _, err := DecodeText(bad); err == nil {
			t.Errorf("%x: expected error", bad)
		}
	}
}

func TestEncodeUTF16Text(t *testing.T) {
	t.Parallel()

	got, err := encodeUTF16Text([]byte("a\U0001F30D"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("a\U0001F30D"))
	if err != nil {
		t.Fatalf("x/text error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("expected %x, got %x", want, got)
	}
}
