// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package zipenc

import (
	"testing"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"

	"go.astrophena.name/exzip/testutil"
)

func mustEncode(t *testing.T, enc encoding.Encoding, s string) []byte {
	t.Helper()
	b, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestLookup(t *testing.T) {
	cases := map[string]struct {
		name   string
		want   string
		wantOK bool
	}{
		"cp437":            {"cp437", "cp437", true},
		"cp437 uppercase":  {"CP437", "cp437", true},
		"cp932":            {"cp932", "shift_jis", true},
		"whatwg label":     {"sjis", "shift_jis", true},
		"utf-8":            {"UTF-8", "utf-8", true},
		"surrounding junk": {"  euc-kr ", "euc-kr", true},
		"unknown":          {"klingon", "", false},
		"empty":            {"", "", false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := Lookup(tc.name)
			testutil.AssertEqual(t, ok, tc.wantOK)
			testutil.AssertEqual(t, got.Name, tc.want)
		})
	}
}

func TestLookupSameEncoding(t *testing.T) {
	a, _ := Lookup("cp932")
	b, _ := Lookup("shift_jis")
	testutil.AssertEqual(t, a, ShiftJIS)
	testutil.AssertEqual(t, b, ShiftJIS)
}

func TestDecode(t *testing.T) {
	sjis := mustEncode(t, japanese.ShiftJIS, "日本語")

	s, malformed := ShiftJIS.Decode(sjis)
	testutil.AssertEqual(t, s, "日本語")
	testutil.AssertEqual(t, malformed, false)

	s, malformed = UTF8.Decode(sjis)
	testutil.AssertEqual(t, malformed, true)
	if s == "" {
		t.Error("lossy decoding returned nothing")
	}

	s, malformed = CP437.Decode([]byte{0x82, 0xff})
	testutil.AssertEqual(t, s, "é\u00a0")
	testutil.AssertEqual(t, malformed, false)

	// A lead byte followed by a byte that can't trail it.
	_, malformed = ShiftJIS.Decode([]byte{0x81, 0x20})
	testutil.AssertEqual(t, malformed, true)

	// 0x80 is a single-byte code point in WHATWG Shift_JIS.
	s, malformed = ShiftJIS.Decode([]byte{0x80, 'a'})
	testutil.AssertEqual(t, s, "\u0080a")
	testutil.AssertEqual(t, malformed, false)
}

func TestDetect(t *testing.T) {
	sjis := mustEncode(t, japanese.ShiftJIS, "資料/日本語.txt")
	cp437 := mustEncode(t, charmap.CodePage437, "résumé.txt")
	euckr := mustEncode(t, korean.EUCKR, "한국어 문서/보고서.txt")

	cases := map[string]struct {
		names []Name
		opts  DetectOptions
		want  Encoding
	}{
		"empty archive": {
			want: UTF8,
		},
		"ascii": {
			names: []Name{{Raw: []byte("a/b.txt")}},
			want:  UTF8,
		},
		"utf-8 without flag": {
			names: []Name{{Raw: []byte("日本語.txt")}},
			want:  UTF8,
		},
		"shift_jis": {
			names: []Name{{Raw: []byte("readme.txt")}, {Raw: sjis}},
			want:  ShiftJIS,
		},
		"flagged names are skipped": {
			names: []Name{{Raw: sjis, UTF8: true}, {Raw: []byte("a.txt")}},
			want:  UTF8,
		},
		"falls back to cp437": {
			names: []Name{{Raw: cp437}},
			want:  CP437,
		},
		"custom candidates": {
			names: []Name{{Raw: cp437}},
			opts:  DetectOptions{Candidates: []Encoding{CP437}},
			want:  CP437,
		},
		"guess disabled": {
			names: []Name{{Raw: euckr}},
			opts:  DetectOptions{Candidates: []Encoding{UTF8}},
			want:  CP437,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, Detect(tc.names, tc.opts).Name, tc.want.Name)
		})
	}
}

func TestDetectGuess(t *testing.T) {
	euckr := mustEncode(t, korean.EUCKR, "한국어 문서/보고서 초안.txt")
	got := Detect([]Name{{Raw: euckr}}, DetectOptions{Candidates: []Encoding{UTF8}, Guess: true})
	// Whatever chardet guesses, it must decode the name cleanly; otherwise
	// the CP437 fallback is used.
	if _, malformed := got.Decode(euckr); malformed {
		t.Fatalf("Detect picked %s, which cannot decode the name", got)
	}
}
