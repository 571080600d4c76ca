// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package zipenc decodes ZIP member names stored in legacy encodings.
//
// The ZIP format only flags UTF-8 names. Everything else is "whatever the
// archiver's locale was", which in practice means CP437 or, for archives
// made on Japanese Windows, Shift_JIS. [Detect] guesses which one an archive
// uses by trying candidates until every name decodes cleanly.
package zipenc

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is a named text encoding for member names.
type Encoding struct {
	Name string
	enc  encoding.Encoding
}

// Well-known encodings.
var (
	UTF8     = Encoding{Name: "utf-8", enc: unicode.UTF8}
	ShiftJIS = Encoding{Name: "shift_jis", enc: japanese.ShiftJIS}
	CP437    = Encoding{Name: "cp437", enc: charmap.CodePage437}
)

// Names that WHATWG labels don't cover.
var nameTable = map[string]Encoding{
	"cp437": CP437,
	"cp932": ShiftJIS,
}

// Lookup finds an encoding by name. Names are matched case-insensitively
// against a small table of DOS code page names first and then against the
// WHATWG encoding labels ("utf-8", "sjis", "euc-kr", "gbk", ...).
func Lookup(name string) (Encoding, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if e, ok := nameTable[key]; ok {
		return e, true
	}
	enc, err := htmlindex.Get(key)
	if err != nil {
		return Encoding{}, false
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = key
	}
	return Encoding{Name: strings.ToLower(canonical), enc: enc}, true
}

// String returns the encoding name.
func (e Encoding) String() string { return e.Name }

// IsZero reports whether e is the zero Encoding.
func (e Encoding) IsZero() bool { return e.enc == nil }

// Decode converts raw to UTF-8. Undecodable sequences are replaced with
// U+FFFD and reported through malformed.
func (e Encoding) Decode(raw []byte) (s string, malformed bool) {
	if e.enc == nil || e.enc == unicode.UTF8 {
		if utf8.Valid(raw) {
			return string(raw), false
		}
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), true
	}
	out, err := e.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), true
	}
	// None of the supported legacy encodings can produce U+FFFD from valid
	// input, so its presence means replacement happened.
	return string(out), bytes.ContainsRune(out, utf8.RuneError)
}

// Name is a raw member name together with its UTF-8 flag.
type Name struct {
	Raw []byte
	// UTF8 is set when the archive marks the name as UTF-8. Such names are
	// not considered during detection.
	UTF8 bool
}

// DetectOptions controls [Detect].
type DetectOptions struct {
	// Candidates are tried in order. Empty means UTF-8, then Shift_JIS.
	Candidates []Encoding
	// Guess enables statistical charset detection when no candidate fits.
	Guess bool
}

// DefaultCandidates are the encodings tried by [Detect] by default.
var DefaultCandidates = []Encoding{UTF8, ShiftJIS}

// Detect returns the first candidate that decodes every non-UTF-8 name
// without errors. If none does, and opts.Guess is set, it tries the charset
// guessed from the names' bytes. CP437 is the fallback: it maps every byte,
// so it never fails.
func Detect(names []Name, opts DetectOptions) Encoding {
	candidates := opts.Candidates
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	for _, c := range candidates {
		if decodesAll(c, names) {
			return c
		}
	}
	if opts.Guess {
		if g, ok := guess(names); ok && decodesAll(g, names) {
			return g
		}
	}
	return CP437
}

func decodesAll(e Encoding, names []Name) bool {
	for _, n := range names {
		if n.UTF8 {
			continue
		}
		if _, malformed := e.Decode(n.Raw); malformed {
			return false
		}
	}
	return true
}

// minGuessConfidence is the lowest chardet confidence accepted by guess.
const minGuessConfidence = 50

func guess(names []Name) (Encoding, bool) {
	var buf bytes.Buffer
	for _, n := range names {
		if n.UTF8 {
			continue
		}
		buf.Write(n.Raw)
		buf.WriteByte('\n')
	}
	if buf.Len() == 0 {
		return Encoding{}, false
	}
	// chardet needs a reasonable amount of text to be stable.
	sample := buf.Bytes()
	for len(sample) < 1024 {
		sample = append(sample, buf.Bytes()...)
	}
	res, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || res.Confidence < minGuessConfidence {
		return Encoding{}, false
	}
	return Lookup(res.Charset)
}
