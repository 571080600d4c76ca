// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package extract

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.astrophena.name/exzip/zipenc"
)

// ErrMalformed is returned for archives with member names that cannot be
// mapped to a safe relative path.
var ErrMalformed = errors.New("malformed zip file")

// flagUTF8 is general purpose bit 11: the name is UTF-8.
const flagUTF8 = 0x800

// Entry is an archive member with its name decoded and sanitized.
type Entry struct {
	// Path is the sanitized slash-separated path, "" for the archive root.
	Path    string
	IsDir   bool
	Symlink bool

	file *zip.File
}

// rawNames returns the member names for encoding detection.
func rawNames(files []*zip.File) []zipenc.Name {
	names := make([]zipenc.Name, 0, len(files))
	for _, f := range files {
		names = append(names, zipenc.Name{Raw: []byte(f.Name), UTF8: f.Flags&flagUTF8 != 0})
	}
	return names
}

// decodeName decodes the name of f. Names flagged as UTF-8 are never passed
// through a legacy decoder.
func decodeName(f *zip.File, enc zipenc.Encoding) string {
	if f.Flags&flagUTF8 != 0 {
		s, _ := zipenc.UTF8.Decode([]byte(f.Name))
		return s
	}
	s, _ := enc.Decode([]byte(f.Name))
	return s
}

func newEntries(files []*zip.File, enc zipenc.Encoding) ([]Entry, error) {
	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		name := decodeName(f, enc)
		p, ok := SanitizePath(name)
		if !ok {
			return nil, fmt.Errorf("%w: bad member name %q", ErrMalformed, name)
		}
		mode := f.Mode()
		entries = append(entries, Entry{
			Path:    p,
			IsDir:   mode.IsDir(),
			Symlink: mode&fs.ModeSymlink != 0,
			file:    f,
		})
	}
	return entries, nil
}

// ModTime returns the member's modification time. It reports false for
// timestamps that don't denote a real moment, such as the DOS date
// 1980-00-00 some archivers write.
//
// Legacy DOS timestamps have no zone and are read as local time. Extended
// timestamps are absolute.
func (e Entry) ModTime() (time.Time, bool) {
	if e.file == nil {
		return time.Time{}, false
	}
	return modTime(&e.file.FileHeader)
}

func modTime(h *zip.FileHeader) (time.Time, bool) {
	//lint:ignore SA1019 the legacy fields carry the zone-less DOS time.
	date, clock := h.ModifiedDate, h.ModifiedTime
	if date == 0 && clock == 0 {
		// No DOS time; only an extended timestamp can be present.
		if h.Modified.Year() < 1980 {
			return time.Time{}, false
		}
		return h.Modified, true
	}
	if h.Modified.Location() != time.UTC {
		// The reader attached a zone derived from the extended timestamp.
		return h.Modified, true
	}

	var (
		year   = int(date>>9) + 1980
		month  = time.Month(date >> 5 & 0xf)
		day    = int(date & 0x1f)
		hour   = int(clock >> 11)
		minute = int(clock >> 5 & 0x3f)
		sec    = int(clock&0x1f) * 2
	)
	t := time.Date(year, month, day, hour, minute, sec, 0, time.Local)
	if t.Year() != year || t.Month() != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != sec {
		// Out of range fields were normalized, or the time falls into a
		// DST gap.
		return time.Time{}, false
	}
	return t, true
}
