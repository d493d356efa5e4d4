// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"context"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"golang.org/x/image/math/fixed"
)

func parseTestFont(t *testing.T, tf *testFont, opts *Options) *Face {
	t.Helper()
	f, err := Parse(tf.build(), opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

func TestParse(t *testing.T) {
	f := parseTestFont(t, newTestFont(), nil)
	if got, want := f.NumGlyphs(), int(testNumGlyphs); got != want {
		t.Errorf("NumGlyphs: got %d, want %d", got, want)
	}
	if got, want := f.UnitsPerEm(), 1024; got != want {
		t.Errorf("UnitsPerEm: got %d, want %d", got, want)
	}
	if got, want := f.Bounds(), (Bounds{0, 0, 1000, 1000}); got != want {
		t.Errorf("Bounds: got %v, want %v", got, want)
	}
	if got, want := f.HMetric(testGlyphCompound), (HMetric{600, 164}); got != want {
		t.Errorf("HMetric: got %v, want %v", got, want)
	}
	if got := f.HMetric(testNumGlyphs); got != (HMetric{}) {
		t.Errorf("HMetric out of range: got %v, want zero", got)
	}
	if got, want := f.ControlValues(), []int16{100}; !reflect.DeepEqual(got, want) {
		t.Errorf("ControlValues: got %v, want %v", got, want)
	}
	if !f.HasHinting() {
		t.Error("HasHinting: got false, want true")
	}
}

func TestParseOptionalTables(t *testing.T) {
	tf := newTestFont()
	tf.fpgm, tf.prep, tf.cvt, tf.names = nil, nil, nil, nil
	f := parseTestFont(t, tf, nil)
	if f.HasHinting() {
		t.Error("HasHinting: got true, want false")
	}
	if f.fpgm != nil || f.prep != nil {
		t.Error("absent hinting tables should be nil")
	}
	if len(f.ControlValues()) != 0 {
		t.Errorf("ControlValues: got %v, want none", f.ControlValues())
	}
	if name, err := f.Name(NameIDFontFullName); name != "" || err != nil {
		t.Errorf("Name without a name table: got %q, %v", name, err)
	}

	// Present but empty tables are distinct from absent ones.
	tf = newTestFont()
	f = parseTestFont(t, tf, nil)
	if f.fpgm == nil || len(f.fpgm) != 0 {
		t.Errorf("empty fpgm: got %v, want a non-nil empty slice", f.fpgm)
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		desc   string
		modify func(map[string][]byte)
		check  func(error) bool
	}{
		{
			"missing glyf",
			func(m map[string][]byte) { delete(m, "glyf") },
			func(err error) bool {
				var tme *TableMissingError
				return errors.As(err, &tme) && tme.Tag == "glyf"
			},
		},
		{
			"CFF outlines",
			func(m map[string][]byte) { m["maxp"] = []byte{0, 0, 0x50, 0, 0, 4} },
			func(err error) bool {
				var ue UnsupportedError
				return errors.As(err, &ue)
			},
		},
		{
			"short head",
			func(m map[string][]byte) { m["head"] = m["head"][:50] },
			func(err error) bool {
				var fe FormatError
				return errors.As(err, &fe)
			},
		},
		{
			"bad units per em",
			func(m map[string][]byte) { m["head"][18], m["head"][19] = 0, 1 },
			func(err error) bool {
				var fe FormatError
				return errors.As(err, &fe)
			},
		},
		{
			"short loca",
			func(m map[string][]byte) { m["loca"] = m["loca"][:8] },
			func(err error) bool {
				var fe FormatError
				return errors.As(err, &fe)
			},
		},
		{
			"odd cvt",
			func(m map[string][]byte) { m["cvt "] = []byte{0, 1, 2} },
			func(err error) bool {
				var fe FormatError
				return errors.As(err, &fe)
			},
		},
	}
	for _, tc := range testCases {
		tables := newTestFont().tables()
		tc.modify(tables)
		_, err := Parse(writeFont(tables), nil)
		if err == nil {
			t.Errorf("%s: got no error", tc.desc)
			continue
		}
		if !tc.check(err) {
			t.Errorf("%s: unexpected error %v (%T)", tc.desc, err, err)
		}
	}

	if _, err := Parse([]byte("not a font at all"), nil); err == nil {
		t.Error("garbage: got no error")
	}
}

// setTableRecord overwrites the offset and length of the table directory
// entry for tag in ttf.
func setTableRecord(t *testing.T, ttf []byte, tag string, offset, length uint32) {
	t.Helper()
	n := int(binary.BigEndian.Uint16(ttf[4:]))
	for i := 0; i < n; i++ {
		x := 12 + 16*i
		if string(ttf[x:x+4]) == tag {
			binary.BigEndian.PutUint32(ttf[x+8:], offset)
			binary.BigEndian.PutUint32(ttf[x+12:], length)
			return
		}
	}
	t.Fatalf("no %q table", tag)
}

func TestParseTableDirectory(t *testing.T) {
	testCases := []struct {
		desc   string
		tag    string
		offset uint32 // Zero means keep the table's offset.
		length uint32
	}{
		{"huge length", "hmtx", 0, 0x7FFFFFF0},
		{"length past the end", "glyf", 0, 1 << 16},
		{"offset past the end", "cvt ", 1 << 20, 2},
		{"wrapping offset", "prep", 0xFFFFFFFF, 2},
	}
	for _, tc := range testCases {
		ttf := newTestFont().build()
		offset := tc.offset
		if offset == 0 {
			n := int(binary.BigEndian.Uint16(ttf[4:]))
			for i := 0; i < n; i++ {
				if x := 12 + 16*i; string(ttf[x:x+4]) == tc.tag {
					offset = binary.BigEndian.Uint32(ttf[x+8:])
				}
			}
		}
		setTableRecord(t, ttf, tc.tag, offset, tc.length)
		_, err := Parse(ttf, nil)
		var fe FormatError
		if !errors.As(err, &fe) {
			t.Errorf("%s: got %v, want FormatError", tc.desc, err)
		}
	}

	ttf := newTestFont().build()
	copy(ttf, "ttcf")
	var ue UnsupportedError
	if _, err := Parse(ttf, nil); !errors.As(err, &ue) {
		t.Errorf("collection: got %v, want UnsupportedError", err)
	}
}

func TestName(t *testing.T) {
	f := parseTestFont(t, newTestFont(), nil)
	testCases := []struct {
		id   NameID
		want string
	}{
		// The Microsoft record wins over the Macintosh one, and control
		// characters are dropped.
		{NameIDFontFullName, "Test Sans"},
		{NameIDFontFamily, "Café"},
		{NameIDPostscriptName, ""},
	}
	for _, tc := range testCases {
		got, err := f.Name(tc.id)
		if err != nil {
			t.Errorf("Name(%d): %v", tc.id, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Name(%d): got %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestPrepareSizes(t *testing.T) {
	f := parseTestFont(t, newTestFont(), hintingOptions(false))
	var reqs []SizeRequest
	for ppem := 8; ppem <= 40; ppem += 4 {
		reqs = append(reqs, SizeRequest{XPPEM: fixed.I(ppem), YPPEM: fixed.I(ppem)})
	}
	sizes, err := f.PrepareSizes(context.Background(), reqs)
	if err != nil {
		t.Fatalf("PrepareSizes: %v", err)
	}
	if len(sizes) != len(reqs) {
		t.Fatalf("got %d sizes, want %d", len(sizes), len(reqs))
	}
	for i, s := range sizes {
		if s.Request() != reqs[i] {
			t.Errorf("size %d: got request %v, want %v", i, s.Request(), reqs[i])
		}
		if got, want := s.SizeMetrics().PPEM, int32(reqs[i].XPPEM>>6); got != want {
			t.Errorf("size %d: got ppem %d, want %d", i, got, want)
		}
		if s.Hinting() && !s.ControlProgram().Ran() {
			t.Errorf("size %d: control program not run", i)
		}
		s.Done()
	}

	reqs = append(reqs, SizeRequest{})
	if _, err := f.PrepareSizes(context.Background(), reqs); !errors.Is(err, ErrBadSizeRequest) {
		t.Errorf("bad request: got %v, want ErrBadSizeRequest", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.PrepareSizes(ctx, reqs[:1]); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: got %v, want context.Canceled", err)
	}
}
