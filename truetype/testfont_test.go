// Copyright 2015 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"encoding/binary"
	"sort"
	"unicode/utf16"

	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/font"
)

// A testFont describes a small synthetic TrueType font. Its tables are
// generated by tables and serialized by build, so tests can drop or replace
// individual tables.
type testFont struct {
	unitsPerEm uint16
	headFlags  uint16
	ascent     int16
	descent    int16
	glyphs     [][]byte
	hmetrics   []HMetric
	cvt        []int16
	// A nil fpgm or prep is left out of the font; an empty one is present.
	fpgm, prep []byte
	names      []testName

	maxTwilightPoints int
	maxStorage        int
	maxFunctionDefs   int
	maxStackElements  int
}

type testName struct {
	platformID, encodingID uint16
	nameID                 NameID
	value                  string
}

// The glyphs of newTestFont. At 16 ppem one FUnit is one 26.6 unit.
const (
	testGlyphEmpty Index = iota
	testGlyphSquare
	testGlyphCompound
	testGlyphNop
	testNumGlyphs
)

// squareProgram rounds point 0 to the grid along the x axis.
var squareProgram = []byte{opPUSHB000, 0, opMDAP1}

// newTestFont returns a hintable font with an empty glyph, a square, a
// compound glyph made of the square shifted right by 64 FUnits and a square
// whose program only sets the round state.
func newTestFont() *testFont {
	square := [][2]int16{{100, 0}, {100, 500}, {400, 500}, {400, 0}}
	return &testFont{
		unitsPerEm: 1024,
		ascent:     800,
		descent:    -200,
		glyphs: [][]byte{
			nil,
			simpleGlyph(square, []int{4}, squareProgram),
			compoundGlyph(testGlyphSquare, 64, 0, Bounds{164, 0, 464, 500}),
			simpleGlyph(square, []int{4}, []byte{opRTG}),
		},
		hmetrics: []HMetric{
			{AdvanceWidth: 500},
			{AdvanceWidth: 500, LeftSideBearing: 100},
			{AdvanceWidth: 600, LeftSideBearing: 164},
			{AdvanceWidth: 500, LeftSideBearing: 100},
		},
		cvt:  []int16{100},
		fpgm: []byte{},
		prep: []byte{},
		names: []testName{
			{platformMac, macEncodingRoman, NameIDFontFullName, "Mac Name"},
			{platformMicrosoft, msEncodingUCS2, NameIDFontFullName, "Test Sans\x01"},
			{platformMac, macEncodingRoman, NameIDFontFamily, "Café"},
		},
		maxTwilightPoints: 4,
		maxStorage:        8,
		maxFunctionDefs:   8,
		maxStackElements:  32,
	}
}

// simpleGlyph encodes a glyph with one on-curve point per entry of pts and
// contours ending before each index in ends.
func simpleGlyph(pts [][2]int16, ends []int, program []byte) []byte {
	b := Bounds{XMin: 1 << 15, YMin: 1 << 15, XMax: -1 << 15, YMax: -1 << 15}
	for _, p := range pts {
		b.XMin, b.XMax = min(b.XMin, int32(p[0])), max(b.XMax, int32(p[0]))
		b.YMin, b.YMax = min(b.YMin, int32(p[1])), max(b.YMax, int32(p[1]))
	}
	d := glyphHeader(int16(len(ends)), b)
	for _, e := range ends {
		d = binary.BigEndian.AppendUint16(d, uint16(e-1))
	}
	d = binary.BigEndian.AppendUint16(d, uint16(len(program)))
	d = append(d, program...)
	for range pts {
		d = append(d, flagOnCurve)
	}
	var x, y int16
	for _, p := range pts {
		d = binary.BigEndian.AppendUint16(d, uint16(p[0]-x))
		x = p[0]
	}
	for _, p := range pts {
		d = binary.BigEndian.AppendUint16(d, uint16(p[1]-y))
		y = p[1]
	}
	return d
}

// compoundGlyph encodes a glyph made of component shifted by (dx, dy).
func compoundGlyph(component Index, dx, dy int16, b Bounds) []byte {
	const argsAreWordXY = 0x0003
	d := glyphHeader(-1, b)
	d = binary.BigEndian.AppendUint16(d, argsAreWordXY)
	d = binary.BigEndian.AppendUint16(d, uint16(component))
	d = binary.BigEndian.AppendUint16(d, uint16(dx))
	d = binary.BigEndian.AppendUint16(d, uint16(dy))
	return d
}

func glyphHeader(ne int16, b Bounds) []byte {
	d := binary.BigEndian.AppendUint16(nil, uint16(ne))
	for _, v := range []int32{b.XMin, b.YMin, b.XMax, b.YMax} {
		d = binary.BigEndian.AppendUint16(d, uint16(int16(v)))
	}
	return d
}

// tables returns the font's tables keyed by tag.
func (tf *testFont) tables() map[string][]byte {
	n := len(tf.glyphs)
	t := map[string][]byte{}

	head := make([]byte, 54)
	binary.BigEndian.PutUint32(head[0:], 0x00010000)
	binary.BigEndian.PutUint16(head[16:], tf.headFlags)
	binary.BigEndian.PutUint16(head[18:], tf.unitsPerEm)
	binary.BigEndian.PutUint16(head[40:], 1000)
	binary.BigEndian.PutUint16(head[42:], 1000)
	binary.BigEndian.PutUint16(head[50:], 1) // Long loca offsets.
	t["head"] = head

	hhea := make([]byte, 36)
	binary.BigEndian.PutUint32(hhea[0:], 0x00010000)
	binary.BigEndian.PutUint16(hhea[4:], uint16(tf.ascent))
	binary.BigEndian.PutUint16(hhea[6:], uint16(tf.descent))
	binary.BigEndian.PutUint16(hhea[34:], uint16(n))
	t["hhea"] = hhea

	maxp := make([]byte, 32)
	binary.BigEndian.PutUint32(maxp[0:], 0x00010000)
	for i, v := range []int{
		n, 64, 8, 64, 8, 2,
		tf.maxTwilightPoints, tf.maxStorage, tf.maxFunctionDefs, 8,
		tf.maxStackElements, 256, 4, 1,
	} {
		binary.BigEndian.PutUint16(maxp[4+2*i:], uint16(v))
	}
	t["maxp"] = maxp

	var hmtx []byte
	for _, hm := range tf.hmetrics {
		hmtx = binary.BigEndian.AppendUint16(hmtx, uint16(hm.AdvanceWidth))
		hmtx = binary.BigEndian.AppendUint16(hmtx, uint16(int16(hm.LeftSideBearing)))
	}
	t["hmtx"] = hmtx

	var glyf, loca []byte
	for _, g := range tf.glyphs {
		loca = binary.BigEndian.AppendUint32(loca, uint32(len(glyf)))
		glyf = append(glyf, g...)
		if len(glyf)%2 != 0 {
			glyf = append(glyf, 0)
		}
	}
	t["loca"] = binary.BigEndian.AppendUint32(loca, uint32(len(glyf)))
	t["glyf"] = glyf

	if tf.cvt != nil {
		var cvt []byte
		for _, v := range tf.cvt {
			cvt = binary.BigEndian.AppendUint16(cvt, uint16(v))
		}
		t["cvt "] = cvt
	}
	if tf.fpgm != nil {
		t["fpgm"] = tf.fpgm
	}
	if tf.prep != nil {
		t["prep"] = tf.prep
	}
	if tf.names != nil {
		t["name"] = encodeNames(tf.names)
	}
	return t
}

func encodeNames(names []testName) []byte {
	var records, data []byte
	for _, nm := range names {
		var s []byte
		if nm.platformID == platformMac {
			for _, r := range nm.value {
				if r == 'é' {
					r = 0x8e // é in Mac OS Roman.
				}
				s = append(s, byte(r))
			}
		} else {
			for _, u := range utf16.Encode([]rune(nm.value)) {
				s = binary.BigEndian.AppendUint16(s, u)
			}
		}
		for _, v := range []uint16{nm.platformID, nm.encodingID, 0, uint16(nm.nameID), uint16(len(s)), uint16(len(data))} {
			records = binary.BigEndian.AppendUint16(records, v)
		}
		data = append(data, s...)
	}
	b := binary.BigEndian.AppendUint16(nil, 0)
	b = binary.BigEndian.AppendUint16(b, uint16(len(names)))
	b = binary.BigEndian.AppendUint16(b, uint16(6+len(records)))
	return append(append(b, records...), data...)
}

// writeFont serializes tables into a TrueType file.
func writeFont(tables map[string][]byte) []byte {
	var ts []opentype.Table
	for tag, content := range tables {
		ts = append(ts, opentype.Table{Tag: opentype.MustNewTag(tag), Content: content})
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Tag < ts[j].Tag })
	// Pad the file like real fonts are, so an empty last table still has a
	// readable offset.
	return append(opentype.WriteTTF(ts), 0, 0, 0, 0)
}

func (tf *testFont) build() []byte {
	return writeFont(tf.tables())
}

// hintingOptions returns options that run the bytecode.
func hintingOptions(strict bool) *Options {
	return &Options{Strict: strict, Hinting: font.HintingFull}
}
