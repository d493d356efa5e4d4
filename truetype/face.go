// Copyright 2010 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

// Package truetype provides a TrueType bytecode hinter. It parses the tables
// of a TrueType font that hinting needs, scales outlines to a device size and
// runs the font, control value and glyph programs over them. The opcodes and
// the graphics state are documented at
// https://developer.apple.com/fonts/TrueType-Reference-Manual/
//
// All numbers read from the font (bounds, point co-ordinates, metrics) are
// measured in FUnits. To convert from FUnits to pixels, scale by
// (pointSize * resolution) / (font.UnitsPerEm() * 72dpi)
// For example, 550 FUnits at 18pt, 72dpi and 2048upe is 4.83 pixels.
//
// Hinting is all or nothing. There is no vertical-only mode, so
// font.HintingVertical hints both axes.
package truetype

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/sync/errgroup"
)

// An Index is a Face's index of a glyph.
type Index uint16

// A Bounds holds the co-ordinate range of one or more glyphs.
// The endpoints are inclusive.
type Bounds struct {
	XMin, YMin, XMax, YMax int32
}

// An HMetric holds the horizontal metrics of a single glyph.
type HMetric struct {
	AdvanceWidth    int32
	LeftSideBearing int32
}

// u32 returns the big-endian uint32 at b[i:].
func u32(b []byte, i int) uint32 {
	return uint32(b[i])<<24 | uint32(b[i+1])<<16 | uint32(b[i+2])<<8 | uint32(b[i+3])
}

// u16 returns the big-endian uint16 at b[i:].
func u16(b []byte, i int) uint16 {
	return uint16(b[i])<<8 | uint16(b[i+1])
}

const (
	locaOffsetFormatUnknown int = iota
	locaOffsetFormatShort
	locaOffsetFormatLong
)

// headFlagIntegerPPEM is bit 3 of the head flags: "force ppem to integer
// values for all internal scaler math".
const headFlagIntegerPPEM = 1 << 3

// A maxProfile holds the limits declared by a version 1.0 maxp table.
type maxProfile struct {
	numGlyphs             int
	maxPoints             int
	maxContours           int
	maxCompositePoints    int
	maxCompositeContours  int
	maxZones              int
	maxTwilightPoints     int
	maxStorage            int
	maxFunctionDefs       int
	maxInstructionDefs    int
	maxStackElements      int
	maxSizeOfInstructions int
	maxComponentElements  int
	maxComponentDepth     int
}

// A Face represents a TrueType font. Its tables are never modified after
// Parse returns, so one Face may back any number of Sizes, including Sizes
// used from different goroutines.
type Face struct {
	// Tables sliced from the TTF data. The different tables are documented
	// at https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6.html
	glyf, head, hhea, hmtx, loca, maxp, name []byte
	// The hinting tables. A missing fpgm or prep is nil, which differs from
	// an empty one.
	cvt, fpgm, prep []byte

	opts *Options

	// Cached values derived from the raw ttf data.
	locaOffsetFormat int
	nHMetric         int
	unitsPerEm       int
	flags            uint16
	bounds           Bounds
	ascent, descent  int32
	lineGap          int32
	profile          maxProfile
}

// Parse returns a new Face for the given TTF data. opts may be nil.
func Parse(ttf []byte, opts *Options) (*Face, error) {
	if err := checkTableDirectory(ttf); err != nil {
		return nil, err
	}
	ld, err := opentype.NewLoader(bytes.NewReader(ttf))
	if err != nil {
		return nil, FormatError(err.Error())
	}
	f := &Face{opts: opts}
	required := []struct {
		tag string
		dst *[]byte
	}{
		{"head", &f.head},
		{"hhea", &f.hhea},
		{"maxp", &f.maxp},
		{"hmtx", &f.hmtx},
		{"loca", &f.loca},
		{"glyf", &f.glyf},
	}
	for _, t := range required {
		if *t.dst, err = rawTable(ld, t.tag); err != nil {
			return nil, err
		}
		if *t.dst == nil {
			return nil, &TableMissingError{Tag: t.tag}
		}
	}
	optional := []struct {
		tag string
		dst *[]byte
	}{
		{"cvt ", &f.cvt},
		{"fpgm", &f.fpgm},
		{"prep", &f.prep},
		{"name", &f.name},
	}
	for _, t := range optional {
		if *t.dst, err = rawTable(ld, t.tag); err != nil {
			return nil, err
		}
	}
	// Parse and sanity-check the TTF data.
	if err = f.parseHead(); err != nil {
		return nil, err
	}
	if err = f.parseMaxp(); err != nil {
		return nil, err
	}
	if err = f.parseHhea(); err != nil {
		return nil, err
	}
	if err = f.parseLoca(); err != nil {
		return nil, err
	}
	if len(f.cvt)%2 != 0 {
		return nil, FormatError(fmt.Sprintf("bad cvt length: %d", len(f.cvt)))
	}
	return f, nil
}

// checkTableDirectory checks that every table directory entry lies within
// ttf, so that no table read allocates more than the file holds.
func checkTableDirectory(ttf []byte) error {
	if len(ttf) < 12 {
		return FormatError("TTF data is too short")
	}
	if string(ttf[:4]) == "ttcf" {
		return UnsupportedError("font collections")
	}
	n := int(u16(ttf, 4))
	if len(ttf) < 12+16*n {
		return FormatError(fmt.Sprintf("table directory too short for %d tables", n))
	}
	for i := 0; i < n; i++ {
		x := 12 + 16*i
		offset, length := uint64(u32(ttf, x+8)), uint64(u32(ttf, x+12))
		if offset+length > uint64(len(ttf)) {
			return FormatError(fmt.Sprintf("%q table: offset + length too large: %d", ttf[x:x+4], offset+length))
		}
	}
	return nil
}

// rawTable returns the named table, or nil if the font lacks it. An empty
// table that is present is returned as a non-nil empty slice.
func rawTable(ld *opentype.Loader, tag string) ([]byte, error) {
	t := opentype.MustNewTag(tag)
	if !ld.HasTable(t) {
		return nil, nil
	}
	b, err := ld.RawTable(t)
	if err != nil {
		return nil, FormatError(fmt.Sprintf("%s table: %v", tag, err))
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

func (f *Face) parseHead() error {
	if len(f.head) != 54 {
		return FormatError(fmt.Sprintf("bad head length: %d", len(f.head)))
	}
	f.flags = u16(f.head, 16)
	f.unitsPerEm = int(u16(f.head, 18))
	if f.unitsPerEm < 16 || f.unitsPerEm > 16384 {
		return FormatError(fmt.Sprintf("bad unitsPerEm: %d", f.unitsPerEm))
	}
	f.bounds.XMin = int32(int16(u16(f.head, 36)))
	f.bounds.YMin = int32(int16(u16(f.head, 38)))
	f.bounds.XMax = int32(int16(u16(f.head, 40)))
	f.bounds.YMax = int32(int16(u16(f.head, 42)))
	switch i := u16(f.head, 50); i {
	case 0:
		f.locaOffsetFormat = locaOffsetFormatShort
	case 1:
		f.locaOffsetFormat = locaOffsetFormatLong
	default:
		return FormatError(fmt.Sprintf("bad indexToLocFormat: %d", i))
	}
	return nil
}

func (f *Face) parseMaxp() error {
	if len(f.maxp) != 32 {
		if len(f.maxp) == 6 {
			return UnsupportedError("maxp version 0.5 (CFF outlines)")
		}
		return FormatError(fmt.Sprintf("bad maxp length: %d", len(f.maxp)))
	}
	if v := u32(f.maxp, 0); v != 0x00010000 {
		return FormatError(fmt.Sprintf("bad maxp version: 0x%08x", v))
	}
	var fields [14]int
	for i := range fields {
		fields[i] = int(u16(f.maxp, 4+2*i))
	}
	f.profile = maxProfile{
		numGlyphs:             fields[0],
		maxPoints:             fields[1],
		maxContours:           fields[2],
		maxCompositePoints:    fields[3],
		maxCompositeContours:  fields[4],
		maxZones:              fields[5],
		maxTwilightPoints:     fields[6],
		maxStorage:            fields[7],
		maxFunctionDefs:       fields[8],
		maxInstructionDefs:    fields[9],
		maxStackElements:      fields[10],
		maxSizeOfInstructions: fields[11],
		maxComponentElements:  fields[12],
		maxComponentDepth:     fields[13],
	}
	return nil
}

func (f *Face) parseHhea() error {
	if len(f.hhea) != 36 {
		return FormatError(fmt.Sprintf("bad hhea length: %d", len(f.hhea)))
	}
	f.ascent = int32(int16(u16(f.hhea, 4)))
	f.descent = int32(int16(u16(f.hhea, 6)))
	f.lineGap = int32(int16(u16(f.hhea, 8)))
	f.nHMetric = int(u16(f.hhea, 34))
	if f.nHMetric == 0 || f.nHMetric > f.profile.numGlyphs {
		return FormatError(fmt.Sprintf("bad number of hmetrics: %d", f.nHMetric))
	}
	if 4*f.nHMetric+2*(f.profile.numGlyphs-f.nHMetric) != len(f.hmtx) {
		return FormatError(fmt.Sprintf("bad hmtx length: %d", len(f.hmtx)))
	}
	return nil
}

func (f *Face) parseLoca() error {
	n := f.profile.numGlyphs + 1
	if f.locaOffsetFormat == locaOffsetFormatShort {
		n *= 2
	} else {
		n *= 4
	}
	if len(f.loca) < n {
		return FormatError(fmt.Sprintf("bad loca length: %d", len(f.loca)))
	}
	return nil
}

// Bounds returns the union of a Face's glyphs' bounds, in FUnits.
func (f *Face) Bounds() Bounds {
	return f.bounds
}

// UnitsPerEm returns the number of FUnits in a Face's em-square.
func (f *Face) UnitsPerEm() int {
	return f.unitsPerEm
}

// NumGlyphs returns the number of glyphs in the Face.
func (f *Face) NumGlyphs() int {
	return f.profile.numGlyphs
}

// HMetric returns the horizontal metrics for the glyph with the given index,
// in FUnits.
func (f *Face) HMetric(i Index) HMetric {
	j := int(i)
	if j < 0 || f.profile.numGlyphs <= j {
		return HMetric{}
	}
	if j >= f.nHMetric {
		p := 4 * (f.nHMetric - 1)
		return HMetric{
			AdvanceWidth:    int32(u16(f.hmtx, p)),
			LeftSideBearing: int32(int16(u16(f.hmtx, p+2*(j-f.nHMetric)+4))),
		}
	}
	return HMetric{
		AdvanceWidth:    int32(u16(f.hmtx, 4*j)),
		LeftSideBearing: int32(int16(u16(f.hmtx, 4*j+2))),
	}
}

// HasHinting reports whether the Face carries both a font program and a
// control value program.
func (f *Face) HasHinting() bool {
	return f.fpgm != nil && f.prep != nil
}

// ControlValues returns the unscaled control value table.
func (f *Face) ControlValues() []int16 {
	v := make([]int16, len(f.cvt)/2)
	for i := range v {
		v[i] = int16(u16(f.cvt, 2*i))
	}
	return v
}

// Options returns the options the Face was parsed with.
func (f *Face) Options() *Options {
	return f.opts
}

// PrepareSizes creates one Size per request and resets them concurrently,
// running each Size's font and control value programs. The Sizes are
// returned in request order. If any Size fails, the others are released and
// the first error is returned.
func (f *Face) PrepareSizes(ctx context.Context, reqs []SizeRequest) ([]*Size, error) {
	sizes := make([]*Size, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := f.NewSize()
			if err := s.Reset(req); err != nil {
				s.Done()
				return fmt.Errorf("truetype: size %v: %w", req, err)
			}
			sizes[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, s := range sizes {
			s.Done()
		}
		return nil, err
	}
	return sizes, nil
}
