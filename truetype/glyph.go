// Copyright 2010 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"fmt"

	"golang.org/x/image/math/fixed"
)

// A GlyphBuf holds a glyph's contours, scaled to a Size and, if the Size
// hints, grid fitted. A GlyphBuf can be re-used to load a series of glyphs.
type GlyphBuf struct {
	// AdvanceWidth is the glyph's advance width.
	AdvanceWidth fixed.Int26_6
	// Bounds is the control box of Points.
	Bounds fixed.Rectangle26_6
	// Points contains all points from all contours of the glyph. If the
	// glyph was hinted then Unhinted contains those points before they
	// were hinted; otherwise the two are equal.
	Points, Unhinted []fixed.Point26_6
	// Flags holds one byte per point. Its LSB means whether or not the point
	// is ``on'' the contour. Other bits are reserved for internal use.
	Flags []uint8
	// Ends is the point indexes of the end point of each contour. The
	// length of Ends is the number of contours in the glyph. The i'th
	// contour consists of points Points[Ends[i-1]:Ends[i]], where Ends[-1]
	// is interpreted to mean zero.
	Ends []int

	size    *Size
	hint    bool
	strict  bool
	scratch []fixed.Point26_6
	ends    []int
}

// Flags for decoding a glyph's contours. These flags are documented at
// https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6glyf.html
const (
	flagOnCurve = 1 << iota
	flagXShortVector
	flagYShortVector
	flagRepeat
	flagPositiveXShortVector
	flagPositiveYShortVector
)

// The same flag bits (0x10 and 0x20) are overloaded to have two meanings,
// dependent on the value of the flag{X,Y}ShortVector bits.
const (
	flagThisXIsSame = flagPositiveXShortVector
	flagThisYIsSame = flagPositiveYShortVector
)

var errGlyphTruncated = FormatError("glyph data truncated")

// decodeFlags decodes a glyph's run-length encoded flags, and returns the
// offset of the data that follows them.
func (g *GlyphBuf) decodeFlags(d []byte, offset int, np0, np int) (int, error) {
	for i := np0; i < np; {
		if offset >= len(d) {
			return 0, errGlyphTruncated
		}
		c := d[offset]
		offset++
		g.Flags[i] = c
		i++
		if c&flagRepeat != 0 {
			if offset >= len(d) {
				return 0, errGlyphTruncated
			}
			count := int(d[offset])
			offset++
			if i+count > np {
				return 0, FormatError("flag repeat count overflows points")
			}
			for ; count > 0; count-- {
				g.Flags[i] = c
				i++
			}
		}
	}
	return offset, nil
}

// decodeCoords decodes a glyph's delta encoded co-ordinates into Unhinted,
// scaling them to the Size.
func (g *GlyphBuf) decodeCoords(d []byte, offset int, np0, np int) error {
	m := &g.size.metrics
	var x int16
	for i := np0; i < np; i++ {
		f := g.Flags[i]
		if f&flagXShortVector != 0 {
			if offset+1 > len(d) {
				return errGlyphTruncated
			}
			dx := int16(d[offset])
			offset++
			if f&flagPositiveXShortVector == 0 {
				x -= dx
			} else {
				x += dx
			}
		} else if f&flagThisXIsSame == 0 {
			if offset+2 > len(d) {
				return errGlyphTruncated
			}
			x += int16(u16(d, offset))
			offset += 2
		}
		g.Unhinted[i].X = m.ScaleX(int32(x))
	}
	var y int16
	for i := np0; i < np; i++ {
		f := g.Flags[i]
		if f&flagYShortVector != 0 {
			if offset+1 > len(d) {
				return errGlyphTruncated
			}
			dy := int16(d[offset])
			offset++
			if f&flagPositiveYShortVector == 0 {
				y -= dy
			} else {
				y += dy
			}
		} else if f&flagThisYIsSame == 0 {
			if offset+2 > len(d) {
				return errGlyphTruncated
			}
			y += int16(u16(d, offset))
			offset += 2
		}
		g.Unhinted[i].Y = m.ScaleY(int32(y))
		// Only the on-curve bit survives decoding; the others are reused
		// as touch flags by the hinter.
		g.Flags[i] &= flagOnCurve
	}
	return nil
}

// Load loads a glyph's contours from the Face of s, scaled to s, overwriting
// any previously loaded contours for this GlyphBuf. If s hints, the glyph
// programs run over the points.
func (g *GlyphBuf) Load(s *Size, i Index) error {
	// Reset the GlyphBuf.
	g.AdvanceWidth = 0
	g.Bounds = fixed.Rectangle26_6{}
	g.Points = g.Points[:0]
	g.Unhinted = g.Unhinted[:0]
	g.Flags = g.Flags[:0]
	g.Ends = g.Ends[:0]
	if s == nil || !s.valid {
		return fmt.Errorf("%w: Reset has not been called", ErrBadSizeRequest)
	}
	if int(i) >= s.face.profile.numGlyphs {
		return FormatError(fmt.Sprintf("glyph index %d out of range", i))
	}
	g.size, g.hint, g.strict = s, s.Hinting(), s.opts.strict()
	defer func() { g.size = nil }()

	phantom, err := g.load(i, 0)
	if err != nil {
		return err
	}
	// Move the origin to the first phantom point.
	if pp1x := phantom[0].X; pp1x != 0 {
		for j := range g.Points {
			g.Points[j].X -= pp1x
			g.Unhinted[j].X -= pp1x
		}
	}
	g.AdvanceWidth = phantom[1].X - phantom[0].X
	if g.hint {
		g.AdvanceWidth = pixRound(g.AdvanceWidth)
	}
	if len(g.Points) > 0 {
		g.Bounds.Min, g.Bounds.Max = g.Points[0], g.Points[0]
		for _, p := range g.Points[1:] {
			g.Bounds.Min.X = min(g.Bounds.Min.X, p.X)
			g.Bounds.Min.Y = min(g.Bounds.Min.Y, p.Y)
			g.Bounds.Max.X = max(g.Bounds.Max.X, p.X)
			g.Bounds.Max.Y = max(g.Bounds.Max.Y, p.Y)
		}
	}
	return nil
}

// grow extends the point slices by n zeroed points.
func (g *GlyphBuf) grow(n int) {
	np := len(g.Points) + n
	if np <= cap(g.Points) && np <= cap(g.Unhinted) && np <= cap(g.Flags) {
		g.Points = g.Points[:np]
		g.Unhinted = g.Unhinted[:np]
		g.Flags = g.Flags[:np]
		return
	}
	p := make([]fixed.Point26_6, np, np*2)
	copy(p, g.Points)
	g.Points = p
	u := make([]fixed.Point26_6, np, np*2)
	copy(u, g.Unhinted)
	g.Unhinted = u
	f := make([]uint8, np, np*2)
	copy(f, g.Flags)
	g.Flags = f
}

// truncate drops the points from index n onwards.
func (g *GlyphBuf) truncate(n int) {
	g.Points = g.Points[:n]
	g.Unhinted = g.Unhinted[:n]
	g.Flags = g.Flags[:n]
}

// phantoms returns the four phantom points of a glyph with bounds b and
// metrics hm: the origin and advance on the x axis, then the ascent and
// descent on the y axis.
func (g *GlyphBuf) phantoms(b Bounds, hm HMetric) [nPhantomPoints]fixed.Point26_6 {
	m, f := &g.size.metrics, g.size.face
	pp1x := b.XMin - hm.LeftSideBearing
	return [nPhantomPoints]fixed.Point26_6{
		{X: m.ScaleX(pp1x)},
		{X: m.ScaleX(pp1x + hm.AdvanceWidth)},
		{Y: m.ScaleY(f.ascent)},
		{Y: m.ScaleY(f.descent)},
	}
}

// roundPhantoms grid fits the phantom points that start at index np.
func (g *GlyphBuf) roundPhantoms(np int) {
	g.Points[np+0].X = pixRound(g.Points[np+0].X)
	g.Points[np+1].X = pixRound(g.Points[np+1].X)
	g.Points[np+2].Y = pixRound(g.Points[np+2].Y)
	g.Points[np+3].Y = pixRound(g.Points[np+3].Y)
}

// maxRecursion bounds the nesting of compound glyphs.
func (g *GlyphBuf) maxRecursion() int {
	if d := g.size.face.profile.maxComponentDepth; d > 4 && d < 16 {
		return d
	}
	return 4
}

// load appends a glyph's contours to this GlyphBuf and returns its phantom
// points, hinted if the glyph was.
func (g *GlyphBuf) load(i Index, recursion int) (phantom [nPhantomPoints]fixed.Point26_6, err error) {
	if recursion >= g.maxRecursion() {
		return phantom, UnsupportedError("excessive compound glyph recursion")
	}
	f := g.size.face
	if int(i) >= f.profile.numGlyphs {
		return phantom, FormatError(fmt.Sprintf("component glyph index %d out of range", i))
	}
	// Find the relevant slice of f.glyf.
	var g0, g1 uint32
	if f.locaOffsetFormat == locaOffsetFormatShort {
		g0 = 2 * uint32(u16(f.loca, 2*int(i)))
		g1 = 2 * uint32(u16(f.loca, 2*int(i)+2))
	} else {
		g0 = u32(f.loca, 4*int(i))
		g1 = u32(f.loca, 4*int(i)+4)
	}
	if g0 > g1 || int(g1) > len(f.glyf) {
		return phantom, FormatError(fmt.Sprintf("bad loca entry for glyph %d", i))
	}
	hm := f.HMetric(i)
	if g0 == g1 {
		phantom = g.phantoms(Bounds{}, hm)
		if g.hint {
			for k := range phantom {
				phantom[k].X = pixRound(phantom[k].X)
				phantom[k].Y = pixRound(phantom[k].Y)
			}
		}
		return phantom, nil
	}
	glyf := f.glyf[g0:g1]
	if len(glyf) < 10 {
		return phantom, errGlyphTruncated
	}
	// Decode the contour end indices.
	ne := int(int16(u16(glyf, 0)))
	b := Bounds{
		XMin: int32(int16(u16(glyf, 2))),
		YMin: int32(int16(u16(glyf, 4))),
		XMax: int32(int16(u16(glyf, 6))),
		YMax: int32(int16(u16(glyf, 8))),
	}
	if ne < 0 {
		if ne != -1 {
			// The glyf documentation says that "the values -2, -3, and so
			// forth, are reserved for future use."
			return phantom, UnsupportedError("negative number of contours")
		}
		return g.loadCompound(glyf, b, hm, recursion)
	}
	return g.loadSimple(glyf, ne, b, hm)
}

func (g *GlyphBuf) loadSimple(glyf []byte, ne int, b Bounds, hm HMetric) (phantom [nPhantomPoints]fixed.Point26_6, err error) {
	offset := 10
	if len(glyf) < offset+2*ne+2 {
		return phantom, errGlyphTruncated
	}
	ne0, np0 := len(g.Ends), len(g.Points)
	for k, last := 0, 0; k < ne; k++ {
		end := 1 + int(u16(glyf, offset))
		offset += 2
		if end < last {
			return phantom, FormatError("contour ends are not increasing")
		}
		g.Ends = append(g.Ends, end)
		last = end
	}
	np := 0
	if ne > 0 {
		np = g.Ends[len(g.Ends)-1]
	}

	// Note the TrueType hinting instructions.
	instrLen := int(u16(glyf, offset))
	offset += 2
	if offset+instrLen > len(glyf) {
		return phantom, errGlyphTruncated
	}
	program := glyf[offset : offset+instrLen]
	offset += instrLen

	// Decode the points, including room for the phantom points.
	g.grow(np + nPhantomPoints)
	if offset, err = g.decodeFlags(glyf, offset, np0, np0+np); err != nil {
		return phantom, err
	}
	if err = g.decodeCoords(glyf, offset, np0, np0+np); err != nil {
		return phantom, err
	}
	pp := g.phantoms(b, hm)
	for k := range pp {
		g.Unhinted[np0+np+k] = pp[k]
		g.Flags[np0+np+k] = 0
	}
	copy(g.Points[np0:], g.Unhinted[np0:np0+np+nPhantomPoints])

	if g.hint {
		g.roundPhantoms(np0 + np)
		// The hinting program expects the Ends values to be indexed
		// relative to the inner glyph, so np0 is added afterwards.
		z := &Zone{
			Orig: g.Unhinted[np0 : np0+np+nPhantomPoints],
			Cur:  g.Points[np0 : np0+np+nPhantomPoints],
			Tags: g.Flags[np0 : np0+np+nPhantomPoints],
			Ends: g.Ends[ne0:],
		}
		if err := g.size.bc.runGlyph(g.size, z, program, g.strict); err != nil {
			return phantom, err
		}
	}
	copy(phantom[:], g.Points[np0+np:])
	g.truncate(np0 + np)
	for k := ne0; k < len(g.Ends); k++ {
		g.Ends[k] += np0
	}
	return phantom, nil
}

// loadCompound loads a glyph that is composed of other glyphs.
func (g *GlyphBuf) loadCompound(glyf []byte, b Bounds, hm HMetric, recursion int) (phantom [nPhantomPoints]fixed.Point26_6, err error) {
	// Flags for decoding a compound glyph. These flags are documented at
	// https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6glyf.html
	const (
		flagArg1And2AreWords = 1 << iota
		flagArgsAreXYValues
		flagRoundXYToGrid
		flagWeHaveAScale
		flagUnused
		flagMoreComponents
		flagWeHaveAnXAndYScale
		flagWeHaveATwoByTwo
		flagWeHaveInstructions
		flagUseMyMetrics
		flagOverlapCompound
	)
	m := &g.size.metrics
	ne0, np0 := len(g.Ends), len(g.Points)
	offset := 10
	metricsOverride, haveInstructions := false, false
	for {
		if offset+4 > len(glyf) {
			return phantom, errGlyphTruncated
		}
		flags := u16(glyf, offset)
		component := Index(u16(glyf, offset+2))
		offset += 4
		var arg1, arg2 int32
		if flags&flagArg1And2AreWords != 0 {
			if offset+4 > len(glyf) {
				return phantom, errGlyphTruncated
			}
			arg1, arg2 = int32(int16(u16(glyf, offset))), int32(int16(u16(glyf, offset+2)))
			if flags&flagArgsAreXYValues == 0 {
				arg1, arg2 = int32(u16(glyf, offset)), int32(u16(glyf, offset+2))
			}
			offset += 4
		} else {
			if offset+2 > len(glyf) {
				return phantom, errGlyphTruncated
			}
			arg1, arg2 = int32(int8(glyf[offset])), int32(int8(glyf[offset+1]))
			if flags&flagArgsAreXYValues == 0 {
				arg1, arg2 = int32(glyf[offset]), int32(glyf[offset+1])
			}
			offset += 2
		}
		// The transform is a 2x2 matrix in 2.14 fixed point.
		var xform [4]int32
		hasXform := true
		switch {
		case flags&flagWeHaveAScale != 0:
			if offset+2 > len(glyf) {
				return phantom, errGlyphTruncated
			}
			s := int32(int16(u16(glyf, offset)))
			xform = [4]int32{s, 0, 0, s}
			offset += 2
		case flags&flagWeHaveAnXAndYScale != 0:
			if offset+4 > len(glyf) {
				return phantom, errGlyphTruncated
			}
			xform = [4]int32{int32(int16(u16(glyf, offset))), 0, 0, int32(int16(u16(glyf, offset+2)))}
			offset += 4
		case flags&flagWeHaveATwoByTwo != 0:
			if offset+8 > len(glyf) {
				return phantom, errGlyphTruncated
			}
			for k := range xform {
				xform[k] = int32(int16(u16(glyf, offset+2*k)))
			}
			offset += 8
		default:
			hasXform = false
		}

		start := len(g.Points)
		sub, err := g.load(component, recursion+1)
		if err != nil {
			return phantom, err
		}
		if hasXform {
			for j := start; j < len(g.Points); j++ {
				g.Points[j] = transform14(g.Points[j], xform)
				g.Unhinted[j] = transform14(g.Unhinted[j], xform)
			}
		}
		var dx, dy fixed.Int26_6
		if flags&flagArgsAreXYValues != 0 {
			dx, dy = m.ScaleX(arg1), m.ScaleY(arg2)
			if g.hint && flags&flagRoundXYToGrid != 0 {
				dx, dy = pixRound(dx), pixRound(dy)
			}
		} else {
			// Align point arg2 of the component with point arg1 of the
			// glyph so far.
			p1, p2 := np0+int(arg1), start+int(arg2)
			if p1 >= start || p2 >= len(g.Points) {
				return phantom, FormatError("compound glyph anchor point out of range")
			}
			dx = g.Points[p1].X - g.Points[p2].X
			dy = g.Points[p1].Y - g.Points[p2].Y
		}
		for j := start; j < len(g.Points); j++ {
			g.Points[j].X += dx
			g.Points[j].Y += dy
			g.Unhinted[j].X += dx
			g.Unhinted[j].Y += dy
		}
		if flags&flagUseMyMetrics != 0 {
			metricsOverride, phantom = true, sub
		}
		if flags&flagWeHaveInstructions != 0 {
			haveInstructions = true
		}
		if flags&flagMoreComponents == 0 {
			break
		}
	}
	if !metricsOverride {
		phantom = g.phantoms(b, hm)
		if g.hint {
			for k := range phantom {
				phantom[k].X = pixRound(phantom[k].X)
				phantom[k].Y = pixRound(phantom[k].Y)
			}
		}
	}
	if !g.hint || !haveInstructions || offset+2 > len(glyf) {
		return phantom, nil
	}
	instrLen := int(u16(glyf, offset))
	offset += 2
	if offset+instrLen > len(glyf) {
		return phantom, errGlyphTruncated
	}
	program := glyf[offset : offset+instrLen]
	if len(program) == 0 {
		return phantom, nil
	}

	// The compound's instructions see the hinted components as their
	// original positions, plus the compound's own phantom points.
	np := len(g.Points) - np0
	g.grow(nPhantomPoints)
	for k := range phantom {
		g.Points[np0+np+k] = phantom[k]
		g.Unhinted[np0+np+k] = phantom[k]
		g.Flags[np0+np+k] = 0
	}
	for j := np0; j < len(g.Flags); j++ {
		g.Flags[j] &^= tagTouchedBoth
	}
	g.scratch = append(g.scratch[:0], g.Points[np0:]...)
	g.ends = g.ends[:0]
	for _, e := range g.Ends[ne0:] {
		g.ends = append(g.ends, e-np0)
	}
	z := &Zone{
		Orig: g.scratch,
		Cur:  g.Points[np0:],
		Tags: g.Flags[np0:],
		Ends: g.ends,
	}
	if err := g.size.bc.runGlyph(g.size, z, program, g.strict); err != nil {
		return phantom, err
	}
	copy(phantom[:], g.Points[np0+np:])
	g.truncate(np0 + np)
	return phantom, nil
}

// transform14 applies a 2x2 matrix of 2.14 fixed point values to p.
func transform14(p fixed.Point26_6, m [4]int32) fixed.Point26_6 {
	x := mulFix14(int32(p.X), f2dot14(m[0])) + mulFix14(int32(p.Y), f2dot14(m[2]))
	y := mulFix14(int32(p.X), f2dot14(m[1])) + mulFix14(int32(p.Y), f2dot14(m[3]))
	return fixed.Point26_6{X: fixed.Int26_6(x), Y: fixed.Int26_6(y)}
}

// NewGlyphBuf returns a newly allocated GlyphBuf.
func NewGlyphBuf() *GlyphBuf {
	g := new(GlyphBuf)
	g.Points = make([]fixed.Point26_6, 0, 256)
	g.Unhinted = make([]fixed.Point26_6, 0, 256)
	g.Flags = make([]uint8, 0, 256)
	g.Ends = make([]int, 0, 32)
	return g
}
