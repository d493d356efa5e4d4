// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"math"

	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// SizeMetrics holds the scaling state shared by a Size and its execution
// context.
//
// The control value table is scaled once, to the larger of the two ppem
// values. Reads and writes then go through a ratio that depends on the
// current projection vector, so that non-square pixels need no rescaling of
// the whole table:
//
//	x_ppem = 14, y_ppem = 10  =>  ppem = 14, x_ratio = 1.0, y_ratio = 10/14
//	horizontal projection     =>  ratio = x_ratio
//	vertical projection       =>  ratio = y_ratio
//	otherwise                 =>  ratio = sqrt((proj.x*x_ratio)^2 + (proj.y*y_ratio)^2)
//
// A read returns ratio*cvt[i], a write stores value/ratio, and the current
// ppem is ratio*ppem.
type SizeMetrics struct {
	XRatio Fixed
	YRatio Fixed
	// Ratio is the ratio for the current projection vector.
	Ratio Fixed
	// Scale converts FUnits to 26.6 pixels along the larger ppem axis.
	Scale Fixed
	// XScale and YScale convert FUnits to 26.6 pixels per axis.
	XScale, YScale Fixed
	// PPEM is the larger of the two ppem values.
	PPEM int32

	Rotated   bool
	Stretched bool
}

// ResetHeight recomputes the per-axis ratios for the given ppem values and
// scales, and records from the device transform whether glyphs are rotated
// or stretched. A nil transform means the identity.
func (m *SizeMetrics) ResetHeight(xPPEM, yPPEM int32, xScale, yScale Fixed, transform *f64.Aff3) {
	m.XScale, m.YScale = xScale, yScale
	if xPPEM >= yPPEM {
		m.PPEM = xPPEM
		m.Scale = xScale
	} else {
		m.PPEM = yPPEM
		m.Scale = yScale
	}
	m.XRatio = axisRatio(xPPEM, m.PPEM)
	m.YRatio = axisRatio(yPPEM, m.PPEM)
	m.Ratio = fixedOne
	m.Rotated, m.Stretched = false, false
	if transform != nil {
		m.Rotated = transform[1] != 0 || transform[3] != 0
		m.Stretched = math.Abs(transform[0]) != math.Abs(transform[4])
	}
}

func axisRatio(ppem, maxPPEM int32) Fixed {
	if ppem == maxPPEM || maxPPEM == 0 {
		return fixedOne
	}
	v, _ := saturate(mulDiv(int64(ppem), int64(fixedOne), int64(maxPPEM)))
	return Fixed(v)
}

// Reset recomputes Ratio for the projection vector proj. ok is false if the
// result saturated.
func (m *SizeMetrics) Reset(proj UnitVector) (ok bool) {
	switch {
	case m.XRatio == m.YRatio:
		m.Ratio = m.XRatio
		return true
	case proj[1] == 0:
		m.Ratio = m.XRatio
		return true
	case proj[0] == 0:
		m.Ratio = m.YRatio
		return true
	}
	// Both products are 16.16; their squares are 32.32 and the square root
	// is 16.16 again.
	a := mulDiv(int64(proj[0]), int64(m.XRatio), 0x4000)
	b := mulDiv(int64(proj[1]), int64(m.YRatio), 0x4000)
	r, ok := saturate(int64(isqrt(uint64(a*a + b*b))))
	m.Ratio = Fixed(r)
	return ok
}

// ReadCVT scales a stored control value by the current ratio.
func (m *SizeMetrics) ReadCVT(v fixed.Int26_6) (fixed.Int26_6, bool) {
	if m.Ratio == fixedOne {
		return v, true
	}
	r, ok := saturate(mulFix(int32(v), m.Ratio))
	return fixed.Int26_6(r), ok
}

// WriteCVT converts a value in current pixels back to the stored scale.
func (m *SizeMetrics) WriteCVT(v fixed.Int26_6) (fixed.Int26_6, bool) {
	if m.Ratio == fixedOne || m.Ratio == 0 {
		return v, true
	}
	r, ok := saturate(divFix(int32(v), m.Ratio))
	return fixed.Int26_6(r), ok
}

// CurrentPPEM returns the ppem along the current projection vector.
func (m *SizeMetrics) CurrentPPEM() int32 {
	if m.Ratio == fixedOne {
		return m.PPEM
	}
	r, _ := saturate(mulFix(m.PPEM, m.Ratio))
	return r
}

// ScaleX converts a horizontal distance in FUnits to 26.6 pixels.
func (m *SizeMetrics) ScaleX(v int32) fixed.Int26_6 {
	r, _ := saturate(mulFix(v, m.XScale))
	return fixed.Int26_6(r)
}

// ScaleY converts a vertical distance in FUnits to 26.6 pixels.
func (m *SizeMetrics) ScaleY(v int32) fixed.Int26_6 {
	r, _ := saturate(mulFix(v, m.YScale))
	return fixed.Int26_6(r)
}

// ScaleCVT converts a control value in FUnits to 26.6 pixels at the
// maximum ppem.
func (m *SizeMetrics) ScaleCVT(v int32) fixed.Int26_6 {
	r, _ := saturate(mulFix(v, m.Scale))
	return fixed.Int26_6(r)
}
