// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// f2dot14 is a 2.14 fixed point number. Unit vectors are stored as pairs of
// f2dot14 values, so that 0x4000 is 1.0.
type f2dot14 int16

// A UnitVector is a 2D direction of unit length in 2.14 fixed point.
type UnitVector [2]f2dot14

// xAxis and yAxis are the unit vectors of the coordinate axes.
var (
	xAxis = UnitVector{0x4000, 0}
	yAxis = UnitVector{0, 0x4000}
)

// X returns the horizontal component of v as a float64, for diagnostics.
func (v UnitVector) X() float64 { return float64(v[0]) / 0x4000 }

// Y returns the vertical component of v as a float64, for diagnostics.
func (v UnitVector) Y() float64 { return float64(v[1]) / 0x4000 }

// Fixed is a 16.16 fixed point number, used for scales and ratios.
type Fixed int32

// fixedOne is 1.0 in 16.16 fixed point.
const fixedOne Fixed = 0x10000

// Float64 returns x as a float64.
func (x Fixed) Float64() float64 { return float64(x) / 0x10000 }

// saturate clamps x to the int32 range. ok is false if clamping happened.
func saturate(x int64) (v int32, ok bool) {
	switch {
	case x > math.MaxInt32:
		return math.MaxInt32, false
	case x < math.MinInt32:
		return math.MinInt32, false
	}
	return int32(x), true
}

// abs64 returns the absolute value of x and whether x was negative.
func abs64(x int64) (int64, bool) {
	if x < 0 {
		return -x, true
	}
	return x, false
}

// mulDiv returns a*b/c, rounded to nearest with ties away from zero. A zero
// divisor yields the saturated value with the sign of a*b.
func mulDiv(a, b, c int64) int64 {
	a, na := abs64(a)
	b, nb := abs64(b)
	c, nc := abs64(c)
	neg := na != nb != nc
	var d int64
	if c == 0 {
		d = math.MaxInt32
	} else {
		d = (a*b + c/2) / c
	}
	if neg {
		return -d
	}
	return d
}

// mulDivNoRound is like mulDiv but truncates towards zero.
func mulDivNoRound(a, b, c int64) int64 {
	a, na := abs64(a)
	b, nb := abs64(b)
	c, nc := abs64(c)
	neg := na != nb != nc
	var d int64
	if c == 0 {
		d = math.MaxInt32
	} else {
		d = a * b / c
	}
	if neg {
		return -d
	}
	return d
}

// mulFix returns a*b where b is 16.16 fixed point, rounded to nearest.
func mulFix(a int32, b Fixed) int64 {
	return mulDiv(int64(a), int64(b), 0x10000)
}

// divFix returns a/b as 16.16 fixed point, rounded to nearest.
func divFix(a int32, b Fixed) int64 {
	return mulDiv(int64(a), 0x10000, int64(b))
}

// mulFix14 returns a*b where b is 2.14 fixed point, rounded to nearest.
func mulFix14(a int32, b f2dot14) int32 {
	v, _ := saturate(mulDiv(int64(a), int64(b), 0x4000))
	return v
}

// dotProduct returns the dot product of the 26.6 vector (x, y) and the unit
// vector q, in 26.6.
func dotProduct(x, y fixed.Int26_6, q UnitVector) fixed.Int26_6 {
	v := (int64(x)*int64(q[0]) + int64(y)*int64(q[1]) + 0x2000) >> 14
	r, _ := saturate(v)
	return fixed.Int26_6(r)
}

// isqrt returns floor(sqrt(x)).
func isqrt(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	r := uint64(math.Sqrt(float64(x)))
	// Correct for float64 rounding at the edges of its precision.
	for r*r > x {
		r--
	}
	for (r+1)*(r+1) <= x {
		r++
	}
	return r
}

// normalize returns the unit vector parallel to (x, y). A zero vector
// normalizes to the x axis.
func normalize(x, y int64) UnitVector {
	if x == 0 && y == 0 {
		return xAxis
	}
	if x == 0 {
		if y > 0 {
			return yAxis
		}
		return UnitVector{0, -0x4000}
	}
	if y == 0 {
		if x > 0 {
			return xAxis
		}
		return UnitVector{-0x4000, 0}
	}
	ax, _ := abs64(x)
	ay, _ := abs64(y)
	// Scale down huge inputs so that the squares fit in 63 bits, and scale up
	// tiny ones so that the length keeps enough precision.
	for ax > 1<<30 || ay > 1<<30 {
		ax >>= 1
		ay >>= 1
		x >>= 1
		y >>= 1
	}
	for ax < 1<<16 && ay < 1<<16 {
		ax <<= 1
		ay <<= 1
		x <<= 1
		y <<= 1
	}
	l := int64(isqrt(uint64(ax*ax + ay*ay)))
	if l == 0 {
		return xAxis
	}
	return UnitVector{
		f2dot14(mulDiv(x, 0x4000, l)),
		f2dot14(mulDiv(y, 0x4000, l)),
	}
}

func bool2int32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
