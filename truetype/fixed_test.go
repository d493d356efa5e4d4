// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"math"
	"testing"
)

func TestMulDiv(t *testing.T) {
	testCases := []struct {
		a, b, c, want int64
	}{
		{3, 5, 2, 8},
		{-3, 5, 2, -8},
		{3, -5, -2, 8},
		{7, 1, 2, 4},
		{1, 1, 0, math.MaxInt32},
		{-1, 1, 0, -math.MaxInt32},
	}
	for _, tc := range testCases {
		if got := mulDiv(tc.a, tc.b, tc.c); got != tc.want {
			t.Errorf("mulDiv(%d, %d, %d) = %d, want %d", tc.a, tc.b, tc.c, got, tc.want)
		}
	}
	if got := mulDivNoRound(7, 1, 2); got != 3 {
		t.Errorf("mulDivNoRound(7, 1, 2) = %d, want 3", got)
	}
}

func TestSaturate(t *testing.T) {
	if v, ok := saturate(math.MaxInt32 + 1); ok || v != math.MaxInt32 {
		t.Errorf("saturate(MaxInt32+1) = %d, %t", v, ok)
	}
	if v, ok := saturate(math.MinInt32 - 1); ok || v != math.MinInt32 {
		t.Errorf("saturate(MinInt32-1) = %d, %t", v, ok)
	}
	if v, ok := saturate(-5); !ok || v != -5 {
		t.Errorf("saturate(-5) = %d, %t", v, ok)
	}
}

func TestIsqrt(t *testing.T) {
	for _, x := range []uint64{0, 1, 2, 3, 4, 15, 16, 17, 1 << 40, 1<<62 - 1} {
		r := isqrt(x)
		if r*r > x || (r+1)*(r+1) <= x {
			t.Errorf("isqrt(%d) = %d", x, r)
		}
	}
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		x, y int64
		want UnitVector
	}{
		{0, 0, xAxis},
		{5, 0, xAxis},
		{0, 5, yAxis},
		{0, -5, UnitVector{0, -0x4000}},
		{1, 1, UnitVector{0x2D41, 0x2D41}},
		{-300, 300, UnitVector{-0x2D41, 0x2D41}},
		{3 << 40, 4 << 40, UnitVector{0x2666, 0x3333}},
	}
	for _, tc := range testCases {
		if got := normalize(tc.x, tc.y); got != tc.want {
			t.Errorf("normalize(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}
