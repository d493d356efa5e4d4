// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"testing"

	"golang.org/x/image/math/fixed"
)

func TestRound(t *testing.T) {
	testCases := []struct {
		state RoundState
		in    fixed.Int26_6
		want  fixed.Int26_6
	}{
		{RoundToGrid, 96, 128},
		{RoundToGrid, 95, 64},
		{RoundToGrid, -96, -128},
		{RoundToGrid, 10, 0},
		{RoundToHalfGrid, 64, 96},
		{RoundToHalfGrid, 0, 32},
		{RoundToHalfGrid, -64, -96},
		{RoundToDoubleGrid, 40, 32},
		{RoundToDoubleGrid, 50, 64},
		{RoundDownToGrid, 127, 64},
		{RoundDownToGrid, -127, -64},
		{RoundUpToGrid, 65, 128},
		{RoundUpToGrid, -65, -128},
		{RoundOff, 100, 100},
	}
	for _, tc := range testCases {
		gs := DefaultGraphicsState()
		gs.RoundState = tc.state
		if got := gs.Round(tc.in, 0); got != tc.want {
			t.Errorf("%v: Round(%d) = %d, want %d", tc.state, tc.in, got, tc.want)
		}
	}
}

func TestRoundOnGrid(t *testing.T) {
	states := []RoundState{RoundToGrid, RoundToDoubleGrid, RoundDownToGrid, RoundUpToGrid, RoundOff}
	for _, state := range states {
		gs := DefaultGraphicsState()
		gs.RoundState = state
		for k := fixed.Int26_6(-20); k <= 20; k++ {
			if got := gs.Round(64*k, 0); got != 64*k {
				t.Errorf("%v: Round(%d) = %d, want it unchanged", state, 64*k, got)
			}
		}
	}
}

func TestRoundCompensation(t *testing.T) {
	gs := DefaultGraphicsState()
	gs.Compensation[1] = 20
	if got := gs.Round(100, 1); got != 128 {
		t.Errorf("Round(100, black) = %d, want 128", got)
	}
	// Compensation never flips the sign.
	if got := roundNone(-10, 20); got != -30 {
		t.Errorf("roundNone(-10, 20) = %d, want -30", got)
	}
	if got := roundNone(10, -20); got != 0 {
		t.Errorf("roundNone(10, -20) = %d, want 0", got)
	}
}

func TestSuperRound(t *testing.T) {
	gs := DefaultGraphicsState()
	// Period 1, phase 0, threshold 1/2: the same as round to grid.
	gs.setSuperRound(0x4000, 0x48)
	gs.RoundState = RoundSuper
	if gs.Period != 64 || gs.Phase != 0 || gs.Threshold != 32 {
		t.Fatalf("got period %d, phase %d, threshold %d, want 64, 0, 32", gs.Period, gs.Phase, gs.Threshold)
	}
	for _, tc := range [][2]fixed.Int26_6{{100, 128}, {90, 64}, {-100, -128}} {
		if got := gs.Round(tc[0], 0); got != tc[1] {
			t.Errorf("SROUND: Round(%d) = %d, want %d", tc[0], got, tc[1])
		}
	}
	// Period 2, phase 1/2.
	gs.setSuperRound(0x4000, 0xA8)
	if gs.Period != 128 || gs.Phase != 64 {
		t.Fatalf("got period %d, phase %d, want 128, 64", gs.Period, gs.Phase)
	}
	if got := gs.Round(100, 0); got != 64 {
		t.Errorf("SROUND: Round(100) = %d, want 64", got)
	}
}
