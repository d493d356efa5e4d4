// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"golang.org/x/image/math/fixed"
)

// Zone pointer values.
const (
	twilightZone = 0
	glyphZone    = 1
)

// A GraphicsState is the register file of the bytecode interpreter. The
// variables are documented at
// https://developer.apple.com/fonts/TrueType-Reference-Manual/RM04/Chap4.html
type GraphicsState struct {
	// RP holds the reference points rp0, rp1 and rp2. GEP holds the zone
	// each zone pointer zp0, zp1 and zp2 addresses.
	RP  [3]int32
	GEP [3]int32

	DualVector UnitVector
	ProjVector UnitVector
	FreeVector UnitVector

	Loop       int32
	RoundState RoundState
	// Super-rounding parameters, set by SROUND and S45ROUND.
	Period, Phase, Threshold fixed.Int26_6

	// Compensation is indexed by the distance type of the rounding
	// instructions (gray, black, white).
	Compensation [4]fixed.Int26_6

	// The values below may be changed by the font and control programs and
	// persist as defaults for glyph programs.
	MinDistance       fixed.Int26_6
	ControlValueCutIn fixed.Int26_6
	SingleWidthCutIn  fixed.Int26_6
	SingleWidthValue  fixed.Int26_6
	DeltaBase         int32
	DeltaShift        int32

	AutoFlip        bool
	InstructControl uint8
	ScanControl     bool
	ScanType        int32
}

// Instruction control bits, set by INSTCTRL.
const (
	// instructControlNoGlyphPrograms suppresses glyph programs.
	instructControlNoGlyphPrograms = 1 << 0
	// instructControlDefaultState starts glyph programs from the built-in
	// default graphics state rather than the control program's.
	instructControlDefaultState = 1 << 1
)

// DefaultGraphicsState returns the graphics state in effect before any
// bytecode runs.
func DefaultGraphicsState() GraphicsState {
	return GraphicsState{
		GEP:               [3]int32{glyphZone, glyphZone, glyphZone},
		DualVector:        xAxis,
		ProjVector:        xAxis,
		FreeVector:        xAxis,
		Loop:              1,
		RoundState:        RoundToGrid,
		MinDistance:       64,
		ControlValueCutIn: 68,
		DeltaBase:         9,
		DeltaShift:        3,
		AutoFlip:          true,
	}
}

// resetRunState resets the variables that every program run starts with,
// whatever state the previous run left behind.
func (gs *GraphicsState) resetRunState() {
	gs.GEP = [3]int32{glyphZone, glyphZone, glyphZone}
	gs.ProjVector = xAxis
	gs.FreeVector = xAxis
	gs.DualVector = xAxis
	gs.RoundState = RoundToGrid
	gs.Loop = 1
}

// resetAfterControlProgram undoes the changes that the control program may
// not pass on to glyph programs.
func (gs *GraphicsState) resetAfterControlProgram() {
	gs.RP = [3]int32{}
	gs.GEP = [3]int32{glyphZone, glyphZone, glyphZone}
	gs.DualVector = xAxis
	gs.ProjVector = xAxis
	gs.FreeVector = xAxis
	gs.Loop = 1
}
