// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"golang.org/x/image/math/fixed"
)

// RoundState selects the rounding policy of the interpreter.
type RoundState uint8

// The values match those used by the FreeType interpreter.
const (
	RoundToHalfGrid RoundState = iota
	RoundToGrid
	RoundToDoubleGrid
	RoundDownToGrid
	RoundUpToGrid
	RoundOff
	RoundSuper
	RoundSuper45
)

func (r RoundState) String() string {
	switch r {
	case RoundToHalfGrid:
		return "RTHG"
	case RoundToGrid:
		return "RTG"
	case RoundToDoubleGrid:
		return "RTDG"
	case RoundDownToGrid:
		return "RDTG"
	case RoundUpToGrid:
		return "RUTG"
	case RoundOff:
		return "ROFF"
	case RoundSuper:
		return "SROUND"
	case RoundSuper45:
		return "S45ROUND"
	}
	return "unknown"
}

func pixFloor(x fixed.Int26_6) fixed.Int26_6 { return x &^ 63 }
func pixRound(x fixed.Int26_6) fixed.Int26_6 { return (x + 32) &^ 63 }
func pixCeil(x fixed.Int26_6) fixed.Int26_6  { return (x + 63) &^ 63 }

// Round rounds the distance d by the policy in gs, adding the compensation
// for the given distance type (the low two bits of the rounding opcodes).
// The sign of d is preserved: a rounded distance never crosses zero.
func (gs *GraphicsState) Round(d fixed.Int26_6, color int) fixed.Int26_6 {
	comp := gs.Compensation[color&3]
	var v fixed.Int26_6
	switch gs.RoundState {
	case RoundToHalfGrid:
		if d >= 0 {
			if v = pixFloor(d+comp) + 32; v < 0 {
				v = 32
			}
		} else if v = -(pixFloor(comp-d) + 32); v > 0 {
			v = -32
		}
	case RoundToGrid:
		if d >= 0 {
			if v = pixRound(d + comp); v < 0 {
				v = 0
			}
		} else if v = -pixRound(comp - d); v > 0 {
			v = 0
		}
	case RoundToDoubleGrid:
		if d >= 0 {
			if v = (d + comp + 16) &^ 31; v < 0 {
				v = 0
			}
		} else if v = -((comp - d + 16) &^ 31); v > 0 {
			v = 0
		}
	case RoundDownToGrid:
		if d >= 0 {
			if v = pixFloor(d + comp); v < 0 {
				v = 0
			}
		} else if v = -pixFloor(comp - d); v > 0 {
			v = 0
		}
	case RoundUpToGrid:
		if d >= 0 {
			if v = pixCeil(d + comp); v < 0 {
				v = 0
			}
		} else if v = -pixCeil(comp - d); v > 0 {
			v = 0
		}
	case RoundOff:
		v = roundNone(d, comp)
	case RoundSuper:
		if gs.Period == 0 {
			return d
		}
		if d >= 0 {
			if v = ((d - gs.Phase + gs.Threshold + comp) &^ (gs.Period - 1)) + gs.Phase; v < 0 {
				v = gs.Phase
			}
		} else if v = -(((gs.Threshold - gs.Phase - d + comp) &^ (gs.Period - 1)) + gs.Phase); v > 0 {
			v = -gs.Phase
		}
	case RoundSuper45:
		if gs.Period == 0 {
			return d
		}
		if d >= 0 {
			if v = ((d-gs.Phase+gs.Threshold+comp)/gs.Period)*gs.Period + gs.Phase; v < 0 {
				v = gs.Phase
			}
		} else if v = -(((gs.Threshold-gs.Phase-d+comp)/gs.Period)*gs.Period + gs.Phase); v > 0 {
			v = -gs.Phase
		}
	default:
		v = d
	}
	return v
}

// roundNone applies only the compensation, as NROUND and ROFF do.
func roundNone(d, comp fixed.Int26_6) fixed.Int26_6 {
	if d >= 0 {
		if v := d + comp; v >= 0 {
			return v
		}
		return 0
	}
	if v := d - comp; v <= 0 {
		return v
	}
	return 0
}

// setSuperRound decodes the SROUND/S45ROUND selector. gridPeriod is 1.0 or
// sqrt(2)/2 in 2.14 fixed point.
func (gs *GraphicsState) setSuperRound(gridPeriod int32, selector int32) {
	var period, phase, threshold int32
	switch selector & 0xC0 {
	case 0x00:
		period = gridPeriod / 2
	case 0x80:
		period = gridPeriod * 2
	default:
		// 0xC0 is reserved and treated as 0x40.
		period = gridPeriod
	}
	switch selector & 0x30 {
	case 0x00:
		phase = 0
	case 0x10:
		phase = period / 4
	case 0x20:
		phase = period / 2
	case 0x30:
		phase = period * 3 / 4
	}
	if selector&0x0F == 0 {
		threshold = period - 1
	} else {
		threshold = (selector&0x0F - 4) * period / 8
	}
	// Convert from 2.14 to 26.6.
	gs.Period = fixed.Int26_6(period >> 8)
	gs.Phase = fixed.Int26_6(phase >> 8)
	gs.Threshold = fixed.Int26_6(threshold >> 8)
}
