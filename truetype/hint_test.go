// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

//go:build !nohint

package truetype

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/image/math/fixed"
)

func newTestExecContext(t *testing.T, cfg ExecConfig, m *SizeMetrics, cvt []fixed.Int26_6) *ExecContext {
	t.Helper()
	twilight, err := NewZone(4, 0)
	if err != nil {
		t.Fatalf("NewZone: %v", err)
	}
	if cfg.StackSize == 0 {
		cfg.StackSize = 64
	}
	if cfg.StorageSize == 0 {
		cfg.StorageSize = 8
	}
	if cfg.FunctionDefs == 0 {
		cfg.FunctionDefs = 8
	}
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = 1000
	}
	c, err := NewExecContext(cfg, m, cvt, twilight)
	if err != nil {
		t.Fatalf("NewExecContext: %v", err)
	}
	return c
}

func TestBytecode(t *testing.T) {
	testCases := []struct {
		desc   string
		prog   []byte
		want   []int32
		errStr string
	}{
		{
			"underflow",
			[]byte{
				opDUP,
			},
			nil,
			"underflow",
		},
		{
			"stack ops",
			[]byte{
				opPUSHB010, // [10, 20, 30]
				10,
				20,
				30,
				opCLEAR,    // []
				opPUSHB010, // [40, 50, 60]
				40,
				50,
				60,
				opSWAP,     // [40, 60, 50]
				opDUP,      // [40, 60, 50, 50]
				opDUP,      // [40, 60, 50, 50, 50]
				opPOP,      // [40, 60, 50, 50]
				opDEPTH,    // [40, 60, 50, 50, 4]
				opCINDEX,   // [40, 60, 50, 50, 40]
				opPUSHB000, // [40, 60, 50, 50, 40, 4]
				4,
				opMINDEX, // [40, 50, 50, 40, 60]
			},
			[]int32{40, 50, 50, 40, 60},
			"",
		},
		{
			"push ops",
			[]byte{
				opPUSHB000, // [255]
				255,
				opPUSHW001, // [255, -2, 253]
				255,
				254,
				0,
				253,
				opNPUSHB, // [1, -2, 253, 1, 2]
				2,
				1,
				2,
				opNPUSHW, // [1, -2, 253, 1, 2, 0x0405, 0x0607, 0x0809]
				3,
				4,
				5,
				6,
				7,
				8,
				9,
			},
			[]int32{255, -2, 253, 1, 2, 0x0405, 0x0607, 0x0809},
			"",
		},
		{
			"truncated push",
			[]byte{
				opPUSHW000,
				1,
			},
			nil,
			"insufficient data",
		},
		{
			"comparison ops",
			[]byte{
				opPUSHB001, // [10, 20]
				10,
				20,
				opLT,       // [1]
				opPUSHB001, // [1, 10, 20]
				10,
				20,
				opLTEQ,     // [1, 1]
				opPUSHB001, // [1, 1, 10, 20]
				10,
				20,
				opGT,       // [1, 1, 0]
				opPUSHB001, // [1, 1, 0, 10, 20]
				10,
				20,
				opGTEQ, // [1, 1, 0, 0]
				opEQ,   // [1, 1, 1]
				opNEQ,  // [1, 0]
			},
			[]int32{1, 0},
			"",
		},
		{
			"logical ops",
			[]byte{
				opPUSHB010, // [0, 10, 20]
				0,
				10,
				20,
				opAND, // [0, 1]
				opOR,  // [1]
				opNOT, // [0]
			},
			[]int32{0},
			"",
		},
		{
			"arithmetic ops",
			// Calculate abs((-(1 - (2*3)))/2 + 1/64).
			// The answer is 5/2 + 1/64 in ideal numbers, or 161 in 26.6 fixed point math.
			[]byte{
				opPUSHB010, // [64, 128, 192]
				1 << 6,
				2 << 6,
				3 << 6,
				opMUL,      // [64, 384]
				opSUB,      // [-320]
				opNEG,      // [320]
				opPUSHB000, // [320, 128]
				2 << 6,
				opDIV,      // [160]
				opPUSHB000, // [160, 1]
				1,
				opADD, // [161]
				opABS, // [161]
			},
			[]int32{161},
			"",
		},
		{
			"division by zero",
			[]byte{
				opPUSHB001, // [64, 0]
				64,
				0,
				opDIV,
			},
			nil,
			"division by zero",
		},
		{
			"floor, ceiling",
			[]byte{
				opPUSHB000, // [96]
				96,
				opFLOOR,    // [64]
				opPUSHB000, // [64, 96]
				96,
				opCEILING, // [64, 128]
			},
			[]int32{64, 128},
			"",
		},
		{
			"min, max, roll",
			[]byte{
				opPUSHB011, // [3, 1, 2, 9]
				3,
				1,
				2,
				9,
				opMAX,      // [3, 1, 9]
				opROLL,     // [1, 9, 3]
				opPUSHB000, // [1, 9, 3, 5]
				5,
				opMIN, // [1, 9, 3]
			},
			[]int32{1, 9, 3},
			"",
		},
		{
			"rounding",
			[]byte{
				opPUSHB000, // [96]
				96,
				opROUND00,  // [128]
				opRTHG,     // [128]
				opPUSHB000, // [128, 96]
				96,
				opROUND00, // [128, 96]
				opRDTG,    // [128, 96]
				opROUND00, // [128, 64]
			},
			[]int32{128, 64},
			"",
		},
		{
			"if, else",
			[]byte{
				opPUSHB000, // [0]
				0,
				opIF,
				opPUSHB000,
				1,
				opELSE,
				opPUSHB000, // [2]
				2,
				opEIF,
				opPUSHB000, // [2, 1]
				1,
				opIF,
				opPUSHB000, // [2, 3]
				3,
				opELSE,
				opPUSHB000,
				4,
				opEIF,
			},
			[]int32{2, 3},
			"",
		},
		{
			"nested if",
			[]byte{
				opPUSHB000, // [0]
				0,
				opIF,
				opPUSHB000,
				1,
				opIF,
				opPUSHB000,
				5,
				opEIF,
				opEIF,
				opPUSHB000, // [6]
				6,
			},
			[]int32{6},
			"",
		},
		{
			"unbalanced if",
			[]byte{
				opPUSHB000,
				0,
				opIF,
				opPUSHB000,
				1,
			},
			nil,
			"unbalanced",
		},
		{
			"jumps",
			[]byte{
				opPUSHB000, // [3]
				3,
				opJMPR,     // []
				opPUSHB000, // skipped
				7,
				opPUSHB001, // [3, 0]
				3,
				0,
				opJROF,     // []
				opPUSHB000, // skipped
				8,
				opPUSHB000, // [9]
				9,
			},
			[]int32{9},
			"",
		},
		{
			"unbounded jump",
			[]byte{
				opPUSHW000, // [-3]
				0xff,
				0xfd,
				opJMPR, // Back to the PUSHW.
			},
			nil,
			"too many steps",
		},
		{
			"jump out of range",
			[]byte{
				opPUSHB000,
				100,
				opJMPR,
			},
			nil,
			"out of range",
		},
		{
			"function call",
			[]byte{
				opPUSHB000, // [0]
				0,
				opFDEF, // []
				opPUSHB000,
				7,
				opENDF,
				opPUSHB000, // [0]
				0,
				opCALL,     // [7]
				opPUSHB000, // [7, 8]
				8,
			},
			[]int32{7, 8},
			"",
		},
		{
			"loop call",
			[]byte{
				opPUSHB000, // [1]
				1,
				opFDEF, // []
				opPUSHB000,
				1,
				opENDF,
				opPUSHB001, // [3, 1]
				3,
				1,
				opLOOPCALL, // [1, 1, 1]
			},
			[]int32{1, 1, 1},
			"",
		},
		{
			"undefined function",
			[]byte{
				opPUSHB000,
				5,
				opCALL,
			},
			nil,
			"undefined function",
		},
		{
			"recursion",
			[]byte{
				opPUSHB000, // [0]
				0,
				opFDEF, // []
				opPUSHB000,
				0,
				opCALL,
				opENDF,
				opPUSHB000, // [0]
				0,
				opCALL,
			},
			nil,
			"call stack",
		},
		{
			"nested definition",
			[]byte{
				opPUSHB001,
				0,
				1,
				opFDEF,
				opFDEF,
				opENDF,
				opENDF,
			},
			nil,
			"unbalanced",
		},
		{
			"stray ENDF",
			[]byte{
				opENDF,
			},
			nil,
			"call stack",
		},
		{
			"instruction definition",
			[]byte{
				opPUSHB000, // [0x83]
				0x83,
				opIDEF, // []
				opPUSHB000,
				9,
				opENDF,
				0x83, // [9]
			},
			[]int32{9},
			"",
		},
		{
			"unknown opcode",
			[]byte{
				0x83,
			},
			nil,
			"unrecognized instruction",
		},
		{
			"storage",
			[]byte{
				opPUSHB001, // [2, 42]
				2,
				42,
				opWS,       // []
				opPUSHB000, // [2]
				2,
				opRS, // [42]
			},
			[]int32{42},
			"",
		},
		{
			"storage out of range",
			[]byte{
				opPUSHB001,
				100,
				42,
				opWS,
			},
			nil,
			"out of range",
		},
		{
			"control values",
			[]byte{
				opPUSHB001, // [1, 128]
				1,
				128,
				opWCVTP,    // []
				opPUSHB000, // [1]
				1,
				opRCVT,     // [128]
				opPUSHB000, // [128, 0]
				0,
				opRCVT, // [128, 100]
			},
			[]int32{128, 100},
			"",
		},
		{
			"control value out of range",
			[]byte{
				opPUSHB000,
				2,
				opRCVT,
			},
			nil,
			"out of range",
		},
		{
			"getinfo",
			[]byte{
				opPUSHB000, // [1]
				1,
				opGETINFO,  // [35]
				opPUSHB000, // [35, 6]
				6,
				opGETINFO, // [35, 0]
			},
			[]int32{35, 0},
			"",
		},
		{
			"projection vector",
			[]byte{
				opSVTCA0, // []
				opGPV,    // [0, 0x4000]
				opSFVTCA1,
				opGFV, // [0, 0x4000, 0x4000, 0]
			},
			[]int32{0, 0x4000, 0x4000, 0},
			"",
		},
	}

	for _, tc := range testCases {
		c := newTestExecContext(t, ExecConfig{}, nil, []fixed.Int26_6{100, 0})
		err, errStr := c.Run(tc.prog, FontProgram), ""
		if err != nil {
			errStr = err.Error()
		}
		if tc.errStr != "" {
			if errStr == "" {
				t.Errorf("%s: got no error, want %q", tc.desc, tc.errStr)
			} else if !strings.Contains(errStr, tc.errStr) {
				t.Errorf("%s: got error %q, want one containing %q", tc.desc, errStr, tc.errStr)
			}
			continue
		}
		if errStr != "" {
			t.Errorf("%s: got error %q, want none", tc.desc, errStr)
			continue
		}
		got := c.Stack()
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.desc, got, tc.want)
			continue
		}
	}
}

func TestInterpreterErrorUnwraps(t *testing.T) {
	c := newTestExecContext(t, ExecConfig{}, nil, nil)
	err := c.Run([]byte{opPUSHB000, 0, opPOP, opPOP}, GlyphProgram)
	var ie *InterpreterError
	if !errors.As(err, &ie) {
		t.Fatalf("got %v, want an *InterpreterError", err)
	}
	if !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("got %v, want ErrStackUnderflow", err)
	}
	if ie.Range != GlyphProgram || ie.Opcode != opPOP || ie.PC != 3 {
		t.Errorf("got range %v, opcode 0x%02x, pc %d, want glyf, 0x%02x, 3", ie.Range, ie.Opcode, ie.PC, opPOP)
	}
}

func TestDefinitionsOnlyInFontProgram(t *testing.T) {
	prog := []byte{opPUSHB000, 0, opFDEF, opENDF}
	for _, rng := range []CodeRange{ControlProgram, GlyphProgram} {
		c := newTestExecContext(t, ExecConfig{}, nil, nil)
		if err := c.Run(prog, rng); !errors.Is(err, ErrDefinitionOutsideFontProgram) {
			t.Errorf("%v: got %v, want ErrDefinitionOutsideFontProgram", rng, err)
		}
	}
	c := newTestExecContext(t, ExecConfig{}, nil, nil)
	if err := c.Run(prog, FontProgram); err != nil {
		t.Fatalf("fpgm: %v", err)
	}
	if !c.HasFunction(0) {
		t.Error("function 0 not defined by the font program")
	}
	// Definitions survive into later runs.
	if err := c.Run([]byte{opPUSHB000, 0, opCALL}, GlyphProgram); err != nil {
		t.Errorf("glyf: %v", err)
	}
}

func TestStepBudget(t *testing.T) {
	c := newTestExecContext(t, ExecConfig{MaxSteps: 10}, nil, nil)
	loop := []byte{opPUSHW000, 0xff, 0xfd, opJMPR}
	if err := c.Run(loop, GlyphProgram); !errors.Is(err, ErrStepBudget) {
		t.Fatalf("got %v, want ErrStepBudget", err)
	}
	// The budget is per run.
	prog := []byte{opPUSHB000, 1, opPOP, opPUSHB000, 1, opPOP}
	if err := c.Run(prog, GlyphProgram); err != nil {
		t.Errorf("short program after budget failure: %v", err)
	}
}

func TestStackOverflow(t *testing.T) {
	c := newTestExecContext(t, ExecConfig{StackSize: 2}, nil, nil)
	if err := c.Run([]byte{opPUSHB010, 1, 2, 3}, GlyphProgram); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("push: got %v, want ErrStackOverflow", err)
	}
	if err := c.Run([]byte{opPUSHB001, 1, 2, opDUP}, GlyphProgram); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("DUP: got %v, want ErrStackOverflow", err)
	}
}

func TestLenientIndexes(t *testing.T) {
	c := newTestExecContext(t, ExecConfig{Lenient: true}, nil, []fixed.Int26_6{100})
	prog := []byte{
		opPUSHB001, // [100, 42]
		100,
		42,
		opWS,       // []
		opPUSHB000, // [100]
		100,
		opRS,       // [0]
		opPUSHB001, // [0, 9, 64]
		9,
		64,
		opWCVTP,    // [0]
		opPUSHB000, // [0, 9]
		9,
		opRCVT, // [0, 0]
	}
	if err := c.Run(prog, GlyphProgram); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := c.Stack(), []int32{0, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestInstructionControlOnlyInControlProgram(t *testing.T) {
	prog := []byte{opPUSHB001, 1, 1, opINSTCTRL}
	c := newTestExecContext(t, ExecConfig{}, nil, nil)
	if err := c.Run(prog, GlyphProgram); err != nil {
		t.Fatalf("glyf: %v", err)
	}
	if c.GS.InstructControl != 0 {
		t.Errorf("glyf: InstructControl = %#x, want 0", c.GS.InstructControl)
	}
	if err := c.Run(prog, ControlProgram); err != nil {
		t.Fatalf("prep: %v", err)
	}
	if c.GS.InstructControl != instructControlNoGlyphPrograms {
		t.Errorf("prep: InstructControl = %#x, want %#x", c.GS.InstructControl, instructControlNoGlyphPrograms)
	}
	if err := c.Run([]byte{opPUSHB001, 1, 3, opINSTCTRL}, ControlProgram); !errors.Is(err, ErrBadArgument) {
		t.Errorf("bad selector: got %v, want ErrBadArgument", err)
	}
}

func TestControlValueRatio(t *testing.T) {
	var m SizeMetrics
	m.ResetHeight(14, 10, fixedOne, fixedOne, nil)
	c := newTestExecContext(t, ExecConfig{}, &m, []fixed.Int26_6{64})
	prog := []byte{
		opPUSHB000, // [0]
		0,
		opRCVT,     // [64]
		opMPPEM,    // [64, 14]
		opSVTCA0,   // Measure along y.
		opPUSHB000, // [64, 14, 0]
		0,
		opRCVT,  // [64, 14, 46]
		opMPPEM, // [64, 14, 46, 10]
	}
	if err := c.Run(prog, GlyphProgram); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := c.Stack(), []int32{64, 14, 46, 10}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	// Writing along y stores the value back at the x scale.
	write := []byte{opSVTCA0, opPUSHB001, 0, 46, opWCVTP}
	if err := c.Run(write, GlyphProgram); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.cvt[0]; got != 64 {
		t.Errorf("stored control value: got %d, want 64", got)
	}
}

func TestMoveAndInterpolate(t *testing.T) {
	c := newTestExecContext(t, ExecConfig{}, nil, nil)
	z, err := NewZone(3, 1)
	if err != nil {
		t.Fatalf("NewZone: %v", err)
	}
	pts := []fixed.Point26_6{{X: 100, Y: 0}, {X: 200, Y: 0}, {X: 300, Y: 0}}
	copy(z.Orig, pts)
	copy(z.Cur, pts)
	z.Ends = append(z.Ends, 3)
	c.SetGlyphZone(z)
	prog := []byte{
		opPUSHB000, // Round point 0 to 128.
		0,
		opMDAP1,
		opPUSHB000, // Move point 2 right by one pixel.
		2,
		opPUSHB000,
		64,
		opSHPIX,
		opIUP1, // Interpolate point 1 in x.
	}
	if err := c.Run(prog, GlyphProgram); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []fixed.Point26_6{{X: 128, Y: 0}, {X: 246, Y: 0}, {X: 364, Y: 0}}
	if got := z.Cur[:3]; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if z.Tags[1]&tagTouchedX != 0 {
		t.Error("IUP touched the interpolated point")
	}
	if z.Tags[0]&tagTouchedX == 0 || z.Tags[2]&tagTouchedX == 0 {
		t.Error("moved points not touched")
	}
}

func TestTwilightZoneSetup(t *testing.T) {
	c := newTestExecContext(t, ExecConfig{}, nil, []fixed.Int26_6{320})
	prog := []byte{
		opPUSHB000, // zp0 = twilight
		0,
		opSZP0,
		opPUSHB001, // MIAP point 1 to control value 0, unrounded.
		1,
		0,
		opMIAP0,
	}
	if err := c.Run(prog, ControlProgram); err != nil {
		t.Fatalf("Run: %v", err)
	}
	tw := c.Twilight()
	want := fixed.Point26_6{X: 320}
	if tw.Orig[1] != want || tw.Cur[1] != want {
		t.Errorf("twilight point 1: orig %v cur %v, want %v", tw.Orig[1], tw.Cur[1], want)
	}
	if c.GS.RP[0] != 1 || c.GS.RP[1] != 1 {
		t.Errorf("reference points: got %v, want rp0 = rp1 = 1", c.GS.RP)
	}
}

func TestGlyphZoneMissing(t *testing.T) {
	c := newTestExecContext(t, ExecConfig{}, nil, nil)
	if err := c.Run([]byte{opPUSHB000, 0, opMDAP0}, FontProgram); !errors.Is(err, ErrRange) {
		t.Errorf("got %v, want ErrRange", err)
	}
}

func TestDeltaP(t *testing.T) {
	var m SizeMetrics
	m.ResetHeight(12, 12, fixedOne, fixedOne, nil)
	c := newTestExecContext(t, ExecConfig{}, &m, nil)
	z, err := NewZone(1, 1)
	if err != nil {
		t.Fatalf("NewZone: %v", err)
	}
	z.Ends = append(z.Ends, 1)
	c.SetGlyphZone(z)
	// Delta base 9, shift 3: the arg 0x3F means ppem 12, step +8 eighths.
	prog := []byte{
		opPUSHB010,
		0x3F,
		0,
		1,
		opDELTAP1,
	}
	if err := c.Run(prog, GlyphProgram); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := z.Cur[0].X; got != 64 {
		t.Errorf("got x = %d, want 64", got)
	}
}

func TestNewExecContextLimits(t *testing.T) {
	_, err := NewExecContext(ExecConfig{StackSize: MaxStackSize + 1}, nil, nil, nil)
	var ae *AllocationError
	if !errors.As(err, &ae) {
		t.Fatalf("got %v, want an *AllocationError", err)
	}
	if ae.What != "stack" {
		t.Errorf("got %q, want stack", ae.What)
	}
}
