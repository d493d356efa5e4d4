// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

//go:build !nohint

package truetype

// This file implements a Truetype bytecode interpreter.
// The opcodes are described at
// https://developer.apple.com/fonts/TrueType-Reference-Manual/RM05/Chap5.html

import (
	"golang.org/x/image/math/fixed"
)

// Limits on the execution context. The maxp table stores the requested sizes
// as uint16; the stack gets some slack on top of that.
const (
	MaxStackSize    = 0xFFFF + 0x100
	MaxStorageSize  = 0xFFFF
	MaxFunctionDefs = 0xFFFF
)

// interpreterVersion is reported by GETINFO selector bit 0.
const interpreterVersion = 35

// ExecConfig sizes and configures an ExecContext.
type ExecConfig struct {
	StackSize    int
	StorageSize  int
	FunctionDefs int
	// MaxSteps bounds the number of instructions of a single program run.
	MaxSteps int
	// MaxCallDepth bounds the nesting of CALL, LOOPCALL and IDEF calls.
	MaxCallDepth int
	// Lenient makes out-of-range control value and storage indexes read as
	// zero and ignores writes to them, instead of failing.
	Lenient bool
}

type funcDef struct {
	body    []byte
	defined bool
}

type callFrame struct {
	// program and pc are the caller's, pc pointing at the calling opcode.
	program []byte
	pc      int
	body    []byte
	count   int32
}

// An ExecContext runs the three tiers of TrueType bytecode against a
// GraphicsState and two zones. A Size owns exactly one ExecContext; it is
// not safe for concurrent use.
type ExecContext struct {
	GS GraphicsState

	metrics   *SizeMetrics
	cvt       []fixed.Int26_6
	stack     []int32
	top       int
	storage   []int32
	fdefs     []funcDef
	idefs     [256]funcDef
	zones     [2]*Zone
	pointSize fixed.Int26_6
	cfg       ExecConfig

	// Per-run state.
	rng      CodeRange
	program  []byte
	pc       int
	opcode   uint8
	calls    []callFrame
	overflow error
}

// NewExecContext returns an execution context that reads and writes control
// values through m and cvt and uses twilight as its twilight zone.
func NewExecContext(cfg ExecConfig, m *SizeMetrics, cvt []fixed.Int26_6, twilight *Zone) (*ExecContext, error) {
	switch {
	case cfg.StackSize < 0 || cfg.StackSize > MaxStackSize:
		return nil, &AllocationError{What: "stack", Requested: cfg.StackSize, Limit: MaxStackSize}
	case cfg.StorageSize < 0 || cfg.StorageSize > MaxStorageSize:
		return nil, &AllocationError{What: "storage", Requested: cfg.StorageSize, Limit: MaxStorageSize}
	case cfg.FunctionDefs < 0 || cfg.FunctionDefs > MaxFunctionDefs:
		return nil, &AllocationError{What: "function definitions", Requested: cfg.FunctionDefs, Limit: MaxFunctionDefs}
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaultMaxSteps
	}
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = defaultMaxCallDepth
	}
	if m == nil {
		m = &SizeMetrics{XRatio: fixedOne, YRatio: fixedOne, Ratio: fixedOne, Scale: fixedOne, XScale: fixedOne, YScale: fixedOne}
	}
	return &ExecContext{
		GS:      DefaultGraphicsState(),
		metrics: m,
		cvt:     cvt,
		stack:   make([]int32, cfg.StackSize),
		storage: make([]int32, cfg.StorageSize),
		fdefs:   make([]funcDef, cfg.FunctionDefs),
		zones:   [2]*Zone{twilight, nil},
		cfg:     cfg,
		calls:   make([]callFrame, 0, cfg.MaxCallDepth),
	}, nil
}

// SetGlyphZone binds z as the glyph zone for subsequent runs.
func (c *ExecContext) SetGlyphZone(z *Zone) { c.zones[glyphZone] = z }

// GlyphZone returns the bound glyph zone.
func (c *ExecContext) GlyphZone() *Zone { return c.zones[glyphZone] }

// Twilight returns the twilight zone.
func (c *ExecContext) Twilight() *Zone { return c.zones[twilightZone] }

// Stack returns the values left on the stack by the last run.
func (c *ExecContext) Stack() []int32 { return c.stack[:c.top] }

// Storage returns the storage area.
func (c *ExecContext) Storage() []int32 { return c.storage }

// HasFunction reports whether function n has been defined.
func (c *ExecContext) HasFunction(n int) bool {
	return n >= 0 && n < len(c.fdefs) && c.fdefs[n].defined
}

// clearDefinitions forgets every function and instruction definition.
func (c *ExecContext) clearDefinitions() {
	for i := range c.fdefs {
		c.fdefs[i] = funcDef{}
	}
	c.idefs = [256]funcDef{}
}

// clearStorage zeroes the storage area.
func (c *ExecContext) clearStorage() {
	for i := range c.storage {
		c.storage[i] = 0
	}
}

// Done releases the context's buffers.
func (c *ExecContext) Done() {
	if c == nil {
		return
	}
	c.stack, c.storage, c.fdefs, c.calls = nil, nil, nil, nil
	c.idefs = [256]funcDef{}
	c.zones = [2]*Zone{}
	c.cvt = nil
}

func (c *ExecContext) fail(err error) error {
	return &InterpreterError{Range: c.rng, Opcode: c.opcode, PC: c.pc, Err: err}
}

func (c *ExecContext) noteOverflow(what string) {
	if diagnostics && c.overflow == nil {
		c.overflow = &OverflowError{What: what}
	}
}

func (c *ExecContext) pop() int32 {
	c.top--
	return c.stack[c.top]
}

func (c *ExecContext) push(v int32) {
	c.stack[c.top] = v
	c.top++
}

// zone returns the zone addressed by zone pointer zp.
func (c *ExecContext) zone(zp int) *Zone {
	return c.zones[c.GS.GEP[zp]]
}

// pointZone returns the zone addressed by zone pointer zp, checking that
// point i is within it.
func (c *ExecContext) pointZone(zp int, i int32) (*Zone, error) {
	z := c.zone(zp)
	if z == nil || i < 0 || int(i) >= len(z.Cur) {
		return nil, ErrRange
	}
	return z, nil
}

func (c *ExecContext) setProjVector(v UnitVector) {
	c.GS.ProjVector = v
	if !c.metrics.Reset(v) {
		c.noteOverflow("projection ratio")
	}
}

func (c *ExecContext) project(p, q fixed.Point26_6) fixed.Int26_6 {
	return dotProduct(p.X-q.X, p.Y-q.Y, c.GS.ProjVector)
}

func (c *ExecContext) dualProject(p, q fixed.Point26_6) fixed.Int26_6 {
	return dotProduct(p.X-q.X, p.Y-q.Y, c.GS.DualVector)
}

// fDotP returns the dot product of the freedom and projection vectors in
// 2.14, replaced by 1.0 when the vectors are almost perpendicular.
func (c *ExecContext) fDotP() int64 {
	fv, pv := c.GS.FreeVector, c.GS.ProjVector
	d := (int64(fv[0])*int64(pv[0]) + int64(fv[1])*int64(pv[1])) >> 14
	if d > -0x400 && d < 0x400 {
		d = 0x4000
	}
	return d
}

// move moves point i of z so that its projection changes by d, along the
// freedom vector, and marks it as touched.
func (c *ExecContext) move(z *Zone, i int, d fixed.Int26_6) {
	fv, pv := c.GS.FreeVector, c.GS.ProjVector
	if fv == xAxis && pv == xAxis {
		z.Cur[i].X += d
		z.Tags[i] |= tagTouchedX
		return
	}
	if fv == yAxis && pv == yAxis {
		z.Cur[i].Y += d
		z.Tags[i] |= tagTouchedY
		return
	}
	fdotp := c.fDotP()
	if fv[0] != 0 {
		z.Cur[i].X += fixed.Int26_6(mulDiv(int64(d), int64(fv[0]), fdotp))
		z.Tags[i] |= tagTouchedX
	}
	if fv[1] != 0 {
		z.Cur[i].Y += fixed.Int26_6(mulDiv(int64(d), int64(fv[1]), fdotp))
		z.Tags[i] |= tagTouchedY
	}
}

// moveOrig is like move but changes the original position and touches
// nothing.
func (c *ExecContext) moveOrig(z *Zone, i int, d fixed.Int26_6) {
	fv := c.GS.FreeVector
	fdotp := c.fDotP()
	if fv[0] != 0 {
		z.Orig[i].X += fixed.Int26_6(mulDiv(int64(d), int64(fv[0]), fdotp))
	}
	if fv[1] != 0 {
		z.Orig[i].Y += fixed.Int26_6(mulDiv(int64(d), int64(fv[1]), fdotp))
	}
}

// shift adds (dx, dy) to point i of z along the non-zero freedom vector
// axes.
func (c *ExecContext) shift(z *Zone, i int, dx, dy fixed.Int26_6, touch bool) {
	if c.GS.FreeVector[0] != 0 {
		z.Cur[i].X += dx
		if touch {
			z.Tags[i] |= tagTouchedX
		}
	}
	if c.GS.FreeVector[1] != 0 {
		z.Cur[i].Y += dy
		if touch {
			z.Tags[i] |= tagTouchedY
		}
	}
}

// displacement returns how far the reference point used by SHP, SHC and SHZ
// has moved, along the freedom vector. Opcodes with the low bit set use rp1
// in zp0, the others rp2 in zp1.
func (c *ExecContext) displacement() (z *Zone, ref int, dx, dy fixed.Int26_6, err error) {
	zp, rp := 1, c.GS.RP[2]
	if c.opcode&1 != 0 {
		zp, rp = 0, c.GS.RP[1]
	}
	if z, err = c.pointZone(zp, rp); err != nil {
		return nil, 0, 0, 0, err
	}
	d := c.project(z.Cur[rp], z.Orig[rp])
	fdotp := c.fDotP()
	dx = fixed.Int26_6(mulDiv(int64(d), int64(c.GS.FreeVector[0]), fdotp))
	dy = fixed.Int26_6(mulDiv(int64(d), int64(c.GS.FreeVector[1]), fdotp))
	return z, int(rp), dx, dy, nil
}

func (c *ExecContext) readCVT(i int32) (fixed.Int26_6, error) {
	if i < 0 || int(i) >= len(c.cvt) {
		if c.cfg.Lenient {
			return 0, nil
		}
		return 0, ErrRange
	}
	v, ok := c.metrics.ReadCVT(c.cvt[i])
	if !ok {
		c.noteOverflow("control value read")
	}
	return v, nil
}

// writeCVT stores v, measured in current pixels, as control value i.
func (c *ExecContext) writeCVT(i int32, v fixed.Int26_6) error {
	if i < 0 || int(i) >= len(c.cvt) {
		if c.cfg.Lenient {
			return nil
		}
		return ErrRange
	}
	s, ok := c.metrics.WriteCVT(v)
	if !ok {
		c.noteOverflow("control value write")
	}
	c.cvt[i] = s
	return nil
}

func (c *ExecContext) moveCVT(i int32, d fixed.Int26_6) error {
	v, err := c.readCVT(i)
	if err != nil {
		return err
	}
	return c.writeCVT(i, v+d)
}

func (c *ExecContext) checkStorage(i int32) (ok bool, err error) {
	if i < 0 || int(i) >= len(c.storage) {
		if c.cfg.Lenient {
			return false, nil
		}
		return false, ErrRange
	}
	return true, nil
}

// Run executes program as the given tier of bytecode. Each run starts with
// an empty stack and with the zone pointers, vectors, rounding state and
// loop counter reset; the rest of GS carries over from the caller.
func (c *ExecContext) Run(program []byte, rng CodeRange) error {
	c.rng = rng
	c.program, c.pc = program, 0
	c.top = 0
	c.calls = c.calls[:0]
	c.overflow = nil
	c.GS.resetRunState()
	c.setProjVector(xAxis)
	if err := c.exec(); err != nil {
		return err
	}
	if diagnostics && c.overflow != nil {
		return c.fail(c.overflow)
	}
	return nil
}

func (c *ExecContext) exec() error {
	steps := 0
	for {
		if c.pc >= len(c.program) {
			if len(c.calls) == 0 {
				return nil
			}
			// A function body always ends with ENDF, so running off its
			// end means a jump escaped it.
			return c.fail(ErrCallStack)
		}
		steps++
		if steps > c.cfg.MaxSteps {
			return c.fail(ErrStepBudget)
		}
		if diagnostics && c.overflow != nil {
			return c.fail(c.overflow)
		}
		c.opcode = c.program[c.pc]
		opcode := c.opcode
		if popCount[opcode] == q {
			if err := c.callInstruction(opcode); err != nil {
				return c.fail(err)
			}
			continue
		}
		if c.top < int(popCount[opcode]) {
			return c.fail(ErrStackUnderflow)
		}
		if c.top-int(popCount[opcode])+int(pushCount[opcode]) > len(c.stack) {
			return c.fail(ErrStackOverflow)
		}

		var err error
		switch opcode {
		case opSVTCA0:
			c.setProjVector(yAxis)
			c.GS.FreeVector = yAxis
			c.GS.DualVector = yAxis

		case opSVTCA1:
			c.setProjVector(xAxis)
			c.GS.FreeVector = xAxis
			c.GS.DualVector = xAxis

		case opSPVTCA0:
			c.setProjVector(yAxis)
			c.GS.DualVector = yAxis

		case opSPVTCA1:
			c.setProjVector(xAxis)
			c.GS.DualVector = xAxis

		case opSFVTCA0:
			c.GS.FreeVector = yAxis

		case opSFVTCA1:
			c.GS.FreeVector = xAxis

		case opSPVTL0, opSPVTL1, opSFVTL0, opSFVTL1:
			err = c.vectorToLine(opcode)

		case opSPVFS, opSFVFS:
			c.top -= 2
			v := normalize(int64(int16(c.stack[c.top])), int64(int16(c.stack[c.top+1])))
			if opcode == opSPVFS {
				c.setProjVector(v)
				c.GS.DualVector = v
			} else {
				c.GS.FreeVector = v
			}

		case opGPV:
			c.push(int32(c.GS.ProjVector[0]))
			c.push(int32(c.GS.ProjVector[1]))

		case opGFV:
			c.push(int32(c.GS.FreeVector[0]))
			c.push(int32(c.GS.FreeVector[1]))

		case opSFVTPV:
			c.GS.FreeVector = c.GS.ProjVector

		case opISECT:
			err = c.isect()

		case opSRP0, opSRP1, opSRP2:
			c.GS.RP[opcode-opSRP0] = c.pop()

		case opSZP0, opSZP1, opSZP2, opSZPS:
			z := c.pop()
			if z != twilightZone && z != glyphZone {
				err = ErrBadArgument
				break
			}
			if opcode == opSZPS {
				c.GS.GEP = [3]int32{z, z, z}
			} else {
				c.GS.GEP[opcode-opSZP0] = z
			}

		case opSLOOP:
			n := c.pop()
			if n < 0 {
				err = ErrBadArgument
				break
			}
			if n > 0xFFFF {
				n = 0xFFFF
			}
			c.GS.Loop = n

		case opRTG:
			c.GS.RoundState = RoundToGrid

		case opRTHG:
			c.GS.RoundState = RoundToHalfGrid

		case opRTDG:
			c.GS.RoundState = RoundToDoubleGrid

		case opRDTG:
			c.GS.RoundState = RoundDownToGrid

		case opRUTG:
			c.GS.RoundState = RoundUpToGrid

		case opROFF:
			c.GS.RoundState = RoundOff

		case opSROUND, opS45ROUND:
			sel := c.pop()
			if opcode == opSROUND {
				c.GS.setSuperRound(0x4000, sel)
				c.GS.RoundState = RoundSuper
			} else {
				c.GS.setSuperRound(0x2D41, sel)
				c.GS.RoundState = RoundSuper45
			}

		case opSMD:
			c.GS.MinDistance = fixed.Int26_6(c.pop())

		case opSCVTCI:
			c.GS.ControlValueCutIn = fixed.Int26_6(c.pop())

		case opSSWCI:
			c.GS.SingleWidthCutIn = fixed.Int26_6(c.pop())

		case opSSW:
			c.GS.SingleWidthValue = c.metrics.ScaleCVT(c.pop())

		case opSDB:
			c.GS.DeltaBase = c.pop()

		case opSDS:
			s := c.pop()
			if s < 0 || s > 6 {
				err = ErrBadArgument
				break
			}
			c.GS.DeltaShift = s

		case opFLIPON:
			c.GS.AutoFlip = true

		case opFLIPOFF:
			c.GS.AutoFlip = false

		case opIF:
			if c.pop() == 0 {
				if err = c.skipConditional(true); err != nil {
					break
				}
			}

		case opELSE:
			// Reached at the end of a taken IF branch.
			err = c.skipConditional(false)

		case opEIF:
			// No-op.

		case opJMPR:
			off := c.pop()
			if off == 0 && c.top == 0 {
				err = ErrBadArgument
				break
			}
			if err = c.jump(off); err == nil {
				continue
			}

		case opJROT, opJROF:
			c.top -= 2
			off, cond := c.stack[c.top], c.stack[c.top+1]
			if (cond != 0) == (opcode == opJROT) {
				if err = c.jump(off); err == nil {
					continue
				}
			}

		case opDUP:
			c.stack[c.top] = c.stack[c.top-1]
			c.top++

		case opPOP:
			c.top--

		case opCLEAR:
			c.top = 0

		case opSWAP:
			c.stack[c.top-1], c.stack[c.top-2] = c.stack[c.top-2], c.stack[c.top-1]

		case opDEPTH:
			c.push(int32(c.top))

		case opCINDEX, opMINDEX:
			x := int(c.stack[c.top-1])
			if x <= 0 || x >= c.top {
				err = ErrRange
				break
			}
			c.stack[c.top-1] = c.stack[c.top-1-x]
			if opcode == opMINDEX {
				copy(c.stack[c.top-1-x:c.top-1], c.stack[c.top-x:c.top])
				c.top--
			}

		case opROLL:
			s := c.stack[c.top-3 : c.top]
			s[0], s[1], s[2] = s[1], s[2], s[0]

		case opNPUSHB, opNPUSHW, opPUSHB000, opPUSHB001, opPUSHB010, opPUSHB011,
			opPUSHB100, opPUSHB101, opPUSHB110, opPUSHB111, opPUSHW000, opPUSHW001,
			opPUSHW010, opPUSHW011, opPUSHW100, opPUSHW101, opPUSHW110, opPUSHW111:
			if err = c.pushData(opcode); err == nil {
				continue
			}

		case opLT:
			c.stack[c.top-2] = bool2int32(c.stack[c.top-2] < c.stack[c.top-1])
			c.top--

		case opLTEQ:
			c.stack[c.top-2] = bool2int32(c.stack[c.top-2] <= c.stack[c.top-1])
			c.top--

		case opGT:
			c.stack[c.top-2] = bool2int32(c.stack[c.top-2] > c.stack[c.top-1])
			c.top--

		case opGTEQ:
			c.stack[c.top-2] = bool2int32(c.stack[c.top-2] >= c.stack[c.top-1])
			c.top--

		case opEQ:
			c.stack[c.top-2] = bool2int32(c.stack[c.top-2] == c.stack[c.top-1])
			c.top--

		case opNEQ:
			c.stack[c.top-2] = bool2int32(c.stack[c.top-2] != c.stack[c.top-1])
			c.top--

		case opODD, opEVEN:
			v := c.GS.Round(fixed.Int26_6(c.stack[c.top-1]), 3) & 127
			if opcode == opODD {
				c.stack[c.top-1] = bool2int32(v == 64)
			} else {
				c.stack[c.top-1] = bool2int32(v == 0)
			}

		case opAND:
			c.stack[c.top-2] = bool2int32(c.stack[c.top-2] != 0 && c.stack[c.top-1] != 0)
			c.top--

		case opOR:
			c.stack[c.top-2] = bool2int32(c.stack[c.top-2]|c.stack[c.top-1] != 0)
			c.top--

		case opNOT:
			c.stack[c.top-1] = bool2int32(c.stack[c.top-1] == 0)

		case opADD:
			c.stack[c.top-2] += c.stack[c.top-1]
			c.top--

		case opSUB:
			c.stack[c.top-2] -= c.stack[c.top-1]
			c.top--

		case opDIV:
			if c.stack[c.top-1] == 0 {
				err = ErrDivideByZero
				break
			}
			v, ok := saturate(mulDivNoRound(int64(c.stack[c.top-2]), 64, int64(c.stack[c.top-1])))
			if !ok {
				c.noteOverflow("DIV")
			}
			c.stack[c.top-2] = v
			c.top--

		case opMUL:
			v, ok := saturate(mulDiv(int64(c.stack[c.top-2]), int64(c.stack[c.top-1]), 64))
			if !ok {
				c.noteOverflow("MUL")
			}
			c.stack[c.top-2] = v
			c.top--

		case opABS:
			if c.stack[c.top-1] < 0 {
				c.stack[c.top-1] = -c.stack[c.top-1]
			}

		case opNEG:
			c.stack[c.top-1] = -c.stack[c.top-1]

		case opFLOOR:
			c.stack[c.top-1] &^= 63

		case opCEILING:
			c.stack[c.top-1] += 63
			c.stack[c.top-1] &^= 63

		case opMAX:
			if c.stack[c.top-1] > c.stack[c.top-2] {
				c.stack[c.top-2] = c.stack[c.top-1]
			}
			c.top--

		case opMIN:
			if c.stack[c.top-1] < c.stack[c.top-2] {
				c.stack[c.top-2] = c.stack[c.top-1]
			}
			c.top--

		case opROUND00, opROUND01, opROUND10, opROUND11:
			c.stack[c.top-1] = int32(c.GS.Round(fixed.Int26_6(c.stack[c.top-1]), int(opcode-opROUND00)))

		case opNROUND00, opNROUND01, opNROUND10, opNROUND11:
			comp := c.GS.Compensation[opcode-opNROUND00]
			c.stack[c.top-1] = int32(roundNone(fixed.Int26_6(c.stack[c.top-1]), comp))

		case opWS:
			c.top -= 2
			i := c.stack[c.top]
			var ok bool
			if ok, err = c.checkStorage(i); ok {
				c.storage[i] = c.stack[c.top+1]
			}

		case opRS:
			i := c.stack[c.top-1]
			var ok bool
			if ok, err = c.checkStorage(i); ok {
				c.stack[c.top-1] = c.storage[i]
			} else {
				c.stack[c.top-1] = 0
			}

		case opWCVTP:
			c.top -= 2
			err = c.writeCVT(c.stack[c.top], fixed.Int26_6(c.stack[c.top+1]))

		case opWCVTF:
			c.top -= 2
			i := c.stack[c.top]
			if i < 0 || int(i) >= len(c.cvt) {
				if !c.cfg.Lenient {
					err = ErrRange
				}
				break
			}
			c.cvt[i] = c.metrics.ScaleCVT(c.stack[c.top+1])

		case opRCVT:
			var v fixed.Int26_6
			v, err = c.readCVT(c.stack[c.top-1])
			c.stack[c.top-1] = int32(v)

		case opMPPEM:
			c.push(c.metrics.CurrentPPEM())

		case opMPS:
			c.push(int32(c.pointSize))

		case opGETINFO:
			sel := c.stack[c.top-1]
			var v int32
			if sel&1 != 0 {
				v = interpreterVersion
			}
			if sel&2 != 0 && c.metrics.Rotated {
				v |= 1 << 8
			}
			if sel&4 != 0 && c.metrics.Stretched {
				v |= 1 << 9
			}
			c.stack[c.top-1] = v

		case opSCANCTRL:
			c.scanControl(c.pop())

		case opSCANTYPE:
			if v := c.pop(); v >= 0 {
				c.GS.ScanType = v & 0xFFFF
			}

		case opINSTCTRL:
			c.top -= 2
			val, sel := c.stack[c.top], c.stack[c.top+1]
			if sel < 1 || sel > 2 {
				err = ErrBadArgument
				break
			}
			// Only the control program may change instruction control.
			if c.rng != ControlProgram {
				break
			}
			bit := uint8(1) << uint(sel-1)
			c.GS.InstructControl &^= bit
			if val != 0 {
				c.GS.InstructControl |= bit
			}

		case opDEBUG, opSANGW, opAA:
			c.top--

		case opFDEF, opIDEF:
			err = c.define(opcode)

		case opENDF:
			if len(c.calls) == 0 {
				err = ErrCallStack
				break
			}
			f := &c.calls[len(c.calls)-1]
			f.count--
			if f.count > 0 {
				c.program, c.pc = f.body, 0
				continue
			}
			c.program, c.pc = f.program, f.pc
			c.calls = c.calls[:len(c.calls)-1]

		case opCALL, opLOOPCALL:
			n := c.pop()
			count := int32(1)
			if opcode == opLOOPCALL {
				count = c.pop()
			}
			if n < 0 || int(n) >= len(c.fdefs) || !c.fdefs[n].defined {
				err = ErrUndefinedFunction
				break
			}
			if count <= 0 {
				break
			}
			if err = c.call(c.fdefs[n].body, count); err == nil {
				continue
			}

		case opMDAP0, opMDAP1:
			err = c.mdap(opcode)

		case opMIAP0, opMIAP1:
			err = c.miap(opcode)

		case opIUP0, opIUP1:
			c.iup(opcode == opIUP0)

		case opSHP0, opSHP1:
			err = c.shp()

		case opSHC0, opSHC1:
			err = c.shc()

		case opSHZ0, opSHZ1:
			err = c.shz()

		case opSHPIX:
			err = c.shpix()

		case opIP:
			err = c.ip()

		case opMSIRP0, opMSIRP1:
			err = c.msirp(opcode)

		case opALIGNRP:
			err = c.alignrp()

		case opALIGNPTS:
			c.top -= 2
			p1, p2 := c.stack[c.top], c.stack[c.top+1]
			var z1, z0 *Zone
			if z1, err = c.pointZone(1, p1); err != nil {
				break
			}
			if z0, err = c.pointZone(0, p2); err != nil {
				break
			}
			d := c.project(z0.Cur[p2], z1.Cur[p1]) / 2
			c.move(z1, int(p1), d)
			c.move(z0, int(p2), -d)

		case opUTP:
			i := c.pop()
			var z *Zone
			if z, err = c.pointZone(0, i); err != nil {
				break
			}
			if c.GS.FreeVector[0] != 0 {
				z.Tags[i] &^= tagTouchedX
			}
			if c.GS.FreeVector[1] != 0 {
				z.Tags[i] &^= tagTouchedY
			}

		case opFLIPPT:
			err = c.flippt()

		case opFLIPRGON, opFLIPRGOFF:
			c.top -= 2
			lo, hi := c.stack[c.top], c.stack[c.top+1]
			var z *Zone
			if z, err = c.pointZone(0, hi); err != nil {
				break
			}
			if lo < 0 || lo > hi {
				err = ErrRange
				break
			}
			for i := lo; i <= hi; i++ {
				if opcode == opFLIPRGON {
					z.Tags[i] |= tagOnCurve
				} else {
					z.Tags[i] &^= tagOnCurve
				}
			}

		case opSCFS:
			c.top -= 2
			i, v := c.stack[c.top], fixed.Int26_6(c.stack[c.top+1])
			var z *Zone
			if z, err = c.pointZone(2, i); err != nil {
				break
			}
			c.move(z, int(i), v-dotProduct(z.Cur[i].X, z.Cur[i].Y, c.GS.ProjVector))
			if c.GS.GEP[2] == twilightZone {
				z.Orig[i] = z.Cur[i]
			}

		case opGC0, opGC1:
			i := c.stack[c.top-1]
			var z *Zone
			if z, err = c.pointZone(2, i); err != nil {
				break
			}
			if opcode == opGC0 {
				c.stack[c.top-1] = int32(dotProduct(z.Cur[i].X, z.Cur[i].Y, c.GS.ProjVector))
			} else {
				c.stack[c.top-1] = int32(dotProduct(z.Orig[i].X, z.Orig[i].Y, c.GS.DualVector))
			}

		case opMD0, opMD1:
			c.top -= 2
			l, k := c.stack[c.top], c.stack[c.top+1]
			var z0, z1 *Zone
			if z0, err = c.pointZone(0, l); err != nil {
				break
			}
			if z1, err = c.pointZone(1, k); err != nil {
				break
			}
			var d fixed.Int26_6
			if opcode == opMD1 {
				d = c.project(z0.Cur[l], z1.Cur[k])
			} else {
				d = c.dualProject(z0.Orig[l], z1.Orig[k])
			}
			c.push(int32(d))

		case opDELTAP1, opDELTAP2, opDELTAP3, opDELTAC1, opDELTAC2, opDELTAC3:
			err = c.delta(opcode)

		case opSDPVTL0, opSDPVTL1:
			err = c.sdpvtl(opcode)

		default:
			if opcode < opMDRP00000 {
				err = ErrUnknownOpcode
				break
			}
			if opcode < opMIRP00000 {
				err = c.mdrp(opcode)
			} else {
				err = c.mirp(opcode)
			}
		}
		if err != nil {
			return c.fail(err)
		}
		c.pc++
	}
}

// pushData pushes the immediate operands of a push instruction and moves pc
// past them.
func (c *ExecContext) pushData(opcode uint8) error {
	var n, width int
	switch {
	case opcode == opNPUSHB || opcode == opNPUSHW:
		c.pc++
		if c.pc >= len(c.program) {
			return ErrInsufficientData
		}
		n = int(c.program[c.pc])
		width = 1
		if opcode == opNPUSHW {
			width = 2
		}
	case opcode >= opPUSHB000 && opcode <= opPUSHB111:
		n, width = int(opcode-opPUSHB000)+1, 1
	default:
		n, width = int(opcode-opPUSHW000)+1, 2
	}
	c.pc++
	if c.top+n > len(c.stack) {
		return ErrStackOverflow
	}
	if c.pc+width*n > len(c.program) {
		return ErrInsufficientData
	}
	for ; n > 0; n-- {
		if width == 1 {
			c.stack[c.top] = int32(c.program[c.pc])
		} else {
			c.stack[c.top] = int32(int8(c.program[c.pc]))<<8 | int32(c.program[c.pc+1])
		}
		c.top++
		c.pc += width
	}
	return nil
}

// skipInstructionPayload returns the pc of the last byte of the instruction
// at pc, accounting for the inline data of push instructions.
func skipInstructionPayload(program []byte, pc int) (newPC int, ok bool) {
	switch op := program[pc]; {
	case op == opNPUSHB:
		pc++
		if pc >= len(program) {
			return 0, false
		}
		pc += int(program[pc])
	case op == opNPUSHW:
		pc++
		if pc >= len(program) {
			return 0, false
		}
		pc += 2 * int(program[pc])
	case op >= opPUSHB000 && op <= opPUSHB111:
		pc += int(op - (opPUSHB000 - 1))
	case op >= opPUSHW000 && op <= opPUSHW111:
		pc += 2 * int(op-(opPUSHW000-1))
	}
	return pc, pc < len(program)
}

// skipConditional moves pc forward past the current IF or ELSE branch. From
// a false IF it stops after the matching ELSE or EIF; from an ELSE it stops
// at the matching EIF.
func (c *ExecContext) skipConditional(fromIF bool) error {
	depth := 0
	for {
		var ok bool
		if c.pc, ok = skipInstructionPayload(c.program, c.pc); !ok {
			return ErrUnbalanced
		}
		c.pc++
		if c.pc >= len(c.program) {
			return ErrUnbalanced
		}
		switch c.program[c.pc] {
		case opIF:
			depth++
		case opELSE:
			if depth == 0 && fromIF {
				return nil
			}
		case opEIF:
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}

// jump moves pc by off relative to the jump instruction.
func (c *ExecContext) jump(off int32) error {
	pc := c.pc + int(off)
	if pc < 0 || pc > len(c.program) {
		return ErrRange
	}
	c.pc = pc
	return nil
}

// define records the function or instruction definition at pc, leaving pc
// on its ENDF.
func (c *ExecContext) define(opcode uint8) error {
	if c.rng != FontProgram {
		return ErrDefinitionOutsideFontProgram
	}
	n := c.pop()
	var def *funcDef
	if opcode == opFDEF {
		if n < 0 || int(n) >= len(c.fdefs) {
			return ErrRange
		}
		def = &c.fdefs[n]
	} else {
		if n < 0 || n > 0xFF {
			return ErrRange
		}
		def = &c.idefs[n]
	}
	start := c.pc + 1
	for {
		var ok bool
		if c.pc, ok = skipInstructionPayload(c.program, c.pc); !ok {
			return ErrUnbalanced
		}
		c.pc++
		if c.pc >= len(c.program) {
			return ErrUnbalanced
		}
		switch c.program[c.pc] {
		case opFDEF, opIDEF:
			return ErrUnbalanced
		case opENDF:
			*def = funcDef{body: c.program[start : c.pc+1], defined: true}
			return nil
		}
	}
}

// call enters body, to be run count times.
func (c *ExecContext) call(body []byte, count int32) error {
	if len(c.calls) >= c.cfg.MaxCallDepth {
		return ErrCallStack
	}
	c.calls = append(c.calls, callFrame{program: c.program, pc: c.pc, body: body, count: count})
	c.program, c.pc = body, 0
	return nil
}

// callInstruction runs the IDEF for an opcode that has no built-in meaning.
func (c *ExecContext) callInstruction(opcode uint8) error {
	if !c.idefs[opcode].defined {
		return ErrUnknownOpcode
	}
	return c.call(c.idefs[opcode].body, 1)
}

// vectorToLine implements SPVTL, SFVTL: the vector from point p2 in zp1 to
// point p1 in zp2, rotated counter-clockwise for the odd opcodes.
func (c *ExecContext) vectorToLine(opcode uint8) error {
	c.top -= 2
	p2, p1 := c.stack[c.top], c.stack[c.top+1]
	z1, err := c.pointZone(1, p2)
	if err != nil {
		return err
	}
	z2, err := c.pointZone(2, p1)
	if err != nil {
		return err
	}
	dx := int64(z1.Cur[p2].X - z2.Cur[p1].X)
	dy := int64(z1.Cur[p2].Y - z2.Cur[p1].Y)
	if opcode&1 != 0 {
		dx, dy = -dy, dx
	}
	v := normalize(dx, dy)
	if opcode <= opSPVTL1 {
		c.setProjVector(v)
		c.GS.DualVector = v
	} else {
		c.GS.FreeVector = v
	}
	return nil
}

// sdpvtl sets the dual projection vector from the original positions and
// the projection vector from the current positions.
func (c *ExecContext) sdpvtl(opcode uint8) error {
	c.top -= 2
	p2, p1 := c.stack[c.top], c.stack[c.top+1]
	z1, err := c.pointZone(1, p2)
	if err != nil {
		return err
	}
	z2, err := c.pointZone(2, p1)
	if err != nil {
		return err
	}
	ox := int64(z1.Orig[p2].X - z2.Orig[p1].X)
	oy := int64(z1.Orig[p2].Y - z2.Orig[p1].Y)
	cx := int64(z1.Cur[p2].X - z2.Cur[p1].X)
	cy := int64(z1.Cur[p2].Y - z2.Cur[p1].Y)
	if opcode&1 != 0 {
		ox, oy = -oy, ox
		cx, cy = -cy, cx
	}
	c.GS.DualVector = normalize(ox, oy)
	c.setProjVector(normalize(cx, cy))
	return nil
}

func (c *ExecContext) isect() error {
	c.top -= 5
	s := c.stack[c.top : c.top+5]
	pt, a0, a1, b0, b1 := s[0], s[1], s[2], s[3], s[4]
	zb, err := c.pointZone(0, b0)
	if err != nil {
		return err
	}
	if _, err = c.pointZone(0, b1); err != nil {
		return err
	}
	za, err := c.pointZone(1, a0)
	if err != nil {
		return err
	}
	if _, err = c.pointZone(1, a1); err != nil {
		return err
	}
	zp, err := c.pointZone(2, pt)
	if err != nil {
		return err
	}
	dbx := int64(zb.Cur[b1].X - zb.Cur[b0].X)
	dby := int64(zb.Cur[b1].Y - zb.Cur[b0].Y)
	dax := int64(za.Cur[a1].X - za.Cur[a0].X)
	day := int64(za.Cur[a1].Y - za.Cur[a0].Y)
	dx := int64(zb.Cur[b0].X - za.Cur[a0].X)
	dy := int64(zb.Cur[b0].Y - za.Cur[a0].Y)
	disc := mulDiv(dax, -dby, 0x40) + mulDiv(day, dbx, 0x40)
	dot := mulDiv(dax, dbx, 0x40) + mulDiv(day, dby, 0x40)
	abs := func(x int64) int64 { x, _ = abs64(x); return x }
	if 19*abs(disc) > abs(dot) {
		v := mulDiv(dx, -dby, 0x40) + mulDiv(dy, dbx, 0x40)
		zp.Cur[pt].X = za.Cur[a0].X + fixed.Int26_6(mulDiv(v, dax, disc))
		zp.Cur[pt].Y = za.Cur[a0].Y + fixed.Int26_6(mulDiv(v, day, disc))
	} else {
		// Parallel lines: use the middle of the four points.
		zp.Cur[pt].X = (za.Cur[a0].X + za.Cur[a1].X + zb.Cur[b0].X + zb.Cur[b1].X) / 4
		zp.Cur[pt].Y = (za.Cur[a0].Y + za.Cur[a1].Y + zb.Cur[b0].Y + zb.Cur[b1].Y) / 4
	}
	zp.Tags[pt] |= tagTouchedBoth
	return nil
}

func (c *ExecContext) scanControl(a int32) {
	switch n := a & 0xFF; {
	case n == 0xFF:
		c.GS.ScanControl = true
		return
	case n == 0:
		c.GS.ScanControl = false
		return
	}
	thresh := a & 0xFF
	ppem := c.metrics.PPEM
	if a&0x100 != 0 && ppem <= thresh {
		c.GS.ScanControl = true
	}
	if a&0x200 != 0 && c.metrics.Rotated {
		c.GS.ScanControl = true
	}
	if a&0x400 != 0 && c.metrics.Stretched {
		c.GS.ScanControl = true
	}
	if a&0x800 != 0 && ppem > thresh {
		c.GS.ScanControl = false
	}
	if a&0x1000 != 0 && c.metrics.Rotated {
		c.GS.ScanControl = false
	}
	if a&0x2000 != 0 && c.metrics.Stretched {
		c.GS.ScanControl = false
	}
}

func (c *ExecContext) mdap(opcode uint8) error {
	i := c.pop()
	z, err := c.pointZone(0, i)
	if err != nil {
		return err
	}
	var d fixed.Int26_6
	if opcode == opMDAP1 {
		cur := dotProduct(z.Cur[i].X, z.Cur[i].Y, c.GS.ProjVector)
		d = c.GS.Round(cur, 0) - cur
	}
	c.move(z, int(i), d)
	c.GS.RP[0], c.GS.RP[1] = i, i
	return nil
}

func (c *ExecContext) miap(opcode uint8) error {
	c.top -= 2
	i := c.stack[c.top]
	d, err := c.readCVT(c.stack[c.top+1])
	if err != nil {
		return err
	}
	z, err := c.pointZone(0, i)
	if err != nil {
		return err
	}
	if c.GS.GEP[0] == twilightZone {
		z.Orig[i].X = fixed.Int26_6(mulFix14(int32(d), c.GS.FreeVector[0]))
		z.Orig[i].Y = fixed.Int26_6(mulFix14(int32(d), c.GS.FreeVector[1]))
		z.Cur[i] = z.Orig[i]
	}
	old := dotProduct(z.Cur[i].X, z.Cur[i].Y, c.GS.ProjVector)
	if opcode == opMIAP1 {
		if x := d - old; x > c.GS.ControlValueCutIn || -x > c.GS.ControlValueCutIn {
			d = old
		}
		d = c.GS.Round(d, 0)
	}
	c.move(z, int(i), d-old)
	c.GS.RP[0], c.GS.RP[1] = i, i
	return nil
}

// loopCheck reports whether the stack holds the loop counter's worth of
// operands plus extra more.
func (c *ExecContext) loopCheck(extra int) error {
	if c.top < int(c.GS.Loop)+extra {
		return ErrStackUnderflow
	}
	return nil
}

func (c *ExecContext) shp() error {
	if err := c.loopCheck(0); err != nil {
		return err
	}
	_, _, dx, dy, err := c.displacement()
	if err != nil {
		return err
	}
	for ; c.GS.Loop > 0; c.GS.Loop-- {
		i := c.pop()
		z, err := c.pointZone(2, i)
		if err != nil {
			return err
		}
		c.shift(z, int(i), dx, dy, true)
	}
	c.GS.Loop = 1
	return nil
}

func (c *ExecContext) shc() error {
	contour := c.pop()
	ref, refIndex, dx, dy, err := c.displacement()
	if err != nil {
		return err
	}
	z := c.zone(2)
	if z == nil {
		return ErrRange
	}
	start, end, ok := z.contour(int(contour))
	if !ok {
		return ErrRange
	}
	for i := start; i < end; i++ {
		if z == ref && i == refIndex {
			continue
		}
		c.shift(z, i, dx, dy, true)
	}
	return nil
}

func (c *ExecContext) shz() error {
	e := c.pop()
	if e != twilightZone && e != glyphZone {
		return ErrBadArgument
	}
	ref, refIndex, dx, dy, err := c.displacement()
	if err != nil {
		return err
	}
	z := c.zones[e]
	if z == nil {
		return ErrRange
	}
	for i, n := 0, z.outlineLen(); i < n; i++ {
		if z == ref && i == refIndex {
			continue
		}
		c.shift(z, i, dx, dy, false)
	}
	return nil
}

func (c *ExecContext) shpix() error {
	if err := c.loopCheck(1); err != nil {
		return err
	}
	amount := c.pop()
	dx := fixed.Int26_6(mulFix14(amount, c.GS.FreeVector[0]))
	dy := fixed.Int26_6(mulFix14(amount, c.GS.FreeVector[1]))
	for ; c.GS.Loop > 0; c.GS.Loop-- {
		i := c.pop()
		z, err := c.pointZone(2, i)
		if err != nil {
			return err
		}
		c.shift(z, int(i), dx, dy, true)
	}
	c.GS.Loop = 1
	return nil
}

func (c *ExecContext) ip() error {
	if err := c.loopCheck(0); err != nil {
		return err
	}
	rp1, rp2 := c.GS.RP[1], c.GS.RP[2]
	z0, err := c.pointZone(0, rp1)
	if err != nil {
		return err
	}
	z1, err := c.pointZone(1, rp2)
	if err != nil {
		return err
	}
	oldRange := c.dualProject(z1.Orig[rp2], z0.Orig[rp1])
	curRange := c.project(z1.Cur[rp2], z0.Cur[rp1])
	for ; c.GS.Loop > 0; c.GS.Loop-- {
		i := c.pop()
		z, err := c.pointZone(2, i)
		if err != nil {
			return err
		}
		oldDist := c.dualProject(z.Orig[i], z0.Orig[rp1])
		curDist := c.project(z.Cur[i], z0.Cur[rp1])
		var newDist fixed.Int26_6
		if oldDist != 0 {
			if oldRange != 0 {
				newDist = fixed.Int26_6(mulDiv(int64(oldDist), int64(curRange), int64(oldRange)))
			} else {
				newDist = oldDist
			}
		}
		c.move(z, int(i), newDist-curDist)
	}
	c.GS.Loop = 1
	return nil
}

func (c *ExecContext) msirp(opcode uint8) error {
	c.top -= 2
	i, d := c.stack[c.top], fixed.Int26_6(c.stack[c.top+1])
	rp0 := c.GS.RP[0]
	z0, err := c.pointZone(0, rp0)
	if err != nil {
		return err
	}
	z1, err := c.pointZone(1, i)
	if err != nil {
		return err
	}
	if c.GS.GEP[1] == twilightZone {
		z1.Orig[i] = z0.Orig[rp0]
		c.moveOrig(z1, int(i), d)
		z1.Cur[i] = z1.Orig[i]
	}
	c.move(z1, int(i), d-c.project(z1.Cur[i], z0.Cur[rp0]))
	c.GS.RP[1], c.GS.RP[2] = rp0, i
	if opcode == opMSIRP1 {
		c.GS.RP[0] = i
	}
	return nil
}

func (c *ExecContext) alignrp() error {
	if err := c.loopCheck(0); err != nil {
		return err
	}
	rp0 := c.GS.RP[0]
	z0, err := c.pointZone(0, rp0)
	if err != nil {
		return err
	}
	for ; c.GS.Loop > 0; c.GS.Loop-- {
		i := c.pop()
		z1, err := c.pointZone(1, i)
		if err != nil {
			return err
		}
		c.move(z1, int(i), -c.project(z1.Cur[i], z0.Cur[rp0]))
	}
	c.GS.Loop = 1
	return nil
}

func (c *ExecContext) flippt() error {
	if err := c.loopCheck(0); err != nil {
		return err
	}
	for ; c.GS.Loop > 0; c.GS.Loop-- {
		i := c.pop()
		z, err := c.pointZone(0, i)
		if err != nil {
			return err
		}
		z.Tags[i] ^= tagOnCurve
	}
	c.GS.Loop = 1
	return nil
}

func (c *ExecContext) delta(opcode uint8) error {
	n := c.pop()
	if n < 0 {
		return ErrBadArgument
	}
	if c.top < 2*int(n) {
		return ErrStackUnderflow
	}
	base := c.GS.DeltaBase
	switch opcode {
	case opDELTAP2, opDELTAC2:
		base += 16
	case opDELTAP3, opDELTAC3:
		base += 32
	}
	isPoint := opcode == opDELTAP1 || opcode == opDELTAP2 || opcode == opDELTAP3
	ppem := c.metrics.CurrentPPEM()
	for ; n > 0; n-- {
		c.top -= 2
		arg, target := c.stack[c.top], c.stack[c.top+1]
		var z *Zone
		if isPoint {
			var err error
			if z, err = c.pointZone(0, target); err != nil {
				if c.cfg.Lenient {
					continue
				}
				return err
			}
		}
		if (arg&0xF0)>>4+base != ppem {
			continue
		}
		step := arg&0xF - 8
		if step >= 0 {
			step++
		}
		d := fixed.Int26_6(step * (1 << uint(6-c.GS.DeltaShift)))
		if isPoint {
			c.move(z, int(target), d)
		} else if err := c.moveCVT(target, d); err != nil {
			return err
		}
	}
	return nil
}

// applyMinDistance keeps d at least the minimum distance away from zero, on
// the side of ref.
func (c *ExecContext) applyMinDistance(d, ref fixed.Int26_6) fixed.Int26_6 {
	m := c.GS.MinDistance
	if ref >= 0 {
		if d < m {
			return m
		}
	} else if d > -m {
		return -m
	}
	return d
}

// singleWidth replaces d by the single width value when they are within the
// single width cut-in.
func (c *ExecContext) singleWidth(d fixed.Int26_6) fixed.Int26_6 {
	sw := c.GS.SingleWidthValue
	if x := d - sw; x < c.GS.SingleWidthCutIn && -x < c.GS.SingleWidthCutIn {
		if d >= 0 {
			return sw
		}
		return -sw
	}
	return d
}

// mdrp implements MDRP[abcde]: a=set rp0, b=keep minimum distance, c=round,
// de=distance type.
func (c *ExecContext) mdrp(opcode uint8) error {
	i := c.pop()
	rp0 := c.GS.RP[0]
	z0, err := c.pointZone(0, rp0)
	if err != nil {
		return err
	}
	z1, err := c.pointZone(1, i)
	if err != nil {
		return err
	}
	orgDist := c.singleWidth(c.dualProject(z1.Orig[i], z0.Orig[rp0]))
	var d fixed.Int26_6
	if opcode&0x04 != 0 {
		d = c.GS.Round(orgDist, int(opcode&3))
	} else {
		d = roundNone(orgDist, c.GS.Compensation[opcode&3])
	}
	if opcode&0x08 != 0 {
		d = c.applyMinDistance(d, orgDist)
	}
	c.move(z1, int(i), d-c.project(z1.Cur[i], z0.Cur[rp0]))
	c.GS.RP[1], c.GS.RP[2] = rp0, i
	if opcode&0x10 != 0 {
		c.GS.RP[0] = i
	}
	return nil
}

// mirp implements MIRP[abcde], like mdrp but aiming for a control value.
func (c *ExecContext) mirp(opcode uint8) error {
	c.top -= 2
	i, cvtIndex := c.stack[c.top], c.stack[c.top+1]
	cvtDist, err := c.readCVT(cvtIndex)
	if err != nil {
		return err
	}
	rp0 := c.GS.RP[0]
	z0, err := c.pointZone(0, rp0)
	if err != nil {
		return err
	}
	z1, err := c.pointZone(1, i)
	if err != nil {
		return err
	}
	cvtDist = c.singleWidth(cvtDist)
	if c.GS.GEP[1] == twilightZone {
		z1.Orig[i].X = z0.Orig[rp0].X + fixed.Int26_6(mulFix14(int32(cvtDist), c.GS.FreeVector[0]))
		z1.Orig[i].Y = z0.Orig[rp0].Y + fixed.Int26_6(mulFix14(int32(cvtDist), c.GS.FreeVector[1]))
		z1.Cur[i] = z1.Orig[i]
	}
	orgDist := c.dualProject(z1.Orig[i], z0.Orig[rp0])
	curDist := c.project(z1.Cur[i], z0.Cur[rp0])
	if c.GS.AutoFlip && (orgDist^cvtDist) < 0 {
		cvtDist = -cvtDist
	}
	var d fixed.Int26_6
	if opcode&0x04 != 0 {
		// The cut-in test only applies within a single zone.
		if c.GS.GEP[0] == c.GS.GEP[1] {
			if x := cvtDist - orgDist; x > c.GS.ControlValueCutIn || -x > c.GS.ControlValueCutIn {
				cvtDist = orgDist
			}
		}
		d = c.GS.Round(cvtDist, int(opcode&3))
	} else {
		d = roundNone(cvtDist, c.GS.Compensation[opcode&3])
	}
	if opcode&0x08 != 0 {
		d = c.applyMinDistance(d, orgDist)
	}
	c.move(z1, int(i), d-curDist)
	c.GS.RP[1], c.GS.RP[2] = rp0, i
	if opcode&0x10 != 0 {
		c.GS.RP[0] = i
	}
	return nil
}

// coord returns the x or y coordinate of p.
func coord(p fixed.Point26_6, y bool) fixed.Int26_6 {
	if y {
		return p.Y
	}
	return p.X
}

func setCoord(p *fixed.Point26_6, y bool, v fixed.Int26_6) {
	if y {
		p.Y = v
	} else {
		p.X = v
	}
}

// iup interpolates the untouched points of every contour of the glyph zone
// between their touched neighbors, in y if interpY, otherwise in x.
func (c *ExecContext) iup(interpY bool) {
	z := c.zones[glyphZone]
	if z == nil {
		return
	}
	mask := uint8(tagTouchedX)
	if interpY {
		mask = tagTouchedY
	}
	first := 0
	for _, end := range z.Ends {
		last := end - 1
		p := first
		for p <= last && z.Tags[p]&mask == 0 {
			p++
		}
		if p <= last {
			firstTouched, curTouched := p, p
			for p++; p <= last; p++ {
				if z.Tags[p]&mask != 0 {
					iupInterp(z, interpY, curTouched+1, p-1, curTouched, p)
					curTouched = p
				}
			}
			if curTouched == firstTouched {
				iupShift(z, interpY, first, last, curTouched)
			} else {
				iupInterp(z, interpY, curTouched+1, last, curTouched, firstTouched)
				if firstTouched > first {
					iupInterp(z, interpY, first, firstTouched-1, curTouched, firstTouched)
				}
			}
		}
		first = end
	}
}

// iupShift moves points p1 through p2, except ref, by ref's displacement.
func iupShift(z *Zone, interpY bool, p1, p2, ref int) {
	d := coord(z.Cur[ref], interpY) - coord(z.Orig[ref], interpY)
	if d == 0 {
		return
	}
	for i := p1; i <= p2; i++ {
		if i == ref {
			continue
		}
		setCoord(&z.Cur[i], interpY, coord(z.Cur[i], interpY)+d)
	}
}

// iupInterp interpolates points p1 through p2 between ref1 and ref2.
func iupInterp(z *Zone, interpY bool, p1, p2, ref1, ref2 int) {
	if p1 > p2 || ref1 >= len(z.Cur) || ref2 >= len(z.Cur) {
		return
	}
	org1, org2 := coord(z.Orig[ref1], interpY), coord(z.Orig[ref2], interpY)
	if org1 > org2 {
		org1, org2 = org2, org1
		ref1, ref2 = ref2, ref1
	}
	cur1, cur2 := coord(z.Cur[ref1], interpY), coord(z.Cur[ref2], interpY)
	delta1, delta2 := cur1-org1, cur2-org2
	var scale int64
	interpolate := cur1 != cur2 && org1 != org2
	if interpolate {
		scale = mulDiv(int64(cur2-cur1), 0x10000, int64(org2-org1))
	}
	for i := p1; i <= p2; i++ {
		x := coord(z.Orig[i], interpY)
		switch {
		case x <= org1:
			x += delta1
		case x >= org2:
			x += delta2
		case !interpolate:
			x = cur1
		default:
			x = cur1 + fixed.Int26_6(mulDiv(int64(x-org1), scale, 0x10000))
		}
		setCoord(&z.Cur[i], interpY, x)
	}
}
