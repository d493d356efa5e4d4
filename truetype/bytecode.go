// Copyright 2015 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

//go:build !nohint

package truetype

import (
	"log/slog"

	"golang.org/x/image/math/fixed"
)

// bytecode is the hinting state of a Size: its execution context, twilight
// zone, scaled control values and program results.
type bytecode struct {
	exec     *ExecContext
	twilight *Zone
	// glyph is the zone glyph programs run in. It is grown to fit each
	// glyph.
	glyph *Zone
	cvt   []fixed.Int26_6
	gs    GraphicsState

	// The twilight zone, control values and storage as the control program
	// left them. Each glyph program starts from them.
	twilightSaved Zone
	cvtSaved      []fixed.Int26_6
	storageSaved  []int32
	// storageFont is the storage area as the font program left it. Each
	// control program run starts from it.
	storageFont []int32

	// scaledFor is the request the control values were scaled for.
	scaledFor SizeRequest
	scaled    bool

	fontProgram    Outcome
	controlProgram Outcome
}

// resize allocates the execution context on first use and, when the request
// of s has changed since the control values were scaled, rescales them and
// invalidates the control program result.
func (b *bytecode) resize(s *Size) error {
	f := s.face
	if b.exec == nil {
		p := f.profile
		twilight, err := NewZone(p.maxTwilightPoints, 0)
		if err != nil {
			return err
		}
		glyph, err := NewZone(max(p.maxPoints, p.maxCompositePoints), max(p.maxContours, p.maxCompositeContours))
		if err != nil {
			return err
		}
		b.cvt = make([]fixed.Int26_6, len(f.cvt)/2)
		exec, err := NewExecContext(ExecConfig{
			StackSize:    p.maxStackElements + s.opts.stackSlack(),
			StorageSize:  p.maxStorage,
			FunctionDefs: p.maxFunctionDefs,
			MaxSteps:     s.opts.maxSteps(),
			MaxCallDepth: s.opts.maxCallDepth(),
			Lenient:      s.opts.lenient(),
		}, &s.metrics, b.cvt, twilight)
		if err != nil {
			twilight.Done()
			glyph.Done()
			return err
		}
		b.exec, b.twilight, b.glyph = exec, twilight, glyph
		b.gs = DefaultGraphicsState()
	}
	if !b.scaled || !b.scaledFor.equal(s.req) {
		b.scaleCVT(s)
		b.scaledFor, b.scaled = s.req, true
		b.controlProgram = NotRun
		b.exec.pointSize = s.req.PointSize
		if b.exec.pointSize == 0 {
			b.exec.pointSize = s.req.XPPEM
			if s.req.YPPEM > b.exec.pointSize {
				b.exec.pointSize = s.req.YPPEM
			}
		}
	}
	return nil
}

// scaleCVT scales the Face's control values to the larger ppem of s.
func (b *bytecode) scaleCVT(s *Size) {
	cvt := s.face.cvt
	for i := range b.cvt {
		b.cvt[i] = s.metrics.ScaleCVT(int32(int16(u16(cvt, 2*i))))
	}
}

// runFontProgram runs the font program once, recording the outcome.
func (b *bytecode) runFontProgram(s *Size) error {
	if b.fontProgram.Ran() {
		return b.fontProgram.Err()
	}
	var err error
	if s.face.fpgm == nil {
		err = &TableMissingError{Tag: "fpgm"}
	} else {
		b.exec.clearDefinitions()
		b.exec.GS = DefaultGraphicsState()
		b.exec.SetGlyphZone(nil)
		b.exec.clearStorage()
		err = b.exec.Run(s.face.fpgm, FontProgram)
	}
	b.storageFont = append(b.storageFont[:0], b.exec.storage...)
	b.fontProgram = ranWith(err)
	if err != nil {
		Logger().Warn("truetype: font program failed", slog.Any("err", err))
	} else {
		Logger().Debug("truetype: font program ran", slog.Int("bytes", len(s.face.fpgm)))
	}
	return err
}

// runControlProgram runs the control value program once per request,
// saving the graphics state it leaves as the glyph program default. If it
// fails the defaults and control values are restored.
func (b *bytecode) runControlProgram(s *Size) error {
	if b.controlProgram.Ran() {
		return b.controlProgram.Err()
	}
	b.twilight.Reset()
	b.restoreFontStorage()
	b.exec.GS = DefaultGraphicsState()
	b.exec.SetGlyphZone(nil)
	var err error
	if s.face.prep == nil {
		err = &TableMissingError{Tag: "prep"}
	} else {
		err = b.exec.Run(s.face.prep, ControlProgram)
	}
	if err == nil {
		b.gs = b.exec.GS
		b.gs.resetAfterControlProgram()
	} else {
		b.gs = DefaultGraphicsState()
		b.scaleCVT(s)
		b.twilight.Reset()
		b.restoreFontStorage()
	}
	b.saveGlyphDefaults()
	b.controlProgram = ranWith(err)
	if err != nil {
		Logger().Warn("truetype: control value program failed",
			slog.String("size", s.req.String()), slog.Any("err", err))
	} else {
		Logger().Debug("truetype: control value program ran", slog.String("size", s.req.String()))
	}
	return err
}

// restoreFontStorage resets the storage area to what the font program
// left in it.
func (b *bytecode) restoreFontStorage() {
	b.exec.clearStorage()
	copy(b.exec.storage, b.storageFont)
}

// saveGlyphDefaults records the state every glyph program starts from.
func (b *bytecode) saveGlyphDefaults() {
	t := b.twilight
	b.twilightSaved.Orig = append(b.twilightSaved.Orig[:0], t.Orig...)
	b.twilightSaved.Cur = append(b.twilightSaved.Cur[:0], t.Cur...)
	b.twilightSaved.Tags = append(b.twilightSaved.Tags[:0], t.Tags...)
	b.cvtSaved = append(b.cvtSaved[:0], b.cvt...)
	b.storageSaved = append(b.storageSaved[:0], b.exec.storage...)
}

func (b *bytecode) restoreGlyphDefaults() {
	copy(b.twilight.Orig, b.twilightSaved.Orig)
	copy(b.twilight.Cur, b.twilightSaved.Cur)
	copy(b.twilight.Tags, b.twilightSaved.Tags)
	copy(b.cvt, b.cvtSaved)
	copy(b.exec.storage, b.storageSaved)
}

// initBytecode runs whichever of the font and control value programs have
// not been attempted. In strict mode the first failure is returned.
func (b *bytecode) initBytecode(s *Size, strict bool) error {
	if b.exec == nil {
		if err := b.resize(s); err != nil {
			return err
		}
	}
	if err := b.runFontProgram(s); err != nil && strict {
		return err
	}
	if err := b.runControlProgram(s); err != nil && strict {
		return err
	}
	return nil
}

// runGlyph runs a glyph program over z. Glyph programs only run once the
// font program has succeeded and the control program has not disabled
// them. A failure is returned in strict mode; otherwise it is logged and the
// zone keeps whatever state the program reached.
func (b *bytecode) runGlyph(s *Size, z *Zone, program []byte, strict bool) error {
	if b.exec == nil || !b.controlProgram.Ran() || b.fontProgram.Err() != nil || !b.fontProgram.Ran() {
		return nil
	}
	if b.gs.InstructControl&instructControlNoGlyphPrograms != 0 || len(program) == 0 {
		return nil
	}
	gs := b.gs
	if gs.InstructControl&instructControlDefaultState != 0 {
		gs = DefaultGraphicsState()
		gs.InstructControl = b.gs.InstructControl
	}
	b.exec.GS = gs
	b.restoreGlyphDefaults()

	// Run in the Size's own glyph zone and copy the result back to z.
	if err := b.glyph.Grow(len(z.Cur), len(z.Ends)); err != nil {
		return err
	}
	copy(b.glyph.Orig, z.Orig)
	copy(b.glyph.Cur, z.Cur)
	copy(b.glyph.Tags, z.Tags)
	copy(b.glyph.Ends, z.Ends)
	b.exec.SetGlyphZone(b.glyph)
	err := b.exec.Run(program, GlyphProgram)
	b.exec.SetGlyphZone(nil)
	copy(z.Cur, b.glyph.Cur)
	copy(z.Tags, b.glyph.Tags)
	if err != nil {
		if strict {
			return err
		}
		Logger().Debug("truetype: glyph program abandoned",
			slog.String("size", s.req.String()), slog.Any("err", err))
	}
	return nil
}

func (b *bytecode) done() {
	b.exec.Done()
	b.twilight.Done()
	b.glyph.Done()
	*b = bytecode{}
}
