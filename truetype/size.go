// Copyright 2015 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// A SizeRequest selects the device size of a Size.
type SizeRequest struct {
	// XPPEM and YPPEM are the pixels per em along each axis. They must be
	// positive.
	XPPEM, YPPEM fixed.Int26_6

	// PointSize is reported to bytecode by MPS.
	//
	// A zero value means the larger ppem, as at 72 DPI.
	PointSize fixed.Int26_6

	// Transform is the device transform glyphs will be drawn with. Only
	// whether it rotates or stretches is used, and only to answer GETINFO
	// and SCANCTRL.
	//
	// A nil value means the identity.
	Transform *f64.Aff3
}

func (r SizeRequest) String() string {
	return fmt.Sprintf("%vx%v ppem", r.XPPEM, r.YPPEM)
}

func (r SizeRequest) equal(o SizeRequest) bool {
	if r.XPPEM != o.XPPEM || r.YPPEM != o.YPPEM || r.PointSize != o.PointSize {
		return false
	}
	if r.Transform == nil || o.Transform == nil {
		return r.Transform == o.Transform
	}
	return *r.Transform == *o.Transform
}

// An Outcome records whether a program has been attempted and, if so, the
// result of the single attempt.
type Outcome struct {
	ran bool
	err error
}

// NotRun is the Outcome of a program that has not been attempted.
var NotRun = Outcome{}

func ranWith(err error) Outcome { return Outcome{ran: true, err: err} }

// Ran reports whether the program has been attempted.
func (o Outcome) Ran() bool { return o.ran }

// Err returns the error of the attempt, or nil if it succeeded or has not
// been made.
func (o Outcome) Err() error { return o.err }

func (o Outcome) String() string {
	switch {
	case !o.ran:
		return "not run"
	case o.err != nil:
		return "failed: " + o.err.Error()
	}
	return "ok"
}

// A Size is a Face scaled to one device size. It caches the scaled control
// values, the results of the font and control value programs and the
// graphics state that glyph programs start from.
//
// A Size is not safe for concurrent use; distinct Sizes of one Face are.
type Size struct {
	face    *Face
	opts    *Options
	req     SizeRequest
	valid   bool
	metrics SizeMetrics

	unhinted, hinted font.Metrics
	strike           uint32
	hasStrike        bool

	bc bytecode
}

// NewSize returns a Size of f. It has no device size until Reset is called.
func (f *Face) NewSize() *Size {
	return &Size{face: f, opts: f.opts}
}

// Face returns the Face that s scales.
func (s *Size) Face() *Face { return s.face }

// Request returns the last request passed to Reset.
func (s *Size) Request() SizeRequest { return s.req }

// SizeMetrics returns the scaling state of s.
func (s *Size) SizeMetrics() SizeMetrics { return s.metrics }

// Metrics returns the hinted metrics of s. Before hinting is enabled they
// equal the unhinted metrics.
func (s *Size) Metrics() font.Metrics { return s.hinted }

// UnhintedMetrics returns the metrics of s scaled but not grid fitted.
func (s *Size) UnhintedMetrics() font.Metrics { return s.unhinted }

// Strike returns the selected embedded bitmap strike. Reset clears the
// selection, and outline Sizes never make one.
func (s *Size) Strike() (index uint32, ok bool) { return s.strike, s.hasStrike }

// Hinting reports whether s runs bytecode.
func (s *Size) Hinting() bool {
	return hintingAvailable && s.opts.hinting() != font.HintingNone
}

// Reset scales s to req. If hinting is enabled it then prepares the
// bytecode: the font program runs the first time, and the control value
// program whenever the request changes. In strict mode a failure of either
// is returned; otherwise it is recorded and Reset succeeds.
func (s *Size) Reset(req SizeRequest) error {
	if req.XPPEM <= 0 || req.YPPEM <= 0 {
		return fmt.Errorf("%w: %v", ErrBadSizeRequest, req)
	}
	if s.valid && s.req.equal(req) {
		if s.Hinting() {
			return s.bc.initBytecode(s, s.opts.strict())
		}
		return nil
	}
	s.req, s.valid = req, true
	s.hasStrike = false

	f := s.face
	upem := int64(f.unitsPerEm)
	xPPEM, yPPEM := int64(req.XPPEM), int64(req.YPPEM)
	if f.flags&headFlagIntegerPPEM != 0 {
		xPPEM = int64(pixRound(req.XPPEM))
		yPPEM = int64(pixRound(req.YPPEM))
		if xPPEM == 0 {
			xPPEM = 64
		}
		if yPPEM == 0 {
			yPPEM = 64
		}
	}
	xScale := Fixed(mulDivNoRound(xPPEM, int64(fixedOne), upem))
	yScale := Fixed(mulDivNoRound(yPPEM, int64(fixedOne), upem))
	s.metrics.ResetHeight(int32((xPPEM+32)>>6), int32((yPPEM+32)>>6), xScale, yScale, req.Transform)

	asc := s.metrics.ScaleY(f.ascent)
	desc := -s.metrics.ScaleY(f.descent)
	gap := s.metrics.ScaleY(f.lineGap)
	s.unhinted = font.Metrics{
		Height:     asc + desc + gap,
		Ascent:     asc,
		Descent:    desc,
		CaretSlope: image.Point{X: 0, Y: 1},
	}
	s.hinted = s.unhinted

	if !s.Hinting() {
		return nil
	}
	s.hinted.Ascent = pixCeil(asc)
	s.hinted.Descent = pixCeil(desc)
	s.hinted.Height = pixRound(asc + desc + gap)

	if err := s.bc.resize(s); err != nil {
		return err
	}
	return s.bc.initBytecode(s, s.opts.strict())
}

// InitBytecode makes sure the font and control value programs have run,
// returning their failure in strict mode. It is idempotent.
func (s *Size) InitBytecode(strict bool) error {
	if !s.valid {
		return fmt.Errorf("%w: Reset has not been called", ErrBadSizeRequest)
	}
	if err := s.bc.resize(s); err != nil {
		return err
	}
	return s.bc.initBytecode(s, strict)
}

// RunFontProgram runs the font program unless it has already been
// attempted, and returns the attempt's error.
func (s *Size) RunFontProgram() error {
	if !s.valid {
		return fmt.Errorf("%w: Reset has not been called", ErrBadSizeRequest)
	}
	if err := s.bc.resize(s); err != nil {
		return err
	}
	return s.bc.runFontProgram(s)
}

// RunControlProgram runs the control value program unless it has already
// been attempted for the current request, and returns the attempt's error.
func (s *Size) RunControlProgram() error {
	if !s.valid {
		return fmt.Errorf("%w: Reset has not been called", ErrBadSizeRequest)
	}
	if err := s.bc.resize(s); err != nil {
		return err
	}
	return s.bc.runControlProgram(s)
}

// FontProgram returns the readiness of the font program.
func (s *Size) FontProgram() Outcome { return s.bc.fontProgram }

// ControlProgram returns the readiness of the control value program.
func (s *Size) ControlProgram() Outcome { return s.bc.controlProgram }

// Done releases the execution context and zones of s. It is safe to call on
// a nil Size.
func (s *Size) Done() {
	if s == nil {
		return
	}
	s.bc.done()
	s.valid = false
}
