// Copyright 2015 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"sync"

	"golang.org/x/image/font"
)

// ScalableSize is implemented by sizes that scale outlines to a device
// size.
type ScalableSize interface {
	Reset(req SizeRequest) error
	Metrics() font.Metrics
	Strike() (index uint32, ok bool)
	Done()
}

// BytecodeSize is implemented by sizes that run TrueType bytecode. Callers
// holding a ScalableSize should discover it with a checked type assertion.
type BytecodeSize interface {
	ScalableSize
	InitBytecode(strict bool) error
	RunFontProgram() error
	RunControlProgram() error
	FontProgram() Outcome
	ControlProgram() Outcome
}

var (
	_ ScalableSize = (*Size)(nil)
	_ BytecodeSize = (*Size)(nil)
)

// A Driver owns Faces and hands out their Sizes and Slots. Releasing the
// Driver releases everything it created.
type Driver struct {
	opts Options

	mu    sync.Mutex
	faces []*Face
	sizes []ScalableSize
}

// NewDriver returns a Driver whose Faces use opts. opts may be nil.
func NewDriver(opts *Options) *Driver {
	d := &Driver{}
	if opts != nil {
		d.opts = *opts
	}
	return d
}

// OpenFace parses ttf into a Face owned by d.
func (d *Driver) OpenFace(ttf []byte) (*Face, error) {
	f, err := Parse(ttf, &d.opts)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.faces = append(d.faces, f)
	d.mu.Unlock()
	return f, nil
}

// NewSize returns a Size of f scaled to req. If the Size runs bytecode and
// the Driver is strict, a failing font or control program fails NewSize.
func (d *Driver) NewSize(f *Face, req SizeRequest) (ScalableSize, error) {
	s := f.NewSize()
	if err := s.Reset(req); err != nil {
		s.Done()
		return nil, err
	}
	var ss ScalableSize = s
	if bs, ok := ss.(BytecodeSize); ok && s.Hinting() {
		if err := bs.InitBytecode(d.opts.Strict); err != nil {
			s.Done()
			return nil, err
		}
	}
	d.mu.Lock()
	d.sizes = append(d.sizes, ss)
	d.mu.Unlock()
	return ss, nil
}

// Done releases every Size created by d and forgets its Faces.
func (d *Driver) Done() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.sizes {
		s.Done()
	}
	d.sizes, d.faces = nil, nil
}

// A Slot loads the glyphs of one Size. Glyph loads on one Size must not run
// concurrently, so each goroutine should use its own Size and Slot.
type Slot struct {
	size *Size
	GlyphBuf
}

// NewSlot returns a Slot for s, which must be a Size created by this
// package.
func NewSlot(s ScalableSize) (*Slot, error) {
	size, ok := s.(*Size)
	if !ok {
		return nil, UnsupportedError("size implementation")
	}
	sl := &Slot{size: size}
	sl.GlyphBuf = *NewGlyphBuf()
	return sl, nil
}

// Load loads glyph i into the Slot's GlyphBuf.
func (sl *Slot) Load(i Index) error {
	return sl.GlyphBuf.Load(sl.size, i)
}

// Done releases the Slot's buffers.
func (sl *Slot) Done() {
	sl.size = nil
	sl.GlyphBuf = GlyphBuf{}
}
