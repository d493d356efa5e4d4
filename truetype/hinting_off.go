// Copyright 2015 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

//go:build nohint

package truetype

const hintingAvailable = false

// bytecode stands in for the interpreter in builds without it. Every Size
// produces scaled, unhinted outlines, and the programs are never attempted.
type bytecode struct {
	fontProgram    Outcome
	controlProgram Outcome
}

func (b *bytecode) resize(s *Size) error { return nil }

func (b *bytecode) runFontProgram(s *Size) error {
	return UnsupportedError("bytecode hinting (built with nohint)")
}

func (b *bytecode) runControlProgram(s *Size) error {
	return UnsupportedError("bytecode hinting (built with nohint)")
}

func (b *bytecode) initBytecode(s *Size, strict bool) error {
	if strict {
		return UnsupportedError("bytecode hinting (built with nohint)")
	}
	return nil
}

func (b *bytecode) runGlyph(s *Size, z *Zone, program []byte, strict bool) error { return nil }

func (b *bytecode) done() {}
