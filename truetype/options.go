// Copyright 2015 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"golang.org/x/image/font"
)

const (
	defaultMaxSteps     = 100000
	defaultStackSlack   = 32
	defaultMaxCallDepth = 32
)

// IndexPolicy selects what happens when bytecode addresses a control value
// or storage cell that does not exist.
type IndexPolicy uint8

const (
	// IndexAuto fails in strict mode and is lenient otherwise.
	IndexAuto IndexPolicy = iota
	// IndexError aborts the program with ErrRange.
	IndexError
	// IndexLenient reads zero and ignores writes.
	IndexLenient
)

func (p IndexPolicy) String() string {
	switch p {
	case IndexAuto:
		return "auto"
	case IndexError:
		return "error"
	case IndexLenient:
		return "lenient"
	}
	return "unknown"
}

// Options are optional arguments to NewDriver, NewFace and Face.NewSize.
type Options struct {
	// Strict makes every deviation an error: a failed or missing font or
	// control program fails the Size, and a failed glyph program fails the
	// glyph load.
	//
	// A zero value means to record such failures and fall back to unhinted
	// output.
	Strict bool

	// MaxSteps is the number of instructions a single program run may
	// execute before it is aborted with ErrStepBudget.
	//
	// A zero value means to use 100000 steps.
	MaxSteps int

	// StackSlack is added to the maximum stack depth declared by the font,
	// since many fonts understate it.
	//
	// A zero value means to use 32. A negative value means no slack.
	StackSlack int

	// IndexPolicy is the out-of-range control value and storage policy.
	//
	// A zero value means IndexAuto.
	IndexPolicy IndexPolicy

	// Hinting is whether to run the bytecode at all. font.HintingVertical
	// is treated as font.HintingFull: glyph programs move points along both
	// axes.
	//
	// A zero value means to use no hinting.
	Hinting font.Hinting

	// MaxCallDepth bounds nested function calls.
	//
	// A zero value means to use 32.
	MaxCallDepth int
}

func (o *Options) strict() bool {
	return o != nil && o.Strict
}

func (o *Options) maxSteps() int {
	if o != nil && o.MaxSteps > 0 {
		return o.MaxSteps
	}
	return defaultMaxSteps
}

func (o *Options) stackSlack() int {
	if o != nil {
		switch {
		case o.StackSlack > 0:
			return o.StackSlack
		case o.StackSlack < 0:
			return 0
		}
	}
	return defaultStackSlack
}

func (o *Options) lenient() bool {
	if o != nil {
		switch o.IndexPolicy {
		case IndexError:
			return false
		case IndexLenient:
			return true
		}
	}
	return !o.strict()
}

func (o *Options) hinting() font.Hinting {
	if o != nil {
		switch o.Hinting {
		case font.HintingVertical, font.HintingFull:
			return font.HintingFull
		}
	}
	return font.HintingNone
}

func (o *Options) maxCallDepth() int {
	if o != nil && o.MaxCallDepth > 0 {
		return o.MaxCallDepth
	}
	return defaultMaxCallDepth
}
