// Copyright 2010 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"errors"
	"fmt"
)

// A FormatError reports that the input is not a valid TrueType font.
type FormatError string

func (e FormatError) Error() string {
	return "truetype: invalid TrueType format: " + string(e)
}

// An UnsupportedError reports that the input uses a valid but unimplemented
// TrueType feature.
type UnsupportedError string

func (e UnsupportedError) Error() string {
	return "truetype: unsupported TrueType feature: " + string(e)
}

// An AllocationError reports that a zone, stack or execution context could
// not be allocated, usually because the request exceeds the limits of the
// TrueType format.
type AllocationError struct {
	What      string
	Requested int
	Limit     int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("truetype: cannot allocate %s: %d exceeds limit %d", e.What, e.Requested, e.Limit)
}

// A TableMissingError reports that a table needed for hinting is absent.
type TableMissingError struct {
	Tag string
}

func (e *TableMissingError) Error() string {
	return fmt.Sprintf("truetype: missing %q table", e.Tag)
}

// An OverflowError reports a fixed point saturation. It is only returned by
// builds with the ttdiag tag; otherwise saturation is silent.
type OverflowError struct {
	What string
}

func (e *OverflowError) Error() string {
	return "truetype: fixed point overflow in " + e.What
}

// Interpreter failure causes. An InterpreterError unwraps to one of these.
var (
	ErrStackUnderflow               = errors.New("stack underflow")
	ErrStackOverflow                = errors.New("stack overflow")
	ErrUnknownOpcode                = errors.New("unrecognized instruction")
	ErrRange                        = errors.New("index out of range")
	ErrStepBudget                   = errors.New("too many steps")
	ErrDivideByZero                 = errors.New("division by zero")
	ErrCallStack                    = errors.New("call stack overflow or underflow")
	ErrUnbalanced                   = errors.New("unbalanced IF, ELSE, FDEF or IDEF")
	ErrUndefinedFunction            = errors.New("undefined function")
	ErrBadArgument                  = errors.New("invalid argument")
	ErrInsufficientData             = errors.New("insufficient data")
	ErrDefinitionOutsideFontProgram = errors.New("function or instruction definition outside the font program")
)

// ErrBadSizeRequest reports a SizeRequest without a positive ppem, or use of
// a Size before its first Reset.
var ErrBadSizeRequest = errors.New("truetype: bad size request")

// A CodeRange identifies which of the three bytecode tiers is running.
type CodeRange uint8

const (
	FontProgram CodeRange = iota + 1
	ControlProgram
	GlyphProgram
)

func (r CodeRange) String() string {
	switch r {
	case FontProgram:
		return "fpgm"
	case ControlProgram:
		return "prep"
	case GlyphProgram:
		return "glyf"
	}
	return "unknown"
}

// An InterpreterError reports an abnormal termination of a bytecode program.
type InterpreterError struct {
	Range  CodeRange
	Opcode uint8
	PC     int
	Err    error
}

func (e *InterpreterError) Error() string {
	return fmt.Sprintf("truetype: hinting: %v (opcode 0x%02x at %s:%d)", e.Err, e.Opcode, e.Range, e.PC)
}

func (e *InterpreterError) Unwrap() error { return e.Err }
