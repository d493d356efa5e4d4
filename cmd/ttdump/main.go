// Copyright 2010-2017 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

// Command ttdump prints the hinted points of glyphs of a TrueType font, one
// line per point in the "x y flags" format, points separated by commas.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goki/tthint/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var args struct {
	XPPEM    float64 `short:"x" default:"12" help:"Horizontal pixels per em"`
	YPPEM    float64 `short:"y" help:"Vertical pixels per em (defaults to --xppem)"`
	Glyphs   []int   `short:"g" name:"glyph" help:"Glyph indexes to dump (defaults to all)"`
	Strict   bool    `help:"Fail on any bytecode error"`
	NoHint   bool    `name:"no-hint" help:"Scale without running bytecode"`
	Unhinted bool    `short:"u" help:"Also print the unhinted points"`
	MaxSteps int     `default:"0" help:"Instruction budget per program run (0 for the default)"`
	Verbose  bool    `short:"v" help:"Log program runs to stderr"`

	Font string `arg:"" name:"font" help:"Path to TrueType font" type:"existingfile"`
}

func main() {
	ctx := kong.Parse(&args, kong.Description("Dump hinted TrueType glyph outlines."))

	if args.Verbose {
		truetype.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	fontData, err := os.ReadFile(args.Font)
	ctx.FatalIfErrorf(err)

	opts := &truetype.Options{
		Strict:   args.Strict,
		MaxSteps: args.MaxSteps,
		Hinting:  font.HintingFull,
	}
	if args.NoHint {
		opts.Hinting = font.HintingNone
	}
	d := truetype.NewDriver(opts)
	defer d.Done()

	f, err := d.OpenFace(fontData)
	ctx.FatalIfErrorf(err)

	yPPEM := args.YPPEM
	if yPPEM == 0 {
		yPPEM = args.XPPEM
	}
	req := truetype.SizeRequest{
		XPPEM: fixed.Int26_6(args.XPPEM * 64),
		YPPEM: fixed.Int26_6(yPPEM * 64),
	}
	ss, err := d.NewSize(f, req)
	ctx.FatalIfErrorf(err)

	name, err := f.Name(truetype.NameIDFontFullName)
	ctx.FatalIfErrorf(err)
	fmt.Printf("name: %s\n", name)
	fmt.Printf("size: %v\n", req)
	if bs, ok := ss.(truetype.BytecodeSize); ok {
		fmt.Printf("fpgm: %v\n", bs.FontProgram())
		fmt.Printf("prep: %v\n", bs.ControlProgram())
	}

	slot, err := truetype.NewSlot(ss)
	ctx.FatalIfErrorf(err)
	defer slot.Done()

	glyphs := args.Glyphs
	if len(glyphs) == 0 {
		for i := 0; i < f.NumGlyphs(); i++ {
			glyphs = append(glyphs, i)
		}
	}
	for _, i := range glyphs {
		if err := slot.Load(truetype.Index(i)); err != nil {
			fmt.Printf("glyph %d: %v\n", i, err)
			continue
		}
		fmt.Printf("glyph %d: advance %v, ends %v\n", i, slot.AdvanceWidth, slot.Ends)
		fmt.Println(formatPoints(slot.Points, slot.Flags))
		if args.Unhinted {
			fmt.Println(formatPoints(slot.Unhinted, slot.Flags))
		}
	}
}

func formatPoints(points []fixed.Point26_6, flags []uint8) string {
	var b strings.Builder
	for i, p := range points {
		if i != 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d %d %d", p.X, p.Y, flags[i]&1)
	}
	return b.String()
}
