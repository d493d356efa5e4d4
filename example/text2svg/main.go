// Copyright 2016 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

// The text2svg command converts a run of glyph indexes to filled SVG paths
// in a given TrueType v1 font, drawing the hinted outline of each glyph in
// black over its unhinted outline in grey.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kong"
	"github.com/goki/tthint/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

var args struct {
	Font   string `short:"f" required:"" type:"existingfile" help:"File name of the TrueType v1 font to use"`
	PPEM   int    `short:"s" default:"100" help:"Scale in pixels per em"`
	Strict bool   `help:"Fail on bytecode errors"`

	Glyphs []int `arg:"" name:"glyph" help:"Glyph indexes to draw"`
}

func main() {
	kong.Parse(&args)

	log.SetPrefix("text2svg: ")
	log.SetFlags(0)

	ttfdata, err := os.ReadFile(args.Font)
	if err != nil {
		log.Fatalf("loading font: %v", err)
	}

	d := truetype.NewDriver(&truetype.Options{Strict: args.Strict, Hinting: font.HintingFull})
	defer d.Done()
	f, err := d.OpenFace(ttfdata)
	if err != nil {
		log.Fatalf("parsing font: %v", err)
	}
	scale := fixed.I(args.PPEM)
	size, err := d.NewSize(f, truetype.SizeRequest{XPPEM: scale, YPPEM: scale})
	if err != nil {
		log.Fatalf("sizing font: %v", err)
	}
	slot, err := truetype.NewSlot(size)
	if err != nil {
		log.Fatalf("creating slot: %v", err)
	}
	defer slot.Done()

	fmt.Printf("<svg xmlns='http://www.w3.org/2000/svg' "+
		"width='%d' height='%d'>\n",
		1000, 1000)

	dy = scale // set the baseline one line below the origin

	for _, i := range args.Glyphs {
		if err := slot.Load(truetype.Index(i)); err != nil {
			log.Fatalf("loading glyph %d: %v", i, err)
		}

		// Emit one SVG <path> for all unhinted contours and one for all
		// hinted contours.
		fmt.Printf("<path style='fill: grey' d='")
		drawGlyph(slot.Unhinted, slot.Flags, slot.Ends)
		fmt.Printf("'/>\n")
		fmt.Printf("<path style='fill: black; fill-opacity: 0.5' d='")
		drawGlyph(slot.Points, slot.Flags, slot.Ends)
		fmt.Printf("'/>\n")

		dx += slot.AdvanceWidth
	}
	fmt.Println("</svg>")
}

func drawGlyph(ps []fixed.Point26_6, flags []uint8, ends []int) {
	prevEnd := 0
	for _, end := range ends {
		drawContour(ps[prevEnd:end], flags[prevEnd:end], drawSVG)
		prevEnd = end
	}
}

func drawSVG(cmd rune, p0, p1 fixed.Point26_6) {
	switch cmd {
	case 'M': // moveto
		fmt.Printf("M%s ", p2svg(p0))
	case 'L': // lineto
		fmt.Printf("L%s ", p2svg(p0))
	case 'Q': // quadratic spline
		fmt.Printf("Q%s %s ", p2svg(p0), p2svg(p1))
	}
}

var dx, dy fixed.Int26_6

func p2svg(p fixed.Point26_6) string {
	return fmt.Sprintf("%v,%v",
		float64(dx+p.X)/64,
		float64(dy-p.Y)/64)
}

var dummy fixed.Point26_6

// drawContour calls the draw function for each moveto, lineto, or
// quadratic spline command in the specified contour.
func drawContour(ps []fixed.Point26_6, flags []uint8, draw func(cmd rune, p0, p1 fixed.Point26_6)) {
	if len(ps) == 0 {
		return
	}

	// The low bit of each flag is whether the point is on the curve.
	// Truetype fonts only have quadratic Bézier curves, so two consecutive
	// off-curve points imply an on-curve point in the middle of those two.
	last := len(ps) - 1
	start := ps[0]
	var others []fixed.Point26_6
	var otherFlags []uint8
	switch {
	case flags[0]&1 != 0:
		others, otherFlags = ps[1:], flags[1:]
	case flags[last]&1 != 0:
		start = ps[last]
		others, otherFlags = ps[:last], flags[:last]
	default:
		start = fixed.Point26_6{
			X: (start.X + ps[last].X) / 2,
			Y: (start.Y + ps[last].Y) / 2,
		}
		others, otherFlags = ps, flags
	}
	draw('M', start, dummy)
	q0, on0 := start, true
	for i, q := range others {
		on := otherFlags[i]&1 != 0
		if on {
			if on0 {
				draw('L', q, dummy)
			} else {
				draw('Q', q0, q)
			}
		} else if !on0 {
			mid := fixed.Point26_6{
				X: (q0.X + q.X) / 2,
				Y: (q0.Y + q.Y) / 2,
			}
			draw('Q', q0, mid)
		}
		q0, on0 = q, on
	}
	// Close the curve.
	if on0 {
		draw('L', start, dummy)
	} else {
		draw('Q', q0, start)
	}
}
