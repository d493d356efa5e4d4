// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"golang.org/x/image/math/fixed"
)

// Limits on zone sizes. The maxp table stores these counts as uint16.
const (
	MaxZonePoints   = 0xFFFF
	MaxZoneContours = 0xFFFF
)

// nPhantomPoints is the number of synthetic points appended to every outline
// to carry the horizontal and vertical metrics through hinting.
const nPhantomPoints = 4

// Point tags. The low bit matches the glyf on-curve flag.
const (
	tagOnCurve  = 0x01
	tagTouchedX = 0x08
	tagTouchedY = 0x10

	tagTouchedBoth = tagTouchedX | tagTouchedY
)

// A Zone is a set of points that hinting instructions operate on. Orig holds
// the scaled but unhinted coordinates, Cur the working coordinates. Points
// are addressed by index; nothing outside the zone aliases them.
//
// There are two zones at run time: the twilight zone, which lives as long as
// its Size, and the glyph zone, which is refilled for every glyph.
type Zone struct {
	Orig []fixed.Point26_6
	Cur  []fixed.Point26_6
	Tags []uint8
	// Ends holds the exclusive end index of each contour.
	Ends []int
}

// NewZone returns a zone with room for maxPoints points plus the phantom
// points, and maxContours contours. It returns a nil zone and an
// *AllocationError if the request exceeds the format limits.
func NewZone(maxPoints, maxContours int) (*Zone, error) {
	if maxPoints < 0 || maxPoints > MaxZonePoints {
		return nil, &AllocationError{What: "zone points", Requested: maxPoints, Limit: MaxZonePoints}
	}
	if maxContours < 0 || maxContours > MaxZoneContours {
		return nil, &AllocationError{What: "zone contours", Requested: maxContours, Limit: MaxZoneContours}
	}
	n := maxPoints + nPhantomPoints
	return &Zone{
		Orig: make([]fixed.Point26_6, n),
		Cur:  make([]fixed.Point26_6, n),
		Tags: make([]uint8, n),
		Ends: make([]int, 0, maxContours),
	}, nil
}

// Done releases the zone's storage. It is safe to call on a nil zone.
func (z *Zone) Done() {
	if z == nil {
		return
	}
	z.Orig, z.Cur, z.Tags, z.Ends = nil, nil, nil, nil
}

// Len returns the number of addressable points.
func (z *Zone) Len() int {
	if z == nil {
		return 0
	}
	return len(z.Cur)
}

// Grow resizes the zone to hold nPoints points (phantom points included) and
// nContours contours. Storage is reallocated when it is too small but never
// shrunk; the point and contour counts are reset.
func (z *Zone) Grow(nPoints, nContours int) error {
	if nPoints < 0 || nPoints > MaxZonePoints+nPhantomPoints {
		return &AllocationError{What: "zone points", Requested: nPoints, Limit: MaxZonePoints + nPhantomPoints}
	}
	if nContours < 0 || nContours > MaxZoneContours {
		return &AllocationError{What: "zone contours", Requested: nContours, Limit: MaxZoneContours}
	}
	if nPoints <= cap(z.Cur) {
		z.Orig = z.Orig[:nPoints]
		z.Cur = z.Cur[:nPoints]
		z.Tags = z.Tags[:nPoints]
	} else {
		z.Orig = make([]fixed.Point26_6, nPoints, nPoints*2)
		z.Cur = make([]fixed.Point26_6, nPoints, nPoints*2)
		z.Tags = make([]uint8, nPoints, nPoints*2)
	}
	if nContours <= cap(z.Ends) {
		z.Ends = z.Ends[:nContours]
	} else {
		z.Ends = make([]int, nContours, nContours*2)
	}
	return nil
}

// Reset zeroes every point and tag, keeping the size.
func (z *Zone) Reset() {
	for i := range z.Cur {
		z.Orig[i] = fixed.Point26_6{}
		z.Cur[i] = fixed.Point26_6{}
		z.Tags[i] = 0
	}
}

// contour returns the [start, end) point range of contour c.
func (z *Zone) contour(c int) (start, end int, ok bool) {
	if c < 0 || c >= len(z.Ends) {
		return 0, 0, false
	}
	if c > 0 {
		start = z.Ends[c-1]
	}
	return start, z.Ends[c], true
}

// outlineLen returns the number of points that belong to contours, which
// excludes the phantom points of a glyph zone. A zone without contours, such
// as the twilight zone, reports all of its points.
func (z *Zone) outlineLen() int {
	if len(z.Ends) == 0 {
		return len(z.Cur)
	}
	return z.Ends[len(z.Ends)-1]
}
