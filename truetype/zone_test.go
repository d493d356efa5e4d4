// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"errors"
	"testing"

	"golang.org/x/image/math/fixed"
)

func TestNewZone(t *testing.T) {
	z, err := NewZone(0, 0)
	if err != nil {
		t.Fatalf("NewZone(0, 0): %v", err)
	}
	if z.Len() != nPhantomPoints {
		t.Errorf("Len = %d, want %d", z.Len(), nPhantomPoints)
	}

	z, err = NewZone(MaxZonePoints+1, 0)
	var ae *AllocationError
	if !errors.As(err, &ae) || z != nil {
		t.Errorf("too many points: got %v, %v, want nil and an *AllocationError", z, err)
	}
	z, err = NewZone(0, -1)
	if !errors.As(err, &ae) || z != nil {
		t.Errorf("negative contours: got %v, %v, want nil and an *AllocationError", z, err)
	}
}

func TestZoneGrowAndReset(t *testing.T) {
	z, err := NewZone(2, 1)
	if err != nil {
		t.Fatalf("NewZone: %v", err)
	}
	z.Cur[0] = fixed.Point26_6{X: 5, Y: 6}
	z.Tags[0] = tagOnCurve | tagTouchedX
	if err := z.Grow(3, 1); err != nil {
		t.Fatalf("Grow(3, 1): %v", err)
	}
	if z.Len() != 3 || len(z.Ends) != 1 {
		t.Errorf("after shrinking Grow: %d points, %d contours, want 3, 1", z.Len(), len(z.Ends))
	}
	if err := z.Grow(100, 4); err != nil {
		t.Fatalf("Grow(100, 4): %v", err)
	}
	if z.Len() != 100 || len(z.Ends) != 4 {
		t.Errorf("after growing: %d points, %d contours, want 100, 4", z.Len(), len(z.Ends))
	}
	z.Cur[99] = fixed.Point26_6{X: 1}
	z.Reset()
	for i := range z.Cur {
		if z.Cur[i] != (fixed.Point26_6{}) || z.Orig[i] != (fixed.Point26_6{}) || z.Tags[i] != 0 {
			t.Fatalf("point %d not cleared by Reset", i)
		}
	}
	if err := z.Grow(MaxZonePoints+nPhantomPoints+1, 0); err == nil {
		t.Error("Grow past the limit succeeded")
	}

	var nilZone *Zone
	if nilZone.Len() != 0 {
		t.Error("nil zone has points")
	}
	nilZone.Done()
}

func TestZoneContours(t *testing.T) {
	z, err := NewZone(6, 2)
	if err != nil {
		t.Fatalf("NewZone: %v", err)
	}
	z.Ends = append(z.Ends, 2, 6)
	if start, end, ok := z.contour(1); !ok || start != 2 || end != 6 {
		t.Errorf("contour(1) = %d, %d, %t, want 2, 6, true", start, end, ok)
	}
	if _, _, ok := z.contour(2); ok {
		t.Error("contour(2) exists")
	}
	if n := z.outlineLen(); n != 6 {
		t.Errorf("outlineLen = %d, want 6", n)
	}
}
