// Copyright 2015 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

//go:build !nohint

package truetype

// hintingAvailable reports whether the bytecode interpreter is compiled in.
// Build with the nohint tag to leave it out.
const hintingAvailable = true
