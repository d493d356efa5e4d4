// Copyright 2015 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package truetype

import (
	"fmt"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// A NameID identifies a name table entry.
//
// See https://developer.apple.com/fonts/TrueType-Reference-Manual/RM06/Chap6name.html
type NameID uint16

const (
	NameIDCopyright          NameID = 0
	NameIDFontFamily         NameID = 1
	NameIDFontSubfamily      NameID = 2
	NameIDUniqueSubfamilyID  NameID = 3
	NameIDFontFullName       NameID = 4
	NameIDNameTableVersion   NameID = 5
	NameIDPostscriptName     NameID = 6
	NameIDTrademarkNotice    NameID = 7
	NameIDManufacturerName   NameID = 8
	NameIDDesignerName       NameID = 9
	NameIDFontDescription    NameID = 10
	NameIDFontVendorURL      NameID = 11
	NameIDFontDesignerURL    NameID = 12
	NameIDFontLicense        NameID = 13
	NameIDFontLicenseURL     NameID = 14
	NameIDPreferredFamily    NameID = 16
	NameIDPreferredSubfamily NameID = 17
	NameIDCompatibleName     NameID = 18
	NameIDSampleText         NameID = 19
)

const (
	platformUnicode   = 0
	platformMac       = 1
	platformMicrosoft = 3

	macEncodingRoman = 0
	msEncodingSymbol = 0
	msEncodingUCS2   = 1
	msEncodingUCS4   = 10
)

// nameDecoder returns the decoder for a name record's platform and
// encoding, or nil if the encoding is not supported.
func nameDecoder(platformID, encodingID uint16) encoding.Encoding {
	switch platformID {
	case platformUnicode:
		return xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM)
	case platformMac:
		if encodingID == macEncodingRoman {
			return charmap.Macintosh
		}
	case platformMicrosoft:
		switch encodingID {
		case msEncodingSymbol, msEncodingUCS2, msEncodingUCS4:
			return xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM)
		}
	}
	return nil
}

// Name returns the Face's name value for the given NameID. It returns "" if
// there is no such entry or no entry in a supported encoding. Unicode and
// Microsoft entries are preferred over Macintosh ones.
func (f *Face) Name(id NameID) (string, error) {
	if len(f.name) == 0 {
		return "", nil
	}
	if len(f.name) < 6 {
		return "", FormatError("name table too short")
	}
	n, stringOffset := int(u16(f.name, 2)), int(u16(f.name, 4))
	if len(f.name) < 6+12*n {
		return "", FormatError(fmt.Sprintf("bad name table length: %d", len(f.name)))
	}
	var (
		best    []byte
		bestEnc encoding.Encoding
		bestMac bool
	)
	for i := 0; i < n; i++ {
		x := 6 + 12*i
		if NameID(u16(f.name, x+6)) != id {
			continue
		}
		enc := nameDecoder(u16(f.name, x), u16(f.name, x+2))
		if enc == nil {
			continue
		}
		isMac := u16(f.name, x) == platformMac
		if best != nil && (isMac || !bestMac) {
			continue
		}
		length, offset := int(u16(f.name, x+8)), stringOffset+int(u16(f.name, x+10))
		if offset+length > len(f.name) {
			return "", FormatError(fmt.Sprintf("bad name record %d", i))
		}
		best, bestEnc, bestMac = f.name[offset:offset+length], enc, isMac
	}
	if best == nil {
		return "", nil
	}
	t := transform.Chain(bestEnc.NewDecoder(), runes.Remove(runes.Predicate(unicode.IsControl)))
	s, _, err := transform.Bytes(t, best)
	if err != nil {
		return "", fmt.Errorf("truetype: decoding name %d: %w", id, err)
	}
	return string(s), nil
}
