// seehuhn.de/go/icclut - decode ICC profiles and evaluate their lookup tables
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package iccfile

import (
	"errors"
	"fmt"
	"io"

	bst "github.com/mixcode/binarystruct"
)

// tagICCProfile is the TIFF tag holding an embedded ICC profile.
const tagICCProfile = 0x8773

type tiffHeader struct {
	Magic     uint16
	OffsetIFD int64 `binary:"uint32"`
}

type tiffIFD struct {
	NumEntry int         `binary:"uint16"`
	Entries  []tiffEntry `binary:"[NumEntry]"`
	Next     int64       `binary:"uint32"`
}

type tiffEntry struct {
	Tag   uint16
	Type  uint16
	Count int    `binary:"uint32"`
	Value uint32 `binary:"uint32"` // the value, if it fits into 4 bytes, or an offset
}

// FromTIFF extracts the ICC profile from a TIFF file.  All image file
// directories are searched.
func FromTIFF(r io.ReadSeeker) ([]byte, error) {
	order := make([]byte, 2)
	if err := readFull(r, order); err != nil {
		return nil, err
	}
	var endian bst.ByteOrder
	switch string(order) {
	case "II":
		endian = bst.LittleEndian
	case "MM":
		endian = bst.BigEndian
	default:
		return nil, errors.New("iccfile: invalid TIFF byte order")
	}
	var h tiffHeader
	if _, err := bst.Read(r, endian, &h); err != nil {
		return nil, err
	}
	if h.Magic != 42 {
		return nil, errors.New("iccfile: invalid TIFF header")
	}

	seen := make(map[int64]bool)
	for offset := h.OffsetIFD; offset != 0; {
		if seen[offset] {
			return nil, errors.New("iccfile: loop in TIFF directory chain")
		}
		seen[offset] = true

		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}
		var ifd tiffIFD
		if _, err := bst.Read(r, endian, &ifd); err != nil {
			return nil, err
		}
		for _, e := range ifd.Entries {
			if e.Tag == tagICCProfile {
				return e.bytes(r, endian)
			}
		}
		offset = ifd.Next
	}
	return nil, ErrNoProfile
}

// bytes reads the value of an entry with a byte-sized type.
func (e *tiffEntry) bytes(r io.ReadSeeker, endian bst.ByteOrder) ([]byte, error) {
	switch e.Type {
	case 1, 2, 6, 7: // BYTE, ASCII, SBYTE, UNDEFINED
	default:
		return nil, fmt.Errorf("iccfile: ICC profile tag has type %d", e.Type)
	}
	if e.Count < 0 || e.Count > 1<<30 {
		return nil, fmt.Errorf("iccfile: invalid ICC profile size %d", e.Count)
	}
	if e.Count <= 4 {
		b, err := bst.Marshal(e.Value, endian)
		if err != nil {
			return nil, err
		}
		return b[:e.Count], nil
	}
	if _, err := r.Seek(int64(e.Value), io.SeekStart); err != nil {
		return nil, err
	}
	buf := make([]byte, e.Count)
	if err := readFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
