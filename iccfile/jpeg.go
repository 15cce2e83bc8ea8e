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
	"bytes"
	"errors"
	"fmt"
	"io"

	bst "github.com/mixcode/binarystruct"
)

// JPEG markers
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP2 = 0xE2
	markerRST0 = 0xD0
	markerRST7 = 0xD7
	markerTEM  = 0x01
)

var iccSegmentID = []byte("ICC_PROFILE\x00")

// FromJPEG extracts the ICC profile from the APP2 segments of a JPEG
// file.  Large profiles are split over several segments, each carrying
// its sequence number and the total number of segments.
func FromJPEG(r io.ReadSeeker) ([]byte, error) {
	var soi uint16
	if _, err := bst.Read(r, bst.BigEndian, &soi); err != nil {
		return nil, err
	}
	if soi != 0xFF00|markerSOI {
		return nil, errors.New("iccfile: missing JPEG start-of-image marker")
	}

	var chunks map[int][]byte
	total := 0
	for {
		var code uint16
		if _, err := bst.Read(r, bst.BigEndian, &code); err != nil {
			return nil, err
		}
		if code>>8 != 0xFF {
			return nil, fmt.Errorf("iccfile: invalid JPEG marker 0x%04X", code)
		}
		marker := byte(code)
		if marker == 0xFF {
			// fill byte
			if _, err := r.Seek(-1, io.SeekCurrent); err != nil {
				return nil, err
			}
			continue
		}
		if marker == markerEOI || marker == markerSOS {
			break
		}
		if marker == markerTEM || (marker >= markerRST0 && marker <= markerRST7) {
			continue
		}

		var length uint16 // includes the length field itself
		if _, err := bst.Read(r, bst.BigEndian, &length); err != nil {
			return nil, err
		}
		n := int(length) - 2
		if n < 0 {
			return nil, errors.New("iccfile: invalid JPEG segment length")
		}
		if marker != markerAPP2 || n < len(iccSegmentID)+2 {
			if _, err := r.Seek(int64(n), io.SeekCurrent); err != nil {
				return nil, err
			}
			continue
		}

		body := make([]byte, n)
		if err := readFull(r, body); err != nil {
			return nil, err
		}
		if !bytes.HasPrefix(body, iccSegmentID) {
			continue
		}
		seq := int(body[len(iccSegmentID)])
		count := int(body[len(iccSegmentID)+1])
		if total == 0 {
			total = count
			chunks = make(map[int][]byte, count)
		} else if count != total {
			return nil, errors.New("iccfile: inconsistent ICC segment count")
		}
		if seq < 1 || seq > total {
			return nil, fmt.Errorf("iccfile: invalid ICC segment number %d", seq)
		}
		chunks[seq] = body[len(iccSegmentID)+2:]
	}

	if total == 0 {
		return nil, ErrNoProfile
	}
	var res []byte
	for i := 1; i <= total; i++ {
		chunk, ok := chunks[i]
		if !ok {
			return nil, fmt.Errorf("iccfile: ICC segment %d of %d is missing", i, total)
		}
		res = append(res, chunk...)
	}
	return res, nil
}
