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
	"compress/zlib"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	bst "github.com/mixcode/binarystruct"
)

// pngChunk is the header of a PNG chunk.  The data and a CRC-32 of type
// and data follow.
type pngChunk struct {
	DataLen int    `binary:"uint32"`
	Type    string `binary:"[4]byte"`
}

// iccpHeader starts the data of an iCCP chunk.  The compressed profile
// follows.
type iccpHeader struct {
	Name        string `binary:"zstring"`
	Compression byte
}

// FromPNG extracts the ICC profile from the iCCP chunk of a PNG file.
func FromPNG(r io.ReadSeeker) ([]byte, error) {
	sig := make([]byte, len(pngMagic))
	if err := readFull(r, sig); err != nil {
		return nil, err
	}
	if !bytes.Equal(sig, pngMagic) {
		return nil, errors.New("iccfile: invalid PNG signature")
	}

	for {
		var ch pngChunk
		if _, err := bst.Read(r, bst.BigEndian, &ch); err == io.EOF {
			return nil, ErrNoProfile
		} else if err != nil {
			return nil, err
		}

		switch ch.Type {
		case "iCCP":
			return readICCP(r, ch)
		case "IDAT", "IEND":
			// iCCP must come before the image data
			return nil, ErrNoProfile
		}
		if _, err := r.Seek(int64(ch.DataLen)+4, io.SeekCurrent); err != nil {
			return nil, err
		}
	}
}

func readICCP(r io.Reader, ch pngChunk) ([]byte, error) {
	if ch.DataLen < 2 || ch.DataLen > 1<<30 {
		return nil, fmt.Errorf("iccfile: invalid iCCP chunk length %d", ch.DataLen)
	}
	data := make([]byte, ch.DataLen)
	if err := readFull(r, data); err != nil {
		return nil, err
	}
	var crc uint32
	if _, err := bst.Read(r, bst.BigEndian, &crc); err != nil {
		return nil, err
	}
	sum := crc32.NewIEEE()
	sum.Write([]byte(ch.Type))
	sum.Write(data)
	if sum.Sum32() != crc {
		return nil, errors.New("iccfile: iCCP chunk has invalid CRC")
	}

	var h iccpHeader
	n, err := bst.Unmarshal(data, bst.BigEndian, &h)
	if err != nil {
		return nil, err
	}
	if h.Compression != 0 {
		return nil, fmt.Errorf("iccfile: unknown iCCP compression method %d", h.Compression)
	}
	zr, err := zlib.NewReader(bytes.NewReader(data[n:]))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
