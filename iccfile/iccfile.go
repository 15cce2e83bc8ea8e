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

// Package iccfile loads ICC profiles from files.
//
// Besides plain .icc files, [Load] accepts zstd-compressed profiles and
// extracts profiles embedded in JPEG, PNG and TIFF images.
package iccfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"seehuhn.de/go/icclut"
)

// ErrNoProfile is returned when an image file has no embedded ICC profile.
var ErrNoProfile = errors.New("iccfile: no embedded ICC profile")

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	jpegMagic = []byte{0xFF, 0xD8}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	tiffLE    = []byte{'I', 'I', 42, 0}
	tiffBE    = []byte{'M', 'M', 0, 42}
)

// Load reads the ICC profile data from the named file.
func Load(fname string) ([]byte, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	data, err = Extract(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return data, nil
}

// LoadProfile reads and decodes the ICC profile in the named file.
func LoadProfile(fname string) (*icclut.Profile, error) {
	data, err := Load(fname)
	if err != nil {
		return nil, err
	}
	p, err := icclut.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return p, nil
}

// Extract returns the profile data contained in data.  The file format is
// detected from the leading bytes; data which is not a recognised
// container is returned unchanged.
func Extract(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return decompress(data)
	case bytes.HasPrefix(data, jpegMagic):
		return FromJPEG(bytes.NewReader(data))
	case bytes.HasPrefix(data, pngMagic):
		return FromPNG(bytes.NewReader(data))
	case bytes.HasPrefix(data, tiffLE), bytes.HasPrefix(data, tiffBE):
		return FromTIFF(bytes.NewReader(data))
	default:
		return data, nil
	}
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// readFull is io.ReadFull, with io.EOF reported as io.ErrUnexpectedEOF.
func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}
