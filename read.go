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

package icclut

import (
	"bytes"
	"crypto/md5"
	"fmt"

	bst "github.com/mixcode/binarystruct"
)

// headerSize is the size of the fixed profile header.
const headerSize = 128

// rawHeader is the on-disk layout of the profile header.
type rawHeader struct {
	Size               uint32
	PreferredCMMType   uint32
	Version            uint32
	Class              uint32
	ColorSpace         uint32
	PCS                uint32
	Year               uint16
	Month              uint16
	Day                uint16
	Hour               uint16
	Minute             uint16
	Second             uint16
	Magic              string `binary:"[4]byte"`
	PrimaryPlatform    uint32
	Flags              uint32
	DeviceManufacturer uint32
	DeviceModel        uint32
	DeviceAttributes   uint64
	RenderingIntent    uint32
	IlluminantX        int32
	IlluminantY        int32
	IlluminantZ        int32
	Creator            uint32
	ProfileIDHi        uint64
	ProfileIDLo        uint64
	// 28 reserved bytes follow
}

// Decode decodes an ICC profile.  The data is copied; the caller may reuse
// the buffer afterwards.
//
// Decoding fails if any tag cannot be decoded.  Tags of unknown type do not
// cause an error; they are stored as [*Raw].
func Decode(data []byte) (*Profile, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w (got %d bytes)", ErrProfileTooShort, len(data))
	}
	data = bytes.Clone(data)

	var raw rawHeader
	if _, err := bst.Unmarshal(data[:headerSize], bst.BigEndian, &raw); err != nil {
		return nil, &InvalidProfileError{Reason: "malformed header", Err: err}
	}
	p := &Profile{
		Header: raw.header(),
		Tags:   make(map[TagType]TagData),
	}
	p.CheckSum = checkProfileID(data, p.ProfileID)

	r := newReader(data)
	numTags := r.u32(headerSize)
	if r.err != nil {
		return nil, &InvalidProfileError{Offset: headerSize, Reason: "missing tag count", Err: r.err}
	}
	if uint64(numTags) > uint64(len(data)-headerSize-4)/12 {
		err := outOfBounds(headerSize+4, int(min(uint64(numTags)*12, 1<<31)), len(data))
		return nil, &InvalidProfileError{Offset: headerSize, Reason: "too many tags", Err: err}
	}

	p.Directory = make([]TagEntry, numTags)
	for i := range p.Directory {
		pos := headerSize + 4 + 12*i
		e := TagEntry{
			Signature: TagType(r.u32(pos)),
			Offset:    r.u32(pos + 4),
			Length:    r.u32(pos + 8),
		}
		p.Directory[i] = e

		start, end := int64(e.Offset), int64(e.Offset)+int64(e.Length)
		if end > int64(len(data)) {
			err := outOfBounds(int(start), int(e.Length), len(data))
			return nil, &InvalidProfileError{Offset: pos, Tag: e.Signature, Reason: "tag data out of bounds", Err: err}
		}
		if e.Length < 8 {
			return nil, &InvalidProfileError{Offset: pos + 8, Tag: e.Signature, Reason: "tag is too small"}
		}

		val, err := DecodeTag(data[start:end], int(e.Length), p.Version)
		if err != nil {
			return nil, &InvalidProfileError{Offset: int(start), Tag: e.Signature, Err: err}
		}
		p.Tags[e.Signature] = val
	}
	return p, nil
}

func (raw *rawHeader) header() Header {
	h := Header{
		Size:               raw.Size,
		PreferredCMMType:   raw.PreferredCMMType,
		Version:            Version(raw.Version),
		Class:              ProfileClass(raw.Class),
		ColorSpace:         ColorSpace(raw.ColorSpace),
		PCS:                ColorSpace(raw.PCS),
		Magic:              raw.Magic,
		PrimaryPlatform:    raw.PrimaryPlatform,
		Flags:              raw.Flags,
		DeviceManufacturer: raw.DeviceManufacturer,
		DeviceModel:        raw.DeviceModel,
		DeviceAttributes:   raw.DeviceAttributes,
		RenderingIntent:    RenderingIntent(raw.RenderingIntent),
		Illuminant: XYZNumber{
			X: s15Fixed16(raw.IlluminantX),
			Y: s15Fixed16(raw.IlluminantY),
			Z: s15Fixed16(raw.IlluminantZ),
		},
		Creator: raw.Creator,
	}
	h.CreationDate = makeDate(int(raw.Year), int(raw.Month), int(raw.Day),
		int(raw.Hour), int(raw.Minute), int(raw.Second))
	for i := range 8 {
		h.ProfileID[i] = byte(raw.ProfileIDHi >> (56 - 8*i))
		h.ProfileID[8+i] = byte(raw.ProfileIDLo >> (56 - 8*i))
	}
	return h
}

func s15Fixed16(v int32) S15Fixed16Number {
	return S15Fixed16Number{Integer: int16(v >> 16), Decimal: uint16(v)}
}

// checkProfileID compares the profile ID with the MD5 hash of the profile.
// The hash covers the whole profile, with the flags, rendering intent and
// profile ID fields set to zero.
func checkProfileID(data []byte, id [16]byte) CheckSum {
	if id == [16]byte{} {
		return CheckSumMissing
	}
	buf := bytes.Clone(data)
	clear(buf[44:48])
	clear(buf[64:68])
	clear(buf[84:100])
	if md5.Sum(buf) == id {
		return CheckSumValid
	}
	return CheckSumInvalid
}
