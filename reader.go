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
	"encoding/binary"
	"math"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// reader gives bounds-checked, big-endian access to a byte slice.
// All offsets are absolute.  The first failed access is remembered in err
// and all further reads return zero values.
type reader struct {
	buf []byte
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

// check verifies that size bytes starting at offset are available.
func (r *reader) check(offset, size int) bool {
	if r.err != nil {
		return false
	}
	if offset < 0 || size < 0 || offset > len(r.buf) || size > len(r.buf)-offset {
		r.err = outOfBounds(offset, size, len(r.buf))
		return false
	}
	return true
}

// fits reports whether size bytes starting at offset are available,
// without recording an error.
func (r *reader) fits(offset, size int) bool {
	return offset >= 0 && size >= 0 && offset <= len(r.buf) && size <= len(r.buf)-offset
}

// table is like check, but reports failures as a data shortage.  This is
// used before reading the large tables of lut8 and lut16 tags.
func (r *reader) table(offset, size int) bool {
	if r.err != nil {
		return false
	}
	if offset < 0 || size < 0 || offset > len(r.buf) || size > len(r.buf)-offset {
		r.err = dataShortage(offset, size, len(r.buf))
		return false
	}
	return true
}

func (r *reader) u8(offset int) uint8 {
	if !r.check(offset, 1) {
		return 0
	}
	return r.buf[offset]
}

func (r *reader) u16(offset int) uint16 {
	if !r.check(offset, 2) {
		return 0
	}
	return binary.BigEndian.Uint16(r.buf[offset:])
}

func (r *reader) u32(offset int) uint32 {
	if !r.check(offset, 4) {
		return 0
	}
	return binary.BigEndian.Uint32(r.buf[offset:])
}

func (r *reader) u64(offset int) uint64 {
	if !r.check(offset, 8) {
		return 0
	}
	return binary.BigEndian.Uint64(r.buf[offset:])
}

func (r *reader) u128(offset int) [16]byte {
	var res [16]byte
	if r.check(offset, 16) {
		copy(res[:], r.buf[offset:])
	}
	return res
}

func (r *reader) f32(offset int) float32 {
	if !r.check(offset, 4) {
		return 0
	}
	return math.Float32frombits(binary.BigEndian.Uint32(r.buf[offset:]))
}

func (r *reader) s15Fixed16(offset int) S15Fixed16Number {
	if !r.check(offset, 4) {
		return S15Fixed16Number{}
	}
	return S15Fixed16Number{
		Integer: int16(binary.BigEndian.Uint16(r.buf[offset:])),
		Decimal: binary.BigEndian.Uint16(r.buf[offset+2:]),
	}
}

func (r *reader) u16Fixed16(offset int) U16Fixed16Number {
	if !r.check(offset, 4) {
		return U16Fixed16Number{}
	}
	return U16Fixed16Number{
		Integer: binary.BigEndian.Uint16(r.buf[offset:]),
		Decimal: binary.BigEndian.Uint16(r.buf[offset+2:]),
	}
}

func (r *reader) u8Fixed8(offset int) U8Fixed8Number {
	if !r.check(offset, 2) {
		return U8Fixed8Number{}
	}
	return U8Fixed8Number{Integer: r.buf[offset], Decimal: r.buf[offset+1]}
}

func (r *reader) u1Fixed15(offset int) U1Fixed15Number {
	return U1Fixed15Number{Decimal: r.u16(offset)}
}

func (r *reader) xyz(offset int) XYZNumber {
	return XYZNumber{
		X: r.s15Fixed16(offset),
		Y: r.s15Fixed16(offset + 4),
		Z: r.s15Fixed16(offset + 8),
	}
}

// ascii reads a fixed-length string field.  The result stops at the first
// NUL byte.
func (r *reader) ascii(offset, n int) string {
	if !r.check(offset, n) {
		return ""
	}
	b := r.buf[offset : offset+n]
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	return string(b)
}

// utf16 reads n UTF-16BE code units.  The result stops at the first NUL
// character.
func (r *reader) utf16(offset, n int) string {
	if !r.check(offset, 2*n) {
		return ""
	}
	b := r.buf[offset : offset+2*n]
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			b = b[:i]
			break
		}
	}
	return decodeUTF16(b)
}

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

func decodeUTF16(b []byte) string {
	res, err := utf16BE.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(res)
}

// bytes returns a copy of n bytes starting at offset.
func (r *reader) bytes(offset, n int) []byte {
	if !r.check(offset, n) {
		return nil
	}
	res := make([]byte, n)
	copy(res, r.buf[offset:])
	return res
}

// signature reads a four character type signature.  If the field is
// truncated or reads as an empty string, a three character read is
// attempted instead.
func (r *reader) signature(offset int) string {
	if offset >= 0 && offset <= len(r.buf)-4 {
		if sig := r.ascii(offset, 4); sig != "" {
			return sig
		}
	}
	return r.ascii(offset, 3)
}
