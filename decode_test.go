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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tagBuilder assembles tag data for tests.
type tagBuilder struct {
	buf []byte
}

func newTag(sig string) *tagBuilder {
	b := &tagBuilder{buf: make([]byte, 8)}
	copy(b.buf, sig)
	return b
}

func (b *tagBuilder) u16(vals ...uint16) *tagBuilder {
	for _, v := range vals {
		b.buf = binary.BigEndian.AppendUint16(b.buf, v)
	}
	return b
}

func (b *tagBuilder) u32(vals ...uint32) *tagBuilder {
	for _, v := range vals {
		b.buf = binary.BigEndian.AppendUint32(b.buf, v)
	}
	return b
}

func (b *tagBuilder) u64(vals ...uint64) *tagBuilder {
	for _, v := range vals {
		b.buf = binary.BigEndian.AppendUint64(b.buf, v)
	}
	return b
}

func (b *tagBuilder) f32(vals ...float32) *tagBuilder {
	for _, v := range vals {
		b.buf = binary.BigEndian.AppendUint32(b.buf, math.Float32bits(v))
	}
	return b
}

// s15 appends numbers in s15Fixed16 encoding.
func (b *tagBuilder) s15(vals ...float64) *tagBuilder {
	for _, x := range vals {
		i := math.Floor(x)
		b.u16(uint16(int16(i)), uint16(math.Round((x-i)*65535)))
	}
	return b
}

func (b *tagBuilder) bytes(p ...byte) *tagBuilder {
	b.buf = append(b.buf, p...)
	return b
}

// str appends s, padded with zeros to n bytes.
func (b *tagBuilder) str(s string, n int) *tagBuilder {
	field := make([]byte, n)
	copy(field, s)
	b.buf = append(b.buf, field...)
	return b
}

func (b *tagBuilder) decode(t *testing.T, version Version) TagData {
	t.Helper()
	data, err := DecodeTag(b.buf, len(b.buf), version)
	require.NoError(t, err)
	return data
}

func TestDecodeNumericArrays(t *testing.T) {
	data := newTag("sf32").s15(1.5, -1).decode(t, Version4_2_0)
	assert.Equal(t, S15Fixed16Array{{1, 0x8000}, {-1, 0}}, data)

	data = newTag("uf32").u16(2, 0xFFFF).decode(t, Version4_2_0)
	assert.Equal(t, U16Fixed16Array{{2, 0xFFFF}}, data)

	data = newTag("ui08").bytes(1, 2, 3).decode(t, Version4_2_0)
	assert.Equal(t, UInt8Array{1, 2, 3}, data)

	data = newTag("ui16").u16(1, 65535).decode(t, Version4_2_0)
	assert.Equal(t, UInt16Array{1, 65535}, data)

	data = newTag("ui32").u32(7).decode(t, Version4_2_0)
	assert.Equal(t, UInt32Array{7}, data)

	data = newTag("ui64").u64(1 << 40).decode(t, Version4_2_0)
	assert.Equal(t, UInt64Array{1 << 40}, data)

	data = newTag("dtim").u16(2001, 2, 3, 4, 5, 6).decode(t, Version4_2_0)
	assert.Equal(t, DateTime(time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)), data)
}

func TestDecodeShortSignature(t *testing.T) {
	// some profiles write "XYZ" followed by a NUL byte
	data := newTag("XYZ\x00").u32(0xF6D6, 0x10000, 0xD32D).decode(t, Version2_1_0)
	require.IsType(t, XYZArray{}, data)
	assert.Equal(t, "XYZ ", data.TypeSignature())
	xyz := data.(XYZArray)
	require.Len(t, xyz, 1)
	assert.InDelta(t, 0.9642, xyz[0].X.Float64(), 1e-4)
	assert.InDelta(t, 1.0, xyz[0].Y.Float64(), 1e-9)
}

func TestDecodeTagLength(t *testing.T) {
	buf := newTag("ui32").u32(1, 2).buf

	_, err := DecodeTag(buf, 4, Version4_2_0)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = DecodeTag(buf, len(buf)+1, Version4_2_0)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// trailing bytes beyond length are ignored
	data, err := DecodeTag(buf, 12, Version4_2_0)
	require.NoError(t, err)
	assert.Equal(t, UInt32Array{1}, data)
}

func TestDecodeUnknownType(t *testing.T) {
	data := newTag("zzzz").bytes(9, 8, 7).decode(t, Version4_2_0)
	assert.Equal(t, &Raw{Signature: "zzzz", Data: []byte{9, 8, 7}}, data)
	assert.Equal(t, "zzzz", data.TypeSignature())
}

func TestDecodeText(t *testing.T) {
	data := newTag("text").str("hello", 8).decode(t, Version4_2_0)
	assert.Equal(t, &Text{Signature: "text", Value: "hello"}, data)

	data = newTag("sig ").str("prmg", 4).decode(t, Version4_2_0)
	assert.Equal(t, &Text{Signature: "sig ", Value: "prmg"}, data)

	data = newTag("data").u32(0).str("abc", 4).decode(t, Version4_2_0)
	assert.Equal(t, &Text{Signature: "data", Value: "abc"}, data)

	data = newTag("data").u32(1).bytes(0, 1, 2).decode(t, Version4_2_0)
	assert.Equal(t, Binary{0, 1, 2}, data)
}

// utf16 returns the UTF-16BE encoding of an ASCII string.
func utf16(s string) []byte {
	res := make([]byte, 0, 2*len(s))
	for _, c := range []byte(s) {
		res = append(res, 0, c)
	}
	return res
}

func mlucTag(records ...LocalizedUnicode) *tagBuilder {
	b := newTag("mluc").u32(uint32(len(records)), 12)
	pos := 16 + 12*len(records)
	var strs []byte
	for _, rec := range records {
		s := utf16(rec.Value)
		b.str(rec.Language, 2).str(rec.Country, 2)
		b.u32(uint32(len(s)), uint32(pos+len(strs)))
		strs = append(strs, s...)
	}
	return b.bytes(strs...)
}

func TestDecodeMLUC(t *testing.T) {
	want := MultiLocalizedUnicode{
		{Language: "de", Country: "DE", Value: "Hallo"},
		{Language: "en", Country: "US", Value: "Hello"},
	}
	data := mlucTag(want...).decode(t, Version4_2_0)
	assert.Equal(t, want, data)
	assert.Equal(t, "Hello", data.(MultiLocalizedUnicode).String())

	// odd string length
	b := mlucTag(want...)
	binary.BigEndian.PutUint32(b.buf[20:], 5)
	_, err := DecodeTag(b.buf, len(b.buf), Version4_2_0)
	assert.Error(t, err)
}

// descTag returns a complete textDescriptionType with an empty Unicode
// part.
func descTag(s string) *tagBuilder {
	b := newTag("desc").u32(uint32(len(s) + 1)).str(s, len(s)+1)
	b.u32(0, 0)   // Unicode language and count
	b.u16(0)      // ScriptCode code
	b.bytes(0)    // ScriptCode count
	b.str("", 67) // ScriptCode string
	return b
}

func TestDecodeDesc(t *testing.T) {
	data := descTag("sRGB").decode(t, Version2_1_0)
	assert.Equal(t, &Descriptor{ASCII: "sRGB"}, data)

	// version 2 profiles often omit the Unicode and ScriptCode parts
	truncated := newTag("desc").u32(5).str("test", 5)
	data = truncated.decode(t, Version2_1_0)
	assert.Equal(t, &Descriptor{ASCII: "test"}, data)

	_, err := DecodeTag(truncated.buf, len(truncated.buf), Version4_2_0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDecodeProfileSequence(t *testing.T) {
	b := newTag("pseq").u32(2)

	b.u32(0x41434D45, 1).u64(3).u32(0x6F666673)
	b.bytes(newTag("text").str("ACME", 5).buf...)
	b.bytes(newTag("text").str("Model 1", 8).buf...)

	b.u32(0x41434D45, 2).u64(0).u32(0)
	b.bytes(descTag("abc").buf...)
	b.bytes(mlucTag(LocalizedUnicode{Language: "en", Country: "US", Value: "x"}).buf...)

	data := b.decode(t, Version2_1_0)
	want := ProfileSequence{
		{
			Manufacturer:     0x41434D45,
			Model:            1,
			Attributes:       3,
			Technology:       0x6F666673,
			ManufacturerDesc: plainText("ACME"),
			ModelDesc:        plainText("Model 1"),
		},
		{
			Manufacturer:     0x41434D45,
			Model:            2,
			ManufacturerDesc: plainText("abc"),
			ModelDesc:        MultiLocalizedUnicode{{Language: "en", Country: "US", Value: "x"}},
		},
	}
	assert.Equal(t, want, data)
}

func TestDecodeProfileSequenceTruncated(t *testing.T) {
	// the embedded desc record stops before the 67-byte script field
	b := newTag("pseq").u32(1)
	b.u32(0, 0).u64(0).u32(0)
	b.bytes(newTag("desc").u32(0).u32(0, 0).u16(0).bytes(0).buf...)
	require.Len(t, b.buf, 55)

	_, err := DecodeTag(b.buf, len(b.buf), Version4_2_0)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// the model description is missing
	b = newTag("pseq").u32(1)
	b.u32(0, 0).u64(0).u32(0)
	b.bytes(descTag("abc").buf...)
	_, err = DecodeTag(b.buf, len(b.buf), Version4_2_0)
	assert.Error(t, err)
}

func TestDecodeResponseCurveSet(t *testing.T) {
	b := newTag("rcs2").u16(1, 1).u32(16)
	b.str("StaA", 4).u32(1).s15(0.5, 1, 0.25)
	b.u16(0x8000, 0).s15(1.5)
	data := b.decode(t, Version4_2_0)

	set, ok := data.(*ResponseCurveSet16)
	require.True(t, ok)
	assert.Equal(t, 1, set.Channels)
	require.Len(t, set.Curves, 1)
	c := set.Curves[0]
	assert.Equal(t, "StaA", c.Unit)
	require.Len(t, c.Measurements, 1)
	require.Len(t, c.Measurements[0], 1)
	assert.Equal(t, uint16(0x8000), c.Measurements[0][0].Device)
	assert.InDelta(t, 1.5, c.Measurements[0][0].Measurement.Float64(), 1e-4)

	// 65535 channels, but no room for their counts and XYZ values
	b = newTag("rcs2").u16(65535, 1).u32(16).str("StaA", 4)
	_, err := DecodeTag(b.buf, len(b.buf), Version4_2_0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDecodeMiscTypes(t *testing.T) {
	data := newTag("chrm").u16(2, 1).u16(0, 0x8000, 0, 0x4000, 1, 0, 0, 0).decode(t, Version4_2_0)
	assert.Equal(t, &Chromaticity{
		Phosphor: 1,
		Channels: []ChromaticityCoordinate{
			{X: U16Fixed16Number{0, 0x8000}, Y: U16Fixed16Number{0, 0x4000}},
			{X: U16Fixed16Number{1, 0}},
		},
	}, data)

	data = newTag("meas").u32(1).s15(0, 0, 0).u32(2).u16(0, 0x8000).u32(3).decode(t, Version4_2_0)
	assert.Equal(t, &Measurement{
		Observer:       1,
		Geometry:       2,
		Flare:          U16Fixed16Number{0, 0x8000},
		IlluminantType: 3,
	}, data)

	data = newTag("view").s15(1, 1, 1, 0, 0, 0).u32(1).decode(t, Version4_2_0)
	one := S15Fixed16Number{Integer: 1}
	assert.Equal(t, &ViewConditions{
		Illuminant:     XYZNumber{one, one, one},
		IlluminantType: 1,
	}, data)

	data = newTag("clrt").u32(1).str("Cyan", 32).u16(1, 2, 3).decode(t, Version4_2_0)
	assert.Equal(t, ColorantTable{{Name: "Cyan", PCS: [3]uint16{1, 2, 3}}}, data)

	data = newTag("clro").u32(4).bytes(3, 2, 1, 0).decode(t, Version4_2_0)
	assert.Equal(t, ColorantOrder{3, 2, 1, 0}, data)

	data = newTag("ncl2").u32(0, 1, 2).str("pre", 32).str("suf", 32).
		str("Red", 32).u16(10, 20, 30).u16(100, 200).decode(t, Version4_2_0)
	assert.Equal(t, &NamedColor2{
		Prefix: "pre",
		Suffix: "suf",
		Colors: []NamedColor{{Name: "Red", PCS: [3]uint16{10, 20, 30}, Device: []uint16{100, 200}}},
	}, data)

	b := newTag("crdi").u32(4).str("abc", 4)
	for range 4 {
		b.u32(2).str("p", 2)
	}
	data = b.decode(t, Version2_1_0)
	assert.Equal(t, &CRDInfo{Product: "abc", CRDNames: [4]string{"p", "p", "p", "p"}}, data)
}

func TestDecodeColorantTableOverflow(t *testing.T) {
	b := newTag("clrt").u32(1000).str("Cyan", 32).u16(1, 2, 3)
	_, err := DecodeTag(b.buf, len(b.buf), Version4_2_0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDecodeMultiProcessElements(t *testing.T) {
	matf := newTag("matf").u16(3, 3).
		f32(1, 0, 0, 0, 1, 0, 0, 0, 1).
		f32(0.5, 0, 0)
	b := newTag("mpet").u16(3, 3).u32(1)
	b.u32(24, uint32(len(matf.buf)))
	b.bytes(matf.buf...)

	data := b.decode(t, Version4_2_0)
	assert.Equal(t, &MultiProcessElements{
		Inputs:  3,
		Outputs: 3,
		Elements: []TagData{&MatrixElement{
			Inputs:  3,
			Outputs: 3,
			Matrix:  []float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
			Offsets: []float32{0.5, 0, 0},
		}},
	}, data)

	clut := newTag("clut").u16(2, 1).str("\x02\x00", 16).f32(0, 0.25)
	b = newTag("mpet").u16(2, 1).u32(1)
	b.u32(24, uint32(len(clut.buf)))
	b.bytes(clut.buf...)
	_, err := DecodeTag(b.buf, len(b.buf), Version4_2_0)
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestTagType(t *testing.T) {
	tag, err := ParseTagType("A2B0")
	require.NoError(t, err)
	assert.Equal(t, AToB0, tag)
	assert.Equal(t, `"A2B0"`, tag.String())
	assert.Equal(t, "A2B0", tag.Signature())

	tag, err = ParseTagType("XYZ")
	require.NoError(t, err)
	assert.Equal(t, "XYZ ", tag.Signature())

	assert.Equal(t, "Profile Description", ProfileDescription.String())
	assert.Equal(t, "0x00000100", TagType(0x100).String())

	_, err = ParseTagType("toolong")
	assert.Error(t, err)
}
