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
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var identity3x3 = [9]S15Fixed16Number{
	{Integer: 1}, {}, {},
	{}, {Integer: 1}, {},
	{}, {}, {Integer: 1},
}

func putS15Fixed16(buf []byte, offset int, x S15Fixed16Number) {
	binary.BigEndian.PutUint16(buf[offset:], uint16(x.Integer))
	binary.BigEndian.PutUint16(buf[offset+2:], x.Decimal)
}

func appendUint16s(buf []byte, vals []uint16) []byte {
	for _, v := range vals {
		buf = binary.BigEndian.AppendUint16(buf, v)
	}
	return buf
}

// encodeLut8 returns the "mft1" encoding of l.
func encodeLut8(l *Lut8) []byte {
	buf := make([]byte, 48)
	copy(buf, "mft1")
	buf[8], buf[9], buf[10] = byte(l.Inputs), byte(l.Outputs), byte(l.GridPoints)
	for i, m := range l.Matrix {
		putS15Fixed16(buf, 12+4*i, m)
	}
	buf = append(buf, l.InputTable...)
	buf = append(buf, l.CLUT...)
	buf = append(buf, l.OutputTable...)
	return buf
}

// encodeLut16 returns the "mft2" encoding of l.
func encodeLut16(l *Lut16) []byte {
	buf := make([]byte, 52)
	copy(buf, "mft2")
	buf[8], buf[9], buf[10] = byte(l.Inputs), byte(l.Outputs), byte(l.GridPoints)
	for i, m := range l.Matrix {
		putS15Fixed16(buf, 12+4*i, m)
	}
	binary.BigEndian.PutUint16(buf[48:], uint16(l.InputEntries))
	binary.BigEndian.PutUint16(buf[50:], uint16(l.OutputEntries))
	buf = appendUint16s(buf, l.InputTable)
	buf = appendUint16s(buf, l.CLUT)
	buf = appendUint16s(buf, l.OutputTable)
	return buf
}

// identityLut8 returns an 8-bit table where all stages are the identity.
// The grid has two points per axis.
func identityLut8(channels int) *Lut8 {
	l := &Lut8{
		Inputs:      channels,
		Outputs:     channels,
		GridPoints:  2,
		InputTable:  make([]uint8, 256*channels),
		CLUT:        make([]uint8, (1<<channels)*channels),
		OutputTable: make([]uint8, 256*channels),
	}
	if channels == 3 {
		l.Matrix = identity3x3
	}
	for ch := range channels {
		for i := range 256 {
			l.InputTable[ch*256+i] = uint8(i)
			l.OutputTable[ch*256+i] = uint8(i)
		}
	}
	for corner := range 1 << channels {
		for ch := range channels {
			// the first channel varies slowest
			if corner&(1<<(channels-1-ch)) != 0 {
				l.CLUT[corner*channels+ch] = 255
			}
		}
	}
	return l
}

// linearTable16 returns n entries per channel, evenly spaced from 0 to
// 65535.
func linearTable16(channels, n int) []uint16 {
	res := make([]uint16, channels*n)
	for ch := range channels {
		for i := range n {
			res[ch*n+i] = uint16(math.Round(float64(i) / float64(n-1) * 65535))
		}
	}
	return res
}

func TestDecodeLut8(t *testing.T) {
	want := identityLut8(3)
	data := encodeLut8(want)

	got, err := DecodeTag(data, len(data), Version4_2_0)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("unexpected table (-want +got):\n%s", d)
	}

	tests := [][]float64{
		{0, 0, 0},
		{1, 1, 1},
		{1, 0, 1},
	}
	for _, input := range tests {
		output := got.(Lut).Apply(input)
		for i := range 3 {
			if math.Abs(output[i]-input[i]) > 1e-9 {
				t.Errorf("Apply(%v) = %v, want %v", input, output, input)
				break
			}
		}
	}
}

func TestDecodeLut16(t *testing.T) {
	want := &Lut16{
		Inputs:        4,
		Outputs:       3,
		GridPoints:    3,
		InputEntries:  4,
		OutputEntries: 5,
		InputTable:    linearTable16(4, 4),
		CLUT:          make([]uint16, 81*3),
		OutputTable:   linearTable16(3, 5),
	}
	for i := range want.CLUT {
		want.CLUT[i] = uint16(i * 257)
	}
	data := encodeLut16(want)

	got, err := DecodeTag(data, len(data), Version4_2_0)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("unexpected table (-want +got):\n%s", d)
	}
	lut := got.(Lut)
	if lut.InputChannels() != 4 || lut.OutputChannels() != 3 {
		t.Errorf("got %d→%d channels, want 4→3", lut.InputChannels(), lut.OutputChannels())
	}
}

func TestDecodeLutErrors(t *testing.T) {
	good := encodeLut16(&Lut16{
		Inputs:        4,
		Outputs:       3,
		GridPoints:    2,
		InputEntries:  2,
		OutputEntries: 2,
		InputTable:    linearTable16(4, 2),
		CLUT:          make([]uint16, 16*3),
		OutputTable:   linearTable16(3, 2),
	})

	noGrid := append([]byte(nil), good...)
	noGrid[10] = 0

	noEntries := append([]byte(nil), good...)
	binary.BigEndian.PutUint16(noEntries[48:], 0)

	noChannels := append([]byte(nil), good...)
	noChannels[8] = 0

	short8 := make([]byte, 64)
	copy(short8, "mft1")
	short8[8], short8[9], short8[10] = 3, 3, 2

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"truncated input table", good[:60], ErrDataShortage},
		{"truncated output table", good[:len(good)-1], ErrDataShortage},
		{"truncated header", good[:30], ErrOutOfBounds},
		{"zero grid points", noGrid, ErrDivideByZero},
		{"zero table entries", noEntries, ErrDivideByZero},
		{"zero channels", noChannels, errInvalidTagData},
		{"mft1 truncated", short8, ErrDataShortage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTag(tt.data, len(tt.data), Version4_2_0)
			if !errors.Is(err, tt.want) {
				t.Errorf("got error %v, want %v", err, tt.want)
			}
		})
	}
}

func TestComputeCLUTSizeOverflow(t *testing.T) {
	gridPoints := []int{256, 256, 256, 256}
	size := computeCLUTSize(gridPoints, 4)
	if size != 0 {
		t.Errorf("computeCLUTSize with overflow = %d, want 0", size)
	}

	gridPoints = []int{17, 17, 17}
	size = computeCLUTSize(gridPoints, 3)
	expected := 17 * 17 * 17 * 3
	if size != expected {
		t.Errorf("computeCLUTSize = %d, want %d", size, expected)
	}
}

func identityCLUT3() []float64 {
	clut := make([]float64, 2*2*2*3)
	for r := range 2 {
		for g := range 2 {
			for b := range 2 {
				idx := (r*4 + g*2 + b) * 3
				clut[idx+0] = float64(r)
				clut[idx+1] = float64(g)
				clut[idx+2] = float64(b)
			}
		}
	}
	return clut
}

func TestLutAToBOrder(t *testing.T) {
	// ACurves → CLUT → MCurves → Matrix → BCurves
	lut := &LutAToB{
		Inputs:     3,
		Outputs:    3,
		GridPoints: []int{2, 2, 2},
		CLUT:       identityCLUT3(),
		MCurves:    []*Curve{{Gamma: 0.5}, {Gamma: 0.5}, {Gamma: 0.5}},
		Matrix: []float64{
			2, 0, 0,
			0, 2, 0,
			0, 0, 2,
			0, 0, 0,
		},
	}

	// 0.25 → CLUT → sqrt = 0.5 → *2 = 1.0
	input := []float64{0.25, 0.25, 0.25}
	output := lut.Apply(input)
	for i := range 3 {
		if math.Abs(output[i]-1) > 1e-6 {
			t.Errorf("Apply(%v)[%d] = %v, want 1", input, i, output[i])
		}
	}
}

func TestLutBToAOrder(t *testing.T) {
	// BCurves → Matrix → MCurves → CLUT → ACurves
	lut := &LutBToA{
		Inputs:     3,
		Outputs:    3,
		GridPoints: []int{2, 2, 2},
		CLUT:       identityCLUT3(),
		Matrix: []float64{
			0.5, 0, 0,
			0, 0.5, 0,
			0, 0, 0.5,
			0, 0, 0,
		},
		MCurves: []*Curve{{Gamma: 2}, {Gamma: 2}, {Gamma: 2}},
	}

	// 1.0 → *0.5 = 0.5 → square = 0.25 → CLUT
	output := lut.Apply([]float64{1, 1, 1})
	for i := range 3 {
		if math.Abs(output[i]-0.25) > 1e-6 {
			t.Errorf("Apply[%d] = %v, want 0.25", i, output[i])
		}
	}
}

func TestMatrix3x4Layout(t *testing.T) {
	lut := &LutAToB{
		Inputs:  3,
		Outputs: 3,
		Matrix: []float64{
			2, 0, 0,
			0, 2, 0,
			0, 0, 2,
			0.1, 0.2, 0.3, // offsets
		},
	}

	input := []float64{0.1, 0.2, 0.3}
	output := lut.Apply(input)
	expected := []float64{0.1*2 + 0.1, 0.2*2 + 0.2, 0.3*2 + 0.3}
	for i := range 3 {
		if math.Abs(output[i]-expected[i]) > 1e-6 {
			t.Errorf("Apply(%v)[%d] = %v, want %v", input, i, output[i], expected[i])
		}
	}
}

func TestDecodeLutAToB(t *testing.T) {
	// mAB with a 2x2x2 identity CLUT (8 bit) and identity A and B curves
	curv := []byte{'c', 'u', 'r', 'v', 0, 0, 0, 0, 0, 0, 0, 0}

	buf := make([]byte, 32)
	copy(buf, "mAB ")
	buf[8], buf[9] = 3, 3

	bOffset := len(buf)
	for range 3 {
		buf = append(buf, curv...)
	}
	clutOffset := len(buf)
	grid := make([]byte, 20)
	grid[0], grid[1], grid[2] = 2, 2, 2
	grid[16] = 1
	buf = append(buf, grid...)
	for _, v := range identityCLUT3() {
		buf = append(buf, byte(v*255))
	}
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	aOffset := len(buf)
	for range 3 {
		buf = append(buf, curv...)
	}
	binary.BigEndian.PutUint32(buf[12:], uint32(bOffset))
	binary.BigEndian.PutUint32(buf[24:], uint32(clutOffset))
	binary.BigEndian.PutUint32(buf[28:], uint32(aOffset))

	data, err := DecodeTag(buf, len(buf), Version4_2_0)
	if err != nil {
		t.Fatal(err)
	}
	lut, ok := data.(*LutAToB)
	if !ok {
		t.Fatalf("got %T, want *LutAToB", data)
	}
	if d := cmp.Diff([]int{2, 2, 2}, lut.GridPoints); d != "" {
		t.Errorf("unexpected grid (-want +got):\n%s", d)
	}
	if lut.Precision != 1 || lut.MCurves != nil || lut.Matrix != nil {
		t.Errorf("unexpected stages: %+v", lut)
	}
	out := lut.Apply([]float64{0.2, 0.4, 0.6})
	for i, want := range []float64{0.2, 0.4, 0.6} {
		if math.Abs(out[i]-want) > 1e-6 {
			t.Errorf("Apply[%d] = %v, want %v", i, out[i], want)
		}
	}

	// the lut8/lut16 engine does not evaluate these tables
	_, err = Interpolate[float64](lut, []uint8{1, 2, 3})
	if !errors.Is(err, ErrUnsupportedTagType) {
		t.Errorf("got error %v, want %v", err, ErrUnsupportedTagType)
	}
}
