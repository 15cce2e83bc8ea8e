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
	"fmt"
	"math"
)

// Lut is a colour lookup table from an ICC profile.
// The four implementations are [*Lut8], [*Lut16], [*LutAToB] and
// [*LutBToA].  Only Lut8 and Lut16 can be evaluated by [Interpolate].
type Lut interface {
	TagData

	// Apply transforms input values through the table.
	// Input and output values are normalised to [0, 1].
	Apply(input []float64) []float64

	// InputChannels returns the number of input channels.
	InputChannels() int

	// OutputChannels returns the number of output channels.
	OutputChannels() int
}

var (
	_ Lut = (*Lut8)(nil)
	_ Lut = (*Lut16)(nil)
	_ Lut = (*LutAToB)(nil)
	_ Lut = (*LutBToA)(nil)
)

// maxChannels is the largest number of colour channels in an ICC profile.
const maxChannels = 15

// Lut8 is an 8-bit lookup table (lut8Type, "mft1").
//
// All tables store raw byte values.  The tables are flattened: InputTable
// holds 256 entries for channel 0, then 256 entries for channel 1, and so
// on.  CLUT holds GridPoints^Inputs grid points of Outputs values each,
// with the first input channel varying slowest.
type Lut8 struct {
	Inputs      int
	Outputs     int
	GridPoints  int
	Matrix      [9]S15Fixed16Number // only used when Inputs == 3
	InputTable  []uint8
	CLUT        []uint8
	OutputTable []uint8
}

// Lut16 is a 16-bit lookup table (lut16Type, "mft2").
//
// The layout is the same as for [Lut8], but the input and output tables
// have InputEntries and OutputEntries entries per channel.
type Lut16 struct {
	Inputs        int
	Outputs       int
	GridPoints    int
	Matrix        [9]S15Fixed16Number // only used when Inputs == 3
	InputEntries  int
	OutputEntries int
	InputTable    []uint16
	CLUT          []uint16
	OutputTable   []uint16
}

func (*Lut8) isTagData()  {}
func (*Lut16) isTagData() {}

func (*Lut8) TypeSignature() string  { return "mft1" }
func (*Lut16) TypeSignature() string { return "mft2" }

func (l *Lut8) InputChannels() int   { return l.Inputs }
func (l *Lut8) OutputChannels() int  { return l.Outputs }
func (l *Lut16) InputChannels() int  { return l.Inputs }
func (l *Lut16) OutputChannels() int { return l.Outputs }

// Apply transforms input values through the table.  The inputs are
// quantised to 8 bits before the table is evaluated.
func (l *Lut8) Apply(input []float64) []float64 {
	return applyQuantised(l, input, 255)
}

// Apply transforms input values through the table.  The inputs are
// quantised to 8 bits before the table is evaluated.
func (l *Lut16) Apply(input []float64) []float64 {
	return applyQuantised(l, input, 65535)
}

func applyQuantised(l Lut, input []float64, domainMax float64) []float64 {
	res := make([]float64, l.OutputChannels())
	if len(input) != l.InputChannels() {
		return res
	}
	var in [maxChannels]uint8
	for i, x := range input {
		in[i] = uint8(math.Round(clamp(x, 0, 1) * 255))
	}
	out, err := Interpolate[float64](l, in[:len(input)])
	if err != nil {
		return res
	}
	for i, v := range out {
		res[i] = clamp(v/domainMax, 0, 1)
	}
	return res
}

// lutHeader holds the fields shared by "mft1" and "mft2" tags.
type lutHeader struct {
	in, out, grid int
	matrix        [9]S15Fixed16Number
}

func decodeLutHeader(r *reader) (*lutHeader, error) {
	h := &lutHeader{
		in:   int(r.u8(8)),
		out:  int(r.u8(9)),
		grid: int(r.u8(10)),
	}
	for i := range h.matrix {
		h.matrix[i] = r.s15Fixed16(12 + 4*i)
	}
	if r.err != nil {
		return nil, r.err
	}
	if h.in == 0 || h.out == 0 || h.in > maxChannels || h.out > maxChannels {
		return nil, errInvalidTagData
	}
	if h.grid == 0 {
		return nil, fmt.Errorf("%w: CLUT has no grid points", ErrDivideByZero)
	}
	return h, nil
}

func decodeLut8(r *reader) (*Lut8, error) {
	h, err := decodeLutHeader(r)
	if err != nil {
		return nil, err
	}
	clutSize := computeCLUTSize(uniformGrid(h.grid, h.in), h.out)
	if clutSize == 0 {
		return nil, errInvalidTagData
	}

	l := &Lut8{
		Inputs:     h.in,
		Outputs:    h.out,
		GridPoints: h.grid,
		Matrix:     h.matrix,
	}
	pos := 48
	l.InputTable = readTable8(r, pos, 256*h.in)
	pos += 256 * h.in
	l.CLUT = readTable8(r, pos, clutSize)
	pos += clutSize
	l.OutputTable = readTable8(r, pos, 256*h.out)
	if r.err != nil {
		return nil, r.err
	}
	return l, nil
}

func decodeLut16(r *reader) (*Lut16, error) {
	h, err := decodeLutHeader(r)
	if err != nil {
		return nil, err
	}
	inEntries := int(r.u16(48))
	outEntries := int(r.u16(50))
	if r.err != nil {
		return nil, r.err
	}
	if inEntries == 0 || outEntries == 0 {
		return nil, fmt.Errorf("%w: empty input or output table", ErrDivideByZero)
	}
	clutSize := computeCLUTSize(uniformGrid(h.grid, h.in), h.out)
	if clutSize == 0 {
		return nil, errInvalidTagData
	}

	l := &Lut16{
		Inputs:        h.in,
		Outputs:       h.out,
		GridPoints:    h.grid,
		Matrix:        h.matrix,
		InputEntries:  inEntries,
		OutputEntries: outEntries,
	}
	pos := 52
	l.InputTable = readTable16(r, pos, inEntries*h.in)
	pos += 2 * inEntries * h.in
	l.CLUT = readTable16(r, pos, clutSize)
	pos += 2 * clutSize
	l.OutputTable = readTable16(r, pos, outEntries*h.out)
	if r.err != nil {
		return nil, r.err
	}
	return l, nil
}

func readTable8(r *reader, offset, n int) []uint8 {
	if !r.table(offset, n) {
		return nil
	}
	res := make([]uint8, n)
	copy(res, r.buf[offset:])
	return res
}

func readTable16(r *reader, offset, n int) []uint16 {
	if !r.table(offset, 2*n) {
		return nil
	}
	res := make([]uint16, n)
	for i := range res {
		res[i] = r.u16(offset + 2*i)
	}
	return res
}

func uniformGrid(gridPoints, n int) []int {
	res := make([]int, n)
	for i := range res {
		res[i] = gridPoints
	}
	return res
}
