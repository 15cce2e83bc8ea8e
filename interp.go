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

	"golang.org/x/exp/constraints"
)

// InterpolationMode selects how the colour lookup grid of a [Lut8] or
// [Lut16] is interpolated.
type InterpolationMode int

const (
	// TwoCorner blends only the all-lower and the all-upper corner of the
	// grid cell, weighted by the product of the per-axis fractions.  Grid
	// coordinates are sample/domain*gridPoints.  This is the default.
	TwoCorner InterpolationMode = iota

	// Multilinear blends all 2^N corners of the grid cell, with grid
	// coordinates sample/domain*(gridPoints-1).
	Multilinear

	// Tetrahedral uses tetrahedral interpolation for tables with three
	// inputs and falls back to Multilinear otherwise.
	Tetrahedral
)

func (m InterpolationMode) String() string {
	switch m {
	case TwoCorner:
		return "two-corner"
	case Multilinear:
		return "multilinear"
	case Tetrahedral:
		return "tetrahedral"
	default:
		return fmt.Sprintf("InterpolationMode(%d)", int(m))
	}
}

// Interpolate evaluates a [*Lut8] or [*Lut16] for one sample of 8-bit
// device values.  The result is in the native range of the output table,
// i.e. 0-255 for Lut8 and 0-65535 for Lut16.
func Interpolate[F constraints.Float](lut Lut, in []uint8) ([]F, error) {
	return InterpolateMode[F](lut, in, TwoCorner)
}

// InterpolateMode is like [Interpolate], but uses the given interpolation
// mode for the colour lookup grid.
func InterpolateMode[F constraints.Float](lut Lut, in []uint8, mode InterpolationMode) ([]F, error) {
	if len(in) < lut.InputChannels() {
		return nil, dataShortage(0, lut.InputChannels(), len(in))
	}
	if len(in) > lut.InputChannels() {
		return nil, fmt.Errorf("icclut: %d input values for a %d-channel table",
			len(in), lut.InputChannels())
	}
	out := make([]F, lut.OutputChannels())
	switch l := lut.(type) {
	case *Lut8:
		v, err := l.view()
		if err != nil {
			return nil, err
		}
		evaluate(v, in, mode, out)
	case *Lut16:
		v, err := l.view()
		if err != nil {
			return nil, err
		}
		evaluate(v, in, mode, out)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTagType, lut.TypeSignature())
	}
	return out, nil
}

// tableValue is the element type of lut8 and lut16 tables.
type tableValue interface {
	~uint8 | ~uint16
}

// lutView is the common form of Lut8 and Lut16 used by the interpolation
// code.
type lutView[E tableValue] struct {
	in, out, grid         int
	inEntries, outEntries int
	matrix                *[9]S15Fixed16Number
	inTable, clut         []E
	outTable              []E
	wide                  bool    // 16-bit tables with interpolated table lookups
	domainMax             float64 // largest table value
	gridScale             float64 // divisor mapping samples to grid coordinates
}

func (l *Lut8) view() (*lutView[uint8], error) {
	v := &lutView[uint8]{
		in:         l.Inputs,
		out:        l.Outputs,
		grid:       l.GridPoints,
		inEntries:  256,
		outEntries: 256,
		inTable:    l.InputTable,
		clut:       l.CLUT,
		outTable:   l.OutputTable,
		domainMax:  255,
		gridScale:  255,
	}
	if l.Inputs == 3 {
		v.matrix = &l.Matrix
	}
	return v, v.validate()
}

func (l *Lut16) view() (*lutView[uint16], error) {
	v := &lutView[uint16]{
		in:         l.Inputs,
		out:        l.Outputs,
		grid:       l.GridPoints,
		inEntries:  l.InputEntries,
		outEntries: l.OutputEntries,
		inTable:    l.InputTable,
		clut:       l.CLUT,
		outTable:   l.OutputTable,
		wide:       true,
		domainMax:  65535,
		gridScale:  65536,
	}
	if l.Inputs == 3 {
		v.matrix = &l.Matrix
	}
	return v, v.validate()
}

// validate checks the table sizes.  Decoded tables always pass; this
// guards against hand-built values.
func (v *lutView[E]) validate() error {
	if v.grid == 0 || v.inEntries == 0 || v.outEntries == 0 {
		return ErrDivideByZero
	}
	if v.in == 0 || v.out == 0 || v.in > maxChannels || v.out > maxChannels {
		return errInvalidTagData
	}
	clutSize := computeCLUTSize(uniformGrid(v.grid, v.in), v.out)
	if len(v.inTable) < v.in*v.inEntries {
		return dataShortage(0, v.in*v.inEntries, len(v.inTable))
	}
	if clutSize == 0 || len(v.clut) < clutSize {
		return dataShortage(0, clutSize, len(v.clut))
	}
	if len(v.outTable) < v.out*v.outEntries {
		return dataShortage(0, v.out*v.outEntries, len(v.outTable))
	}
	return nil
}

// evaluate runs the three stages (input tables, grid, output tables) for
// one sample.  The caller guarantees len(in) == v.in and len(out) == v.out.
func evaluate[E tableValue, F constraints.Float](v *lutView[E], in []uint8, mode InterpolationMode, out []F) {
	var x [maxChannels]uint8
	copy(x[:], in)
	if v.matrix != nil {
		applyMatrix3x3(v.matrix, &x)
	}

	var samples [maxChannels]F
	for ch := range v.in {
		samples[ch] = inputLookup[E, F](v, ch, x[ch])
	}

	var grid [maxChannels]F
	switch {
	case mode == TwoCorner:
		twoCorner(v, samples[:v.in], grid[:v.out])
	case mode == Tetrahedral && v.in == 3:
		var c [3]F
		for i := range c {
			c[i] = gridCoordinate(v, samples[i])
		}
		tetrahedral(v.clut, v.grid, v.out, c, grid[:v.out])
	default:
		var c [maxChannels]F
		for i := range v.in {
			c[i] = gridCoordinate(v, samples[i])
		}
		var gp [maxChannels]int
		for i := range v.in {
			gp[i] = v.grid
		}
		multilinear(v.clut, gp[:v.in], v.out, c[:v.in], grid[:v.out])
	}

	for ch := range v.out {
		out[ch] = outputLookup(v, ch, grid[ch])
	}
}

// applyMatrix3x3 transforms three 8-bit input values.  Results are
// truncated and clamped to the byte range.
func applyMatrix3x3(m *[9]S15Fixed16Number, x *[maxChannels]uint8) {
	var e [9]float64
	for i := range e {
		e[i] = m[i].Float64()
	}
	c0, c1, c2 := float64(x[0]), float64(x[1]), float64(x[2])
	x[0] = toByte(e[0]*c0 + e[1]*c1 + e[2]*c2)
	x[1] = toByte(e[3]*c0 + e[4]*c1 + e[5]*c2)
	x[2] = toByte(e[6]*c0 + e[7]*c1 + e[8]*c2)
}

func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// inputLookup maps an 8-bit value through the input table of channel ch.
// Lut8 tables are addressed directly.  For Lut16 tables the value is
// expanded to 16 bits and split into a table index and a remainder, which
// gives the weight between neighbouring entries.
func inputLookup[E tableValue, F constraints.Float](v *lutView[E], ch int, x uint8) F {
	table := v.inTable[ch*v.inEntries : (ch+1)*v.inEntries]
	if !v.wide {
		return F(table[x])
	}

	v16 := int(x)*256 + int(x)
	idx := v16 / v.inEntries
	rem := v16 % v.inEntries
	delta := 65535 / v.inEntries

	var frac F
	if delta > 0 {
		frac = min(F(rem)/F(delta), 1)
	}
	last := v.inEntries - 1
	if idx >= last {
		return F(table[last])
	}
	a := F(table[idx])
	b := F(table[idx+1])
	return a + (b-a)*frac
}

// twoCorner interpolates the grid between the cell corner with all
// indices rounded down and the corner with all indices rounded up.
func twoCorner[E tableValue, F constraints.Float](v *lutView[E], samples []F, dst []F) {
	last := v.grid - 1
	lo, hi := 0, 0
	weight := F(1)
	for _, s := range samples {
		coord := s / F(v.gridScale) * F(v.grid)
		idx := int(coord)
		w := coord - F(idx)
		if idx > last {
			idx = last
			w = 0
		}
		lo = lo*v.grid + idx
		hi = hi*v.grid + min(idx+1, last)
		weight *= w
	}
	lo *= v.out
	hi *= v.out
	for o := range dst {
		dst[o] = F(v.clut[lo+o])*(1-weight) + F(v.clut[hi+o])*weight
	}
}

// gridCoordinate maps a table sample to a position in [0, grid-1].
func gridCoordinate[E tableValue, F constraints.Float](v *lutView[E], s F) F {
	return min(max(s/F(v.domainMax), 0), 1) * F(v.grid-1)
}

// outputLookup maps a grid value through the output table of channel ch.
// Lut8 tables are addressed directly, with the grid value truncated.
// Lut16 tables interpolate between neighbouring entries.
func outputLookup[E tableValue, F constraints.Float](v *lutView[E], ch int, d F) F {
	table := v.outTable[ch*v.outEntries : (ch+1)*v.outEntries]
	last := v.outEntries - 1
	if !v.wide {
		return F(table[min(int(max(d, 0)), last)])
	}
	if last == 0 {
		return F(table[0])
	}
	step := F(v.domainMax) / F(last)
	pos := max(d/step, 0)
	idx := int(pos)
	if idx >= last {
		return F(table[last])
	}
	frac := pos - F(idx)
	a := F(table[idx])
	b := F(table[idx+1])
	return a + (b-a)*frac
}

// gridSample is the element type of colour lookup grids.
type gridSample interface {
	~uint8 | ~uint16 | ~float64
}

// tetrahedral performs tetrahedral interpolation in a 3D grid with
// gridSize points per axis.  The coordinates c are grid positions in
// [0, gridSize-1].
func tetrahedral[T gridSample, F constraints.Float](clut []T, gridSize int, outChannels int, c [3]F, out []F) {
	if gridSize < 2 {
		for i := range outChannels {
			out[i] = F(clut[i])
		}
		return
	}

	var idx [3]int
	var f [3]F
	for k := range c {
		i := max(int(c[k]), 0)
		if i >= gridSize-1 {
			i = gridSize - 2
		}
		idx[k] = i
		f[k] = min(max(c[k]-F(i), 0), 1)
	}
	fr, fg, fb := f[0], f[1], f[2]

	stride := outChannels
	gStride := gridSize * stride
	rStride := gridSize * gStride
	base := idx[0]*rStride + idx[1]*gStride + idx[2]*stride

	c000 := base
	c001 := base + stride
	c010 := base + gStride
	c011 := base + gStride + stride
	c100 := base + rStride
	c101 := base + rStride + stride
	c110 := base + rStride + gStride
	c111 := base + rStride + gStride + stride

	at := func(i int) F { return F(clut[i]) }

	// select the tetrahedron by the order of the fractional parts
	for i := range outChannels {
		switch {
		case fr > fg && fg > fb:
			out[i] = (1-fr)*at(c000+i) + (fr-fg)*at(c100+i) + (fg-fb)*at(c110+i) + fb*at(c111+i)
		case fr > fg && fr > fb:
			out[i] = (1-fr)*at(c000+i) + (fr-fb)*at(c100+i) + (fb-fg)*at(c101+i) + fg*at(c111+i)
		case fr > fg:
			out[i] = (1-fb)*at(c000+i) + (fb-fr)*at(c001+i) + (fr-fg)*at(c101+i) + fg*at(c111+i)
		case fr > fb:
			out[i] = (1-fg)*at(c000+i) + (fg-fr)*at(c010+i) + (fr-fb)*at(c110+i) + fb*at(c111+i)
		case fg > fb:
			out[i] = (1-fg)*at(c000+i) + (fg-fb)*at(c010+i) + (fb-fr)*at(c011+i) + fr*at(c111+i)
		default:
			out[i] = (1-fb)*at(c000+i) + (fb-fg)*at(c001+i) + (fg-fr)*at(c011+i) + fr*at(c111+i)
		}
	}
}

// multilinear performs n-dimensional linear interpolation over all 2^n
// corners of the grid cell.  The coordinates are grid positions in
// [0, gridPoints[i]-1].
func multilinear[T gridSample, F constraints.Float](clut []T, gridPoints []int, outChannels int, coords []F, out []F) {
	n := len(gridPoints)

	var strides, indices [maxChannels]int
	var fracs [maxChannels]F
	stride := outChannels
	for i := n - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= gridPoints[i]
	}
	base := 0
	for i := range n {
		idx := max(int(coords[i]), 0)
		if idx >= gridPoints[i]-1 {
			idx = max(gridPoints[i]-2, 0)
		}
		indices[i] = idx
		fracs[i] = min(max(coords[i]-F(idx), 0), 1)
		base += idx * strides[i]
	}

	for i := range outChannels {
		out[i] = 0
	}
	for corner := range 1 << n {
		offset := base
		weight := F(1)
		for d := range n {
			if corner&(1<<d) != 0 {
				if gridPoints[d] > 1 {
					offset += strides[d]
				}
				weight *= fracs[d]
			} else {
				weight *= 1 - fracs[d]
			}
		}
		if weight == 0 {
			continue
		}
		for i := range outChannels {
			out[i] += weight * F(clut[offset+i])
		}
	}
}
