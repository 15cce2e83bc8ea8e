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

import "math"

// LutAToB is a multi-stage device to PCS table (lutAtoBType, "mAB ").
// Processing order: ACurves → CLUT → MCurves → Matrix → BCurves.
// Missing stages are nil.
type LutAToB struct {
	Inputs     int
	Outputs    int
	ACurves    []*Curve  // one per input channel
	GridPoints []int     // grid size per input dimension
	CLUT       []float64 // flattened table, normalised to [0,1]
	Precision  int       // 1 for 8-bit, 2 for 16-bit CLUT entries
	MCurves    []*Curve  // one per output channel
	Matrix     []float64 // 3×3 followed by 3 offsets, nil if identity
	BCurves    []*Curve  // one per output channel
}

// LutBToA is a multi-stage PCS to device table (lutBtoAType, "mBA ").
// Processing order: BCurves → Matrix → MCurves → CLUT → ACurves.
// Missing stages are nil.
type LutBToA struct {
	Inputs     int
	Outputs    int
	BCurves    []*Curve  // one per input channel
	Matrix     []float64 // 3×3 followed by 3 offsets, nil if identity
	MCurves    []*Curve  // one per input channel
	GridPoints []int     // grid size per input dimension
	CLUT       []float64 // flattened table, normalised to [0,1]
	Precision  int       // 1 for 8-bit, 2 for 16-bit CLUT entries
	ACurves    []*Curve  // one per output channel
}

func (*LutAToB) isTagData() {}
func (*LutBToA) isTagData() {}

func (*LutAToB) TypeSignature() string { return "mAB " }
func (*LutBToA) TypeSignature() string { return "mBA " }

func (l *LutAToB) InputChannels() int  { return l.Inputs }
func (l *LutAToB) OutputChannels() int { return l.Outputs }
func (l *LutBToA) InputChannels() int  { return l.Inputs }
func (l *LutBToA) OutputChannels() int { return l.Outputs }

// Apply transforms input values in [0, 1] through the table.
func (l *LutAToB) Apply(input []float64) []float64 {
	if len(input) != l.Inputs {
		return make([]float64, l.Outputs)
	}
	values := applyCurves(l.ACurves, append([]float64(nil), input...))
	values = applyCLUT(l.CLUT, l.GridPoints, l.Outputs, values)
	values = applyCurves(l.MCurves, values)
	values = applyMatrix3x4(l.Matrix, values)
	values = applyCurves(l.BCurves, values)
	for i := range values {
		values[i] = clamp(values[i], 0, 1)
	}
	return values
}

// Apply transforms input values in [0, 1] through the table.
func (l *LutBToA) Apply(input []float64) []float64 {
	if len(input) != l.Inputs {
		return make([]float64, l.Outputs)
	}
	values := applyCurves(l.BCurves, append([]float64(nil), input...))
	values = applyMatrix3x4(l.Matrix, values)
	values = applyCurves(l.MCurves, values)
	values = applyCLUT(l.CLUT, l.GridPoints, l.Outputs, values)
	values = applyCurves(l.ACurves, values)
	for i := range values {
		values[i] = clamp(values[i], 0, 1)
	}
	return values
}

// lutABHeader holds the common part of "mAB " and "mBA " tags.
type lutABHeader struct {
	in, out                                          int
	bOffset, matOffset, mOffset, clutOffset, aOffset int
}

func decodeLutABHeader(r *reader) (*lutABHeader, error) {
	h := &lutABHeader{
		in:         int(r.u8(8)),
		out:        int(r.u8(9)),
		bOffset:    int(r.u32(12)),
		matOffset:  int(r.u32(16)),
		mOffset:    int(r.u32(20)),
		clutOffset: int(r.u32(24)),
		aOffset:    int(r.u32(28)),
	}
	if r.err != nil {
		return nil, r.err
	}
	if h.in == 0 || h.out == 0 || h.in > maxChannels || h.out > maxChannels {
		return nil, errInvalidTagData
	}
	return h, nil
}

func decodeLutAToB(r *reader) (*LutAToB, error) {
	h, err := decodeLutABHeader(r)
	if err != nil {
		return nil, err
	}
	l := &LutAToB{Inputs: h.in, Outputs: h.out}
	if l.BCurves, err = decodeCurvesAtOffset(r, h.bOffset, h.out); err != nil {
		return nil, err
	}
	if l.ACurves, err = decodeCurvesAtOffset(r, h.aOffset, h.in); err != nil {
		return nil, err
	}
	if l.MCurves, err = decodeCurvesAtOffset(r, h.mOffset, h.out); err != nil {
		return nil, err
	}
	if l.Matrix, err = decodeMatrix3x4(r, h.matOffset); err != nil {
		return nil, err
	}
	if h.clutOffset != 0 {
		l.GridPoints, l.CLUT, l.Precision, err = decodeCLUT(r, h.clutOffset, h.in, h.out)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

func decodeLutBToA(r *reader) (*LutBToA, error) {
	h, err := decodeLutABHeader(r)
	if err != nil {
		return nil, err
	}
	l := &LutBToA{Inputs: h.in, Outputs: h.out}
	if l.BCurves, err = decodeCurvesAtOffset(r, h.bOffset, h.in); err != nil {
		return nil, err
	}
	if l.ACurves, err = decodeCurvesAtOffset(r, h.aOffset, h.out); err != nil {
		return nil, err
	}
	if l.MCurves, err = decodeCurvesAtOffset(r, h.mOffset, h.in); err != nil {
		return nil, err
	}
	if l.Matrix, err = decodeMatrix3x4(r, h.matOffset); err != nil {
		return nil, err
	}
	if h.clutOffset != 0 {
		l.GridPoints, l.CLUT, l.Precision, err = decodeCLUT(r, h.clutOffset, h.in, h.out)
		if err != nil {
			return nil, err
		}
	}
	return l, nil
}

// decodeCurvesAtOffset decodes n consecutive curve elements, each padded
// to a multiple of four bytes.  Offset 0 means the stage is absent.
func decodeCurvesAtOffset(r *reader, offset int, n int) ([]*Curve, error) {
	if offset == 0 {
		return nil, nil
	}
	curves := make([]*Curve, n)
	pos := offset
	for i := range curves {
		if !r.check(pos, 12) {
			return nil, r.err
		}
		curve, used, err := decodeCurveElement(r.buf[pos:])
		if err != nil {
			return nil, err
		}
		curves[i] = curve
		pos += (used + 3) &^ 3
	}
	return curves, nil
}

func decodeMatrix3x4(r *reader, offset int) ([]float64, error) {
	if offset == 0 {
		return nil, nil
	}
	m := make([]float64, 12)
	for i := range m {
		m[i] = r.s15Fixed16(offset + 4*i).Float64()
	}
	if r.err != nil {
		return nil, r.err
	}
	if isIdentityMatrix3x4(m) {
		return nil, nil
	}
	return m, nil
}

func decodeCLUT(r *reader, offset int, in, out int) ([]int, []float64, int, error) {
	gridPoints := make([]int, in)
	for i := range gridPoints {
		gridPoints[i] = int(r.u8(offset + i))
	}
	precision := int(r.u8(offset + 16))
	if r.err != nil {
		return nil, nil, 0, r.err
	}
	for _, g := range gridPoints {
		if g == 0 {
			return nil, nil, 0, ErrDivideByZero
		}
	}
	if precision != 1 && precision != 2 {
		return nil, nil, 0, errInvalidTagData
	}

	size := computeCLUTSize(gridPoints, out)
	if size == 0 {
		return nil, nil, 0, errInvalidTagData
	}
	start := offset + 20
	if !r.table(start, size*precision) {
		return nil, nil, 0, r.err
	}
	clut := make([]float64, size)
	for i := range clut {
		if precision == 1 {
			clut[i] = float64(r.buf[start+i]) / 255
		} else {
			clut[i] = float64(r.u16(start+2*i)) / 65535
		}
	}
	return gridPoints, clut, precision, nil
}

// computeCLUTSize calculates the number of CLUT entries, or 0 if the table
// would be unreasonably large.
func computeCLUTSize(gridPoints []int, outputChannels int) int {
	const maxSize = 1 << 30
	size := uint64(1)
	for _, g := range gridPoints {
		size *= uint64(g)
		if size > maxSize {
			return 0
		}
	}
	size *= uint64(outputChannels)
	if size > maxSize {
		return 0
	}
	return int(size)
}

func isIdentityMatrix3x4(m []float64) bool {
	identity := [12]float64{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}
	for i, v := range identity {
		if math.Abs(m[i]-v) > 1e-6 {
			return false
		}
	}
	return true
}

func applyCurves(curves []*Curve, values []float64) []float64 {
	for i, c := range curves {
		if c != nil && i < len(values) {
			values[i] = c.Evaluate(values[i])
		}
	}
	return values
}

func applyMatrix3x4(m []float64, values []float64) []float64 {
	if m == nil || len(values) != 3 {
		return values
	}
	x, y, z := values[0], values[1], values[2]
	return []float64{
		m[0]*x + m[1]*y + m[2]*z + m[9],
		m[3]*x + m[4]*y + m[5]*z + m[10],
		m[6]*x + m[7]*y + m[8]*z + m[11],
	}
}

// applyCLUT interpolates a normalised CLUT at values in [0, 1].
func applyCLUT(clut []float64, gridPoints []int, out int, values []float64) []float64 {
	if clut == nil || len(gridPoints) != len(values) {
		return values
	}
	coords := make([]float64, len(values))
	for i, v := range values {
		coords[i] = clamp(v, 0, 1) * float64(gridPoints[i]-1)
	}
	res := make([]float64, out)
	if len(values) == 3 && gridPoints[0] == gridPoints[1] && gridPoints[1] == gridPoints[2] {
		tetrahedral(clut, gridPoints[0], out, [3]float64(coords), res)
	} else {
		multilinear(clut, gridPoints, out, coords, res)
	}
	return res
}
