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

func decodeChromaticity(r *reader) (TagData, error) {
	n := int(r.u16(8))
	c := &Chromaticity{Phosphor: r.u16(10)}
	if !r.check(12, 8*n) {
		return nil, r.err
	}
	c.Channels = make([]ChromaticityCoordinate, n)
	for i := range c.Channels {
		c.Channels[i] = ChromaticityCoordinate{
			X: r.u16Fixed16(12 + 8*i),
			Y: r.u16Fixed16(16 + 8*i),
		}
	}
	return c, r.err
}

func decodeViewConditions(r *reader) (TagData, error) {
	v := &ViewConditions{
		Illuminant:     r.xyz(8),
		Surround:       r.xyz(20),
		IlluminantType: r.u32(32),
	}
	if r.err != nil {
		return nil, r.err
	}
	return v, nil
}

func decodeMeasurement(r *reader) (TagData, error) {
	m := &Measurement{
		Observer:       r.u32(8),
		Backing:        r.xyz(12),
		Geometry:       r.u32(24),
		Flare:          r.u16Fixed16(28),
		IlluminantType: r.u32(32),
	}
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

func decodeNamedColor2(r *reader) (TagData, error) {
	nc := &NamedColor2{
		VendorFlags: r.u32(8),
		Prefix:      r.ascii(20, 32),
		Suffix:      r.ascii(52, 32),
	}
	count := int(r.u32(12))
	nDev := int(r.u32(16))
	if r.err != nil {
		return nil, r.err
	}
	if nDev > maxChannels {
		return nil, errInvalidTagData
	}
	recSize := 38 + 2*nDev
	if count > (len(r.buf)-84)/recSize {
		return nil, outOfBounds(84, count*recSize, len(r.buf))
	}

	nc.Colors = make([]NamedColor, count)
	for i := range nc.Colors {
		base := 84 + i*recSize
		c := &nc.Colors[i]
		c.Name = r.ascii(base, 32)
		for j := range c.PCS {
			c.PCS[j] = r.u16(base + 32 + 2*j)
		}
		c.Device = make([]uint16, nDev)
		for j := range c.Device {
			c.Device[j] = r.u16(base + 38 + 2*j)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return nc, nil
}

func decodeResponseCurveSet16(r *reader) (TagData, error) {
	channels := int(r.u16(8))
	count := int(r.u16(10))
	if !r.check(12, 4*count) {
		return nil, r.err
	}
	res := &ResponseCurveSet16{
		Channels: channels,
		Curves:   make([]ResponseCurve, count),
	}
	for i := range res.Curves {
		base := int(r.u32(12 + 4*i))
		c := &res.Curves[i]
		c.Unit = r.ascii(base, 4)
		// per channel: a measurement count and an XYZ value
		if !r.check(base+4, 16*channels) {
			return nil, r.err
		}

		counts := make([]int, channels)
		total := 0
		for j := range counts {
			counts[j] = int(r.u32(base + 4 + 4*j))
			total += counts[j]
		}
		if r.err != nil {
			return nil, r.err
		}
		pos := base + 4 + 4*channels
		c.XYZ = make([]XYZNumber, channels)
		for j := range c.XYZ {
			c.XYZ[j] = r.xyz(pos + 12*j)
		}
		pos += 12 * channels
		if !r.check(pos, 8*total) {
			return nil, r.err
		}

		c.Measurements = make([][]ResponseValue, channels)
		for j, n := range counts {
			vals := make([]ResponseValue, n)
			for k := range vals {
				vals[k] = ResponseValue{
					Device:      r.u16(pos),
					Measurement: r.s15Fixed16(pos + 4),
				}
				pos += 8
			}
			c.Measurements[j] = vals
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return res, nil
}

func decodeCRDInfo(r *reader) (TagData, error) {
	pos := 8
	str := func() string {
		n := int(r.u32(pos))
		s := r.ascii(pos+4, n)
		pos += 4 + n
		return s
	}
	c := &CRDInfo{Product: str()}
	for i := range c.CRDNames {
		c.CRDNames[i] = str()
	}
	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

func decodeColorantTable(r *reader) (TagData, error) {
	n := int(r.u32(8))
	if r.err != nil {
		return nil, r.err
	}
	if n > (len(r.buf)-12)/38 {
		return nil, outOfBounds(12, n*38, len(r.buf))
	}
	res := make(ColorantTable, n)
	for i := range res {
		base := 12 + 38*i
		res[i].Name = r.ascii(base, 32)
		for j := range res[i].PCS {
			res[i].PCS[j] = r.u16(base + 32 + 2*j)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return res, nil
}

func decodeColorantOrder(r *reader) (TagData, error) {
	n := int(r.u32(8))
	if r.err != nil {
		return nil, r.err
	}
	b := r.bytes(12, n)
	if r.err != nil {
		return nil, r.err
	}
	return ColorantOrder(b), nil
}

// MultiProcessElements holds the value of an "mpet" tag.
// Elements are [CurveSet], [*MatrixElement], [*CLUTElement] or, for
// element types which are not decoded, [*Raw].
type MultiProcessElements struct {
	Inputs   int
	Outputs  int
	Elements []TagData
}

// MatrixElement is a "matf" processing element.  The result for input x
// is Matrix·x + Offsets, where Matrix is stored row by row with one row per
// output channel.
type MatrixElement struct {
	Inputs  int
	Outputs int
	Matrix  []float32
	Offsets []float32
}

// CLUTElement is a "clut" processing element.
type CLUTElement struct {
	Inputs     int
	Outputs    int
	GridPoints []int
	Values     []float32
}

func (*MultiProcessElements) isTagData() {}
func (*MatrixElement) isTagData()        {}
func (*CLUTElement) isTagData()          {}

func (*MultiProcessElements) TypeSignature() string { return "mpet" }
func (*MatrixElement) TypeSignature() string        { return "matf" }
func (*CLUTElement) TypeSignature() string          { return "clut" }

func decodeMultiProcessElements(r *reader) (TagData, error) {
	m := &MultiProcessElements{
		Inputs:  int(r.u16(8)),
		Outputs: int(r.u16(10)),
	}
	n := int(r.u32(12))
	if !r.check(16, 8*n) {
		return nil, r.err
	}

	m.Elements = make([]TagData, n)
	for i := range m.Elements {
		offset := int(r.u32(16 + 8*i))
		size := int(r.u32(20 + 8*i))
		if !r.check(offset, size) {
			return nil, r.err
		}
		if size < 8 {
			return nil, errInvalidTagData
		}
		sub := newReader(r.buf[offset : offset+size])
		var elem TagData
		var err error
		switch sig := sub.signature(0); sig {
		case "cvst":
			elem, _, err = decodeCurveSet(sub)
		case "matf":
			elem, _, err = decodeMatrixElement(sub)
		case "clut":
			elem, err = decodeCLUTElement(sub)
		default:
			elem = &Raw{Signature: sig, Data: sub.bytes(8, size-8)}
			err = sub.err
		}
		if err != nil {
			return nil, err
		}
		m.Elements[i] = elem
	}
	return m, nil
}

func decodeMatrixElement(r *reader) (*MatrixElement, int, error) {
	m := &MatrixElement{
		Inputs:  int(r.u16(8)),
		Outputs: int(r.u16(10)),
	}
	if r.err != nil {
		return nil, 0, r.err
	}
	nm := m.Inputs * m.Outputs
	if !r.check(12, 4*(nm+m.Outputs)) {
		return nil, 0, r.err
	}
	m.Matrix = make([]float32, nm)
	for i := range m.Matrix {
		m.Matrix[i] = r.f32(12 + 4*i)
	}
	m.Offsets = make([]float32, m.Outputs)
	for i := range m.Offsets {
		m.Offsets[i] = r.f32(12 + 4*(nm+i))
	}
	return m, 12 + 4*(nm+m.Outputs), nil
}

func decodeCLUTElement(r *reader) (*CLUTElement, error) {
	c := &CLUTElement{
		Inputs:  int(r.u16(8)),
		Outputs: int(r.u16(10)),
	}
	if r.err != nil {
		return nil, r.err
	}
	if c.Inputs == 0 || c.Inputs > 16 || c.Outputs == 0 {
		return nil, errInvalidTagData
	}
	c.GridPoints = make([]int, c.Inputs)
	for i := range c.GridPoints {
		c.GridPoints[i] = int(r.u8(12 + i))
		if c.GridPoints[i] == 0 {
			return nil, ErrDivideByZero
		}
	}
	n := computeCLUTSize(c.GridPoints, c.Outputs)
	if n == 0 {
		return nil, errInvalidTagData
	}
	if !r.table(28, 4*n) {
		return nil, r.err
	}
	c.Values = make([]float32, n)
	for i := range c.Values {
		c.Values[i] = r.f32(28 + 4*i)
	}
	return c, nil
}
