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
	"math"
	"sort"
)

// Curve is a one-dimensional transfer function, decoded from a "curv" or
// "para" element.
//
// Precedence when evaluating: Table > Params > Gamma.
type Curve struct {
	// Gamma is the exponent of a simple gamma curve (curv with one entry).
	// An identity curve (curv with no entries) has Gamma 1.
	Gamma float64

	// FuncType and Params describe a parametric curve (para).  Params
	// holds [g], [g,a,b], [g,a,b,c], [g,a,b,c,d], or [g,a,b,c,d,e,f]:
	//   - type 0: y = x^g
	//   - type 1: y = (ax+b)^g for x >= -b/a, else y = 0
	//   - type 2: y = (ax+b)^g + c for x >= -b/a, else y = c
	//   - type 3: y = (ax+b)^g for x >= d, else y = cx
	//   - type 4: y = (ax+b)^g + e for x >= d, else y = cx + f
	// A curve with an unknown FuncType, or with fewer parameters than its
	// type needs, is evaluated as the identity.
	FuncType int
	Params   []float64

	// Table holds the samples of a sampled curve (curv with n>1 entries),
	// evenly spaced over [0, 1].
	Table []uint16
}

func (*Curve) isTagData() {}

// TypeSignature returns "para" for parametric curves and "curv" otherwise.
func (c *Curve) TypeSignature() string {
	if c.Params != nil {
		return "para"
	}
	return "curv"
}

var paraParams = [5]int{1, 3, 4, 5, 7}

func (c *Curve) validParams() bool {
	return c.FuncType >= 0 && c.FuncType < len(paraParams) &&
		len(c.Params) >= paraParams[c.FuncType]
}

func decodeCurveType(r *reader) (*Curve, int, error) {
	n := int(r.u32(8))
	if r.err != nil {
		return nil, 0, r.err
	}
	switch n {
	case 0:
		return &Curve{Gamma: 1}, 12, nil
	case 1:
		g := r.u8Fixed8(12)
		if r.err != nil {
			return nil, 0, r.err
		}
		return &Curve{Gamma: g.Float64()}, 14, nil
	}
	if !r.check(12, 2*n) {
		return nil, 0, r.err
	}
	table := make([]uint16, n)
	for i := range table {
		table[i] = r.u16(12 + 2*i)
	}
	return &Curve{Table: table}, 12 + 2*n, nil
}

func decodeParametricCurve(r *reader) (*Curve, int, error) {
	funcType := int(r.u16(8))
	if r.err != nil {
		return nil, 0, r.err
	}
	if funcType >= len(paraParams) {
		return nil, 0, errInvalidTagData
	}
	params := make([]float64, paraParams[funcType])
	for i := range params {
		params[i] = r.s15Fixed16(12 + 4*i).Float64()
	}
	if r.err != nil {
		return nil, 0, r.err
	}
	return &Curve{FuncType: funcType, Params: params}, 12 + 4*len(params), nil
}

// decodeCurveElement decodes a "curv" or "para" element at the start of
// buf and returns the number of bytes used, not including padding.
func decodeCurveElement(buf []byte) (*Curve, int, error) {
	r := newReader(buf)
	switch r.signature(0) {
	case "curv":
		return decodeCurveType(r)
	case "para":
		return decodeParametricCurve(r)
	}
	if r.err != nil {
		return nil, 0, r.err
	}
	return nil, 0, errInvalidTagData
}

// Evaluate computes the output value for an input value x in [0, 1].
// The output is clamped to [0, 1].
func (c *Curve) Evaluate(x float64) float64 {
	x = clamp(x, 0, 1)

	var y float64
	switch {
	case c.Table != nil:
		y = c.evaluateSampled(x)
	case c.Params != nil:
		y = c.evaluateParametric(x)
	case c.Gamma != 0:
		y = pow(x, c.Gamma)
	default:
		y = x
	}
	return clamp(y, 0, 1)
}

// pow is math.Pow restricted to non-negative bases.
func pow(x, g float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Pow(x, g)
}

func (c *Curve) evaluateParametric(x float64) float64 {
	if !c.validParams() {
		return x
	}
	p := c.Params
	g := p[0]
	switch c.FuncType {
	case 0:
		return pow(x, g)
	case 1:
		if x >= -p[2]/p[1] {
			return pow(p[1]*x+p[2], g)
		}
		return 0
	case 2:
		if x >= -p[2]/p[1] {
			return pow(p[1]*x+p[2], g) + p[3]
		}
		return p[3]
	case 3:
		if x >= p[4] {
			return pow(p[1]*x+p[2], g)
		}
		return p[3] * x
	case 4:
		if x >= p[4] {
			return pow(p[1]*x+p[2], g) + p[5]
		}
		return p[3]*x + p[6]
	}
	return x
}

func (c *Curve) evaluateSampled(x float64) float64 {
	n := len(c.Table)
	if n == 1 {
		return float64(c.Table[0]) / 65535
	}
	pos := x * float64(n-1)
	idx := int(pos)
	if idx >= n-1 {
		return float64(c.Table[n-1]) / 65535
	}
	frac := pos - float64(idx)
	v0 := float64(c.Table[idx])
	v1 := float64(c.Table[idx+1])
	return (v0 + frac*(v1-v0)) / 65535
}

// Invert computes an input value for an output value y in [0, 1].
// For sampled curves the table is assumed to be non-decreasing.
func (c *Curve) Invert(y float64) float64 {
	y = clamp(y, 0, 1)
	switch {
	case c.Table != nil:
		return c.invertSampled(y)
	case c.Params != nil:
		return clamp(c.invertParametric(y), 0, 1)
	case c.Gamma != 0:
		return pow(y, 1/c.Gamma)
	default:
		return y
	}
}

func (c *Curve) invertParametric(y float64) float64 {
	if !c.validParams() {
		return y
	}
	p := c.Params
	g := p[0]
	if g == 0 {
		return 0
	}
	switch c.FuncType {
	case 0:
		return pow(y, 1/g)
	case 1:
		if p[1] == 0 {
			return 0
		}
		return (pow(y, 1/g) - p[2]) / p[1]
	case 2:
		if p[1] == 0 {
			return 0
		}
		if y <= p[3] {
			return -p[2] / p[1]
		}
		return (pow(y-p[3], 1/g) - p[2]) / p[1]
	case 3:
		if y < p[3]*p[4] {
			if p[3] == 0 {
				return 0
			}
			return y / p[3]
		}
		if p[1] == 0 {
			return p[4]
		}
		return (pow(y, 1/g) - p[2]) / p[1]
	case 4:
		if y < p[3]*p[4]+p[6] {
			if p[3] == 0 {
				return 0
			}
			return (y - p[6]) / p[3]
		}
		if p[1] == 0 || y <= p[5] {
			return p[4]
		}
		return (pow(y-p[5], 1/g) - p[2]) / p[1]
	}
	return y
}

func (c *Curve) invertSampled(y float64) float64 {
	n := len(c.Table)
	if n < 2 {
		return y
	}
	target := y * 65535
	idx := sort.Search(n, func(j int) bool {
		return float64(c.Table[j]) >= target
	})
	switch {
	case idx == 0:
		return 0
	case idx >= n:
		return 1
	}
	v0 := float64(c.Table[idx-1])
	v1 := float64(c.Table[idx])
	if v1 == v0 {
		return float64(idx) / float64(n-1)
	}
	frac := (target - v0) / (v1 - v0)
	return (float64(idx-1) + frac) / float64(n-1)
}

// IsIdentity reports whether the curve is the identity function.
func (c *Curve) IsIdentity() bool {
	if c.Table == nil && c.Params == nil && c.Gamma == 1 {
		return true
	}
	return c.Table == nil && c.FuncType == 0 && len(c.Params) == 1 && c.Params[0] == 1
}

// FormulaCurve is a "parf" curve segment.
//
//   - type 0: y = (a*x+b)^g + c, Params [g,a,b,c]
//   - type 1: y = a*log10(b*x^g+c) + d, Params [g,a,b,c,d]
//   - type 2: y = a*b^(c*x+d) + e, Params [a,b,c,d,e]
type FormulaCurve struct {
	FuncType int
	Params   []float32
}

// SampledCurve is a "samf" curve segment.
type SampledCurve struct {
	Samples []float32
}

// SegmentedCurve is a "curf" element: a piecewise function made from
// formula and sampled segments.  Segment i covers the interval from
// BreakPoints[i-1] to BreakPoints[i], with implicit -Inf and +Inf at the
// ends.
type SegmentedCurve struct {
	BreakPoints []float32
	Segments    []TagData // *FormulaCurve or *SampledCurve
}

// CurveSet is a "cvst" element, holding one curve per channel.
type CurveSet []*SegmentedCurve

func (*FormulaCurve) isTagData()   {}
func (*SampledCurve) isTagData()   {}
func (*SegmentedCurve) isTagData() {}
func (CurveSet) isTagData()        {}

func (*FormulaCurve) TypeSignature() string   { return "parf" }
func (*SampledCurve) TypeSignature() string   { return "samf" }
func (*SegmentedCurve) TypeSignature() string { return "curf" }
func (CurveSet) TypeSignature() string        { return "cvst" }

var parfParams = [3]int{4, 5, 5}

func decodeFormulaCurve(r *reader) (*FormulaCurve, int, error) {
	funcType := int(r.u16(8))
	if r.err != nil {
		return nil, 0, r.err
	}
	if funcType >= len(parfParams) {
		return nil, 0, errInvalidTagData
	}
	params := make([]float32, parfParams[funcType])
	for i := range params {
		params[i] = r.f32(12 + 4*i)
	}
	if r.err != nil {
		return nil, 0, r.err
	}
	return &FormulaCurve{FuncType: funcType, Params: params}, 12 + 4*len(params), nil
}

func decodeSampledCurve(r *reader) (*SampledCurve, int, error) {
	n := int(r.u32(8))
	if r.err != nil {
		return nil, 0, r.err
	}
	if !r.check(12, 4*n) {
		return nil, 0, r.err
	}
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = r.f32(12 + 4*i)
	}
	return &SampledCurve{Samples: samples}, 12 + 4*n, nil
}

func decodeSegmentedCurve(r *reader) (*SegmentedCurve, int, error) {
	n := int(r.u16(8))
	if r.err != nil {
		return nil, 0, r.err
	}
	if n == 0 {
		return nil, 0, errInvalidTagData
	}
	c := &SegmentedCurve{
		BreakPoints: make([]float32, n-1),
		Segments:    make([]TagData, n),
	}
	for i := range c.BreakPoints {
		c.BreakPoints[i] = r.f32(12 + 4*i)
	}
	if r.err != nil {
		return nil, 0, r.err
	}

	pos := 12 + 4*(n-1)
	for i := range c.Segments {
		if !r.check(pos, 8) {
			return nil, 0, r.err
		}
		sub := newReader(r.buf[pos:])
		var used int
		var err error
		switch sub.signature(0) {
		case "parf":
			c.Segments[i], used, err = decodeFormulaCurve(sub)
		case "samf":
			c.Segments[i], used, err = decodeSampledCurve(sub)
		default:
			err = errInvalidTagData
		}
		if err != nil {
			return nil, 0, err
		}
		pos += used
	}
	return c, pos, nil
}

func decodeCurveSet(r *reader) (CurveSet, int, error) {
	in := int(r.u16(8))
	out := int(r.u16(10))
	if r.err != nil {
		return nil, 0, r.err
	}
	if in != out {
		return nil, 0, errInvalidTagData
	}
	res := make(CurveSet, in)
	end := 12 + 8*in
	for i := range res {
		offset := int(r.u32(12 + 8*i))
		size := int(r.u32(16 + 8*i))
		if !r.check(offset, size) {
			return nil, 0, r.err
		}
		sub := newReader(r.buf[offset : offset+size])
		if sub.signature(0) != "curf" {
			return nil, 0, errInvalidTagData
		}
		curve, _, err := decodeSegmentedCurve(sub)
		if err != nil {
			return nil, 0, err
		}
		res[i] = curve
		end = max(end, offset+size)
	}
	return res, end, nil
}

// Evaluate computes the value of the formula segment at x.
func (f *FormulaCurve) Evaluate(x float64) float64 {
	p := make([]float64, len(f.Params))
	for i, v := range f.Params {
		p[i] = float64(v)
	}
	switch f.FuncType {
	case 0:
		return pow(p[1]*x+p[2], p[0]) + p[3]
	case 1:
		return p[1]*math.Log10(p[2]*pow(x, p[0])+p[3]) + p[4]
	case 2:
		return p[0]*math.Pow(p[1], p[2]*x+p[3]) + p[4]
	}
	return x
}

// Evaluate computes the value of the segmented curve at x.
func (c *SegmentedCurve) Evaluate(x float64) float64 {
	i := sort.Search(len(c.BreakPoints), func(j int) bool {
		return x <= float64(c.BreakPoints[j])
	})
	switch seg := c.Segments[i].(type) {
	case *FormulaCurve:
		return seg.Evaluate(x)
	case *SampledCurve:
		// The first sample point is the end of the previous segment.
		if i == 0 || i >= len(c.BreakPoints) || len(seg.Samples) == 0 {
			return x
		}
		lo := float64(c.BreakPoints[i-1])
		hi := float64(c.BreakPoints[i])
		start := c.segmentEnd(i - 1)
		n := len(seg.Samples)
		pos := (x - lo) / (hi - lo) * float64(n)
		idx := int(pos)
		frac := pos - float64(idx)
		prev := start
		if idx > 0 {
			prev = float64(seg.Samples[min(idx, n)-1])
		}
		if idx >= n {
			return float64(seg.Samples[n-1])
		}
		return prev + frac*(float64(seg.Samples[idx])-prev)
	}
	return x
}

func (c *SegmentedCurve) segmentEnd(i int) float64 {
	x := float64(c.BreakPoints[i])
	switch seg := c.Segments[i].(type) {
	case *FormulaCurve:
		return seg.Evaluate(x)
	case *SampledCurve:
		if n := len(seg.Samples); n > 0 {
			return float64(seg.Samples[n-1])
		}
	}
	return x
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
