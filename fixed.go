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

// FixedPoint is implemented by the fixed-point number types used in ICC
// profiles.  The real value of a number is Int() plus the fraction encoded
// by Frac(), scaled by the maximal fraction value of the encoding.
type FixedPoint interface {
	Float32() float32
	Float64() float64
	Int() int
	Frac() int
}

// ToFloat converts a fixed-point number to a float of the requested width.
func ToFloat[F constraints.Float](x FixedPoint) F {
	var zero F
	switch any(zero).(type) {
	case float32:
		return F(x.Float32())
	default:
		return F(x.Float64())
	}
}

// S15Fixed16Number is a signed number with 16 fractional bits.
// The value is Integer + Decimal/65535.
type S15Fixed16Number struct {
	Integer int16
	Decimal uint16
}

// Float32 returns the value as a float32.
func (n S15Fixed16Number) Float32() float32 {
	return float32(n.Integer) + float32(n.Decimal)/65535
}

// Float64 returns the value as a float64.
func (n S15Fixed16Number) Float64() float64 {
	return float64(n.Integer) + float64(n.Decimal)/65535
}

func (n S15Fixed16Number) Int() int  { return int(n.Integer) }
func (n S15Fixed16Number) Frac() int { return int(n.Decimal) }

func (n S15Fixed16Number) String() string {
	return fmt.Sprintf("%.6f", n.Float64())
}

// U16Fixed16Number is an unsigned number with 16 fractional bits.
// The value is Integer + Decimal/65535.
type U16Fixed16Number struct {
	Integer uint16
	Decimal uint16
}

func (n U16Fixed16Number) Float32() float32 {
	return float32(n.Integer) + float32(n.Decimal)/65535
}

func (n U16Fixed16Number) Float64() float64 {
	return float64(n.Integer) + float64(n.Decimal)/65535
}

func (n U16Fixed16Number) Int() int  { return int(n.Integer) }
func (n U16Fixed16Number) Frac() int { return int(n.Decimal) }

// U8Fixed8Number is an unsigned number with 8 fractional bits.
// The value is Integer + Decimal/255.
type U8Fixed8Number struct {
	Integer uint8
	Decimal uint8
}

func (n U8Fixed8Number) Float32() float32 {
	return float32(n.Integer) + float32(n.Decimal)/255
}

func (n U8Fixed8Number) Float64() float64 {
	return float64(n.Integer) + float64(n.Decimal)/255
}

func (n U8Fixed8Number) Int() int  { return int(n.Integer) }
func (n U8Fixed8Number) Frac() int { return int(n.Decimal) }

// U1Fixed15Number is an unsigned number with 15 fractional bits and no
// integer part, as used for 16-bit PCSXYZ encodings.  The value is
// Decimal/32767.
type U1Fixed15Number struct {
	Decimal uint16
}

func (n U1Fixed15Number) Float32() float32 {
	return float32(n.Decimal) / 32767
}

func (n U1Fixed15Number) Float64() float64 {
	return float64(n.Decimal) / 32767
}

func (n U1Fixed15Number) Int() int  { return 0 }
func (n U1Fixed15Number) Frac() int { return int(n.Decimal) }

// XYZNumber is a CIE XYZ triple.
type XYZNumber struct {
	X, Y, Z S15Fixed16Number
}

// Float64 returns the three components as floating point numbers.
func (v XYZNumber) Float64() [3]float64 {
	return [3]float64{v.X.Float64(), v.Y.Float64(), v.Z.Float64()}
}

// IsZero reports whether all three components are zero.
func (v XYZNumber) IsZero() bool {
	return v == XYZNumber{}
}

var (
	_ FixedPoint = S15Fixed16Number{}
	_ FixedPoint = U16Fixed16Number{}
	_ FixedPoint = U8Fixed8Number{}
	_ FixedPoint = U1Fixed15Number{}
)
