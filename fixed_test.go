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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedPoint(t *testing.T) {
	tests := []struct {
		x     FixedPoint
		want  float64
		ipart int
		fpart int
	}{
		{S15Fixed16Number{}, 0, 0, 0},
		{S15Fixed16Number{Integer: -1, Decimal: 65535}, 0, -1, 65535},
		{S15Fixed16Number{Integer: 1, Decimal: 0x8000}, 1 + 32768.0/65535, 1, 0x8000},
		{S15Fixed16Number{Integer: -2, Decimal: 0xFFFF}, -1, -2, 0xFFFF},
		{U16Fixed16Number{Integer: 3, Decimal: 0}, 3, 3, 0},
		{U8Fixed8Number{Integer: 1, Decimal: 255}, 2, 1, 255},
		{U8Fixed8Number{Integer: 2, Decimal: 51}, 2.2, 2, 51},
		{U1Fixed15Number{Decimal: 32767}, 1, 0, 32767},
		{U1Fixed15Number{Decimal: 0x8000}, 32768.0 / 32767, 0, 0x8000},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, tt.x.Float64(), 1e-12, "%#v", tt.x)
		assert.InDelta(t, tt.want, float64(tt.x.Float32()), 1e-6, "%#v", tt.x)
		assert.InDelta(t, tt.want, ToFloat[float64](tt.x), 1e-12, "%#v", tt.x)
		assert.Equal(t, tt.x.Float32(), ToFloat[float32](tt.x))
		assert.Equal(t, tt.ipart, tt.x.Int())
		assert.Equal(t, tt.fpart, tt.x.Frac())
	}
}

func TestS15Fixed16FromInt32(t *testing.T) {
	// -1.5 is stored as 0xFFFE8000
	x := s15Fixed16(-0x18000)
	assert.Equal(t, S15Fixed16Number{Integer: -2, Decimal: 0x8000}, x)
	assert.InDelta(t, -1.5, x.Float64(), 1e-4)
	assert.Equal(t, "-1.499992", x.String())

	assert.Equal(t, S15Fixed16Number{Integer: 1}, s15Fixed16(0x10000))
}

func TestXYZNumber(t *testing.T) {
	var zero XYZNumber
	assert.True(t, zero.IsZero())

	v := XYZNumber{Y: S15Fixed16Number{Integer: 1}}
	assert.False(t, v.IsZero())
	assert.Equal(t, [3]float64{0, 1, 0}, v.Float64())
}
