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

import "github.com/lucasb-eyer/go-colorful"

// Standard illuminants in XYZ coordinates, normalised to Y = 1.
var (
	WhiteD50 = colorful.D50
	WhiteD65 = colorful.D65
)

// WhitePoint returns the PCS illuminant from the profile header.
// If the header does not specify an illuminant, D50 is returned.
func (h *Header) WhitePoint() [3]float64 {
	if h.Illuminant.IsZero() {
		return WhiteD50
	}
	return validWhite(h.Illuminant.Float64())
}

func validWhite(wp [3]float64) [3]float64 {
	if wp[0] <= 0 || wp[1] <= 0 || wp[2] <= 0 {
		return WhiteD50
	}
	return wp
}

// adaptToD65 maps XYZ values relative to the white point wp onto the D65
// white point used by sRGB, by scaling each component.
func adaptToD65(x, y, z float64, wp [3]float64) (float64, float64, float64) {
	return x * WhiteD65[0] / wp[0],
		y * WhiteD65[1] / wp[1],
		z * WhiteD65[2] / wp[2]
}
