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
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Direction specifies the direction of a colour conversion.
type Direction int

const (
	// DeviceToPCS converts device colours (CMYK) to the PCS, using an
	// AToB table.
	DeviceToPCS Direction = iota

	// PCSToDevice converts PCS colours to device colours, using a BToA
	// table.
	PCSToDevice
)

func (d Direction) String() string {
	switch d {
	case DeviceToPCS:
		return "device to PCS"
	case PCSToDevice:
		return "PCS to device"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Converter converts colours between CMYK and Lab, XYZ or sRGB, using the
// 8-bit or 16-bit lookup table of a profile.
//
// If the profile has no usable table, the Converter falls back to a simple
// formula, see [Converter.Fallback].  A Converter is safe for concurrent
// use.
type Converter struct {
	dir    Direction
	intent RenderingIntent
	mode   InterpolationMode
	white  [3]float64
	pcs    ColorSpace

	lut    Lut // *Lut8 or *Lut16, nil in fallback mode
	tag    TagType
	wide   bool
	reason error
}

// Option configures a [Converter].
type Option func(*Converter)

// WithIntent selects the rendering intent.  The intent determines which of
// the AToB0/AToB1/AToB2 (or BToA0/...) tables is used.  If the table for
// the intent is missing, table 0 is used instead.
func WithIntent(ri RenderingIntent) Option {
	return func(c *Converter) { c.intent = ri }
}

// WithMode selects the interpolation mode for the colour lookup table.
// The default is [TwoCorner].
func WithMode(m InterpolationMode) Option {
	return func(c *Converter) { c.mode = m }
}

// WithWhitePoint overrides the white point used for Lab conversions.
// By default the illuminant from the profile header is used.
func WithWhitePoint(wp [3]float64) Option {
	return func(c *Converter) { c.white = validWhite(wp) }
}

// NewConverter creates a colour converter for a profile.
//
// If the profile cannot be used for the given direction, NewConverter
// still returns a working converter in fallback mode; the cause is
// reported by [Converter.Reason].  An error is only returned for invalid
// arguments.
func NewConverter(p *Profile, dir Direction, opts ...Option) (*Converter, error) {
	if p == nil {
		return nil, errors.New("icclut: nil profile")
	}
	if dir != DeviceToPCS && dir != PCSToDevice {
		return nil, fmt.Errorf("icclut: invalid direction %d", int(dir))
	}

	c := &Converter{
		dir:    dir,
		intent: Perceptual,
		mode:   TwoCorner,
		white:  p.WhitePoint(),
		pcs:    p.PCS,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reason = c.selectLut(p)
	return c, nil
}

func (c *Converter) selectLut(p *Profile) error {
	if p.ColorSpace != CMYKSpace {
		return fmt.Errorf("%w: device colour space is %s", ErrColorSpace, p.ColorSpace)
	}
	if p.PCS != PCSLabSpace && p.PCS != PCSXYZSpace {
		return fmt.Errorf("%w: PCS is %s", ErrColorSpace, p.PCS)
	}

	c.tag = tableTag(c.dir, c.intent)
	if _, ok := p.Tags[c.tag]; !ok {
		c.tag = tableTag(c.dir, Perceptual)
	}
	data, ok := p.Tags[c.tag]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingTag, c.tag)
	}

	var lut Lut
	switch l := data.(type) {
	case *Lut8:
		lut = l
	case *Lut16:
		lut, c.wide = l, true
	default:
		return fmt.Errorf("%w: %s has type %q",
			ErrUnsupportedTagType, c.tag, data.TypeSignature())
	}

	in, out := 4, 3
	if c.dir == PCSToDevice {
		in, out = 3, 4
	}
	if lut.InputChannels() != in || lut.OutputChannels() != out {
		return fmt.Errorf("%w: %s maps %d to %d channels", ErrColorSpace,
			c.tag, lut.InputChannels(), lut.OutputChannels())
	}
	c.lut = lut
	return nil
}

// tableTag returns the tag of the lookup table for a direction and intent.
func tableTag(dir Direction, ri RenderingIntent) TagType {
	var idx TagType
	switch ri {
	case RelativeColorimetric, AbsoluteColorimetric:
		idx = 1
	case Saturation:
		idx = 2
	}
	if dir == PCSToDevice {
		return BToA0 + idx
	}
	return AToB0 + idx
}

// Fallback reports whether the converter uses the fallback formula instead
// of a lookup table.
func (c *Converter) Fallback() bool {
	return c.lut == nil
}

// Reason explains why the converter is in fallback mode.  The error wraps
// [ErrMissingTag], [ErrUnsupportedTagType] or [ErrColorSpace].  Reason
// returns nil if a lookup table is used.
func (c *Converter) Reason() error {
	return c.reason
}

// Tag returns the signature of the table used by the converter.
func (c *Converter) Tag() TagType {
	if c.lut == nil {
		return 0
	}
	return c.tag
}

// WhitePoint returns the white point used for Lab conversions.
func (c *Converter) WhitePoint() [3]float64 {
	return c.white
}

// CMYKToLab converts a CMYK colour to CIELAB.  L ranges from 0 to 100.
func (c *Converter) CMYKToLab(cyan, magenta, yellow, black uint8) (L, a, b float64) {
	if c.lut != nil && c.dir == DeviceToPCS {
		out, err := InterpolateMode[float64](c.lut, []uint8{cyan, magenta, yellow, black}, c.mode)
		if err == nil {
			return c.pcsToLab(out)
		}
	}
	r, g, bl := fallbackRGB(cyan, magenta, yellow, black)
	return rgbToLab(r, g, bl, c.white)
}

// CMYKToXYZ converts a CMYK colour to CIEXYZ, relative to the converter's
// white point.
func (c *Converter) CMYKToXYZ(cyan, magenta, yellow, black uint8) (x, y, z float64) {
	L, a, b := c.CMYKToLab(cyan, magenta, yellow, black)
	return labToXYZ(L, a, b, c.white)
}

// CMYKToRGB converts a CMYK colour to 8-bit sRGB.
func (c *Converter) CMYKToRGB(cyan, magenta, yellow, black uint8) (r, g, b uint8) {
	if c.lut == nil || c.dir != DeviceToPCS {
		return fallbackRGB(cyan, magenta, yellow, black)
	}
	x, y, z := c.CMYKToXYZ(cyan, magenta, yellow, black)
	return c.xyzToRGB(x, y, z)
}

// LabToCMYK converts a CIELAB colour to CMYK, using a BToA table.
// L ranges from 0 to 100, a and b from -128 to 127.
func (c *Converter) LabToCMYK(L, a, b float64) (cyan, magenta, yellow, black uint8) {
	if c.lut != nil && c.dir == PCSToDevice {
		in := c.encodePCS(L, a, b)
		out, err := InterpolateMode[float64](c.lut, in[:], c.mode)
		if err == nil {
			return c.deviceByte(out[0]), c.deviceByte(out[1]), c.deviceByte(out[2]), c.deviceByte(out[3])
		}
	}
	r, g, bl := colorful.LabWhiteRef(L/100, a/100, b/100, c.white).Clamped().RGB255()
	return fallbackCMYK(r, g, bl)
}

// CMYKToRGBEntries converts count CMYK samples, packed into buf with four
// bytes per sample, to packed 8-bit sRGB values.
func (c *Converter) CMYKToRGBEntries(buf []byte, count int) ([]byte, error) {
	if err := checkEntries(buf, count, 4); err != nil {
		return nil, err
	}
	res := make([]byte, 3*count)
	if c.lut == nil || c.dir != DeviceToPCS {
		for i := range count {
			s := buf[4*i : 4*i+4]
			res[3*i], res[3*i+1], res[3*i+2] = fallbackRGB(s[0], s[1], s[2], s[3])
		}
		return res, nil
	}

	vals, err := ConvertEntriesMode[float64](buf, count, c.lut, c.mode)
	if err != nil {
		return nil, err
	}
	for i := range count {
		L, a, b := c.pcsToLab(vals[3*i : 3*i+3])
		x, y, z := labToXYZ(L, a, b, c.white)
		res[3*i], res[3*i+1], res[3*i+2] = c.xyzToRGB(x, y, z)
	}
	return res, nil
}

// CMYKToLabEntries converts count CMYK samples, packed into buf with four
// bytes per sample, to L, a, b triples.
func (c *Converter) CMYKToLabEntries(buf []byte, count int) ([]float64, error) {
	if err := checkEntries(buf, count, 4); err != nil {
		return nil, err
	}
	res := make([]float64, 3*count)
	if c.lut == nil || c.dir != DeviceToPCS {
		for i := range count {
			s := buf[4*i : 4*i+4]
			res[3*i], res[3*i+1], res[3*i+2] = c.CMYKToLab(s[0], s[1], s[2], s[3])
		}
		return res, nil
	}

	vals, err := ConvertEntriesMode[float64](buf, count, c.lut, c.mode)
	if err != nil {
		return nil, err
	}
	for i := range count {
		res[3*i], res[3*i+1], res[3*i+2] = c.pcsToLab(vals[3*i : 3*i+3])
	}
	return res, nil
}

// LabToCMYKEntries converts count Lab samples to packed CMYK bytes.
// The samples are packed into buf with three bytes per sample, in the
// 8-bit Lab encoding: L is scaled to 0-255, a and b are offset by 128.
func (c *Converter) LabToCMYKEntries(buf []byte, count int) ([]byte, error) {
	if err := checkEntries(buf, count, 3); err != nil {
		return nil, err
	}
	res := make([]byte, 4*count)
	if c.lut == nil || c.dir != PCSToDevice {
		for i := range count {
			s := buf[3*i : 3*i+3]
			L, a, b := float64(s[0])/255*100, float64(s[1])-128, float64(s[2])-128
			res[4*i], res[4*i+1], res[4*i+2], res[4*i+3] = c.LabToCMYK(L, a, b)
		}
		return res, nil
	}

	in := buf[:3*count]
	if c.pcs == PCSXYZSpace {
		in = make([]byte, 3*count)
		for i := range count {
			s := buf[3*i : 3*i+3]
			L, a, b := float64(s[0])/255*100, float64(s[1])-128, float64(s[2])-128
			e := c.encodePCS(L, a, b)
			copy(in[3*i:], e[:])
		}
	}
	vals, err := ConvertEntriesMode[float64](in, count, c.lut, c.mode)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		res[i] = c.deviceByte(v)
	}
	return res, nil
}

// pcsToLab decodes the output of an AToB table into L, a, b.
// 16-bit tables use the legacy Lab encoding, where L = 100 is stored as
// 0xFF00.
func (c *Converter) pcsToLab(v []float64) (L, a, b float64) {
	if c.pcs == PCSXYZSpace {
		scale := 32767.0
		if !c.wide {
			scale = 255
		}
		l, a, b := colorful.XyzToLabWhiteRef(v[0]/scale, v[1]/scale, v[2]/scale, c.white)
		return l * 100, a * 100, b * 100
	}
	if c.wide {
		return v[0] / 65280 * 100, v[1]/256 - 128, v[2]/256 - 128
	}
	return v[0] / 255 * 100, v[1] - 128, v[2] - 128
}

// encodePCS converts L, a, b into the 8-bit input of a BToA table.
func (c *Converter) encodePCS(L, a, b float64) [3]uint8 {
	if c.pcs == PCSXYZSpace {
		x, y, z := labToXYZ(L, a, b, c.white)
		// 1.0 is stored as 0x8000 in the 16-bit XYZ encoding
		const scale = 255 * 32768.0 / 65535.0
		return [3]uint8{toByte(x*scale + 0.5), toByte(y*scale + 0.5), toByte(z*scale + 0.5)}
	}
	return [3]uint8{toByte(L*255/100 + 0.5), toByte(a + 127.5), toByte(b + 127.5)}
}

// deviceByte scales an output value of the table to a byte.
func (c *Converter) deviceByte(v float64) uint8 {
	if c.wide {
		v = v / 65535 * 255
	}
	return toByte(v + 0.5)
}

func (c *Converter) xyzToRGB(x, y, z float64) (r, g, b uint8) {
	x, y, z = adaptToD65(x, y, z, c.white)
	return colorful.Xyz(x, y, z).Clamped().RGB255()
}

func labToXYZ(L, a, b float64, white [3]float64) (x, y, z float64) {
	return colorful.LabToXyzWhiteRef(L/100, a/100, b/100, white)
}

func rgbToLab(r, g, b uint8, white [3]float64) (L, A, B float64) {
	col := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	l, a, bb := col.LabWhiteRef(white)
	return l * 100, a * 100, bb * 100
}

// fallbackRGB is the naive conversion used when no lookup table is
// available: R = C + K - 255, clamped to 0-255, and similarly for G and B.
func fallbackRGB(c, m, y, k uint8) (r, g, b uint8) {
	f := func(x uint8) uint8 {
		return uint8(min(max(int(x)+int(k)-255, 0), 255))
	}
	return f(c), f(m), f(y)
}

// fallbackCMYK inverts fallbackRGB, using full black.
func fallbackCMYK(r, g, b uint8) (c, m, y, k uint8) {
	return r, g, b, 255
}
