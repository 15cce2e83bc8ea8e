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

// Package icclut decodes ICC colour profiles and evaluates their lookup
// tables.
//
// [Decode] parses the 128 byte header, the tag directory and every tag of
// a profile.  Tag data is decoded into one of the types implementing
// [TagData]; tags of unknown type are kept as [*Raw].
//
//	p, err := icclut.Decode(data)
//	if err != nil {
//	    // handle error
//	}
//	lut, _ := p.Lookup(icclut.AToB0).(*icclut.Lut16)
//
// # Lookup Tables
//
// The 8-bit and 16-bit lookup tables ([*Lut8], [*Lut16]) are evaluated by
// [Interpolate] for a single sample and by [ConvertEntries] for packed
// buffers of samples.  Evaluation has three stages: input curves, a
// multi-dimensional colour lookup table (CLUT), and output curves.
//
//	lab, err := icclut.Interpolate[float64](lut, []uint8{c, m, y, k})
//
// # Colour Conversion
//
// A [Converter] combines a profile's AToB0 or BToA0 table with Lab, XYZ
// and sRGB conversions.  Profiles without a usable table fall back to a
// simple CMYK to RGB formula:
//
//	conv, _ := icclut.NewConverter(p, icclut.DeviceToPCS)
//	r, g, b := conv.CMYKToRGB(c, m, y, k)
package icclut

import (
	"fmt"
	"time"
)

// Profile is a decoded ICC profile.
//
// Tags holds the decoded data for every tag in the profile.  If the tag
// directory lists a signature more than once, the last entry wins.
// Directory lists all entries in file order.
type Profile struct {
	Header
	Directory []TagEntry
	Tags      map[TagType]TagData
}

// Header holds the fields of the 128 byte profile header.
type Header struct {
	Size               uint32
	PreferredCMMType   uint32
	Version            Version
	Class              ProfileClass
	ColorSpace         ColorSpace // device colour space, e.g. CMYKSpace
	PCS                ColorSpace // PCSXYZSpace or PCSLabSpace
	CreationDate       time.Time  // zero if the stored date is invalid
	Magic              string     // "acsp" for valid profiles
	PrimaryPlatform    uint32
	Flags              uint32
	DeviceManufacturer uint32
	DeviceModel        uint32
	DeviceAttributes   uint64
	RenderingIntent    RenderingIntent
	Illuminant         XYZNumber
	Creator            uint32
	ProfileID          [16]byte

	// CheckSum indicates whether ProfileID matches the profile data.
	CheckSum CheckSum
}

// TagEntry is an entry of the tag directory.
type TagEntry struct {
	Signature TagType
	Offset    uint32
	Length    uint32
}

// MagicValid reports whether the header carries the "acsp" signature.
// Decode does not reject profiles with a bad signature.
func (h *Header) MagicValid() bool {
	return h.Magic == "acsp"
}

// Version is a version of the ICC profile format.
type Version uint32

// Some well-known versions of the ICC profile format.
const (
	Version2_1_0 Version = 0x0210_0000
	Version2_2_0 Version = 0x0220_0000
	Version2_3_0 Version = 0x0230_0000
	Version2_4_0 Version = 0x0240_0000
	Version4_0_0 Version = 0x0400_0000
	Version4_2_0 Version = 0x0420_0000
	Version4_3_0 Version = 0x0430_0000
	Version4_4_0 Version = 0x0440_0000
)

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v>>24, v>>20&0xF, v>>16&0xF)
	if other := v & 0xFFFF; other != 0 {
		s += fmt.Sprintf(".%04X", uint32(other))
	}
	return s
}

// ProfileClass is the ICC profile or device class.
type ProfileClass uint32

// Profile classes.
const (
	InputDeviceProfile   ProfileClass = 0x73636E72 // "scnr"
	DisplayDeviceProfile ProfileClass = 0x6D6E7472 // "mntr"
	OutputDeviceProfile  ProfileClass = 0x70727472 // "prtr"
	DeviceLinkProfile    ProfileClass = 0x6C696E6B // "link"
	ColorSpaceProfile    ProfileClass = 0x73706163 // "spac"
	AbstractProfile      ProfileClass = 0x61627374 // "abst"
	NamedColorProfile    ProfileClass = 0x6E6D636C // "nmcl"
)

var classNames = map[ProfileClass]string{
	InputDeviceProfile:   "Input Device",
	DisplayDeviceProfile: "Display Device",
	OutputDeviceProfile:  "Output Device",
	DeviceLinkProfile:    "DeviceLink",
	ColorSpaceProfile:    "ColorSpace",
	AbstractProfile:      "Abstract",
	NamedColorProfile:    "Named Color",
}

func (c ProfileClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ProfileClass(%s)", sigString(uint32(c)))
}

// RenderingIntent selects how colours outside the destination gamut are
// handled.  The intent also selects between the AToB0/AToB1/AToB2 and
// BToA0/BToA1/BToA2 tables.
type RenderingIntent uint32

// Rendering intents.
const (
	Perceptual           RenderingIntent = 0
	RelativeColorimetric RenderingIntent = 1
	Saturation           RenderingIntent = 2
	AbsoluteColorimetric RenderingIntent = 3
)

func (ri RenderingIntent) String() string {
	switch ri {
	case Perceptual:
		return "perceptual"
	case RelativeColorimetric:
		return "relative colorimetric"
	case Saturation:
		return "saturation"
	case AbsoluteColorimetric:
		return "absolute colorimetric"
	default:
		return fmt.Sprintf("RenderingIntent(%d)", uint32(ri))
	}
}

// ColorSpace identifies a colour space by its four character signature.
type ColorSpace uint32

// Colour spaces.  The generic n-colour spaces are "2CLR" to "FCLR".
const (
	CIEXYZSpace ColorSpace = 0x58595A20 // "XYZ "
	CIELabSpace ColorSpace = 0x4C616220 // "Lab "
	CIELuvSpace ColorSpace = 0x4C757620 // "Luv "
	YCbCrSpace  ColorSpace = 0x59436272 // "YCbr"
	CIEYxySpace ColorSpace = 0x59787920 // "Yxy "
	RGBSpace    ColorSpace = 0x52474220 // "RGB "
	GraySpace   ColorSpace = 0x47524159 // "GRAY"
	HSVSpace    ColorSpace = 0x48535620 // "HSV "
	HLSSpace    ColorSpace = 0x484C5320 // "HLS "
	CMYKSpace   ColorSpace = 0x434D594B // "CMYK"
	CMYSpace    ColorSpace = 0x434D5920 // "CMY "

	PCSXYZSpace = CIEXYZSpace
	PCSLabSpace = CIELabSpace
)

func (s ColorSpace) String() string {
	return sigString(uint32(s))
}

// NumComponents returns the number of colour components of the space, or 0
// if the space is not known.
func (s ColorSpace) NumComponents() int {
	switch s {
	case GraySpace:
		return 1
	case CMYKSpace:
		return 4
	case CIEXYZSpace, CIELabSpace, CIELuvSpace, YCbCrSpace, CIEYxySpace,
		RGBSpace, HSVSpace, HLSSpace, CMYSpace:
		return 3
	}
	if s&0x00FFFFFF == 0x00434C52 { // "xCLR"
		switch d := byte(s >> 24); {
		case d >= '2' && d <= '9':
			return int(d - '0')
		case d >= 'A' && d <= 'F':
			return int(d-'A') + 10
		}
	}
	return 0
}

// CheckSum reports on the profile ID in the header.
type CheckSum int

// Possible values of the CheckSum field.
const (
	CheckSumMissing CheckSum = iota
	CheckSumValid
	CheckSumInvalid
)

func (c CheckSum) String() string {
	switch c {
	case CheckSumValid:
		return "valid"
	case CheckSumInvalid:
		return "invalid"
	default:
		return "missing"
	}
}

// sigString formats a four character signature.  Non-printable signatures
// are shown in hex.
func sigString(x uint32) string {
	b := []byte{byte(x >> 24), byte(x >> 16), byte(x >> 8), byte(x)}
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return fmt.Sprintf("0x%08X", x)
		}
	}
	return string(b)
}
