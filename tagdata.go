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

import "time"

// TagData is the decoded content of a tag.
//
// The concrete type is determined by the four character type signature at
// the start of the tag data.  Tags with an unknown type signature are
// represented by [*Raw].
type TagData interface {
	// TypeSignature returns the type signature of the tag data,
	// e.g. "mft2" for a [*Lut16].
	TypeSignature() string

	isTagData()
}

// Raw holds the payload of a tag with an unsupported type.
// Data excludes the 8-byte type signature and reserved field.
type Raw struct {
	Signature string
	Data      []byte
}

// Text holds the value of "text", "sig " and textual "data" tags.
type Text struct {
	Signature string
	Value     string
}

// Binary holds the payload of a "data" tag with the binary flag set.
type Binary []byte

// XYZArray holds the values of an "XYZ " tag.
type XYZArray []XYZNumber

// S15Fixed16Array holds the values of an "sf32" tag.
type S15Fixed16Array []S15Fixed16Number

// U16Fixed16Array holds the values of a "uf32" tag.
type U16Fixed16Array []U16Fixed16Number

// UInt8Array holds the values of a "ui08" tag.
type UInt8Array []uint8

// UInt16Array holds the values of a "ui16" tag.
type UInt16Array []uint16

// UInt32Array holds the values of a "ui32" tag.
type UInt32Array []uint32

// UInt64Array holds the values of a "ui64" tag.
type UInt64Array []uint64

// DateTime holds the value of a "dtim" tag.
type DateTime time.Time

// Chromaticity holds the value of a "chrm" tag.
type Chromaticity struct {
	Phosphor uint16 // 0 = custom, 1 = ITU-R BT.709, 2 = SMPTE RP145, ...
	Channels []ChromaticityCoordinate
}

// ChromaticityCoordinate is a CIE xy pair.
type ChromaticityCoordinate struct {
	X, Y U16Fixed16Number
}

// ViewConditions holds the value of a "view" tag.
type ViewConditions struct {
	Illuminant     XYZNumber
	Surround       XYZNumber
	IlluminantType uint32
}

// Measurement holds the value of a "meas" tag.
type Measurement struct {
	Observer       uint32
	Backing        XYZNumber
	Geometry       uint32
	Flare          U16Fixed16Number
	IlluminantType uint32
}

// ProfileSequence holds the value of a "pseq" tag.
type ProfileSequence []SequenceDescription

// SequenceDescription describes one profile of a profile sequence.
// Plain text and localized descriptions are both stored as
// [MultiLocalizedUnicode].
type SequenceDescription struct {
	Manufacturer     uint32
	Model            uint32
	Attributes       uint64
	Technology       uint32
	ManufacturerDesc MultiLocalizedUnicode
	ModelDesc        MultiLocalizedUnicode
}

// Descriptor holds the value of a "desc" tag (textDescriptionType).
type Descriptor struct {
	ASCII           string
	UnicodeLanguage uint32
	Unicode         string
	ScriptCode      uint16
	MacScript       string
}

// NamedColor2 holds the value of an "ncl2" tag.
type NamedColor2 struct {
	VendorFlags uint32
	Prefix      string
	Suffix      string
	Colors      []NamedColor
}

// NamedColor is one entry of a named colour list.
type NamedColor struct {
	Name   string
	PCS    [3]uint16
	Device []uint16
}

// ResponseCurveSet16 holds the value of an "rcs2" tag.
type ResponseCurveSet16 struct {
	Channels int
	Curves   []ResponseCurve
}

// ResponseCurve is one measurement-unit record of a response curve set.
type ResponseCurve struct {
	Unit         string
	Measurements [][]ResponseValue // one slice per channel
	XYZ          []XYZNumber       // one per channel
}

// ResponseValue pairs a device value with its measured response.
type ResponseValue struct {
	Device      uint16
	Measurement S15Fixed16Number
}

// CRDInfo holds the value of a "crdi" tag.
type CRDInfo struct {
	Product  string
	CRDNames [4]string // one per rendering intent
}

// ColorantTable holds the value of a "clrt" tag.
type ColorantTable []Colorant

// Colorant is a named colorant with its PCS value.
type Colorant struct {
	Name string
	PCS  [3]uint16
}

// ColorantOrder holds the value of a "clro" tag.
type ColorantOrder []uint8

func (*Raw) isTagData()                  {}
func (*Text) isTagData()                 {}
func (Binary) isTagData()                {}
func (XYZArray) isTagData()              {}
func (S15Fixed16Array) isTagData()       {}
func (U16Fixed16Array) isTagData()       {}
func (UInt8Array) isTagData()            {}
func (UInt16Array) isTagData()           {}
func (UInt32Array) isTagData()           {}
func (UInt64Array) isTagData()           {}
func (DateTime) isTagData()              {}
func (*Chromaticity) isTagData()         {}
func (*ViewConditions) isTagData()       {}
func (*Measurement) isTagData()          {}
func (ProfileSequence) isTagData()       {}
func (*Descriptor) isTagData()           {}
func (*NamedColor2) isTagData()          {}
func (*ResponseCurveSet16) isTagData()   {}
func (*CRDInfo) isTagData()              {}
func (ColorantTable) isTagData()         {}
func (ColorantOrder) isTagData()         {}
func (MultiLocalizedUnicode) isTagData() {}

func (d *Raw) TypeSignature() string                { return d.Signature }
func (d *Text) TypeSignature() string               { return d.Signature }
func (Binary) TypeSignature() string                { return "data" }
func (XYZArray) TypeSignature() string              { return "XYZ " }
func (S15Fixed16Array) TypeSignature() string       { return "sf32" }
func (U16Fixed16Array) TypeSignature() string       { return "uf32" }
func (UInt8Array) TypeSignature() string            { return "ui08" }
func (UInt16Array) TypeSignature() string           { return "ui16" }
func (UInt32Array) TypeSignature() string           { return "ui32" }
func (UInt64Array) TypeSignature() string           { return "ui64" }
func (DateTime) TypeSignature() string              { return "dtim" }
func (*Chromaticity) TypeSignature() string         { return "chrm" }
func (*ViewConditions) TypeSignature() string       { return "view" }
func (*Measurement) TypeSignature() string          { return "meas" }
func (ProfileSequence) TypeSignature() string       { return "pseq" }
func (*Descriptor) TypeSignature() string           { return "desc" }
func (*NamedColor2) TypeSignature() string          { return "ncl2" }
func (*ResponseCurveSet16) TypeSignature() string   { return "rcs2" }
func (*CRDInfo) TypeSignature() string              { return "crdi" }
func (ColorantTable) TypeSignature() string         { return "clrt" }
func (ColorantOrder) TypeSignature() string         { return "clro" }
func (MultiLocalizedUnicode) TypeSignature() string { return "mluc" }
