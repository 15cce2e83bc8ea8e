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

import "fmt"

// TagType is the signature of a tag in an ICC profile.
type TagType uint32

// Tag signatures.  (The list is incomplete.)
const (
	AToB0              TagType = 0x41324230 // "A2B0"
	AToB1              TagType = 0x41324231 // "A2B1"
	AToB2              TagType = 0x41324232 // "A2B2"
	BToA0              TagType = 0x42324130 // "B2A0"
	BToA1              TagType = 0x42324131 // "B2A1"
	BToA2              TagType = 0x42324132 // "B2A2"
	Gamut              TagType = 0x67616D74 // "gamt"
	Preview0           TagType = 0x70726530 // "pre0"
	ProfileDescription TagType = 0x64657363 // "desc"
	Copyright          TagType = 0x63707274 // "cprt"
	ChromaticAdaption  TagType = 0x63686164 // "chad"
	MediaWhitePoint    TagType = 0x77747074 // "wtpt"
	MediaBlackPoint    TagType = 0x626B7074 // "bkpt"
	CharTarget         TagType = 0x74617267 // "targ"
	Technology         TagType = 0x74656368 // "tech"
	ViewingCondDesc    TagType = 0x76756564 // "vued"
	ProfileSequenceTag TagType = 0x70736571 // "pseq"
	ColorantTableTag   TagType = 0x636C7274 // "clrt"
	ColorantOrderTag   TagType = 0x636C726F // "clro"
)

var tagNames = map[TagType]string{
	ProfileDescription: "Profile Description",
	Copyright:          "Copyright",
	ChromaticAdaption:  "Chromatic Adaption",
	MediaWhitePoint:    "Media White Point",
	MediaBlackPoint:    "Media Black Point",
}

func (t TagType) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	s := sigString(uint32(t))
	if len(s) == 4 {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// Signature returns the four character signature of the tag.
func (t TagType) Signature() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}

// ParseTagType converts a four character signature into a TagType.
// Shorter names are padded with spaces.
func ParseTagType(name string) (TagType, error) {
	if len(name) == 0 || len(name) > 4 {
		return 0, fmt.Errorf("icclut: invalid tag signature %q", name)
	}
	var t TagType
	for i := range 4 {
		c := byte(' ')
		if i < len(name) {
			c = name[i]
		}
		t = t<<8 | TagType(c)
	}
	return t, nil
}

// Lookup returns the decoded data for a tag, or nil if the profile has no
// such tag.
func (p *Profile) Lookup(t TagType) TagData {
	return p.Tags[t]
}

// Tag returns the decoded data for the tag with the given four character
// signature, e.g. "A2B0".
func (p *Profile) Tag(name string) (TagData, error) {
	t, err := ParseTagType(name)
	if err != nil {
		return nil, err
	}
	data, ok := p.Tags[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingTag, name)
	}
	return data, nil
}

// Description returns the profile description.
func (p *Profile) Description() (MultiLocalizedUnicode, error) {
	return p.textTag(ProfileDescription)
}

// Copyright returns the copyright notice of the profile.
func (p *Profile) Copyright() (MultiLocalizedUnicode, error) {
	return p.textTag(Copyright)
}

// textTag returns a text-valued tag, whatever the storage format.
func (p *Profile) textTag(t TagType) (MultiLocalizedUnicode, error) {
	data, ok := p.Tags[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTag, t)
	}
	switch d := data.(type) {
	case MultiLocalizedUnicode:
		return d, nil
	case *Descriptor:
		if d.ASCII == "" && d.Unicode != "" {
			return plainText(d.Unicode), nil
		}
		return plainText(d.ASCII), nil
	case *Text:
		return plainText(d.Value), nil
	default:
		return nil, fmt.Errorf("%w: %s has type %q",
			ErrUnsupportedTagType, t, data.TypeSignature())
	}
}
