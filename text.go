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

// MultiLocalizedUnicode represents a localized Unicode string.
type MultiLocalizedUnicode []LocalizedUnicode

// LocalizedUnicode represents a language-country pair.
type LocalizedUnicode struct {
	Language string
	Country  string
	Value    string
}

// String returns the first value, preferring English.
func (m MultiLocalizedUnicode) String() string {
	for _, lu := range m {
		if lu.Language == "en" {
			return lu.Value
		}
	}
	if len(m) > 0 {
		return m[0].Value
	}
	return ""
}

// plainText wraps a string without language information.
func plainText(s string) MultiLocalizedUnicode {
	return MultiLocalizedUnicode{{Language: "C", Value: s}}
}

func decodeTextType(r *reader, sig string) (TagData, error) {
	s := r.ascii(8, len(r.buf)-8)
	if r.err != nil {
		return nil, r.err
	}
	return &Text{Signature: sig, Value: s}, nil
}

func decodeSignatureType(r *reader) (TagData, error) {
	s := r.ascii(8, 4)
	if r.err != nil {
		return nil, r.err
	}
	return &Text{Signature: "sig ", Value: s}, nil
}

// decodeDataType decodes a "data" tag.  Flag 0 marks ASCII data,
// everything else is binary.
func decodeDataType(r *reader) (TagData, error) {
	flag := r.u32(8)
	if flag == 0 {
		s := r.ascii(12, len(r.buf)-12)
		if r.err != nil {
			return nil, r.err
		}
		return &Text{Signature: "data", Value: s}, nil
	}
	b := r.bytes(12, len(r.buf)-12)
	if r.err != nil {
		return nil, r.err
	}
	return Binary(b), nil
}

func decodeMLUC(r *reader) (MultiLocalizedUnicode, int, error) {
	n := r.u32(8)
	recSize := int(r.u32(12))
	if r.err != nil {
		return nil, 0, r.err
	}
	if recSize < 12 {
		return nil, 0, errInvalidTagData
	}
	if uint64(n)*uint64(recSize) > uint64(len(r.buf)) {
		return nil, 0, outOfBounds(16, int(min(uint64(n)*uint64(recSize), 1<<31)), len(r.buf))
	}

	end := 16 + int(n)*recSize
	res := make(MultiLocalizedUnicode, n)
	for i := range res {
		base := 16 + i*recSize
		length := r.u32(base + 4)
		offset := r.u32(base + 8)
		if r.err != nil {
			return nil, 0, r.err
		}
		if length&1 != 0 {
			return nil, 0, errInvalidTagData
		}
		if !r.check(int(offset), int(length)) {
			return nil, 0, r.err
		}
		res[i] = LocalizedUnicode{
			Language: r.ascii(base, 2),
			Country:  r.ascii(base+2, 2),
			Value:    decodeUTF16(r.buf[offset : offset+length]),
		}
		end = max(end, int(offset+length))
	}
	return res, end, r.err
}

// decodeDesc decodes a textDescriptionType.  The second return value is
// the number of bytes used.  Old profiles often truncate the Unicode and
// ScriptCode parts; for versions before 4.0 these are optional.
func decodeDesc(r *reader, version Version) (*Descriptor, int, error) {
	n := int(r.u32(8))
	if r.err != nil {
		return nil, 0, r.err
	}
	d := &Descriptor{ASCII: r.ascii(12, n)}
	if r.err != nil {
		return nil, 0, r.err
	}
	pos := 12 + n

	lenient := version < Version4_0_0
	if lenient && !r.fits(pos, 8) {
		return d, len(r.buf), nil
	}
	d.UnicodeLanguage = r.u32(pos)
	un := int(r.u32(pos + 4))
	if r.err != nil {
		return nil, 0, r.err
	}
	if lenient && !r.fits(pos+8, 2*un) {
		return d, len(r.buf), nil
	}
	d.Unicode = r.utf16(pos+8, un)
	pos += 8 + 2*un

	if lenient && !r.fits(pos, 3) {
		return d, len(r.buf), nil
	}
	d.ScriptCode = r.u16(pos)
	sn := int(r.u8(pos + 2))
	if r.err != nil {
		return nil, 0, r.err
	}
	if lenient && !r.fits(pos+3, 67) {
		return d, len(r.buf), nil
	}
	// the Macintosh script field always occupies 67 bytes
	if !r.check(pos+3, 67) {
		return nil, 0, r.err
	}
	d.MacScript = r.ascii(pos+3, min(sn, 67))
	pos += 3 + 67
	if r.err != nil {
		return nil, 0, r.err
	}
	return d, pos, nil
}

func decodeProfileSequence(r *reader, version Version) (TagData, error) {
	n := r.u32(8)
	if r.err != nil {
		return nil, r.err
	}
	if uint64(n)*20 > uint64(len(r.buf)) {
		return nil, outOfBounds(12, int(min(uint64(n)*20, 1<<31)), len(r.buf))
	}

	res := make(ProfileSequence, n)
	pos := 12
	for i := range res {
		d := &res[i]
		d.Manufacturer = r.u32(pos)
		d.Model = r.u32(pos + 4)
		d.Attributes = r.u64(pos + 8)
		d.Technology = r.u32(pos + 16)
		if r.err != nil {
			return nil, r.err
		}
		pos += 20

		var used int
		var err error
		if !r.check(pos, 0) {
			return nil, r.err
		}
		d.ManufacturerDesc, used, err = decodeEmbeddedText(r.buf[pos:], version)
		if err != nil {
			return nil, err
		}
		pos += used
		if !r.check(pos, 0) {
			return nil, r.err
		}
		d.ModelDesc, used, err = decodeEmbeddedText(r.buf[pos:], version)
		if err != nil {
			return nil, err
		}
		pos += used
	}
	return res, nil
}

// decodeEmbeddedText decodes a text record inside a profile sequence.
// The record may be a "desc", "mluc" or "text" element; all are
// returned as MultiLocalizedUnicode.
func decodeEmbeddedText(buf []byte, version Version) (MultiLocalizedUnicode, int, error) {
	r := newReader(buf)
	sig := r.signature(0)
	if r.err != nil {
		return nil, 0, r.err
	}
	switch sig {
	case "desc":
		d, used, err := decodeDesc(r, version)
		if err != nil {
			return nil, 0, err
		}
		s := d.ASCII
		if s == "" {
			s = d.Unicode
		}
		return plainText(s), used, nil
	case "mluc":
		return decodeMLUC(r)
	case "text":
		if len(buf) < 8 {
			return nil, 0, outOfBounds(0, 8, len(buf))
		}
		end := 8
		for end < len(buf) && buf[end] != 0 {
			end++
		}
		used := min(end+1, len(buf))
		return plainText(string(buf[8:end])), used, nil
	default:
		return nil, 0, errInvalidTagData
	}
}
