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

// DecodeTag decodes the tag data at the start of data.  The tag occupies
// length bytes, which must include the 8 byte type signature and reserved
// field.  The profile version is needed to decode some older text formats
// leniently.
//
// Tags with an unknown type signature are returned as [*Raw].  The result
// does not share memory with data.
func DecodeTag(data []byte, length int, version Version) (TagData, error) {
	if length < 8 || length > len(data) {
		return nil, outOfBounds(0, max(length, 8), len(data))
	}
	r := newReader(data[:length])
	sig := r.signature(0)
	if r.err != nil {
		return nil, r.err
	}

	switch sig {
	case "text":
		return decodeTextType(r, sig)
	case "sig ":
		return decodeSignatureType(r)
	case "data":
		return decodeDataType(r)
	case "XYZ ", "XYZ":
		return decodeXYZType(r)
	case "sf32":
		return decodeS15Fixed16Array(r)
	case "uf32":
		return decodeU16Fixed16Array(r)
	case "ui08":
		b := r.bytes(8, length-8)
		return tagOrNil(UInt8Array(b), r.err)
	case "ui16":
		return decodeUInt16Array(r)
	case "ui32":
		return decodeUInt32Array(r)
	case "ui64":
		return decodeUInt64Array(r)
	case "dtim":
		return decodeDateTimeType(r)
	case "curv":
		c, _, err := decodeCurveType(r)
		return tagOrNil(c, err)
	case "para":
		c, _, err := decodeParametricCurve(r)
		return tagOrNil(c, err)
	case "parf":
		c, _, err := decodeFormulaCurve(r)
		return tagOrNil(c, err)
	case "samf":
		c, _, err := decodeSampledCurve(r)
		return tagOrNil(c, err)
	case "curf":
		c, _, err := decodeSegmentedCurve(r)
		return tagOrNil(c, err)
	case "cvst":
		c, _, err := decodeCurveSet(r)
		return tagOrNil(c, err)
	case "mft1":
		l, err := decodeLut8(r)
		return tagOrNil(l, err)
	case "mft2":
		l, err := decodeLut16(r)
		return tagOrNil(l, err)
	case "mAB ":
		l, err := decodeLutAToB(r)
		return tagOrNil(l, err)
	case "mBA ":
		l, err := decodeLutBToA(r)
		return tagOrNil(l, err)
	case "chrm":
		return decodeChromaticity(r)
	case "mluc", "vued":
		m, _, err := decodeMLUC(r)
		return tagOrNil(m, err)
	case "desc":
		d, _, err := decodeDesc(r, version)
		return tagOrNil(d, err)
	case "pseq":
		return decodeProfileSequence(r, version)
	case "view":
		return decodeViewConditions(r)
	case "meas":
		return decodeMeasurement(r)
	case "ncl2":
		return decodeNamedColor2(r)
	case "rcs2":
		return decodeResponseCurveSet16(r)
	case "crdi":
		return decodeCRDInfo(r)
	case "clrt":
		return decodeColorantTable(r)
	case "clro":
		return decodeColorantOrder(r)
	case "mpet":
		return decodeMultiProcessElements(r)
	case "matf":
		m, _, err := decodeMatrixElement(r)
		return tagOrNil(m, err)
	default:
		b := r.bytes(8, length-8)
		return tagOrNil(&Raw{Signature: sig, Data: b}, r.err)
	}
}

// tagOrNil avoids returning a typed nil pointer as a non-nil TagData.
func tagOrNil[T TagData](v T, err error) (TagData, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeXYZType(r *reader) (TagData, error) {
	n := (len(r.buf) - 8) / 12
	res := make(XYZArray, n)
	for i := range res {
		res[i] = r.xyz(8 + 12*i)
	}
	return res, r.err
}

func decodeS15Fixed16Array(r *reader) (TagData, error) {
	res := make(S15Fixed16Array, (len(r.buf)-8)/4)
	for i := range res {
		res[i] = r.s15Fixed16(8 + 4*i)
	}
	return res, r.err
}

func decodeU16Fixed16Array(r *reader) (TagData, error) {
	res := make(U16Fixed16Array, (len(r.buf)-8)/4)
	for i := range res {
		res[i] = r.u16Fixed16(8 + 4*i)
	}
	return res, r.err
}

func decodeUInt16Array(r *reader) (TagData, error) {
	res := make(UInt16Array, (len(r.buf)-8)/2)
	for i := range res {
		res[i] = r.u16(8 + 2*i)
	}
	return res, r.err
}

func decodeUInt32Array(r *reader) (TagData, error) {
	res := make(UInt32Array, (len(r.buf)-8)/4)
	for i := range res {
		res[i] = r.u32(8 + 4*i)
	}
	return res, r.err
}

func decodeUInt64Array(r *reader) (TagData, error) {
	res := make(UInt64Array, (len(r.buf)-8)/8)
	for i := range res {
		res[i] = r.u64(8 + 8*i)
	}
	return res, r.err
}

func decodeDateTimeType(r *reader) (TagData, error) {
	t := r.dateTime(8)
	if r.err != nil {
		return nil, r.err
	}
	return DateTime(t), nil
}

// dateTime reads a 12 byte dateTimeNumber.  Invalid dates are returned as
// the zero time.
func (r *reader) dateTime(offset int) time.Time {
	var f [6]int
	for i := range f {
		f[i] = int(r.u16(offset + 2*i))
	}
	if r.err != nil {
		return time.Time{}
	}
	return makeDate(f[0], f[1], f[2], f[3], f[4], f[5])
}

func makeDate(year, month, day, hour, minute, second int) time.Time {
	if year < 1970 || year > 3000 ||
		month < 1 || month > 12 ||
		day < 1 || day > 31 ||
		hour > 23 || minute > 59 || second > 61 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}
