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
)

// Error kinds reported by this package.  Use [errors.Is] to test for them;
// the concrete errors carry more detail, see [BoundsError] and
// [InvalidProfileError].
var (
	ErrOutOfBounds        = errors.New("icclut: read out of bounds")
	ErrProfileTooShort    = errors.New("icclut: profile shorter than 128 bytes")
	ErrDataShortage       = errors.New("icclut: data shortage")
	ErrUnsupportedTagType = errors.New("icclut: unsupported tag type")
	ErrDivideByZero       = errors.New("icclut: zero grid points or table entries")
	ErrMissingTag         = errors.New("icclut: missing tag")
	ErrColorSpace         = errors.New("icclut: unsupported colour space")
)

// BoundsError describes an access which does not fit into the available
// data.  Kind is either [ErrOutOfBounds] or [ErrDataShortage].
type BoundsError struct {
	Kind   error
	Offset int // start of the attempted access
	Size   int // number of bytes needed
	Length int // number of bytes available
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%v: %d bytes at offset %d, buffer length %d",
		e.Kind, e.Size, e.Offset, e.Length)
}

func (e *BoundsError) Unwrap() error {
	return e.Kind
}

func outOfBounds(offset, size, length int) error {
	return &BoundsError{Kind: ErrOutOfBounds, Offset: offset, Size: size, Length: length}
}

func dataShortage(offset, size, length int) error {
	return &BoundsError{Kind: ErrDataShortage, Offset: offset, Size: size, Length: length}
}

// InvalidProfileError indicates that an ICC profile contains invalid binary
// data and cannot be decoded.
type InvalidProfileError struct {
	Offset int     // absolute byte offset in the profile
	Tag    TagType // zero for errors outside the tag data
	Reason string
	Err    error
}

func (e *InvalidProfileError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Tag != 0 {
		return fmt.Sprintf("icclut: invalid profile (tag %s, byte %d): %s", e.Tag, e.Offset, msg)
	}
	return fmt.Sprintf("icclut: invalid profile (byte %d): %s", e.Offset, msg)
}

func (e *InvalidProfileError) Unwrap() error {
	return e.Err
}

var errInvalidTagData = errors.New("invalid tag data")
