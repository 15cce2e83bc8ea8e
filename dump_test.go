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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	p := decodeProfile(t, testHeader(),
		testTag{AToB0, encodeLut16(cornerLut16())},
		testTag{Copyright, textData("(c) test")})

	var buf strings.Builder
	require.NoError(t, p.Dump(&buf, 0))
	out := buf.String()
	assert.Contains(t, out, "Version: 4.2.0\n")
	assert.Contains(t, out, "Class: Output Device\n")
	assert.Contains(t, out, "ColorSpace: CMYK\n")
	assert.Contains(t, out, "CreationDate: 2024-03-04 05:06:07\n")
	assert.Contains(t, out, "RenderingIntent: perceptual\n")
	assert.NotContains(t, out, "Magic")
	assert.NotContains(t, out, "Tags:")

	buf.Reset()
	require.NoError(t, p.Dump(&buf, 1))
	out = buf.String()
	assert.Contains(t, out, "Tags:\n")
	assert.Contains(t, out, "  A2B0  offset 156, ")
	assert.NotContains(t, out, "[text]")

	buf.Reset()
	require.NoError(t, p.Dump(&buf, 2))
	out = buf.String()
	assert.Contains(t, out, `cprt [text]: "(c) test"`)
	lutLine := "A2B0 [mft2]: 4→3 channels, 2 grid points, 2/2 table entries"
	assert.Contains(t, out, lutLine)
	// tags are listed in order of their signature
	assert.Less(t, strings.Index(out, lutLine), strings.Index(out, "cprt [text]"))
}

func TestDumpInvalidMagic(t *testing.T) {
	h := testHeader()
	h.Magic = "xxxx"
	p := decodeProfile(t, h)

	var buf strings.Builder
	require.NoError(t, p.Dump(&buf, 0))
	assert.Contains(t, buf.String(), `Magic: "xxxx" (invalid)`)
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestDumpWriteError(t *testing.T) {
	p := decodeProfile(t, testHeader())
	err := p.Dump(failingWriter{}, 2)
	assert.ErrorIs(t, err, errWrite)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		data TagData
		want string
	}{
		{&Curve{Gamma: 2.2}, "gamma 2.2000"},
		{&Curve{Table: []uint16{0, 1, 2}}, "sampled curve, 3 entries"},
		{&Curve{FuncType: 3, Params: []float64{1, 1, 0, 1, 0}}, "parametric curve, type 3"},
		{identityLut8(3), "3→3 channels, 2 grid points"},
		{&Raw{Signature: "zzzz", Data: make([]byte, 5)}, "5 bytes"},
		{ColorantTable{{Name: "Cyan"}, {Name: "Magenta"}}, "2 colorants"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, summarize(tt.data), "%T", tt.data)
	}
}
