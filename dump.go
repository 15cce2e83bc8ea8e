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
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// Dump writes a human-readable description of the profile to w.
//
// Verbosity 0 prints the header, verbosity 1 adds the tag directory, and
// verbosity 2 or more adds a summary of every decoded tag.
func (p *Profile) Dump(w io.Writer, verbosity int) error {
	d := &dumper{w: w}

	d.printf("Version: %s\n", p.Version)
	d.printf("Class: %s\n", p.Class)
	d.printf("ColorSpace: %s\n", p.ColorSpace)
	d.printf("PCS: %s\n", p.PCS)
	if !p.CreationDate.IsZero() {
		d.printf("CreationDate: %s\n", p.CreationDate.Format("2006-01-02 15:04:05"))
	}
	if !p.MagicValid() {
		d.printf("Magic: %q (invalid)\n", p.Magic)
	}
	if p.PreferredCMMType != 0 {
		d.printf("PreferredCMMType: %s\n", sigString(p.PreferredCMMType))
	}
	if p.DeviceManufacturer != 0 {
		d.printf("DeviceManufacturer: %s\n", sigString(p.DeviceManufacturer))
	}
	if p.DeviceModel != 0 {
		d.printf("DeviceModel: %s\n", sigString(p.DeviceModel))
	}
	if p.Flags != 0 {
		d.printf("Flags: %08X\n", p.Flags)
	}
	d.printf("RenderingIntent: %s\n", p.RenderingIntent)
	wp := p.Illuminant.Float64()
	d.printf("Illuminant: %.4f %.4f %.4f\n", wp[0], wp[1], wp[2])
	if p.Creator != 0 {
		d.printf("Creator: %s\n", sigString(p.Creator))
	}
	if p.CheckSum != CheckSumMissing {
		d.printf("CheckSum: %s\n", p.CheckSum)
	}

	if verbosity >= 1 {
		d.printf("\nTags:\n")
		for _, e := range p.Directory {
			d.printf("  %s  offset %d, %d bytes\n", e.Signature.Signature(), e.Offset, e.Length)
		}
	}

	if verbosity >= 2 {
		d.printf("\n")
		tags := maps.Keys(p.Tags)
		slices.Sort(tags)
		for _, t := range tags {
			data := p.Tags[t]
			d.printf("%s [%s]: %s\n", t.Signature(), data.TypeSignature(), summarize(data))
		}
	}
	return d.err
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

// summarize returns a one-line description of tag data.
func summarize(data TagData) string {
	switch d := data.(type) {
	case *Text:
		return fmt.Sprintf("%q", d.Value)
	case MultiLocalizedUnicode:
		parts := make([]string, len(d))
		for i, lu := range d {
			parts[i] = fmt.Sprintf("[%s_%s] %q", lu.Language, lu.Country, lu.Value)
		}
		return strings.Join(parts, ", ")
	case *Descriptor:
		return fmt.Sprintf("%q", d.ASCII)
	case XYZArray:
		parts := make([]string, len(d))
		for i, v := range d {
			f := v.Float64()
			parts[i] = fmt.Sprintf("(%.4f %.4f %.4f)", f[0], f[1], f[2])
		}
		return strings.Join(parts, " ")
	case *Curve:
		switch {
		case d.Table != nil:
			return fmt.Sprintf("sampled curve, %d entries", len(d.Table))
		case d.Params != nil:
			return fmt.Sprintf("parametric curve, type %d", d.FuncType)
		default:
			return fmt.Sprintf("gamma %.4f", d.Gamma)
		}
	case *Lut8:
		return fmt.Sprintf("%d→%d channels, %d grid points", d.Inputs, d.Outputs, d.GridPoints)
	case *Lut16:
		return fmt.Sprintf("%d→%d channels, %d grid points, %d/%d table entries",
			d.Inputs, d.Outputs, d.GridPoints, d.InputEntries, d.OutputEntries)
	case *LutAToB:
		return fmt.Sprintf("%d→%d channels", d.Inputs, d.Outputs)
	case *LutBToA:
		return fmt.Sprintf("%d→%d channels", d.Inputs, d.Outputs)
	case ProfileSequence:
		return fmt.Sprintf("%d profiles", len(d))
	case *NamedColor2:
		return fmt.Sprintf("%d named colours", len(d.Colors))
	case ColorantTable:
		return fmt.Sprintf("%d colorants", len(d))
	case *MultiProcessElements:
		return fmt.Sprintf("%d→%d channels, %d elements", d.Inputs, d.Outputs, len(d.Elements))
	case *Raw:
		return fmt.Sprintf("%d bytes", len(d.Data))
	default:
		return fmt.Sprintf("%v", d)
	}
}
