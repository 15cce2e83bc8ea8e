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
	"math"
	"runtime"
	"sync"

	"golang.org/x/exp/constraints"
)

// minChunk is the smallest number of samples handed to one goroutine.
const minChunk = 4096

// ConvertEntries evaluates a [*Lut8] or [*Lut16] for count samples packed
// into buf, InputChannels() bytes per sample.  The result holds
// OutputChannels() values per sample, in the native range of the output
// table.
//
// If buf is shorter than count*InputChannels() bytes, an error wrapping
// [ErrDataShortage] is returned before any sample is converted.
func ConvertEntries[F constraints.Float](buf []byte, count int, lut Lut) ([]F, error) {
	return ConvertEntriesMode[F](buf, count, lut, TwoCorner)
}

// ConvertEntriesMode is like [ConvertEntries], but uses the given
// interpolation mode.
func ConvertEntriesMode[F constraints.Float](buf []byte, count int, lut Lut, mode InterpolationMode) ([]F, error) {
	in, out := lut.InputChannels(), lut.OutputChannels()
	if err := checkEntries(buf, count, in); err != nil {
		return nil, err
	}

	res := make([]F, count*out)
	switch l := lut.(type) {
	case *Lut8:
		v, err := l.view()
		if err != nil {
			return nil, err
		}
		parallel(count, func(start, end int) {
			for i := start; i < end; i++ {
				evaluate(v, buf[i*in:(i+1)*in], mode, res[i*out:(i+1)*out])
			}
		})
	case *Lut16:
		v, err := l.view()
		if err != nil {
			return nil, err
		}
		parallel(count, func(start, end int) {
			for i := start; i < end; i++ {
				evaluate(v, buf[i*in:(i+1)*in], mode, res[i*out:(i+1)*out])
			}
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTagType, lut.TypeSignature())
	}
	return res, nil
}

// ConvertEntries8 is like [ConvertEntries], but scales the results to
// bytes.  Values from 16-bit tables are mapped from 0-65535 to 0-255 with
// rounding.
func ConvertEntries8(buf []byte, count int, lut Lut) ([]byte, error) {
	vals, err := ConvertEntries[float64](buf, count, lut)
	if err != nil {
		return nil, err
	}
	scale := 1.0
	if _, wide := lut.(*Lut16); wide {
		scale = 255.0 / 65535.0
	}
	res := make([]byte, len(vals))
	for i, v := range vals {
		res[i] = uint8(math.Min(math.Max(v*scale+0.5, 0), 255))
	}
	return res, nil
}

// parallel calls fn on disjoint sub-ranges of [0, n), using several
// goroutines for large n.
func parallel(n int, fn func(start, end int)) {
	workers := min(runtime.GOMAXPROCS(0), (n+minChunk-1)/minChunk)
	if workers <= 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(start, end)
		}()
	}
	wg.Wait()
}

// checkEntries verifies that buf holds count samples of the given number of
// channels.
func checkEntries(buf []byte, count, channels int) error {
	if count < 0 {
		return fmt.Errorf("icclut: negative sample count %d", count)
	}
	if channels <= 0 {
		return errInvalidTagData
	}
	if count > len(buf)/channels {
		size := math.MaxInt
		if count <= math.MaxInt/channels {
			size = count * channels
		}
		return dataShortage(0, size, len(buf))
	}
	return nil
}
