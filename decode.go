// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Converts raw waveform transfers into time and voltage matrices.
package keyoscacquire

import (
	"math"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/mat"
)

const preambleFields = 10

// Scaling metadata returned by :WAVeform:PREamble?.
type Preamble struct {
	Format  int
	Type    int
	Points  int
	Count   int
	XInc    float64
	XOrigin float64
	XRef    float64
	YInc    float64
	YOrigin float64
	YRef    float64
}

// Parses the ten comma separated preamble fields. Any other shape is an error.
func ParsePreamble(s string) (Preamble, error) {
	var p Preamble
	fields := strings.Split(strings.TrimSpace(s), ",")
	if len(fields) != preambleFields {
		return p, decodeErrorf("preamble has %d fields, expected %d: '%s'",
			len(fields), preambleFields, s)
	}
	vals := make([]float64, preambleFields)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return p, decodeErrorf("preamble field %d is not a number: '%s'", i, f)
		}
		vals[i] = v
	}
	for _, i := range []int{0, 1, 2, 3} {
		if vals[i] < 0 || vals[i] != math.Trunc(vals[i]) {
			return p, decodeErrorf("preamble field %d must be a non-negative integer, got %v", i, vals[i])
		}
	}
	p.Format, p.Type, p.Points, p.Count = int(vals[0]), int(vals[1]), int(vals[2]), int(vals[3])
	p.XInc, p.XOrigin, p.XRef = vals[4], vals[5], vals[6]
	p.YInc, p.YOrigin, p.YRef = vals[7], vals[8], vals[9]
	return p, nil
}

// Time of sample i.
func (p Preamble) Time(i int) float64 {
	return (float64(i)-p.XRef)*p.XInc + p.XOrigin
}

// Voltage of a raw binary sample.
func (p Preamble) Voltage(raw float64) float64 {
	return (raw-p.YRef)*p.YInc + p.YOrigin
}

// Decodes binary captures. The time axis is taken from the first preamble;
// voltage scaling is per channel. Columns follow the order of raw.
func DecodeBinary(raw [][]float64, preambles []string) (*mat.VecDense, *mat.Dense, error) {
	if len(raw) == 0 {
		return nil, nil, decodeErrorf("no channels to decode")
	}
	if len(raw) != len(preambles) {
		return nil, nil, decodeErrorf("%d sample blocks but %d preambles", len(raw), len(preambles))
	}
	pre := make([]Preamble, len(preambles))
	for i, s := range preambles {
		var err error
		if pre[i], err = ParsePreamble(s); err != nil {
			return nil, nil, err
		}
	}
	n := pre[0].Points
	if n == 0 {
		return nil, nil, decodeErrorf("preamble reports zero points")
	}
	for ch, samples := range raw {
		if len(samples) != n {
			return nil, nil, decodeErrorf("channel %d has %d samples, preamble reports %d",
				ch, len(samples), n)
		}
		if pre[ch].Points != n {
			return nil, nil, decodeErrorf("channel %d preamble reports %d points, expected %d",
				ch, pre[ch].Points, n)
		}
	}
	glog.V(1).Infof("Points captured per channel: %d", n)

	t := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		t.SetVec(i, pre[0].Time(i))
	}
	y := mat.NewDense(n, len(raw), nil)
	for ch, samples := range raw {
		for i, s := range samples {
			y.Set(i, ch, pre[ch].Voltage(s))
		}
	}
	return t, y, nil
}

// Removes the instrument-family specific framing around an ASCII block.
func StripAsciiBlock(data string, quirks SeriesQuirks) (string, error) {
	switch quirks.AsciiStrip {
	case AsciiStripLeading:
		if len(data) < quirks.AsciiLeadingBytes {
			return "", decodeErrorf("ASCII block shorter than its %d byte header", quirks.AsciiLeadingBytes)
		}
		data = data[quirks.AsciiLeadingBytes:]
	case AsciiStripTrailing:
		data = strings.TrimSpace(data)
		data = strings.Trim(data, ",")
	default:
		data = strings.TrimSpace(data)
		if strings.HasPrefix(data, "#") {
			if len(data) < 2 || data[1] < '0' || data[1] > '9' {
				return "", decodeErrorf("bad ASCII block header '%.10s'", data)
			}
			skip := 2 + int(data[1]-'0')
			if len(data) < skip {
				return "", decodeErrorf("truncated ASCII block header '%s'", data)
			}
			data = data[skip:]
		}
	}
	return strings.TrimSpace(data), nil
}

// Parses the comma separated values of one ASCII channel.
func parseAsciiSamples(data string) ([]float64, error) {
	fields := strings.Split(data, ",")
	samples := make([]float64, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, decodeErrorf("ASCII sample %d is not a number: '%s'", i, f)
		}
		samples = append(samples, v)
	}
	return samples, nil
}

// Decodes ASCII captures. Values arrive already scaled; the time axis is
// spread linearly over [0, duration] rather than computed from the preamble.
func DecodeAscii(raw []string, preamble string, duration float64, quirks SeriesQuirks) (*mat.VecDense, *mat.Dense, error) {
	if len(raw) == 0 {
		return nil, nil, decodeErrorf("no channels to decode")
	}
	if _, err := ParsePreamble(preamble); err != nil {
		return nil, nil, err
	}
	cols := make([][]float64, len(raw))
	for ch, block := range raw {
		data, err := StripAsciiBlock(block, quirks)
		if err != nil {
			return nil, nil, err
		}
		if cols[ch], err = parseAsciiSamples(data); err != nil {
			return nil, nil, err
		}
		if len(cols[ch]) != len(cols[0]) {
			return nil, nil, decodeErrorf("channel %d has %d samples, channel 0 has %d",
				ch, len(cols[ch]), len(cols[0]))
		}
	}
	n := len(cols[0])
	glog.V(1).Infof("Points captured per channel: %d", n)

	t := mat.NewVecDense(n, Linspace(0, duration, n))
	y := mat.NewDense(n, len(cols), nil)
	for ch, samples := range cols {
		y.SetCol(ch, samples)
	}
	return t, y, nil
}

// n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	v := make([]float64, n)
	if n == 0 {
		return v
	}
	if n == 1 {
		v[0] = start
		return v
	}
	step := (stop - start) / float64(n-1)
	for i := range v {
		v[i] = start + float64(i)*step
	}
	v[n-1] = stop
	return v
}

// Decodes the output of a capture according to its format.
func Decode(raw *RawCapture, quirks SeriesQuirks) (*mat.VecDense, *mat.Dense, error) {
	switch {
	case raw.Format.Binary():
		return DecodeBinary(raw.Binary, raw.Preambles)
	case raw.Format == FormatAscii:
		if len(raw.Preambles) != 1 {
			return nil, nil, decodeErrorf("ASCII capture expects one shared preamble, got %d",
				len(raw.Preambles))
		}
		return DecodeAscii(raw.Ascii, raw.Preambles[0], raw.Duration, quirks)
	}
	return nil, nil, validationErrorf("waveform format", raw.Format, "unknown")
}
