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

// Decoded trace and per-channel statistics.
package keyoscacquire

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type Trace struct {
	// n (#samples) by 1.
	Time *mat.VecDense
	// Voltages in an n (#samples) by m (#channels) matrix.
	//  _                _
	// | |     |       |  |
	// | Ch1   Ch2 ..  Chm |
	// | |     |       |  |
	// |_                _|
	//
	// Column order follows Channels.
	Values     *mat.Dense
	Channels   []int
	Identity   string
	CapturedAt time.Time
}

func (t *Trace) NumSamples() int {
	if t.Time == nil {
		return 0
	}
	return t.Time.Len()
}

// Voltages of the i-th captured channel (not channel number).
func (t *Trace) Column(i int) []float64 {
	return mat.Col(nil, i, t.Values)
}

type ChannelStats struct {
	Channel int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
	// Peak to peak.
	PkPk float64
}

func (t *Trace) ChannelStats() []ChannelStats {
	res := make([]ChannelStats, len(t.Channels))
	for i, ch := range t.Channels {
		col := t.Column(i)
		s := ChannelStats{Channel: ch, Min: math.NaN(), Max: math.NaN()}
		if len(col) > 0 {
			s.Mean, s.StdDev = stat.MeanStdDev(col, nil)
			s.Min, s.Max = floats.Min(col), floats.Max(col)
			s.PkPk = s.Max - s.Min
		}
		res[i] = s
	}
	return res
}
