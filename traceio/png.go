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

package traceio

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/asvela/keyoscacquire"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	plotWidth  = 960
	plotHeight = 540
	plotMargin = 40
)

// Screen colours of the InfiniiVision channels.
var channelColours = map[int]color.RGBA{
	1: {0xe6, 0xc2, 0x00, 0xff},
	2: {0x00, 0xa6, 0x50, 0xff},
	3: {0x1f, 0x77, 0xd4, 0xff},
	4: {0xd6, 0x27, 0x28, 0xff},
}

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	axisColour = color.RGBA{0x40, 0x40, 0x40, 0xff}
	otherTrace = color.RGBA{0x70, 0x70, 0x70, 0xff}
)

func colourFor(channel int) color.RGBA {
	if c, ok := channelColours[channel]; ok {
		return c
	}
	return otherTrace
}

// Renders the trace as a line plot with one line per channel.
func Plot(trace *keyoscacquire.Trace) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, plotWidth, plotHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	x0, y0 := plotMargin, plotHeight-plotMargin
	x1, y1 := plotWidth-plotMargin, plotMargin
	line(img, x0, y0, x1, y0, axisColour)
	line(img, x0, y0, x0, y1, axisColour)

	n := trace.NumSamples()
	if n == 0 {
		return img
	}
	times := mat.Col(nil, 0, trace.Time)
	tMin, tMax := floats.Min(times), floats.Max(times)
	var vMin, vMax float64
	for j := range trace.Channels {
		col := trace.Column(j)
		if j == 0 || floats.Min(col) < vMin {
			vMin = floats.Min(col)
		}
		if j == 0 || floats.Max(col) > vMax {
			vMax = floats.Max(col)
		}
	}
	if tMax == tMin {
		tMax = tMin + 1
	}
	if vMax == vMin {
		vMax, vMin = vMax+1, vMin-1
	}
	px := func(t float64) int { return x0 + int(float64(x1-x0)*(t-tMin)/(tMax-tMin)) }
	py := func(v float64) int { return y0 - int(float64(y0-y1)*(v-vMin)/(vMax-vMin)) }

	for j, ch := range trace.Channels {
		c := colourFor(ch)
		col := trace.Column(j)
		for i := 1; i < n; i++ {
			line(img, px(times[i-1]), py(col[i-1]), px(times[i]), py(col[i]), c)
		}
		label(img, x0+10+60*j, y1-12, fmt.Sprintf("CH%d", ch), c)
	}
	label(img, x0, plotHeight-12, fmt.Sprintf("t: %.4g s .. %.4g s", tMin, tMax), axisColour)
	label(img, x1-200, plotHeight-12, fmt.Sprintf("V: %.4g .. %.4g", vMin, vMax), axisColour)
	return img
}

func WritePNG(w io.Writer, trace *keyoscacquire.Trace) error {
	return png.Encode(w, Plot(trace))
}

func SavePNG(name string, trace *keyoscacquire.Trace) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("Error creating png file: %v", err)
	}
	defer f.Close()
	return WritePNG(f, trace)
}

func label(img draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// Bresenham.
func line(img draw.Image, x0, y0, x1, y1 int, c color.Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
