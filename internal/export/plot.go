/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders curve plots for review outside the editor: SVG for
// the web, PNG for quick previews, PDF for printable motion profile reports.
package export

import (
	"fmt"
	"image/color"
	"math"

	"gomotion/internal/spline"
)

// Options controls plot rendering. Zero values select the defaults.
type Options struct {
	Width     int  // canvas width in px/pt, default 800
	Height    int  // canvas height in px/pt, default 400
	Samples   int  // polyline samples per channel, default 256
	Margin    int  // plot margin, default 40
	ShowKnots bool // mark knot positions
	Title     string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 400
	}
	if o.Samples < 2 {
		o.Samples = 256
	}
	if o.Margin <= 0 {
		o.Margin = 40
	}
	return o
}

// channelPalette colors channels apart; reused across all three renderers.
var channelPalette = []color.RGBA{
	{R: 0xd6, G: 0x2d, B: 0x20, A: 0xff},
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

func channelColor(i int) color.RGBA {
	return channelPalette[i%len(channelPalette)]
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// plotFrame maps curve coordinates into the canvas rectangle left by the
// margins. The value axis grows upward, so y is flipped.
type plotFrame struct {
	opt        Options
	xmin, xmax float64
	ymin, ymax float64
}

func newPlotFrame(c spline.Curve, opt Options) plotFrame {
	box := c.BBox()
	f := plotFrame{opt: opt, xmin: box.XMin, xmax: box.XMax, ymin: box.YMin, ymax: box.YMax}
	// Degenerate spans render in the middle of the frame
	if f.xmax-f.xmin <= 0 {
		f.xmax = f.xmin + 1
	}
	if f.ymax-f.ymin <= 0 {
		f.ymax = f.ymin + 1
	}
	// Value headroom so extremes don't touch the frame. Control points can
	// overshoot the knot bounding box, so the pad matters.
	pad := (f.ymax - f.ymin) * 0.15
	f.ymin -= pad
	f.ymax += pad
	return f
}

func (f plotFrame) x(t float64) float64 {
	m := float64(f.opt.Margin)
	w := float64(f.opt.Width) - 2*m
	return m + (t-f.xmin)/(f.xmax-f.xmin)*w
}

func (f plotFrame) y(v float64) float64 {
	m := float64(f.opt.Margin)
	h := float64(f.opt.Height) - 2*m
	return m + (1-(v-f.ymin)/(f.ymax-f.ymin))*h
}

// axisTicks returns a handful of round tick values spanning [lo, hi].
func axisTicks(lo, hi float64) []float64 {
	span := hi - lo
	if span <= 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		return []float64{lo}
	}
	step := math.Pow(10, math.Floor(math.Log10(span)))
	for span/step > 8 {
		step *= 2
	}
	for span/step < 3 {
		step /= 2
	}
	var ticks []float64
	for t := math.Ceil(lo/step) * step; t <= hi+step/1e6; t += step {
		ticks = append(ticks, t)
	}
	return ticks
}

func formatTick(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e6 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.3g", v)
}

// samplePolyline evaluates one channel at n evenly spaced times across the
// curve domain.
func samplePolyline(sp *spline.Spline, xmin, xmax float64, n int) ([]float64, []float64) {
	ts := make([]float64, n)
	vs := make([]float64, n)
	for i := 0; i < n; i++ {
		t := xmin + (xmax-xmin)*float64(i)/float64(n-1)
		ts[i] = t
		vs[i] = sp.Eval(t)
	}
	return ts, vs
}
