/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"gomotion/internal/spline"
)

// ExportPNG rasterizes a plot of all channels of the curve. Axis labels use
// the basicfont face for deterministic output.
func ExportPNG(c spline.Curve, title, outPath string, opt Options) error {
	if c.ChannelCount() == 0 {
		return fmt.Errorf("curve has no channels")
	}
	opt = opt.withDefaults()
	frame := newPlotFrame(c, opt)

	img := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	axis := color.RGBA{0x44, 0x44, 0x44, 0xff}
	m := opt.Margin
	drawLine(img, m, opt.Height-m, opt.Width-m, opt.Height-m, axis)
	drawLine(img, m, m, m, opt.Height-m, axis)
	for _, t := range axisTicks(frame.xmin, frame.xmax) {
		x := int(math.Round(frame.x(t)))
		drawLine(img, x, opt.Height-m, x, opt.Height-m+4, axis)
		drawLabel(img, x-6, opt.Height-m+16, formatTick(t), axis)
	}
	for _, v := range axisTicks(frame.ymin, frame.ymax) {
		y := int(math.Round(frame.y(v)))
		drawLine(img, m-4, y, m, y, axis)
		drawLabel(img, 4, y+4, formatTick(v), axis)
	}
	if title != "" {
		drawLabel(img, m, m-10, title, color.RGBA{0, 0, 0, 0xff})
	}

	for ch := 0; ch < c.ChannelCount(); ch++ {
		sp := c.Channel(ch)
		col := channelColor(ch)
		ts, vs := samplePolyline(sp, frame.xmin, frame.xmax, opt.Samples)
		for i := 1; i < len(ts); i++ {
			x0 := int(math.Round(frame.x(ts[i-1])))
			y0 := int(math.Round(frame.y(vs[i-1])))
			x1 := int(math.Round(frame.x(ts[i])))
			y1 := int(math.Round(frame.y(vs[i])))
			drawLine(img, x0, y0, x1, y1, col)
		}
		if opt.ShowKnots {
			for i := 0; i < sp.KnotCount(); i++ {
				kx := int(math.Round(frame.x(sp.X[i])))
				ky := int(math.Round(frame.y(sp.KnotValue(i))))
				drawMarker(img, kx, ky, col)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// drawLabel renders text with the fixed basicfont face.
func drawLabel(img *image.RGBA, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawLine draws a 1px line with integer Bresenham stepping.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawMarker paints a small filled square centered on a knot.
func drawMarker(img *image.RGBA, x, y int, col color.RGBA) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			img.SetRGBA(x+dx, y+dy, col)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
