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
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"gomotion/internal/spline"
)

// ExportPDF writes a motion profile report: a plot of all channels plus a
// knot table per channel. Built-in Helvetica keeps text vector without
// embedding fonts.
func ExportPDF(c spline.Curve, title, outPath string, opt Options) error {
	if c.ChannelCount() == 0 {
		return fmt.Errorf("curve has no channels")
	}
	opt = opt.withDefaults()
	frame := newPlotFrame(c, opt)

	mediaW := float64(opt.Width)
	mediaH := float64(opt.Height)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: mediaW, Ht: mediaH},
		OrientationStr: "",
	})
	pdf.SetTitle(fmt.Sprintf("%s — motion profile", title), false)
	pdf.SetAuthor("GoMotion", false)
	pdf.SetFont("Helvetica", "", 12)

	// Page 1: plot
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: mediaW, Ht: mediaH})
	m := float64(opt.Margin)
	pdf.SetDrawColor(0x44, 0x44, 0x44)
	pdf.SetLineWidth(1)
	pdf.Line(m, mediaH-m, mediaW-m, mediaH-m)
	pdf.Line(m, m, m, mediaH-m)
	pdf.SetFont("Helvetica", "", 8)
	for _, t := range axisTicks(frame.xmin, frame.xmax) {
		x := frame.x(t)
		pdf.Line(x, mediaH-m, x, mediaH-m+4)
		pdf.Text(x-6, mediaH-m+14, formatTick(t))
	}
	for _, v := range axisTicks(frame.ymin, frame.ymax) {
		y := frame.y(v)
		pdf.Line(m-4, y, m, y)
		pdf.Text(8, y+3, formatTick(v))
	}
	if title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Text(m, m-8, title)
	}

	pdf.SetLineWidth(1.5)
	for ch := 0; ch < c.ChannelCount(); ch++ {
		sp := c.Channel(ch)
		col := channelColor(ch)
		pdf.SetDrawColor(int(col.R), int(col.G), int(col.B))
		ts, vs := samplePolyline(sp, frame.xmin, frame.xmax, opt.Samples)
		for i := 1; i < len(ts); i++ {
			pdf.Line(frame.x(ts[i-1]), frame.y(vs[i-1]), frame.x(ts[i]), frame.y(vs[i]))
		}
		if opt.ShowKnots {
			for i := 0; i < sp.KnotCount(); i++ {
				pdf.Circle(frame.x(sp.X[i]), frame.y(sp.KnotValue(i)), 3, "D")
			}
		}
	}

	// Page 2: knot tables
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: mediaW, Ht: mediaH})
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(m, m, "Knots")
	y := m + 20
	for ch := 0; ch < c.ChannelCount(); ch++ {
		sp := c.Channel(ch)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(m, y, fmt.Sprintf("channel %d (degree %d, %d segments)", ch, sp.Degree, sp.SegmentCount()))
		y += 14
		pdf.SetFont("Helvetica", "", 9)
		for i := 0; i < sp.KnotCount(); i++ {
			pdf.Text(m+10, y, fmt.Sprintf("t=%s  value=%s", formatTick(sp.X[i]), formatTick(sp.KnotValue(i))))
			y += 12
			if y > mediaH-m {
				pdf.AddPageFormat("", gofpdf.SizeType{Wd: mediaW, Ht: mediaH})
				y = m
			}
		}
		y += 8
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := pdf.Output(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}
