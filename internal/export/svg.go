/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gomotion/internal/spline"
)

// ExportSVG writes a single-file SVG plot of all channels of the curve.
func ExportSVG(c spline.Curve, title, outPath string, opt Options) error {
	if c.ChannelCount() == 0 {
		return fmt.Errorf("curve has no channels")
	}
	opt = opt.withDefaults()
	frame := newPlotFrame(c, opt)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n", opt.Width, opt.Height, opt.Width, opt.Height)
	wf("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" fill=\"#ffffff\"/>\n", opt.Width, opt.Height)

	// Axes and ticks
	m := float64(opt.Margin)
	wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"#444\" stroke-width=\"1\"/>\n", m, float64(opt.Height)-m, float64(opt.Width)-m, float64(opt.Height)-m)
	wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"#444\" stroke-width=\"1\"/>\n", m, m, m, float64(opt.Height)-m)
	for _, t := range axisTicks(frame.xmin, frame.xmax) {
		x := frame.x(t)
		wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"#444\" stroke-width=\"1\"/>\n", x, float64(opt.Height)-m, x, float64(opt.Height)-m+4)
		wf("  <text x=\"%g\" y=\"%g\" font-family=\"sans-serif\" font-size=\"10\" text-anchor=\"middle\" fill=\"#444\">%s</text>\n", x, float64(opt.Height)-m+16, formatTick(t))
	}
	for _, v := range axisTicks(frame.ymin, frame.ymax) {
		y := frame.y(v)
		wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"#444\" stroke-width=\"1\"/>\n", m-4, y, m, y)
		wf("  <text x=\"%g\" y=\"%g\" font-family=\"sans-serif\" font-size=\"10\" text-anchor=\"end\" fill=\"#444\">%s</text>\n", m-6, y+3, formatTick(v))
	}
	if title != "" {
		wf("  <text x=\"%g\" y=\"%g\" font-family=\"sans-serif\" font-size=\"14\" fill=\"#000\">%s</text>\n", m, m-10, escText(title))
	}

	// Channel polylines
	for ch := 0; ch < c.ChannelCount(); ch++ {
		sp := c.Channel(ch)
		col := hexColor(channelColor(ch))
		ts, vs := samplePolyline(sp, frame.xmin, frame.xmax, opt.Samples)
		wf("  <polyline fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" points=\"", col)
		for i := range ts {
			if i > 0 {
				wf(" ")
			}
			wf("%.2f,%.2f", frame.x(ts[i]), frame.y(vs[i]))
		}
		wf("\"/>\n")

		if opt.ShowKnots {
			for i := 0; i < sp.KnotCount(); i++ {
				kx := frame.x(sp.X[i])
				ky := frame.y(sp.KnotValue(i))
				wf("  <circle cx=\"%g\" cy=\"%g\" r=\"3\" fill=\"#ffffff\" stroke=\"%s\" stroke-width=\"1.5\"/>\n", kx, ky, col)
			}
		}
	}

	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
