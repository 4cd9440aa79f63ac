/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gomotion/internal/spline"
)

func sampleCurve() spline.Curve {
	return spline.NewCurve(
		spline.Line([]float64{0, 1, 2, 3}, []float64{0, 1, -1, 0}),
		spline.Line([]float64{0, 3}, []float64{0.5, 0.5}),
	)
}

func TestExportSVG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plots", "wave.svg")
	if err := ExportSVG(sampleCurve(), "wave & ramp", out, Options{ShowKnots: true}); err != nil {
		t.Fatalf("export svg: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "<svg") || !strings.Contains(s, "<polyline") {
		t.Fatalf("svg missing plot elements")
	}
	if !strings.Contains(s, "<circle") {
		t.Fatalf("knot markers missing")
	}
	if !strings.Contains(s, "wave &amp; ramp") {
		t.Fatalf("title not escaped")
	}
	if strings.Count(s, "<polyline") != 2 {
		t.Fatalf("want one polyline per channel")
	}
}

func TestExportPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wave.png")
	if err := ExportPNG(sampleCurve(), "wave", out, Options{Width: 320, Height: 200, ShowKnots: true}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 200 {
		t.Fatalf("size = %v", img.Bounds())
	}
}

func TestExportPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wave.pdf")
	if err := ExportPDF(sampleCurve(), "wave", out, Options{}); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() <= 0 {
		t.Fatalf("pdf empty")
	}
}

func TestExportRejectsEmptyCurve(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x.svg")
	if err := ExportSVG(spline.Curve{}, "", out, Options{}); err == nil {
		t.Fatalf("empty curve exported")
	}
}
