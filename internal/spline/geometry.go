/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package spline

// Basic 1D-over-time geometry used by the curve model. Times run along X,
// channel values along Y. Float values use float64 because the curves are
// forwarded to motor hardware and accumulate error over long drag gestures.

// Pt is a 2D point: X is a time offset in seconds, Y a channel value.
type Pt struct{ X, Y float64 }

// BBox is an axis-aligned box given by its min and max corners.
type BBox struct {
	XMin, YMin float64
	XMax, YMax float64
}

func B(xmin, ymin, xmax, ymax float64) BBox {
	return BBox{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax}
}

func (b BBox) Contains(p Pt) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// Union returns the minimal box containing both.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		XMin: minf(b.XMin, o.XMin),
		YMin: minf(b.YMin, o.YMin),
		XMax: maxf(b.XMax, o.XMax),
		YMax: maxf(b.YMax, o.YMax),
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
