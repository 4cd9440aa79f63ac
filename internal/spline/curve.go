/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package spline

import "fmt"

// Curve is an ordered list of splines, one per output channel. Channels are
// edited independently, but a curve sent to playback shares a common time
// domain spanning the union of the channel spans.
type Curve struct {
	Splines []Spline
}

// NewCurve bundles the given channels into a curve.
func NewCurve(channels ...Spline) Curve {
	return Curve{Splines: channels}
}

// ChannelCount returns the number of output channels.
func (c Curve) ChannelCount() int { return len(c.Splines) }

// Channel returns the spline of the given channel; the index must be valid.
func (c Curve) Channel(i int) *Spline {
	if i < 0 || i >= len(c.Splines) {
		panic(fmt.Sprintf("curve: channel %d out of range [0,%d)", i, len(c.Splines)))
	}
	return &c.Splines[i]
}

// Start returns the earliest knot time over all channels.
func (c Curve) Start() float64 {
	if len(c.Splines) == 0 {
		return 0
	}
	start := c.Splines[0].Start()
	for _, s := range c.Splines[1:] {
		start = minf(start, s.Start())
	}
	return start
}

// End returns the latest knot time over all channels.
func (c Curve) End() float64 {
	var end float64
	for _, s := range c.Splines {
		end = maxf(end, s.End())
	}
	return end
}

// Duration is the playback duration of the curve.
func (c Curve) Duration() float64 { return c.End() }

// BBox returns the union box over all channels.
func (c Curve) BBox() BBox {
	if len(c.Splines) == 0 {
		return BBox{}
	}
	b := c.Splines[0].BBox()
	for _, s := range c.Splines[1:] {
		b = b.Union(s.BBox())
	}
	return b
}

// Copy returns a deep value copy of the curve.
func (c Curve) Copy() Curve {
	out := Curve{Splines: make([]Spline, len(c.Splines))}
	for i, s := range c.Splines {
		out.Splines[i] = s.Copy()
	}
	return out
}

// Sample evaluates every channel at time t.
func (c Curve) Sample(t float64) []float64 {
	values := make([]float64, len(c.Splines))
	for i, s := range c.Splines {
		values[i] = s.Eval(t)
	}
	return values
}

// RestrictToBBox clamps every channel into the box, in place.
func (c *Curve) RestrictToBBox(b BBox) {
	for i := range c.Splines {
		c.Splines[i].RestrictToBBox(b)
	}
}
