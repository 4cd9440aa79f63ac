/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package spline implements the piecewise-polynomial curve model of the
// motion editor. A Spline is a single output channel; a Curve bundles one
// Spline per motor. All editing operations work on value copies so that
// history snapshots are never mutated in place.
package spline

import (
	"errors"
	"fmt"
	"sort"
)

// Editing errors. Invariant violations leave the spline untouched; the
// caller decides whether to surface them or ignore the edit.
var (
	ErrLastSegment   = errors.New("spline: cannot remove knot of a single-segment spline")
	ErrDuplicateKnot = errors.New("spline: knot time already present")
)

// MaxDegree is the highest supported polynomial degree.
const MaxDegree = 3

// knotEps keeps a repositioned knot strictly between its neighbors.
const knotEps = 1e-9

// Spline is a piecewise polynomial in Bernstein form.
//
// X holds the knot times, strictly increasing, one more entry than there are
// segments. Coef is indexed [power][segment]: row 0 carries the left knot
// value of each segment, rows 1..Degree-1 the interior control values, and
// row Degree duplicates the right knot value (which equals row 0 of the next
// segment). Segment i spans [X[i], X[i+1]).
type Spline struct {
	Degree int
	X      []float64
	Coef   [][]float64
}

// Line returns a degree-3 spline whose control values sit on the straight
// chords between the given knot values. knots must be strictly increasing
// and values must have the same length.
func Line(knots, values []float64) Spline {
	if len(knots) < 2 || len(knots) != len(values) {
		panic(fmt.Sprintf("spline: bad knot/value lengths %d/%d", len(knots), len(values)))
	}
	n := len(knots) - 1
	s := Spline{Degree: MaxDegree, X: append([]float64(nil), knots...)}
	s.Coef = make([][]float64, s.Degree+1)
	for k := range s.Coef {
		s.Coef[k] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for k := 0; k <= s.Degree; k++ {
			t := float64(k) / float64(s.Degree)
			s.Coef[k][i] = values[i]*(1-t) + values[i+1]*t
		}
	}
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

// SegmentCount returns the number of polynomial segments. Always >= 1 for a
// valid spline.
func (s Spline) SegmentCount() int { return len(s.X) - 1 }

// KnotCount returns the number of knots (segments + 1).
func (s Spline) KnotCount() int { return len(s.X) }

// Start and End delimit the time domain.
func (s Spline) Start() float64 { return s.X[0] }
func (s Spline) End() float64   { return s.X[len(s.X)-1] }

// Duration is the span of the time domain.
func (s Spline) Duration() float64 { return s.End() - s.Start() }

// Validate checks the structural invariants: supported degree, strictly
// increasing knots, at least one segment and rectangular coefficient rows.
func (s Spline) Validate() error {
	if s.Degree < 1 || s.Degree > MaxDegree {
		return fmt.Errorf("spline: unsupported degree %d", s.Degree)
	}
	if len(s.X) < 2 {
		return fmt.Errorf("spline: need at least one segment, got %d knots", len(s.X))
	}
	for i := 1; i < len(s.X); i++ {
		if s.X[i] <= s.X[i-1] {
			return fmt.Errorf("spline: knots not strictly increasing at index %d", i)
		}
	}
	if len(s.Coef) != s.Degree+1 {
		return fmt.Errorf("spline: want %d coefficient rows, got %d", s.Degree+1, len(s.Coef))
	}
	n := s.SegmentCount()
	for k, row := range s.Coef {
		if len(row) != n {
			return fmt.Errorf("spline: coefficient row %d has %d columns, want %d", k, len(row), n)
		}
	}
	return nil
}

// Copy returns a deep value copy sharing no arrays with the original.
func (s Spline) Copy() Spline {
	c := Spline{Degree: s.Degree, X: append([]float64(nil), s.X...)}
	c.Coef = make([][]float64, len(s.Coef))
	for k, row := range s.Coef {
		c.Coef[k] = append([]float64(nil), row...)
	}
	return c
}

// segmentFor locates the segment containing time t, clamping t into the
// domain. The last segment is closed on the right.
func (s Spline) segmentFor(t float64) (int, float64) {
	t = clampf(t, s.Start(), s.End())
	// index of the first knot > t, minus one
	i := sort.SearchFloat64s(s.X, t)
	if i < len(s.X) && s.X[i] == t {
		// exact knot hit: evaluate the segment starting here, except at the end
		if i == len(s.X)-1 {
			i--
		}
	} else {
		i--
	}
	if i < 0 {
		i = 0
	}
	return i, t
}

// Eval evaluates the spline at time t using de Casteljau's algorithm.
// Times outside the domain evaluate to the boundary values.
func (s Spline) Eval(t float64) float64 {
	i, t := s.segmentFor(t)
	u := (t - s.X[i]) / (s.X[i+1] - s.X[i])
	return deCasteljau(s.column(i), u)
}

// column copies the Bernstein control values of segment i.
func (s Spline) column(i int) []float64 {
	col := make([]float64, s.Degree+1)
	for k := range col {
		col[k] = s.Coef[k][i]
	}
	return col
}

// deCasteljau evaluates Bernstein control values at parameter u in [0, 1].
// It mutates col.
func deCasteljau(col []float64, u float64) float64 {
	for m := len(col) - 1; m > 0; m-- {
		for k := 0; k < m; k++ {
			col[k] = col[k]*(1-u) + col[k+1]*u
		}
	}
	return col[0]
}

// KnotValue returns the channel value at knot i.
func (s Spline) KnotValue(i int) float64 {
	s.checkKnot(i)
	if i == s.SegmentCount() {
		return s.Coef[s.Degree][i-1]
	}
	return s.Coef[0][i]
}

// Point returns the 2D position of the coefficient at (segment, power). For
// interior control points the time coordinate is interpolated between the
// segment's bounding knot times in proportion power/Degree.
func (s Spline) Point(segment, power int) Pt {
	s.checkSegment(segment)
	s.checkPower(power)
	f := float64(power) / float64(s.Degree)
	x := s.X[segment] + (s.X[segment+1]-s.X[segment])*f
	return Pt{X: x, Y: s.Coef[power][segment]}
}

// BBox returns the box enclosing the knot values (control values excluded);
// it is what viewports are sized from.
func (s Spline) BBox() BBox {
	b := BBox{XMin: s.Start(), XMax: s.End(), YMin: s.KnotValue(0), YMax: s.KnotValue(0)}
	for i := 1; i < s.KnotCount(); i++ {
		v := s.KnotValue(i)
		b.YMin = minf(b.YMin, v)
		b.YMax = maxf(b.YMax, v)
	}
	return b
}

// RestrictToBBox clamps every coefficient value into [b.YMin, b.YMax] and
// every knot time into [b.XMin, b.XMax], in place. Used to enforce
// externally supplied motion limits after an edit.
func (s *Spline) RestrictToBBox(b BBox) {
	for i := range s.X {
		s.X[i] = clampf(s.X[i], b.XMin, b.XMax)
	}
	for _, row := range s.Coef {
		for i := range row {
			row[i] = clampf(row[i], b.YMin, b.YMax)
		}
	}
}

// Scale multiplies all channel values by factor.
func (s *Spline) Scale(factor float64) {
	for _, row := range s.Coef {
		for i := range row {
			row[i] *= factor
		}
	}
}

// Stretch multiplies all knot times by factor. factor must be positive.
func (s *Spline) Stretch(factor float64) {
	if factor <= 0 {
		panic(fmt.Sprintf("spline: stretch factor %v not positive", factor))
	}
	for i := range s.X {
		s.X[i] *= factor
	}
}

// Shift translates all knot times by offset, clamped so the first knot
// never moves left of time zero.
func (s *Spline) Shift(offset float64) {
	offset = maxf(offset, -s.X[0])
	for i := range s.X {
		s.X[i] += offset
	}
}

func (s Spline) checkSegment(i int) {
	if i < 0 || i >= s.SegmentCount() {
		panic(fmt.Sprintf("spline: segment %d out of range [0,%d)", i, s.SegmentCount()))
	}
}

func (s Spline) checkKnot(i int) {
	if i < 0 || i >= s.KnotCount() {
		panic(fmt.Sprintf("spline: knot %d out of range [0,%d)", i, s.KnotCount()))
	}
}

func (s Spline) checkPower(k int) {
	if k < 0 || k > s.Degree {
		panic(fmt.Sprintf("spline: power %d out of range [0,%d]", k, s.Degree))
	}
}
