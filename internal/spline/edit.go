/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package spline

// Structural edits and the continuity-preserving positioning operations.
// The positioning operations are O(1) per drag step: a vertical move plus at
// most one mirrored neighbor update, instead of a global spline re-fit.

import (
	"fmt"
	"sort"
)

// InsertKnot adds a knot at p.X. Inside the domain the affected segment is
// split with de Casteljau subdivision, so the curve shape is preserved and
// the new knot value is the evaluated value at p.X. Outside the domain the
// spline is extended with a straight segment ending at value p.Y. A knot
// time already present is refused with ErrDuplicateKnot.
func (s *Spline) InsertKnot(p Pt) error {
	// insertion index: after any equal values
	idx := sort.Search(len(s.X), func(i int) bool { return s.X[i] > p.X })
	if idx > 0 && s.X[idx-1] == p.X {
		return ErrDuplicateKnot
	}
	switch {
	case idx == 0:
		s.extend(0, p)
	case idx == len(s.X):
		s.extend(s.SegmentCount(), p)
	default:
		s.subdivide(idx-1, p.X)
	}
	return nil
}

// extend prepends (seg == 0) or appends (seg == SegmentCount()) a straight
// segment between the boundary knot and p.
func (s *Spline) extend(at int, p Pt) {
	n := s.SegmentCount()
	col := make([]float64, s.Degree+1)
	if at == 0 {
		v := s.KnotValue(0)
		for k := range col {
			t := float64(k) / float64(s.Degree)
			col[k] = p.Y*(1-t) + v*t
		}
		s.X = append([]float64{p.X}, s.X...)
		for k := range s.Coef {
			s.Coef[k] = append([]float64{col[k]}, s.Coef[k]...)
		}
		return
	}
	v := s.KnotValue(n)
	for k := range col {
		t := float64(k) / float64(s.Degree)
		col[k] = v*(1-t) + p.Y*t
	}
	s.X = append(s.X, p.X)
	for k := range s.Coef {
		s.Coef[k] = append(s.Coef[k], col[k])
	}
}

// subdivide splits segment i at time t, replacing its column with the left
// half and splicing in the right half.
func (s *Spline) subdivide(i int, t float64) {
	u := (t - s.X[i]) / (s.X[i+1] - s.X[i])
	col := s.column(i)
	left := make([]float64, s.Degree+1)
	right := make([]float64, s.Degree+1)
	left[0] = col[0]
	right[s.Degree] = col[s.Degree]
	// de Casteljau triangle; edges are the subdivision control values
	for m := s.Degree; m > 0; m-- {
		for k := 0; k < m; k++ {
			col[k] = col[k]*(1-u) + col[k+1]*u
		}
		left[s.Degree-m+1] = col[0]
		right[m-1] = col[m-1]
	}
	s.X = append(s.X, 0)
	copy(s.X[i+2:], s.X[i+1:])
	s.X[i+1] = t
	for k := range s.Coef {
		row := append(s.Coef[k], 0)
		copy(row[i+1:], row[i:])
		row[i] = left[k]
		row[i+1] = right[k]
		s.Coef[k] = row
	}
}

// RemoveKnot deletes knot i. Removing an interior knot merges the two
// adjacent segments, keeping their outer control values; removing a
// boundary knot drops the boundary segment. A single-segment spline is left
// untouched and ErrLastSegment is returned.
func (s *Spline) RemoveKnot(i int) error {
	s.checkKnot(i)
	n := s.SegmentCount()
	if n == 1 {
		return ErrLastSegment
	}
	switch i {
	case 0:
		s.X = s.X[1:]
		for k := range s.Coef {
			s.Coef[k] = s.Coef[k][1:]
		}
	case n:
		s.X = s.X[:n]
		for k := range s.Coef {
			s.Coef[k] = s.Coef[k][:n-1]
		}
	default:
		merged := make([]float64, s.Degree+1)
		merged[0] = s.Coef[0][i-1]
		merged[s.Degree] = s.Coef[s.Degree][i]
		for k := 1; k < s.Degree; k++ {
			switch {
			case s.Degree == 2:
				merged[k] = (s.Coef[k][i-1] + s.Coef[k][i]) / 2
			case 2*k < s.Degree:
				merged[k] = s.Coef[k][i-1]
			default:
				merged[k] = s.Coef[k][i]
			}
		}
		s.X = append(s.X[:i], s.X[i+1:]...)
		for k := range s.Coef {
			row := append(s.Coef[k][:i-1], s.Coef[k][i:]...)
			row[i-1] = merged[k]
			s.Coef[k] = row
		}
	}
	return nil
}

// segmentRatio is the ratio of neighboring segment durations,
// dt(i+1) / dt(i). It drives the slope-preserving mirror across a knot with
// unequal segment durations.
func (s Spline) segmentRatio(i int) float64 {
	return (s.X[i+2] - s.X[i+1]) / (s.X[i+1] - s.X[i])
}

// PositionControlPoint moves the control point (segment, power) vertically
// to value y. power must name an interior control point (1..Degree-1).
//
// With c1 set on a cubic spline, the control point on the other side of the
// shared knot is mirrored so that both segments keep an equal slope at the
// knot, scaled by the ratio of the segment durations. The left-most and
// right-most control points of the spline have no neighbor and never
// cascade. With c1 unset the edit is a corner edit and never touches a
// neighbor.
func (s *Spline) PositionControlPoint(segment, power int, y float64, c1 bool) {
	s.checkSegment(segment)
	if power < 1 || power >= s.Degree {
		panic(fmt.Sprintf("spline: power %d is not a control point of a degree-%d spline", power, s.Degree))
	}
	s.Coef[power][segment] = y
	if !c1 || s.Degree != 3 {
		return
	}
	switch power {
	case 1:
		if segment == 0 {
			return
		}
		knotY := s.Coef[0][segment]
		dy := y - knotY
		s.Coef[s.Degree-1][segment-1] = knotY - dy/s.segmentRatio(segment-1)
	case s.Degree - 1:
		if segment == s.SegmentCount()-1 {
			return
		}
		knotY := s.Coef[s.Degree][segment]
		dy := y - knotY
		s.Coef[1][segment+1] = knotY - s.segmentRatio(segment)*dy
	}
}

// PositionKnot moves knot i towards p. The time is clamped strictly between
// the neighboring knot times (the first knot additionally never moves left
// of zero); the vertical delta is applied to both adjoining segment end
// values, so the curve stays position-continuous. The delta also carries to
// the adjacent control points: with c1 the mirror of PositionControlPoint
// cascades across the knot, without it both sides move independently.
//
// A time change resizes the two adjoining segments, which rescales the
// tangents at their far knots. With c1 the far-side control offsets are
// rescaled by the duration ratio so the slopes at the neighboring knots
// are unchanged by the move.
func (s *Spline) PositionKnot(i int, p Pt, c1 bool) {
	s.checkKnot(i)
	n := s.SegmentCount()
	lo, hi := 0.0, p.X
	if i > 0 {
		lo = s.X[i-1] + knotEps
	}
	if i < n {
		hi = s.X[i+1] - knotEps
	}
	dy := p.Y - s.KnotValue(i)
	ldt, rdt := 0.0, 0.0
	if i > 0 {
		ldt = s.X[i] - s.X[i-1]
	}
	if i < n {
		rdt = s.X[i+1] - s.X[i]
	}
	s.X[i] = clampf(p.X, lo, hi)
	if i > 0 {
		s.Coef[s.Degree][i-1] += dy
	}
	if i < n {
		s.Coef[0][i] += dy
	}
	if s.Degree < 2 {
		return
	}
	if c1 && s.Degree == 3 {
		if i > 0 {
			if ndt := s.X[i] - s.X[i-1]; ndt != ldt {
				base := s.Coef[0][i-1]
				s.Coef[1][i-1] = base + (s.Coef[1][i-1]-base)*ndt/ldt
			}
		}
		if i < n {
			if ndt := s.X[i+1] - s.X[i]; ndt != rdt {
				base := s.Coef[s.Degree][i]
				s.Coef[s.Degree-1][i] = base + (s.Coef[s.Degree-1][i]-base)*ndt/rdt
			}
		}
	}
	if i == n {
		// no segment to the right: only the left control point can follow
		s.Coef[s.Degree-1][n-1] += dy
		return
	}
	if c1 {
		s.PositionControlPoint(i, 1, s.Coef[1][i]+dy, true)
		return
	}
	if i > 0 {
		s.Coef[s.Degree-1][i-1] += dy
	}
	s.Coef[1][i] += dy
}
