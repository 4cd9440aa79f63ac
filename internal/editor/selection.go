/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor binds pointer gestures to the spline model: knot
// selection, grid snapping, the undo/redo history and the drag session
// that commits edits. Everything here is UI-agnostic and deterministic to
// enable unit testing and reuse across different frontends.
package editor

import "sort"

// Selection is the set of selected knot indices of the active channel. It
// carries no internal ordering; consumers read it through Sorted.
type Selection struct {
	knots map[int]struct{}
}

func NewSelection() *Selection {
	return &Selection{knots: make(map[int]struct{})}
}

func (s *Selection) Select(i int)   { s.knots[i] = struct{}{} }
func (s *Selection) Deselect(i int) { delete(s.knots, i) }

// SelectOnly replaces the selection with the single index i.
func (s *Selection) SelectOnly(i int) {
	clear(s.knots)
	s.knots[i] = struct{}{}
}

func (s *Selection) DeselectAll() { clear(s.knots) }

func (s *Selection) Contains(i int) bool {
	_, ok := s.knots[i]
	return ok
}

func (s *Selection) Empty() bool { return len(s.knots) == 0 }
func (s *Selection) Len() int    { return len(s.knots) }

// Sorted returns the selected indices in ascending order.
func (s *Selection) Sorted() []int {
	out := make([]int, 0, len(s.knots))
	for i := range s.knots {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// searchLeft returns the insertion index for v in the sorted slice xs,
// before any equal entries (numpy searchsorted, side left).
func searchLeft(xs []float64, v float64) int {
	return sort.Search(len(xs), func(i int) bool { return xs[i] >= v })
}

// searchRight returns the insertion index after any equal entries.
func searchRight(xs []float64, v float64) int {
	return sort.Search(len(xs), func(i int) bool { return xs[i] > v })
}

// SelectRect returns the indices of the knots whose x-positions fall into
// the half-open interval [left, right). xs must be sorted ascending. A knot
// exactly on the left edge is included, one exactly on the right edge is
// not.
func SelectRect(xs []float64, left, right float64) []int {
	lo := searchLeft(xs, left)
	hi := searchLeft(xs, right)
	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}
