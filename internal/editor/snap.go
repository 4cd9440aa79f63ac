/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"math"
	"sort"

	"gomotion/internal/spline"
)

// DefaultSnapTolerance is the absolute distance at which a dragged value
// locks onto an existing knot value.
const DefaultSnapTolerance = 0.001

// Snapper snaps drag targets to a fixed set of candidate values. It is
// built once at gesture start from the values of the knots not being
// dragged and discarded at gesture end, so a knot never snaps to itself.
type Snapper struct {
	values    []float64
	tolerance float64
}

// NewSnapper sorts a private copy of the candidate values. tolerance <= 0
// selects DefaultSnapTolerance.
func NewSnapper(values []float64, tolerance float64) *Snapper {
	if tolerance <= 0 {
		tolerance = DefaultSnapTolerance
	}
	vs := append([]float64(nil), values...)
	sort.Float64s(vs)
	return &Snapper{values: vs, tolerance: tolerance}
}

// Snap returns the nearest candidate within the tolerance, or y unchanged.
func (s *Snapper) Snap(y float64) float64 {
	if len(s.values) == 0 {
		return y
	}
	i := searchLeft(s.values, y)
	best, dist := y, s.tolerance
	if i < len(s.values) {
		if d := math.Abs(s.values[i] - y); d <= dist {
			best, dist = s.values[i], d
		}
	}
	if i > 0 {
		if d := math.Abs(s.values[i-1] - y); d <= dist {
			best = s.values[i-1]
		}
	}
	return best
}

// snapValues collects the knot values of a channel, skipping the selected
// knots for the duration of a gesture.
func snapValues(s spline.Spline, selected *Selection) []float64 {
	out := make([]float64, 0, s.KnotCount())
	for i := 0; i < s.KnotCount(); i++ {
		if selected != nil && selected.Contains(i) {
			continue
		}
		out = append(out, s.KnotValue(i))
	}
	return out
}
