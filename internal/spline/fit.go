/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package spline

// Fitting of recorded trajectories. The recorder feed delivers dense
// (timestamp, value) samples; Fit decimates them to a manageable knot count
// and interpolates with Catmull-Rom tangents expressed as Bernstein control
// values, yielding a C1 cubic spline through the kept samples.

import (
	"errors"
	"fmt"
)

// DefaultFitKnots is the knot budget used when fitting recordings.
const DefaultFitKnots = 33

// Fit converts a sampled trajectory into a cubic spline. ts must be
// strictly increasing and the same length as ys; at least two samples are
// required. maxKnots < 2 selects DefaultFitKnots.
func Fit(ts, ys []float64, maxKnots int) (Spline, error) {
	if len(ts) != len(ys) {
		return Spline{}, fmt.Errorf("spline: fit input lengths differ: %d vs %d", len(ts), len(ys))
	}
	if len(ts) < 2 {
		return Spline{}, errors.New("spline: fit needs at least two samples")
	}
	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			return Spline{}, fmt.Errorf("spline: fit timestamps not strictly increasing at index %d", i)
		}
	}
	if maxKnots < 2 {
		maxKnots = DefaultFitKnots
	}
	ts, ys = decimate(ts, ys, maxKnots)

	n := len(ts) - 1
	s := Spline{Degree: MaxDegree, X: append([]float64(nil), ts...)}
	s.Coef = make([][]float64, s.Degree+1)
	for k := range s.Coef {
		s.Coef[k] = make([]float64, n)
	}
	tangents := catmullRomTangents(ts, ys)
	for i := 0; i < n; i++ {
		dt := ts[i+1] - ts[i]
		s.Coef[0][i] = ys[i]
		s.Coef[1][i] = ys[i] + tangents[i]*dt/3
		s.Coef[2][i] = ys[i+1] - tangents[i+1]*dt/3
		s.Coef[3][i] = ys[i+1]
	}
	return s, nil
}

// decimate keeps at most maxKnots samples, always including the first and
// last, picking the rest at uniform index strides.
func decimate(ts, ys []float64, maxKnots int) ([]float64, []float64) {
	if len(ts) <= maxKnots {
		return ts, ys
	}
	outT := make([]float64, 0, maxKnots)
	outY := make([]float64, 0, maxKnots)
	last := len(ts) - 1
	for i := 0; i < maxKnots; i++ {
		j := i * last / (maxKnots - 1)
		outT = append(outT, ts[j])
		outY = append(outY, ys[j])
	}
	return outT, outY
}

// catmullRomTangents computes per-knot slopes: one-sided differences at the
// ends, centered differences over non-uniform spacing in between.
func catmullRomTangents(ts, ys []float64) []float64 {
	n := len(ts)
	m := make([]float64, n)
	m[0] = (ys[1] - ys[0]) / (ts[1] - ts[0])
	m[n-1] = (ys[n-1] - ys[n-2]) / (ts[n-1] - ts[n-2])
	for i := 1; i < n-1; i++ {
		m[i] = (ys[i+1] - ys[i-1]) / (ts[i+1] - ts[i-1])
	}
	return m
}
