/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package spline

// Record is the serialized form of a single channel: degree, ordered knot
// times and the coefficient matrix. A serialize/deserialize round trip
// reproduces the arrays element for element; history granularity and
// persistence both depend on that.
type Record struct {
	Degree       int         `json:"degree"`
	Knots        []float64   `json:"knots"`
	Coefficients [][]float64 `json:"coefficients"`
}

// Record returns the serialized form of the spline.
func (s Spline) Record() Record {
	c := s.Copy()
	return Record{Degree: c.Degree, Knots: c.X, Coefficients: c.Coef}
}

// FromRecord rebuilds a spline from its serialized form, validating the
// structural invariants.
func FromRecord(r Record) (Spline, error) {
	s := Spline{Degree: r.Degree, X: append([]float64(nil), r.Knots...)}
	s.Coef = make([][]float64, len(r.Coefficients))
	for k, row := range r.Coefficients {
		s.Coef[k] = append([]float64(nil), row...)
	}
	if err := s.Validate(); err != nil {
		return Spline{}, err
	}
	return s, nil
}

// Records returns the per-channel serialized form of the curve.
func (c Curve) Records() []Record {
	out := make([]Record, len(c.Splines))
	for i, s := range c.Splines {
		out[i] = s.Record()
	}
	return out
}

// CurveFromRecords rebuilds a curve from per-channel records.
func CurveFromRecords(records []Record) (Curve, error) {
	c := Curve{Splines: make([]Spline, len(records))}
	for i, r := range records {
		s, err := FromRecord(r)
		if err != nil {
			return Curve{}, err
		}
		c.Splines[i] = s
	}
	return c, nil
}
