/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transport

import (
	"errors"
	"sync"

	"gomotion/internal/spline"
)

// ErrNoSamples is returned when fitting an empty or too-short recording.
var ErrNoSamples = errors.New("transport: not enough samples to fit a curve")

// Sample is one recorded frame: the values of all channels at a timestamp
// relative to the recording start.
type Sample struct {
	Time   float64
	Values []float64
}

// Recorder is an append-only feed of live trajectory samples, filled while
// the transport is recording and fitted into a curve on stop.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Append records one frame. The values slice is copied, so the caller may
// reuse its buffer. Frames arriving out of order or repeating a timestamp
// are dropped, since the fit requires strictly increasing times.
func (r *Recorder) Append(timestamp float64, values []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.samples); n > 0 {
		if timestamp <= r.samples[n-1].Time || len(values) != len(r.samples[n-1].Values) {
			return
		}
	}
	r.samples = append(r.samples, Sample{Time: timestamp, Values: append([]float64(nil), values...)})
}

// Len returns the number of recorded frames.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Samples returns a copy of the recorded frames.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	for i, s := range r.samples {
		out[i] = Sample{Time: s.Time, Values: append([]float64(nil), s.Values...)}
	}
	return out
}

// Reset discards all recorded frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = nil
}

// Fit converts the recording into a curve with one spline per recorded
// channel, decimated to at most maxKnots knots each. maxKnots < 2 selects
// spline.DefaultFitKnots.
func (r *Recorder) Fit(maxKnots int) (spline.Curve, error) {
	samples := r.Samples()
	if len(samples) < 2 {
		return spline.Curve{}, ErrNoSamples
	}
	channels := len(samples[0].Values)
	if channels == 0 {
		return spline.Curve{}, ErrNoSamples
	}
	ts := make([]float64, len(samples))
	for i, s := range samples {
		ts[i] = s.Time
	}
	splines := make([]spline.Spline, channels)
	ys := make([]float64, len(samples))
	for ch := 0; ch < channels; ch++ {
		for i, s := range samples {
			ys[i] = s.Values[ch]
		}
		sp, err := spline.Fit(ts, ys, maxKnots)
		if err != nil {
			return spline.Curve{}, err
		}
		splines[ch] = sp
	}
	return spline.NewCurve(splines...), nil
}
