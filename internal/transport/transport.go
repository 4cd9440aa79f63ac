/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package transport coordinates curve playback and live recording. The
// Transport is a small three-state machine (paused, playing, recording)
// driving the time cursor; the Recorder collects timestamped samples while
// recording so they can be fitted into a curve afterwards.
package transport

import (
	"log/slog"
	"math"
	"sync"

	applog "gomotion/internal/log"
)

// State is the transport state.
type State int

const (
	Paused State = iota
	Playing
	Recording
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	case Recording:
		return "recording"
	default:
		return "unknown"
	}
}

// Transport tracks the playback cursor for a curve of a known duration.
// Only these transitions are legal: paused to playing, paused to recording,
// and either back to paused. Any other request is silently ignored, since
// transport buttons may be pressed in any order.
type Transport struct {
	log *slog.Logger

	mu        sync.Mutex
	state     State
	position  float64
	duration  float64
	startTime float64
	looping   bool

	positionChanged []func(pos float64)
}

// NewTransport returns a paused transport for a curve of the given duration
// in seconds.
func NewTransport(duration float64) *Transport {
	return &Transport{
		log:      applog.WithComponent("transport"),
		duration: duration,
	}
}

// OnPositionChanged registers a cursor observer. Callbacks run synchronously
// on whichever goroutine feeds Move, so they must be cheap.
func (t *Transport) OnPositionChanged(fn func(pos float64)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positionChanged = append(t.positionChanged, fn)
}

// State returns the current transport state.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Position returns the current cursor position in seconds.
func (t *Transport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// Duration returns the playable duration in seconds. While recording it is
// +Inf, since a recording has no end until stopped.
func (t *Transport) Duration() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// SetDuration updates the playable duration, typically after the curve was
// edited or a recording was fitted.
func (t *Transport) SetDuration(d float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.duration = d
}

// Looping reports whether the cursor wraps at the end of the curve.
func (t *Transport) Looping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.looping
}

// ToggleLooping flips the looping flag and returns the new value. The
// transport state is unaffected.
func (t *Transport) ToggleLooping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.looping = !t.looping
	return t.looping
}

// Play starts playback from a paused transport. startTime is the absolute
// timestamp of curve time zero, as reported by the playback backend, so that
// subsequent Move calls with wall-clock timestamps land on the right
// position.
func (t *Transport) Play(startTime float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Paused {
		return
	}
	t.startTime = startTime
	t.state = Playing
	t.log.Debug("transition", "to", Playing.String())
}

// Pause suspends playback or recording, keeping the cursor where it is.
func (t *Transport) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Playing && t.state != Recording {
		return
	}
	t.state = Paused
	t.log.Debug("transition", "to", Paused.String())
}

// Record starts recording from a paused transport. The clock origin is now
// and the duration becomes unbounded until Stop.
func (t *Transport) Record(now float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Paused {
		return
	}
	t.startTime = now
	t.duration = math.Inf(1)
	t.state = Recording
	t.log.Debug("transition", "to", Recording.String())
}

// Stop forces the transport to paused and rewinds the cursor to zero, no
// matter the current state.
func (t *Transport) Stop() {
	t.mu.Lock()
	t.state = Paused
	t.position = 0
	observers := append(([]func(float64))(nil), t.positionChanged...)
	t.mu.Unlock()
	for _, fn := range observers {
		fn(0)
	}
}

// Move advances the clock to the given absolute timestamp. The derived curve
// position is returned in any state, so callers can detect the end of the
// curve and stop; the stored cursor only follows while not paused. With
// looping enabled the position wraps modulo the duration.
func (t *Transport) Move(timestamp float64) float64 {
	t.mu.Lock()
	pos := timestamp - t.startTime
	if t.looping && !math.IsInf(t.duration, 1) && t.duration > 0 {
		pos = math.Mod(pos, t.duration)
		if pos < 0 {
			pos += t.duration
		}
	}
	var observers []func(float64)
	if t.state != Paused {
		t.position = pos
		observers = append(observers, t.positionChanged...)
	}
	t.mu.Unlock()
	for _, fn := range observers {
		fn(pos)
	}
	return pos
}
