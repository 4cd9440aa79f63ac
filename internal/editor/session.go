/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"

	applog "gomotion/internal/log"
	"gomotion/internal/spline"
)

// PreviewSink receives intermediate drag values for live hardware preview.
// Implementations must not block; the session invokes it fire-and-forget.
type PreviewSink interface {
	SetPosition(value float64, channel int)
}

type dragKind int

const (
	dragNone dragKind = iota
	dragKnot
	dragControl
)

// Session owns the working copy of the curve being edited and turns drag
// gestures and discrete commands into history commits. It is
// single-threaded by contract: all calls happen from the event loop that
// delivers pointer input, and nothing else mutates the working copy or the
// selection during a gesture.
type Session struct {
	log       *slog.Logger
	history   *History
	selection *Selection

	channel int
	working spline.Curve

	// gesture state, valid while kind != dragNone
	kind      dragKind
	original  spline.Curve
	origin    spline.Pt
	last      spline.Pt
	snapper   *Snapper
	smooth    bool
	ctrlSeg   int
	ctrlPower int

	limits      *spline.BBox
	livePreview bool
	preview     PreviewSink
	snapTol     float64

	changing       []func(spline.Curve)
	changed        []func(spline.Curve)
	channelChanged []func(int)
}

// NewSession starts an editing session over the given curve, which becomes
// the first history snapshot.
func NewSession(c spline.Curve) *Session {
	s := &Session{
		log:       applog.WithComponent("editor"),
		history:   NewHistory(),
		selection: NewSelection(),
		working:   c.Copy(),
		snapTol:   DefaultSnapTolerance,
	}
	s.history.Capture(c)
	return s
}

// SetLimits installs externally supplied motion limits; every committed
// edit is clamped into the box.
func (s *Session) SetLimits(b spline.BBox) { s.limits = &b }

// SetPreview installs the live-preview collaborator. Values are only
// forwarded while the live-preview flag is enabled.
func (s *Session) SetPreview(sink PreviewSink, enabled bool) {
	s.preview = sink
	s.livePreview = enabled
}

// SetSnapTolerance overrides the grid-snap tolerance for future gestures.
func (s *Session) SetSnapTolerance(tol float64) { s.snapTol = tol }

// OnChanging registers a callback fired on every intermediate drag step.
func (s *Session) OnChanging(fn func(spline.Curve)) { s.changing = append(s.changing, fn) }

// OnChanged registers a callback fired when an edit is committed.
func (s *Session) OnChanged(fn func(spline.Curve)) { s.changed = append(s.changed, fn) }

// OnChannelChanged registers a callback fired when the active channel
// switches.
func (s *Session) OnChannelChanged(fn func(int)) { s.channelChanged = append(s.channelChanged, fn) }

// Curve returns a copy of the current working curve; redraw loops call
// this instead of re-deriving geometry from events.
func (s *Session) Curve() spline.Curve { return s.working.Copy() }

// History exposes the undo/redo stack, e.g. for save-state tracking.
func (s *Session) History() *History { return s.history }

// Selection exposes the knot selection of the active channel.
func (s *Session) Selection() *Selection { return s.selection }

// Channel returns the active channel index.
func (s *Session) Channel() int { return s.channel }

// SetChannel switches the active channel, clearing the selection.
func (s *Session) SetChannel(i int) {
	if i == s.channel {
		return
	}
	s.working.Channel(i) // panics on an invalid index
	s.channel = i
	s.selection.DeselectAll()
	for _, fn := range s.channelChanged {
		fn(i)
	}
}

// ClickKnot applies the click selection rule: replace the selection unless
// the additive modifier is held, or the knot is already selected (a no-op,
// which is what makes multi-knot drags possible).
func (s *Session) ClickKnot(i int, additive bool) {
	_ = s.active().KnotValue(i) // panics on an out-of-range index
	switch {
	case additive:
		s.selection.Select(i)
	case s.selection.Contains(i):
		// keep the multi-selection for a subsequent drag
	default:
		s.selection.SelectOnly(i)
	}
}

// SelectRect replaces the selection with the knots inside the dragged
// horizontal interval [left, right).
func (s *Session) SelectRect(left, right float64) {
	s.selection.DeselectAll()
	for _, i := range SelectRect(s.active().X, left, right) {
		s.selection.Select(i)
	}
}

func (s *Session) active() *spline.Spline { return s.working.Channel(s.channel) }

// BeginKnotDrag starts a drag gesture on knot i. The knot joins the
// selection per the click rule; all selected knots move together. smooth
// selects C1 editing (tangent mirroring), otherwise corners are allowed.
// Starting a new gesture implicitly finishes any previous one.
func (s *Session) BeginKnotDrag(i int, additive, smooth bool) {
	s.abortGesture()
	s.ClickKnot(i, additive)
	sp := s.active()
	s.kind = dragKnot
	s.smooth = smooth
	s.original = s.working.Copy()
	s.origin = spline.Pt{X: sp.X[i], Y: sp.KnotValue(i)}
	s.last = s.origin
	s.snapper = NewSnapper(snapValues(*sp, s.selection), s.snapTol)
}

// BeginControlDrag starts a drag gesture on the control point
// (segment, power) of the active channel. Control points move alone and
// vertically only.
func (s *Session) BeginControlDrag(segment, power int, smooth bool) {
	s.abortGesture()
	sp := s.active()
	p := sp.Point(segment, power) // panics on out-of-range indices
	s.kind = dragControl
	s.ctrlSeg = segment
	s.ctrlPower = power
	s.smooth = smooth
	s.original = s.working.Copy()
	s.origin = p
	s.last = p
	s.snapper = NewSnapper(snapValues(*sp, nil), s.snapTol)
}

// Drag applies one pointer step of the active gesture. The edit is always
// a delta against the snapshot taken at gesture start, so repeated steps
// do not accumulate rounding error. Emits the changing notification and,
// when enabled, the live preview value.
func (s *Session) Drag(p spline.Pt) {
	if s.kind == dragNone {
		return
	}
	p.Y = s.snapper.Snap(p.Y)
	s.last = p
	s.working = s.original.Copy()
	sp := s.active()
	switch s.kind {
	case dragKnot:
		dx := p.X - s.origin.X
		dy := p.Y - s.origin.Y
		ref := s.original.Channel(s.channel)
		idxs := s.selection.Sorted()
		if dx > 0 {
			// move right-to-left so the neighbor clamp sees the final
			// positions of the knots ahead
			for l, r := 0, len(idxs)-1; l < r; l, r = l+1, r-1 {
				idxs[l], idxs[r] = idxs[r], idxs[l]
			}
		}
		for _, i := range idxs {
			target := spline.Pt{X: ref.X[i] + dx, Y: ref.KnotValue(i) + dy}
			sp.PositionKnot(i, target, s.smooth)
		}
	case dragControl:
		sp.PositionControlPoint(s.ctrlSeg, s.ctrlPower, p.Y, s.smooth)
	}
	if s.limits != nil {
		sp.RestrictToBBox(*s.limits)
	}
	snapshot := s.working.Copy()
	for _, fn := range s.changing {
		fn(snapshot)
	}
	if s.livePreview && s.preview != nil {
		// best effort; a slow or failing sink must not stall pointer input
		go s.preview.SetPosition(p.Y, s.channel)
	}
}

// EndDrag finishes the gesture. A gesture without net movement is a no-op
// and pushes no history entry, so accidental clicks do not pollute the
// undo stack.
func (s *Session) EndDrag(p spline.Pt) {
	if s.kind == dragNone {
		return
	}
	s.Drag(p)
	moved := s.last != s.origin
	if moved {
		s.commit("drag")
	} else {
		s.working = s.original
	}
	s.clearGesture()
}

// abortGesture treats a still-open gesture as ended at its last position.
func (s *Session) abortGesture() {
	if s.kind == dragNone {
		return
	}
	s.EndDrag(s.last)
}

func (s *Session) clearGesture() {
	s.kind = dragNone
	s.snapper = nil
	s.original = spline.Curve{}
}

func (s *Session) commit(op string) {
	s.history.Capture(s.working)
	s.log.Debug("edit committed", slog.String("op", op), slog.Int("channel", s.channel))
	snapshot := s.working.Copy()
	for _, fn := range s.changed {
		fn(snapshot)
	}
}

// InsertKnot adds a knot to the active channel and commits. The duplicate
// time refusal of the model is surfaced to the caller.
func (s *Session) InsertKnot(p spline.Pt) error {
	if err := s.active().InsertKnot(p); err != nil {
		return err
	}
	if s.limits != nil {
		s.active().RestrictToBBox(*s.limits)
	}
	s.commit("insert_knot")
	return nil
}

// RemoveSelectedKnots deletes the selected knots, highest index first so
// earlier removals do not shift later ones. Removals refused by the model
// (the last remaining segment) are skipped silently. Commits only when
// something was removed.
func (s *Session) RemoveSelectedKnots() {
	idxs := s.selection.Sorted()
	removed := 0
	for k := len(idxs) - 1; k >= 0; k-- {
		if err := s.active().RemoveKnot(idxs[k]); err == nil {
			removed++
		}
	}
	s.selection.DeselectAll()
	if removed > 0 {
		s.commit("remove_knots")
	}
}

// Undo rewinds the history and reports whether anything changed.
func (s *Session) Undo() bool {
	if !s.history.Undo() {
		return false
	}
	s.restore()
	return true
}

// Redo replays the history and reports whether anything changed.
func (s *Session) Redo() bool {
	if !s.history.Redo() {
		return false
	}
	s.restore()
	return true
}

func (s *Session) restore() {
	c, ok := s.history.Retrieve()
	if !ok {
		return
	}
	s.working = c
	s.selection.DeselectAll()
	snapshot := s.working.Copy()
	for _, fn := range s.changed {
		fn(snapshot)
	}
}
