/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"math"
	"testing"
	"time"

	"gomotion/internal/spline"
)

func testCurve() spline.Curve {
	return spline.NewCurve(
		spline.Line([]float64{0, 1, 2}, []float64{0, 1, 0}),
		spline.Line([]float64{0, 2}, []float64{5, 5}),
	)
}

func TestDragCommitsOnce(t *testing.T) {
	s := NewSession(testCurve())
	var changing, changed int
	s.OnChanging(func(spline.Curve) { changing++ })
	s.OnChanged(func(spline.Curve) { changed++ })

	s.BeginKnotDrag(1, false, false)
	s.Drag(spline.Pt{X: 1, Y: 1.5})
	s.Drag(spline.Pt{X: 1, Y: 2})
	s.EndDrag(spline.Pt{X: 1, Y: 2})

	if changing < 2 {
		t.Fatalf("changing fired %d times, want at least 2", changing)
	}
	if changed != 1 {
		t.Fatalf("changed fired %d times, want 1", changed)
	}
	if got := s.Curve().Channel(0).KnotValue(1); math.Abs(got-2) > 1e-9 {
		t.Fatalf("knot value = %v, want 2", got)
	}
	if !s.History().Undoable() {
		t.Fatalf("commit did not reach the history")
	}
}

func TestDragWithoutNetMovementIsNoOp(t *testing.T) {
	s := NewSession(testCurve())
	var changed int
	s.OnChanged(func(spline.Curve) { changed++ })
	before := s.History().Len()

	s.BeginKnotDrag(1, false, false)
	s.Drag(spline.Pt{X: 1, Y: 3})
	s.EndDrag(spline.Pt{X: 1, Y: 1}) // back to the start position

	if changed != 0 {
		t.Fatalf("changed fired for a cancelled gesture")
	}
	if got := s.History().Len(); got != before {
		t.Fatalf("history grew from %d to %d on a no-op gesture", before, got)
	}
	if got := s.Curve().Channel(0).KnotValue(1); got != 1 {
		t.Fatalf("working copy kept the intermediate value %v", got)
	}
}

func TestDragIsDeltaAgainstOriginal(t *testing.T) {
	s := NewSession(testCurve())
	s.BeginKnotDrag(1, false, false)
	// many steps to the same target must equal one step to the target
	for i := 0; i < 1000; i++ {
		s.Drag(spline.Pt{X: 1, Y: 1 + float64(i%7)/10})
	}
	s.Drag(spline.Pt{X: 1, Y: 1.3})
	s.EndDrag(spline.Pt{X: 1, Y: 1.3})
	if got := s.Curve().Channel(0).KnotValue(1); math.Abs(got-1.3) > 1e-12 {
		t.Fatalf("accumulated error: knot value = %v, want exactly 1.3", got)
	}
}

func TestMultiKnotDrag(t *testing.T) {
	s := NewSession(testCurve())
	s.ClickKnot(1, false)
	s.ClickKnot(2, true)
	s.BeginKnotDrag(1, false, false) // knot 1 already selected, keeps both
	s.Drag(spline.Pt{X: 1, Y: 1.5})
	s.EndDrag(spline.Pt{X: 1, Y: 1.5})
	sp := s.Curve().Channel(0)
	if got := sp.KnotValue(1); math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("dragged knot value = %v, want 1.5", got)
	}
	if got := sp.KnotValue(2); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("co-selected knot value = %v, want 0.5", got)
	}
}

func TestClickSelectionRules(t *testing.T) {
	s := NewSession(testCurve())
	s.ClickKnot(0, false)
	s.ClickKnot(2, true)
	if got := s.Selection().Sorted(); len(got) != 2 {
		t.Fatalf("additive click: selection %v", got)
	}
	s.ClickKnot(0, false) // already selected: no-op
	if got := s.Selection().Sorted(); len(got) != 2 {
		t.Fatalf("click on selected knot replaced the selection: %v", got)
	}
	s.ClickKnot(1, false) // replaces
	if got := s.Selection().Sorted(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("plain click did not replace the selection: %v", got)
	}
}

func TestSelectRectOnSession(t *testing.T) {
	s := NewSession(testCurve())
	s.SelectRect(1, 2) // knots at x = 0, 1, 2; half-open
	if got := s.Selection().Sorted(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("SelectRect selected %v, want [1]", got)
	}
}

func TestDragSnapsToOtherKnotValues(t *testing.T) {
	c := spline.NewCurve(spline.Line([]float64{0, 1, 2}, []float64{0.2, 0.9, 0.5}))
	s := NewSession(c)
	s.BeginKnotDrag(1, false, false)
	s.Drag(spline.Pt{X: 1, Y: 0.5005})
	s.EndDrag(spline.Pt{X: 1, Y: 0.5005})
	if got := s.Curve().Channel(0).KnotValue(1); got != 0.5 {
		t.Fatalf("knot value = %v, want snapped 0.5", got)
	}
}

func TestChannelSwitchClearsSelection(t *testing.T) {
	s := NewSession(testCurve())
	var switched []int
	s.OnChannelChanged(func(i int) { switched = append(switched, i) })
	s.ClickKnot(1, false)
	s.SetChannel(1)
	if !s.Selection().Empty() {
		t.Fatalf("selection survived a channel switch")
	}
	if len(switched) != 1 || switched[0] != 1 {
		t.Fatalf("channel callbacks = %v, want [1]", switched)
	}
	s.SetChannel(1) // same channel: no event
	if len(switched) != 1 {
		t.Fatalf("redundant switch emitted an event")
	}
}

func TestInsertAndRemoveKnots(t *testing.T) {
	s := NewSession(testCurve())
	if err := s.InsertKnot(spline.Pt{X: 0.5, Y: 0}); err != nil {
		t.Fatalf("InsertKnot: %v", err)
	}
	if got := s.Curve().Channel(0).SegmentCount(); got != 3 {
		t.Fatalf("segments = %d after insert, want 3", got)
	}
	if err := s.InsertKnot(spline.Pt{X: 0.5, Y: 1}); err == nil {
		t.Fatalf("duplicate insert not surfaced")
	}
	s.SelectRect(0.4, 0.6)
	s.RemoveSelectedKnots()
	if got := s.Curve().Channel(0).SegmentCount(); got != 2 {
		t.Fatalf("segments = %d after remove, want 2", got)
	}
	if !s.Selection().Empty() {
		t.Fatalf("selection survived the removal")
	}
}

func TestRemoveRefusalIsSilent(t *testing.T) {
	c := spline.NewCurve(spline.Line([]float64{0, 1}, []float64{0, 1}))
	s := NewSession(c)
	before := s.History().Len()
	s.ClickKnot(0, false)
	s.RemoveSelectedKnots()
	if got := s.Curve().Channel(0).SegmentCount(); got != 1 {
		t.Fatalf("single segment removed")
	}
	if s.History().Len() != before {
		t.Fatalf("refused removal still committed")
	}
}

func TestUndoRedoRestoreWorkingCopy(t *testing.T) {
	s := NewSession(testCurve())
	s.BeginKnotDrag(1, false, false)
	s.Drag(spline.Pt{X: 1, Y: 2})
	s.EndDrag(spline.Pt{X: 1, Y: 2})
	if !s.Undo() {
		t.Fatalf("undo failed")
	}
	if got := s.Curve().Channel(0).KnotValue(1); got != 1 {
		t.Fatalf("undo left knot at %v, want 1", got)
	}
	if !s.Redo() {
		t.Fatalf("redo failed")
	}
	if got := s.Curve().Channel(0).KnotValue(1); math.Abs(got-2) > 1e-9 {
		t.Fatalf("redo left knot at %v, want 2", got)
	}
	if s.Redo() {
		t.Fatalf("redo past the end succeeded")
	}
}

func TestLimitsRestrictCommittedEdits(t *testing.T) {
	s := NewSession(testCurve())
	s.SetLimits(spline.B(0, -1, 2, 1.25))
	s.BeginKnotDrag(1, false, false)
	s.Drag(spline.Pt{X: 1, Y: 50})
	s.EndDrag(spline.Pt{X: 1, Y: 50})
	if got := s.Curve().Channel(0).KnotValue(1); got != 1.25 {
		t.Fatalf("knot value = %v, want clamped 1.25", got)
	}
}

type previewRecorder struct{ ch chan float64 }

func (p *previewRecorder) SetPosition(v float64, channel int) { p.ch <- v }

func TestLivePreviewForwardsDragValues(t *testing.T) {
	s := NewSession(testCurve())
	rec := &previewRecorder{ch: make(chan float64, 16)}
	s.SetPreview(rec, true)
	s.BeginKnotDrag(1, false, false)
	s.Drag(spline.Pt{X: 1, Y: 1.7})
	select {
	case v := <-rec.ch:
		if math.Abs(v-1.7) > 1e-9 {
			t.Fatalf("preview value = %v, want 1.7", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("no preview value delivered")
	}
	s.EndDrag(spline.Pt{X: 1, Y: 1})
}

func TestLivePreviewDisabledByDefault(t *testing.T) {
	s := NewSession(testCurve())
	rec := &previewRecorder{ch: make(chan float64, 16)}
	s.SetPreview(rec, false)
	s.BeginKnotDrag(1, false, false)
	s.Drag(spline.Pt{X: 1, Y: 1.7})
	s.EndDrag(spline.Pt{X: 1, Y: 1})
	select {
	case v := <-rec.ch:
		t.Fatalf("preview delivered %v while disabled", v)
	case <-time.After(50 * time.Millisecond):
	}
}
